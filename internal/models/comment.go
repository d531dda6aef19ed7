package models

import (
	"time"

	"github.com/news-interactions-api/internal/vote"
)

// Visibility is the moderation triage status of a comment or reply
type Visibility string

const (
	VisibilityVisible Visibility = "visible"
	VisibilityReview  Visibility = "review"
)

// DeletedAuthorName replaces the author name of content whose author was permanently deleted
const DeletedAuthorName = "deleted_user"

// Post holds the fields shared by comments and replies
type Post struct {
	ID           string     `json:"id"`
	AuthorID     string     `json:"author_id"`
	AuthorName   string     `json:"author_name"`
	Text         string     `json:"text"`
	OriginalText string     `json:"original_text"`
	Flagged      bool       `json:"flagged"`
	MatchedTerms []string   `json:"matched_terms"`
	Visibility   Visibility `json:"visibility"`
	CreatedAt    time.Time  `json:"created_at"`
	Votes        vote.Set   `json:"votes"`
}

// Comment is a top-level comment on an article
type Comment struct {
	Post
	Replies []*Reply `json:"replies"`
}

// Reply is a response to a comment. Replies do not nest.
type Reply struct {
	Post
	ParentID string `json:"parent_id"`
}

// MaxCommentWords is the maximum allowed words in a comment or reply body
const MaxCommentWords = 500

// FindReply returns the reply with the given id, or nil
func (c *Comment) FindReply(id string) *Reply {
	for _, r := range c.Replies {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// AppendReply adds r at the end of the reply sequence
func (c *Comment) AppendReply(r *Reply) {
	r.ParentID = c.ID
	c.Replies = append(c.Replies, r)
}

// RemoveReply removes the reply with the given id
func (c *Comment) RemoveReply(id string) bool {
	for i, r := range c.Replies {
		if r.ID == id {
			c.Replies = append(c.Replies[:i:i], c.Replies[i+1:]...)
			return true
		}
	}
	return false
}

// Anonymize detaches the post from its author
func (p *Post) Anonymize() {
	p.AuthorID = ""
	p.AuthorName = DeletedAuthorName
}

func (p Post) clone() Post {
	c := p
	c.MatchedTerms = append([]string(nil), p.MatchedTerms...)
	c.Votes = p.Votes.Clone()
	return c
}

// Clone returns a deep copy including replies
func (c *Comment) Clone() *Comment {
	cp := &Comment{Post: c.Post.clone(), Replies: make([]*Reply, len(c.Replies))}
	for i, r := range c.Replies {
		cp.Replies[i] = &Reply{Post: r.Post.clone(), ParentID: r.ParentID}
	}
	return cp
}

// PostView is the public shape of a comment or reply. Vote sets are reduced
// to counts and the pre-moderation text is withheld.
type PostView struct {
	ID            string     `json:"id"`
	AuthorID      string     `json:"author_id"`
	AuthorName    string     `json:"author_name"`
	Text          string     `json:"text"`
	Flagged       bool       `json:"flagged"`
	Visibility    Visibility `json:"visibility"`
	CreatedAt     time.Time  `json:"created_at"`
	Score         int        `json:"score"`
	UpvoteCount   int        `json:"upvote_count"`
	DownvoteCount int        `json:"downvote_count"`
}

// View returns the public representation of the post
func (p *Post) View() PostView {
	return PostView{
		ID:            p.ID,
		AuthorID:      p.AuthorID,
		AuthorName:    p.AuthorName,
		Text:          p.Text,
		Flagged:       p.Flagged,
		Visibility:    p.Visibility,
		CreatedAt:     p.CreatedAt,
		Score:         p.Votes.Score(),
		UpvoteCount:   p.Votes.UpvoteCount(),
		DownvoteCount: p.Votes.DownvoteCount(),
	}
}

// CommentView is the API shape of a comment, without the reply bodies
type CommentView struct {
	PostView
	ReplyCount int `json:"reply_count"`
}

// View returns the API representation
func (c *Comment) View() *CommentView {
	return &CommentView{PostView: c.Post.View(), ReplyCount: len(c.Replies)}
}

// ReplyView is the API shape of a reply
type ReplyView struct {
	PostView
	ParentID string `json:"parent_id"`
}

// View returns the API representation
func (r *Reply) View() *ReplyView {
	return &ReplyView{PostView: r.Post.View(), ParentID: r.ParentID}
}

// AuthoredComment is a comment or reply in the "my comments" view
type AuthoredComment struct {
	ArticleID    string `json:"article_id"`
	ArticleTitle string `json:"article_title"`
	ParentID     string `json:"parent_id,omitempty"`
	Post
}

// AuthoredView is what an author sees of their own post, including the
// text they submitted before moderation
type AuthoredView struct {
	ArticleID    string `json:"article_id"`
	ArticleTitle string `json:"article_title"`
	ParentID     string `json:"parent_id,omitempty"`
	PostView
	OriginalText string   `json:"original_text"`
	MatchedTerms []string `json:"matched_terms"`
}

// View returns the author-facing representation
func (a *AuthoredComment) View() *AuthoredView {
	terms := a.MatchedTerms
	if terms == nil {
		terms = []string{}
	}
	return &AuthoredView{
		ArticleID:    a.ArticleID,
		ArticleTitle: a.ArticleTitle,
		ParentID:     a.ParentID,
		PostView:     a.Post.View(),
		OriginalText: a.OriginalText,
		MatchedTerms: terms,
	}
}

// TargetRef addresses a comment, or a reply when ReplyID is set
type TargetRef struct {
	ArticleID string `json:"article_id"`
	CommentID string `json:"comment_id"`
	ReplyID   string `json:"reply_id,omitempty"`
}

// IsReply reports whether the reference addresses a reply
func (t TargetRef) IsReply() bool {
	return t.ReplyID != ""
}
