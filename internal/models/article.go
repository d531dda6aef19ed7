package models

import (
	"time"
)

// Article is the aggregate root owning every comment, reply and vote attached to it
type Article struct {
	ID          string     `json:"id" db:"id"`
	ArticleID   string     `json:"article_id" db:"external_id"`
	Title       string     `json:"title" db:"title"`
	Source      string     `json:"source" db:"source"`
	Category    string     `json:"category" db:"category"`
	Summary     string     `json:"summary" db:"summary"`
	Body        string     `json:"body" db:"body"`
	URL         string     `json:"url" db:"url"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	LikeCount   int        `json:"like_count" db:"like_count"`
	Comments    []*Comment `json:"-" db:"comments"` // Stored as JSONB
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// ArticleView is the API shape of an article
type ArticleView struct {
	Article
	CommentCount int `json:"comment_count"`
}

// ArticleInput is an article record delivered by the external article supply
type ArticleInput struct {
	ArticleID   string `json:"article_id"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	Category    string `json:"category"`
	Summary     string `json:"summary"`
	Body        string `json:"body"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at,omitempty"`
}

// View returns the API representation
func (a *Article) View() *ArticleView {
	return &ArticleView{Article: *a, CommentCount: len(a.Comments)}
}

// FindComment returns the comment with the given id, or nil
func (a *Article) FindComment(id string) *Comment {
	for _, c := range a.Comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// AppendComment adds c at the end of the chronological sequence
func (a *Article) AppendComment(c *Comment) {
	a.Comments = append(a.Comments, c)
}

// RemoveComment removes the comment with the given id along with its replies.
// Reports false if no such comment exists.
func (a *Article) RemoveComment(id string) bool {
	for i, c := range a.Comments {
		if c.ID == id {
			a.Comments = append(a.Comments[:i:i], a.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// ClampCount floors an aggregate counter at zero
func ClampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Clone returns a deep copy so a failed update can be discarded
func (a *Article) Clone() *Article {
	c := *a
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		c.PublishedAt = &t
	}
	c.Comments = make([]*Comment, len(a.Comments))
	for i, cm := range a.Comments {
		c.Comments[i] = cm.Clone()
	}
	return &c
}
