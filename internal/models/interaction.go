package models

import (
	"time"
)

// Interaction is the per-user, per-article like/bookmark record. It never
// carries comment content.
type Interaction struct {
	UserID     string    `json:"user_id" db:"user_id"`
	ArticleID  string    `json:"article_id" db:"article_id"`
	Liked      bool      `json:"liked" db:"liked"`
	Bookmarked bool      `json:"bookmarked" db:"bookmarked"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// LikeState is returned by a like toggle
type LikeState struct {
	ArticleID string `json:"article_id"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"like_count"`
}

// BookmarkState is returned by a bookmark toggle
type BookmarkState struct {
	ArticleID  string `json:"article_id"`
	Bookmarked bool   `json:"bookmarked"`
}

// InteractionStatus is the acting user's standing on an article
type InteractionStatus struct {
	ArticleID  string `json:"article_id"`
	Liked      bool   `json:"liked"`
	Bookmarked bool   `json:"bookmarked"`
	LikeCount  int    `json:"like_count"`
}
