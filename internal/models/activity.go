package models

import (
	"time"
)

// Action is the kind of a recorded user action
type Action string

const (
	ActionRegister        Action = "register"
	ActionLogin           Action = "login"
	ActionLogout          Action = "logout"
	ActionCommentCreate   Action = "comment.create"
	ActionCommentDelete   Action = "comment.delete"
	ActionReplyCreate     Action = "reply.create"
	ActionReplyDelete     Action = "reply.delete"
	ActionCommentVote     Action = "comment.vote"
	ActionReplyVote       Action = "reply.vote"
	ActionNewsLike        Action = "news.like"
	ActionNewsBookmark    Action = "news.bookmark"
	ActionAdminSuspend    Action = "admin.suspend"
	ActionAdminUnsuspend  Action = "admin.unsuspend"
	ActionAdminSoftDelete Action = "admin.softDelete"
	ActionAdminPermDelete Action = "admin.permanentDelete"
)

// ValidActions defines the recognised action kinds
var ValidActions = map[Action]bool{
	ActionRegister:        true,
	ActionLogin:           true,
	ActionLogout:          true,
	ActionCommentCreate:   true,
	ActionCommentDelete:   true,
	ActionReplyCreate:     true,
	ActionReplyDelete:     true,
	ActionCommentVote:     true,
	ActionReplyVote:       true,
	ActionNewsLike:        true,
	ActionNewsBookmark:    true,
	ActionAdminSuspend:    true,
	ActionAdminUnsuspend:  true,
	ActionAdminSoftDelete: true,
	ActionAdminPermDelete: true,
}

// Activity is an append-only audit entry
type Activity struct {
	ID        string         `json:"id" db:"id"`
	ActorID   string         `json:"actor_id" db:"actor_id"`
	ActorName string         `json:"actor_name" db:"actor_name"`
	Action    Action         `json:"action" db:"action"`
	ArticleID string         `json:"article_id,omitempty" db:"article_id"`
	TargetID  string         `json:"target_id,omitempty" db:"target_id"`
	Meta      map[string]any `json:"meta" db:"meta"` // Stored as JSONB
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// ActivityFilter narrows activity reads. Empty fields match everything.
type ActivityFilter struct {
	ActorID string `json:"actor_id,omitempty" form:"actor_id"`
	Action  Action `json:"action,omitempty" form:"action"`
}

// ActionCount is one row of the action-frequency summary
type ActionCount struct {
	Action Action `json:"action"`
	Count  int    `json:"count"`
}
