// Package authz decides whether an actor may mutate a resource.
package authz

import (
	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/models"
)

// Action is a guarded mutation
type Action string

const (
	DeleteComment     Action = "comment.delete"
	DeleteReply       Action = "reply.delete"
	SuspendUser       Action = "admin.suspend"
	UnsuspendUser     Action = "admin.unsuspend"
	SoftDeleteUser    Action = "admin.softDelete"
	PermanentlyDelete Action = "admin.permanentDelete"
	UpsertArticle     Action = "article.upsert"
	ReadActivity      Action = "activity.read"
	ProvisionUser     Action = "admin.provision"
)

// accountActions target a user account. The owner is the target account id.
var accountActions = map[Action]bool{
	SuspendUser:       true,
	UnsuspendUser:     true,
	SoftDeleteUser:    true,
	PermanentlyDelete: true,
}

// CanMutate reports whether actorID with actorRole may perform action on a
// resource owned by ownerID.
func CanMutate(action Action, actorID string, actorRole models.Role, ownerID string) bool {
	return Check(action, actorID, actorRole, ownerID) == nil
}

// Check is CanMutate with a typed Forbidden error describing the refusal
func Check(action Action, actorID string, actorRole models.Role, ownerID string) error {
	if actorID == "" {
		return apperr.Forbidden("no acting user")
	}

	if accountActions[action] {
		// Self-targeting is rejected before the role check.
		if actorID == ownerID {
			return apperr.Forbidden("cannot perform %s on your own account", action)
		}
		if actorRole != models.RoleAdmin {
			return apperr.Forbidden("admin role required")
		}
		return nil
	}

	switch action {
	case DeleteComment, DeleteReply:
		if actorRole == models.RoleAdmin || (ownerID != "" && actorID == ownerID) {
			return nil
		}
		return apperr.Forbidden("only the author or an admin may delete this")
	case UpsertArticle, ReadActivity, ProvisionUser:
		if actorRole == models.RoleAdmin {
			return nil
		}
		return apperr.Forbidden("admin role required")
	default:
		return apperr.Forbidden("unknown action %s", action)
	}
}
