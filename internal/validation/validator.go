package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/vote"
	"github.com/samber/lo"
)

var (
	articleIDRegex = regexp.MustCompile(`^[A-Za-z0-9._:~-]{1,255}$`)
	usernameRegex  = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,100}$`)
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator provides validation methods
type Validator struct {
	maxWords int
}

// NewValidator creates a validator. maxWords <= 0 selects models.MaxCommentWords.
func NewValidator(maxWords int) *Validator {
	if maxWords <= 0 {
		maxWords = models.MaxCommentWords
	}
	return &Validator{maxWords: maxWords}
}

// ToError folds validation errors into a single ValidationFailed error, or nil
func ToError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	parts := lo.Map(errs, func(e ValidationError, _ int) string {
		return e.Field + ": " + e.Message
	})
	return apperr.Validation("%s", strings.Join(parts, "; "))
}

// ValidateCommentText checks a comment or reply body before moderation
func (v *Validator) ValidateCommentText(text string) []ValidationError {
	var errors []ValidationError

	words := len(strings.Fields(text))
	if words == 0 {
		errors = append(errors, ValidationError{Field: "text", Message: "text is required"})
	} else if words > v.maxWords {
		errors = append(errors, ValidationError{
			Field:   "text",
			Message: fmt.Sprintf("text must be at most %d words", v.maxWords),
			Value:   words,
		})
	}

	return errors
}

// ValidateDirection checks a vote direction
func (v *Validator) ValidateDirection(raw string) (vote.Direction, []ValidationError) {
	dir, err := vote.ParseDirection(raw)
	if err != nil {
		return "", []ValidationError{{Field: "direction", Message: "direction must be 'up' or 'down'", Value: raw}}
	}
	return dir, nil
}

// ValidateArticleID checks an external article id
func (v *Validator) ValidateArticleID(id string) []ValidationError {
	if id == "" {
		return []ValidationError{{Field: "article_id", Message: "article_id is required"}}
	}
	if !articleIDRegex.MatchString(id) {
		return []ValidationError{{Field: "article_id", Message: "invalid article_id format", Value: id}}
	}
	return nil
}

// ValidateArticle validates an article record from the article supply
func (v *Validator) ValidateArticle(article *models.ArticleInput) []ValidationError {
	errors := v.ValidateArticleID(article.ArticleID)

	// Validate title
	if strings.TrimSpace(article.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	}

	// Validate url if present
	if article.URL != "" {
		u, err := url.Parse(article.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, ValidationError{Field: "url", Message: "url must be an absolute http(s) URL", Value: article.URL})
		}
	}

	// Validate published_at format if present
	if article.PublishedAt != "" {
		if _, err := time.Parse(time.RFC3339, article.PublishedAt); err != nil {
			errors = append(errors, ValidationError{Field: "published_at", Message: "invalid ISO 8601 date format", Value: article.PublishedAt})
		}
	}

	return errors
}

// ValidateAccount validates an account record from the identity provider
func (v *Validator) ValidateAccount(id, username string, role models.Role) []ValidationError {
	var errors []ValidationError

	if !IsValidUUID(id) {
		errors = append(errors, ValidationError{Field: "user_id", Message: "invalid UUID format", Value: id})
	}
	if !usernameRegex.MatchString(username) {
		errors = append(errors, ValidationError{
			Field:   "username",
			Message: "username must be 3-100 letters, digits, '.', '_' or '-'",
			Value:   username,
		})
	}
	if !models.ValidRoles[role] {
		errors = append(errors, ValidationError{Field: "role", Message: "invalid role, must be one of: user, admin", Value: role})
	}

	return errors
}

// ValidateSuspension checks an optional suspension end time
func (v *Validator) ValidateSuspension(until *time.Time, now time.Time) []ValidationError {
	if until != nil && !until.After(now) {
		return []ValidationError{{Field: "until", Message: "until must be in the future", Value: until.Format(time.RFC3339)}}
	}
	return nil
}

// IsValidUUID reports whether s is a canonical UUID
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
