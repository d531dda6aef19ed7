package mocks

import (
	"context"
	"sync"

	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/auth"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/service"
)

// MockRecorder is an ActivityRecorder that keeps entries in memory
type MockRecorder struct {
	mu      sync.Mutex
	Entries []*models.Activity
}

// Verify interface compliance
var _ service.ActivityRecorder = (*MockRecorder)(nil)

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{}
}

func (m *MockRecorder) Record(ctx context.Context, entry *models.Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
}

// Actions returns the recorded action kinds in order
func (m *MockRecorder) Actions() []models.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]models.Action, len(m.Entries))
	for i, e := range m.Entries {
		actions[i] = e.Action
	}
	return actions
}

// MockResolver resolves tokens from a fixed table
type MockResolver struct {
	Identities map[string]*models.Identity
	Err        error
}

// Verify interface compliance
var _ auth.Resolver = (*MockResolver)(nil)

func NewMockResolver() *MockResolver {
	return &MockResolver{Identities: make(map[string]*models.Identity)}
}

// Add registers token as resolving to identity
func (m *MockResolver) Add(token string, identity models.Identity) {
	m.Identities[token] = &identity
}

func (m *MockResolver) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	id, ok := m.Identities[token]
	if !ok {
		return nil, apperr.Unauthenticated("invalid token")
	}
	cp := *id
	return &cp, nil
}
