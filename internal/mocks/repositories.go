package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/repository"
	"github.com/samber/lo"
)

var (
	_ repository.ArticleRepository     = (*MockArticleRepository)(nil)
	_ repository.InteractionRepository = (*MockInteractionRepository)(nil)
	_ repository.ActivityRepository    = (*MockActivityRepository)(nil)
	_ repository.UserRepository        = (*MockUserRepository)(nil)
)

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 || offset < 0 {
		return []T{}
	}
	return lo.Subset(items, offset, uint(limit))
}

// MockArticleRepository is an in-memory ArticleRepository. Update runs under a
// single mutex on a deep copy, mirroring the row lock of the real store.
type MockArticleRepository struct {
	mu          sync.Mutex
	Articles    map[string]*models.Article
	GetError    error
	UpdateError error
	UpdateCalls int
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
	}
}

// Add stores an article directly, keyed by its external id
func (m *MockArticleRepository) Add(article *models.Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if article.Comments == nil {
		article.Comments = []*models.Comment{}
	}
	m.Articles[article.ArticleID] = article
}

func (m *MockArticleRepository) GetByExternalID(ctx context.Context, articleID string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	a, ok := m.Articles[articleID]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

func (m *MockArticleRepository) Upsert(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.Articles[article.ArticleID]; ok {
		article.ID = existing.ID
		article.LikeCount = existing.LikeCount
		article.Comments = existing.Comments
		article.CreatedAt = existing.CreatedAt
	} else if article.Comments == nil {
		article.Comments = []*models.Comment{}
	}
	m.Articles[article.ArticleID] = article.Clone()
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, articleID string, fn func(*models.Article) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}
	a, ok := m.Articles[articleID]
	if !ok {
		return repository.ErrArticleNotFound
	}
	working := a.Clone()
	if err := fn(working); err != nil {
		return err
	}
	working.LikeCount = models.ClampCount(working.LikeCount)
	m.Articles[articleID] = working
	return nil
}

func (m *MockArticleRepository) ListCommentsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.AuthoredComment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []*models.AuthoredComment
	for _, a := range m.Articles {
		for _, c := range a.Comments {
			if c.AuthorID == authorID {
				all = append(all, &models.AuthoredComment{ArticleID: a.ArticleID, ArticleTitle: a.Title, Post: c.Post})
			}
			for _, r := range c.Replies {
				if r.AuthorID == authorID {
					all = append(all, &models.AuthoredComment{ArticleID: a.ArticleID, ArticleTitle: a.Title, ParentID: c.ID, Post: r.Post})
				}
			}
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, limit, offset), len(all), nil
}

func (m *MockArticleRepository) ArticleIDsWithAuthor(ctx context.Context, authorID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id, a := range m.Articles {
		for _, c := range a.Comments {
			authored := c.AuthorID == authorID || lo.SomeBy(c.Replies, func(r *models.Reply) bool {
				return r.AuthorID == authorID
			})
			if authored {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type interactionKey struct {
	userID    string
	articleID string
}

// MockInteractionRepository is an in-memory InteractionRepository sharing the
// article store so like counters stay consistent with the records.
type MockInteractionRepository struct {
	mu         sync.Mutex
	articles   *MockArticleRepository
	Records    map[interactionKey]*models.Interaction
	ApplyError error
}

func NewMockInteractionRepository(articles *MockArticleRepository) *MockInteractionRepository {
	return &MockInteractionRepository{
		articles: articles,
		Records:  make(map[interactionKey]*models.Interaction),
	}
}

func (m *MockInteractionRepository) Apply(ctx context.Context, articleID, userID string, fn func(rec *models.Interaction, likeCount *int) error) error {
	m.articles.mu.Lock()
	defer m.articles.mu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ApplyError != nil {
		return m.ApplyError
	}
	a, ok := m.articles.Articles[articleID]
	if !ok {
		return repository.ErrArticleNotFound
	}

	key := interactionKey{userID: userID, articleID: articleID}
	rec := models.Interaction{UserID: userID, ArticleID: articleID}
	if existing, ok := m.Records[key]; ok {
		rec = *existing
	}
	count := a.LikeCount

	if err := fn(&rec, &count); err != nil {
		return err
	}

	m.Records[key] = &rec
	a.LikeCount = models.ClampCount(count)
	return nil
}

func (m *MockInteractionRepository) Get(ctx context.Context, articleID, userID string) (*models.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[interactionKey{userID: userID, articleID: articleID}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MockInteractionRepository) ListBookmarked(ctx context.Context, userID string, limit, offset int) ([]*models.Article, int, error) {
	m.articles.mu.Lock()
	defer m.articles.mu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	var articles []*models.Article
	for key, rec := range m.Records {
		if key.userID != userID || !rec.Bookmarked {
			continue
		}
		if a, ok := m.articles.Articles[key.articleID]; ok {
			articles = append(articles, a.Clone())
		}
	}
	sort.Slice(articles, func(i, j int) bool { return articles[i].ArticleID < articles[j].ArticleID })
	return page(articles, limit, offset), len(articles), nil
}

// MockActivityRepository is an in-memory ActivityRepository
type MockActivityRepository struct {
	mu          sync.Mutex
	Activities  []*models.Activity
	CreateError error
	CreateCalls int
}

func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{}
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Activities = append(m.Activities, activity)
	return nil
}

// Snapshot returns a copy of the recorded entries in insertion order
func (m *MockActivityRepository) Snapshot() []*models.Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Activity(nil), m.Activities...)
}

func (m *MockActivityRepository) List(ctx context.Context, filter models.ActivityFilter, limit, offset int) ([]*models.Activity, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := lo.Filter(m.Activities, func(a *models.Activity, _ int) bool {
		return (filter.ActorID == "" || a.ActorID == filter.ActorID) &&
			(filter.Action == "" || a.Action == filter.Action)
	})
	matched = lo.Reverse(matched)
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, limit, offset), len(matched), nil
}

func (m *MockActivityRepository) Summary(ctx context.Context, limit int) ([]models.ActionCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups := lo.GroupBy(m.Activities, func(a *models.Activity) models.Action { return a.Action })
	result := make([]models.ActionCount, 0, len(groups))
	for action, entries := range groups {
		result = append(result, models.ActionCount{Action: action, Count: len(entries)})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count == result[j].Count {
			return result[i].Action < result[j].Action
		}
		return result[i].Count > result[j].Count
	})
	return page(result, limit, 0), nil
}

// MockUserRepository is an in-memory UserRepository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*models.User
	GetError    error
	UpdateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*models.User),
	}
}

// Add stores a user directly
func (m *MockUserRepository) Add(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	m.Users[user.ID] = user
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.Users {
		if id != user.ID && u.Username == user.Username {
			return false, repository.ErrUsernameTaken
		}
	}
	if existing, ok := m.Users[user.ID]; ok {
		existing.Username = user.Username
		existing.Role = user.Role
		*user = *existing
		return false, nil
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	cp := *user
	m.Users[user.ID] = &cp
	return true, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	cp := *user
	m.Users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[id]; !ok {
		return false, nil
	}
	delete(m.Users, id)
	return true, nil
}
