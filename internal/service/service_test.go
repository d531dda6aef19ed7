package service_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/news-interactions-api/internal/activity"
	"github.com/news-interactions-api/internal/apperr"
	"github.com/news-interactions-api/internal/config"
	"github.com/news-interactions-api/internal/mocks"
	"github.com/news-interactions-api/internal/models"
	"github.com/news-interactions-api/internal/moderation"
	"github.com/news-interactions-api/internal/repository"
	"github.com/news-interactions-api/internal/service"
	"github.com/news-interactions-api/internal/vote"
	"github.com/rs/zerolog"
)

const (
	aliceID = "11111111-1111-4111-8111-111111111111"
	bobID   = "22222222-2222-4222-8222-222222222222"
	adminID = "33333333-3333-4333-8333-333333333333"
)

var (
	alice = models.Identity{UserID: aliceID, Username: "alice", Role: models.RoleUser}
	bob   = models.Identity{UserID: bobID, Username: "bob", Role: models.RoleUser}
	admin = models.Identity{UserID: adminID, Username: "admin", Role: models.RoleAdmin}
)

type fixture struct {
	articles     *mocks.MockArticleRepository
	interactions *mocks.MockInteractionRepository
	activities   *mocks.MockActivityRepository
	users        *mocks.MockUserRepository
	recorder     *mocks.MockRecorder
	repos        *repository.Repositories
	cfg          *config.Config
	filter       *moderation.Filter
	svc          *service.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	articles := mocks.NewMockArticleRepository()
	f := &fixture{
		articles:     articles,
		interactions: mocks.NewMockInteractionRepository(articles),
		activities:   mocks.NewMockActivityRepository(),
		users:        mocks.NewMockUserRepository(),
		recorder:     mocks.NewMockRecorder(),
		cfg: &config.Config{
			Moderation: config.ModerationConfig{ReviewThreshold: 3, MaxWords: 500},
			Pagination: config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
		},
	}
	f.repos = &repository.Repositories{
		Article:     f.articles,
		Interaction: f.interactions,
		Activity:    f.activities,
		User:        f.users,
	}

	filter, err := moderation.NewFilter(&moderation.WordList{
		Phrases: []string{"shut up"},
		Words:   []string{"damn", "idiot", "jerk"},
	}, 3)
	if err != nil {
		t.Fatalf("NewFilter failed: %v", err)
	}
	f.filter = filter
	f.svc = service.NewServices(f.repos, f.recorder, filter, f.cfg, zerolog.Nop())

	articles.Add(&models.Article{ID: "a0000000-0000-4000-8000-000000000001", ArticleID: "x", Title: "Article X"})
	articles.Add(&models.Article{ID: "a0000000-0000-4000-8000-000000000002", ArticleID: "y", Title: "Article Y"})
	f.users.Add(&models.User{ID: aliceID, Username: "alice", Role: models.RoleUser})
	f.users.Add(&models.User{ID: bobID, Username: "bob", Role: models.RoleUser})
	f.users.Add(&models.User{ID: adminID, Username: "admin", Role: models.RoleAdmin})
	return f
}

func assertKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s error, got nil", want)
	}
	if got := apperr.KindOf(err); got != want {
		t.Fatalf("Expected %s error, got %s (%v)", want, got, err)
	}
}

func TestEndToEnd_CommentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Comment.AddComment(ctx, alice, "x", "Great reporting")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if _, err := f.svc.Comment.AddReply(ctx, bob, "x", c.ID, "Agreed"); err != nil {
		t.Fatalf("AddReply failed: %v", err)
	}
	res, err := f.svc.Vote.Vote(ctx, bob, models.TargetRef{ArticleID: "x", CommentID: c.ID}, "up")
	if err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if res.Score != 1 || res.UserState != vote.StateUp {
		t.Errorf("Unexpected vote result %+v", res)
	}

	if err := f.svc.Comment.DeleteComment(ctx, alice, "x", c.ID); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}

	page, err := f.svc.Comment.ListComments(ctx, "x", models.PageRequest{})
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("Expected no comments, got %d", page.Total)
	}

	_, err = f.svc.Vote.Vote(ctx, bob, models.TargetRef{ArticleID: "x", CommentID: c.ID}, "up")
	assertKind(t, err, apperr.KindNotFound)

	_, err = f.svc.Comment.ListReplies(ctx, "x", c.ID, models.PageRequest{})
	assertKind(t, err, apperr.KindNotFound)

	want := []models.Action{models.ActionCommentCreate, models.ActionReplyCreate, models.ActionCommentVote, models.ActionCommentDelete}
	got := f.recorder.Actions()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Expected actions %v, got %v", want, got)
	}
}

func TestAddComment_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		articleID string
		text      string
		wantKind  apperr.Kind
	}{
		{"empty text", "x", "", apperr.KindValidation},
		{"whitespace text", "x", "  \n ", apperr.KindValidation},
		{"empty text on missing article", "missing", "", apperr.KindValidation},
		{"missing article", "missing", "hello", apperr.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Comment.AddComment(ctx, alice, tt.articleID, tt.text)
			assertKind(t, err, tt.wantKind)
		})
	}

	if len(f.recorder.Entries) != 0 {
		t.Error("Failed mutations must not be recorded")
	}
}

func TestAddComment_Moderation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Comment.AddComment(ctx, alice, "x", "damn idiot jerk")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if c.Visibility != models.VisibilityReview || !c.Flagged {
		t.Errorf("Expected flagged review comment, got %+v", c.Post)
	}
	if c.Text != "d**n i***t j**k" || c.OriginalText != "damn idiot jerk" {
		t.Errorf("Unexpected text %q / %q", c.Text, c.OriginalText)
	}

	c2, _ := f.svc.Comment.AddComment(ctx, alice, "x", "damn idiot")
	if c2.Visibility != models.VisibilityVisible {
		t.Errorf("Two terms should stay visible, got %s", c2.Visibility)
	}

	page, _ := f.svc.Comment.ListComments(ctx, "x", models.PageRequest{})
	if page.Total != 2 {
		t.Errorf("Flagged comments are still listed, expected 2 got %d", page.Total)
	}
}

func TestDeleteComment_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.svc.Comment.AddComment(ctx, alice, "x", "mine")

	err := f.svc.Comment.DeleteComment(ctx, bob, "x", c.ID)
	assertKind(t, err, apperr.KindForbidden)

	if err := f.svc.Comment.DeleteComment(ctx, admin, "x", c.ID); err != nil {
		t.Fatalf("Admin delete failed: %v", err)
	}

	err = f.svc.Comment.DeleteComment(ctx, admin, "x", c.ID)
	assertKind(t, err, apperr.KindNotFound)

	err = f.svc.Comment.DeleteComment(ctx, admin, "missing", c.ID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.svc.Comment.AddComment(ctx, alice, "x", "parent")

	_, err := f.svc.Comment.AddReply(ctx, bob, "x", "no-such-comment", "hi")
	assertKind(t, err, apperr.KindNotFound)

	// A comment id from another article is not a parent under this one
	_, err = f.svc.Comment.AddReply(ctx, bob, "y", c.ID, "hi")
	assertKind(t, err, apperr.KindNotFound)

	r, err := f.svc.Comment.AddReply(ctx, bob, "x", c.ID, "child")
	if err != nil {
		t.Fatalf("AddReply failed: %v", err)
	}
	if r.ParentID != c.ID {
		t.Errorf("Expected parent %s, got %s", c.ID, r.ParentID)
	}

	err = f.svc.Comment.DeleteReply(ctx, alice, "x", c.ID, r.ID)
	assertKind(t, err, apperr.KindForbidden)

	res, err := f.svc.Vote.Vote(ctx, alice, models.TargetRef{ArticleID: "x", CommentID: c.ID, ReplyID: r.ID}, "down")
	if err != nil {
		t.Fatalf("Reply vote failed: %v", err)
	}
	if res.Score != -1 {
		t.Errorf("Expected -1, got %d", res.Score)
	}

	replies, err := f.svc.Comment.ListReplies(ctx, "x", c.ID, models.PageRequest{})
	if err != nil {
		t.Fatalf("ListReplies failed: %v", err)
	}
	if replies.Total != 1 || replies.Items[0].ParentID != c.ID || replies.Items[0].DownvoteCount != 1 {
		t.Errorf("Unexpected replies page %+v", replies.Items)
	}

	if err := f.svc.Comment.DeleteReply(ctx, bob, "x", c.ID, r.ID); err != nil {
		t.Fatalf("DeleteReply failed: %v", err)
	}
	err = f.svc.Comment.DeleteReply(ctx, bob, "x", c.ID, r.ID)
	assertKind(t, err, apperr.KindNotFound)

	_, err = f.svc.Vote.Vote(ctx, alice, models.TargetRef{ArticleID: "x", CommentID: c.ID, ReplyID: r.ID}, "up")
	assertKind(t, err, apperr.KindNotFound)

	page, _ := f.svc.Comment.ListComments(ctx, "x", models.PageRequest{})
	if page.Items[0].ReplyCount != 0 {
		t.Errorf("Expected 0 replies, got %d", page.Items[0].ReplyCount)
	}
}

func TestVote_ToggleSemantics(t *testing.T) {
	tests := []struct {
		name       string
		directions []string
		wantState  vote.State
		wantScore  int
	}{
		{"up up toggles off", []string{"up", "up"}, vote.StateNone, 0},
		{"up down switches", []string{"up", "down"}, vote.StateDown, -1},
		{"down up switches", []string{"down", "up"}, vote.StateUp, 1},
		{"down down toggles off", []string{"down", "down"}, vote.StateNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			c, _ := f.svc.Comment.AddComment(ctx, alice, "x", "vote on me")
			target := models.TargetRef{ArticleID: "x", CommentID: c.ID}

			var res *vote.Result
			for _, d := range tt.directions {
				var err error
				res, err = f.svc.Vote.Vote(ctx, bob, target, d)
				if err != nil {
					t.Fatalf("Vote failed: %v", err)
				}
				if res.UpvoteCount+res.DownvoteCount > 1 {
					t.Fatalf("User counted in both sets: %+v", res)
				}
			}
			if res.UserState != tt.wantState || res.Score != tt.wantScore {
				t.Errorf("Expected %s/%d, got %s/%d", tt.wantState, tt.wantScore, res.UserState, res.Score)
			}
		})
	}
}

func TestVote_InvalidDirection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, _ := f.svc.Comment.AddComment(ctx, alice, "x", "hello")
	before := f.articles.UpdateCalls

	_, err := f.svc.Vote.Vote(ctx, bob, models.TargetRef{ArticleID: "x", CommentID: c.ID}, "sideways")
	assertKind(t, err, apperr.KindValidation)

	if f.articles.UpdateCalls != before {
		t.Error("Validation must fail before touching the store")
	}
}

func TestVote_ConcurrentVotersAllCounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, _ := f.svc.Comment.AddComment(ctx, alice, "x", "popular")
	target := models.TargetRef{ArticleID: "x", CommentID: c.ID}

	const voters = 50
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			voter := models.Identity{UserID: fmt.Sprintf("voter-%d", i), Username: "v"}
			dir := "up"
			if i%5 == 0 {
				dir = "down"
			}
			if _, err := f.svc.Vote.Vote(ctx, voter, target, dir); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Concurrent vote failed: %v", err)
	}

	article, _ := f.articles.GetByExternalID(ctx, "x")
	votes := article.FindComment(c.ID).Votes
	if votes.UpvoteCount() != 40 || votes.DownvoteCount() != 10 || votes.Score() != 30 {
		t.Errorf("Expected 40/10 score 30, got %d/%d score %d", votes.UpvoteCount(), votes.DownvoteCount(), votes.Score())
	}
}

func TestVote_RacingDeleteIsConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, _ := f.svc.Comment.AddComment(ctx, alice, "x", "contested")
	target := models.TargetRef{ArticleID: "x", CommentID: c.ID}

	var wg sync.WaitGroup
	var voteErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, voteErr = f.svc.Vote.Vote(ctx, bob, target, "up")
	}()
	go func() {
		defer wg.Done()
		_ = f.svc.Comment.DeleteComment(ctx, alice, "x", c.ID)
	}()
	wg.Wait()

	if voteErr != nil && apperr.KindOf(voteErr) != apperr.KindNotFound {
		t.Fatalf("Vote must either succeed or report not found, got %v", voteErr)
	}
	article, _ := f.articles.GetByExternalID(ctx, "x")
	if article.FindComment(c.ID) != nil {
		t.Error("Comment should be gone after delete")
	}
}

func TestToggleLike_PairsAreIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Seed an existing like count from other readers
	if err := f.articles.Update(ctx, "x", func(a *models.Article) error {
		a.LikeCount = 7
		return nil
	}); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	wantLiked := []bool{true, false, true, false}
	for i, want := range wantLiked {
		state, err := f.svc.Engagement.ToggleLike(ctx, alice, "x")
		if err != nil {
			t.Fatalf("ToggleLike failed: %v", err)
		}
		if state.Liked != want {
			t.Errorf("Toggle %d: expected liked=%v, got %v", i, want, state.Liked)
		}
	}

	count, err := f.svc.Engagement.LikeCount(ctx, "x")
	if err != nil {
		t.Fatalf("LikeCount failed: %v", err)
	}
	if count != 7 {
		t.Errorf("Expected like count unchanged at 7, got %d", count)
	}
}

func TestToggleLike_NeverNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// An out-of-order record says liked while the counter is already 0
	err := f.interactions.Apply(ctx, "x", bobID, func(rec *models.Interaction, _ *int) error {
		rec.Liked = true
		return nil
	})
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	state, err := f.svc.Engagement.ToggleLike(ctx, bob, "x")
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if state.Liked || state.LikeCount != 0 {
		t.Errorf("Expected unliked with count 0, got %+v", state)
	}
}

func TestToggleLike_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const readers = 30
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reader := models.Identity{UserID: fmt.Sprintf("reader-%d", i)}
			if _, err := f.svc.Engagement.ToggleLike(ctx, reader, "x"); err != nil {
				t.Errorf("ToggleLike failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	count, _ := f.svc.Engagement.LikeCount(ctx, "x")
	if count != readers {
		t.Errorf("Expected %d likes, got %d", readers, count)
	}
}

func TestEngagement_StatusAndBookmarks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.svc.Engagement.Status(ctx, alice, "x")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Liked || status.Bookmarked {
		t.Errorf("Fresh status should be empty, got %+v", status)
	}

	if _, err := f.svc.Engagement.ToggleLike(ctx, alice, "x"); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	for _, id := range []string{"x", "y"} {
		state, err := f.svc.Engagement.ToggleBookmark(ctx, alice, id)
		if err != nil || !state.Bookmarked {
			t.Fatalf("ToggleBookmark failed: %v %+v", err, state)
		}
	}

	status, _ = f.svc.Engagement.Status(ctx, alice, "x")
	if !status.Liked || !status.Bookmarked || status.LikeCount != 1 {
		t.Errorf("Unexpected status %+v", status)
	}

	page, err := f.svc.Engagement.ListBookmarks(ctx, alice, models.PageRequest{Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("ListBookmarks failed: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 1 || page.TotalPages != 2 {
		t.Errorf("Unexpected bookmark page %+v", page)
	}

	if _, err := f.svc.Engagement.ToggleBookmark(ctx, alice, "y"); err != nil {
		t.Fatalf("ToggleBookmark failed: %v", err)
	}
	page, _ = f.svc.Engagement.ListBookmarks(ctx, alice, models.PageRequest{})
	if page.Total != 1 || page.Items[0].ArticleID != "x" {
		t.Errorf("Expected only x bookmarked, got %+v", page)
	}

	_, err = f.svc.Engagement.ToggleLike(ctx, alice, "missing")
	assertKind(t, err, apperr.KindNotFound)
	_, err = f.svc.Engagement.Status(ctx, alice, "missing")
	assertKind(t, err, apperr.KindNotFound)
}

func TestListComments_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 25; i++ {
		c, err := f.svc.Comment.AddComment(ctx, alice, "x", fmt.Sprintf("comment %d", i))
		if err != nil {
			t.Fatalf("AddComment failed: %v", err)
		}
		ids = append(ids, c.ID)
	}

	page, err := f.svc.Comment.ListComments(ctx, "x", models.PageRequest{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if page.Total != 25 || len(page.Items) != 10 || page.TotalPages != 3 {
		t.Fatalf("Unexpected page %d/%d/%d", page.Total, len(page.Items), page.TotalPages)
	}
	if page.Items[0].ID != ids[10] {
		t.Errorf("Expected oldest-first ordering")
	}

	page, _ = f.svc.Comment.ListComments(ctx, "x", models.PageRequest{Page: 1, PageSize: 5, Order: "desc"})
	if page.Items[0].ID != ids[24] {
		t.Errorf("Expected newest first with order=desc")
	}

	page, _ = f.svc.Comment.ListComments(ctx, "x", models.PageRequest{Page: 9, PageSize: 10})
	if len(page.Items) != 0 || page.Total != 25 {
		t.Errorf("Page past the end should be empty with the total, got %d/%d", len(page.Items), page.Total)
	}

	page, _ = f.svc.Comment.ListComments(ctx, "x", models.PageRequest{Page: -1, PageSize: 1000})
	if page.Page != 1 || page.PageSize != 100 {
		t.Errorf("Expected clamped request, got page=%d size=%d", page.Page, page.PageSize)
	}

	_, err = f.svc.Comment.ListComments(ctx, "missing", models.PageRequest{})
	assertKind(t, err, apperr.KindNotFound)
}

func TestPaging_OutOfRangeRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.Comment.AddComment(ctx, alice, "x", "hello")

	huge := models.PageRequest{Page: math.MaxInt / 10, PageSize: 20}

	_, err := f.svc.Comment.ListComments(ctx, "x", huge)
	assertKind(t, err, apperr.KindValidation)

	_, err = f.svc.Comment.ListMyComments(ctx, alice, huge)
	assertKind(t, err, apperr.KindValidation)

	_, err = f.svc.Engagement.ListBookmarks(ctx, alice, huge)
	assertKind(t, err, apperr.KindValidation)

	_, err = f.svc.Activity.List(ctx, models.ActivityFilter{}, huge)
	assertKind(t, err, apperr.KindValidation)

	// The largest page whose offset still fits is served, empty
	edge := models.PageRequest{Page: math.MaxInt / 20, PageSize: 20}
	page, err := f.svc.Comment.ListComments(ctx, "x", edge)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 1 {
		t.Errorf("Expected an empty page with the total, got %d/%d", len(page.Items), page.Total)
	}
}

func TestListMyComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.svc.Comment.AddComment(ctx, alice, "x", "on x")
	f.svc.Comment.AddComment(ctx, bob, "y", "bob on y")
	f.svc.Comment.AddReply(ctx, alice, "x", c.ID, "self reply")
	f.svc.Comment.AddComment(ctx, alice, "y", "on y")

	page, err := f.svc.Comment.ListMyComments(ctx, alice, models.PageRequest{})
	if err != nil {
		t.Fatalf("ListMyComments failed: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("Expected 3 authored posts, got %d", page.Total)
	}
	for _, item := range page.Items {
		if item.AuthorID != aliceID {
			t.Errorf("Unexpected author %s", item.AuthorID)
		}
		if item.OriginalText == "" {
			t.Errorf("Expected the author's submitted text on %s", item.ID)
		}
	}
	for i := 1; i < len(page.Items); i++ {
		if page.Items[i].CreatedAt.After(page.Items[i-1].CreatedAt) {
			t.Errorf("Expected newest first ordering")
		}
	}
}

func TestMutation_StorageFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.articles.UpdateError = errors.New("connection reset")

	_, err := f.svc.Comment.AddComment(ctx, alice, "x", "hello")
	assertKind(t, err, apperr.KindInternal)
	if len(f.recorder.Entries) != 0 {
		t.Error("Failed mutation must not be recorded")
	}
}

func TestMutation_RecorderFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.activities.CreateError = errors.New("activity table locked")
	recorder := activity.NewRecorder(f.activities, zerolog.Nop())
	svc := service.NewServices(f.repos, recorder, f.filter, f.cfg, zerolog.Nop())

	c, err := svc.Comment.AddComment(ctx, alice, "x", "still works")
	if err != nil {
		t.Fatalf("AddComment should succeed despite recorder failure: %v", err)
	}
	if f.activities.CreateCalls != 1 {
		t.Errorf("Expected one recording attempt, got %d", f.activities.CreateCalls)
	}
	article, _ := f.articles.GetByExternalID(ctx, "x")
	if article.FindComment(c.ID) == nil {
		t.Error("Comment should be stored")
	}
}
