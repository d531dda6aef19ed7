package vote

import (
	"encoding/json"
	"testing"
)

func TestToggle(t *testing.T) {
	tests := []struct {
		name      string
		votes     []Direction
		wantState State
		wantScore int
	}{
		{"single up", []Direction{Up}, StateUp, 1},
		{"single down", []Direction{Down}, StateDown, -1},
		{"up twice cancels", []Direction{Up, Up}, StateNone, 0},
		{"down twice cancels", []Direction{Down, Down}, StateNone, 0},
		{"up then down switches", []Direction{Up, Down}, StateDown, -1},
		{"down then up switches", []Direction{Down, Up}, StateUp, 1},
		{"up down down returns to none", []Direction{Up, Down, Down}, StateNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSet()
			var res Result
			for _, d := range tt.votes {
				res = s.Toggle("user-a", d)
				assertDisjoint(t, &s)
			}
			if res.UserState != tt.wantState {
				t.Errorf("Expected state %s, got %s", tt.wantState, res.UserState)
			}
			if res.Score != tt.wantScore {
				t.Errorf("Expected score %d, got %d", tt.wantScore, res.Score)
			}
		})
	}
}

func TestToggle_MultipleUsers(t *testing.T) {
	s := NewSet()
	s.Toggle("a", Up)
	s.Toggle("b", Up)
	s.Toggle("c", Down)
	res := s.Toggle("d", Down)

	if res.Score != 0 {
		t.Errorf("Expected score 0, got %d", res.Score)
	}
	if res.UpvoteCount != 2 || res.DownvoteCount != 2 {
		t.Errorf("Expected 2/2, got %d/%d", res.UpvoteCount, res.DownvoteCount)
	}

	res = s.Toggle("c", Up)
	if res.Score != 2 {
		t.Errorf("Expected score 2 after switch, got %d", res.Score)
	}
	if s.StateOf("a") != StateUp {
		t.Errorf("Other users' votes must be untouched")
	}
}

func TestZeroValueSet(t *testing.T) {
	var s Set
	res := s.Toggle("a", Down)
	if res.Score != -1 {
		t.Errorf("Expected -1, got %d", res.Score)
	}
}

func TestParseDirection(t *testing.T) {
	if _, err := ParseDirection("up"); err != nil {
		t.Errorf("up should parse: %v", err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("sideways should be rejected")
	}
	if _, err := ParseDirection(""); err == nil {
		t.Error("empty direction should be rejected")
	}
}

func TestJSON_PreservesDisjointness(t *testing.T) {
	var s Set
	if err := json.Unmarshal([]byte(`{"upvotes":["a","b"],"downvotes":["b","c"]}`), &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	assertDisjoint(t, &s)
	if s.Score() != 1 {
		t.Errorf("Expected score 1, got %d", s.Score())
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"upvotes":["a","b"],"downvotes":["c"],"score":1}`
	if string(raw) != want {
		t.Errorf("Expected %s, got %s", want, raw)
	}
}

func assertDisjoint(t *testing.T, s *Set) {
	t.Helper()
	for _, id := range s.Upvoters() {
		for _, d := range s.Downvoters() {
			if id == d {
				t.Fatalf("user %s is in both vote sets", id)
			}
		}
	}
}
