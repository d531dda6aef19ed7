// Package vote implements up/down vote state for a single comment or reply.
//
// A Set holds two disjoint groups of user ids. Toggle is the only mutation:
// pressing the same direction twice cancels the vote, pressing the opposite
// direction moves the user across in one step. Set is not safe for concurrent
// use; callers mutate it inside the owning article's atomic update.
package vote

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Direction is the direction of a vote request
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates a raw direction value
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown vote direction %q", s)
	}
}

// State is a user's standing vote on a target
type State string

const (
	StateUp   State = "up"
	StateDown State = "down"
	StateNone State = "none"
)

// Result is returned by every vote operation
type Result struct {
	Score         int   `json:"score"`
	UpvoteCount   int   `json:"upvote_count"`
	DownvoteCount int   `json:"downvote_count"`
	UserState     State `json:"user_state"`
}

// Set is the vote state of one target
type Set struct {
	up   map[string]struct{}
	down map[string]struct{}
}

// NewSet creates an empty vote set
func NewSet() Set {
	return Set{
		up:   make(map[string]struct{}),
		down: make(map[string]struct{}),
	}
}

func (s *Set) init() {
	if s.up == nil {
		s.up = make(map[string]struct{})
	}
	if s.down == nil {
		s.down = make(map[string]struct{})
	}
}

// Toggle applies a vote by userID and returns the new derived state
func (s *Set) Toggle(userID string, dir Direction) Result {
	s.init()

	_, hadUp := s.up[userID]
	_, hadDown := s.down[userID]

	delete(s.up, userID)
	delete(s.down, userID)

	if dir == Up && !hadUp {
		s.up[userID] = struct{}{}
	}
	if dir == Down && !hadDown {
		s.down[userID] = struct{}{}
	}

	return s.ResultFor(userID)
}

// ResultFor reports the score and the given user's standing vote
func (s *Set) ResultFor(userID string) Result {
	return Result{
		Score:         s.Score(),
		UpvoteCount:   len(s.up),
		DownvoteCount: len(s.down),
		UserState:     s.StateOf(userID),
	}
}

// StateOf returns userID's standing vote
func (s *Set) StateOf(userID string) State {
	if _, ok := s.up[userID]; ok {
		return StateUp
	}
	if _, ok := s.down[userID]; ok {
		return StateDown
	}
	return StateNone
}

// Score is |upvotes| - |downvotes|
func (s *Set) Score() int {
	return len(s.up) - len(s.down)
}

func (s *Set) UpvoteCount() int   { return len(s.up) }
func (s *Set) DownvoteCount() int { return len(s.down) }

// Upvoters returns the upvoting user ids in sorted order
func (s *Set) Upvoters() []string { return sortedKeys(s.up) }

// Downvoters returns the downvoting user ids in sorted order
func (s *Set) Downvoters() []string { return sortedKeys(s.down) }

// Clone returns an independent copy
func (s *Set) Clone() Set {
	c := NewSet()
	for id := range s.up {
		c.up[id] = struct{}{}
	}
	for id := range s.down {
		c.down[id] = struct{}{}
	}
	return c
}

type wireSet struct {
	Upvotes   []string `json:"upvotes"`
	Downvotes []string `json:"downvotes"`
	Score     int      `json:"score"`
}

// MarshalJSON writes the set as sorted id arrays plus the derived score
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSet{
		Upvotes:   s.Upvoters(),
		Downvotes: s.Downvoters(),
		Score:     s.Score(),
	})
}

// UnmarshalJSON restores a set. An id present in both arrays keeps only its
// upvote, so a corrupted document cannot break the disjointness invariant.
func (s *Set) UnmarshalJSON(data []byte) error {
	var w wireSet
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = NewSet()
	for _, id := range w.Upvotes {
		s.up[id] = struct{}{}
	}
	for _, id := range w.Downvotes {
		if _, ok := s.up[id]; ok {
			continue
		}
		s.down[id] = struct{}{}
	}
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
