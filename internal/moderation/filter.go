// Package moderation masks disallowed words and phrases in user-submitted text
// and flags heavily matched content for review.
package moderation

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/news-interactions-api/internal/models"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// DefaultReviewThreshold is the number of distinct matched terms that sends content to review
const DefaultReviewThreshold = 3

//go:embed wordlist.yaml
var defaultWordList []byte

// WordList is the configured set of banned terms
type WordList struct {
	Phrases []string `yaml:"phrases"`
	Words   []string `yaml:"words"`
}

// Result is the outcome of moderating one piece of text
type Result struct {
	DisplayText  string
	OriginalText string
	Flagged      bool
	MatchedTerms []string
	Visibility   models.Visibility
}

type term struct {
	value string
	re    *regexp.Regexp
}

// Filter applies a word list. It is immutable after construction and safe
// for concurrent use.
type Filter struct {
	phrases   []term
	words     []term
	threshold int
}

// ParseWordList decodes a YAML word list
func ParseWordList(data []byte) (*WordList, error) {
	var list WordList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse word list: %w", err)
	}
	return &list, nil
}

// LoadWordList reads a word list from path, or the embedded default when path is empty
func LoadWordList(path string) (*WordList, error) {
	if path == "" {
		return ParseWordList(defaultWordList)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", path, err)
	}
	return ParseWordList(data)
}

// NewFilter compiles a word list. threshold <= 0 selects DefaultReviewThreshold.
func NewFilter(list *WordList, threshold int) (*Filter, error) {
	if threshold <= 0 {
		threshold = DefaultReviewThreshold
	}
	phrases, err := compileTerms(list.Phrases)
	if err != nil {
		return nil, err
	}
	words, err := compileTerms(list.Words)
	if err != nil {
		return nil, err
	}
	return &Filter{phrases: phrases, words: words, threshold: threshold}, nil
}

// NewDefaultFilter builds a filter from the embedded word list
func NewDefaultFilter() *Filter {
	list, err := ParseWordList(defaultWordList)
	if err != nil {
		panic(err)
	}
	f, err := NewFilter(list, DefaultReviewThreshold)
	if err != nil {
		panic(err)
	}
	return f
}

func compileTerms(raw []string) ([]term, error) {
	cleaned := lo.Uniq(lo.FilterMap(raw, func(s string, _ int) (string, bool) {
		s = strings.ToLower(strings.TrimSpace(s))
		return s, s != ""
	}))

	terms := make([]term, 0, len(cleaned))
	for _, value := range cleaned {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(value) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("invalid moderation term %q: %w", value, err)
		}
		terms = append(terms, term{value: value, re: re})
	}
	return terms, nil
}

// Moderate masks every configured phrase, then every configured word. Words
// are matched against the already-masked text so a word inside a masked
// phrase is not reported twice.
func (f *Filter) Moderate(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{OriginalText: text, Visibility: models.VisibilityVisible, MatchedTerms: []string{}}
	}

	sanitized := text
	var matched []string

	for _, p := range f.phrases {
		if !p.re.MatchString(text) {
			continue
		}
		matched = append(matched, p.value)
		sanitized = p.re.ReplaceAllStringFunc(sanitized, maskPhrase)
	}

	for _, w := range f.words {
		if !w.re.MatchString(sanitized) {
			continue
		}
		matched = append(matched, w.value)
		sanitized = w.re.ReplaceAllStringFunc(sanitized, maskWord)
	}

	matched = lo.Uniq(matched)
	visibility := models.VisibilityVisible
	if len(matched) >= f.threshold {
		visibility = models.VisibilityReview
	}

	return Result{
		DisplayText:  sanitized,
		OriginalText: text,
		Flagged:      len(matched) > 0,
		MatchedTerms: append([]string{}, matched...),
		Visibility:   visibility,
	}
}

func maskPhrase(match string) string {
	parts := strings.Split(match, " ")
	for i, p := range parts {
		parts[i] = maskWord(p)
	}
	return strings.Join(parts, " ")
}

// maskWord redacts short words entirely and keeps the first and last
// character of longer ones. Length is preserved in runes.
func maskWord(word string) string {
	r := []rune(word)
	n := len(r)
	switch {
	case n == 0:
		return word
	case n <= 2:
		return strings.Repeat("*", n)
	default:
		return string(r[0]) + strings.Repeat("*", n-2) + string(r[n-1])
	}
}
