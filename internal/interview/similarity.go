package interview

import (
	"regexp"
	"strings"
)

var punctuationRegex = regexp.MustCompile(`[.,?!;:]`)

// Normalize lower-cases and trims a question for exact-match comparison.
func Normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func wordSet(q string) map[string]struct{} {
	words := strings.Fields(punctuationRegex.ReplaceAllString(Normalize(q), ""))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Similarity is the number of shared words over the size of the smaller word set.
func Similarity(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	shared := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(min(len(wa), len(wb)))
}

// MaxSimilarity returns the highest similarity between q and any previous question.
func MaxSimilarity(q string, previous []string) float64 {
	best := 0.0
	for _, p := range previous {
		best = max(best, Similarity(q, p))
	}
	return best
}

// IsDuplicate reports whether q exactly matches (after normalization) or
// overlaps above threshold with any previous question.
func IsDuplicate(q string, previous []string, threshold float64) bool {
	n := Normalize(q)
	for _, p := range previous {
		if Normalize(p) == n {
			return true
		}
	}
	return MaxSimilarity(q, previous) > threshold
}

// AskedSet tracks the questions asked on the current topic.
type AskedSet struct {
	order []string
	seen  map[string]struct{}
}

// NewAskedSet creates an empty set.
func NewAskedSet() *AskedSet {
	return &AskedSet{seen: make(map[string]struct{})}
}

// Add records q. Repeated questions are stored once.
func (s *AskedSet) Add(q string) {
	n := Normalize(q)
	if n == "" {
		return
	}
	if _, ok := s.seen[n]; ok {
		return
	}
	s.seen[n] = struct{}{}
	s.order = append(s.order, strings.TrimSpace(q))
}

// Contains reports whether q was asked, ignoring case and surrounding space.
func (s *AskedSet) Contains(q string) bool {
	_, ok := s.seen[Normalize(q)]
	return ok
}

// List returns the asked questions in order.
func (s *AskedSet) List() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of distinct questions asked.
func (s *AskedSet) Len() int { return len(s.order) }

// Reset forgets every question.
func (s *AskedSet) Reset() {
	s.order = nil
	s.seen = make(map[string]struct{})
}
