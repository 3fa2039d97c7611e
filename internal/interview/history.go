package interview

import (
	"strings"

	"github.com/raphaelgruber/braindump/internal/notes"
)

// Windowing applied to histories embedded in question prompts.
const (
	HistoryWindowChars = 2000
	HistoryWindowPairs = 5
)

// History is the ordered log of question/answer pairs for the current topic.
type History struct {
	pairs []notes.Pair
}

// Add appends a pair; answer may be a marker.
func (h *History) Add(question, answer string) {
	h.pairs = append(h.pairs, notes.Pair{Question: question, Answer: answer})
}

// Pairs returns a copy of the recorded pairs.
func (h *History) Pairs() []notes.Pair {
	return append([]notes.Pair(nil), h.pairs...)
}

// Len returns the number of pairs.
func (h *History) Len() int { return len(h.pairs) }

// Reset discards every pair.
func (h *History) Reset() { h.pairs = nil }

// String renders the full history in note format.
func (h *History) String() string {
	return render(h.pairs)
}

// Window renders the history, keeping only the last keep pairs when the
// full rendering exceeds maxChars.
func (h *History) Window(maxChars, keep int) string {
	full := h.String()
	if len(full) <= maxChars || len(h.pairs) <= keep {
		return full
	}
	return render(h.pairs[len(h.pairs)-keep:])
}

// Tail returns at most the last n runes of the rendered history.
func (h *History) Tail(n int) string {
	r := []rune(h.String())
	if len(r) <= n {
		return string(r)
	}
	return string(r[len(r)-n:])
}

func render(pairs []notes.Pair) string {
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.String())
		b.WriteString("\n\n")
	}
	return b.String()
}
