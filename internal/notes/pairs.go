package notes

import (
	"regexp"
	"strings"
)

// Answer markers recorded in conversation history in place of a literal answer.
const (
	SkippedMarker = "[SKIPPED]"

	irrelevantPrefix  = "[IRRELEVANT: "
	topicChangePrefix = "[TOPIC_CHANGE: "
	suggestionPrefix  = "[SUGGESTED_QUESTION: "
)

const (
	questionLabel = "Domanda:"
	answerLabel   = "Risposta:"
)

// IrrelevantMarker records a reply flagging the question as off-target.
func IrrelevantMarker(text string) string { return irrelevantPrefix + text + "]" }

// TopicChangeMarker records a requested topic change.
func TopicChangeMarker(topic string) string { return topicChangePrefix + topic + "]" }

// SuggestedQuestionMarker records a question suggested by the user.
func SuggestedQuestionMarker(text string) string { return suggestionPrefix + text + "]" }

// IsMarker reports whether answer is one of the history markers rather than user content.
func IsMarker(answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == SkippedMarker {
		return true
	}
	if !strings.HasSuffix(answer, "]") {
		return false
	}
	for _, prefix := range []string{irrelevantPrefix, topicChangePrefix, suggestionPrefix} {
		if strings.HasPrefix(answer, prefix) {
			return true
		}
	}
	return false
}

// Pair is one recorded question and its answer or marker.
type Pair struct {
	Question string
	Answer   string
}

// String renders the pair in the on-disk note format.
func (p Pair) String() string {
	return questionLabel + " " + p.Question + "\n\n" + answerLabel + " " + p.Answer
}

// IsMarker reports whether the pair carries a marker instead of an answer.
func (p Pair) IsMarker() bool {
	return IsMarker(p.Answer)
}

// Labels only count at the start of a line; answers are single lines, so the
// same words inside an answer stay part of it.
var (
	questionStart = regexp.MustCompile(`(?m)^` + questionLabel)
	answerStart   = regexp.MustCompile(`(?m)^` + answerLabel)
)

// ParsePairs splits a note body into question/answer pairs.
// Text before the first "Domanda:" line is ignored; a question without an answer gets an empty one.
func ParsePairs(body string) []Pair {
	starts := questionStart.FindAllStringIndex(body, -1)
	if len(starts) == 0 {
		return nil
	}

	pairs := make([]Pair, 0, len(starts))
	for i, loc := range starts {
		end := len(body)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		chunk := body[loc[1]:end]

		question, answer := chunk, ""
		if a := answerStart.FindStringIndex(chunk); a != nil {
			question, answer = chunk[:a[0]], chunk[a[1]:]
		}
		question = strings.TrimSpace(question)
		if question == "" {
			continue
		}
		pairs = append(pairs, Pair{
			Question: question,
			Answer:   strings.TrimSpace(answer),
		})
	}
	return pairs
}

// WithoutMarkers drops pairs whose answer is a marker or empty.
func WithoutMarkers(pairs []Pair) []Pair {
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.IsMarker() || strings.TrimSpace(p.Answer) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
