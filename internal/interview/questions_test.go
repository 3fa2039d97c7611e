package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/raphaelgruber/braindump/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticGuidelines string

func (g staticGuidelines) Text() (string, error) { return string(g), nil }

type mapReader map[string]string

func (m mapReader) ReadNote(path string) (string, error) {
	if content, ok := m[path]; ok {
		return content, nil
	}
	return "", errors.New("not found")
}

func newTestGenerator(gen *llmtest.Generator, reader NoteReader) *QuestionGenerator {
	return NewQuestionGenerator(gen, NewValidator(gen, nil), staticGuidelines("## Principi\n1. Domande personali"), reader, QuestionOptions{}, nil)
}

func TestNextBuildsPrompt(t *testing.T) {
	gen := llmtest.New().OnLabel(LabelQuestionFollowUp, "Quale linguaggio usi più spesso?")
	reader := mapReader{
		"concetti/lavoro.md": "Il lavoro è " + strings.Repeat("z", 400),
	}
	g := newTestGenerator(gen, reader)

	var h History
	h.Add("Di cosa ti occupi?", "Programmo da 10 anni")
	got := g.Next(context.Background(), QuestionRequest{
		Kind:     QuestionFollowUp,
		Topic:    "lavoro",
		History:  &h,
		Context:  []string{"concetti/lavoro.md", "missing.md"},
		Previous: []string{"Di cosa ti occupi?"},
	})
	assert.Equal(t, "Quale linguaggio usi più spesso?", got)

	calls := gen.CallsFor(LabelQuestionFollowUp)
	require.Len(t, calls, 1)
	prompt := calls[0].Prompt
	assert.Contains(t, prompt, "Topic attuale: lavoro")
	assert.Contains(t, prompt, "approfondimento")
	assert.Contains(t, prompt, "LINEE GUIDA:\n## Principi")
	assert.Contains(t, prompt, "Dal file lavoro.md:\nIl lavoro è "+strings.Repeat("z", 188)+"...")
	assert.NotContains(t, prompt, strings.Repeat("z", 189))
	assert.Contains(t, prompt, "Risposta: Programmo da 10 anni")
}

func TestNextKindsUseOwnLabels(t *testing.T) {
	tests := []struct {
		kind  QuestionKind
		label string
		want  string
	}{
		{QuestionFirst, LabelQuestionFirst, "introduttiva"},
		{QuestionAfterSkip, LabelQuestionAfterSkip, "saltare"},
		{QuestionMoreRelevant, LabelQuestionMoreRelevant, "non era rilevante"},
		{QuestionTopicIntro, LabelQuestionTopicIntro, "cambiato l'argomento"},
		{QuestionFromSuggestion, LabelQuestionFromSuggestion, "i miei viaggi in Asia"},
		{QuestionWithFeedback, LabelQuestionWithFeedback, "troppo generica"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			gen := llmtest.New().OnLabel(tt.label, "Quale viaggio ti ha cambiato di più?")
			g := newTestGenerator(gen, nil)
			got := g.Next(context.Background(), QuestionRequest{
				Kind:       tt.kind,
				Topic:      "viaggi",
				Suggestion: "i miei viaggi in Asia",
				Feedback:   "troppo generica",
			})
			assert.Equal(t, "Quale viaggio ti ha cambiato di più?", got)
			calls := gen.CallsFor(tt.label)
			require.Len(t, calls, 1)
			assert.Contains(t, calls[0].Prompt, tt.want)
		})
	}
}

func TestNextRegeneratesDuplicates(t *testing.T) {
	gen := llmtest.New().OnLabel(LabelQuestionFollowUp,
		"Qual È Il Tuo Lavoro?",
		"Quale progetto ti ha dato più soddisfazione?",
	)
	g := newTestGenerator(gen, nil)

	got := g.Next(context.Background(), QuestionRequest{
		Kind:     QuestionFollowUp,
		Topic:    "lavoro",
		Previous: []string{"qual è il tuo lavoro?"},
	})
	assert.Equal(t, "Quale progetto ti ha dato più soddisfazione?", got)

	calls := gen.CallsFor(LabelQuestionFollowUp)
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Prompt, "è già stata posta")
}

func TestNextAcceptsDuplicateAfterMaxAttempts(t *testing.T) {
	gen := llmtest.New().OnLabel(LabelQuestionFollowUp, "Qual è il tuo lavoro?")
	g := newTestGenerator(gen, nil)

	got := g.Next(context.Background(), QuestionRequest{
		Kind:     QuestionFollowUp,
		Topic:    "lavoro",
		Previous: []string{"qual è il tuo lavoro?"},
	})
	assert.Equal(t, "Qual è il tuo lavoro?", got)
	assert.Len(t, gen.CallsFor(LabelQuestionFollowUp), 3)
}

func TestNextFallsBackWhenGatewayFails(t *testing.T) {
	gen := llmtest.New()
	g := newTestGenerator(gen, nil)

	got := g.Next(context.Background(), QuestionRequest{Kind: QuestionFirst, Topic: "hobby"})
	assert.True(t, IsValidQuestion(got))
	assert.Contains(t, BackupQuestions("hobby"), got)
}
