package interview

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/raphaelgruber/braindump/internal/config"
	"github.com/raphaelgruber/braindump/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidQuestion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "Di cosa ti occupi nel tuo lavoro?", true},
		{"generale is not genera", "Qual è la tua opinione generale sul lavoro?", true},
		{"no question mark", "Parlami del tuo lavoro.", false},
		{"too few words", "Lavoro?", false},
		{"too many words", strings.Repeat("parola ", 31) + "fine?", false},
		{"too long", strings.Repeat("abcdefghij ", 14) + "ok?", false},
		{"bold markers", "Qual è il tuo **lavoro** ideale?", false},
		{"underscore emphasis", "Qual è il tuo __lavoro__ ideale?", false},
		{"heading", "# Qual è il tuo lavoro ideale?", false},
		{"colon before question", "Domanda: qual è il tuo lavoro?", false},
		{"denylist ecco", "Ecco, qual è il tuo lavoro ideale?", false},
		{"denylist genera", "Genera una domanda sul lavoro?", false},
		{"denylist ho capito", "Ho capito, e poi cosa è successo?", false},
		{"placeholder", "Cosa ti piace di [topic] oggi?", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidQuestion(tt.input); got != tt.want {
				t.Errorf("IsValidQuestion(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBackupPoolIsValid(t *testing.T) {
	for _, topic := range append(config.DefaultTopics, DefaultTopic, "tempo libero", "") {
		pool := BackupQuestions(topic)
		require.NotEmpty(t, pool, "topic %q", topic)
		for _, q := range pool {
			assert.True(t, IsValidQuestion(q), "backup %q", q)
			assert.True(t, strings.HasSuffix(q, "?"))
			assert.LessOrEqual(t, utf8.RuneCountInString(q), MaxQuestionRunes)
			assert.LessOrEqual(t, len(strings.Fields(q)), MaxQuestionWords)
			assert.False(t, denylistRegex.MatchString(q))
		}
	}
	assert.True(t, IsValidQuestion(genericBackup))
}

func TestSubstitutePlaceholdersIdempotent(t *testing.T) {
	raw := "Cosa ti lega a [topic] e all'[ARGOMENTO] in generale?"
	once := SubstitutePlaceholders(raw, "viaggi")
	twice := SubstitutePlaceholders(once, "viaggi")

	assert.Equal(t, "Cosa ti lega a viaggi e all'viaggi in generale?", once)
	assert.Equal(t, once, twice)
}

func TestClean(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Di cosa ti occupi?  ", "Di cosa ti occupi?"},
		{"\"Di cosa ti occupi?\"", "Di cosa ti occupi?"},
		{"“ Di cosa ti occupi? ”", "Di cosa ti occupi?"},
	}
	for _, tt := range tests {
		if got := Clean(tt.input); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFilterAcceptsValid(t *testing.T) {
	gen := llmtest.New()
	v := NewValidator(gen, nil)

	got := v.Filter(context.Background(), "  Cosa ti piace di [topic]?  ", "viaggi", nil)
	assert.Equal(t, "Cosa ti piace di viaggi?", got)
	assert.Empty(t, gen.Calls())
}

func TestFilterRetriesOnceWithPrevious(t *testing.T) {
	gen := llmtest.New().OnLabel(LabelQuestionRetry, "Quale viaggio ricordi con più affetto?")
	v := NewValidator(gen, nil)

	previous := []string{"q1?", "q2?", "q3?", "q4?", "q5?", "q6?"}
	got := v.Filter(context.Background(), "Ecco una domanda: **viaggi**", "viaggi", previous)
	assert.Equal(t, "Quale viaggio ricordi con più affetto?", got)

	calls := gen.CallsFor(LabelQuestionRetry)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt, "'viaggi'")
	assert.Contains(t, calls[0].Prompt, "q2?, q3?, q4?, q5?, q6?")
	assert.NotContains(t, calls[0].Prompt, "q1?")
}

func TestFilterFallsBackToBackup(t *testing.T) {
	gen := llmtest.New().OnLabel(LabelQuestionRetry, "Restituisci un elenco")
	v := NewValidator(gen, nil)
	v.pick = func(int) int { return 2 }

	got := v.Filter(context.Background(), "niente", "viaggi", nil)
	assert.Equal(t, BackupQuestions("viaggi")[2], got)
	assert.True(t, IsValidQuestion(got))
	assert.Len(t, gen.Calls(), 1)
}
