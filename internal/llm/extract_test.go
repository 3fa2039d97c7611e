package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fences", `["a"]`, `["a"]`},
		{"json fence", "```json\n[\"a\"]\n```", `["a"]`},
		{"bare fence", "```\n{\"x\": 1}\n```", `{"x": 1}`},
		{"inline fence", "```json [\"a\"] ```", `["a"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("StripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeJSONArrayWithCommentary(t *testing.T) {
	raw := "Ecco i documenti:\n```json\n[{\"title\": \"Lavoro\", \"content\": \"Programmo da 10 anni.\"}]\n```\nSpero vada bene."
	docs, err := DecodeJSONArray[doc](raw)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Lavoro", docs[0].Title)
	assert.Equal(t, "Programmo da 10 anni.", docs[0].Content)
}

func TestDecodeJSONArrayErrors(t *testing.T) {
	_, err := DecodeJSONArray[string]("nessun json qui")
	assert.True(t, errors.Is(err, ErrNoJSON))

	_, err = DecodeJSONArray[string]("[non valido")
	assert.True(t, errors.Is(err, ErrNoJSON))

	_, err = DecodeJSONArray[string]("[1, 2,]")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoJSON))
}

func TestParseJSONArrayFallback(t *testing.T) {
	got := ParseJSONArray("Nessun file rilevante.", []string{})
	assert.Empty(t, got)
	assert.NotNil(t, got)

	got = ParseJSONArray(`["lavoro", "hobby"]`, []string(nil))
	assert.Equal(t, []string{"lavoro", "hobby"}, got)
}

func TestParseJSONObject(t *testing.T) {
	type intent struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}
	fallback := intent{Type: "DIRECT"}

	got := ParseJSONObject(`Risposta: {"type": "HELP", "content": ""} fine`, fallback)
	assert.Equal(t, "HELP", got.Type)

	got = ParseJSONObject("non json", fallback)
	assert.Equal(t, fallback, got)

	got = ParseJSONObject(`{"type": }`, fallback)
	assert.Equal(t, fallback, got)
}
