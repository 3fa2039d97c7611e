package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMarker(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{SkippedMarker, true},
		{IrrelevantMarker("non c'entra"), true},
		{TopicChangeMarker("viaggi"), true},
		{SuggestedQuestionMarker("chiedimi dei viaggi"), true},
		{"Programmo da 10 anni", false},
		{"[nota personale]", false},
		{"[IRRELEVANT: senza chiusura", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			if got := IsMarker(tt.answer); got != tt.want {
				t.Errorf("IsMarker(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestParsePairs(t *testing.T) {
	body := "\nDomanda: Di cosa ti occupi?\n\nRisposta: Programmo da 10 anni\n\n" +
		"Domanda: Ti piace?\n\nRisposta: [SKIPPED]\n\nDomanda: Senza risposta?"

	pairs := ParsePairs(body)
	assert.Equal(t, []Pair{
		{Question: "Di cosa ti occupi?", Answer: "Programmo da 10 anni"},
		{Question: "Ti piace?", Answer: SkippedMarker},
		{Question: "Senza risposta?", Answer: ""},
	}, pairs)

	assert.Equal(t, []Pair{{Question: "Di cosa ti occupi?", Answer: "Programmo da 10 anni"}}, WithoutMarkers(pairs))
	assert.Nil(t, ParsePairs("nessuna coppia"))
}

func TestParsePairsKeepsLabelsInsideText(t *testing.T) {
	body := Pair{Question: "Come rispondi ai colleghi?", Answer: "Mi fanno sempre la stessa Domanda: come stai? E rispondo bene."}.String() +
		"\n\n" +
		Pair{Question: "Cosa scrivi nei verbali? Risposta: breve?", Answer: "Scrivo Risposta: e poi il testo."}.String()

	assert.Equal(t, []Pair{
		{Question: "Come rispondi ai colleghi?", Answer: "Mi fanno sempre la stessa Domanda: come stai? E rispondo bene."},
		{Question: "Cosa scrivi nei verbali? Risposta: breve?", Answer: "Scrivo Risposta: e poi il testo."},
	}, ParsePairs(body))
}

func TestPairString(t *testing.T) {
	p := Pair{Question: "Di cosa ti occupi?", Answer: "Programmo"}
	assert.Equal(t, "Domanda: Di cosa ti occupi?\n\nRisposta: Programmo", p.String())
	assert.Equal(t, []Pair{p}, ParsePairs(p.String()))
}
