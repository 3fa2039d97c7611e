package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/braindump/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleAskReadsTrimmedLines(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("  lavoro \nultima"), &out)

	got, err := c.Ask("Topic: ")
	require.NoError(t, err)
	assert.Equal(t, "lavoro", got)

	got, err = c.Ask("> ")
	require.NoError(t, err)
	assert.Equal(t, "ultima", got)

	_, err = c.Ask("> ")
	assert.ErrorIs(t, err, io.EOF)

	assert.Contains(t, out.String(), "Topic: ")
}

func TestConsoleRendersRoles(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out)

	c.Interviewer("Di cosa ti occupi?")
	c.Info("Topic scelto: lavoro")
	c.Warn("Impossibile salvare la risposta")

	text := out.String()
	assert.Contains(t, text, "Intervistatore:")
	assert.Contains(t, text, "Di cosa ti occupi?")
	assert.Contains(t, text, "Topic scelto: lavoro")
	assert.Contains(t, text, "Impossibile salvare la risposta")
}

func TestPrintStats(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordTiming("classify_intent", 120*time.Millisecond, false)
	c.RecordTiming("classify_intent", 80*time.Millisecond, true)
	c.RecordTiming("question_first", 300*time.Millisecond, false)

	var out bytes.Buffer
	printStats(&out, c.Snapshot())

	text := out.String()
	assert.Contains(t, text, "classify_intent")
	assert.Contains(t, text, "avg    100ms")
	assert.Contains(t, text, "errori 1")
	assert.Contains(t, text, "question_first")
	assert.Contains(t, text, "totale 0.5s")
}

func TestPrintStatsEmpty(t *testing.T) {
	var out bytes.Buffer
	printStats(&out, metrics.NewCollector().Snapshot())
	assert.Empty(t, out.String())
}
