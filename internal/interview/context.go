package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/braindump/internal/llm"
	"github.com/raphaelgruber/braindump/internal/notes"
)

// NoteIndex enumerates candidate context notes.
type NoteIndex interface {
	ListNotes() ([]notes.Note, error)
	ConceptPath(topic string) (string, bool)
}

const relevancePrompt = `Dato il topic attuale "%s" e il seguente contesto di conversazione:
%s

Valuta quali dei seguenti documenti potrebbero contenere informazioni pertinenti:
%s

Considera attentamente:
1. Documenti il cui nome è semanticamente correlato al topic attuale
2. Documenti che potrebbero contenere informazioni utili per le prossime domande
3. Solo i documenti veramente rilevanti per questa specifica conversazione

Restituisci un JSON array con i nomi dei file pertinenti (SOLO i nomi, senza estensione):
["nome1", "nome2", ...]

Se nessun documento è rilevante, restituisci un array vuoto: []`

// ContextSelector picks the notes relevant to a topic and conversation.
type ContextSelector struct {
	gen          llm.Generator
	index        NoteIndex
	batchSize    int
	historyChars int
	logger       *slog.Logger
}

// NewContextSelector creates a selector evaluating candidates in batches of batchSize.
func NewContextSelector(gen llm.Generator, index NoteIndex, batchSize, historyChars int, logger *slog.Logger) *ContextSelector {
	if batchSize <= 0 {
		batchSize = 20
	}
	if historyChars <= 0 {
		historyChars = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextSelector{
		gen:          gen,
		index:        index,
		batchSize:    batchSize,
		historyChars: historyChars,
		logger:       logger,
	}
}

// Select returns the paths of relevant notes. Batches are evaluated
// independently and unioned; an unparseable reply selects nothing from its
// batch. The topic's concept file, when it exists, always comes first so
// that excerpt limits never drop it.
func (c *ContextSelector) Select(ctx context.Context, topic string, history *History) []string {
	candidates, err := c.index.ListNotes()
	if err != nil {
		c.logger.Warn("list notes failed", "error", err)
		candidates = nil
	}

	historyTail := "Nuova conversazione"
	if history != nil && history.Len() > 0 {
		historyTail = history.Tail(c.historyChars)
	}

	var selected []string
	seen := make(map[string]bool)
	if concept, ok := c.index.ConceptPath(topic); ok {
		selected = append(selected, concept)
		seen[concept] = true
	}
	for start := 0; start < len(candidates); start += c.batchSize {
		end := min(start+c.batchSize, len(candidates))
		for _, path := range c.evaluateBatch(ctx, topic, historyTail, candidates[start:end]) {
			if !seen[path] {
				seen[path] = true
				selected = append(selected, path)
			}
		}
	}

	c.logger.Info("context selected", "topic", topic, "candidates", len(candidates), "selected", len(selected))
	return selected
}

func (c *ContextSelector) evaluateBatch(ctx context.Context, topic, historyTail string, batch []notes.Note) []string {
	names := make([]string, len(batch))
	for i, n := range batch {
		names[i] = n.Name
	}

	prompt := fmt.Sprintf(relevancePrompt, topic, historyTail, strings.Join(names, ", "))
	chosen := llm.ParseJSONArray(c.gen.GenerateTimed(ctx, LabelContextRelevance, prompt), []string{})

	want := make(map[string]bool, len(chosen))
	for _, name := range chosen {
		name = strings.TrimSuffix(strings.TrimSpace(name), ".md")
		want[strings.ToLower(name)] = true
	}

	var paths []string
	for _, n := range batch {
		if want[strings.ToLower(n.Name)] {
			paths = append(paths, n.Path)
		}
	}
	return paths
}
