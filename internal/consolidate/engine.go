// Package consolidate merges the answers recorded during a session into
// first-person documents and promotes them after operator confirmation.
package consolidate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/braindump/internal/llm"
	"github.com/raphaelgruber/braindump/internal/notes"
	"github.com/raphaelgruber/braindump/internal/parser"
)

// Generation labels.
const (
	LabelMerge   = "consolidate_merge"
	LabelRewrite = "consolidate_rewrite"
)

// MaxTitleWords bounds the length of a document title.
const MaxTitleWords = 4

var (
	// ErrUnparseable is returned when the merge output holds no decodable document array.
	ErrUnparseable = errors.New("consolidation output unparseable")
	// ErrNoDocuments is returned when the merge output decodes to no usable documents.
	ErrNoDocuments = errors.New("consolidation produced no documents")
)

// thirdPersonMarkers betray a document written about the user instead of by them.
var thirdPersonMarkers = []string{"l'utente", "l'intervistato", "l'intervistata", "the user"}

const mergePrompt = `Consolida le seguenti informazioni in documenti coerenti.
Le informazioni sono state raccolte da un'intervista sul topic '%s'.

INFORMAZIONI RACCOLTE:
%s

I documenti devono essere:
1. Da 2 a 5, ognuno con un titolo breve (massimo 4 parole)
2. Scritti in prima persona ("Io penso...", "Mi piace...")
3. Senza ripetizioni o contraddizioni
4. Fluidi, non in formato domanda-risposta
5. Basati SOLO sulle risposte: non inventare né dedurre informazioni assenti

Restituisci SOLO un JSON array di oggetti con i campi "title" e "content":
[{"title": "Titolo", "content": "Contenuto..."}]`

const rewritePrompt = `Riformula il seguente testo in prima persona, come se fosse l'intervistato stesso a parlare.
Mantieni ESATTAMENTE le stesse informazioni, non aggiungere né rimuovere nulla.
Usa "io", "mi", "mio" invece di "l'utente", "l'intervistato", "lui" o "lei".
Restituisci SOLO il testo riformulato.

TESTO DA RIFORMULARE:
%s`

// Document is a consolidated, first-person document awaiting review.
type Document struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Console is the operator surface used for review prompts.
// Ask returns io.EOF when input ends.
type Console interface {
	Info(text string)
	Warn(text string)
	Ask(prompt string) (string, error)
}

// Store is the subset of the notes store used by consolidation.
type Store interface {
	ReadPairs(topic string) ([]notes.Pair, error)
	Stage(title, content string) (string, error)
	Promote(stagedPath, title string) (string, error)
	Cleanup() error
}

// Report summarizes the consolidation of one topic.
type Report struct {
	Topic     string
	Pairs     int
	Documents []Document
	Promoted  []string
	Rejected  []string
}

// Empty reports whether the topic had nothing to consolidate.
func (r Report) Empty() bool { return r.Pairs == 0 }

// Engine consolidates session answers topic by topic.
type Engine struct {
	gen     llm.Generator
	store   Store
	console Console
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine creates a consolidation engine.
func NewEngine(gen llm.Generator, store Store, console Console, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{gen: gen, store: store, console: console, logger: logger, now: time.Now}
}

// FinalizeSession consolidates every topic in order, then offers to clean up
// the session directories. A topic whose merge cannot be parsed is reported
// and skipped; other failures are returned after the remaining topics ran.
func (e *Engine) FinalizeSession(ctx context.Context, topics []string) error {
	e.console.Info("Intervista terminata.")
	if len(topics) == 0 {
		e.console.Info("Nessuna risposta registrata in questa sessione.")
	}

	var errs []error
	for _, topic := range topics {
		report, err := e.Finalize(ctx, topic)
		switch {
		case errors.Is(err, ErrUnparseable), errors.Is(err, ErrNoDocuments):
			e.console.Warn(fmt.Sprintf("Consolidamento del topic '%s' annullato: %v", topic, err))
		case err != nil:
			e.logger.Error("finalize topic failed", "topic", topic, "error", err)
			e.console.Warn(fmt.Sprintf("Errore nel consolidamento del topic '%s': %v", topic, err))
			errs = append(errs, err)
		case !report.Empty():
			e.console.Info(fmt.Sprintf("Topic '%s': %d documenti, %d aggiornati, %d saltati.",
				topic, len(report.Documents), len(report.Promoted), len(report.Rejected)))
		}
	}

	answer, err := e.console.Ask("Vuoi pulire le cartelle temporanee della sessione? (s/N) ")
	if err == nil && isYes(answer) {
		if err := e.store.Cleanup(); err != nil {
			e.console.Warn("Pulizia non riuscita: " + err.Error())
			errs = append(errs, err)
		} else {
			e.console.Info("Pulizia completata.")
		}
	}
	return errors.Join(errs...)
}

// Finalize consolidates one topic: marker pairs are dropped, the rest merged
// into documents, and each document is staged and promoted only on an exact
// "OK" from the operator. A parse failure leaves permanent storage untouched.
func (e *Engine) Finalize(ctx context.Context, topic string) (Report, error) {
	report := Report{Topic: topic}

	pairs, err := e.store.ReadPairs(topic)
	if err != nil {
		return report, fmt.Errorf("read pairs for %s: %w", topic, err)
	}
	pairs = notes.WithoutMarkers(pairs)
	report.Pairs = len(pairs)
	if len(pairs) == 0 {
		e.console.Info(fmt.Sprintf("Nessuna informazione da consolidare per il topic '%s'.", topic))
		return report, nil
	}

	e.console.Info(fmt.Sprintf("Consolido %d risposte per il topic '%s'...", len(pairs), topic))
	docs, err := e.Merge(ctx, topic, pairs)
	if err != nil {
		return report, err
	}
	report.Documents = docs

	for _, doc := range docs {
		promoted, err := e.review(doc)
		if err != nil {
			return report, err
		}
		if promoted {
			report.Promoted = append(report.Promoted, doc.Title)
		} else {
			report.Rejected = append(report.Rejected, doc.Title)
		}
	}
	return report, nil
}

// Merge asks the model for documents covering pairs and repairs any written
// in the third person.
func (e *Engine) Merge(ctx context.Context, topic string, pairs []notes.Pair) ([]Document, error) {
	blocks := make([]string, len(pairs))
	for i, p := range pairs {
		blocks[i] = p.String()
	}

	raw := e.gen.GenerateTimed(ctx, LabelMerge, fmt.Sprintf(mergePrompt, topic, strings.Join(blocks, "\n\n")))
	decoded, err := llm.DecodeJSONArray[Document](raw)
	if err != nil {
		e.logger.Error("merge output unparseable", "topic", topic, "error", err, "response_len", len(raw))
		e.console.Warn("Impossibile interpretare la risposta del modello:\n" + raw)
		return nil, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}

	var docs []Document
	used := make(map[string]bool)
	for _, d := range decoded {
		d.Content = strings.TrimSpace(d.Content)
		if d.Content == "" {
			continue
		}
		d.Title = uniqueTitle(ShortTitle(d.Title, topic), used)
		if HasThirdPerson(d.Content) {
			d.Content = e.rewrite(ctx, d)
		}
		docs = append(docs, d)
	}
	if len(docs) == 0 {
		e.console.Warn("Il modello non ha prodotto documenti:\n" + raw)
		return nil, ErrNoDocuments
	}
	e.logger.Info("documents merged", "topic", topic, "pairs", len(pairs), "documents", len(docs))
	return docs, nil
}

// rewrite repairs a single third-person document. A failed call keeps the original.
func (e *Engine) rewrite(ctx context.Context, doc Document) string {
	e.logger.Info("rewriting document in first person", "title", doc.Title)
	reply := llm.StripCodeFences(e.gen.GenerateTimed(ctx, LabelRewrite, fmt.Sprintf(rewritePrompt, doc.Content)))
	if reply == "" || reply == llm.ErrorText {
		e.logger.Warn("first person rewrite failed", "title", doc.Title)
		return doc.Content
	}
	return reply
}

// review stages doc and promotes it when the operator types OK.
func (e *Engine) review(doc Document) (bool, error) {
	header, err := parser.RenderFrontmatter(parser.Frontmatter{
		Title: doc.Title,
		Date:  e.now().Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return false, err
	}
	staged, err := e.store.Stage(doc.Title, header+doc.Content+"\n")
	if err != nil {
		return false, fmt.Errorf("stage %q: %w", doc.Title, err)
	}

	e.console.Info(fmt.Sprintf("Documento consolidato: %s\n\n%s", doc.Title, doc.Content))
	answer, err := e.console.Ask(fmt.Sprintf("Digita 'OK' per aggiornare il file permanente '%s', oppure altro per saltare: ", doc.Title))
	if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "OK") {
		e.console.Info(fmt.Sprintf("Aggiornamento di '%s' annullato.", doc.Title))
		return false, nil
	}

	dest, err := e.store.Promote(staged, doc.Title)
	if err != nil {
		return false, fmt.Errorf("promote %q: %w", doc.Title, err)
	}
	e.console.Info(fmt.Sprintf("File permanente aggiornato: %s", dest))
	return true, nil
}

// ShortTitle cleans a model title and keeps at most MaxTitleWords words.
// An empty title becomes the topic.
func ShortTitle(title, topic string) string {
	words := strings.Fields(strings.Trim(title, " \t\"'#*"))
	if len(words) == 0 {
		words = strings.Fields(topic)
	}
	if len(words) > MaxTitleWords {
		words = words[:MaxTitleWords]
	}
	return strings.Join(words, " ")
}

// uniqueTitle suffixes title with a counter when its file stem is already taken,
// so that two documents never share a staged or permanent file.
func uniqueTitle(title string, used map[string]bool) string {
	candidate := title
	for n := 2; used[strings.ToLower(notes.FileStem(candidate))]; n++ {
		candidate = fmt.Sprintf("%s %d", title, n)
	}
	used[strings.ToLower(notes.FileStem(candidate))] = true
	return candidate
}

// HasThirdPerson reports whether content refers to the interviewee in the third person.
func HasThirdPerson(content string) bool {
	lower := strings.ToLower(strings.ReplaceAll(content, "’", "'"))
	for _, m := range thirdPersonMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "si", "sì", "y", "yes":
		return true
	}
	return false
}
