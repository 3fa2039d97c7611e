package interview

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/braindump/internal/llm"
)

// QuestionKind selects the prompt used to generate the next question.
type QuestionKind int

const (
	QuestionFirst QuestionKind = iota
	QuestionFollowUp
	QuestionAfterSkip
	QuestionMoreRelevant
	QuestionTopicIntro
	QuestionFromSuggestion
	QuestionWithFeedback
)

func (k QuestionKind) label() string {
	switch k {
	case QuestionFollowUp:
		return LabelQuestionFollowUp
	case QuestionAfterSkip:
		return LabelQuestionAfterSkip
	case QuestionMoreRelevant:
		return LabelQuestionMoreRelevant
	case QuestionTopicIntro:
		return LabelQuestionTopicIntro
	case QuestionFromSuggestion:
		return LabelQuestionFromSuggestion
	case QuestionWithFeedback:
		return LabelQuestionWithFeedback
	default:
		return LabelQuestionFirst
	}
}

// QuestionRequest describes the question to generate.
type QuestionRequest struct {
	Kind       QuestionKind
	Topic      string
	History    *History
	Context    []string // note paths
	Previous   []string
	Suggestion string
	Feedback   string
}

// GuidelineSource provides the active guidelines text.
type GuidelineSource interface {
	Text() (string, error)
}

// NoteReader reads note content for prompt excerpts.
type NoteReader interface {
	ReadNote(path string) (string, error)
}

// QuestionOptions tunes question generation.
type QuestionOptions struct {
	SimilarityThreshold float64
	MaxAttempts         int
	ContextFileLimit    int
	ExcerptChars        int
}

// QuestionGenerator produces validated, de-duplicated questions.
type QuestionGenerator struct {
	gen        llm.Generator
	validator  *Validator
	guidelines GuidelineSource
	reader     NoteReader
	opts       QuestionOptions
	logger     *slog.Logger
}

// NewQuestionGenerator creates a question generator.
func NewQuestionGenerator(gen llm.Generator, validator *Validator, guidelines GuidelineSource, reader NoteReader, opts QuestionOptions, logger *slog.Logger) *QuestionGenerator {
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = 0.8
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.ContextFileLimit <= 0 {
		opts.ContextFileLimit = 5
	}
	if opts.ExcerptChars <= 0 {
		opts.ExcerptChars = 200
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionGenerator{
		gen:        gen,
		validator:  validator,
		guidelines: guidelines,
		reader:     reader,
		opts:       opts,
		logger:     logger,
	}
}

// Next generates the next question. Candidates that duplicate a previous
// question are regenerated up to MaxAttempts times; the last candidate is
// accepted regardless.
func (g *QuestionGenerator) Next(ctx context.Context, req QuestionRequest) string {
	prompt := g.buildPrompt(req)
	label := req.Kind.label()

	var candidate string
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		raw := g.gen.GenerateTimed(ctx, label, prompt)
		candidate = g.validator.Filter(ctx, raw, req.Topic, req.Previous)
		if !IsDuplicate(candidate, req.Previous, g.opts.SimilarityThreshold) {
			return candidate
		}
		g.logger.Debug("duplicate question", "attempt", attempt, "candidate", candidate)
		prompt = g.buildPrompt(req) + fmt.Sprintf("\n\nLa domanda \"%s\" è già stata posta: generane una DIVERSA.", candidate)
	}

	g.logger.Warn("accepting duplicate question after max attempts", "topic", req.Topic, "question", candidate)
	return candidate
}

const systemRules = `Sei un agente intelligente che ha il SOLO compito di generare domande brevi e precise per creare un dump completo del cervello dell'utente.
REGOLE FONDAMENTALI:
1. GENERA SOLO DOMANDE - Il tuo output deve essere ESCLUSIVAMENTE una singola domanda breve e concisa.
2. NON CREARE DUMP - Non generare mai elenchi, riassunti o analisi.
3. NON RISPONDERE PER L'UTENTE - Non inventare mai risposte o contenuti al posto dell'utente.
4. RISPETTA IL CONTESTO - Le domande devono seguire la conversazione e riguardare solo il topic scelto.
5. USA SOLO LA LINGUA ITALIANA - Tutte le domande devono essere formulate esclusivamente in italiano.
Questa è un'intervista personale, non un quiz: concentrati su esperienze e opinioni dell'utente.`

const finalRules = `REGOLE SPECIFICHE:
- Non usare MAI placeholder come [topic] o [argomento]; usa direttamente il termine "%s" se necessario
- La domanda deve invitare a una risposta elaborata (non sì/no)
- La domanda deve essere diversa dalle precedenti

IMPORTANTE: Rispondi SOLO con la domanda, senza introduzioni o spiegazioni.`

func (g *QuestionGenerator) buildPrompt(req QuestionRequest) string {
	var b strings.Builder
	b.WriteString(systemRules)
	b.WriteString("\n\nTopic attuale: ")
	b.WriteString(req.Topic)
	b.WriteString("\n\n")

	b.WriteString(g.task(req))
	b.WriteString("\n\n")

	if guidelines := g.guidelinesText(); guidelines != "" {
		b.WriteString("LINEE GUIDA:\n")
		b.WriteString(guidelines)
		b.WriteString("\n\n")
	}

	if excerpts := g.contextExcerpts(req.Context); excerpts != "" {
		b.WriteString("Informazioni dal contesto rilevante:\n")
		b.WriteString(excerpts)
		b.WriteString("\nUtilizza queste informazioni SOLO se pertinenti per generare una domanda rilevante e non ripetitiva.\n\n")
	}

	if req.History != nil && req.History.Len() > 0 {
		b.WriteString("Conversazione precedente:\n")
		b.WriteString(req.History.Window(HistoryWindowChars, HistoryWindowPairs))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, finalRules, req.Topic)
	return b.String()
}

func (g *QuestionGenerator) task(req QuestionRequest) string {
	switch req.Kind {
	case QuestionFollowUp:
		return fmt.Sprintf("Analizza la conversazione precedente e genera una domanda di approfondimento sul topic '%s' che segua naturalmente dagli elementi emersi.", req.Topic)
	case QuestionAfterSkip:
		return fmt.Sprintf("L'utente ha deciso di saltare la domanda precedente. Genera una NUOVA domanda singola sul topic '%s', diversa dalle precedenti e più interessante.", req.Topic)
	case QuestionMoreRelevant:
		return fmt.Sprintf("L'utente ha indicato che la domanda precedente non era rilevante. Genera una domanda sul topic '%s' più concreta e specifica, basata sulle sue esperienze personali e facilmente comprensibile.", req.Topic)
	case QuestionTopicIntro:
		return fmt.Sprintf("L'utente ha cambiato l'argomento della conversazione al topic '%s'. Genera una domanda introduttiva, aperta e coinvolgente sul nuovo topic.", req.Topic)
	case QuestionFromSuggestion:
		return fmt.Sprintf("L'utente ha suggerito di parlare di: \"%s\". Genera una domanda che si basi direttamente su questo suggerimento, collegata al topic '%s', usando i termini esatti dell'utente.", req.Suggestion, req.Topic)
	case QuestionWithFeedback:
		return fmt.Sprintf("L'utente ha dato questo feedback sulla domanda precedente: \"%s\". Genera una nuova domanda sul topic '%s' che tenga conto del feedback.", req.Feedback, req.Topic)
	default:
		return fmt.Sprintf("Genera una domanda introduttiva e aperta sul topic '%s', personale e specifica, non generica.", req.Topic)
	}
}

func (g *QuestionGenerator) guidelinesText() string {
	if g.guidelines == nil {
		return ""
	}
	text, err := g.guidelines.Text()
	if err != nil {
		g.logger.Warn("guidelines unavailable", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

func (g *QuestionGenerator) contextExcerpts(paths []string) string {
	if g.reader == nil || len(paths) == 0 {
		return ""
	}
	var b strings.Builder
	for _, path := range paths[:min(len(paths), g.opts.ContextFileLimit)] {
		content, err := g.reader.ReadNote(path)
		if err != nil {
			g.logger.Warn("context note unreadable", "path", path, "error", err)
			continue
		}
		fmt.Fprintf(&b, "\nDal file %s:\n%s\n", filepath.Base(path), excerpt(content, g.opts.ExcerptChars))
	}
	return b.String()
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
