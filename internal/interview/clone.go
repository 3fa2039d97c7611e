package interview

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/braindump/internal/llm"
)

// MinSuggestionConfidence is the confidence a suggested answer must exceed to be shown.
const MinSuggestionConfidence = 30

const cloneAnswerPrompt = `Genera una risposta alla seguente domanda basandoti ESCLUSIVAMENTE sulle informazioni fornite nel contesto.
La risposta deve essere in prima persona, come se fossi tu a rispondere direttamente.

Domanda: "%s"

Contesto (informazioni esistenti dell'utente sul topic '%s'):
%s

LINEE GUIDA PER LA RISPOSTA:
1. Rispondi SOLO se trovi informazioni rilevanti nel contesto
2. Usa la prima persona ("io", "mi", "mio")
3. Sii conciso ma completo
4. Non inventare informazioni assenti dal contesto
5. Non citare i file o le fonti nella risposta stessa

Restituisci un JSON con questo formato:
{"response": "risposta in prima persona", "confidence": 0-100, "sources": ["nome_file.md"]}

Se il contesto non contiene informazioni rilevanti restituisci:
{"response": "", "confidence": 0, "sources": []}`

const cloneReactionPrompt = `Analizza la reazione dell'utente alla risposta suggerita.

Domanda originale: "%s"
Risposta suggerita: "%s"
Reazione dell'utente: "%s"

Determina se l'utente ha:
1. ACCETTATO la risposta suggerita (es. "sì", "ok", "corretto", "va bene")
2. MODIFICATO la risposta suggerita (aggiunto o corretto informazioni)
3. RIFIUTATO la risposta suggerita (es. "no", "non è corretto") rispondendo in modo diverso

Restituisci solo una di queste parole: ACCETTATO, MODIFICATO, RIFIUTATO.`

const cloneCombinePrompt = `Combina la risposta suggerita con la modifica dell'utente.

Risposta suggerita: "%s"
Modifica dell'utente: "%s"

Genera una risposta finale che incorpori entrambe, in prima persona. Restituisci SOLO la risposta.`

// Suggestion is an answer drafted from existing notes, offered before the user replies.
type Suggestion struct {
	Answer     string
	Confidence int
	Sources    []string
}

// Level renders the confidence as alto, medio or basso.
func (s Suggestion) Level() string {
	switch {
	case s.Confidence >= 70:
		return "alto"
	case s.Confidence >= 40:
		return "medio"
	default:
		return "basso"
	}
}

// Present formats the suggestion for the transcript.
func (s Suggestion) Present() string {
	sources := "nessuna fonte specifica"
	if len(s.Sources) > 0 {
		sources = strings.Join(s.Sources, ", ")
	}
	return fmt.Sprintf("Ho trovato una possibile risposta nelle tue note (confidenza: %s):\n\n%s\n\nFonti: %s\n\n"+
		"Confermi questa risposta? Puoi accettarla, modificarla o rispondere in modo diverso.",
		s.Level(), s.Answer, sources)
}

// Reaction is how the user responded to a suggestion.
type Reaction string

const (
	ReactionAccepted Reaction = "ACCETTATO"
	ReactionModified Reaction = "MODIFICATO"
	ReactionRejected Reaction = "RIFIUTATO"
)

type rawSuggestion struct {
	Response   string   `json:"response"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
}

// Clone drafts answers from the notes already in the knowledge base.
type Clone struct {
	gen          llm.Generator
	reader       NoteReader
	fileLimit    int
	excerptChars int
	logger       *slog.Logger
}

// NewClone creates a clone reading at most fileLimit notes of excerptChars runes each.
func NewClone(gen llm.Generator, reader NoteReader, fileLimit, excerptChars int, logger *slog.Logger) *Clone {
	if fileLimit <= 0 {
		fileLimit = 5
	}
	if excerptChars <= 0 {
		excerptChars = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Clone{gen: gen, reader: reader, fileLimit: fileLimit, excerptChars: excerptChars, logger: logger}
}

// Suggest drafts an answer to question from the notes at paths. It returns
// nil when there are no readable notes, the reply cannot be parsed, or the
// model is not confident enough.
func (c *Clone) Suggest(ctx context.Context, topic, question string, paths []string) *Suggestion {
	var b strings.Builder
	for _, path := range paths[:min(len(paths), c.fileLimit)] {
		content, err := c.reader.ReadNote(path)
		if err != nil {
			c.logger.Warn("suggestion note unreadable", "path", path, "error", err)
			continue
		}
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", filepath.Base(path), excerpt(content, c.excerptChars))
	}
	if b.Len() == 0 {
		return nil
	}

	reply := c.gen.GenerateTimed(ctx, LabelCloneAnswer, fmt.Sprintf(cloneAnswerPrompt, question, topic, b.String()))
	raw := llm.ParseJSONObject(reply, rawSuggestion{})
	answer := SubstitutePlaceholders(strings.TrimSpace(raw.Response), topic)
	if answer == "" || raw.Confidence <= MinSuggestionConfidence {
		c.logger.Debug("no suggestion", "topic", topic, "confidence", raw.Confidence)
		return nil
	}

	c.logger.Info("suggestion drafted", "topic", topic, "confidence", raw.Confidence, "sources", raw.Sources)
	return &Suggestion{Answer: answer, Confidence: int(min(raw.Confidence, 100)), Sources: raw.Sources}
}

// Resolve decides the answer to store given the user's reply to a suggestion:
// the suggestion itself, a merge of both, or the reply alone.
func (c *Clone) Resolve(ctx context.Context, question string, s Suggestion, reply string) (string, Reaction) {
	reaction := c.react(ctx, question, s, reply)
	switch reaction {
	case ReactionAccepted:
		return s.Answer, reaction
	case ReactionModified:
		combined := strings.TrimSpace(c.gen.GenerateTimed(ctx, LabelCloneCombine, fmt.Sprintf(cloneCombinePrompt, s.Answer, reply)))
		if combined == "" || combined == llm.ErrorText {
			c.logger.Warn("combine failed, keeping user reply")
			return reply, reaction
		}
		return combined, reaction
	default:
		return reply, reaction
	}
}

func (c *Clone) react(ctx context.Context, question string, s Suggestion, reply string) Reaction {
	if IsYes(reply) || strings.EqualFold(strings.TrimSpace(reply), "ok") {
		return ReactionAccepted
	}
	verdict := strings.ToUpper(c.gen.GenerateTimed(ctx, LabelCloneReaction, fmt.Sprintf(cloneReactionPrompt, question, s.Answer, reply)))
	switch {
	case strings.Contains(verdict, string(ReactionAccepted)):
		return ReactionAccepted
	case strings.Contains(verdict, string(ReactionModified)):
		return ReactionModified
	default:
		return ReactionRejected
	}
}
