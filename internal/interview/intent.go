package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raphaelgruber/braindump/internal/llm"
)

// Kind names an intent category.
type Kind string

const (
	KindDirect           Kind = "DIRECT"
	KindChangeTopic      Kind = "CHANGE_TOPIC"
	KindSuggestQuestion  Kind = "SUGGEST_QUESTION"
	KindIrrelevant       Kind = "IRRELEVANT"
	KindHelp             Kind = "HELP"
	KindSkip             Kind = "SKIP"
	KindQuestionFeedback Kind = "QUESTION_FEEDBACK"
	KindAddGuideline     Kind = "ADD_GUIDELINE"
	KindShowGuidelines   Kind = "SHOW_GUIDELINES"
)

// Intent is the classified purpose of a user turn. The concrete types below
// are the only implementations.
type Intent interface {
	Kind() Kind
	isIntent()
}

// Direct is a genuine answer to the current question.
type Direct struct{ Answer string }

// ChangeTopic asks to move the interview to another topic.
type ChangeTopic struct{ Topic string }

// SuggestQuestion proposes a question the user would rather answer.
type SuggestQuestion struct{ Suggestion string }

// Irrelevant flags the current question as off-target.
type Irrelevant struct{ Reason string }

// Help asks for the list of commands.
type Help struct{}

// Skip declines to answer the current question.
type Skip struct{}

// QuestionFeedback asks for a new question shaped by the feedback.
type QuestionFeedback struct{ Feedback string }

// AddGuideline amends the session guidelines.
type AddGuideline struct{ Guideline string }

// ShowGuidelines prints the session guidelines.
type ShowGuidelines struct{}

func (Direct) Kind() Kind           { return KindDirect }
func (ChangeTopic) Kind() Kind      { return KindChangeTopic }
func (SuggestQuestion) Kind() Kind  { return KindSuggestQuestion }
func (Irrelevant) Kind() Kind       { return KindIrrelevant }
func (Help) Kind() Kind             { return KindHelp }
func (Skip) Kind() Kind             { return KindSkip }
func (QuestionFeedback) Kind() Kind { return KindQuestionFeedback }
func (AddGuideline) Kind() Kind     { return KindAddGuideline }
func (ShowGuidelines) Kind() Kind   { return KindShowGuidelines }

func (Direct) isIntent()           {}
func (ChangeTopic) isIntent()      {}
func (SuggestQuestion) isIntent()  {}
func (Irrelevant) isIntent()       {}
func (Help) isIntent()             {}
func (Skip) isIntent()             {}
func (QuestionFeedback) isIntent() {}
func (AddGuideline) isIntent()     {}
func (ShowGuidelines) isIntent()   {}

// Classification is the result of classifying one user turn.
type Classification struct {
	Intent  Intent
	Message string
}

var (
	skipWords = []string{"skip", "salta"}
	helpWords = []string{"aiuto", "help", "?"}
	exitWords = []string{"fine", "exit"}
)

// indicatorKeywords are the phrases that must appear in the raw text for a
// non-direct classification to stand.
var indicatorKeywords = map[Kind][]string{
	KindHelp:        {"aiuto", "help", "comandi", "come funziona", "istruzioni"},
	KindChangeTopic: {"cambia", "cambiamo", "parliamo di", "parlare di", "passiamo a", "altro argomento", "altro topic", "topic", "argomento"},
	KindIrrelevant: {
		"irrilevante", "non rilevante", "non è rilevante", "non pertinente", "non è pertinente",
		"non c'entra", "non mi interessa", "fuori tema", "fuori contesto", "non ha senso", "inutile",
	},
	KindSuggestQuestion: {
		"chiedimi", "domandami", "chiedere", "fammi una domanda", "fammi domande",
		"mi chiedi", "potresti chiedermi", "preferirei parlare",
	},
	KindSkip:             {"salta", "skip", "passa", "prossima", "altra domanda", "cambia domanda", "non voglio rispondere"},
	KindQuestionFeedback: {"domanda", "riformula", "troppo", "più specifica", "più semplice", "più personale", "linee guida", "guideline"},
	KindAddGuideline:     {"guideline", "linee guida", "linea guida", "regola"},
	KindShowGuidelines:   {"guideline", "linee guida", "linea guida"},
}

// kindAliases maps the labels a model may reply with onto categories.
var kindAliases = map[string]Kind{
	"DIRECT":                      KindDirect,
	"STANDARD":                    KindDirect,
	"RISPOSTA_DIRETTA":            KindDirect,
	"CHANGE_TOPIC":                KindChangeTopic,
	"CAMBIA_TOPIC":                KindChangeTopic,
	"SUGGEST_QUESTION":            KindSuggestQuestion,
	"SUGGERISCI_DOMANDA":          KindSuggestQuestion,
	"IRRELEVANT":                  KindIrrelevant,
	"IRRELEVANTE":                 KindIrrelevant,
	"HELP":                        KindHelp,
	"AIUTO":                       KindHelp,
	"SKIP":                        KindSkip,
	"NO_ANSWER":                   KindSkip,
	"CAMBIA_DOMANDA":              KindSkip,
	"QUESTION_FEEDBACK":           KindQuestionFeedback,
	"FEEDBACK_NEGATIVO_DOMANDA":   KindQuestionFeedback,
	"CAMBIA_DOMANDA_CON_FEEDBACK": KindQuestionFeedback,
	"ADD_GUIDELINE":               KindAddGuideline,
	"AGGIUNGI_GUIDELINE":          KindAddGuideline,
	"SHOW_GUIDELINES":             KindShowGuidelines,
	"MOSTRA_GUIDELINE":            KindShowGuidelines,
}

const classifyPrompt = `Analizza semanticamente la seguente risposta dell'utente alla domanda: "%s" (topic: %s)

Risposta utente: "%s"

Scegli UNA SOLA tra queste classificazioni:
1. DIRECT - Risposta diretta alla domanda (anche incerta, negativa o breve)
2. CHANGE_TOPIC - Richiesta di cambiare topic (es. "parliamo di lavoro", "cambiamo argomento")
3. IRRELEVANT - La domanda è irrilevante o fuori contesto (es. "questa domanda non mi interessa")
4. SUGGEST_QUESTION - L'utente suggerisce una domanda alternativa (es. "chiedimi piuttosto...")
5. HELP - L'utente chiede aiuto sui comandi disponibili
6. SKIP - L'utente vuole saltare la domanda senza rispondere
7. QUESTION_FEEDBACK - L'utente commenta la domanda e ne vuole una nuova che tenga conto del commento
8. ADD_GUIDELINE - L'utente vuole aggiungere una linea guida (es. "inseriamo nelle guideline che...")
9. SHOW_GUIDELINES - L'utente vuole vedere le linee guida attuali

Se la classificazione è CHANGE_TOPIC, in "content" indica il nuovo topic richiesto.
Se la classificazione è SUGGEST_QUESTION, in "content" indica la domanda suggerita.
Se la classificazione è QUESTION_FEEDBACK o ADD_GUIDELINE, in "content" indica il feedback o la linea guida.

IMPORTANTE: prima di classificare una risposta come IRRELEVANT verifica che l'utente stia davvero dicendo che la domanda è irrilevante, non che stia semplicemente rispondendo in modo negativo o incerto.

Restituisci il risultato in formato JSON:
{"type": "DIRECT|CHANGE_TOPIC|...", "content": "contenuto rilevante", "explanation": "breve spiegazione"}`

type rawClassification struct {
	Type        string `json:"type"`
	Intent      string `json:"intent"`
	Content     string `json:"content"`
	Explanation string `json:"explanation"`
}

// Classifier turns free-text user replies into intents.
type Classifier struct {
	gen    llm.Generator
	logger *slog.Logger
}

// NewClassifier creates a classifier backed by gen.
func NewClassifier(gen llm.Generator, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{gen: gen, logger: logger}
}

// IsExit reports whether text is one of the literal exit commands.
func IsExit(text string) bool {
	return matchesAny(text, exitWords)
}

// Classify classifies text given the current topic and question. It never fails:
// unparseable model output becomes a direct answer.
func (c *Classifier) Classify(ctx context.Context, text, topic, question string) Classification {
	text = strings.TrimSpace(text)
	if text == "" || matchesAny(text, skipWords) {
		return Classification{Intent: Skip{}, Message: "Domanda saltata."}
	}
	if matchesAny(text, helpWords) {
		return Classification{Intent: Help{}, Message: "Richiesta di aiuto."}
	}

	reply := c.gen.GenerateTimed(ctx, LabelClassify, fmt.Sprintf(classifyPrompt, question, topic, text))
	raw, err := llm.DecodeJSONObject[rawClassification](reply)
	if err != nil {
		c.logger.Debug("classification unparseable", "error", err)
		return Classification{Intent: Direct{Answer: text}, Message: "Risposta classificata come: DIRECT (fallback)"}
	}

	label := raw.Type
	if label == "" {
		label = raw.Intent
	}
	kind, ok := kindAliases[strings.ToUpper(strings.TrimSpace(label))]
	if !ok {
		kind = KindDirect
	}

	if kind != KindDirect && !containsAny(strings.ToLower(text), indicatorKeywords[kind]) {
		c.logger.Info("classification overridden", "model_kind", kind, "explanation", raw.Explanation)
		return Classification{
			Intent:  Direct{Answer: text},
			Message: fmt.Sprintf("Risposta classificata come: DIRECT (%s scartato)", kind),
		}
	}

	content := strings.TrimSpace(raw.Content)
	if content == "" {
		content = text
	}
	return Classification{
		Intent:  buildIntent(kind, text, content),
		Message: fmt.Sprintf("Risposta classificata come: %s", kind),
	}
}

func buildIntent(kind Kind, text, content string) Intent {
	switch kind {
	case KindChangeTopic:
		return ChangeTopic{Topic: content}
	case KindSuggestQuestion:
		return SuggestQuestion{Suggestion: content}
	case KindIrrelevant:
		return Irrelevant{Reason: text}
	case KindHelp:
		return Help{}
	case KindSkip:
		return Skip{}
	case KindQuestionFeedback:
		return QuestionFeedback{Feedback: content}
	case KindAddGuideline:
		return AddGuideline{Guideline: content}
	case KindShowGuidelines:
		return ShowGuidelines{}
	default:
		return Direct{Answer: text}
	}
}

func matchesAny(text string, words []string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, w := range words {
		if text == w {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
