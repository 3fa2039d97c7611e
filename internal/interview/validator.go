package interview

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/raphaelgruber/braindump/internal/llm"
)

// Shape limits for a generated question.
const (
	MinQuestionWords = 3
	MaxQuestionWords = 30
	MaxQuestionRunes = 150
)

var (
	placeholderRegex = regexp.MustCompile(`(?i)\[(topic|argomento)\]`)
	denylistRegex    = regexp.MustCompile(`(?i)\b(ecco|genera|restituisci|secondo le informazioni|la tua richiesta|come vedrai|ho capito)\b`)
)

var backupTemplates = []string{
	"Qual è il ricordo più significativo che hai legato a %s?",
	"Come è cambiato nel tempo il tuo rapporto con %s?",
	"Quale aspetto di %s ti sta più a cuore oggi?",
	"Cosa hai imparato su te stesso attraverso %s?",
	"Quale esperienza recente legata a %s vorresti raccontare?",
	"Che ruolo ha %s nella tua vita quotidiana?",
	"Quale persona ha influenzato di più il tuo modo di vivere %s?",
	"Cosa vorresti cambiare nel tuo modo di affrontare %s?",
}

const genericBackup = "Di cosa ti piacerebbe parlare oggi?"

const retryPrompt = "Genera SOLO UNA domanda breve (massimo 15 parole) sul topic '%s' in italiano. " +
	"NON aggiungere altri testi o spiegazioni. Usa solo la lingua italiana. " +
	"La domanda deve terminare con un punto interrogativo."

// Validator guarantees that every question shown to the user is well formed.
type Validator struct {
	gen    llm.Generator
	logger *slog.Logger
	pick   func(n int) int
}

// NewValidator creates a validator that re-prompts through gen.
func NewValidator(gen llm.Generator, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{gen: gen, logger: logger, pick: rand.IntN}
}

// Filter returns raw as a cleaned question if valid; otherwise it re-prompts once
// with a stricter request and finally falls back to a backup question.
func (v *Validator) Filter(ctx context.Context, raw, topic string, previous []string) string {
	q := Prepare(raw, topic)
	if IsValidQuestion(q) {
		return q
	}
	v.logger.Warn("invalid question, retrying", "topic", topic, "candidate", q)

	prompt := fmt.Sprintf(retryPrompt, topic)
	if recent := lastN(previous, 5); len(recent) > 0 {
		prompt += " NON ripetere queste domande che sono già state poste: " + strings.Join(recent, ", ")
	}
	q = Prepare(v.gen.GenerateTimed(ctx, LabelQuestionRetry, prompt), topic)
	if IsValidQuestion(q) {
		return q
	}

	backup := v.Backup(topic)
	v.logger.Warn("retry still invalid, using backup question", "topic", topic, "candidate", q, "backup", backup)
	return backup
}

// Backup returns a pseudo-random valid question from the backup pool.
func (v *Validator) Backup(topic string) string {
	pool := BackupQuestions(topic)
	if len(pool) == 0 {
		return genericBackup
	}
	return pool[v.pick(len(pool))]
}

// BackupQuestions renders the backup pool for topic, keeping only valid entries.
func BackupQuestions(topic string) []string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}
	out := make([]string, 0, len(backupTemplates))
	for _, tmpl := range backupTemplates {
		q := fmt.Sprintf(tmpl, topic)
		if IsValidQuestion(q) {
			out = append(out, q)
		}
	}
	return out
}

// Prepare trims model output and substitutes topic placeholders.
func Prepare(raw, topic string) string {
	return SubstitutePlaceholders(Clean(raw), topic)
}

// Clean trims whitespace and wrapping quotes.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := strings.TrimSpace(strings.Trim(s, "\"'`“”«»"))
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

// SubstitutePlaceholders replaces [topic] and [argomento] with the topic name.
func SubstitutePlaceholders(s, topic string) string {
	return placeholderRegex.ReplaceAllLiteralString(s, topic)
}

// IsValidQuestion reports whether q has the shape of a single, clean question.
func IsValidQuestion(q string) bool {
	if !strings.HasSuffix(q, "?") {
		return false
	}
	if utf8.RuneCountInString(q) > MaxQuestionRunes {
		return false
	}
	words := len(strings.Fields(q))
	if words < MinQuestionWords || words > MaxQuestionWords {
		return false
	}
	if strings.Contains(q, "**") || strings.Contains(q, "__") || strings.Contains(q, "#") {
		return false
	}
	if before, _, _ := strings.Cut(q, "?"); strings.Contains(before, ":") {
		return false
	}
	if denylistRegex.MatchString(q) {
		return false
	}
	return !placeholderRegex.MatchString(q)
}

func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
