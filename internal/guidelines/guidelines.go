// Package guidelines manages the interviewer guidelines: a permanent file and a
// per-session copy that can be amended during the interview.
package guidelines

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/raphaelgruber/braindump/internal/llm"
	"github.com/raphaelgruber/braindump/internal/parser"
)

// Default is written to the session copy when no permanent file exists.
const Default = "# Linee guida per l'agente Intervistatore\n\n" +
	"## Principi fondamentali\n" +
	"1. **Domande personali** - Focalizzate su esperienze ed opinioni dell'utente\n" +
	"2. **Domande specifiche** - Concrete e non generiche\n" +
	"3. **Rispetto del contesto** - Aderenti alla definizione del topic\n"

// FallbackSection collects amendments that name no known section.
const FallbackSection = "Altri suggerimenti"

// LabelFormat is the generation label used to reformat an amendment.
const LabelFormat = "guideline_format"

const sessionFileName = "interviewer_guidelines.md"

var sectionRegex = regexp.MustCompile(`(?im)^\s*##\s*(Principi|Esempi|Tipologie|Da evitare)\b.*$`)

const formatPrompt = `Formatta la seguente linea guida in modo chiaro e strutturato:

"%s"

Assicurati che:
1. Sia chiara e concisa
2. Utilizzi punti elenco o numerazione se appropriato
3. Sia coerente con lo stile di una linea guida per la generazione di domande

Se la linea guida appartiene a una sezione (Principi, Esempi, Tipologie, Da evitare), inizia con "## <sezione>".
Restituisci solo la linea guida formattata, senza introduzioni o commenti.`

// Manager owns the session copy of the guidelines.
type Manager struct {
	permanentPath string
	sessionPath   string
	gen           llm.Generator
	logger        *slog.Logger
	changed       bool
}

// NewManager creates a manager whose session copy lives in sessionDir.
func NewManager(permanentPath, sessionDir string, gen llm.Generator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		permanentPath: permanentPath,
		sessionPath:   filepath.Join(sessionDir, sessionFileName),
		gen:           gen,
		logger:        logger,
	}
}

// Init seeds the session copy from the permanent file, or from Default.
func (m *Manager) Init() error {
	content, err := LoadPermanent(m.permanentPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.sessionPath), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(m.sessionPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write session guidelines: %w", err)
	}
	m.changed = false
	return nil
}

// LoadPermanent reads the permanent guidelines, returning Default when the file is missing.
func LoadPermanent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default, nil
	}
	if err != nil {
		return "", fmt.Errorf("read guidelines: %w", err)
	}
	return string(data), nil
}

// Text returns the current session guidelines.
func (m *Manager) Text() (string, error) {
	data, err := os.ReadFile(m.sessionPath)
	if err != nil {
		return "", fmt.Errorf("read session guidelines: %w", err)
	}
	return string(data), nil
}

// Changed reports whether the session copy was amended since Init.
func (m *Manager) Changed() bool { return m.changed }

// Amend formats guideline through the model and inserts it into the session copy.
// A failed formatting call falls back to the raw text.
func (m *Manager) Amend(ctx context.Context, guideline string) (string, error) {
	guideline = strings.TrimSpace(guideline)
	if guideline == "" {
		return "", fmt.Errorf("empty guideline")
	}

	formatted := strings.TrimSpace(m.gen.GenerateTimed(ctx, LabelFormat, fmt.Sprintf(formatPrompt, guideline)))
	if formatted == "" || formatted == llm.ErrorText {
		formatted = guideline
	}

	content, err := m.Text()
	if err != nil {
		return "", err
	}

	updated, err := Insert(content, formatted)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(m.sessionPath, []byte(updated), 0o644); err != nil {
		return "", fmt.Errorf("write session guidelines: %w", err)
	}

	m.changed = true
	m.logger.Info("guideline added", "preview", preview(formatted, 80))
	return formatted, nil
}

// Save writes the session copy back to the permanent file.
func (m *Manager) Save() error {
	content, err := m.Text()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.permanentPath), 0o755); err != nil {
		return fmt.Errorf("create guidelines dir: %w", err)
	}
	if err := os.WriteFile(m.permanentPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("save guidelines: %w", err)
	}
	m.logger.Info("guidelines saved", "path", m.permanentPath)
	return nil
}

// Insert places a formatted amendment in content. An amendment starting with a
// known "## <section>" header goes under that section (created if missing);
// anything else goes under FallbackSection.
func Insert(content, formatted string) (string, error) {
	section := FallbackSection
	body := formatted
	if loc := sectionRegex.FindStringSubmatchIndex(formatted); loc != nil {
		section = canonicalSection(formatted[loc[2]:loc[3]])
		body = strings.TrimSpace(formatted[:loc[0]] + formatted[loc[1]:])
	}
	if body == "" {
		return content, nil
	}

	doc, err := parser.ParseMarkdown(content)
	if err != nil {
		return "", fmt.Errorf("parse guidelines: %w", err)
	}

	existing, ok := doc.FindSection(2, section)
	if !ok {
		return strings.TrimRight(content, "\n") + "\n\n## " + section + "\n\n" + body + "\n", nil
	}
	return insertAfterLine(content, existing.End, body), nil
}

// insertAfterLine inserts text after the 1-based line, separated by a blank line.
func insertAfterLine(content string, line int, text string) string {
	lines := strings.Split(content, "\n")
	if line > len(lines) {
		line = len(lines)
	}
	insert := append([]string{""}, strings.Split(text, "\n")...)

	out := make([]string, 0, len(lines)+len(insert))
	out = append(out, lines[:line]...)
	out = append(out, insert...)
	out = append(out, lines[line:]...)
	return strings.Join(out, "\n")
}

func canonicalSection(name string) string {
	switch strings.ToLower(name) {
	case "principi":
		return "Principi"
	case "esempi":
		return "Esempi"
	case "tipologie":
		return "Tipologie"
	default:
		return "Da evitare"
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
