// Package notes manages the markdown notes store: permanent information and
// concepts, the per-session mirror, and the staging area used during consolidation.
package notes

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/raphaelgruber/braindump/internal/config"
	"github.com/raphaelgruber/braindump/internal/parser"
)

// ErrNotFound is returned when a note does not exist.
var ErrNotFound = errors.New("note not found")

const dateLayout = "2006-01-02 15:04:05"

// Note identifies a markdown file in one of the permanent stores.
type Note struct {
	Name  string // file stem
	Path  string
	Store string // config.InformationDirName or config.ConceptsDirName
}

// Store reads and writes notes under the configured directories.
type Store struct {
	dataDir    string
	sessionDir string
	stagingDir string
	sessionID  string
	logger     *slog.Logger
	now        func() time.Time
}

// NewSessionID returns a short identifier naming a session mirror directory.
func NewSessionID() string {
	return uuid.New().String()[:8]
}

// NewStore creates a store for the given session. An empty sessionID starts a new session.
func NewStore(cfg config.Config, sessionID string, logger *slog.Logger) *Store {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dataDir:    cfg.DataDir,
		sessionDir: filepath.Join(cfg.SessionDir, sessionID),
		stagingDir: filepath.Join(cfg.StagingDir, sessionID),
		sessionID:  sessionID,
		logger:     logger.With("session", sessionID),
		now:        time.Now,
	}
}

// SessionID returns the identifier of the session mirror.
func (s *Store) SessionID() string { return s.sessionID }

// SessionDir returns the root of the session mirror.
func (s *Store) SessionDir() string { return s.sessionDir }

// StagingDir returns the directory consolidated documents are staged in.
func (s *Store) StagingDir() string { return s.stagingDir }

// Init creates the permanent stores and the session mirror.
func (s *Store) Init() error {
	for _, dir := range []string{
		filepath.Join(s.dataDir, config.InformationDirName),
		filepath.Join(s.dataDir, config.ConceptsDirName),
		filepath.Join(s.sessionDir, config.InformationDirName),
		filepath.Join(s.sessionDir, config.ConceptsDirName),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists reports whether the session mirror is present on disk.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.sessionDir)
	return err == nil && info.IsDir()
}

// Topics lists topics derived from concept filenames ("_" becomes a space),
// or defaults when the concepts store is empty.
func (s *Store) Topics(defaults []string) ([]string, error) {
	files, err := listMarkdown(filepath.Join(s.dataDir, config.ConceptsDirName))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return append([]string(nil), defaults...), nil
	}
	topics := make([]string, 0, len(files))
	for _, f := range files {
		topics = append(topics, strings.ReplaceAll(stem(f), "_", " "))
	}
	return topics, nil
}

// ListNotes enumerates the markdown files of both permanent stores.
func (s *Store) ListNotes() ([]Note, error) {
	var notes []Note
	for _, storeName := range []string{config.InformationDirName, config.ConceptsDirName} {
		dir := filepath.Join(s.dataDir, storeName)
		files, err := listMarkdown(dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			notes = append(notes, Note{Name: stem(f), Path: filepath.Join(dir, f), Store: storeName})
		}
	}
	return notes, nil
}

// ConceptPath returns the concept file whose stem matches topic, case-insensitively.
func (s *Store) ConceptPath(topic string) (string, bool) {
	dir := filepath.Join(s.dataDir, config.ConceptsDirName)
	files, err := listMarkdown(dir)
	if err != nil {
		return "", false
	}
	want := strings.ToLower(FileStem(topic))
	for _, f := range files {
		if strings.ToLower(stem(f)) == want {
			return filepath.Join(dir, f), true
		}
	}
	return "", false
}

// ReadNote returns the raw content of a note.
func (s *Store) ReadNote(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// SessionNotePath is the session information note for topic.
func (s *Store) SessionNotePath(topic string) string {
	return filepath.Join(s.sessionDir, config.InformationDirName, FileStem(topic)+".md")
}

// AppendAnswer appends a question/answer pair to the session note for topic,
// creating it with a title/date front-matter if missing. Question and answer
// are stored on one line each.
func (s *Store) AppendAnswer(topic, question, answer string) (string, error) {
	path := s.SessionNotePath(topic)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	entry := Pair{Question: singleLine(question), Answer: singleLine(answer)}.String()

	_, statErr := os.Stat(path)
	exists := statErr == nil

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if exists {
		entry = "\n\n" + entry
	} else {
		header, err := parser.RenderFrontmatter(parser.Frontmatter{
			Title: topic,
			Date:  s.now().Format(dateLayout),
		})
		if err != nil {
			return "", err
		}
		entry = header + entry
	}

	if _, err := io.WriteString(f, entry); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Debug("answer stored", "topic", topic, "path", path)
	return path, nil
}

// ReadPairs returns the pairs recorded for topic in this session.
// A topic with no session note has no pairs.
func (s *Store) ReadPairs(topic string) ([]Pair, error) {
	content, err := s.ReadNote(s.SessionNotePath(topic))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	doc, err := parser.ParseMarkdown(content)
	if err != nil {
		return nil, err
	}
	return ParsePairs(doc.Content), nil
}

// Stage writes a consolidated document to the staging area and returns its path.
func (s *Store) Stage(title, content string) (string, error) {
	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	path := filepath.Join(s.stagingDir, FileStem(title)+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("stage %s: %w", title, err)
	}
	return path, nil
}

// Promote copies a staged document over the permanent information note of the same title.
func (s *Store) Promote(stagedPath, title string) (string, error) {
	data, err := os.ReadFile(stagedPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", stagedPath, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read staged %s: %w", stagedPath, err)
	}

	dir := filepath.Join(s.dataDir, config.InformationDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create information dir: %w", err)
	}
	dest := filepath.Join(dir, FileStem(title)+".md")
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("promote %s: %w", title, err)
	}
	s.logger.Info("document promoted", "title", title, "path", dest)
	return dest, nil
}

// Cleanup removes the session mirror and staging directories.
func (s *Store) Cleanup() error {
	var errs []error
	for _, dir := range []string{s.sessionDir, s.stagingDir} {
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", dir, err))
		}
	}
	return errors.Join(errs...)
}

// FileStem converts a topic or title to a filename stem: spaces become "_",
// anything other than letters, digits, "-" and "_" is dropped.
func FileStem(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "senza_titolo"
	}
	return b.String()
}

// singleLine collapses line breaks so that text never starts a new pair label.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func listMarkdown(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

func stem(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}
