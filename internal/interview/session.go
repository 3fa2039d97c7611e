package interview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/raphaelgruber/braindump/internal/config"
	"github.com/raphaelgruber/braindump/internal/llm"
	"github.com/raphaelgruber/braindump/internal/notes"
)

// State is a step of the interview state machine.
type State int

const (
	StateSelectTopic State = iota
	StateAskQuestion
	StateAwaitAnswer
	StateExit
	StateConsolidate
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSelectTopic:
		return "SELECT_TOPIC"
	case StateAskQuestion:
		return "ASK_QUESTION"
	case StateAwaitAnswer:
		return "AWAIT_ANSWER"
	case StateExit:
		return "EXIT"
	case StateConsolidate:
		return "CONSOLIDATE"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Console is the interactive terminal surface. Ask returns io.EOF when input ends.
type Console interface {
	Interviewer(text string)
	Info(text string)
	Warn(text string)
	Ask(prompt string) (string, error)
}

// NoteStore is the subset of the notes store used by a session.
type NoteStore interface {
	NoteIndex
	NoteReader
	AppendAnswer(topic, question, answer string) (string, error)
}

// GuidelineManager owns the session guidelines.
type GuidelineManager interface {
	GuidelineSource
	Amend(ctx context.Context, guideline string) (string, error)
	Changed() bool
	Save() error
}

// Finalizer consolidates the answers of the given topics at session end.
type Finalizer interface {
	FinalizeSession(ctx context.Context, topics []string) error
}

// Deps are the collaborators of a session.
type Deps struct {
	Generator  llm.Generator
	Store      NoteStore
	Guidelines GuidelineManager
	Finalizer  Finalizer
	Console    Console
	Logger     *slog.Logger

	// Clone, when set, offers answers drafted from existing notes.
	Clone *Clone
}

// Session runs one interview. It owns the conversation history and the set
// of asked questions for the current topic.
type Session struct {
	gen        llm.Generator
	store      NoteStore
	guidelines GuidelineManager
	finalizer  Finalizer
	console    Console
	logger     *slog.Logger

	classifier *Classifier
	selector   *ContextSelector
	questions  *QuestionGenerator
	clone      *Clone

	topics []string

	state      State
	topic      string
	question   string
	suggestion *Suggestion
	next       *QuestionRequest
	history    History
	asked      *AskedSet
	answered   []string
}

// NewSession wires a session over the given topics.
func NewSession(cfg config.Config, topics []string, deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	validator := NewValidator(deps.Generator, logger)
	return &Session{
		gen:        deps.Generator,
		store:      deps.Store,
		guidelines: deps.Guidelines,
		finalizer:  deps.Finalizer,
		console:    deps.Console,
		logger:     logger,
		classifier: NewClassifier(deps.Generator, logger),
		selector:   NewContextSelector(deps.Generator, deps.Store, cfg.RelevanceBatchSize, cfg.HistoryWindowChars, logger),
		questions: NewQuestionGenerator(deps.Generator, validator, deps.Guidelines, deps.Store, QuestionOptions{
			SimilarityThreshold: cfg.SimilarityThreshold,
			MaxAttempts:         cfg.MaxQuestionAttempts,
			ContextFileLimit:    cfg.ContextFileLimit,
			ExcerptChars:        cfg.ContextExcerptChars,
		}, logger),
		clone:  deps.Clone,
		topics: append([]string(nil), topics...),
		asked:  NewAskedSet(),
	}
}

// Topic returns the current topic.
func (s *Session) Topic() string { return s.topic }

// State returns the current state.
func (s *Session) State() State { return s.state }

// History returns the conversation history for the current topic.
func (s *Session) History() *History { return &s.history }

// Asked returns the questions asked on the current topic.
func (s *Session) Asked() *AskedSet { return s.asked }

// AnsweredTopics returns the topics with stored answers, in visit order.
func (s *Session) AnsweredTopics() []string { return append([]string(nil), s.answered...) }

// TopicsPresentation renders the numbered topic list.
func TopicsPresentation(topics []string) string {
	if len(topics) == 0 {
		return "Nessun topic disponibile. Aggiungi file .md nella cartella dei concetti."
	}
	var b strings.Builder
	b.WriteString("Ecco i topic disponibili su cui posso intervistarti:\n\n")
	for i, t := range topics {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	b.WriteString("\nScegli un topic digitando il numero corrispondente o suggeriscine uno nuovo (invio per sceglierlo a caso).")
	return b.String()
}

// Run drives the state machine until the session ends. initialTopic, when
// non-empty, skips the interactive topic prompt.
func (s *Session) Run(ctx context.Context, initialTopic string) error {
	s.state = StateSelectTopic
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Debug("state", "state", s.state)

		switch s.state {
		case StateSelectTopic:
			s.selectTopic(ctx, initialTopic)
		case StateAskQuestion:
			s.askQuestion(ctx)
		case StateAwaitAnswer:
			s.awaitAnswer(ctx)
		case StateExit:
			s.exit()
		case StateConsolidate:
			if err := s.consolidate(ctx); err != nil {
				return err
			}
			s.state = StateDone
		case StateDone:
			return nil
		}
	}
}

func (s *Session) selectTopic(ctx context.Context, input string) {
	if strings.TrimSpace(input) == "" {
		s.console.Info(TopicsPresentation(s.topics))
		answer, err := s.console.Ask("Topic: ")
		if err != nil {
			s.state = StateExit
			return
		}
		input = answer
	}

	topic := s.ResolveTopic(ctx, input)
	s.console.Info(fmt.Sprintf("Topic scelto: %s", topic))
	s.enterTopic(topic, QuestionFirst)
}

// ResolveTopic maps a topic choice to a topic: a 1-based index (out of range
// gives DefaultTopic), blank input auto-picks via the model, names match the
// known topics case-insensitively and are otherwise used as typed.
func (s *Session) ResolveTopic(ctx context.Context, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return s.autoPickTopic(ctx)
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(s.topics) {
			return s.topics[n-1]
		}
		return DefaultTopic
	}
	for _, t := range s.topics {
		if strings.EqualFold(t, input) {
			return t
		}
	}
	return input
}

func (s *Session) autoPickTopic(ctx context.Context) string {
	if len(s.topics) == 0 {
		return DefaultTopic
	}
	prompt := fmt.Sprintf("L'utente non ha scelto un topic. Tra i seguenti topic: %s, scegli quello più pertinente. Restituisci SOLO il nome del topic.",
		strings.Join(s.topics, ", "))
	reply := strings.ToLower(s.gen.GenerateTimed(ctx, LabelTopicPick, prompt))
	if t, ok := findTopicIn(reply, s.topics); ok {
		return t
	}
	return s.topics[0]
}

// resolveTopicChange maps a requested topic: exact match, then the model's
// closest choice, then the first known topic.
func (s *Session) resolveTopicChange(ctx context.Context, requested string) string {
	requested = strings.TrimSpace(requested)
	for _, t := range s.topics {
		if strings.EqualFold(t, requested) {
			return t
		}
	}
	if len(s.topics) == 0 {
		if requested == "" {
			return DefaultTopic
		}
		return requested
	}

	prompt := fmt.Sprintf("L'utente vorrebbe cambiare topic a \"%s\".\nTra i seguenti topic disponibili: %s\nQuale è il più vicino semanticamente a \"%s\"?\nRestituisci SOLO il nome del topic scelto, senza spiegazioni.",
		requested, strings.Join(s.topics, ", "), requested)
	reply := strings.ToLower(s.gen.GenerateTimed(ctx, LabelTopicMatch, prompt))
	if t, ok := findTopicIn(reply, s.topics); ok {
		return t
	}
	return s.topics[0]
}

// findTopicIn returns the longest known topic mentioned in reply.
func findTopicIn(reply string, topics []string) (string, bool) {
	best := ""
	for _, t := range topics {
		if strings.Contains(reply, strings.ToLower(t)) && len(t) > len(best) {
			best = t
		}
	}
	return best, best != ""
}

// enterTopic switches to topic, resetting the per-topic state.
func (s *Session) enterTopic(topic string, kind QuestionKind) {
	s.topic = topic
	s.history.Reset()
	s.asked.Reset()
	s.next = &QuestionRequest{Kind: kind}
	s.state = StateAskQuestion
	s.logger.Info("topic entered", "topic", topic)
}

func (s *Session) askQuestion(ctx context.Context) {
	if s.next != nil {
		req := *s.next
		req.Topic = s.topic
		req.History = &s.history
		req.Previous = s.asked.List()
		req.Context = s.selector.Select(ctx, s.topic, &s.history)

		s.question = s.questions.Next(ctx, req)
		s.asked.Add(s.question)
		s.next = nil

		s.suggestion = nil
		if s.clone != nil {
			s.suggestion = s.clone.Suggest(ctx, s.topic, s.question, req.Context)
		}
	}
	s.console.Interviewer(s.question)
	if s.suggestion != nil {
		s.console.Info(s.suggestion.Present())
	}
	s.state = StateAwaitAnswer
}

func (s *Session) awaitAnswer(ctx context.Context) {
	input, err := s.console.Ask("> ")
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.logger.Warn("read input failed", "error", err)
		}
		s.state = StateExit
		return
	}
	if IsExit(input) {
		s.state = StateExit
		return
	}
	s.handle(ctx, input)
}

// handle dispatches one user turn and schedules the next question.
func (s *Session) handle(ctx context.Context, input string) {
	result := s.classifier.Classify(ctx, input, s.topic, s.question)
	s.logger.Info("intent classified", "kind", result.Intent.Kind(), "message", result.Message)
	s.state = StateAskQuestion

	switch in := result.Intent.(type) {
	case Direct:
		answer := in.Answer
		if s.suggestion != nil && s.clone != nil {
			var reaction Reaction
			answer, reaction = s.clone.Resolve(ctx, s.question, *s.suggestion, in.Answer)
			s.logger.Info("suggestion resolved", "reaction", reaction)
			s.console.Info(reactionMessage(reaction))
		}
		if _, err := s.store.AppendAnswer(s.topic, s.question, answer); err != nil {
			s.logger.Error("store answer failed", "topic", s.topic, "error", err)
			s.console.Warn("Impossibile salvare la risposta: " + err.Error())
		} else {
			s.markAnswered(s.topic)
		}
		s.history.Add(s.question, answer)
		s.next = &QuestionRequest{Kind: QuestionFollowUp}

	case Skip:
		s.history.Add(s.question, notes.SkippedMarker)
		s.console.Info("Domanda saltata. Genero una nuova domanda...")
		s.next = &QuestionRequest{Kind: QuestionAfterSkip}

	case ChangeTopic:
		s.history.Add(s.question, notes.TopicChangeMarker(in.Topic))
		topic := s.resolveTopicChange(ctx, in.Topic)
		s.console.Info(fmt.Sprintf("Topic cambiato a: %s", topic))
		s.enterTopic(topic, QuestionTopicIntro)

	case SuggestQuestion:
		s.history.Add(s.question, notes.SuggestedQuestionMarker(in.Suggestion))
		s.next = &QuestionRequest{Kind: QuestionFromSuggestion, Suggestion: in.Suggestion}

	case Irrelevant:
		s.history.Add(s.question, notes.IrrelevantMarker(in.Reason))
		s.console.Info("Capito, provo con una domanda più pertinente.")
		s.next = &QuestionRequest{Kind: QuestionMoreRelevant}

	case Help:
		s.console.Info(HelpText)

	case QuestionFeedback:
		s.console.Info(fmt.Sprintf("Genererò una nuova domanda tenendo in considerazione: '%s'", in.Feedback))
		s.next = &QuestionRequest{Kind: QuestionWithFeedback, Feedback: in.Feedback}

	case AddGuideline:
		if _, err := s.guidelines.Amend(ctx, in.Guideline); err != nil {
			s.logger.Warn("amend guidelines failed", "error", err)
			s.console.Warn("Si è verificato un errore nell'aggiunta della linea guida.")
		} else {
			s.console.Info("Linea guida aggiunta.")
		}

	case ShowGuidelines:
		text, err := s.guidelines.Text()
		if err != nil {
			s.console.Warn("Linee guida non disponibili: " + err.Error())
		} else {
			s.console.Info("Ecco le linee guida attuali:\n\n" + text)
		}

	default:
		s.logger.Error("unhandled intent", "kind", result.Intent.Kind())
	}
}

func reactionMessage(r Reaction) string {
	switch r {
	case ReactionAccepted:
		return "Risposta suggerita accettata."
	case ReactionModified:
		return "Risposta suggerita modificata con le tue correzioni."
	default:
		return "Salvo la tua risposta."
	}
}

func (s *Session) markAnswered(topic string) {
	for _, t := range s.answered {
		if t == topic {
			return
		}
	}
	s.answered = append(s.answered, topic)
}

func (s *Session) exit() {
	if s.guidelines != nil && s.guidelines.Changed() {
		answer, err := s.console.Ask("Vuoi salvare le modifiche alle linee guida? (s/N) ")
		if err == nil && IsYes(answer) {
			if err := s.guidelines.Save(); err != nil {
				s.console.Warn("Impossibile salvare le linee guida: " + err.Error())
			} else {
				s.console.Info("Linee guida salvate.")
			}
		} else {
			s.console.Info("Linee guida non salvate.")
		}
	}
	s.state = StateConsolidate
}

func (s *Session) consolidate(ctx context.Context) error {
	if s.finalizer == nil {
		return nil
	}
	if err := s.finalizer.FinalizeSession(ctx, s.AnsweredTopics()); err != nil {
		return fmt.Errorf("consolidate session: %w", err)
	}
	return nil
}

// IsYes reports whether answer is an affirmative reply.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "si", "sì", "y", "yes":
		return true
	}
	return false
}
