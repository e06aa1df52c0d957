package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/talent-scout/scout/internal/ai"
	"github.com/talent-scout/scout/internal/logger"
	"go.uber.org/zap"
)

const (
	defaultQuestionCap   = 8
	defaultFollowUpLimit = 1
	defaultMaxAttempts   = 2

	closingMessage = "Thank you for your answers. That's all the questions I have for now. The hiring team will review your responses and get in touch with you regarding the next steps."
)

// ContextProvider supplies resume snippets relevant to a skill topic. An
// empty result is valid and must not block question generation.
type ContextProvider interface {
	Snippets(topic string) []string
}

// Config carries the numeric interview policy. Cap and follow-up limit are
// deliberately parameters rather than constants so tests can use small values.
type Config struct {
	// QuestionCap bounds the total number of QAItems in a session.
	QuestionCap int
	// FollowUpLimit bounds follow-ups per original question.
	FollowUpLimit int
	// MaxAttempts bounds structured-output attempts before the degraded
	// fallback path is taken.
	MaxAttempts int
}

func (c Config) withDefaults() Config {
	if c.QuestionCap <= 0 {
		c.QuestionCap = defaultQuestionCap
	}
	if c.FollowUpLimit < 0 {
		c.FollowUpLimit = defaultFollowUpLimit
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	return c
}

// Input is one turn of candidate input: either answer text or an explicit
// request for an easier question.
type Input struct {
	Text   string
	Easier bool
}

// Reply is the user-visible outcome of a transition. Done is set once the
// session has concluded and its summary is attached.
type Reply struct {
	Message string
	Done    bool
}

// Engine drives interview sessions through their state transitions. All
// gateway calls happen at the transition boundary; the branching decision
// itself is pure. A transition never surfaces a gateway failure: it degrades
// to deterministic fallback content instead.
type Engine struct {
	gen      ai.Generator
	snippets ContextProvider
	cfg      Config
	logger   *zap.Logger
}

// NewEngine creates an interview engine. The context provider may be nil when
// no resume was supplied.
func NewEngine(gen ai.Generator, snippets ContextProvider, cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		gen:      gen,
		snippets: snippets,
		cfg:      cfg.withDefaults(),
		logger:   log,
	}
}

// Start issues the initial question for the first skill topic.
func (e *Engine) Start(ctx context.Context, s *Session) (*Reply, error) {
	if s.State != StateAwaitingProfile {
		return nil, fmt.Errorf("session %s cannot start in state %s", s.ID, s.State)
	}

	topic := s.Topic()
	s.State = StateAskingQuestion

	question, fellBack := e.generateQuestion(ctx, s,
		buildInitialQuestionPrompt(topic, e.snippetsFor(topic)),
		fallbackQuestion(topic),
	)

	s.appendItem(QAItem{
		Question:  question,
		Topic:     topic,
		Parent:    -1,
		Sentiment: SentimentUnscored,
		Fallback:  fellBack,
	})
	s.State = StateAwaitingAnswer

	return &Reply{Message: question}, nil
}

// Submit processes one turn of candidate input and performs exactly one
// transition. It returns an error only for misuse (input in a state that does
// not accept it), never for gateway failures.
func (e *Engine) Submit(ctx context.Context, s *Session, in Input) (*Reply, error) {
	if s.State == StateConcluded {
		return nil, fmt.Errorf("session %s has already concluded", s.ID)
	}
	if s.State != StateAwaitingAnswer {
		return nil, fmt.Errorf("session %s cannot accept input in state %s", s.ID, s.State)
	}

	if in.Easier {
		return e.easierQuestion(ctx, s), nil
	}

	idx := len(s.Items) - 1
	item := &s.Items[idx]
	item.Answer = strings.TrimSpace(in.Text)
	s.State = StateAnalyzingAnswer

	res := e.analyze(ctx, s, item)
	item.Sentiment = res.Sentiment

	switch decide(s, res, e.cfg) {
	case branchConclude:
		s.State = StateConcluding
		return e.conclude(ctx, s), nil

	case branchFollowUp:
		s.State = StateAskingFollowUp
		s.appendItem(QAItem{
			Question:  res.NextQuestion,
			Topic:     item.Topic,
			Parent:    s.rootOf(idx),
			Sentiment: SentimentUnscored,
		})
		s.State = StateAwaitingAnswer
		return &Reply{Message: res.NextQuestion}, nil

	default:
		s.State = StateAskingNextTopic
		topic := s.advanceTopic()

		// The combined response already carries a question for the next
		// topic unless the model was signalling a probe; reuse it to avoid
		// a second outward call.
		question := ""
		fellBack := false
		if !res.Probe && !res.Fallback {
			question = strings.TrimSpace(res.NextQuestion)
		}
		if question == "" {
			question, fellBack = e.generateQuestion(ctx, s,
				buildInitialQuestionPrompt(topic, e.snippetsFor(topic)),
				fallbackQuestion(topic),
			)
		}

		s.appendItem(QAItem{
			Question:  question,
			Topic:     topic,
			Parent:    -1,
			Sentiment: SentimentUnscored,
			Fallback:  fellBack,
		})
		s.State = StateAwaitingAnswer
		return &Reply{Message: question}, nil
	}
}

type branch int

const (
	branchConclude branch = iota
	branchFollowUp
	branchNextTopic
)

// decide picks the next transition from the just-answered session state and
// the parsed analysis. Pure; all effects stay with the caller.
func decide(s *Session, res analysisResult, cfg Config) branch {
	if len(s.Items) >= cfg.QuestionCap {
		return branchConclude
	}

	if res.Probe && res.NextQuestion != "" {
		root := s.rootOf(len(s.Items) - 1)
		if s.followUpsOf(root) < cfg.FollowUpLimit {
			return branchFollowUp
		}
	}

	return branchNextTopic
}

// easierQuestion handles the explicit "easier" signal: no analysis call, a
// simplified question for the same topic, and the original item's answer
// stays empty. The question cap still bounds the item count.
func (e *Engine) easierQuestion(ctx context.Context, s *Session) *Reply {
	if len(s.Items) >= e.cfg.QuestionCap {
		s.State = StateConcluding
		return e.conclude(ctx, s)
	}

	original := s.Items[len(s.Items)-1]
	topic := original.Topic
	s.State = StateAskingQuestion

	question, fellBack := e.generateQuestion(ctx, s,
		buildEasierQuestionPrompt(topic, original.Question, e.snippetsFor(topic)),
		fallbackEasierQuestion(topic),
	)

	s.appendItem(QAItem{
		Question:  question,
		Topic:     topic,
		Parent:    -1,
		Easier:    true,
		Sentiment: SentimentUnscored,
		Fallback:  fellBack,
	})
	s.State = StateAwaitingAnswer

	return &Reply{Message: question}
}

// analyze performs the single combined analysis call for the just-answered
// item. Gateway failures and malformed structured output share the same
// bounded retry; exhaustion yields a neutral fallback result.
func (e *Engine) analyze(ctx context.Context, s *Session, item *QAItem) analysisResult {
	prompt := buildAnalysisPrompt(item.Question, item.Answer, s.NextTopic())
	log := logger.WithSessionFields(e.logger, s.ID, item.Topic)

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		raw, err := e.gen.GenerateJSON(ctx, prompt)
		if err != nil {
			log.Warn("analysis call failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		res, err := parseAnalysis(raw)
		if err != nil {
			log.Warn("analysis response malformed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		return res
	}

	log.Info("falling back to neutral analysis", zap.Int("attempts", e.cfg.MaxAttempts))
	return analysisResult{Sentiment: SentimentNeutral, Fallback: true}
}

// conclude derives the session summary and moves to the terminal state.
// Termination never blocks on the summary call: exhaustion of attempts
// attaches the deterministic fallback summary instead.
func (e *Engine) conclude(ctx context.Context, s *Session) *Reply {
	prompt := buildSummaryPrompt(s.Profile, s.Items)
	log := logger.WithSessionFields(e.logger, s.ID, "")

	var summary *Summary
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		raw, err := e.gen.GenerateJSON(ctx, prompt)
		if err != nil {
			log.Warn("summary call failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		parsed, err := parseSummary(raw)
		if err != nil {
			log.Warn("summary response malformed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		summary = parsed
		break
	}

	if summary == nil {
		summary = &Summary{
			Assessment:     "Automated analysis is unavailable for this interview. Please review the transcript manually.",
			Recommendation: RecommendationReview,
			Fallback:       true,
		}
	}

	s.Summary = summary
	s.State = StateConcluded

	log.Info("session concluded",
		zap.Int("questions", len(s.Items)),
		zap.String("recommendation", string(summary.Recommendation)),
		zap.Bool("fallback_summary", summary.Fallback),
	)

	return &Reply{Message: closingMessage, Done: true}
}

// generateQuestion runs one free-text question generation call, degrading to
// the supplied deterministic fallback when the gateway yields nothing usable.
func (e *Engine) generateQuestion(ctx context.Context, s *Session, prompt, fallback string) (string, bool) {
	text, err := e.gen.GenerateContent(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		logger.WithSessionFields(e.logger, s.ID, s.Topic()).
			Warn("question generation failed, using fallback template", zap.Error(err))
		return fallback, true
	}

	return strings.TrimSpace(text), false
}

func (e *Engine) snippetsFor(topic string) []string {
	if e.snippets == nil {
		return nil
	}
	return e.snippets.Snippets(topic)
}
