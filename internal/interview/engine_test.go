package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// funcGenerator routes gateway calls to plain functions, for tests where
// every call behaves the same way.
type funcGenerator struct {
	text func(prompt string) (string, error)
	json func(prompt string) (string, error)

	textCalls int
	jsonCalls int
}

func (g *funcGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.textCalls++
	return g.text(prompt)
}

func (g *funcGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	g.jsonCalls++
	return g.json(prompt)
}

func analysisJSON(sentiment string, probe bool, next string) string {
	return fmt.Sprintf(`{"sentiment": %q, "probe_deeper": %t, "next_question": %q}`, sentiment, probe, next)
}

func summaryJSON(assessment, recommendation string) string {
	return fmt.Sprintf(`{"assessment": %q, "recommendation": %q}`, assessment, recommendation)
}

func testProfile(skills ...string) CandidateProfile {
	return CandidateProfile{
		FullName: "Jordan Doe",
		Email:    "jordan@example.com",
		Position: "Backend Engineer",
		Skills:   skills,
	}
}

func startSession(t *testing.T, e *Engine, profile CandidateProfile) *Session {
	t.Helper()

	s, err := NewSession(profile)
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}

	reply, err := e.Start(context.Background(), s)
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}
	if reply.Message == "" {
		t.Fatal("expected an initial question")
	}

	return s
}

func TestNewSessionRejectsEmptySkills(t *testing.T) {
	if _, err := NewSession(testProfile()); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}

	if _, err := NewSession(testProfile("  ", "")); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile for blank skills, got %v", err)
	}
}

func TestEngineFollowUpThenCap(t *testing.T) {
	// One skill, cap 2, follow-up limit 1, model always probes: initial
	// question, one follow-up, then the cap forces conclusion.
	gen := &funcGenerator{
		text: func(string) (string, error) { return "How do Python generators work?", nil },
		json: func(prompt string) (string, error) {
			if gPromptIsAnalysis(prompt) {
				return analysisJSON("confident", true, "Can you give a real-world example?"), nil
			}
			return summaryJSON("Strong grasp of Python internals.", "advance"), nil
		},
	}

	e := NewEngine(gen, nil, Config{QuestionCap: 2, FollowUpLimit: 1}, zap.NewNop())
	s := startSession(t, e, testProfile("Python"))

	reply, err := e.Submit(context.Background(), s, Input{Text: "They produce values lazily via yield."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Done {
		t.Fatal("expected a follow-up, not conclusion")
	}
	if reply.Message != "Can you give a real-world example?" {
		t.Fatalf("expected the model's follow-up verbatim, got %q", reply.Message)
	}
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(s.Items))
	}
	if s.Items[1].Parent != 0 {
		t.Fatalf("expected follow-up parent 0, got %d", s.Items[1].Parent)
	}

	reply, err = e.Submit(context.Background(), s, Input{Text: "Streaming large files."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.Done {
		t.Fatal("expected conclusion after cap reached")
	}
	if s.State != StateConcluded {
		t.Fatalf("expected concluded state, got %s", s.State)
	}
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items at conclusion, got %d", len(s.Items))
	}
	if s.Summary == nil || s.Summary.Recommendation != RecommendationAdvance {
		t.Fatalf("unexpected summary: %+v", s.Summary)
	}

	for i, item := range s.Items {
		if item.Answer != "" && item.Sentiment == SentimentUnscored {
			t.Fatalf("answered item %d left unscored", i)
		}
	}
}

func TestEngineRoundRobinTopics(t *testing.T) {
	// Two skills, cap 4, model never probes: topics rotate in declaration
	// order, four top-level items, zero follow-ups.
	gen := &funcGenerator{
		text: func(string) (string, error) { return "Describe your experience.", nil },
		json: func(prompt string) (string, error) {
			if gPromptIsAnalysis(prompt) {
				return analysisJSON("neutral", false, "Tell me about the next topic."), nil
			}
			return summaryJSON("Solid across the stack.", "consider"), nil
		},
	}

	e := NewEngine(gen, nil, Config{QuestionCap: 4, FollowUpLimit: 1}, zap.NewNop())
	s := startSession(t, e, testProfile("Python", "SQL"))

	for i := 0; i < 4; i++ {
		reply, err := e.Submit(context.Background(), s, Input{Text: "An answer."})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if i < 3 && reply.Done {
			t.Fatalf("concluded too early at submit %d", i)
		}
		if i == 3 && !reply.Done {
			t.Fatal("expected conclusion after fourth answer")
		}
	}

	wantTopics := []string{"Python", "SQL", "Python", "SQL"}
	if len(s.Items) != len(wantTopics) {
		t.Fatalf("expected %d items, got %d", len(wantTopics), len(s.Items))
	}
	for i, item := range s.Items {
		if item.Topic != wantTopics[i] {
			t.Fatalf("item %d: expected topic %s, got %s", i, wantTopics[i], item.Topic)
		}
		if item.Parent != -1 {
			t.Fatalf("item %d: expected top-level item, got parent %d", i, item.Parent)
		}
	}
}

func TestEngineReusesNextTopicQuestion(t *testing.T) {
	gen := &funcGenerator{
		text: func(string) (string, error) { return "Initial question?", nil },
		json: func(prompt string) (string, error) {
			if gPromptIsAnalysis(prompt) {
				return analysisJSON("confident", false, "What indexes have you designed in SQL?"), nil
			}
			return summaryJSON("Fine.", "consider"), nil
		},
	}

	e := NewEngine(gen, nil, Config{QuestionCap: 4}, zap.NewNop())
	s := startSession(t, e, testProfile("Python", "SQL"))

	reply, err := e.Submit(context.Background(), s, Input{Text: "An answer."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reply.Message != "What indexes have you designed in SQL?" {
		t.Fatalf("expected the combined-response question to be reused, got %q", reply.Message)
	}

	// Only the initial question needed a free-text generation call.
	if gen.textCalls != 1 {
		t.Fatalf("expected 1 text call, got %d", gen.textCalls)
	}
}

func TestEngineFollowUpLimitPerOriginal(t *testing.T) {
	// The model always probes, but each original question allows a single
	// follow-up; the second probe must rotate topics instead.
	gen := &funcGenerator{
		text: func(string) (string, error) { return "A fresh Go question?", nil },
		json: func(prompt string) (string, error) {
			if gPromptIsAnalysis(prompt) {
				return analysisJSON("confident", true, "Probe deeper on that?"), nil
			}
			return summaryJSON("Great.", "advance"), nil
		},
	}

	e := NewEngine(gen, nil, Config{QuestionCap: 10, FollowUpLimit: 1}, zap.NewNop())
	s := startSession(t, e, testProfile("Go"))

	for i := 0; i < 3; i++ {
		if _, err := e.Submit(context.Background(), s, Input{Text: "An answer."}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	// Items: initial, follow-up, next-topic (limit reached), follow-up of that.
	if len(s.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(s.Items))
	}
	if s.Items[1].Parent != 0 {
		t.Fatalf("expected item 1 to follow up item 0, got parent %d", s.Items[1].Parent)
	}
	if s.Items[2].Parent != -1 {
		t.Fatalf("expected item 2 to be top-level after limit, got parent %d", s.Items[2].Parent)
	}
	if s.Items[3].Parent != 2 {
		t.Fatalf("expected item 3 to follow up item 2, got parent %d", s.Items[3].Parent)
	}
}

func TestEngineEasierRequest(t *testing.T) {
	gen := &funcGenerator{
		text: func(string) (string, error) { return "What is a goroutine?", nil },
		json: func(string) (string, error) { return summaryJSON("OK.", "consider"), nil },
	}

	e := NewEngine(gen, nil, Config{QuestionCap: 5}, zap.NewNop())
	s := startSession(t, e, testProfile("Go"))

	reply, err := e.Submit(context.Background(), s, Input{Easier: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Done {
		t.Fatal("easier request must not conclude below the cap")
	}

	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(s.Items))
	}

	easier := s.Items[1]
	if !easier.Easier {
		t.Fatal("expected the new item to be flagged easier")
	}
	if easier.Topic != s.Items[0].Topic {
		t.Fatalf("easier question changed topic: %s vs %s", easier.Topic, s.Items[0].Topic)
	}
	if s.Items[0].Answer != "" {
		t.Fatalf("original answer must stay empty, got %q", s.Items[0].Answer)
	}
	if s.Items[0].Sentiment != SentimentUnscored {
		t.Fatalf("unanswered item must stay unscored, got %s", s.Items[0].Sentiment)
	}
	if s.State != StateAwaitingAnswer {
		t.Fatalf("expected awaiting answer, got %s", s.State)
	}

	// No analysis call happens on the easier path.
	if gen.jsonCalls != 0 {
		t.Fatalf("expected no structured calls, got %d", gen.jsonCalls)
	}
}

func TestEngineEasierAtCapConcludes(t *testing.T) {
	gen := &funcGenerator{
		text: func(string) (string, error) { return "Question?", nil },
		json: func(string) (string, error) { return summaryJSON("Cut short.", "consider"), nil },
	}

	e := NewEngine(gen, nil, Config{QuestionCap: 1}, zap.NewNop())
	s := startSession(t, e, testProfile("Go"))

	reply, err := e.Submit(context.Background(), s, Input{Easier: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.Done {
		t.Fatal("expected conclusion when the cap leaves no room")
	}
	if len(s.Items) != 1 {
		t.Fatalf("cap exceeded: %d items", len(s.Items))
	}
}

func TestEngineSurvivesPermanentGatewayFailure(t *testing.T) {
	failure := errors.New("rate limited")
	gen := &funcGenerator{
		text: func(string) (string, error) { return "", failure },
		json: func(string) (string, error) { return "", failure },
	}

	e := NewEngine(gen, nil, Config{QuestionCap: 3}, zap.NewNop())
	s := startSession(t, e, testProfile("Python", "SQL"))

	if !s.Items[0].Fallback {
		t.Fatal("expected the initial question to be flagged fallback-generated")
	}

	var done bool
	for i := 0; i < 3 && !done; i++ {
		reply, err := e.Submit(context.Background(), s, Input{Text: "An answer."})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		done = reply.Done
	}

	if !done || s.State != StateConcluded {
		t.Fatalf("expected a concluded session, got state %s", s.State)
	}
	if len(s.Items) != 3 {
		t.Fatalf("expected the cap to bound items at 3, got %d", len(s.Items))
	}
	if s.Summary == nil || !s.Summary.Fallback {
		t.Fatalf("expected the fallback summary, got %+v", s.Summary)
	}
	if s.Summary.Recommendation != RecommendationReview {
		t.Fatalf("expected review recommendation, got %s", s.Summary.Recommendation)
	}

	for i, item := range s.Items {
		if !item.Fallback {
			t.Fatalf("item %d should carry the fallback flag", i)
		}
		if item.Answer != "" && item.Sentiment != SentimentNeutral {
			t.Fatalf("item %d: expected neutral fallback sentiment, got %s", i, item.Sentiment)
		}
	}
}

func TestEngineMalformedAnalysisFallsBack(t *testing.T) {
	gen := &funcGenerator{
		text: func(string) (string, error) { return "Question?", nil },
		json: func(string) (string, error) { return "not json at all", nil },
	}

	e := NewEngine(gen, nil, Config{QuestionCap: 2, MaxAttempts: 2}, zap.NewNop())
	s := startSession(t, e, testProfile("Go"))

	if _, err := e.Submit(context.Background(), s, Input{Text: "An answer."}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Items[0].Sentiment != SentimentNeutral {
		t.Fatalf("expected neutral fallback sentiment, got %s", s.Items[0].Sentiment)
	}

	// Two analysis attempts before falling back.
	if gen.jsonCalls != 2 {
		t.Fatalf("expected 2 structured attempts, got %d", gen.jsonCalls)
	}

	reply, err := e.Submit(context.Background(), s, Input{Text: "Another answer."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.Done || s.Summary == nil {
		t.Fatal("expected the session to conclude with a summary despite parse failures")
	}
}

func TestEngineRejectsInputInWrongState(t *testing.T) {
	gen := &funcGenerator{
		text: func(string) (string, error) { return "Question?", nil },
		json: func(string) (string, error) { return summaryJSON("Done.", "consider"), nil },
	}

	e := NewEngine(gen, nil, Config{QuestionCap: 1}, zap.NewNop())
	s := startSession(t, e, testProfile("Go"))

	if _, err := e.Submit(context.Background(), s, Input{Text: "Answer."}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := e.Submit(context.Background(), s, Input{Text: "Too late."}); err == nil {
		t.Fatal("expected an error for input after conclusion")
	}

	if _, err := e.Start(context.Background(), s); err == nil {
		t.Fatal("expected an error for restarting a concluded session")
	}
}

// gPromptIsAnalysis distinguishes the combined analysis prompt from the
// summary prompt in scripted stubs.
func gPromptIsAnalysis(prompt string) bool {
	return !strings.Contains(prompt, "QUESTIONS AND ANSWERS")
}
