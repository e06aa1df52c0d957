package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeCallResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeCallRecord struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

type fakeCaller struct {
	mu    sync.Mutex
	calls []fakeCallRecord
	queue []fakeCallResponse
}

func (f *fakeCaller) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeCallResponse{resp: resp, err: err})
}

func (f *fakeCaller) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prompt := ""
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		prompt = contents[0].Parts[0].Text
	}
	f.calls = append(f.calls, fakeCallRecord{model: model, prompt: prompt, config: config})

	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next.resp, next.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func newTestGenerator(caller *fakeCaller, maxRetries int) *Generator {
	return &Generator{
		models:     caller,
		model:      "gemini-pro",
		maxRetries: maxRetries,
		maxLogLen:  defaultMaxLogLength,
		logger:     zap.NewNop(),
	}
}

func TestGeneratorRetriesOnTransientError(t *testing.T) {
	originalSleep := sleep
	sleep = func(time.Duration) {}
	defer func() { sleep = originalSleep }()

	caller := &fakeCaller{}
	caller.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	caller.enqueue(textResponse("retry ok"), nil)

	g := newTestGenerator(caller, 2)

	output, err := g.GenerateContent(context.Background(), "tell me about Go")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(caller.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(caller.calls))
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	originalSleep := sleep
	sleep = func(time.Duration) {}
	defer func() { sleep = originalSleep }()

	caller := &fakeCaller{}
	caller.enqueue(nil, genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"})
	caller.enqueue(nil, genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"})

	g := newTestGenerator(caller, 2)

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	if len(caller.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(caller.calls))
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	caller := &fakeCaller{}
	caller.enqueue(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g := newTestGenerator(caller, 3)

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for client error")
	}

	if len(caller.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(caller.calls))
	}
}

func TestGenerateJSONSetsResponseMIMEType(t *testing.T) {
	caller := &fakeCaller{}
	caller.enqueue(textResponse(`{"ok": true}`), nil)

	g := newTestGenerator(caller, 2)

	output, err := g.GenerateJSON(context.Background(), "structured prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != `{"ok": true}` {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(caller.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(caller.calls))
	}

	config := caller.calls[0].config
	if config == nil || config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON response MIME type, got %+v", config)
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	g := newTestGenerator(&fakeCaller{}, 2)

	if _, err := g.GenerateContent(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestGeneratorEmptyResponseIsError(t *testing.T) {
	caller := &fakeCaller{}
	caller.enqueue(&genai.GenerateContentResponse{}, nil)

	g := newTestGenerator(caller, 2)

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty response")
	}
}
