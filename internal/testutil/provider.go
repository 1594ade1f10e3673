package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"
)

// Responder decides what the fake provider answers for one request.
type Responder func(req openai.ChatCompletionRequest) (status int, body any)

// FakeProvider is an httptest server speaking the chat completions API.
type FakeProvider struct {
	*httptest.Server

	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	headers  []http.Header
}

// NewFakeProvider starts a fake provider that is closed with the test.
func NewFakeProvider(t *testing.T, respond Responder) *FakeProvider {
	t.Helper()

	fp := &FakeProvider{}
	fp.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}

		fp.mu.Lock()
		fp.requests = append(fp.requests, req)
		fp.headers = append(fp.headers, r.Header.Clone())
		fp.mu.Unlock()

		status, body := respond(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(fp.Close)
	return fp
}

// Requests returns a copy of every request received so far.
func (fp *FakeProvider) Requests() []openai.ChatCompletionRequest {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), fp.requests...)
}

// Headers returns a copy of the headers of every request received so far.
func (fp *FakeProvider) Headers() []http.Header {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]http.Header(nil), fp.headers...)
}

// Reply answers every request with a single choice holding content.
func Reply(content string) Responder {
	return func(openai.ChatCompletionRequest) (int, any) {
		return http.StatusOK, Completion(content)
	}
}

// Fail answers every request with an OpenAI-style error body.
func Fail(status int, message string) Responder {
	return func(openai.ChatCompletionRequest) (int, any) {
		return status, map[string]any{
			"error": map[string]any{"message": message, "code": status},
		}
	}
}

// Completion builds a one-choice chat completion response.
func Completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "gen-test",
		Object: "chat.completion",
		Model:  "test-model",
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}
