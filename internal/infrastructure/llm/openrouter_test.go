package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"SponsorFinder/internal/config"
	"SponsorFinder/internal/infrastructure/llm"
	"SponsorFinder/internal/ports"
)

const completionBody = `{
  "id": "gen-1",
  "object": "chat.completion",
  "created": 1760000000,
  "model": "anthropic/claude-3-haiku",
  "choices": [{
    "index": 0,
    "finish_reason": "stop",
    "message": {"role": "assistant", "content": "{\"episode_summary\": \"ok\"}"}
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

var _ = Describe("OpenRouterClient", func() {
	var (
		server   *httptest.Server
		calls    atomic.Int32
		status   int
		captured map[string]any
		headers  http.Header
	)

	BeforeEach(func() {
		calls.Store(0)
		status = http.StatusOK
		captured = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			headers = r.Header.Clone()
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &captured)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status == http.StatusOK {
				_, _ = w.Write([]byte(completionBody))
				return
			}
			_, _ = w.Write([]byte(`{"error": {"message": "upstream unavailable", "type": "server_error"}}`))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func(apiKey string) *llm.OpenRouterClient {
		return llm.NewOpenRouterClient(config.ReasoningConfig{
			Endpoint: server.URL + "/",
			Model:    "anthropic/claude-3-haiku",
			APIKey:   apiKey,
			Referer:  "https://github.com/sponsorfinder",
			AppTitle: "Sponsor Finder",
		}, server.Client(), nil)
	}

	request := ports.ReasoningRequest{
		SystemPrompt: "system",
		UserPrompt:   "episode text",
		SchemaName:   "episode_understanding",
		Schema:       map[string]any{"type": "object"},
		MaxTokens:    1500,
		Temperature:  0.2,
	}

	It("returns the completion content and sends the request settings", func() {
		content, err := newClient("sk-test").Complete(context.Background(), request)

		Expect(err).NotTo(HaveOccurred())
		Expect(content).To(Equal(`{"episode_summary": "ok"}`))
		Expect(captured).To(HaveKeyWithValue("model", "anthropic/claude-3-haiku"))
		Expect(captured).To(HaveKeyWithValue("max_tokens", BeNumerically("==", 1500)))
		Expect(captured).To(HaveKeyWithValue("temperature", BeNumerically("~", 0.2, 0.0001)))
		Expect(captured).To(HaveKey("response_format"))
		Expect(headers.Get("Authorization")).To(Equal("Bearer sk-test"))
		Expect(headers.Get("HTTP-Referer")).To(Equal("https://github.com/sponsorfinder"))
		Expect(headers.Get("X-Title")).To(Equal("Sponsor Finder"))
	})

	It("makes a single attempt and reports the status on failure", func() {
		status = http.StatusServiceUnavailable

		_, err := newClient("sk-test").Complete(context.Background(), request)

		Expect(err).To(HaveOccurred())
		var statusErr *llm.StatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.StatusCode).To(Equal(http.StatusServiceUnavailable))
		Expect(calls.Load()).To(Equal(int32(1)))
	})

	It("refuses to call without a key", func() {
		_, err := newClient("").Complete(context.Background(), request)

		Expect(err).To(MatchError(llm.ErrMisconfigured))
		Expect(calls.Load()).To(Equal(int32(0)))
	})

	It("exposes the model", func() {
		Expect(newClient("sk-test").Model()).To(Equal("anthropic/claude-3-haiku"))
	})
})
