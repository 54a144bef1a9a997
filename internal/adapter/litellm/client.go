// Package litellm implements the review reasoner on top of a LiteLLM proxy's
// OpenAI-compatible chat completions API.
package litellm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/omnibank/reviewd/internal/port/reasoner"
	"github.com/omnibank/reviewd/internal/resilience"
)

// maxInputBytes caps the serialized task inputs sent to the model.
const maxInputBytes = 16000

// Client asks a chat model for a review verdict.
type Client struct {
	baseURL     string
	masterKey   string
	model       string
	temperature float64
	httpClient  *http.Client
	breaker     *resilience.Breaker
	logger      *slog.Logger
}

// NewClient creates a reasoner client against a LiteLLM proxy.
func NewClient(baseURL, masterKey, model string, temperature float64, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		masterKey:   masterKey,
		model:       model,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// Evaluate sends the task and its inputs to the model and parses a verdict.
// Every failure mode collapses to INCONCLUSIVE so callers can treat the
// reasoner as advisory and fall back to their conservative default.
func (c *Client) Evaluate(ctx context.Context, task string, inputs map[string]any) reasoner.Result {
	inconclusive := reasoner.Result{
		Verdict: reasoner.VerdictInconclusive,
		Reason:  "reasoner unavailable",
	}

	prompt := buildPrompt(task, inputs)
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return inconclusive
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		c.logger.Warn("reasoner call failed", "task", task, "error", err)
		return inconclusive
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil || len(resp.Choices) == 0 {
		c.logger.Warn("reasoner returned malformed response", "task", task)
		return inconclusive
	}

	result, ok := parseVerdictJSON(resp.Choices[0].Message.Content)
	if !ok {
		c.logger.Warn("reasoner output not parseable", "task", task)
		return inconclusive
	}
	return result
}

// Health reports whether the proxy answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	return err
}

const systemPrompt = "You are a strict banking review assistant. " +
	"Reply with a single JSON object of the form " +
	`{"decision":"APPROVE|REJECT|INCONCLUSIVE","reason":"short explanation"}` +
	" and nothing else. If the evidence is insufficient or contradictory, " +
	"answer INCONCLUSIVE."

// buildPrompt serializes the task inputs deterministically, key-sorted and
// capped, so identical items produce identical prompts.
func buildPrompt(task string, inputs map[string]any) string {
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("Task: ")
	sb.WriteString(task)
	sb.WriteString("\nInputs:\n")
	for _, k := range keys {
		val, err := json.Marshal(inputs[k])
		if err != nil {
			val = []byte(fmt.Sprintf("%q", fmt.Sprint(inputs[k])))
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.Write(val)
		sb.WriteString("\n")
	}

	prompt := sb.String()
	if len(prompt) > maxInputBytes {
		prompt = prompt[:maxInputBytes]
	}
	return prompt
}

// parseVerdictJSON extracts a {"decision","reason"} object from model output.
// Models wrap JSON in markdown fences or prose often enough that we strip
// fences and fall back to the outermost brace pair before giving up.
func parseVerdictJSON(content string) (reasoner.Result, bool) {
	candidate := strings.TrimSpace(content)
	candidate = strings.TrimPrefix(candidate, "```json")
	candidate = strings.TrimPrefix(candidate, "```")
	candidate = strings.TrimSuffix(candidate, "```")
	candidate = strings.TrimSpace(candidate)

	if res, ok := decodeResult(candidate); ok {
		return res, true
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start >= 0 && end > start {
		if res, ok := decodeResult(candidate[start : end+1]); ok {
			return res, true
		}
	}
	return reasoner.Result{}, false
}

func decodeResult(s string) (reasoner.Result, bool) {
	var raw struct {
		Decision string `json:"decision"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return reasoner.Result{}, false
	}
	verdict, ok := reasoner.ParseVerdict(raw.Decision)
	if !ok {
		return reasoner.Result{}, false
	}
	return reasoner.Result{Verdict: verdict, Reason: raw.Reason}, true
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if c.masterKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.masterKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("litellm API error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}
