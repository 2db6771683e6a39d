package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	// Generous per-request timeout: local runtimes (Ollama) may load a
	// model on the first call.
	requestTimeout = 120 * time.Second

	maxAttempts  = 5
	initialDelay = 500 * time.Millisecond
	maxDelay     = 8 * time.Second

	// Embedding inputs are sent in batches; provider APIs cap the number
	// of inputs per request well below a full corpus.
	embedBatchSize = 64
)

// client speaks the OpenAI-compatible wire format. All providers share
// it; prefix selects the API path root ("/v1" for most, "" for Gemini's
// openai endpoint).
type client struct {
	cfg    Config
	hc     *http.Client
	prefix string
}

func newClient(cfg Config, prefix string) client {
	return client{
		cfg:    cfg,
		prefix: prefix,
		hc:     &http.Client{Timeout: requestTimeout},
	}
}

type chatPayload struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Format      *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatReply struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *client) chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	payload := chatPayload{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if payload.Model == "" {
		payload.Model = c.cfg.Model
	}
	if req.ResponseFormat != "" {
		payload.Format = &struct {
			Type string `json:"type"`
		}{Type: req.ResponseFormat}
	}

	raw, err := c.post(ctx, c.prefix+"/chat/completions", payload)
	if err != nil {
		return nil, err
	}

	var reply chatReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("decoding chat reply: %w", err)
	}
	if len(reply.Choices) == 0 {
		return nil, fmt.Errorf("chat reply carried no choices")
	}

	return &ChatResponse{
		Content:          reply.Choices[0].Message.Content,
		Model:            reply.Model,
		FinishReason:     reply.Choices[0].FinishReason,
		PromptTokens:     reply.Usage.PromptTokens,
		CompletionTokens: reply.Usage.CompletionTokens,
		TotalTokens:      reply.Usage.TotalTokens,
	}, nil
}

type embedPayload struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedReply struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// embed returns one vector per input text, in input order, batching the
// requests.
func (c *client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		if err := c.embedBatch(ctx, texts[start:end], out[start:end]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *client) embedBatch(ctx context.Context, texts []string, out [][]float32) error {
	raw, err := c.post(ctx, c.prefix+"/embeddings", embedPayload{
		Model: c.cfg.Model,
		Input: texts,
	})
	if err != nil {
		return err
	}

	var reply embedReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return fmt.Errorf("decoding embedding reply: %w", err)
	}
	for _, d := range reply.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	return nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// post sends a JSON body and retries transient failures with
// exponential backoff. 429 responses honor Retry-After when it exceeds
// the computed delay.
func (c *client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	url := c.cfg.BaseURL + path

	delay := initialDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			slog.Warn("llm: retrying request",
				"url", url, "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if delay *= 2; delay > maxDelay {
				delay = maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("posting to %s: %w", url, err)
			continue
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading reply body: %w", err)
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return raw, nil
		}

		lastErr = fmt.Errorf("provider returned %d: %s", resp.StatusCode, raw)
		if !retryable(resp.StatusCode) {
			return nil, lastErr
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					if d := time.Duration(secs) * time.Second; d > delay {
						delay = d
					}
				}
			}
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}
