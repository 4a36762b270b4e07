// Package advice relays symptom descriptions to a hosted text-generation
// model and returns its suggestion.
package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/medigo/backend/pkg/httpclient"
)

const (
	// DefaultModelURL is the inference endpoint used when none is configured.
	DefaultModelURL = "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.1"

	promptPrefix = "Suggest advice for the following symptoms:\n"

	// FallbackReply is returned when the model answers without any text.
	FallbackReply = "Sorry, I couldn't understand your symptoms."

	maxResponseBytes = 1 << 20
)

type generateRequest struct {
	Inputs string `json:"inputs"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// Client calls a text-generation inference API.
type Client struct {
	doer   httpclient.Doer
	url    string
	token  string
	logger *slog.Logger
}

// NewClient creates a Client posting to url with the given bearer token.
// doer is normally a circuit-breaker wrapped httpclient.Client.
func NewClient(doer httpclient.Doer, url, token string, logger *slog.Logger) *Client {
	if url == "" {
		url = DefaultModelURL
	}
	return &Client{doer: doer, url: url, token: token, logger: logger}
}

// Prompt builds the model input for a symptom description.
func Prompt(symptoms string) string {
	return promptPrefix + symptoms
}

// Advise sends the symptoms to the model and returns the first generated
// text. A successful response without text yields FallbackReply. Transport
// failures and non-2xx responses are returned as errors.
func (c *Client) Advise(ctx context.Context, symptoms string) (string, error) {
	body, err := json.Marshal(generateRequest{Inputs: Prompt(symptoms)})
	if err != nil {
		return "", fmt.Errorf("marshal advice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create advice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		recordRequest(outcomeError)
		return "", fmt.Errorf("call advice model: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordRequest(outcomeError)
		if httpclient.IsClientError(resp.StatusCode) {
			c.logger.WarnContext(ctx, "advice model rejected request, check the API token and model URL",
				slog.Int("status", resp.StatusCode),
			)
		}
		return "", httpclient.ParseResponseError(resp, "advice model")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		recordRequest(outcomeError)
		return "", fmt.Errorf("read advice response: %w", err)
	}

	reply := firstGeneratedText(data)
	if reply == "" {
		c.logger.WarnContext(ctx, "advice model returned no generated text",
			slog.Int("body_bytes", len(data)),
		)
		recordRequest(outcomeEmpty)
		return FallbackReply, nil
	}

	recordRequest(outcomeOK)
	return reply, nil
}

// firstGeneratedText extracts generated_text from the first element of the
// model's array response. Any other shape yields "".
func firstGeneratedText(data []byte) string {
	var gens []generation
	if err := json.Unmarshal(data, &gens); err != nil || len(gens) == 0 {
		return ""
	}
	if strings.TrimSpace(gens[0].GeneratedText) == "" {
		return ""
	}
	return gens[0].GeneratedText
}
