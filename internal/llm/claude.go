// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is a small client for the Claude Messages API shared by the
// classify, research, analyze and summarize capabilities. Structured output
// is requested by forcing a single tool; the tool input is returned as raw
// text so callers can run it through the result parser.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/pokerouter/internal/httputil"
	"github.com/pdiddy/pokerouter/pkg/types"
)

// MessagesURL is the Claude API endpoint. Package-level var for test substitution.
var MessagesURL = "https://api.anthropic.com/v1/messages"

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

const (
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 4096
)

// Tool describes a tool the model is forced to call.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Client calls the Claude Messages API.
type Client struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
	HTTP      *httputil.Client
}

// New builds a Client from cfg.
func New(cfg types.AIConfig) *Client {
	return &Client{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		BaseURL:   cfg.BaseURL,
		HTTP:      httputil.NewClient(cfg.HTTPConfig),
	}
}

// APIError is a non-200 reply from the API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Claude API returned %d: %s", e.Status, e.Body)
}

// Transient reports whether the status is worth retrying later.
func (e *APIError) Transient() bool {
	return httputil.Retryable(e.Status) || e.Status >= 500
}

type request struct {
	Model      string      `json:"model"`
	MaxTokens  int         `json:"max_tokens"`
	System     string      `json:"system,omitempty"`
	Messages   []message   `json:"messages"`
	Tools      []Tool      `json:"tools,omitempty"`
	ToolChoice *toolChoice `json:"tool_choice,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type response struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// CallTool sends prompt with tool forced and returns the tool input as raw
// JSON text. If the model answered in text instead, the text is returned so
// the caller can still attempt recovery.
func (c *Client) CallTool(ctx context.Context, system, prompt string, tool Tool) (string, error) {
	resp, err := c.send(ctx, request{
		System:     system,
		Messages:   []message{{Role: "user", Content: prompt}},
		Tools:      []Tool{tool},
		ToolChoice: &toolChoice{Type: "tool", Name: tool.Name},
	})
	if err != nil {
		return "", err
	}
	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == tool.Name && len(block.Input) > 0 {
			return string(block.Input), nil
		}
	}
	if text := joinText(resp.Content); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("no %s tool call in Claude API response", tool.Name)
}

// Complete sends prompt and returns the concatenated text reply.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.send(ctx, request{
		System:   system,
		Messages: []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	text := joinText(resp.Content)
	if text == "" {
		return "", fmt.Errorf("no text content in Claude API response")
	}
	return text, nil
}

func (c *Client) send(ctx context.Context, body request) (*response, error) {
	body.Model = c.Model
	if body.Model == "" {
		body.Model = DefaultModel
	}
	body.MaxTokens = c.MaxTokens
	if body.MaxTokens <= 0 {
		body.MaxTokens = defaultMaxTokens
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.BaseURL
	if url == "" {
		url = MessagesURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	hc := c.HTTP
	if hc == nil {
		hc = &httputil.Client{}
	}
	resp, err := hc.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Body: string(b)}
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding Claude response: %w", err)
	}
	if len(out.Content) == 0 {
		return nil, fmt.Errorf("Claude API returned empty content")
	}
	return &out, nil
}

func joinText(blocks []contentBlock) string {
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && strings.TrimSpace(b.Text) != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Render executes tmpl with data.
func Render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
