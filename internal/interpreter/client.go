package interpreter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Interpreter is the boundary contract consumed by the dialog engine.
type Interpreter interface {
	Interpret(ctx context.Context, req Request) (*Result, error)
}

// Client calls an OpenAI-compatible chat-completions endpoint and parses the
// JSON object the model is instructed to emit.
type Client struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	HTTPClient  *http.Client
	Logger      zerolog.Logger
}

// NewClient builds a Client with a 60s timeout default.
func NewClient(baseURL, apiKey, model string, logger zerolog.Logger) *Client {
	return &Client{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		Model:       model,
		Temperature: 0.1,
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
		Logger:      logger,
	}
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	Model       string    `json:"model"`
	Messages    []chatMsg `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResp struct {
	Choices []struct {
		Message chatMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = `You convert meal descriptions into structured JSON. Respond with exactly one JSON object:
{"category":"breakfast|lunch|dinner|snack|other","date":"yyyy-MM-ddTHH:mm:ss","logTime":true|false,"items":[{"quantity":number,"unit":"string","name":"string"}],"needsClarification":true|false,"clarifications":[{"type":"string","itemName":"string","question":"string"}],"error":"optional"}
Ask a clarification whenever an item's size, weight, or unit is ambiguous. Do not guess portions.`

// Interpret sends the user text plus accumulated history to the model and
// parses its structured output. Transport failures and unparseable output
// both surface as errors; callers treat them as recoverable.
func (c *Client) Interpret(ctx context.Context, req Request) (*Result, error) {
	msgs := make([]chatMsg, 0, len(req.History)+3)
	msgs = append(msgs, chatMsg{Role: "system", Content: systemPrompt})
	msgs = append(msgs, chatMsg{Role: "system", Content: "Current local time: " + req.Now.Format(DateLayout)})
	if req.Preferences != "" {
		msgs = append(msgs, chatMsg{Role: "system", Content: "Known user preferences: " + req.Preferences})
	}
	for _, h := range req.History {
		msgs = append(msgs, chatMsg{Role: h.Role, Content: h.Text})
	}
	if req.Text != "" {
		msgs = append(msgs, chatMsg{Role: "user", Content: req.Text})
	}

	body, err := json.Marshal(chatReq{Model: c.Model, Messages: msgs, Temperature: c.Temperature})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	httpc := c.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}
	resp, err := httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("interpreter call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("interpreter call: status %d", resp.StatusCode)
	}

	var cr chatResp
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("interpreter call: %w", err)
	}
	if cr.Error != nil {
		return nil, fmt.Errorf("interpreter call: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return nil, ErrUnparseable
	}

	out, err := ParseResult(cr.Choices[0].Message.Content)
	if err != nil {
		c.Logger.Warn().Err(err).Msg("interpreter output unparseable")
		return nil, err
	}
	return out, nil
}

// ParseResult extracts the structured Result from raw model output. Models
// routinely wrap JSON in markdown code fences or pad it with prose, so the
// parser strips fences and takes the outermost brace-delimited object.
func ParseResult(content string) (*Result, error) {
	s := strings.TrimSpace(content)
	if s == "" {
		return nil, ErrUnparseable
	}

	// Strip a ```json … ``` (or plain ```) fence if present.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return nil, ErrUnparseable
	}

	var out Result
	if err := json.Unmarshal([]byte(s[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return &out, nil
}
