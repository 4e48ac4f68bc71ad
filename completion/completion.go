package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

var ErrEmptyResponse = errors.New("empty response from model")

// Error is returned for any failed completion: transport, service or an empty answer.
type Error struct {
	Model string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("completion with model %s failed: %v", e.Model, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Client struct {
	llm     llms.Model
	timeout time.Duration
}

type Option func(*Client)

// WithTimeout bounds each Complete call. Zero leaves the caller's context alone.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func New(llm llms.Model, opts ...Option) *Client {
	c := &Client{llm: llm}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Flatten joins the messages into one prompt, each block prefixed by its
// upper-cased role and followed by a blank line.
func Flatten(messages []Message) string {
	var prompt strings.Builder
	for _, m := range messages {
		prompt.WriteString(strings.ToUpper(string(m.Role)))
		prompt.WriteString(": ")
		prompt.WriteString(m.Content)
		prompt.WriteString("\n\n")
	}

	return prompt.String()
}

func (c *Client) Complete(ctx context.Context, messages []Message, model string, temperature float64) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	content := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(Flatten(messages)),
			},
		},
	}

	resp, err := c.llm.GenerateContent(
		ctx,
		content,
		llms.WithModel(model),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", &Error{Model: model, Err: err}
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", &Error{Model: model, Err: ErrEmptyResponse}
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", &Error{Model: model, Err: ErrEmptyResponse}
	}

	return text, nil
}
