package interpreter

import (
	"context"
	"errors"
	"fmt"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// ChatModel is the generative text collaborator: a single stateless
// completion per call, no streaming, no retained conversation.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CohereChatModel drives the Cohere Chat API.
// SDK: github.com/cohere-ai/cohere-go/v2
type CohereChatModel struct {
	client      *cohereclient.Client
	model       string
	temperature float64
	timeout     time.Duration
}

// NewCohereChatModel constructs a chat model client. The timeout applies to
// each individual completion call.
func NewCohereChatModel(apiKey, model string, timeout time.Duration) *CohereChatModel {
	return &CohereChatModel{
		client:      cohereclient.NewClient(cohereclient.WithToken(apiKey)),
		model:       model,
		temperature: 0.2,
		timeout:     timeout,
	}
}

// Complete sends one system+user exchange and returns the response text.
func (c *CohereChatModel) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:     user,
		Preamble:    &system,
		Model:       &c.model,
		Temperature: &c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if resp == nil {
		return "", errors.New("chat completion returned empty response")
	}

	return resp.Text, nil
}
