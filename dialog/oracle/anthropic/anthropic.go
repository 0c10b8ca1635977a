// Package anthropic provides an oracle.Classifier backed by Claude models.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dialtree/dialtree-go/dialog/oracle"
)

// Classifier implements oracle.Classifier using Anthropic's Messages API.
//
// Claude has no JSON response mode, so the prompt instructs it to answer with
// a bare JSON object and oracle.ParseReply strips any markdown fencing it
// adds anyway.
type Classifier struct {
	modelName string
	client    messageClient
}

// messageClient is the API surface the classifier needs; tests substitute a
// canned implementation.
type messageClient interface {
	create(ctx context.Context, system string, msgs []oracle.Message) (string, error)
}

// New creates a Classifier for the given API key and model. An empty model
// name selects claude-3-5-haiku-latest; classification is a small structured
// task, latency matters more than depth.
func New(apiKey, modelName string) *Classifier {
	if modelName == "" {
		modelName = "claude-3-5-haiku-latest"
	}
	return &Classifier{
		modelName: modelName,
		client:    &sdkClient{client: newSDKClient(apiKey), modelName: modelName},
	}
}

// Classify implements oracle.Classifier.
func (c *Classifier) Classify(ctx context.Context, req oracle.Request) (oracle.Decision, error) {
	if ctx.Err() != nil {
		return oracle.Decision{}, ctx.Err()
	}

	raw, err := c.client.create(ctx, oracle.BuildSystemPrompt(req), oracle.Messages(req))
	if err != nil {
		return oracle.Decision{}, fmt.Errorf("anthropic classify: %w", err)
	}
	return oracle.ParseReply(req, raw), nil
}

func newSDKClient(apiKey string) *anthropic.Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &client
}

// sdkClient wraps the official anthropic-sdk-go client.
type sdkClient struct {
	client    *anthropic.Client
	modelName string
}

func (s *sdkClient) create(ctx context.Context, system string, msgs []oracle.Message) (string, error) {
	params := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == oracle.RoleAssistant {
			params = append(params, anthropic.NewAssistantMessage(block))
		} else {
			params = append(params, anthropic.NewUserMessage(block))
		}
	}

	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.modelName),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: params,
	})
	if err != nil {
		return "", err
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic: no text block in response")
}
