// Package openai provides an oracle.Classifier backed by OpenAI chat models.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/dialtree/dialtree-go/dialog/oracle"
)

// Classifier implements oracle.Classifier using OpenAI's API.
//
// Each classification is one chat completion in JSON mode at temperature
// zero: the prompt lists the node's declared branches and the model answers
// with a single JSON object. Transient API failures are retried; anything
// else surfaces as an error, which the engine degrades to re-asking.
//
// Example:
//
//	clf := openai.New(os.Getenv("OPENAI_API_KEY"), "gpt-4o-mini")
//	decision, err := clf.Classify(ctx, req)
type Classifier struct {
	modelName  string
	client     completionClient
	maxRetries int
	retryDelay time.Duration
}

// completionClient is the API surface the classifier needs; tests substitute
// a canned implementation.
type completionClient interface {
	complete(ctx context.Context, system string, msgs []oracle.Message) (string, error)
}

// New creates a Classifier for the given API key and model. An empty model
// name selects gpt-4o-mini, which is fast enough for live voice turns.
func New(apiKey, modelName string) *Classifier {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	return &Classifier{
		modelName:  modelName,
		client:     &sdkClient{client: newSDKClient(apiKey), modelName: modelName},
		maxRetries: 2,
		retryDelay: 250 * time.Millisecond,
	}
}

// Classify implements oracle.Classifier.
func (c *Classifier) Classify(ctx context.Context, req oracle.Request) (oracle.Decision, error) {
	if ctx.Err() != nil {
		return oracle.Decision{}, ctx.Err()
	}

	system := oracle.BuildSystemPrompt(req)
	msgs := oracle.Messages(req)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.client.complete(ctx, system, msgs)
		if err == nil {
			return oracle.ParseReply(req, raw), nil
		}
		lastErr = err

		if !isTransient(err) || attempt >= c.maxRetries {
			break
		}

		select {
		case <-time.After(c.retryDelay * time.Duration(attempt+1)):
		case <-ctx.Done():
			return oracle.Decision{}, ctx.Err()
		}
	}

	return oracle.Decision{}, fmt.Errorf("openai classify: %w", lastErr)
}

// isTransient reports whether an API error is worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "429", "timeout", "connection", "network", "500", "502", "503"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func newSDKClient(apiKey string) *openai.Client {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &client
}

// sdkClient wraps the official openai-go SDK.
type sdkClient struct {
	client    *openai.Client
	modelName string
}

func (s *sdkClient) complete(ctx context.Context, system string, msgs []oracle.Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	params = append(params, openai.SystemMessage(system))
	for _, m := range msgs {
		if m.Role == oracle.RoleAssistant {
			params = append(params, openai.AssistantMessage(m.Content))
		} else {
			params = append(params, openai.UserMessage(m.Content))
		}
	}

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(s.modelName),
		Messages: params,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: openai.Ptr(shared.NewResponseFormatJSONObjectParam()),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai: empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}
