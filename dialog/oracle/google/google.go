// Package google provides an oracle.Classifier backed by Google Gemini.
package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dialtree/dialtree-go/dialog/oracle"
)

// Classifier implements oracle.Classifier using the Gemini API.
type Classifier struct {
	modelName string
	client    contentClient
}

// contentClient is the API surface the classifier needs; tests substitute a
// canned implementation.
type contentClient interface {
	generate(ctx context.Context, system string, msgs []oracle.Message) (string, error)
}

// New creates a Classifier for the given API key and model. An empty model
// name selects gemini-2.5-flash.
func New(apiKey, modelName string) *Classifier {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &Classifier{
		modelName: modelName,
		client:    &sdkClient{apiKey: apiKey, modelName: modelName},
	}
}

// Classify implements oracle.Classifier.
func (c *Classifier) Classify(ctx context.Context, req oracle.Request) (oracle.Decision, error) {
	if ctx.Err() != nil {
		return oracle.Decision{}, ctx.Err()
	}

	raw, err := c.client.generate(ctx, oracle.BuildSystemPrompt(req), oracle.Messages(req))
	if err != nil {
		return oracle.Decision{}, fmt.Errorf("google classify: %w", err)
	}
	return oracle.ParseReply(req, raw), nil
}

// sdkClient wraps the official Gemini SDK. The client is created per call;
// classification traffic in a voice conversation is one request every few
// seconds, not worth holding a connection open.
type sdkClient struct {
	apiKey    string
	modelName string
}

func (s *sdkClient) generate(ctx context.Context, system string, msgs []oracle.Message) (string, error) {
	if s.apiKey == "" {
		return "", errors.New("google API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return "", fmt.Errorf("create google client: %w", err)
	}
	defer func() { _ = client.Close() }()

	genModel := client.GenerativeModel(s.modelName)
	genModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	genModel.ResponseMIMEType = "application/json"

	parts := make([]genai.Part, 0, len(msgs))
	for _, m := range msgs {
		if m.Content != "" {
			parts = append(parts, genai.Text(m.Content))
		}
	}

	resp, err := genModel.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("google API error: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				return string(text), nil
			}
		}
	}
	return "", errors.New("google: no text in response")
}
