// Package lingen generates linguistic data (part of speech, synonyms,
// antonyms, related words, word forms) for vocabulary entries via the
// Anthropic API.
package lingen

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// Request identifies the word to generate data for.
type Request struct {
	Word        string
	Meaning     string
	CourseLevel string
}

// Result holds the generated linguistic data. Slices are cleaned of blanks
// and duplicates; absent fields are left zero.
type Result struct {
	PartOfSpeech string            `json:"partOfSpeech"`
	Synonyms     []string          `json:"synonyms"`
	Antonyms     []string          `json:"antonyms"`
	RelatedWords []string          `json:"relatedWords"`
	WordForms    map[string]string `json:"wordForms"`
}

// Client defines the generation operations used by the pipeline.
type Client interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Option configures the client.
type Option func(*sdkClient)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *sdkClient) {
		c.model = model
	}
}

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *sdkClient) {
		c.requestOpts = append(c.requestOpts, option.WithBaseURL(u))
	}
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client      sdk.Client
	model       string
	requestOpts []option.RequestOption
}

// NewClient creates a generation client backed by the SDK.
func NewClient(apiKey string, opts ...Option) Client {
	c := &sdkClient{
		model: "claude-haiku-4-5-20251001",
	}
	c.requestOpts = append(c.requestOpts, option.WithAPIKey(apiKey))
	for _, opt := range opts {
		opt(c)
	}
	c.client = sdk.NewClient(c.requestOpts...)
	return c
}

func (c *sdkClient) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Word == "" {
		return nil, eris.New("lingen: empty word")
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: 512,
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(buildPrompt(req))),
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "lingen: generate for %q", req.Word)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return parseResult(text, req.Word)
}
