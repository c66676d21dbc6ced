// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/snapfind-dev/snapfind/internal/vision"
	snaperr "github.com/snapfind-dev/snapfind/pkg/errors"
)

const captionPrompt = "Describe this image briefly in one short sentence. " +
	"Focus on what a person might remember about it for search."

// Config holds OpenAI client configuration.
type Config struct {
	APIKey       string
	BaseURL      string // optional, useful for testing against a mock server
	CaptionModel string
	EmbedModel   string
}

// Compile-time interface check.
var _ vision.Client = (*Client)(nil)

// Client implements vision.Client using the OpenAI chat completions API for
// captioning and the embeddings API for text vectors.
type Client struct {
	client openaisdk.Client
	config Config
}

// New creates a new OpenAI vision client. Returns an error if the API key is
// missing; model names default to gpt-4.1-mini / text-embedding-3-small.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, snaperr.New(snaperr.CodeVisionConfigInvalid, "openai: missing api_key in config")
	}
	if cfg.CaptionModel == "" {
		cfg.CaptionModel = "gpt-4.1-mini"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "text-embedding-3-small"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{client: openaisdk.NewClient(opts...), config: cfg}, nil
}

// CaptionImage generates a one-sentence caption for the image at path.
func (c *Client) CaptionImage(ctx context.Context, path string) (string, error) {
	dataURL, err := encodeImageDataURL(path)
	if err != nil {
		return "", err
	}

	parts := []openaisdk.ChatCompletionContentPartUnionParam{
		openaisdk.TextContentPart(captionPrompt),
		openaisdk.ImageContentPart(openaisdk.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}),
	}

	completion, err := c.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(c.config.CaptionModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(parts),
		},
		MaxCompletionTokens: param.NewOpt(int64(64)),
	})
	if err != nil {
		return "", snaperr.Wrap(err, snaperr.CodeVisionCaptionFailure, "captioning image", snaperr.FieldPath(path))
	}

	if len(completion.Choices) == 0 {
		return "", snaperr.New(snaperr.CodeVisionEmptyResponse, "caption response has no choices", snaperr.FieldPath(path))
	}

	caption := strings.TrimSpace(completion.Choices[0].Message.Content)
	if caption == "" {
		return "", snaperr.New(snaperr.CodeVisionEmptyResponse, "caption response is empty", snaperr.FieldPath(path))
	}
	return caption, nil
}

// EmbedText returns the embedding vector for text.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	res, err := c.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(c.config.EmbedModel),
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
	})
	if err != nil {
		return nil, snaperr.Wrapf(err, snaperr.CodeVisionEmbedFailure, "embedding text")
	}

	if len(res.Data) == 0 {
		return nil, snaperr.New(snaperr.CodeVisionEmptyResponse, "embedding response has no data")
	}

	vec := make([]float32, len(res.Data[0].Embedding))
	for i, v := range res.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// encodeImageDataURL reads the image file and encodes it as a base64 data
// URL for the vision model. MIME type is inferred from the extension.
func encodeImageDataURL(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", snaperr.Wrap(err, snaperr.CodeVisionImageUnreadable, "reading image", snaperr.FieldPath(path))
	}

	mime := "image/jpeg"
	if strings.EqualFold(filepath.Ext(path), ".png") {
		mime = "image/png"
	}

	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw)), nil
}
