// Package gemini is the timing/vision collaborator: it asks Gemini to
// align comic panels with the narration audio and, optionally, to locate
// speech bubbles for cropping. Every call here is best-effort: callers
// treat any error as "no result" and proceed deterministically without it.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type Client struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func New(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is empty")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &Client{client: c, model: model, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// generate uploads a media file, runs one prompt against it and returns
// the concatenated text of the first candidate.
func (c *Client) generate(ctx context.Context, mediaPath, prompt string) (string, error) {
	file, err := c.client.UploadFileFromPath(ctx, mediaPath, nil)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", mediaPath, err)
	}
	defer func() {
		if err := c.client.DeleteFile(ctx, file.Name); err != nil {
			c.logger.Debug("deleting uploaded file", zap.String("file", file.Name), zap.Error(err))
		}
	}()

	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.FileData{URI: file.URI},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty model response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in model response")
	}
	return sb.String(), nil
}
