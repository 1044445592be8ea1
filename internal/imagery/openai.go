// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imagery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/deck-engine/pkg/types"
)

// OpenAIGenerator implements Generator over the openai-go image API.
type OpenAIGenerator struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIGenerator builds a generator from config. Returns nil when no
// generation key is configured; enrichment treats a nil generator as a
// disabled path.
func NewOpenAIGenerator(cfg types.ImageConfig) *OpenAIGenerator {
	if cfg.GenAPIKey == "" {
		return nil
	}
	model := cfg.GenModel
	if model == "" {
		model = "dall-e-3"
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.GenAPIKey)}
	if cfg.GenBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.GenBaseURL))
	}
	return &OpenAIGenerator{model: model, opts: opts}
}

// Generate implements Generator. Rate-limit responses are reported as
// ErrRateLimited so the enrichment retry policy can distinguish them.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(g.opts...)

	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(g.model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("image generation: %w", ErrRateLimited)
		}
		return "", fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("image generation: empty response")
	}
	return resp.Data[0].URL, nil
}
