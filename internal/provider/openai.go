// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/pdiddy/deck-engine/pkg/types"
)

// OpenAIProvider implements ContentProvider using the official openai-go
// SDK (chat completions with JSON-object responses).
type OpenAIProvider struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIProvider builds a provider from config. An API key and model are
// required; BaseURL is optional and supports OpenAI-compatible gateways.
func NewOpenAIProvider(cfg types.ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("content provider api key missing; provide provider.api_key")
	}
	if cfg.Model == "" {
		return nil, errors.New("content provider model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIProvider{model: cfg.Model, opts: opts}, nil
}

// outlineDTO mirrors the JSON shape requested from the model for planning.
type outlineDTO struct {
	Title    string   `json:"title"`
	Chapters []string `json:"chapters"`
}

// slideDTO mirrors one generated slide. LayoutType stays a raw string here;
// validation happens in RepairSlides.
type slideDTO struct {
	Title        string   `json:"title"`
	BulletPoints []string `json:"bullet_points"`
	ImageQuery   string   `json:"image_query"`
	LayoutType   string   `json:"layout_type"`
}

type slidesDTO struct {
	Slides []slideDTO `json:"slides"`
}

type refinementDTO struct {
	Index        int    `json:"index"`
	RefinedQuery string `json:"refined_query"`
}

type refinementsDTO struct {
	Refinements []refinementDTO `json:"refinements"`
}

// GenerateOutline implements ContentProvider.
func (p *OpenAIProvider) GenerateOutline(ctx context.Context, inputText string) (types.Outline, error) {
	var dto outlineDTO
	if err := p.completeJSON(ctx, plannerSystemPrompt, inputText, &dto); err != nil {
		return types.Outline{}, err
	}

	outline := types.Outline{Title: strings.TrimSpace(dto.Title), Chapters: dto.Chapters}
	if err := ValidateOutline(outline); err != nil {
		return types.Outline{}, fmt.Errorf("planner response rejected: %w", err)
	}
	return outline, nil
}

// GenerateSlides implements ContentProvider.
func (p *OpenAIProvider) GenerateSlides(ctx context.Context, outline types.Outline) ([]types.Slide, error) {
	var dto slidesDTO
	if err := p.completeJSON(ctx, generatorSystemPrompt, generatorUserPrompt(outline), &dto); err != nil {
		return nil, err
	}
	if len(dto.Slides) == 0 {
		return nil, errors.New("generator returned no slides")
	}

	slides := make([]types.Slide, len(dto.Slides))
	for i, s := range dto.Slides {
		slides[i] = types.Slide{
			Title:        strings.TrimSpace(s.Title),
			BulletPoints: s.BulletPoints,
			ImageQuery:   strings.TrimSpace(s.ImageQuery),
			LayoutType:   types.LayoutType(s.LayoutType),
		}
	}
	return slides, nil
}

// RefineImageQueries implements ContentProvider. Returned indices are
// zero-based; the model is prompted with one-based slide numbers and the
// shift happens here.
func (p *OpenAIProvider) RefineImageQueries(ctx context.Context, slides []types.Slide) (map[int]string, error) {
	var dto refinementsDTO
	if err := p.completeJSON(ctx, advisorSystemPrompt, advisorUserPrompt(slides), &dto); err != nil {
		return nil, err
	}

	refined := make(map[int]string, len(dto.Refinements))
	for _, r := range dto.Refinements {
		q := strings.TrimSpace(r.RefinedQuery)
		if q == "" {
			continue
		}
		refined[r.Index-1] = q
	}
	return refined, nil
}

// completeJSON runs one chat completion in JSON mode and unmarshals the
// reply into out.
func (p *OpenAIProvider) completeJSON(ctx context.Context, system, user string, out any) error {
	client := openai.NewClient(p.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return errors.New("openai: empty choices")
	}

	raw := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("parsing model response: %w", err)
	}
	return nil
}

// stripFences removes a surrounding markdown code fence, which some models
// emit even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
