// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible gateways.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// ProviderConfig holds settings for the content-generation stages
// (planning, expansion, image advisory).
type ProviderConfig struct {
	AIConfig `yaml:",inline"`
}

// ImageConfig holds settings for image search and generation during the
// visual-enrichment stage.
type ImageConfig struct {
	// Timeout is the HTTP request timeout for search and fetch calls.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UnsplashAccessKey authenticates Unsplash photo search. When empty the
	// search backend is disabled and enrichment falls through to generation.
	UnsplashAccessKey string `json:"unsplash_access_key,omitempty" yaml:"unsplash_access_key,omitempty"`

	// EnableSearch controls whether photo search runs at all.
	EnableSearch bool `json:"enable_search" yaml:"enable_search"`

	// GenModel is the image-generation model identifier (e.g. "dall-e-3").
	GenModel string `json:"gen_model" yaml:"gen_model"`

	// GenAPIKey authenticates the image-generation API.
	GenAPIKey string `json:"gen_api_key,omitempty" yaml:"gen_api_key,omitempty"`

	// GenBaseURL overrides the image-generation endpoint.
	GenBaseURL string `json:"gen_base_url,omitempty" yaml:"gen_base_url,omitempty"`

	// RetryDelay is the fixed delay before the single rate-limit retry of a
	// generation call (default 5s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// LayoutPolicy names the two layout decisions that vary between deployments:
// which layout tags carry a picture region, and which template index serves
// unknown or default tags.
type LayoutPolicy struct {
	// PictureLayouts is the set of layout tags allowed to carry an image
	// query. Defaults to title_content and picture_caption.
	PictureLayouts []LayoutType `json:"picture_layouts" yaml:"picture_layouts"`

	// DefaultLayoutIndex is the template index used for the default tag and
	// for any tag outside the closed set (default 1, Title and Content).
	DefaultLayoutIndex int `json:"default_layout_index" yaml:"default_layout_index"`
}

// DefaultLayoutPolicy returns the policy matching the standard template:
// pictures on title_content and picture_caption, unknown tags to index 1.
func DefaultLayoutPolicy() LayoutPolicy {
	return LayoutPolicy{
		PictureLayouts:     []LayoutType{LayoutTitleContent, LayoutPictureCaption},
		DefaultLayoutIndex: 1,
	}
}

// AllowsPicture reports whether the tag is in the picture-bearing set.
func (p LayoutPolicy) AllowsPicture(t LayoutType) bool {
	for _, l := range p.PictureLayouts {
		if l == t {
			return true
		}
	}
	return false
}

// RenderConfig holds settings for the document assembly engine.
type RenderConfig struct {
	// OutputDir is the directory for generated .pptx files.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// FetchTimeout bounds remote image downloads during assembly.
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout"`

	// PlaceholderHosts lists stub-image hosts whose URLs are never embedded
	// (default placehold.co, placeholder.com).
	PlaceholderHosts []string `json:"placeholder_hosts" yaml:"placeholder_hosts"`

	Layout LayoutPolicy `json:"layout" yaml:"layout"`
}

// StoreConfig holds settings for the checkpoint store.
type StoreConfig struct {
	// Path is the SQLite database file (e.g. "data/deck-engine.db").
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	Image    ImageConfig    `json:"image" yaml:"image"`
	Render   RenderConfig   `json:"render" yaml:"render"`
	Store    StoreConfig    `json:"store" yaml:"store"`
}
