// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imagery acquires slide images: photo search first, generative
// fallback second. Every failure here degrades a single slide to no image;
// nothing in this package can fail a session.
package imagery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/deck-engine/pkg/types"
)

// ErrRateLimited marks a provider failure caused by rate limiting. Only
// this class of generation failure is retried, once, after a fixed delay.
var ErrRateLimited = errors.New("rate limited")

// Searcher finds existing photos for a query. An empty result with a nil
// error means nothing suitable was found.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Generator produces a new image for a prompt and returns its URL.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// retryDelay is overridable in tests to avoid real sleeps.
var retryDelay = func(cfg types.ImageConfig) time.Duration {
	if cfg.RetryDelay > 0 {
		return cfg.RetryDelay
	}
	return 5 * time.Second
}

// Enricher runs the visual-enrichment policy over a slide sequence.
type Enricher struct {
	searcher  Searcher
	generator Generator
	cfg       types.ImageConfig
}

// NewEnricher wires the two acquisition backends. Either may be nil, in
// which case that path is skipped.
func NewEnricher(searcher Searcher, generator Generator, cfg types.ImageConfig) *Enricher {
	return &Enricher{searcher: searcher, generator: generator, cfg: cfg}
}

// Enrich fills ImagePath for every slide that carries an ImageQuery. Search
// runs first; when it yields nothing the generator is tried, with a single
// fixed-delay retry on a rate-limit failure. Per-slide failures are logged
// to w with the slide index and swallowed. The input slice is not mutated.
func (e *Enricher) Enrich(ctx context.Context, slides []types.Slide, w io.Writer) []types.Slide {
	out := make([]types.Slide, len(slides))
	copy(out, slides)

	for i := range out {
		s := &out[i]
		if s.ImageQuery == "" || s.ImagePath != "" {
			continue
		}

		if url := e.search(ctx, s.ImageQuery, i, w); url != "" {
			s.ImagePath = url
			continue
		}

		if url := e.generate(ctx, s.ImageQuery, i, w); url != "" {
			s.ImagePath = url
		}
	}

	return out
}

func (e *Enricher) search(ctx context.Context, query string, idx int, w io.Writer) string {
	if e.searcher == nil || !e.cfg.EnableSearch {
		return ""
	}
	urls, err := e.searcher.Search(ctx, query)
	if err != nil {
		fmt.Fprintf(w, "slide %d: image search failed: %v\n", idx+1, err)
		return ""
	}
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

func (e *Enricher) generate(ctx context.Context, prompt string, idx int, w io.Writer) string {
	if e.generator == nil {
		return ""
	}

	url, err := e.generator.Generate(ctx, prompt)
	if err == nil {
		return url
	}

	if !errors.Is(err, ErrRateLimited) {
		fmt.Fprintf(w, "slide %d: image generation failed: %v\n", idx+1, err)
		return ""
	}

	// One retry, fixed delay, rate-limit failures only.
	fmt.Fprintf(w, "slide %d: image generation rate limited, retrying once\n", idx+1)
	select {
	case <-ctx.Done():
		return ""
	case <-time.After(retryDelay(e.cfg)):
	}

	url, err = e.generator.Generate(ctx, prompt)
	if err != nil {
		fmt.Fprintf(w, "slide %d: image generation failed after retry: %v\n", idx+1, err)
		return ""
	}
	return url
}
