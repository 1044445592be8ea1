// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"

	"github.com/pdiddy/deck-engine/internal/checkpoint"
	"github.com/pdiddy/deck-engine/internal/imagery"
	"github.com/pdiddy/deck-engine/internal/pipeline"
	"github.com/pdiddy/deck-engine/internal/provider"
	"github.com/pdiddy/deck-engine/internal/render"
)

// buildController wires the checkpoint store and all stage backends into a
// controller. The caller owns the returned store and must Close it.
func buildController(log io.Writer) (*pipeline.Controller, *checkpoint.Store, error) {
	cfg := pipelineConfig()

	store, err := checkpoint.Open(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	content, err := provider.NewOpenAIProvider(cfg.Provider)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	// The generator constructor returns a typed nil when no key is set;
	// keep the interface value nil too so the enricher skips that path.
	var generator imagery.Generator
	if g := imagery.NewOpenAIGenerator(cfg.Image); g != nil {
		generator = g
	}
	enricher := imagery.NewEnricher(imagery.NewUnsplashSearcher(cfg.Image), generator, cfg.Image)

	engine := render.NewEngine(cfg.Render)

	return pipeline.New(store, content, enricher, engine, cfg.Render.Layout, log), store, nil
}
