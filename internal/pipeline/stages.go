// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"github.com/pdiddy/deck-engine/internal/provider"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// StageFunc is the stage handler contract: a pure function from state to
// replacement state. On success the handler advances CurrentStep; on
// failure it sets Error and leaves CurrentStep alone, which the controller
// recognizes as terminal. Handlers never panic across the session boundary
// and touch nothing outside the state except their declared collaborators.
type StageFunc func(ctx context.Context, state types.State) types.State

// Checkpoint tags, one per stage.
const (
	TagPlanner      = "planner"
	TagGenerator    = "generator"
	TagImageAdvisor = "image_advisor"
	TagVisualAgent  = "visual_agent"
	TagRenderer     = "renderer"
)

// planStage generates the outline from the input text.
func (c *Controller) planStage(ctx context.Context, state types.State) types.State {
	out := state.Clone()

	outline, err := c.content.GenerateOutline(ctx, state.InputText)
	if err != nil {
		out.Error = fmt.Sprintf("%s: %v", TagPlanner, err)
		return out
	}

	out.Outline = &outline
	out.CurrentStep = types.StepContentGen
	return out
}

// expandStage writes one slide per outline chapter and applies the repair
// rules to the provider's output.
func (c *Controller) expandStage(ctx context.Context, state types.State) types.State {
	out := state.Clone()

	if state.Outline == nil {
		out.Error = fmt.Sprintf("%s: no outline to expand", TagGenerator)
		return out
	}

	slides, err := c.content.GenerateSlides(ctx, *state.Outline)
	if err != nil {
		out.Error = fmt.Sprintf("%s: %v", TagGenerator, err)
		return out
	}

	out.Slides = provider.RepairSlides(slides, *state.Outline, c.layout)
	out.CurrentStep = types.StepImageAdvisory
	return out
}

// adviseStage refines image queries for picture-bearing slides and enforces
// the query invariant before the suspension point.
func (c *Controller) adviseStage(ctx context.Context, state types.State) types.State {
	out := state.Clone()

	if len(state.Slides) == 0 {
		out.CurrentStep = types.StepImageSearching
		return out
	}

	refined, err := c.content.RefineImageQueries(ctx, state.Slides)
	if err != nil {
		out.Error = fmt.Sprintf("%s: %v", TagImageAdvisor, err)
		return out
	}

	for idx, query := range refined {
		if idx < 0 || idx >= len(out.Slides) {
			continue
		}
		if c.layout.AllowsPicture(out.Slides[idx].LayoutType) {
			out.Slides[idx].ImageQuery = query
		}
	}

	// Invariant: only picture-bearing layouts carry a query past this stage.
	for i := range out.Slides {
		if !c.layout.AllowsPicture(out.Slides[i].LayoutType) {
			out.Slides[i].ImageQuery = ""
		}
	}

	out.CurrentStep = types.StepImageSearching
	return out
}

// enrichStage acquires images for slides with queries. It cannot fail the
// session; individual failures degrade the slide.
func (c *Controller) enrichStage(ctx context.Context, state types.State) types.State {
	out := state.Clone()
	out.Slides = c.enricher.Enrich(ctx, state.Slides, c.log)
	out.CurrentStep = types.StepFinalRender
	return out
}

// renderStage assembles the artifact. The session id salts the artifact
// name, so the stage is built per session.
func (c *Controller) renderStage(sessionID string) StageFunc {
	return func(ctx context.Context, state types.State) types.State {
		out := state.Clone()

		path, err := c.engine.Generate(ctx, state, sessionID, c.log)
		if err != nil {
			out.Error = fmt.Sprintf("%s: %v", TagRenderer, err)
			return out
		}

		out.GeneratedFile = path
		out.CurrentStep = types.StepCompleted
		return out
	}
}
