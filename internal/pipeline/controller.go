// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives the presentation workflow: a fixed stage order
// with two interrupt points where control returns to the caller for human
// edits. Every stage boundary and every applied edit is checkpointed, so a
// session survives suspension of any length and resumes from its log.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/deck-engine/internal/checkpoint"
	"github.com/pdiddy/deck-engine/internal/docpipe"
	"github.com/pdiddy/deck-engine/internal/imagery"
	"github.com/pdiddy/deck-engine/internal/provider"
	"github.com/pdiddy/deck-engine/internal/render"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// Controller owns one pipeline configuration and serves any number of
// independent sessions over a shared checkpoint store.
type Controller struct {
	store    *checkpoint.Store
	content  provider.ContentProvider
	enricher *imagery.Enricher
	engine   *render.Engine
	layout   types.LayoutPolicy
	log      io.Writer
}

// New wires a controller. All collaborators are injected; there is no
// ambient provider selection.
func New(store *checkpoint.Store, content provider.ContentProvider, enricher *imagery.Enricher, engine *render.Engine, layout types.LayoutPolicy, log io.Writer) *Controller {
	if len(layout.PictureLayouts) == 0 && layout.DefaultLayoutIndex == 0 {
		layout = types.DefaultLayoutPolicy()
	}
	if log == nil {
		log = io.Discard
	}
	return &Controller{
		store:    store,
		content:  content,
		enricher: enricher,
		engine:   engine,
		layout:   layout,
		log:      log,
	}
}

// StartResult is the outcome of Start: the new session id and the outline
// awaiting review.
type StartResult struct {
	SessionID string
	Outline   types.Outline
}

// RenderResult is the outcome of ResumeAfterDetails.
type RenderResult struct {
	ArtifactPath string
	Preview      string
}

// Start validates the input, creates a session, runs the planning stage
// synchronously, and suspends awaiting outline review. Reference files are
// extracted and appended to the prompt. A planning failure is recorded on
// the session and returned as an error; the session id remains valid for
// GetState.
func (c *Controller) Start(ctx context.Context, inputText string, inputFiles []string) (StartResult, error) {
	combined := inputText + docpipe.ExtractAll(inputFiles, c.log)
	if strings.TrimSpace(combined) == "" {
		return StartResult{}, &types.InputError{Reason: "no input text provided"}
	}

	id := uuid.NewString()
	if err := c.store.CreateSession(ctx, id); err != nil {
		return StartResult{}, err
	}

	initial := types.State{
		InputText:   combined,
		InputFiles:  inputFiles,
		CurrentStep: types.StepStart,
	}

	state := c.planStage(ctx, initial)
	if _, err := c.store.Append(ctx, id, TagPlanner, state); err != nil {
		return StartResult{}, err
	}

	if state.Error != "" {
		return StartResult{SessionID: id}, &types.ProviderError{Stage: TagPlanner, Err: errors.New(state.Error)}
	}

	fmt.Fprintf(c.log, "session %s: outline planned (%d chapters), awaiting review\n", id, len(state.Outline.Chapters))
	return StartResult{SessionID: id, Outline: *state.Outline}, nil
}

// ResumeAfterOutline applies the reviewed outline as the planning stage's
// output, then runs content expansion and image advisory, suspending again
// before enrichment. The edited outline is checkpointed under the planner
// tag, so downstream stages see it exactly as if the planner had produced
// it.
func (c *Controller) ResumeAfterOutline(ctx context.Context, sessionID string, outline types.Outline) ([]types.Slide, error) {
	if err := c.checkResumable(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := provider.ValidateOutline(outline); err != nil {
		return nil, &types.InputError{Reason: err.Error()}
	}

	entry, err := c.store.ApplyAsStage(ctx, sessionID, TagPlanner, func(s types.State) types.State {
		s.Outline = &outline
		s.IsApproved = true
		s.Error = ""
		s.CurrentStep = types.StepContentGen
		return s
	})
	if err != nil {
		return nil, c.wrapStoreErr(sessionID, err)
	}

	state := c.expandStage(ctx, entry.State)
	if _, err := c.store.Append(ctx, sessionID, TagGenerator, state); err != nil {
		return nil, err
	}
	if state.Error != "" {
		return nil, &types.ProviderError{Stage: TagGenerator, Err: errors.New(state.Error)}
	}

	state = c.adviseStage(ctx, state)
	if _, err := c.store.Append(ctx, sessionID, TagImageAdvisor, state); err != nil {
		return nil, err
	}
	if state.Error != "" {
		return nil, &types.ProviderError{Stage: TagImageAdvisor, Err: errors.New(state.Error)}
	}

	fmt.Fprintf(c.log, "session %s: %d slides drafted, awaiting review\n", sessionID, len(state.Slides))
	return state.Slides, nil
}

// ResumeAfterDetails applies the reviewed slides as the advisory stage's
// output, runs visual enrichment and rendering, and returns the artifact
// path with a markdown preview of the final deck.
func (c *Controller) ResumeAfterDetails(ctx context.Context, sessionID string, slides []types.Slide) (RenderResult, error) {
	if err := c.checkResumable(ctx, sessionID); err != nil {
		return RenderResult{}, err
	}

	entry, err := c.store.ApplyAsStage(ctx, sessionID, TagImageAdvisor, func(s types.State) types.State {
		if s.Outline != nil {
			slides = provider.RepairSlides(slides, *s.Outline, c.layout)
		}
		s.Slides = slides
		s.IsApproved = true
		s.Error = ""
		s.CurrentStep = types.StepImageSearching
		return s
	})
	if err != nil {
		return RenderResult{}, c.wrapStoreErr(sessionID, err)
	}

	state := c.enrichStage(ctx, entry.State)
	if _, err := c.store.Append(ctx, sessionID, TagVisualAgent, state); err != nil {
		return RenderResult{}, err
	}

	state = c.renderStage(sessionID)(ctx, state)
	if _, err := c.store.Append(ctx, sessionID, TagRenderer, state); err != nil {
		return RenderResult{}, err
	}
	if state.Error != "" {
		return RenderResult{}, &types.AssemblyError{Reason: state.Error}
	}

	fmt.Fprintf(c.log, "session %s: artifact written to %s\n", sessionID, state.GeneratedFile)
	return RenderResult{
		ArtifactPath: state.GeneratedFile,
		Preview:      render.BuildPreview(state),
	}, nil
}

// GetState returns the latest checkpoint's state unmodified.
func (c *Controller) GetState(ctx context.Context, sessionID string) (types.State, error) {
	entry, err := c.store.Latest(ctx, sessionID)
	if err != nil {
		return types.State{}, c.wrapStoreErr(sessionID, err)
	}
	return entry.State, nil
}

// checkResumable rejects resumes against unknown sessions and sessions in
// the absorbing error state. A completed session stays resumable: resuming
// it forks the append-only log again, and with an identical payload the
// replay is deterministic and content-equivalent.
func (c *Controller) checkResumable(ctx context.Context, sessionID string) error {
	entry, err := c.store.Latest(ctx, sessionID)
	if err != nil {
		return c.wrapStoreErr(sessionID, err)
	}
	if entry.State.Error != "" {
		return &types.StateError{SessionID: sessionID, Reason: "session failed: " + entry.State.Error}
	}
	return nil
}

func (c *Controller) wrapStoreErr(sessionID string, err error) error {
	if errors.Is(err, checkpoint.ErrNoSession) {
		return &types.StateError{SessionID: sessionID, Reason: "unknown session"}
	}
	if errors.Is(err, checkpoint.ErrNoStage) {
		return &types.StateError{SessionID: sessionID, Reason: "session has not reached this interrupt point"}
	}
	return err
}
