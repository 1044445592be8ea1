// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/deck-engine/internal/checkpoint"
	"github.com/pdiddy/deck-engine/internal/imagery"
	"github.com/pdiddy/deck-engine/internal/render"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// mockProvider scripts the three content calls.
type mockProvider struct {
	outline    types.Outline
	outlineErr error
	slides     []types.Slide
	slidesErr  error
	refined    map[int]string
	refineErr  error
}

func (m *mockProvider) GenerateOutline(ctx context.Context, inputText string) (types.Outline, error) {
	return m.outline, m.outlineErr
}

func (m *mockProvider) GenerateSlides(ctx context.Context, outline types.Outline) ([]types.Slide, error) {
	return m.slides, m.slidesErr
}

func (m *mockProvider) RefineImageQueries(ctx context.Context, slides []types.Slide) (map[int]string, error) {
	return m.refined, m.refineErr
}

// fileSearcher resolves every query to a local image file, keeping the
// render stage off the network.
type fileSearcher struct {
	path string
}

func (f *fileSearcher) Search(ctx context.Context, query string) ([]string, error) {
	return []string{f.path}, nil
}

type testRig struct {
	controller *Controller
	store      *checkpoint.Store
	provider   *mockProvider
	outputDir  string
	log        *bytes.Buffer
}

func newRig(t *testing.T) *testRig {
	t.Helper()
	dir := t.TempDir()

	store, err := checkpoint.Open(types.StoreConfig{Path: filepath.Join(dir, "cp.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	imgPath := filepath.Join(dir, "stock.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(imgPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	prov := &mockProvider{
		outline: types.Outline{Title: "Ocean Cleanup", Chapters: []string{"Problem", "Technology", "Impact"}},
		slides: []types.Slide{
			{Title: "Problem", BulletPoints: []string{"Plastic gyres"}, LayoutType: types.LayoutTitleContent},
			{Title: "Technology", BulletPoints: []string{"Passive booms"}, LayoutType: types.LayoutPictureCaption, ImageQuery: "boom at sea"},
			{Title: "Impact", BulletPoints: []string{"Tons removed"}, LayoutType: types.LayoutSectionHeader},
		},
		refined: map[int]string{1: "ocean cleanup boom aerial"},
	}

	enricher := imagery.NewEnricher(&fileSearcher{path: imgPath}, nil, types.ImageConfig{EnableSearch: true})

	outputDir := filepath.Join(dir, "out")
	engine := render.NewEngine(types.RenderConfig{OutputDir: outputDir})

	log := &bytes.Buffer{}
	controller := New(store, prov, enricher, engine, types.DefaultLayoutPolicy(), log)

	return &testRig{controller: controller, store: store, provider: prov, outputDir: outputDir, log: log}
}

func TestStartPlansAndSuspends(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	result, err := rig.controller.Start(ctx, "clean the oceans", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.SessionID == "" {
		t.Fatal("missing session id")
	}
	if result.Outline.Title != "Ocean Cleanup" || len(result.Outline.Chapters) != 3 {
		t.Errorf("outline = %+v", result.Outline)
	}

	state, err := rig.controller.GetState(ctx, result.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if state.CurrentStep != types.StepContentGen {
		t.Errorf("step = %q, want %q", state.CurrentStep, types.StepContentGen)
	}
	if state.IsApproved {
		t.Error("outline must not be pre-approved")
	}

	entries, err := rig.store.History(ctx, result.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Stage != TagPlanner {
		t.Errorf("history = %+v, want single planner checkpoint", entries)
	}
}

func TestStartRejectsEmptyInput(t *testing.T) {
	rig := newRig(t)

	_, err := rig.controller.Start(context.Background(), "   ", nil)
	var inputErr *types.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("err = %v, want InputError", err)
	}
}

func TestStartPlannerFailureIsRecorded(t *testing.T) {
	rig := newRig(t)
	rig.provider.outlineErr = errors.New("model unavailable")
	ctx := context.Background()

	result, err := rig.controller.Start(ctx, "topic", nil)
	var provErr *types.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
	if result.SessionID == "" {
		t.Fatal("failed start must still return the session id")
	}

	// The failure is inspectable and the session is dead.
	state, err := rig.controller.GetState(ctx, result.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if state.Error == "" {
		t.Error("state error not recorded")
	}
	if state.CurrentStep != types.StepStart {
		t.Errorf("step advanced to %q on failure", state.CurrentStep)
	}

	_, err = rig.controller.ResumeAfterOutline(ctx, result.SessionID, types.Outline{Title: "x", Chapters: []string{"y"}})
	var stateErr *types.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("resume of failed session: err = %v, want StateError", err)
	}
}

func TestResumeAfterOutlineAppliesEdits(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	start, err := rig.controller.Start(ctx, "topic", nil)
	if err != nil {
		t.Fatal(err)
	}

	edited := types.Outline{Title: "Ocean Cleanup 2030", Chapters: []string{"Problem", "Technology", "Impact"}}
	slides, err := rig.controller.ResumeAfterOutline(ctx, start.SessionID, edited)
	if err != nil {
		t.Fatal(err)
	}
	if len(slides) != 3 {
		t.Fatalf("len(slides) = %d, want one per chapter", len(slides))
	}

	// The advisor refinement lands on the picture-bearing slide only.
	if slides[1].ImageQuery != "ocean cleanup boom aerial" {
		t.Errorf("slide 1 query = %q, want refined", slides[1].ImageQuery)
	}
	if slides[2].ImageQuery != "" {
		t.Errorf("slide 2 query = %q, want empty for section_header", slides[2].ImageQuery)
	}

	// The edit was recorded as the planner's output.
	entry, err := rig.store.LatestByStage(ctx, start.SessionID, TagPlanner)
	if err != nil {
		t.Fatal(err)
	}
	if entry.State.Outline.Title != "Ocean Cleanup 2030" {
		t.Errorf("planner checkpoint title = %q, want edited", entry.State.Outline.Title)
	}
	if !entry.State.IsApproved {
		t.Error("edited outline should be marked approved")
	}

	state, err := rig.controller.GetState(ctx, start.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if state.CurrentStep != types.StepImageSearching {
		t.Errorf("step = %q, want %q", state.CurrentStep, types.StepImageSearching)
	}
}

func TestResumeAfterOutlineValidation(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	start, err := rig.controller.Start(ctx, "topic", nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = rig.controller.ResumeAfterOutline(ctx, start.SessionID, types.Outline{Title: " ", Chapters: nil})
	var inputErr *types.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("err = %v, want InputError", err)
	}
}

func TestResumeUnknownSession(t *testing.T) {
	rig := newRig(t)

	_, err := rig.controller.ResumeAfterOutline(context.Background(), "no-such-id", types.Outline{Title: "x", Chapters: []string{"y"}})
	var stateErr *types.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("err = %v, want StateError", err)
	}
}

func TestResumeAfterDetailsBeforeOutline(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	start, err := rig.controller.Start(ctx, "topic", nil)
	if err != nil {
		t.Fatal(err)
	}

	// The session is suspended at outline review; the second interrupt point
	// does not exist yet.
	_, err = rig.controller.ResumeAfterDetails(ctx, start.SessionID, nil)
	var stateErr *types.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("err = %v, want StateError", err)
	}
}

func runToDetails(t *testing.T, rig *testRig) (string, []types.Slide) {
	t.Helper()
	ctx := context.Background()

	start, err := rig.controller.Start(ctx, "topic", nil)
	if err != nil {
		t.Fatal(err)
	}
	slides, err := rig.controller.ResumeAfterOutline(ctx, start.SessionID, start.Outline)
	if err != nil {
		t.Fatal(err)
	}
	return start.SessionID, slides
}

func TestResumeAfterDetailsRendersDeck(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	sessionID, slides := runToDetails(t, rig)

	result, err := rig.controller.ResumeAfterDetails(ctx, sessionID, slides)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(result.ArtifactPath); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if result.Preview == "" {
		t.Error("missing preview")
	}

	state, err := rig.controller.GetState(ctx, sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if state.CurrentStep != types.StepCompleted {
		t.Errorf("step = %q, want completed", state.CurrentStep)
	}
	if state.GeneratedFile != result.ArtifactPath {
		t.Errorf("state artifact = %q, result = %q", state.GeneratedFile, result.ArtifactPath)
	}
	// Enrichment resolved the picture slide's query.
	if state.Slides[1].ImagePath == "" {
		t.Error("picture slide was not enriched")
	}

	entries, err := rig.store.History(ctx, sessionID)
	if err != nil {
		t.Fatal(err)
	}
	// Start, the outline edit fork, the two provider stages, the slide edit
	// fork, then enrichment and render.
	wantTags := []string{TagPlanner, TagPlanner, TagGenerator, TagImageAdvisor, TagImageAdvisor, TagVisualAgent, TagRenderer}
	if len(entries) != len(wantTags) {
		t.Fatalf("history length = %d, want %d", len(entries), len(wantTags))
	}
	for i, e := range entries {
		if e.Stage != wantTags[i] {
			t.Errorf("history[%d] = %q, want %q", i, e.Stage, wantTags[i])
		}
	}
}

func TestResumeAfterDetailsEditsAreRepaired(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	sessionID, slides := runToDetails(t, rig)

	// Human edits with a junk layout and a stray query on a text-only slide.
	slides[0].LayoutType = "hero_banner"
	slides[2].ImageQuery = "should be cleared"
	result, err := rig.controller.ResumeAfterDetails(ctx, sessionID, slides)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(result.ArtifactPath); err != nil {
		t.Fatal(err)
	}

	state, err := rig.controller.GetState(ctx, sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if state.Slides[0].LayoutType != types.LayoutTitleContent {
		t.Errorf("layout = %q, want repaired to title_content", state.Slides[0].LayoutType)
	}
	if state.Slides[2].ImageQuery != "" {
		t.Errorf("query = %q, want cleared for section_header", state.Slides[2].ImageQuery)
	}
}

func TestResumeAfterDetailsIsIdempotent(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	sessionID, slides := runToDetails(t, rig)

	first, err := rig.controller.ResumeAfterDetails(ctx, sessionID, slides)
	if err != nil {
		t.Fatal(err)
	}
	second, err := rig.controller.ResumeAfterDetails(ctx, sessionID, slides)
	if err != nil {
		t.Fatalf("second resume with identical payload: %v", err)
	}

	if first.ArtifactPath != second.ArtifactPath {
		t.Errorf("artifact paths differ: %q vs %q", first.ArtifactPath, second.ArtifactPath)
	}
	if first.Preview != second.Preview {
		t.Error("previews differ between identical replays")
	}

	firstData, err := os.ReadFile(first.ArtifactPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(firstData) == 0 {
		t.Fatal("empty artifact")
	}
}

func TestGeneratorFailureIsAbsorbing(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	start, err := rig.controller.Start(ctx, "topic", nil)
	if err != nil {
		t.Fatal(err)
	}

	// Generator fails once; the failure is checkpointed.
	rig.provider.slidesErr = errors.New("timeout")
	_, err = rig.controller.ResumeAfterOutline(ctx, start.SessionID, start.Outline)
	var provErr *types.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("err = %v, want ProviderError", err)
	}

	state, err := rig.controller.GetState(ctx, start.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if state.Error == "" {
		t.Fatal("generator failure not recorded")
	}

	// The error state is absorbing.
	rig.provider.slidesErr = nil
	_, err = rig.controller.ResumeAfterOutline(ctx, start.SessionID, start.Outline)
	var stateErr *types.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("resume of failed session: err = %v, want StateError", err)
	}
}
