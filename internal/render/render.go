// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render is the document assembly engine: it maps a finalized
// session state onto indexed slide templates and emits the .pptx artifact.
// Layout resolution is total, the cover policy is fixed, and image failures
// degrade individual slides without aborting the build.
package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pdiddy/deck-engine/internal/pptx"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// Engine assembles presentation artifacts from session state.
type Engine struct {
	cfg     types.RenderConfig
	fetcher *fetcher
}

// NewEngine builds an engine. The output directory is created lazily on the
// first Generate call.
func NewEngine(cfg types.RenderConfig) *Engine {
	if len(cfg.Layout.PictureLayouts) == 0 && cfg.Layout.DefaultLayoutIndex == 0 {
		cfg.Layout = types.DefaultLayoutPolicy()
	}
	return &Engine{cfg: cfg, fetcher: newFetcher(cfg)}
}

// Generate renders the deck described by state and returns the artifact
// path. The session id salts the file name so identical titles from
// different sessions never collide. Per-slide image problems are written to
// w and swallowed; anything else aborts with an AssemblyError and leaves no
// partial file.
func (e *Engine) Generate(ctx context.Context, state types.State, sessionID string, w io.Writer) (string, error) {
	if state.Outline == nil {
		return "", &types.AssemblyError{Reason: "no outline in state"}
	}

	prs := pptx.New()

	cover, content := splitCover(state.Slides)

	if cover != nil {
		e.addCoverSlide(ctx, prs, cover.Title, cover.ImagePath, cover.BulletPoints, w)
	} else {
		coverImage := ""
		if len(state.Slides) > 0 {
			coverImage = state.Slides[0].ImagePath
		}
		e.addCoverSlide(ctx, prs, state.Outline.Title, coverImage, nil, w)
	}

	for i, slide := range content {
		e.addContentSlide(ctx, prs, slide, i, w)
	}

	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return "", &types.AssemblyError{Reason: "creating output directory", Err: err}
	}

	path := filepath.Join(e.cfg.OutputDir, artifactName(state.Outline.Title, sessionID))
	if err := prs.Save(path); err != nil {
		return "", &types.AssemblyError{Reason: "writing artifact", Err: err}
	}
	return path, nil
}

// splitCover applies the first half of the cover policy: when the sequence
// opens with a title_slide, that slide is the cover and the rest are
// content; otherwise there is no explicit cover and all slides are content.
func splitCover(slides []types.Slide) (*types.Slide, []types.Slide) {
	if len(slides) > 0 && slides[0].LayoutType == types.LayoutTitleSlide {
		return &slides[0], slides[1:]
	}
	return nil, slides
}

func (e *Engine) addCoverSlide(ctx context.Context, prs *pptx.Presentation, title, imagePath string, subtitlePoints []string, w io.Writer) {
	slide := prs.AddSlide(pptx.TemplateByIndex(0))
	slide.SetTitle(title)
	if len(subtitlePoints) > 0 {
		slide.SetSubtitle(strings.Join(subtitlePoints, " · "))
	}
	if imagePath != "" {
		// The cover template has no picture region; the image goes straight
		// to free placement.
		e.addImageFree(ctx, prs, slide, imagePath, 0, w)
	}
}

func (e *Engine) addContentSlide(ctx context.Context, prs *pptx.Presentation, data types.Slide, idx int, w io.Writer) {
	tpl := pptx.TemplateByIndex(ResolveLayout(data.LayoutType, e.cfg.Layout))
	slide := prs.AddSlide(tpl)
	slide.SetTitle(data.Title)
	slide.SetBullets(data.BulletPoints)

	if data.ImagePath != "" {
		e.addImage(ctx, prs, slide, data.ImagePath, idx+1, w)
	}
}

// addImage acquires the image and inserts it into the template's picture
// region when one exists, falling back to free placement otherwise.
func (e *Engine) addImage(ctx context.Context, prs *pptx.Presentation, slide *pptx.Slide, source string, idx int, w io.Writer) {
	data, ok := e.acquire(ctx, source, idx, w)
	if !ok {
		return
	}

	width, height, err := dimensions(data)
	if err != nil || width <= 0 || height <= 0 {
		fmt.Fprintf(w, "slide %d: cannot size image, skipping: %v\n", idx, err)
		return
	}

	region := freePlacementRegion(width, height)
	if slide.HasPictureRegion() {
		region = fitRegion(slide.PictureRegion(), width, height)
	}

	if err := prs.AddPicture(slide, data, region); err != nil {
		fmt.Fprintf(w, "slide %d: image insertion failed: %v\n", idx, err)
	}
}

// addImageFree always uses free placement, bypassing any picture region.
func (e *Engine) addImageFree(ctx context.Context, prs *pptx.Presentation, slide *pptx.Slide, source string, idx int, w io.Writer) {
	data, ok := e.acquire(ctx, source, idx, w)
	if !ok {
		return
	}
	width, height, err := dimensions(data)
	if err != nil || width <= 0 || height <= 0 {
		fmt.Fprintf(w, "slide %d: cannot size image, skipping: %v\n", idx, err)
		return
	}
	if err := prs.AddPicture(slide, data, freePlacementRegion(width, height)); err != nil {
		fmt.Fprintf(w, "slide %d: image insertion failed: %v\n", idx, err)
	}
}

// acquire resolves an image source to bytes. Placeholder-host URLs are
// skipped outright; fetch failures degrade the slide.
func (e *Engine) acquire(ctx context.Context, source string, idx int, w io.Writer) ([]byte, bool) {
	if e.fetcher.isPlaceholder(source) {
		fmt.Fprintf(w, "slide %d: skipping placeholder image %s\n", idx, source)
		return nil, false
	}
	data, err := e.fetcher.fetch(ctx, source)
	if err != nil {
		fmt.Fprintf(w, "slide %d: image fetch failed: %v\n", idx, err)
		return nil, false
	}
	return data, true
}

// artifactName builds the output file name: the title stripped to
// alphanumerics, spaces, and underscores, suffixed with the first eight
// characters of the session id. An empty sanitized title falls back to
// "presentation".
func artifactName(title, sessionID string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
			b.WriteRune(r)
		}
	}
	name := strings.TrimRight(b.String(), " ")
	if name == "" {
		name = "presentation"
	}

	sid := sessionID
	if len(sid) > 8 {
		sid = sid[:8]
	}
	if sid == "" {
		return name + ".pptx"
	}
	return fmt.Sprintf("%s-%s.pptx", name, sid)
}
