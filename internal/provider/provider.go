// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider defines the content-generation boundary: opaque
// generative backends that return strictly validated outlines, slides, and
// image-query refinements. Loose model output is repaired deterministically
// at this boundary; the repair rules are part of the contract.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/deck-engine/pkg/types"
)

// ContentProvider turns a topic or outline into structured deck content.
// Implementations must be safe for use from independent sessions.
type ContentProvider interface {
	// GenerateOutline plans the deck: title plus ordered chapter list.
	GenerateOutline(ctx context.Context, inputText string) (types.Outline, error)

	// GenerateSlides expands an outline into one slide per chapter. Slide
	// titles may come back empty or layouts unknown; callers run RepairSlides
	// before trusting the result.
	GenerateSlides(ctx context.Context, outline types.Outline) ([]types.Slide, error)

	// RefineImageQueries returns improved search keywords keyed by
	// zero-based slide index. Indices outside the slide range are ignored
	// by the caller.
	RefineImageQueries(ctx context.Context, slides []types.Slide) (map[int]string, error)
}

// ValidateOutline rejects outlines that cannot drive the pipeline.
func ValidateOutline(o types.Outline) error {
	if strings.TrimSpace(o.Title) == "" {
		return fmt.Errorf("outline has no title")
	}
	if len(o.Chapters) == 0 {
		return fmt.Errorf("outline has no chapters")
	}
	return nil
}

// RepairSlides normalizes generated or human-edited slides and returns the
// repaired sequence:
//
//   - an empty title becomes the corresponding chapter name, or a positional
//     placeholder when chapters run out
//   - a layout tag outside the closed set becomes title_content
//   - image queries are cleared for layouts outside the picture-bearing set,
//     and a title_slide cover additionally loses its query
//
// Slides map to chapters 1:1; when the sequence opens with a title_slide
// cover, content slides shift by one against the chapter list. The input
// slice is not mutated.
func RepairSlides(slides []types.Slide, outline types.Outline, policy types.LayoutPolicy) []types.Slide {
	repaired := make([]types.Slide, len(slides))
	copy(repaired, slides)

	hasCover := len(repaired) > 0 && repaired[0].LayoutType == types.LayoutTitleSlide

	for i := range repaired {
		s := &repaired[i]

		if hasCover && i == 0 {
			s.ImageQuery = ""
			if strings.TrimSpace(s.Title) == "" {
				s.Title = outline.Title
			}
			continue
		}

		if strings.TrimSpace(s.Title) == "" {
			ch := i
			if hasCover {
				ch = i - 1
			}
			if ch < len(outline.Chapters) {
				s.Title = outline.Chapters[ch]
			} else {
				s.Title = fmt.Sprintf("Slide %d", i+1)
			}
		}

		if !types.ValidLayouts[s.LayoutType] {
			s.LayoutType = types.LayoutTitleContent
		}

		if !policy.AllowsPicture(s.LayoutType) {
			s.ImageQuery = ""
		}
	}

	return repaired
}
