// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"fmt"
	"strings"

	"github.com/pdiddy/deck-engine/pkg/types"
)

const plannerSystemPrompt = `You are a presentation planner. Given a topic
or request, produce a concise deck outline as JSON:
{"title": "...", "chapters": ["...", "..."]}
The title is the presentation title; chapters are the main content pages in
presentation order. Reply with JSON only.`

const generatorSystemPrompt = `You are a presentation content writer. For
each outline chapter write exactly one slide with a non-empty title, 3-5
short bullet points, an optional English image search keyword, and a layout
tag from this set: title_slide, title_content, section_header, two_column,
comparison, title_only, blank, content_caption, picture_caption, default.
Reply as JSON: {"slides": [{"title": "...", "bullet_points": ["..."],
"image_query": "...", "layout_type": "..."}]}. Keep slides in chapter order
and reply with JSON only.`

const advisorSystemPrompt = `You are a visual advisor for presentations.
For each slide you are shown, propose one improved English image search
keyword that would find a fitting photo. Reply as JSON:
{"refinements": [{"index": 1, "refined_query": "..."}]} where index is the
one-based slide number. Reply with JSON only.`

// generatorUserPrompt lays out the approved outline for slide expansion.
func generatorUserPrompt(outline types.Outline) string {
	return fmt.Sprintf("Presentation title: %s\nOutline chapters: %s\n\nWrite one slide per chapter.",
		outline.Title, strings.Join(outline.Chapters, ", "))
}

// advisorUserPrompt lists the slides with their current queries.
func advisorUserPrompt(slides []types.Slide) string {
	var b strings.Builder
	b.WriteString("Here are the slides of a presentation. Provide an optimized English image search keyword for each.\n")
	for i, s := range slides {
		fmt.Fprintf(&b, "\nSlide %d: %s\nPoints: %s\nCurrent query: %s\n",
			i+1, s.Title, strings.Join(s.BulletPoints, ", "), s.ImageQuery)
	}
	return b.String()
}
