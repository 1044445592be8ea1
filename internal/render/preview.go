// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/pdiddy/deck-engine/pkg/types"
)

// BuildPreview renders a markdown summary of the final deck: the cover
// followed by each content slide's bullets, image reference, and layout
// tag. The slide numbering matches the artifact.
func BuildPreview(state types.State) string {
	var b strings.Builder
	n := 1

	cover, content := splitCover(state.Slides)
	switch {
	case cover != nil:
		fmt.Fprintf(&b, "### Slide %d: %s (cover)\n", n, cover.Title)
		if len(cover.BulletPoints) > 0 {
			fmt.Fprintf(&b, "*%s*\n", strings.Join(cover.BulletPoints, " · "))
		}
		b.WriteString("\n---\n\n")
		n++
	case state.Outline != nil:
		fmt.Fprintf(&b, "### Slide %d: %s (cover)\n", n, state.Outline.Title)
		b.WriteString("\n**Chapters:**\n")
		for _, ch := range state.Outline.Chapters {
			fmt.Fprintf(&b, "- %s\n", ch)
		}
		b.WriteString("\n---\n\n")
		n++
	}

	for _, s := range content {
		fmt.Fprintf(&b, "### Slide %d: %s\n", n, s.Title)
		for _, point := range s.BulletPoints {
			fmt.Fprintf(&b, "- %s\n", point)
		}
		if s.ImagePath != "" {
			fmt.Fprintf(&b, "\n![image](%s)\n", s.ImagePath)
		}
		fmt.Fprintf(&b, "\n**Visual:** `%s` | **Layout:** `%s`\n\n---\n\n", s.ImageQuery, s.LayoutType)
		n++
	}

	return b.String()
}

// PreviewHTML converts a markdown preview to HTML.
func PreviewHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering preview: %w", err)
	}
	return buf.String(), nil
}
