// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"github.com/pdiddy/deck-engine/internal/pptx"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// layoutIndex is the static mapping from layout tags to template indices.
// The default tag is deliberately absent: it routes through the policy's
// default index, as does every unknown tag.
var layoutIndex = map[types.LayoutType]int{
	types.LayoutTitleSlide:     0,
	types.LayoutTitleContent:   1,
	types.LayoutSectionHeader:  2,
	types.LayoutTwoColumn:      3,
	types.LayoutComparison:     4,
	types.LayoutTitleOnly:      5,
	types.LayoutBlank:          6,
	types.LayoutContentCaption: 7,
	types.LayoutPictureCaption: 8,
}

// ResolveLayout maps a layout tag to a template index. Resolution is total:
// tags outside the table, including arbitrary junk values, resolve to the
// policy's default index, and the result is always a valid template index.
func ResolveLayout(t types.LayoutType, policy types.LayoutPolicy) int {
	if idx, ok := layoutIndex[t]; ok {
		return idx
	}
	idx := policy.DefaultLayoutIndex
	if idx < 0 || idx >= pptx.TemplateCount() {
		idx = 1
	}
	return idx
}
