// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"testing"

	"github.com/pdiddy/deck-engine/internal/pptx"
	"github.com/pdiddy/deck-engine/pkg/types"
)

func TestResolveLayoutKnownTags(t *testing.T) {
	policy := types.DefaultLayoutPolicy()

	tests := []struct {
		tag  types.LayoutType
		want int
	}{
		{types.LayoutTitleSlide, 0},
		{types.LayoutTitleContent, 1},
		{types.LayoutSectionHeader, 2},
		{types.LayoutTwoColumn, 3},
		{types.LayoutComparison, 4},
		{types.LayoutTitleOnly, 5},
		{types.LayoutBlank, 6},
		{types.LayoutContentCaption, 7},
		{types.LayoutPictureCaption, 8},
	}

	for _, tt := range tests {
		if got := ResolveLayout(tt.tag, policy); got != tt.want {
			t.Errorf("ResolveLayout(%q) = %d, want %d", tt.tag, got, tt.want)
		}
	}
}

func TestResolveLayoutIsTotal(t *testing.T) {
	policy := types.DefaultLayoutPolicy()

	// The default tag and arbitrary junk both route to the policy default.
	for _, tag := range []types.LayoutType{types.LayoutDefault, "holographic", "", "TITLE_SLIDE"} {
		got := ResolveLayout(tag, policy)
		if got != policy.DefaultLayoutIndex {
			t.Errorf("ResolveLayout(%q) = %d, want default %d", tag, got, policy.DefaultLayoutIndex)
		}
		if got < 0 || got >= pptx.TemplateCount() {
			t.Errorf("ResolveLayout(%q) = %d, outside template range", tag, got)
		}
	}
}

func TestResolveLayoutClampsBadPolicyIndex(t *testing.T) {
	for _, idx := range []int{-1, 99} {
		policy := types.LayoutPolicy{DefaultLayoutIndex: idx}
		got := ResolveLayout(types.LayoutDefault, policy)
		if got != 1 {
			t.Errorf("ResolveLayout with policy index %d = %d, want clamp to 1", idx, got)
		}
	}
}
