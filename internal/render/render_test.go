// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/deck-engine/pkg/types"
)

func TestArtifactName(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		sessionID string
		want      string
	}{
		{
			name:      "strips punctuation keeps spaces and underscores",
			title:     "AI: The Future, Now! (2026)_v2",
			sessionID: "abcdef1234567890",
			want:      "AI The Future Now 2026_v2-abcdef12.pptx",
		},
		{
			name:      "empty title falls back",
			title:     "!!!",
			sessionID: "abcdef1234567890",
			want:      "presentation-abcdef12.pptx",
		},
		{
			name:      "non-latin letters survive",
			title:     "技术分享",
			sessionID: "abcdef1234567890",
			want:      "技术分享-abcdef12.pptx",
		},
		{
			name:      "trailing spaces trimmed",
			title:     "Deck ?",
			sessionID: "abcdef1234567890",
			want:      "Deck-abcdef12.pptx",
		},
		{
			name:      "short session id used whole",
			title:     "Deck",
			sessionID: "ab",
			want:      "Deck-ab.pptx",
		},
		{
			name:  "no session id no suffix",
			title: "Deck",
			want:  "Deck.pptx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, artifactName(tt.title, tt.sessionID))
		})
	}
}

func TestSplitCover(t *testing.T) {
	cover := types.Slide{Title: "Cover", LayoutType: types.LayoutTitleSlide}
	content := types.Slide{Title: "Body", LayoutType: types.LayoutTitleContent}

	c, rest := splitCover([]types.Slide{cover, content})
	require.NotNil(t, c)
	assert.Equal(t, "Cover", c.Title)
	require.Len(t, rest, 1)
	assert.Equal(t, "Body", rest[0].Title)

	c, rest = splitCover([]types.Slide{content})
	assert.Nil(t, c)
	assert.Len(t, rest, 1)

	c, rest = splitCover(nil)
	assert.Nil(t, c)
	assert.Empty(t, rest)
}

func TestGenerateWritesArtifact(t *testing.T) {
	dir := t.TempDir()

	imgPath := filepath.Join(dir, "chart.png")
	require.NoError(t, os.WriteFile(imgPath, encodePNG(t, 400, 300), 0o644))

	engine := NewEngine(types.RenderConfig{OutputDir: filepath.Join(dir, "out")})

	state := types.State{
		Outline: &types.Outline{Title: "Solar Basics", Chapters: []string{"Panels", "Inverters"}},
		Slides: []types.Slide{
			{Title: "Solar Basics", LayoutType: types.LayoutTitleSlide},
			{Title: "Panels", BulletPoints: []string{"Mono", "Poly"}, LayoutType: types.LayoutTitleContent, ImagePath: imgPath},
			{Title: "Inverters", BulletPoints: []string{"String", "Micro"}, LayoutType: types.LayoutPictureCaption, ImagePath: imgPath},
		},
	}

	var log bytes.Buffer
	path, err := engine.Generate(context.Background(), state, "sess1234abcd", &log)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "Solar Basics-sess1234.pptx"), path)

	names := zipNames(t, path)
	assert.Contains(t, names, "[Content_Types].xml")
	assert.Contains(t, names, "ppt/presentation.xml")
	assert.Contains(t, names, "ppt/slides/slide1.xml")
	assert.Contains(t, names, "ppt/slides/slide2.xml")
	assert.Contains(t, names, "ppt/slides/slide3.xml")
	assert.Contains(t, names, "ppt/media/image1.png")
	assert.Contains(t, names, "ppt/media/image2.png")
}

func TestGenerateSynthesizesCover(t *testing.T) {
	dir := t.TempDir()
	engine := NewEngine(types.RenderConfig{OutputDir: dir})

	// No title_slide in the sequence: the outline title becomes the cover and
	// every slide stays content.
	state := types.State{
		Outline: &types.Outline{Title: "Wind", Chapters: []string{"Turbines"}},
		Slides: []types.Slide{
			{Title: "Turbines", LayoutType: types.LayoutTitleContent},
		},
	}

	path, err := engine.Generate(context.Background(), state, "s1", io.Discard)
	require.NoError(t, err)

	// Cover plus one content slide.
	names := zipNames(t, path)
	assert.Contains(t, names, "ppt/slides/slide2.xml")
	assert.NotContains(t, names, "ppt/slides/slide3.xml")
}

func TestGeneratePlaceholderImageSkipped(t *testing.T) {
	dir := t.TempDir()
	engine := NewEngine(types.RenderConfig{OutputDir: dir})

	state := types.State{
		Outline: &types.Outline{Title: "T", Chapters: []string{"C"}},
		Slides: []types.Slide{
			{Title: "C", LayoutType: types.LayoutPictureCaption, ImagePath: "https://placehold.co/600x400"},
		},
	}

	var log bytes.Buffer
	path, err := engine.Generate(context.Background(), state, "s1", &log)
	require.NoError(t, err)

	for _, n := range zipNames(t, path) {
		if strings.HasPrefix(n, "ppt/media/") {
			t.Errorf("placeholder image must not be embedded, found %s", n)
		}
	}
	assert.Contains(t, log.String(), "placeholder")
}

func TestGenerateImageFailureDegradesSlide(t *testing.T) {
	dir := t.TempDir()
	engine := NewEngine(types.RenderConfig{OutputDir: dir})

	state := types.State{
		Outline: &types.Outline{Title: "T", Chapters: []string{"C"}},
		Slides: []types.Slide{
			{Title: "C", LayoutType: types.LayoutPictureCaption, ImagePath: filepath.Join(dir, "missing.png")},
		},
	}

	var log bytes.Buffer
	path, err := engine.Generate(context.Background(), state, "s1", &log)
	require.NoError(t, err, "a broken image must not fail the build")
	assert.FileExists(t, path)
	assert.Contains(t, log.String(), "image fetch failed")
}

func TestGenerateNoOutline(t *testing.T) {
	engine := NewEngine(types.RenderConfig{OutputDir: t.TempDir()})

	_, err := engine.Generate(context.Background(), types.State{}, "s1", io.Discard)
	var asmErr *types.AssemblyError
	require.ErrorAs(t, err, &asmErr)
}

func TestBuildPreview(t *testing.T) {
	state := types.State{
		Outline: &types.Outline{Title: "Solar", Chapters: []string{"Panels"}},
		Slides: []types.Slide{
			{Title: "Solar", BulletPoints: []string{"intro"}, LayoutType: types.LayoutTitleSlide},
			{Title: "Panels", BulletPoints: []string{"Mono", "Poly"}, LayoutType: types.LayoutTitleContent, ImageQuery: "solar panel", ImagePath: "https://example.com/p.jpg"},
		},
	}

	md := BuildPreview(state)
	assert.Contains(t, md, "### Slide 1: Solar (cover)")
	assert.Contains(t, md, "### Slide 2: Panels")
	assert.Contains(t, md, "- Mono")
	assert.Contains(t, md, "![image](https://example.com/p.jpg)")
	assert.Contains(t, md, "`solar panel`")

	html, err := PreviewHTML(md)
	require.NoError(t, err)
	assert.Contains(t, html, "<h3>")
	assert.Contains(t, html, "<li>Mono</li>")
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}
