// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pptx writes minimal PresentationML (.pptx) files: a ZIP archive
// of OOXML parts. It supports the indexed layout templates in template.go
// with title, subtitle, body, and picture regions, plus free-placed
// pictures at arbitrary canvas positions.
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Presentation accumulates slides and media before serialization.
type Presentation struct {
	slides []*Slide
	media  []mediaPart
}

// Slide is one deck page under construction.
type Slide struct {
	template Template
	title    string
	subtitle string
	bullets  []string
	pictures []placedPicture
}

type placedPicture struct {
	mediaIndex int
	ext        string
	region     Region
}

type mediaPart struct {
	data []byte
	ext  string
}

// New returns an empty presentation.
func New() *Presentation {
	return &Presentation{}
}

// AddSlide appends a slide using the given template and returns it for
// population.
func (p *Presentation) AddSlide(tpl Template) *Slide {
	s := &Slide{template: tpl}
	p.slides = append(p.slides, s)
	return s
}

// SlideCount returns the number of slides added so far.
func (p *Presentation) SlideCount() int {
	return len(p.slides)
}

// SetTitle fills the slide's title region. Text set on a template without a
// title region is dropped.
func (s *Slide) SetTitle(text string) {
	s.title = text
}

// SetSubtitle fills the subtitle region where the template defines one
// (the cover template).
func (s *Slide) SetSubtitle(text string) {
	s.subtitle = text
}

// SetBullets fills the body region with a flat bulleted list, replacing
// any default text. Order is preserved.
func (s *Slide) SetBullets(points []string) {
	s.bullets = append([]string(nil), points...)
}

// HasPictureRegion reports whether the slide's template defines a picture
// placeholder.
func (s *Slide) HasPictureRegion() bool {
	return s.template.Picture != nil
}

// PictureRegion returns the template's picture region. Valid only when
// HasPictureRegion is true.
func (s *Slide) PictureRegion() Region {
	return *s.template.Picture
}

// AddPicture embeds image data on the slide inside the given region. The
// image format must be one SniffFormat recognizes.
func (p *Presentation) AddPicture(s *Slide, data []byte, r Region) error {
	ext, _, ok := SniffFormat(data)
	if !ok {
		return fmt.Errorf("unrecognized image format")
	}
	p.media = append(p.media, mediaPart{data: data, ext: ext})
	s.pictures = append(s.pictures, placedPicture{mediaIndex: len(p.media) - 1, ext: ext, region: r})
	return nil
}

// SniffFormat detects a supported image format from magic bytes and returns
// the media extension and MIME content type.
func SniffFormat(data []byte) (ext, contentType string, ok bool) {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")):
		return "png", "image/png", true
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("\xff\xd8\xff")):
		return "jpeg", "image/jpeg", true
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "gif", "image/gif", true
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp", "image/webp", true
	case len(data) >= 2 && bytes.Equal(data[:2], []byte("BM")):
		return "bmp", "image/bmp", true
	}
	return "", "", false
}

// Save writes the .pptx to path via a temp file and rename, so a failed
// serialization never leaves a partial artifact behind.
func (p *Presentation) Save(path string) error {
	tmp, err := os.CreateTemp(dirOf(path), ".pptx-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := p.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming artifact: %w", err)
	}
	return nil
}

func dirOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return "."
}

// Write serializes the presentation as a ZIP archive to w.
func (p *Presentation) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", p.contentTypesXML()},
		{"_rels/.rels", rootRelsXML},
		{"ppt/presentation.xml", p.presentationXML()},
		{"ppt/_rels/presentation.xml.rels", p.presentationRelsXML()},
		{"ppt/theme/theme1.xml", themeXML},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
	}

	for i, s := range p.slides {
		n := i + 1
		parts = append(parts,
			struct{ name, content string }{fmt.Sprintf("ppt/slides/slide%d.xml", n), s.xml()},
			struct{ name, content string }{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), s.relsXML()},
		)
	}

	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("creating part %s: %w", part.name, err)
		}
		if _, err := io.WriteString(f, part.content); err != nil {
			return fmt.Errorf("writing part %s: %w", part.name, err)
		}
	}

	for i, m := range p.media {
		name := fmt.Sprintf("ppt/media/image%d.%s", i+1, m.ext)
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("creating media %s: %w", name, err)
		}
		if _, err := f.Write(m.data); err != nil {
			return fmt.Errorf("writing media %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

func (p *Presentation) contentTypesXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)

	seen := map[string]bool{}
	for _, m := range p.media {
		if seen[m.ext] {
			continue
		}
		seen[m.ext] = true
		_, ct, _ := SniffFormat(m.data)
		fmt.Fprintf(&b, `<Default Extension=%q ContentType=%q/>`, m.ext, ct)
	}

	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	for i := range p.slides {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func (p *Presentation) presentationXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := range p.slides {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+2)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="%d" cy="%d"/>`, SlideWidth, SlideHeight, SlideHeight, SlideWidth)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func (p *Presentation) presentationRelsXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	for i := range p.slides {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+2, i+1)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// xml renders the slide part: one shape per populated region plus placed
// pictures.
func (s *Slide) xml() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)

	shapeID := 2
	if s.template.Title != nil && s.title != "" {
		b.WriteString(textShape(shapeID, "Title", *s.template.Title, []paragraph{{text: s.title, size: 3600, bold: true}}))
		shapeID++
	}
	if s.template.Subtitle != nil && s.subtitle != "" {
		b.WriteString(textShape(shapeID, "Subtitle", *s.template.Subtitle, []paragraph{{text: s.subtitle, size: 2000}}))
		shapeID++
	}
	if s.template.Body != nil && len(s.bullets) > 0 {
		paras := make([]paragraph, len(s.bullets))
		for i, point := range s.bullets {
			paras[i] = paragraph{text: point, size: 1800, bullet: true}
		}
		b.WriteString(textShape(shapeID, "Content", *s.template.Body, paras))
		shapeID++
	}
	for i, pic := range s.pictures {
		b.WriteString(pictureShape(shapeID, i+2, pic.region))
		shapeID++
	}

	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

// relsXML renders the slide's relationship part: the layout plus one image
// relationship per placed picture (rId2, rId3, ...).
func (s *Slide) relsXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`)
	for i, pic := range s.pictures {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image%d.%s"/>`,
			i+2, pic.mediaIndex+1, pic.ext)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

type paragraph struct {
	text   string
	size   int // hundredths of a point
	bold   bool
	bullet bool
}

func textShape(id int, name string, r Region, paras []paragraph) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, name)
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, r.X, r.Y, r.W, r.H)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
	for _, para := range paras {
		b.WriteString(`<a:p><a:pPr`)
		if para.bullet {
			b.WriteString(`><a:buChar char="&#8226;"/></a:pPr>`)
		} else {
			b.WriteString(`><a:buNone/></a:pPr>`)
		}
		bold := ""
		if para.bold {
			bold = ` b="1"`
		}
		fmt.Fprintf(&b, `<a:r><a:rPr lang="en-US" sz="%d"%s dirty="0"/><a:t>%s</a:t></a:r></a:p>`, para.size, bold, escapeXML(para.text))
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

func pictureShape(id, relID int, r Region) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`, id, id)
	fmt.Fprintf(&b, `<p:blipFill><a:blip r:embed="rId%d"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, relID)
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`, r.X, r.Y, r.W, r.H)
	return b.String()
}

func escapeXML(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
