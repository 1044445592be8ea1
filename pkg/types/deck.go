// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the deck-engine pipeline:
// outlines, slides, session state, and the configuration structs consumed by
// each stage.
package types

// LayoutType names an abstract slide layout. The set is closed; values
// outside it are accepted on input and resolve to the default template at
// render time.
type LayoutType string

const (
	LayoutTitleSlide     LayoutType = "title_slide"
	LayoutTitleContent   LayoutType = "title_content"
	LayoutSectionHeader  LayoutType = "section_header"
	LayoutTwoColumn      LayoutType = "two_column"
	LayoutComparison     LayoutType = "comparison"
	LayoutTitleOnly      LayoutType = "title_only"
	LayoutBlank          LayoutType = "blank"
	LayoutContentCaption LayoutType = "content_caption"
	LayoutPictureCaption LayoutType = "picture_caption"
	LayoutDefault        LayoutType = "default"
)

// ValidLayouts is the closed set of recognized layout tags.
var ValidLayouts = map[LayoutType]bool{
	LayoutTitleSlide:     true,
	LayoutTitleContent:   true,
	LayoutSectionHeader:  true,
	LayoutTwoColumn:      true,
	LayoutComparison:     true,
	LayoutTitleOnly:      true,
	LayoutBlank:          true,
	LayoutContentCaption: true,
	LayoutPictureCaption: true,
	LayoutDefault:        true,
}

// Outline is the deck plan produced by the planning stage: the presentation
// title and the ordered chapter list. Chapter order is deck order.
type Outline struct {
	Title    string   `json:"title" yaml:"title"`
	Chapters []string `json:"chapters" yaml:"chapters"`
}

// Slide is one deck entry. ImageQuery and ImagePath are empty until the
// advisory and enrichment stages fill them; ImagePath may be a URL or a
// local file path.
type Slide struct {
	Title        string     `json:"title" yaml:"title"`
	BulletPoints []string   `json:"bullet_points" yaml:"bullet_points"`
	ImageQuery   string     `json:"image_query,omitempty" yaml:"image_query,omitempty"`
	ImagePath    string     `json:"image_path,omitempty" yaml:"image_path,omitempty"`
	LayoutType   LayoutType `json:"layout_type" yaml:"layout_type"`
}

// Step marks the pipeline position recorded in a session state.
type Step string

const (
	StepStart          Step = "start"
	StepContentGen     Step = "content_generation"
	StepImageAdvisory  Step = "image_advisory"
	StepImageSearching Step = "image_searching"
	StepFinalRender    Step = "final_render"
	StepCompleted      Step = "completed"
)

// State is the unit persisted in checkpoints and resumed across the two
// interrupt points. Stages never mutate a State in place; each produces a
// full replacement derived from its input.
type State struct {
	InputText  string   `json:"input_text" yaml:"input_text"`
	InputFiles []string `json:"input_files" yaml:"input_files"`

	Outline *Outline `json:"outline,omitempty" yaml:"outline,omitempty"`
	Slides  []Slide  `json:"slides" yaml:"slides"`

	CurrentStep   Step   `json:"current_step" yaml:"current_step"`
	IsApproved    bool   `json:"is_approved" yaml:"is_approved"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
	GeneratedFile string `json:"generated_file,omitempty" yaml:"generated_file,omitempty"`
}

// Terminal reports whether the state has reached an absorbing position:
// either the deck rendered or a stage recorded a fatal error.
func (s State) Terminal() bool {
	return s.Error != "" || s.CurrentStep == StepCompleted
}

// Clone returns a deep copy of the state. Stage handlers start from a clone
// so the caller's snapshot is never aliased.
func (s State) Clone() State {
	out := s
	if s.Outline != nil {
		o := *s.Outline
		o.Chapters = append([]string(nil), s.Outline.Chapters...)
		out.Outline = &o
	}
	out.InputFiles = append([]string(nil), s.InputFiles...)
	out.Slides = make([]Slide, len(s.Slides))
	for i, sl := range s.Slides {
		sl.BulletPoints = append([]string(nil), sl.BulletPoints...)
		out.Slides[i] = sl
	}
	return out
}
