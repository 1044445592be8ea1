// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pptx

// Region is a rectangle on the slide canvas in EMU.
type Region struct {
	X, Y, W, H int64
}

// Template is one indexed slide geometry with named regions. A nil region
// means the template does not define that placeholder.
type Template struct {
	Index    int
	Name     string
	Title    *Region
	Subtitle *Region
	Body     *Region
	Picture  *Region
}

// Slide canvas: 10 x 7.5 inches.
const (
	SlideWidth  int64 = 9144000
	SlideHeight int64 = 6858000
)

// EMU conversion constants.
const (
	EMUPerInch int64 = 914400
	EMUPerCm   int64 = 360000
)

// templates mirrors the standard presentation template order: 0 Title,
// 1 Title and Content, 2 Section Header, 3 Two Content, 4 Comparison,
// 5 Title Only, 6 Blank, 7 Content with Caption, 8 Picture with Caption.
// Only index 8 defines a picture region; decks that want images on other
// layouts get them through free placement.
var templates = []Template{
	{
		Index:    0,
		Name:     "Title",
		Title:    &Region{X: 685800, Y: 2130425, W: 7772400, H: 1470025},
		Subtitle: &Region{X: 1371600, Y: 3886200, W: 6400800, H: 1752600},
	},
	{
		Index: 1,
		Name:  "Title and Content",
		Title: &Region{X: 457200, Y: 274638, W: 8229600, H: 1143000},
		Body:  &Region{X: 457200, Y: 1600200, W: 8229600, H: 4525963},
	},
	{
		Index: 2,
		Name:  "Section Header",
		Title: &Region{X: 722313, Y: 4406900, W: 7772400, H: 1362075},
		Body:  &Region{X: 722313, Y: 2906713, W: 7772400, H: 1500187},
	},
	{
		Index: 3,
		Name:  "Two Content",
		Title: &Region{X: 457200, Y: 274638, W: 8229600, H: 1143000},
		Body:  &Region{X: 457200, Y: 1600200, W: 4038600, H: 4525963},
	},
	{
		Index: 4,
		Name:  "Comparison",
		Title: &Region{X: 457200, Y: 274638, W: 8229600, H: 1143000},
		Body:  &Region{X: 457200, Y: 1996831, W: 4040188, H: 4129369},
	},
	{
		Index: 5,
		Name:  "Title Only",
		Title: &Region{X: 457200, Y: 274638, W: 8229600, H: 1143000},
	},
	{
		Index: 6,
		Name:  "Blank",
	},
	{
		Index: 7,
		Name:  "Content with Caption",
		Title: &Region{X: 457200, Y: 273050, W: 3008313, H: 1162050},
		Body:  &Region{X: 457200, Y: 1435100, W: 3008313, H: 4685506},
	},
	{
		Index: 8,
		Name:  "Picture with Caption",
		Title: &Region{X: 457200, Y: 273050, W: 3008313, H: 1162050},
		Body:  &Region{X: 457200, Y: 1435100, W: 3008313, H: 4685506},
		Picture: &Region{X: 3887787, Y: 987425, W: 4798787, H: 4883150},
	},
}

// Templates returns the full indexed template table.
func Templates() []Template {
	return templates
}

// TemplateByIndex returns the template for idx. Lookup is total:
// out-of-range indices clamp to template 1 (Title and Content).
func TemplateByIndex(idx int) Template {
	if idx < 0 || idx >= len(templates) {
		return templates[1]
	}
	return templates[idx]
}

// TemplateCount is the number of indexed templates.
func TemplateCount() int {
	return len(templates)
}
