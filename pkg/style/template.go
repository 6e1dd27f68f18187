// Package style converts spreadsheet cell styles into CSS so extracted tables
// keep the look of the source workbook.
package style

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

const (
	// ClassPrefix is prepended to the style id to build a cell class name.
	ClassPrefix = "cell-style-"

	VertAlignSuperscript = "superscript"
	VertAlignSubscript   = "subscript"
)

// ClassName returns the CSS class for a workbook style id.
func ClassName(id int) string {
	return ClassPrefix + strconv.Itoa(id)
}

// Template describes the visual parts of a cell style that survive in HTML.
type Template struct {
	Font      *FontTemplate      `json:"font,omitempty"`
	Fill      *FillTemplate      `json:"fill,omitempty"`
	Alignment *AlignmentTemplate `json:"alignment,omitempty"`
	Borders   []BorderTemplate   `json:"borders,omitempty"`
}

type FontTemplate struct {
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline string  `json:"underline,omitempty"`
	Strike    bool    `json:"strike,omitempty"`
	Color     string  `json:"color,omitempty"` // Hex color
	Size      float64 `json:"size,omitempty"`  // Points
	Family    string  `json:"family,omitempty"`
	VertAlign string  `json:"vertAlign,omitempty"`
}

type FillTemplate struct {
	Color string `json:"color"` // Hex color
}

type AlignmentTemplate struct {
	Horizontal string `json:"horizontal,omitempty"` // left, center, right, justify
	Vertical   string `json:"vertical,omitempty"`   // top, middle, bottom
	WrapText   bool   `json:"wrapText,omitempty"`
	Indent     int    `json:"indent,omitempty"`
}

type BorderTemplate struct {
	Side  string `json:"side"` // left, right, top, bottom
	Color string `json:"color,omitempty"`
	Style int    `json:"style"` // excelize border style index
}

// FromExcelize maps a workbook style definition to a Template.
func FromExcelize(s *excelize.Style) *Template {
	if s == nil {
		return &Template{}
	}

	t := &Template{Font: FromFont(s.Font)}
	if s.Fill.Type == "pattern" && s.Fill.Pattern == 1 && len(s.Fill.Color) > 0 {
		if c := normalizeColor(s.Fill.Color[0]); c != "" {
			t.Fill = &FillTemplate{Color: c}
		}
	}
	if s.Alignment != nil {
		t.Alignment = &AlignmentTemplate{
			Horizontal: horizontalAlign(s.Alignment.Horizontal),
			Vertical:   verticalAlign(s.Alignment.Vertical),
			WrapText:   s.Alignment.WrapText,
			Indent:     s.Alignment.Indent,
		}
	}
	for _, b := range s.Border {
		if b.Style <= 0 {
			continue
		}
		t.Borders = append(t.Borders, BorderTemplate{
			Side:  b.Type,
			Color: normalizeColor(b.Color),
			Style: b.Style,
		})
	}
	return t
}

// FromFont maps a workbook font, as found in styles and rich text runs.
func FromFont(f *excelize.Font) *FontTemplate {
	if f == nil {
		return nil
	}
	return &FontTemplate{
		Bold:      f.Bold,
		Italic:    f.Italic,
		Underline: f.Underline,
		Strike:    f.Strike,
		Color:     normalizeColor(f.Color),
		Size:      f.Size,
		Family:    f.Family,
		VertAlign: f.VertAlign,
	}
}

// IsSuperscript reports whether the whole cell is rendered raised.
func (t *Template) IsSuperscript() bool {
	return t != nil && t.Font != nil && t.Font.VertAlign == VertAlignSuperscript
}

// IsSubscript reports whether the whole cell is rendered lowered.
func (t *Template) IsSubscript() bool {
	return t != nil && t.Font != nil && t.Font.VertAlign == VertAlignSubscript
}

// CSS returns the declarations of t, ordered and `;`-terminated.
func (t *Template) CSS() string {
	if t == nil {
		return ""
	}

	var decls []string
	if f := t.Font; f != nil {
		decls = append(decls, FontCSS(f)...)
	}
	if t.Fill != nil && t.Fill.Color != "" {
		decls = append(decls, "background-color: #"+t.Fill.Color)
	}
	if a := t.Alignment; a != nil {
		if a.Horizontal != "" {
			decls = append(decls, "text-align: "+a.Horizontal)
		}
		if a.Vertical != "" {
			decls = append(decls, "vertical-align: "+a.Vertical)
		}
		if a.WrapText {
			decls = append(decls, "white-space: pre-wrap")
		}
		if a.Indent > 0 {
			decls = append(decls, fmt.Sprintf("padding-left: %dem", a.Indent))
		}
	}

	borders := append([]BorderTemplate(nil), t.Borders...)
	sort.SliceStable(borders, func(i, j int) bool { return sideOrder(borders[i].Side) < sideOrder(borders[j].Side) })
	for _, b := range borders {
		if sideOrder(b.Side) > 3 {
			continue
		}
		color := "#000000"
		if b.Color != "" {
			color = "#" + b.Color
		}
		decls = append(decls, fmt.Sprintf("border-%s: %s %s", b.Side, borderStyle(b.Style), color))
	}

	if len(decls) == 0 {
		return ""
	}
	return strings.Join(decls, "; ") + ";"
}

// FontCSS returns the declarations for a font, shared with rich text runs.
func FontCSS(f *FontTemplate) []string {
	var decls []string
	if f.Bold {
		decls = append(decls, "font-weight: bold")
	}
	if f.Italic {
		decls = append(decls, "font-style: italic")
	}
	var deco []string
	if f.Underline != "" && f.Underline != "none" {
		deco = append(deco, "underline")
	}
	if f.Strike {
		deco = append(deco, "line-through")
	}
	if len(deco) > 0 {
		decls = append(decls, "text-decoration: "+strings.Join(deco, " "))
	}
	if f.Color != "" {
		decls = append(decls, "color: #"+f.Color)
	}
	if f.Size > 0 {
		decls = append(decls, "font-size: "+strconv.FormatFloat(f.Size, 'f', -1, 64)+"pt")
	}
	if family := fontFamily(f.Family); family != "" {
		decls = append(decls, fmt.Sprintf("font-family: '%s'", family))
	}
	return decls
}

// fontFamily keeps letters, digits, spaces, '-' and '_' of a family name.
func fontFamily(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, name)
	return strings.TrimSpace(name)
}

// normalizeColor turns `#RRGGBB`, `RRGGBB` and ARGB `AARRGGBB` into `RRGGBB`.
func normalizeColor(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c), "#"))
	if len(c) == 8 {
		c = c[2:]
	}
	if len(c) != 6 {
		return ""
	}
	if _, err := strconv.ParseUint(c, 16, 32); err != nil {
		return ""
	}
	return c
}

func horizontalAlign(h string) string {
	switch h {
	case "left", "right", "center", "justify":
		return h
	case "centerContinuous":
		return "center"
	case "distributed":
		return "justify"
	case "fill":
		return "left"
	}
	return ""
}

func verticalAlign(v string) string {
	switch v {
	case "top", "bottom":
		return v
	case "center", "justify", "distributed":
		return "middle"
	}
	return ""
}

func sideOrder(side string) int {
	switch side {
	case "top":
		return 0
	case "right":
		return 1
	case "bottom":
		return 2
	case "left":
		return 3
	}
	return 4
}

// borderStyle maps the excelize border style index to a CSS border shorthand.
func borderStyle(style int) string {
	switch style {
	case 2:
		return "2px solid"
	case 3, 9:
		return "1px dashed"
	case 4, 11:
		return "1px dotted"
	case 5:
		return "3px solid"
	case 6:
		return "3px double"
	case 8, 10, 13:
		return "2px dashed"
	case 12:
		return "2px dotted"
	}
	return "1px solid"
}
