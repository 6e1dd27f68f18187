// Package extract projects a cell range of a workbook sheet into head and body
// rows ready for rendering.
package extract

import "github.com/locvowork/spreadsheets/pkg/style"

// Data types reported on Cell.DataType.
const (
	TypeEmpty   = "empty"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeDate    = "date"
	TypeError   = "error"
)

// Source identifies the file an extraction was read from.
type Source struct {
	FileUID int64  `json:"fileUid"`
	Name    string `json:"name,omitempty"`
}

// RichTextRun is a fragment of a cell value sharing one font.
type RichTextRun struct {
	Text string              `json:"text"`
	Font *style.FontTemplate `json:"font,omitempty"`
}

// Cell is one rendered cell. Cells covered by a merge other than its anchor
// are not emitted.
type Cell struct {
	Ref         string        `json:"ref"`
	Row         int           `json:"row"`
	Column      int           `json:"column"`
	Value       string        `json:"value"`
	RawValue    string        `json:"rawValue"`
	DataType    string        `json:"dataType"`
	RowSpan     int           `json:"rowspan"`
	ColSpan     int           `json:"colspan"`
	StyleID     int           `json:"styleId,omitempty"`
	Class       string        `json:"class,omitempty"`
	Hyperlink   string        `json:"hyperlink,omitempty"`
	Superscript bool          `json:"superscript,omitempty"`
	Subscript   bool          `json:"subscript,omitempty"`
	RichText    []RichTextRun `json:"richText,omitempty"`
}

// Row groups the cells of one output row. Index is the source row for
// horizontal extraction and the source column for vertical extraction.
type Row struct {
	Index int    `json:"index"`
	Cells []Cell `json:"cells"`
}

// Extraction is the result of resolving a DSN against a workbook.
type Extraction struct {
	Spreadsheet Source `json:"spreadsheet"`
	SheetIndex  int    `json:"sheetIndex"`
	SheetName   string `json:"sheetName"`
	Range       string `json:"range,omitempty"`
	Direction   string `json:"direction"`
	HeadData    []Row  `json:"headData"`
	BodyData    []Row  `json:"bodyData"`
	StyleIDs    []int  `json:"styleIds,omitempty"`
}

// IsEmpty reports whether the extraction holds no rows at all.
func (e *Extraction) IsEmpty() bool {
	return e == nil || (len(e.HeadData) == 0 && len(e.BodyData) == 0)
}

// Rows returns head rows followed by body rows.
func (e *Extraction) Rows() []Row {
	if e == nil {
		return nil
	}
	rows := make([]Row, 0, len(e.HeadData)+len(e.BodyData))
	rows = append(rows, e.HeadData...)
	return append(rows, e.BodyData...)
}
