package extract

import (
	"errors"
	"testing"

	"github.com/locvowork/spreadsheets/pkg/dsn"
	"github.com/locvowork/spreadsheets/pkg/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// newWorkbook builds:
//
//	   A        B      C
//	1  Report (A1:B1)  Note
//	2  Apple    5      x
//	3  Pear     7      y
func newWorkbook(t *testing.T) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	sheet := "Sheet1"
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Report", "", "Note"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Apple", 5, "x"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Pear", 7, "y"}))
	require.NoError(t, f.MergeCell(sheet, "A1", "B1"))
	return f
}

func values(row Row) []string {
	out := make([]string, 0, len(row.Cells))
	for _, c := range row.Cells {
		out = append(out, c.Value)
	}
	return out
}

func TestExtract_WholeSheet(t *testing.T) {
	f := newWorkbook(t)

	ex, err := New().Extract(f, dsn.DSN{FileUID: 3, Direction: dsn.DirectionHorizontal}, Source{FileUID: 3, Name: "report.xlsx"})
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", ex.SheetName)
	assert.Equal(t, "A1:C3", ex.Range)
	assert.Equal(t, "horizontal", ex.Direction)
	assert.Equal(t, Source{FileUID: 3, Name: "report.xlsx"}, ex.Spreadsheet)
	assert.Empty(t, ex.HeadData)
	require.Len(t, ex.BodyData, 3)

	first := ex.BodyData[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, []string{"Report", "Note"}, values(first))
	assert.Equal(t, 2, first.Cells[0].ColSpan)
	assert.Equal(t, 1, first.Cells[0].RowSpan)
	assert.Equal(t, "C1", first.Cells[1].Ref)

	assert.Equal(t, []string{"Apple", "5", "x"}, values(ex.BodyData[1]))
	assert.Equal(t, TypeNumber, ex.BodyData[1].Cells[1].DataType)
	assert.Equal(t, TypeString, ex.BodyData[1].Cells[0].DataType)
}

func TestExtract_RangeClipsMerge(t *testing.T) {
	f := newWorkbook(t)

	ex, err := New().Extract(f, dsn.MustParse("spreadsheet://3?index=0&range=B1:C2"), Source{FileUID: 3})
	require.NoError(t, err)

	require.Len(t, ex.BodyData, 2)
	anchor := ex.BodyData[0].Cells[0]
	assert.Equal(t, "B1", anchor.Ref)
	assert.Equal(t, "Report", anchor.Value)
	assert.Equal(t, 1, anchor.ColSpan)
	assert.Equal(t, []string{"5", "x"}, values(ex.BodyData[1]))
}

func TestExtract_MergeCoveringWholeRow(t *testing.T) {
	f := newWorkbook(t)
	require.NoError(t, f.MergeCell("Sheet1", "A2", "A3"))

	ex, err := New().Extract(f, dsn.MustParse("spreadsheet://3?range=A2:B3"), Source{})
	require.NoError(t, err)

	require.Len(t, ex.BodyData, 2)
	assert.Equal(t, []string{"Apple", "5"}, values(ex.BodyData[0]))
	assert.Equal(t, 2, ex.BodyData[0].Cells[0].RowSpan)
	assert.Equal(t, []string{"7"}, values(ex.BodyData[1]))
	assert.Equal(t, "B3", ex.BodyData[1].Cells[0].Ref)
}

func TestExtract_PrintTitlesBecomeHead(t *testing.T) {
	f := newWorkbook(t)
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Titles",
		RefersTo: "Sheet1!$1:$1",
		Scope:    "Sheet1",
	}))

	ex, err := New().Extract(f, dsn.MustParse("spreadsheet://3"), Source{})
	require.NoError(t, err)

	require.Len(t, ex.HeadData, 1)
	assert.Equal(t, 1, ex.HeadData[0].Index)
	require.Len(t, ex.BodyData, 2)
	assert.Equal(t, 2, ex.BodyData[0].Index)
}

func TestExtract_Vertical(t *testing.T) {
	f := newWorkbook(t)
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Titles",
		RefersTo: "Sheet1!$A:$A",
		Scope:    "Sheet1",
	}))

	ex, err := New().Extract(f, dsn.MustParse("spreadsheet://3?direction=vertical"), Source{})
	require.NoError(t, err)

	assert.Equal(t, "vertical", ex.Direction)
	require.Len(t, ex.HeadData, 1)
	head := ex.HeadData[0]
	assert.Equal(t, 1, head.Index)
	assert.Equal(t, []string{"Report", "Apple", "Pear"}, values(head))
	assert.Equal(t, 2, head.Cells[0].RowSpan)
	assert.Equal(t, 1, head.Cells[0].ColSpan)

	require.Len(t, ex.BodyData, 2)
	assert.Equal(t, []string{"5", "7"}, values(ex.BodyData[0]))
	assert.Equal(t, []string{"Note", "x", "y"}, values(ex.BodyData[1]))
}

func TestExtract_OpenSpans(t *testing.T) {
	f := newWorkbook(t)

	ex, err := New().Extract(f, dsn.MustParse("spreadsheet://3?range=C:C"), Source{})
	require.NoError(t, err)
	assert.Equal(t, "C1:C3", ex.Range)
	require.Len(t, ex.BodyData, 3)
	assert.Equal(t, []string{"y"}, values(ex.BodyData[2]))

	ex, err = New().Extract(f, dsn.MustParse("spreadsheet://3?range=2:3"), Source{})
	require.NoError(t, err)
	assert.Equal(t, "A2:C3", ex.Range)
	assert.Len(t, ex.BodyData, 2)
}

func TestExtract_RangeClippedToDimension(t *testing.T) {
	f := newWorkbook(t)

	for _, r := range []string{"A1:CV3000", "A1:XFD1048576"} {
		ex, err := New().Extract(f, dsn.DSN{FileUID: 3, Range: r}, Source{})
		require.NoError(t, err)
		assert.Equal(t, "A1:C3", ex.Range, r)
		require.Len(t, ex.BodyData, 3, r)
		assert.Len(t, ex.BodyData[2].Cells, 3, r)
	}

	ex, err := New().Extract(f, dsn.DSN{FileUID: 3, Range: "B2:Z9"}, Source{})
	require.NoError(t, err)
	assert.Equal(t, "B2:C3", ex.Range)
	assert.Equal(t, []string{"5", "x"}, values(ex.BodyData[0]))

	ex, err = New().Extract(f, dsn.DSN{FileUID: 3, Range: "E5:F6"}, Source{})
	require.NoError(t, err)
	assert.True(t, ex.IsEmpty())
	assert.Empty(t, ex.Range)
}

func TestExtract_EmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	ex, err := New().Extract(f, dsn.MustParse("spreadsheet://3"), Source{})
	require.NoError(t, err)
	assert.True(t, ex.IsEmpty())
	assert.NotNil(t, ex.BodyData)
	assert.Empty(t, ex.Range)
}

func TestExtract_Errors(t *testing.T) {
	f := newWorkbook(t)

	_, err := New().Extract(f, dsn.MustParse("spreadsheet://3?index=4"), Source{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
	var exErr *Error
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, ComponentSheet, exErr.Component)

	_, err = New().Extract(f, dsn.DSN{FileUID: 3, Range: "A1:??"}, Source{})
	require.Error(t, err)
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, ComponentRange, exErr.Component)
	assert.Equal(t, "Sheet1", exErr.Sheet)
	assert.True(t, errors.Is(err, dsn.ErrInvalidDSN))
}

func TestExtract_Styles(t *testing.T) {
	f := newWorkbook(t)
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	sup, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{VertAlign: "superscript"}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A1", "A1", bold))
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C2", sup))

	ex, err := New().Extract(f, dsn.MustParse("spreadsheet://3?range=A1:C2"), Source{})
	require.NoError(t, err)

	anchor := ex.BodyData[0].Cells[0]
	assert.Equal(t, bold, anchor.StyleID)
	assert.Equal(t, style.ClassName(bold), anchor.Class)
	assert.True(t, ex.BodyData[1].Cells[2].Superscript)
	assert.Equal(t, []int{bold, sup}, ex.StyleIDs)

	plain, err := New(WithStyles(false)).Extract(f, dsn.MustParse("spreadsheet://3?range=A1:C2"), Source{})
	require.NoError(t, err)
	assert.Empty(t, plain.BodyData[0].Cells[0].Class)
	assert.Empty(t, plain.StyleIDs)
	assert.True(t, plain.BodyData[1].Cells[2].Superscript)
}

func TestExtract_HyperlinksAndRichText(t *testing.T) {
	f := newWorkbook(t)
	require.NoError(t, f.SetCellHyperLink("Sheet1", "A2", "https://example.com/apple", "External"))
	require.NoError(t, f.SetCellRichText("Sheet1", "A3", []excelize.RichTextRun{
		{Text: "m", Font: &excelize.Font{Bold: true}},
		{Text: "2", Font: &excelize.Font{VertAlign: "superscript"}},
	}))

	ex, err := New().Extract(f, dsn.MustParse("spreadsheet://3?range=A2:A3"), Source{})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/apple", ex.BodyData[0].Cells[0].Hyperlink)
	assert.Empty(t, ex.BodyData[0].Cells[0].RichText)

	runs := ex.BodyData[1].Cells[0].RichText
	require.Len(t, runs, 2)
	assert.Equal(t, "m", runs[0].Text)
	assert.True(t, runs[0].Font.Bold)
	assert.Equal(t, "superscript", runs[1].Font.VertAlign)

	bare, err := New(WithHyperlinks(false), WithRichText(false)).Extract(f, dsn.MustParse("spreadsheet://3?range=A2:A3"), Source{})
	require.NoError(t, err)
	assert.Empty(t, bare.BodyData[0].Cells[0].Hyperlink)
	assert.Empty(t, bare.BodyData[1].Cells[0].RichText)
}

func TestExtractAll(t *testing.T) {
	f := newWorkbook(t)
	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Second", "B2", "only"))

	all, err := New().ExtractAll(f, dsn.MustParse("spreadsheet://3?index=1&range=A1:A1"), Source{FileUID: 3})
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, 0, all[0].SheetIndex)
	assert.Equal(t, "A1:C3", all[0].Range)
	assert.Equal(t, "Second", all[1].SheetName)
	assert.Equal(t, "A1:B2", all[1].Range)
	assert.Equal(t, "only", all[1].BodyData[1].Cells[1].Value)
}

func TestExtraction_Rows(t *testing.T) {
	ex := &Extraction{
		HeadData: []Row{{Index: 1}},
		BodyData: []Row{{Index: 2}, {Index: 3}},
	}
	rows := ex.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, 3, rows[2].Index)

	var nilEx *Extraction
	assert.True(t, nilEx.IsEmpty())
	assert.Nil(t, nilEx.Rows())
}
