package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/locvowork/spreadsheets/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cell(v string) extract.Cell {
	return extract.Cell{Value: v, RowSpan: 1, ColSpan: 1, DataType: extract.TypeString}
}

func sampleData() TableData {
	return TableData{
		HeadData: []extract.Row{{Index: 1, Cells: []extract.Cell{cell("Fruit"), cell("Qty")}}},
		BodyData: []extract.Row{
			{Index: 2, Cells: []extract.Cell{cell("Apple"), cell("5")}},
			{Index: 3, Cells: []extract.Cell{cell("Total"), cell("5")}},
		},
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf, sampleData(), TableOptions{Caption: "Stock <2024>", ID: "c12"})
	require.NoError(t, err)

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, `<table class="spreadsheet-table" id="c12">`))
	assert.Contains(t, html, "<caption>Stock &lt;2024&gt;</caption>")
	assert.Contains(t, html, `<thead><tr><th scope="col" data-type="string">Fruit</th><th scope="col" data-type="string">Qty</th></tr></thead>`)
	assert.Contains(t, html, `<tr><td data-type="string">Apple</td><td data-type="string">5</td></tr>`)
	assert.NotContains(t, html, "<tfoot>")
	assert.NotContains(t, html, "<style>")
}

func TestTable_FooterAndLeftHeader(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf, sampleData(), TableOptions{HeaderPosition: HeaderLeft, Footer: true, Class: "wide"})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `<table class="spreadsheet-table wide">`)
	assert.Contains(t, html, `<tbody><tr><th scope="row" data-type="string">Apple</th><td data-type="string">5</td></tr>`)
	assert.Contains(t, html, `<tfoot><tr><td data-type="string">Total</td><td data-type="string">5</td></tr></tfoot>`)
	assert.Equal(t, 1, strings.Count(html, "Total"))
}

func TestTable_Styles(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf, sampleData(), TableOptions{Styles: ".cell-style-1 { font-weight: bold; }\n"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(buf.String(), "<style>.cell-style-1 { font-weight: bold; }\n</style>"))
}

func TestTable_StylesCannotCloseElement(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf, sampleData(), TableOptions{Styles: "td {}\n</style><script>alert(1)</script>"})
	require.NoError(t, err)

	html := buf.String()
	assert.Equal(t, 1, strings.Count(html, "</style>"))
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, `\3C /style>\3C script>`)
}

func TestTable_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Table(&a, sampleData(), TableOptions{Footer: true}))
	require.NoError(t, Table(&b, sampleData(), TableOptions{Footer: true}))
	assert.Equal(t, a.String(), b.String())
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, FromExtraction(nil), TableOptions{}))
	assert.Contains(t, buf.String(), "<tbody></tbody>")
}

func TestTabs(t *testing.T) {
	var buf bytes.Buffer
	err := Tabs(&buf, []TabData{
		{Title: "First", Data: sampleData()},
		{Title: "Second & more", Data: TableData{}},
	}, TableOptions{ID: "c7"})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `<div class="spreadsheet-tabs" id="c7">`)
	assert.Contains(t, html, `<a href="#c7-tab-0" role="tab" class="active" aria-selected="true">First</a>`)
	assert.Contains(t, html, `<a href="#c7-tab-1" role="tab">Second &amp; more</a>`)
	assert.Contains(t, html, `<div class="tab-pane active" id="c7-tab-0" role="tabpanel"><table class="spreadsheet-table">`)
	assert.Contains(t, html, `<div class="tab-pane" id="c7-tab-1" role="tabpanel">`)
	assert.Equal(t, 2, strings.Count(html, "<table"))
}
