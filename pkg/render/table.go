package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/locvowork/spreadsheets/pkg/extract"
	"github.com/locvowork/spreadsheets/pkg/style"
)

const (
	HeaderTop  = "top"
	HeaderLeft = "left"
)

// TableData is the row content of one table.
type TableData struct {
	HeadData []extract.Row
	BodyData []extract.Row
}

// FromExtraction returns the rows of ex as table data.
func FromExtraction(ex *extract.Extraction) TableData {
	if ex == nil {
		return TableData{}
	}
	return TableData{HeadData: ex.HeadData, BodyData: ex.BodyData}
}

// TableOptions controls the markup around the cells.
type TableOptions struct {
	ID             string
	Class          string
	Caption        string
	HeaderPosition string // top or left
	Footer         bool   // render the last body row in <tfoot>
	Styles         string // stylesheet written in a <style> block
}

// TabData is one sheet shown as a tab.
type TabData struct {
	Title string
	Data  TableData
}

type tableView struct {
	ID         string
	Class      string
	Caption    string
	Head       []extract.Row
	Body       []extract.Row
	Foot       []extract.Row
	LeftHeader bool
}

type tabView struct {
	ID     string
	Title  string
	Active bool
	Table  tableView
}

type page struct {
	Styles template.CSS
	Table  *tableView
	Tabs   []tabView
	TabsID string
}

var templates = template.Must(template.New("render").Funcs(template.FuncMap{
	"value": CellValue,
	"attrs": CellAttributes,
}).Parse(`
{{- define "cells" -}}
{{range .Cells}}<td {{attrs .}}>{{value .}}</td>{{end}}
{{- end -}}

{{- define "table" -}}
<table class="{{.Class}}"{{if .ID}} id="{{.ID}}"{{end}}>
{{- if .Caption}}<caption>{{.Caption}}</caption>{{end}}
{{- if .Head}}<thead>{{range .Head}}<tr>{{range .Cells}}<th scope="col" {{attrs .}}>{{value .}}</th>{{end}}</tr>{{end}}</thead>{{end}}
<tbody>
{{- range .Body}}<tr>{{if $.LeftHeader}}{{range $i, $c := .Cells}}{{if eq $i 0}}<th scope="row" {{attrs $c}}>{{value $c}}</th>{{else}}<td {{attrs $c}}>{{value $c}}</td>{{end}}{{end}}{{else}}{{template "cells" .}}{{end}}</tr>
{{end -}}
</tbody>
{{- if .Foot}}<tfoot>{{range .Foot}}<tr>{{template "cells" .}}</tr>{{end}}</tfoot>{{end -}}
</table>
{{- end -}}

{{- define "page" -}}
{{if .Styles}}<style>{{.Styles}}</style>
{{end -}}
{{if .Table}}{{template "table" .Table}}
{{end -}}
{{if .Tabs -}}
<div class="spreadsheet-tabs" id="{{.TabsID}}">
<ul class="nav nav-tabs" role="tablist">
{{- range .Tabs}}<li role="presentation"><a href="#{{.ID}}" role="tab"{{if .Active}} class="active" aria-selected="true"{{end}}>{{.Title}}</a></li>{{end -}}
</ul>
<div class="tab-content">
{{range .Tabs}}<div class="tab-pane{{if .Active}} active{{end}}" id="{{.ID}}" role="tabpanel">{{template "table" .Table}}</div>
{{end -}}
</div>
</div>
{{end -}}
{{- end -}}
`))

// stylesheet marks css as trusted for the style element once no '<' is left
// that could end it.
func stylesheet(css string) template.CSS {
	return template.CSS(style.EscapeCSS(css))
}

// Table writes a single table for data.
func Table(w io.Writer, data TableData, opts TableOptions) error {
	view := newTableView(data, opts)
	if err := templates.ExecuteTemplate(w, "page", page{Styles: stylesheet(opts.Styles), Table: &view}); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// Tabs writes a tab navigation with one table per sheet.
func Tabs(w io.Writer, tabs []TabData, opts TableOptions) error {
	prefix := opts.ID
	if prefix == "" {
		prefix = "spreadsheet"
	}

	views := make([]tabView, 0, len(tabs))
	for i, tab := range tabs {
		tableOpts := opts
		tableOpts.ID = ""
		views = append(views, tabView{
			ID:     fmt.Sprintf("%s-tab-%d", prefix, i),
			Title:  tab.Title,
			Active: i == 0,
			Table:  newTableView(tab.Data, tableOpts),
		})
	}

	if err := templates.ExecuteTemplate(w, "page", page{Styles: stylesheet(opts.Styles), Tabs: views, TabsID: prefix}); err != nil {
		return fmt.Errorf("render tabs: %w", err)
	}
	return nil
}

func newTableView(data TableData, opts TableOptions) tableView {
	class := "spreadsheet-table"
	if c := strings.TrimSpace(opts.Class); c != "" {
		class += " " + c
	}
	view := tableView{
		ID:         opts.ID,
		Class:      class,
		Caption:    opts.Caption,
		Head:       data.HeadData,
		Body:       data.BodyData,
		LeftHeader: opts.HeaderPosition == HeaderLeft,
	}
	if opts.Footer && len(view.Body) > 0 {
		last := len(view.Body) - 1
		view.Foot = view.Body[last:]
		view.Body = view.Body[:last]
	}
	return view
}
