// Package render turns extracted cell data into HTML tables.
package render

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/locvowork/spreadsheets/pkg/extract"
	"github.com/locvowork/spreadsheets/pkg/style"
)

// CellValue returns the escaped, display ready content of a cell.
func CellValue(c extract.Cell) template.HTML {
	var sb strings.Builder
	if len(c.RichText) > 0 {
		for _, run := range c.RichText {
			writeRun(&sb, run)
		}
	} else {
		sb.WriteString(escapeText(c.Value))
	}

	out := sb.String()
	switch {
	case c.Superscript:
		out = "<sup>" + out + "</sup>"
	case c.Subscript:
		out = "<sub>" + out + "</sub>"
	}

	if href, ok := safeHref(c.Hyperlink); ok {
		out = `<a href="` + template.HTMLEscapeString(href) + `" target="_blank" rel="noopener">` + out + "</a>"
	}
	return template.HTML(out)
}

// CellAttributes returns the attributes of a <td> or <th> for c.
func CellAttributes(c extract.Cell) template.HTMLAttr {
	var attrs []string
	if c.Class != "" {
		attrs = append(attrs, `class="`+template.HTMLEscapeString(c.Class)+`"`)
	}
	if c.RowSpan > 1 {
		attrs = append(attrs, `rowspan="`+strconv.Itoa(c.RowSpan)+`"`)
	}
	if c.ColSpan > 1 {
		attrs = append(attrs, `colspan="`+strconv.Itoa(c.ColSpan)+`"`)
	}
	dataType := c.DataType
	if dataType == "" {
		dataType = extract.TypeEmpty
	}
	attrs = append(attrs, `data-type="`+template.HTMLEscapeString(dataType)+`"`)
	return template.HTMLAttr(strings.Join(attrs, " "))
}

func writeRun(sb *strings.Builder, run extract.RichTextRun) {
	text := escapeText(run.Text)
	if run.Font == nil {
		sb.WriteString(text)
		return
	}

	switch run.Font.VertAlign {
	case style.VertAlignSuperscript:
		text = "<sup>" + text + "</sup>"
	case style.VertAlignSubscript:
		text = "<sub>" + text + "</sub>"
	}
	if decls := style.FontCSS(run.Font); len(decls) > 0 {
		text = `<span style="` + template.HTMLEscapeString(strings.Join(decls, "; ")) + `">` + text + "</span>"
	}
	sb.WriteString(text)
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>")
}

// safeHref accepts web, mail and phone links. Workbook internal locations
// such as `Sheet2!A1` are not linked.
func safeHref(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return u.String(), true
	case "":
		if strings.Contains(link, "!") {
			return "", false
		}
		return u.String(), true
	}
	return "", false
}
