package extract

import (
	"strings"

	"github.com/locvowork/spreadsheets/pkg/dsn"
	"github.com/xuri/excelize/v2"
)

const printTitlesName = "_xlnm.Print_Titles"

// printTitles holds the rows repeated at top and columns repeated at left.
type printTitles struct {
	rows    dsn.CellRange
	cols    dsn.CellRange
	hasRows bool
	hasCols bool
}

func (p printTitles) isHeadRow(row int) bool {
	return p.hasRows && row >= p.rows.StartRow && row <= p.rows.EndRow
}

func (p printTitles) isHeadColumn(col int) bool {
	return p.hasCols && col >= p.cols.StartCol && col <= p.cols.EndCol
}

// readPrintTitles looks up the print titles defined for sheet.
// Format: 'Sheet 1'!$A:$B,'Sheet 1'!$1:$2
func readPrintTitles(f *excelize.File, sheet string) printTitles {
	var pt printTitles
	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, printTitlesName) {
			continue
		}
		for _, part := range splitReferences(dn.RefersTo) {
			refSheet, ref := splitSheetReference(part)
			if refSheet != sheet && (refSheet != "" || dn.Scope != sheet) {
				continue
			}
			rng, err := dsn.ParseRange(ref)
			if err != nil {
				continue
			}
			switch {
			case rng.StartCol == 0 && rng.StartRow != 0:
				pt.rows, pt.hasRows = rng, true
			case rng.StartRow == 0 && rng.StartCol != 0:
				pt.cols, pt.hasCols = rng, true
			}
		}
	}
	return pt
}

// splitReferences splits a comma separated reference list, ignoring commas
// inside quoted sheet names.
func splitReferences(refersTo string) []string {
	var parts []string
	var sb strings.Builder
	quoted := false
	for _, r := range refersTo {
		switch {
		case r == '\'':
			quoted = !quoted
			sb.WriteRune(r)
		case r == ',' && !quoted:
			parts = append(parts, strings.TrimSpace(sb.String()))
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	if rest := strings.TrimSpace(sb.String()); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

func splitSheetReference(part string) (sheet, ref string) {
	part = strings.TrimPrefix(strings.TrimSpace(part), "=")
	idx := strings.LastIndex(part, "!")
	if idx < 0 {
		return "", part
	}
	sheet = part[:idx]
	if strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") && len(sheet) >= 2 {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	return sheet, part[idx+1:]
}
