package dsn

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// CellRange holds 1-based inclusive bounds of a selection. A zero column
// bound means the range spans whole rows (`2:5`), a zero row bound means it
// spans whole columns (`A:C`).
type CellRange struct {
	StartCol int `json:"startCol"`
	StartRow int `json:"startRow"`
	EndCol   int `json:"endCol"`
	EndRow   int `json:"endRow"`
}

// ParseRange reads `A1:B2`, `B3`, `A:C` or `2:5`.
func ParseRange(s string) (CellRange, error) {
	s = normalizeRange(s)
	if s == "" {
		return CellRange{}, fmt.Errorf("%w: empty range", ErrInvalidDSN)
	}

	startRef, endRef, isSpan := strings.Cut(s, ":")
	if !isSpan {
		endRef = startRef
	}
	if strings.Contains(endRef, ":") {
		return CellRange{}, fmt.Errorf("%w: malformed range %q", ErrInvalidDSN, s)
	}

	sc, sr, err := parseRef(startRef)
	if err != nil {
		return CellRange{}, err
	}
	ec, er, err := parseRef(endRef)
	if err != nil {
		return CellRange{}, err
	}

	// mixing `A1:C` style refs is not addressable
	if (sc == 0) != (ec == 0) || (sr == 0) != (er == 0) {
		return CellRange{}, fmt.Errorf("%w: mixed reference kinds in %q", ErrInvalidDSN, s)
	}
	if !isSpan && (sc == 0 || sr == 0) {
		return CellRange{}, fmt.Errorf("%w: single reference %q must address a cell", ErrInvalidDSN, s)
	}

	if sc > ec {
		sc, ec = ec, sc
	}
	if sr > er {
		sr, er = er, sr
	}
	return CellRange{StartCol: sc, StartRow: sr, EndCol: ec, EndRow: er}, nil
}

// parseRef splits a reference into column and row numbers; either may be 0.
func parseRef(ref string) (col, row int, err error) {
	i := strings.IndexFunc(ref, unicode.IsDigit)
	letters, digits := ref, ""
	if i >= 0 {
		letters, digits = ref[:i], ref[i:]
	}
	if letters == "" && digits == "" {
		return 0, 0, fmt.Errorf("%w: empty reference", ErrInvalidDSN)
	}

	if letters != "" {
		col, err = excelize.ColumnNameToNumber(letters)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: column %q: %v", ErrInvalidDSN, letters, err)
		}
	}
	if digits != "" {
		row, err = strconv.Atoi(digits)
		if err != nil || row < 1 || row > excelize.TotalRows {
			return 0, 0, fmt.Errorf("%w: row %q out of bounds", ErrInvalidDSN, digits)
		}
	}
	return col, row, nil
}

// IsOpen reports whether the range still needs sheet dimensions to be resolved.
func (r CellRange) IsOpen() bool {
	return r.StartCol == 0 || r.StartRow == 0
}

// Complete fills open bounds from the sheet dimension maxCol x maxRow.
func (r CellRange) Complete(maxCol, maxRow int) CellRange {
	if r.StartCol == 0 {
		r.StartCol, r.EndCol = 1, maxCol
	}
	if r.StartRow == 0 {
		r.StartRow, r.EndRow = 1, maxRow
	}
	return r
}

// Contains reports whether the cell (col, row) lies inside r.
func (r CellRange) Contains(col, row int) bool {
	return col >= r.StartCol && col <= r.EndCol && row >= r.StartRow && row <= r.EndRow
}

// Intersect returns the overlap of r and o and whether there is one.
func (r CellRange) Intersect(o CellRange) (CellRange, bool) {
	out := CellRange{
		StartCol: max(r.StartCol, o.StartCol),
		StartRow: max(r.StartRow, o.StartRow),
		EndCol:   min(r.EndCol, o.EndCol),
		EndRow:   min(r.EndRow, o.EndRow),
	}
	if out.StartCol > out.EndCol || out.StartRow > out.EndRow {
		return CellRange{}, false
	}
	return out, true
}

// String renders closed ranges as `A1:B2`.
func (r CellRange) String() string {
	if r.IsOpen() {
		switch {
		case r.StartCol == 0 && r.StartRow != 0:
			return fmt.Sprintf("%d:%d", r.StartRow, r.EndRow)
		case r.StartRow == 0 && r.StartCol != 0:
			start, _ := excelize.ColumnNumberToName(r.StartCol)
			end, _ := excelize.ColumnNumberToName(r.EndCol)
			return start + ":" + end
		}
		return ""
	}
	start, _ := excelize.CoordinatesToCellName(r.StartCol, r.StartRow)
	end, _ := excelize.CoordinatesToCellName(r.EndCol, r.EndRow)
	return start + ":" + end
}
