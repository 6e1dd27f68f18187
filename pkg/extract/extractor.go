package extract

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/locvowork/spreadsheets/pkg/dsn"
	"github.com/locvowork/spreadsheets/pkg/style"
	"github.com/xuri/excelize/v2"
)

// Extractor resolves DSNs against opened workbooks. It holds no per-file state
// and is safe for concurrent use.
type Extractor struct {
	opts Options
}

func New(opts ...Option) *Extractor {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Extractor{opts: o}
}

func (e *Extractor) Options() Options {
	return e.opts
}

// Extract projects the sheet and range addressed by d into head and body rows.
//
// Merged regions produce one anchor cell, the first covered cell inside the
// range, which carries the value and style of the merge's top-left cell and
// spans clipped to the range. Rows (or columns for vertical direction) listed
// in the sheet print titles become head rows.
func (e *Extractor) Extract(f *excelize.File, d dsn.DSN, src Source) (*Extraction, error) {
	sheets := f.GetSheetList()
	if d.SheetIndex < 0 || d.SheetIndex >= len(sheets) {
		return nil, NewError("", ComponentSheet,
			fmt.Errorf("%w: index %d, workbook has %d sheets", ErrSheetNotFound, d.SheetIndex, len(sheets)))
	}
	name := sheets[d.SheetIndex]

	direction := dsn.DirectionHorizontal
	if d.IsVertical() {
		direction = dsn.DirectionVertical
	}
	out := &Extraction{
		Spreadsheet: src,
		SheetIndex:  d.SheetIndex,
		SheetName:   name,
		Direction:   string(direction),
		HeadData:    []Row{},
		BodyData:    []Row{},
	}

	s, err := e.load(f, name)
	if err != nil {
		return nil, err
	}

	rng, ok, err := s.resolveRange(d.Range)
	if err != nil {
		return nil, NewError(name, ComponentRange, err)
	}
	if !ok {
		return out, nil
	}
	out.Range = rng.String()

	titles := readPrintTitles(f, name)
	anchors, covered := s.mergeLayout(rng)

	if d.IsVertical() {
		for col := rng.StartCol; col <= rng.EndCol; col++ {
			row := Row{Index: col, Cells: []Cell{}}
			for r := rng.StartRow; r <= rng.EndRow; r++ {
				if covered[position{col, r}] {
					continue
				}
				c, err := s.cell(col, r, anchors)
				if err != nil {
					return nil, err
				}
				c.RowSpan, c.ColSpan = c.ColSpan, c.RowSpan
				row.Cells = append(row.Cells, c)
			}
			if titles.isHeadColumn(col) {
				out.HeadData = append(out.HeadData, row)
			} else {
				out.BodyData = append(out.BodyData, row)
			}
		}
	} else {
		for r := rng.StartRow; r <= rng.EndRow; r++ {
			row := Row{Index: r, Cells: []Cell{}}
			for col := rng.StartCol; col <= rng.EndCol; col++ {
				if covered[position{col, r}] {
					continue
				}
				c, err := s.cell(col, r, anchors)
				if err != nil {
					return nil, err
				}
				row.Cells = append(row.Cells, c)
			}
			if titles.isHeadRow(r) {
				out.HeadData = append(out.HeadData, row)
			} else {
				out.BodyData = append(out.BodyData, row)
			}
		}
	}

	out.StyleIDs = s.usedStyles()
	return out, nil
}

// ExtractAll extracts every sheet of the file addressed by d as a whole.
func (e *Extractor) ExtractAll(f *excelize.File, d dsn.DSN, src Source) ([]*Extraction, error) {
	sheets := f.GetSheetList()
	out := make([]*Extraction, 0, len(sheets))
	for i := range sheets {
		ex, err := e.Extract(f, d.WithSheet(i), src)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}

type position struct {
	col, row int
}

type anchor struct {
	origin  position
	rowSpan int
	colSpan int
}

// sheet is the per-call view of one worksheet.
type sheet struct {
	file     *excelize.File
	name     string
	opts     Options
	values   [][]string
	raw      [][]string
	merges   []dsn.CellRange
	styles   *style.Resolver
	styleIDs map[int]struct{}
}

func (e *Extractor) load(f *excelize.File, name string) (*sheet, error) {
	values, err := f.GetRows(name)
	if err != nil {
		return nil, NewError(name, ComponentCells, err)
	}
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, NewError(name, ComponentCells, err)
	}

	mergeCells, err := f.GetMergeCells(name)
	if err != nil {
		return nil, NewError(name, ComponentMerges, err)
	}
	merges := make([]dsn.CellRange, 0, len(mergeCells))
	for _, mc := range mergeCells {
		sc, sr, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, NewError(name, ComponentMerges, err)
		}
		ec, er, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, NewError(name, ComponentMerges, err)
		}
		merges = append(merges, dsn.CellRange{StartCol: sc, StartRow: sr, EndCol: ec, EndRow: er})
	}

	return &sheet{
		file:     f,
		name:     name,
		opts:     e.opts,
		values:   values,
		raw:      raw,
		merges:   merges,
		styles:   style.NewResolver(f),
		styleIDs: make(map[int]struct{}),
	}, nil
}

// dimension is the used area, taking merges into account.
func (s *sheet) dimension() (maxCol, maxRow int) {
	maxRow = len(s.values)
	for _, row := range s.values {
		maxCol = max(maxCol, len(row))
	}
	for _, m := range s.merges {
		maxCol = max(maxCol, m.EndCol)
		maxRow = max(maxRow, m.EndRow)
	}
	return maxCol, maxRow
}

// resolveRange returns the closed range to read, clipped to the sheet
// dimension. ok is false for an empty sheet or a range outside the used area.
func (s *sheet) resolveRange(r string) (rng dsn.CellRange, ok bool, err error) {
	maxCol, maxRow := s.dimension()
	used := dsn.CellRange{StartCol: 1, StartRow: 1, EndCol: maxCol, EndRow: maxRow}
	if r == "" {
		if maxCol == 0 || maxRow == 0 {
			return dsn.CellRange{}, false, nil
		}
		return used, true, nil
	}

	rng, err = dsn.ParseRange(r)
	if err != nil {
		return dsn.CellRange{}, false, err
	}
	if maxCol == 0 || maxRow == 0 {
		return dsn.CellRange{}, false, nil
	}
	if rng.IsOpen() {
		rng = rng.Complete(maxCol, maxRow)
	}
	rng, ok = rng.Intersect(used)
	return rng, ok, nil
}

func (s *sheet) mergeLayout(rng dsn.CellRange) (map[position]anchor, map[position]bool) {
	anchors := make(map[position]anchor)
	covered := make(map[position]bool)
	for _, m := range s.merges {
		clip, ok := m.Intersect(rng)
		if !ok {
			continue
		}
		first := position{clip.StartCol, clip.StartRow}
		anchors[first] = anchor{
			origin:  position{m.StartCol, m.StartRow},
			rowSpan: clip.EndRow - clip.StartRow + 1,
			colSpan: clip.EndCol - clip.StartCol + 1,
		}
		for r := clip.StartRow; r <= clip.EndRow; r++ {
			for c := clip.StartCol; c <= clip.EndCol; c++ {
				if p := (position{c, r}); p != first {
					covered[p] = true
				}
			}
		}
	}
	return anchors, covered
}

func (s *sheet) cell(col, row int, anchors map[position]anchor) (Cell, error) {
	origin := position{col, row}
	rowSpan, colSpan := 1, 1
	if a, ok := anchors[origin]; ok {
		origin, rowSpan, colSpan = a.origin, a.rowSpan, a.colSpan
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, NewError(s.name, ComponentCells, err)
	}
	srcRef := ref
	if origin.col != col || origin.row != row {
		if srcRef, err = excelize.CoordinatesToCellName(origin.col, origin.row); err != nil {
			return Cell{}, NewError(s.name, ComponentCells, err)
		}
	}

	c := Cell{
		Ref:      ref,
		Row:      row,
		Column:   col,
		Value:    lookup(s.values, origin),
		RawValue: lookup(s.raw, origin),
		RowSpan:  rowSpan,
		ColSpan:  colSpan,
	}
	if c.DataType, err = s.dataType(srcRef, c.RawValue); err != nil {
		return Cell{}, NewError(s.name, ComponentCells, err)
	}

	if err := s.applyStyle(&c, srcRef); err != nil {
		return Cell{}, err
	}

	if s.opts.IncludeHyperlinks {
		ok, target, err := s.file.GetCellHyperLink(s.name, srcRef)
		if err != nil {
			return Cell{}, NewError(s.name, ComponentCells, err)
		}
		if ok {
			c.Hyperlink = target
		}
	}

	if s.opts.IncludeRichText && c.DataType == TypeString {
		runs, err := s.file.GetCellRichText(s.name, srcRef)
		if err != nil {
			return Cell{}, NewError(s.name, ComponentCells, err)
		}
		c.RichText = richTextRuns(runs)
	}
	return c, nil
}

func (s *sheet) applyStyle(c *Cell, ref string) error {
	id, err := s.file.GetCellStyle(s.name, ref)
	if err != nil {
		return NewError(s.name, ComponentStyles, err)
	}
	if id == 0 {
		return nil
	}

	tmpl, err := s.styles.Template(id)
	if err != nil {
		return NewError(s.name, ComponentStyles, err)
	}
	c.Superscript = tmpl.IsSuperscript()
	c.Subscript = tmpl.IsSubscript()

	if s.opts.IncludeStyles {
		c.StyleID = id
		c.Class = style.ClassName(id)
		s.styleIDs[id] = struct{}{}
	}
	return nil
}

func (s *sheet) dataType(ref, raw string) (string, error) {
	if raw == "" {
		return TypeEmpty, nil
	}
	ct, err := s.file.GetCellType(s.name, ref)
	if err != nil {
		return "", err
	}
	switch ct {
	case excelize.CellTypeBool:
		return TypeBoolean, nil
	case excelize.CellTypeDate:
		return TypeDate, nil
	case excelize.CellTypeError:
		return TypeError, nil
	case excelize.CellTypeNumber:
		return TypeNumber, nil
	case excelize.CellTypeFormula, excelize.CellTypeInlineString, excelize.CellTypeSharedString:
		return TypeString, nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return TypeNumber, nil
	}
	return TypeString, nil
}

func (s *sheet) usedStyles() []int {
	if len(s.styleIDs) == 0 {
		return nil
	}
	ids := make([]int, 0, len(s.styleIDs))
	for id := range s.styleIDs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func lookup(grid [][]string, p position) string {
	if p.row < 1 || p.row > len(grid) {
		return ""
	}
	row := grid[p.row-1]
	if p.col < 1 || p.col > len(row) {
		return ""
	}
	return row[p.col-1]
}

// richTextRuns keeps runs only when at least one carries its own font.
func richTextRuns(runs []excelize.RichTextRun) []RichTextRun {
	styled := false
	for _, r := range runs {
		if r.Font != nil {
			styled = true
			break
		}
	}
	if !styled {
		return nil
	}

	out := make([]RichTextRun, 0, len(runs))
	for _, r := range runs {
		out = append(out, RichTextRun{Text: r.Text, Font: style.FromFont(r.Font)})
	}
	return out
}
