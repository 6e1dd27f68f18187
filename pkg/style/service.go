package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Resolver looks up cell style templates of one workbook, caching by style id.
type Resolver struct {
	file  *excelize.File
	cache map[int]*Template
}

func NewResolver(f *excelize.File) *Resolver {
	return &Resolver{
		file:  f,
		cache: make(map[int]*Template),
	}
}

// Template returns the template for a style id. Id 0 is the workbook default.
func (r *Resolver) Template(id int) (*Template, error) {
	if t, ok := r.cache[id]; ok {
		return t, nil
	}
	s, err := r.file.GetStyle(id)
	if err != nil {
		return nil, fmt.Errorf("get style %d: %w", id, err)
	}
	t := FromExcelize(s)
	r.cache[id] = t
	return t, nil
}

// Service turns workbook styles into stylesheets.
type Service struct {
	// DefaultScope prefixes rules when no scope is given.
	DefaultScope string
}

func NewService(defaultScope string) *Service {
	return &Service{DefaultScope: defaultScope}
}

// Stylesheet returns one CSS rule per style id, `<scope> .cell-style-<id> { ... }`.
// Ids without any visible declaration are skipped.
func (s *Service) Stylesheet(f *excelize.File, ids []int, scope string) (string, error) {
	if f == nil || len(ids) == 0 {
		return "", nil
	}
	if scope == "" {
		scope = s.DefaultScope
	}

	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)

	r := NewResolver(f)
	var sb strings.Builder
	last := -1
	for _, id := range sorted {
		if id == last {
			continue
		}
		last = id

		t, err := r.Template(id)
		if err != nil {
			return "", err
		}
		css := t.CSS()
		if css == "" {
			continue
		}
		selector := "." + ClassName(id)
		if scope != "" {
			selector = scope + " " + selector
		}
		fmt.Fprintf(&sb, "%s { %s }\n", selector, css)
	}
	return sb.String(), nil
}

// Compose appends editor supplied CSS to a generated stylesheet. Any '<' in
// the additional CSS is escaped so it cannot close a surrounding style element.
func (s *Service) Compose(sheetCSS, additional string) string {
	additional = EscapeCSS(strings.TrimSpace(additional))
	if additional == "" {
		return sheetCSS
	}
	if sheetCSS == "" {
		return additional + "\n"
	}
	if !strings.HasSuffix(sheetCSS, "\n") {
		sheetCSS += "\n"
	}
	return sheetCSS + additional + "\n"
}

// EscapeCSS rewrites '<' as the CSS escape `\3C `.
func EscapeCSS(css string) string {
	return strings.ReplaceAll(css, "<", `\3C `)
}
