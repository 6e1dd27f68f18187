// Package dsn parses and serialises the data source notation used to address
// a cell range inside an uploaded spreadsheet file.
//
// Canonical form:
//
//	spreadsheet://<fileUid>?index=<sheetIndex>&range=<A1:B2>&direction=<horizontal|vertical>
//
// The legacy form `file:<fileUid>|<sheetIndex>!<range>!<direction>` is still
// accepted when reading stored values.
package dsn

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	Scheme       = "spreadsheet"
	legacyPrefix = "file:"
)

// ErrInvalidDSN is returned for any value that cannot be resolved to a DSN.
var ErrInvalidDSN = errors.New("invalid spreadsheet dsn")

// Direction controls whether rows or columns of the selection become output rows.
type Direction string

const (
	DirectionHorizontal Direction = "horizontal"
	DirectionVertical   Direction = "vertical"
)

// ParseDirection returns the direction for s. An empty value is horizontal.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", DirectionHorizontal:
		return DirectionHorizontal, nil
	case DirectionVertical:
		return DirectionVertical, nil
	}
	return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidDSN, s)
}

// DSN is the normalised address of a cell selection. Direction is required:
// a zero Direction fails Validate, and New or Parse always set it.
type DSN struct {
	FileUID    int64     `json:"fileUid"`
	SheetIndex int       `json:"sheetIndex"`
	Range      string    `json:"range"`
	Direction  Direction `json:"direction"`
}

// New returns a validated DSN. The range is normalised like a parsed one and
// an empty direction becomes horizontal.
func New(fileUID int64, sheetIndex int, cellRange string, direction Direction) (DSN, error) {
	dir, err := ParseDirection(string(direction))
	if err != nil {
		return DSN{}, err
	}
	d := DSN{
		FileUID:    fileUID,
		SheetIndex: sheetIndex,
		Range:      normalizeRange(cellRange),
		Direction:  dir,
	}
	return d, d.Validate()
}

// Parse reads a canonical or legacy DSN string.
func Parse(s string) (DSN, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return DSN{}, fmt.Errorf("%w: empty value", ErrInvalidDSN)
	case strings.HasPrefix(s, Scheme+"://"):
		return parseCanonical(s)
	case strings.HasPrefix(s, legacyPrefix):
		return parseLegacy(strings.TrimPrefix(s, legacyPrefix))
	}
	return DSN{}, fmt.Errorf("%w: unknown scheme in %q", ErrInvalidDSN, s)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) DSN {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func parseCanonical(s string) (DSN, error) {
	u, err := url.Parse(s)
	if err != nil {
		return DSN{}, fmt.Errorf("%w: %v", ErrInvalidDSN, err)
	}

	uid, err := parseFileUID(u.Host)
	if err != nil {
		return DSN{}, err
	}

	q := u.Query()
	index, err := parseIndex(q.Get("index"))
	if err != nil {
		return DSN{}, err
	}
	direction, err := ParseDirection(q.Get("direction"))
	if err != nil {
		return DSN{}, err
	}

	d := DSN{
		FileUID:    uid,
		SheetIndex: index,
		Range:      normalizeRange(q.Get("range")),
		Direction:  direction,
	}
	return d, d.Validate()
}

// parseLegacy reads `<uid>|<index>[!<range>][!<direction>]`.
func parseLegacy(s string) (DSN, error) {
	uidPart, rest, _ := strings.Cut(s, "|")
	uid, err := parseFileUID(uidPart)
	if err != nil {
		return DSN{}, err
	}

	parts := strings.Split(rest, "!")
	index, err := parseIndex(parts[0])
	if err != nil {
		return DSN{}, err
	}

	d := DSN{FileUID: uid, SheetIndex: index, Direction: DirectionHorizontal}
	seenDirection := false
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if dir, err := ParseDirection(part); err == nil {
			if seenDirection {
				return DSN{}, fmt.Errorf("%w: repeated direction %q", ErrInvalidDSN, part)
			}
			d.Direction, seenDirection = dir, true
			continue
		}
		if d.Range != "" {
			return DSN{}, fmt.Errorf("%w: unexpected segment %q", ErrInvalidDSN, part)
		}
		d.Range = normalizeRange(part)
	}
	return d, d.Validate()
}

func parseFileUID(s string) (int64, error) {
	uid, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || uid <= 0 {
		return 0, fmt.Errorf("%w: file uid %q must be a positive integer", ErrInvalidDSN, s)
	}
	return uid, nil
}

func parseIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	index, err := strconv.Atoi(s)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("%w: sheet index %q must be a non-negative integer", ErrInvalidDSN, s)
	}
	return index, nil
}

func normalizeRange(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "$", "")
}

// Validate checks the field invariants of d.
func (d DSN) Validate() error {
	if d.FileUID <= 0 {
		return fmt.Errorf("%w: missing file uid", ErrInvalidDSN)
	}
	if d.SheetIndex < 0 {
		return fmt.Errorf("%w: negative sheet index", ErrInvalidDSN)
	}
	if d.Direction != DirectionHorizontal && d.Direction != DirectionVertical {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidDSN, d.Direction)
	}
	if d.Range != "" {
		if _, err := ParseRange(d.Range); err != nil {
			return err
		}
	}
	return nil
}

// IsVertical reports whether columns become output rows.
func (d DSN) IsVertical() bool {
	return d.Direction == DirectionVertical
}

// WithSheet returns a copy of d addressing another sheet of the same file
// with no range selection.
func (d DSN) WithSheet(index int) DSN {
	d.SheetIndex = index
	d.Range = ""
	return d
}

// String returns the canonical form of d. A zero Direction is written as
// horizontal.
func (d DSN) String() string {
	direction := d.Direction
	if direction == "" {
		direction = DirectionHorizontal
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s://%d?index=%d", Scheme, d.FileUID, d.SheetIndex)
	if d.Range != "" {
		sb.WriteString("&range=" + url.QueryEscape(d.Range))
	}
	sb.WriteString("&direction=" + string(direction))
	return sb.String()
}
