package extract

import (
	"errors"
	"fmt"
)

// ErrSheetNotFound indicates the sheet index does not exist in the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

const (
	ComponentSheet  = "sheet"
	ComponentRange  = "range"
	ComponentCells  = "cells"
	ComponentMerges = "merges"
	ComponentStyles = "styles"
)

// Error represents a failure while extracting one part of a sheet.
type Error struct {
	Sheet     string
	Component string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction error in sheet %q (%s): %v", e.Sheet, e.Component, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error.
func NewError(sheet, component string, err error) *Error {
	return &Error{
		Sheet:     sheet,
		Component: component,
		Err:       err,
	}
}
