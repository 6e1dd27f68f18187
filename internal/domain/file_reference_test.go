package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileReference_FileExtension(t *testing.T) {
	assert.Equal(t, "xlsx", FileReference{Extension: "XLSX"}.FileExtension())
	assert.Equal(t, "csv", FileReference{Extension: ".csv"}.FileExtension())
	assert.Equal(t, "xlsm", FileReference{Identifier: "user_upload/Report.XLSM"}.FileExtension())
	assert.Equal(t, "", FileReference{Identifier: "noext"}.FileExtension())
}

func TestFileReference_DisplayName(t *testing.T) {
	assert.Equal(t, "Budget", FileReference{Name: "Budget", Identifier: "a/b.xlsx"}.DisplayName())
	assert.Equal(t, "b.xlsx", FileReference{Identifier: "a/b.xlsx"}.DisplayName())
}
