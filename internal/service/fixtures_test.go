package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/locvowork/spreadsheets/internal/domain"
	"github.com/locvowork/spreadsheets/internal/repository"
	"github.com/locvowork/spreadsheets/pkg/extract"
	"github.com/locvowork/spreadsheets/pkg/style"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxUID    int64 = 465
	csvUID     int64 = 466
	pdfUID     int64 = 589
	brokenUID  int64 = 678
	missingUID int64 = 700
)

// writeFixture stores a workbook with two sheets:
//
//	Fixture1: A1 Name (bold), B1 Qty / A2 Apple, B2 5
//	Fixture2: A1 other
func writeFixture(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Fixture1"))
	_, err := f.NewSheet("Fixture2")
	require.NoError(t, err)

	require.NoError(t, f.SetSheetRow("Fixture1", "A1", &[]interface{}{"Name", "Qty"}))
	require.NoError(t, f.SetSheetRow("Fixture1", "A2", &[]interface{}{"Apple", 5}))
	require.NoError(t, f.SetCellValue("Fixture2", "A1", "other"))

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Fixture1", "A1", "A1", bold))

	require.NoError(t, f.SaveAs(path))
}

type fixture struct {
	root   string
	repo   domain.FileReferenceRepository
	reader ReaderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	writeFixture(t, filepath.Join(root, "report.xlsx"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data.csv"), []byte("city,count\nBerlin,3\n\"Köln, NRW\",4\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.xlsx"), []byte("not a zip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "manual.pdf"), []byte("%PDF"), 0o644))

	ref := func(uid int64, record int64, identifier string) domain.FileReference {
		return domain.FileReference{
			UID:        uid,
			TableName:  "tt_content",
			FieldName:  "assets",
			RecordUID:  record,
			Identifier: identifier,
		}
	}
	repo := repository.NewMemoryFileReferenceRepository(
		ref(xlsxUID, 1, "report.xlsx"),
		ref(csvUID, 5, "data.csv"),
		ref(pdfUID, 2, "manual.pdf"),
		ref(brokenUID, 3, "broken.xlsx"),
		ref(missingUID, 4, "gone.xlsx"),
	)

	return &fixture{root: root, repo: repo, reader: NewReaderService(root)}
}

func (fx *fixture) extractorService() ExtractorService {
	return NewExtractorService(fx.repo, fx.reader, extract.New(), style.NewService(".spreadsheet"))
}
