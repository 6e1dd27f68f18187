package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/locvowork/spreadsheets/internal/domain"
	"github.com/locvowork/spreadsheets/internal/logger"
	"github.com/xuri/excelize/v2"
)

// SupportedExtensions lists the file types the reader can open.
var SupportedExtensions = []string{"xlsx", "xlsm", "xltx", "xltm", "csv"}

const csvSheetName = "Sheet1"

type ReaderService interface {
	GetSpreadsheet(ctx context.Context, ref domain.FileReference) (*excelize.File, error)
	SheetNames(ctx context.Context, ref domain.FileReference) ([]string, error)
	IsSupported(ext string) bool
}

type readerService struct {
	root string
}

// NewReaderService opens files stored below root.
func NewReaderService(root string) ReaderService {
	return &readerService{root: root}
}

func (s *readerService) IsSupported(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// GetSpreadsheet opens the file of ref. The caller closes the returned file.
func (s *readerService) GetSpreadsheet(ctx context.Context, ref domain.FileReference) (*excelize.File, error) {
	ext := ref.FileExtension()
	if !s.IsSupported(ext) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, ext)
	}

	path, err := s.resolve(ref.Identifier)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, ref.Identifier)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref.Identifier, err)
	}

	logger.DebugLog(ctx, "opening spreadsheet %s (%d bytes)", ref.Identifier, len(data))
	if ext == "csv" {
		return csvToWorkbook(data)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", ref.Identifier, err)
	}
	return f, nil
}

func (s *readerService) SheetNames(ctx context.Context, ref domain.FileReference) ([]string, error) {
	f, err := s.GetSpreadsheet(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (s *readerService) resolve(identifier string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(identifier, "/"))
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: identifier %q leaves the storage root", domain.ErrInvalidInput, identifier)
	}
	return filepath.Join(s.root, rel), nil
}

// csvToWorkbook copies CSV records into the first sheet of a new workbook.
// csvValue returns value as a number when it reads back as the same text, so
// "5" and "-1.25" are typed while "007" and "1e3" stay strings.
func csvValue(value string) interface{} {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return value
	}
	if strconv.FormatFloat(n, 'f', -1, 64) != value {
		return value
	}
	return n
}

func csvToWorkbook(data []byte) (*excelize.File, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	f := excelize.NewFile()
	for i, record := range records {
		for j, value := range record {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(csvSheetName, cell, csvValue(value)); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}
