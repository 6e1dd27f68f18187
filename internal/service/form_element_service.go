package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/locvowork/spreadsheets/internal/domain"
	"github.com/locvowork/spreadsheets/internal/logger"
	"github.com/locvowork/spreadsheets/pkg/dsn"
	"github.com/locvowork/spreadsheets/pkg/extract"
)

const DefaultInputSize = 30

// FieldConfig is the form field configuration echoed back to the editor.
type FieldConfig struct {
	UploadField string `json:"uploadField"`
	SheetsOnly  bool   `json:"sheetsOnly"`
	Size        int    `json:"size,omitempty"`
	Template    string `json:"template,omitempty"`
}

// FormElementRequest describes the form element of one record field.
type FormElementRequest struct {
	TableName       string                 `json:"tableName"`
	Record          map[string]interface{} `json:"record"`
	Columns         []string               `json:"columns"`
	ItemFormElName  string                 `json:"itemFormElName"`
	ItemFormElValue string                 `json:"itemFormElValue"`
	Config          FieldConfig            `json:"config"`
}

type SheetFile struct {
	Ext string `json:"ext"`
}

type SheetInfo struct {
	Name  string        `json:"name"`
	Cells []extract.Row `json:"cells"`
}

// FormElementResult is the data the range picker is rendered from.
type FormElementResult struct {
	InputSize          int                   `json:"inputSize"`
	MissingUploadField bool                  `json:"missingUploadField,omitempty"`
	NonValidReferences bool                  `json:"nonValidReferences,omitempty"`
	InputName          string                `json:"inputName,omitempty"`
	Config             *FieldConfig          `json:"config,omitempty"`
	SheetFiles         map[int64]SheetFile   `json:"sheetFiles,omitempty"`
	SheetData          map[int64][]SheetInfo `json:"sheetData,omitempty"`
	ValueObject        *string               `json:"valueObject,omitempty"`
}

type FormElementService interface {
	Render(ctx context.Context, req FormElementRequest) (*FormElementResult, error)
}

type formElementService struct {
	repo      domain.FileReferenceRepository
	reader    ReaderService
	extractor *extract.Extractor
}

func NewFormElementService(repo domain.FileReferenceRepository, reader ReaderService, extractor *extract.Extractor) FormElementService {
	return &formElementService{repo: repo, reader: reader, extractor: extractor}
}

func (s *formElementService) Render(ctx context.Context, req FormElementRequest) (*FormElementResult, error) {
	result := &FormElementResult{InputSize: req.Config.Size}
	if result.InputSize <= 0 {
		result.InputSize = DefaultInputSize
	}

	if !hasColumn(req.Columns, req.Config.UploadField) {
		result.MissingUploadField = true
		return result, nil
	}

	refs, err := s.validReferences(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		result.NonValidReferences = true
		return result, nil
	}

	cfg := req.Config
	result.InputName = req.ItemFormElName
	result.Config = &cfg
	result.SheetFiles = make(map[int64]SheetFile, len(refs))
	result.SheetData = make(map[int64][]SheetInfo, len(refs))

	for _, ref := range refs {
		result.SheetFiles[ref.UID] = SheetFile{Ext: ref.FileExtension()}

		sheets, err := s.sheetData(ctx, ref, req.Config.SheetsOnly)
		if err != nil {
			logger.WarnLog(ctx, "failed to read file reference %d: %v", ref.UID, err)
			continue
		}
		result.SheetData[ref.UID] = sheets
	}

	value := ""
	if d, err := dsn.Parse(req.ItemFormElValue); err == nil {
		value = d.String()
	}
	result.ValueObject = &value
	return result, nil
}

func (s *formElementService) validReferences(ctx context.Context, req FormElementRequest) ([]domain.FileReference, error) {
	recordUID, ok := recordUID(req.Record)
	if !ok {
		return nil, nil
	}
	refs, err := s.repo.ListByRecord(ctx, req.TableName, req.Config.UploadField, recordUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list file references: %w", err)
	}

	valid := refs[:0]
	for _, ref := range refs {
		if s.reader.IsSupported(ref.FileExtension()) {
			valid = append(valid, ref)
		}
	}
	return valid, nil
}

func (s *formElementService) sheetData(ctx context.Context, ref domain.FileReference, sheetsOnly bool) ([]SheetInfo, error) {
	f, err := s.reader.GetSpreadsheet(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src := extract.Source{FileUID: ref.UID, Name: ref.DisplayName()}
	names := f.GetSheetList()
	out := make([]SheetInfo, 0, len(names))
	for i, name := range names {
		info := SheetInfo{Name: name, Cells: []extract.Row{}}
		if !sheetsOnly {
			d, err := dsn.New(ref.UID, i, "", dsn.DirectionHorizontal)
			if err != nil {
				return nil, err
			}
			ex, err := s.extractor.Extract(f, d, src)
			if err != nil {
				return nil, err
			}
			info.Cells = ex.Rows()
		}
		out = append(out, info)
	}
	return out, nil
}

func hasColumn(columns []string, name string) bool {
	if name == "" {
		return false
	}
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}

func recordUID(record map[string]interface{}) (int64, bool) {
	switch v := record["uid"].(type) {
	case int:
		return int64(v), v > 0
	case int64:
		return v, v > 0
	case float64:
		return int64(v), v > 0
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil && n > 0
	}
	return 0, false
}
