package service

import (
	"context"

	"github.com/locvowork/spreadsheets/internal/config"
	"github.com/locvowork/spreadsheets/internal/logger"
	"github.com/locvowork/spreadsheets/pkg/dsn"
	"github.com/locvowork/spreadsheets/pkg/extract"
)

const (
	DefaultSpreadsheetVariable = "spreadsheets"
	DefaultTabsVariable        = "sheets"
	StylesheetVariable         = "stylesheet"
)

// ProcessedSpreadsheet is the single range result of a processor.
type ProcessedSpreadsheet struct {
	SheetIndex int           `json:"sheetIndex"`
	SheetName  string        `json:"sheetName"`
	FileUID    int64         `json:"fileUid"`
	HeadData   []extract.Row `json:"headData"`
	BodyData   []extract.Row `json:"bodyData"`
}

// ProcessedSheet is one sheet of a tabs processor result.
type ProcessedSheet struct {
	SheetName string        `json:"sheetName"`
	HeadData  []extract.Row `json:"headData"`
	BodyData  []extract.Row `json:"bodyData"`
}

type ProcessorService interface {
	// Process resolves the value of cfg against record and returns processedData
	// extended by the extraction. Failures leave processedData unchanged.
	Process(ctx context.Context, cfg config.ProcessorConfig, record map[string]string, processedData map[string]interface{}) map[string]interface{}
	ProcessTabs(ctx context.Context, cfg config.ProcessorConfig, record map[string]string, processedData map[string]interface{}) map[string]interface{}
}

type processorService struct {
	extractor ExtractorService
	scope     string
}

func NewProcessorService(extractor ExtractorService, scope string) ProcessorService {
	return &processorService{extractor: extractor, scope: scope}
}

func (s *processorService) resolveDSN(ctx context.Context, cfg config.ProcessorConfig, record map[string]string) (dsn.DSN, bool) {
	value := cfg.Value
	if value == "" && cfg.Field != "" {
		value = record[cfg.Field]
	}
	if value == "" {
		return dsn.DSN{}, false
	}
	d, err := dsn.Parse(value)
	if err != nil {
		logger.DebugLog(ctx, "skipping processor value %q: %v", value, err)
		return dsn.DSN{}, false
	}
	return d, true
}

func copyData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (s *processorService) Process(ctx context.Context, cfg config.ProcessorConfig, record map[string]string, processedData map[string]interface{}) map[string]interface{} {
	if cfg.Tabs {
		return s.ProcessTabs(ctx, cfg, record, processedData)
	}

	d, ok := s.resolveDSN(ctx, cfg, record)
	if !ok {
		return processedData
	}

	ex, f, err := s.extractor.GetDataByDSN(ctx, d)
	if err != nil {
		logger.ErrorLog(ctx, "failed to extract %s: %v", d.String(), err)
		return processedData
	}
	defer f.Close()

	out := copyData(processedData)
	as := cfg.As
	if as == "" {
		as = DefaultSpreadsheetVariable
	}
	out[as] = ProcessedSpreadsheet{
		SheetIndex: ex.SheetIndex,
		SheetName:  ex.SheetName,
		FileUID:    ex.Spreadsheet.FileUID,
		HeadData:   ex.HeadData,
		BodyData:   ex.BodyData,
	}

	if !cfg.Options.IgnoreStyles {
		css, err := s.extractor.GetStylesheet(ctx, f, s.scope, cfg.Options.AdditionalStyles, ex)
		if err != nil {
			logger.WarnLog(ctx, "failed to build stylesheet for %s: %v", d.String(), err)
		} else if css != "" {
			out[StylesheetVariable] = css
		}
	}
	return out
}

func (s *processorService) ProcessTabs(ctx context.Context, cfg config.ProcessorConfig, record map[string]string, processedData map[string]interface{}) map[string]interface{} {
	d, ok := s.resolveDSN(ctx, cfg, record)
	if !ok {
		return processedData
	}

	all, f, err := s.extractor.GetAllByDSN(ctx, d)
	if err != nil {
		logger.ErrorLog(ctx, "failed to extract sheets of file %d: %v", d.FileUID, err)
		return processedData
	}
	defer f.Close()

	sheets := make(map[int]ProcessedSheet, len(all))
	for _, ex := range all {
		sheets[ex.SheetIndex] = ProcessedSheet{
			SheetName: ex.SheetName,
			HeadData:  ex.HeadData,
			BodyData:  ex.BodyData,
		}
	}

	out := copyData(processedData)
	as := cfg.As
	if as == "" {
		as = DefaultTabsVariable
	}
	out[as] = sheets

	if !cfg.Options.IgnoreStyles {
		css, err := s.extractor.GetStylesheet(ctx, f, s.scope, cfg.Options.AdditionalStyles, all...)
		if err != nil {
			logger.WarnLog(ctx, "failed to build stylesheet for file %d: %v", d.FileUID, err)
		} else if css != "" {
			out[StylesheetVariable] = css
		}
	}
	return out
}
