package service

import (
	"context"
	"fmt"

	"github.com/locvowork/spreadsheets/internal/domain"
	"github.com/locvowork/spreadsheets/internal/logger"
	"github.com/locvowork/spreadsheets/pkg/dsn"
	"github.com/locvowork/spreadsheets/pkg/extract"
	"github.com/locvowork/spreadsheets/pkg/style"
	"github.com/xuri/excelize/v2"
)

type ExtractorService interface {
	// GetDataByDSN extracts the selection of d. The caller closes the returned file.
	GetDataByDSN(ctx context.Context, d dsn.DSN) (*extract.Extraction, *excelize.File, error)
	// GetAllByDSN extracts every sheet of the file of d. The caller closes the returned file.
	GetAllByDSN(ctx context.Context, d dsn.DSN) ([]*extract.Extraction, *excelize.File, error)
	GetStylesheet(ctx context.Context, f *excelize.File, scope, additional string, extractions ...*extract.Extraction) (string, error)
}

type extractorService struct {
	repo      domain.FileReferenceRepository
	reader    ReaderService
	extractor *extract.Extractor
	styles    *style.Service
}

func NewExtractorService(repo domain.FileReferenceRepository, reader ReaderService, extractor *extract.Extractor, styles *style.Service) ExtractorService {
	return &extractorService{
		repo:      repo,
		reader:    reader,
		extractor: extractor,
		styles:    styles,
	}
}

func (s *extractorService) open(ctx context.Context, d dsn.DSN) (*excelize.File, extract.Source, error) {
	if err := d.Validate(); err != nil {
		return nil, extract.Source{}, err
	}
	ref, err := s.repo.GetByUID(ctx, d.FileUID)
	if err != nil {
		return nil, extract.Source{}, fmt.Errorf("failed to get file reference %d: %w", d.FileUID, err)
	}
	f, err := s.reader.GetSpreadsheet(ctx, *ref)
	if err != nil {
		return nil, extract.Source{}, err
	}
	return f, extract.Source{FileUID: ref.UID, Name: ref.DisplayName()}, nil
}

func (s *extractorService) GetDataByDSN(ctx context.Context, d dsn.DSN) (*extract.Extraction, *excelize.File, error) {
	f, src, err := s.open(ctx, d)
	if err != nil {
		return nil, nil, err
	}

	ex, err := s.extractor.Extract(f, d, src)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	logger.DebugLog(ctx, "extracted %d head and %d body rows from %s", len(ex.HeadData), len(ex.BodyData), d.String())
	return ex, f, nil
}

func (s *extractorService) GetAllByDSN(ctx context.Context, d dsn.DSN) ([]*extract.Extraction, *excelize.File, error) {
	f, src, err := s.open(ctx, d)
	if err != nil {
		return nil, nil, err
	}

	all, err := s.extractor.ExtractAll(f, d, src)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return all, f, nil
}

// GetStylesheet builds the CSS for the styles used by extractions and appends
// additional.
func (s *extractorService) GetStylesheet(ctx context.Context, f *excelize.File, scope, additional string, extractions ...*extract.Extraction) (string, error) {
	var ids []int
	for _, ex := range extractions {
		if ex != nil {
			ids = append(ids, ex.StyleIDs...)
		}
	}
	css, err := s.styles.Stylesheet(f, ids, scope)
	if err != nil {
		return "", fmt.Errorf("failed to build stylesheet: %w", err)
	}
	return s.styles.Compose(css, additional), nil
}
