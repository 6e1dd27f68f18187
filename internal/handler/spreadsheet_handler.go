package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/spreadsheets/internal/config"
	"github.com/locvowork/spreadsheets/internal/domain"
	"github.com/locvowork/spreadsheets/internal/logger"
	"github.com/locvowork/spreadsheets/internal/service"
	"github.com/locvowork/spreadsheets/internal/service/serviceutils"
	"github.com/locvowork/spreadsheets/pkg/dsn"
)

type SpreadsheetHandler struct {
	repo       domain.FileReferenceRepository
	reader     service.ReaderService
	processor  service.ProcessorService
	form       service.FormElementService
	processors *config.ProcessorDefinitions
}

func NewSpreadsheetHandler(
	repo domain.FileReferenceRepository,
	reader service.ReaderService,
	processor service.ProcessorService,
	form service.FormElementService,
	processors *config.ProcessorDefinitions,
) *SpreadsheetHandler {
	return &SpreadsheetHandler{
		repo:       repo,
		reader:     reader,
		processor:  processor,
		form:       form,
		processors: processors,
	}
}

type dsnResponse struct {
	dsn.DSN
	Value string `json:"value"`
}

type processRequest struct {
	Record map[string]string      `json:"record"`
	Data   map[string]interface{} `json:"data"`
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrFileReferenceNotFound), errors.Is(err, domain.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, dsn.ErrInvalidDSN):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ParseDSNHandler normalises the DSN given in the value query parameter.
func (h *SpreadsheetHandler) ParseDSNHandler(c echo.Context) error {
	d, err := dsn.Parse(c.QueryParam("value"))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid spreadsheet DSN", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "DSN parsed successfully", dsnResponse{DSN: d, Value: d.String()})
}

func (h *SpreadsheetHandler) SheetsHandler(c echo.Context) error {
	ctx := c.Request().Context()

	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid file reference uid", err)
	}

	ref, err := h.repo.GetByUID(ctx, uid)
	if err != nil {
		return serviceutils.ResponseError(c, errorStatus(err), "Failed to get file reference", err)
	}

	names, err := h.reader.SheetNames(ctx, *ref)
	if err != nil {
		logger.ErrorLog(ctx, "failed to read sheets of file reference %d: %v", uid, err)
		return serviceutils.ResponseError(c, errorStatus(err), "Failed to read spreadsheet", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Sheets retrieved successfully", names)
}

func (h *SpreadsheetHandler) FormElementHandler(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.FormElementRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	res, err := h.form.Render(ctx, req)
	if err != nil {
		logger.ErrorLog(ctx, "failed to render form element for %s: %v", req.TableName, err)
		return serviceutils.ResponseError(c, errorStatus(err), "Failed to render form element", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Form element rendered successfully", res)
}

// ProcessHandler runs the named processor definition against the posted record.
func (h *SpreadsheetHandler) ProcessHandler(c echo.Context) error {
	ctx := c.Request().Context()

	name := c.Param("processor")
	cfg, ok := h.processors.Get(name)
	if !ok {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Unknown processor "+name, nil)
	}

	var req processRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}
	if req.Data == nil {
		req.Data = map[string]interface{}{}
	}

	out := h.processor.Process(ctx, cfg, req.Record, req.Data)
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Processed successfully", out)
}
