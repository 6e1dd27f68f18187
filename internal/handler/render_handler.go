package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/spreadsheets/internal/logger"
	"github.com/locvowork/spreadsheets/internal/service"
	"github.com/locvowork/spreadsheets/pkg/dsn"
	"github.com/locvowork/spreadsheets/pkg/render"
)

// RenderHandler serves spreadsheet selections as HTML fragments. Anything that
// cannot be resolved renders nothing.
type RenderHandler struct {
	extractor service.ExtractorService
	scope     string
}

func NewRenderHandler(extractor service.ExtractorService, scope string) *RenderHandler {
	return &RenderHandler{extractor: extractor, scope: scope}
}

func boolParam(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	return err == nil && v
}

func (h *RenderHandler) tableOptions(c echo.Context) render.TableOptions {
	return render.TableOptions{
		ID:             c.QueryParam("id"),
		Class:          c.QueryParam("class"),
		Caption:        c.QueryParam("caption"),
		HeaderPosition: c.QueryParam("headerPosition"),
		Footer:         boolParam(c, "footer"),
	}
}

func (h *RenderHandler) TableHandler(c echo.Context) error {
	ctx := c.Request().Context()

	d, err := dsn.Parse(c.QueryParam("dsn"))
	if err != nil {
		logger.DebugLog(ctx, "render table: %v", err)
		return c.NoContent(http.StatusNoContent)
	}

	ex, f, err := h.extractor.GetDataByDSN(ctx, d)
	if err != nil {
		logger.WarnLog(ctx, "render table %s: %v", d.String(), err)
		return c.NoContent(http.StatusNoContent)
	}
	defer f.Close()

	opts := h.tableOptions(c)
	if !boolParam(c, "ignoreStyles") {
		css, err := h.extractor.GetStylesheet(ctx, f, h.scope, "", ex)
		if err != nil {
			logger.WarnLog(ctx, "render table styles %s: %v", d.String(), err)
		}
		opts.Styles = css
	}

	var buf bytes.Buffer
	if err := render.Table(&buf, render.FromExtraction(ex), opts); err != nil {
		logger.ErrorLog(ctx, "render table %s: %v", d.String(), err)
		return c.NoContent(http.StatusNoContent)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *RenderHandler) TabsHandler(c echo.Context) error {
	ctx := c.Request().Context()

	d, err := dsn.Parse(c.QueryParam("dsn"))
	if err != nil {
		logger.DebugLog(ctx, "render tabs: %v", err)
		return c.NoContent(http.StatusNoContent)
	}

	all, f, err := h.extractor.GetAllByDSN(ctx, d)
	if err != nil {
		logger.WarnLog(ctx, "render tabs %s: %v", d.String(), err)
		return c.NoContent(http.StatusNoContent)
	}
	defer f.Close()

	opts := h.tableOptions(c)
	if !boolParam(c, "ignoreStyles") {
		css, err := h.extractor.GetStylesheet(ctx, f, h.scope, "", all...)
		if err != nil {
			logger.WarnLog(ctx, "render tabs styles %s: %v", d.String(), err)
		}
		opts.Styles = css
	}

	tabs := make([]render.TabData, 0, len(all))
	for _, ex := range all {
		tabs = append(tabs, render.TabData{Title: ex.SheetName, Data: render.FromExtraction(ex)})
	}

	var buf bytes.Buffer
	if err := render.Tabs(&buf, tabs, opts); err != nil {
		logger.ErrorLog(ctx, "render tabs %s: %v", d.String(), err)
		return c.NoContent(http.StatusNoContent)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
