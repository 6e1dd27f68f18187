package service

import (
	"context"
	"testing"

	"github.com/locvowork/spreadsheets/pkg/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uploadField = "assets"

func formRequest(recordUID interface{}, value string) FormElementRequest {
	return FormElementRequest{
		TableName:       "tt_content",
		Record:          map[string]interface{}{"uid": recordUID},
		Columns:         []string{"header", uploadField},
		ItemFormElName:  "my-form-identifier",
		ItemFormElValue: value,
		Config:          FieldConfig{UploadField: uploadField, SheetsOnly: true, Size: 100},
	}
}

func TestFormElementService_Render(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	svc := NewFormElementService(fx.repo, fx.reader, extract.New())

	t.Run("missing upload field", func(t *testing.T) {
		req := formRequest(1, "")
		req.Columns = nil

		res, err := svc.Render(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, &FormElementResult{InputSize: 100, MissingUploadField: true}, res)
	})

	t.Run("empty references", func(t *testing.T) {
		res, err := svc.Render(ctx, formRequest(42, ""))
		require.NoError(t, err)
		assert.Equal(t, &FormElementResult{InputSize: 100, NonValidReferences: true}, res)
	})

	t.Run("missing record uid", func(t *testing.T) {
		res, err := svc.Render(ctx, formRequest(nil, ""))
		require.NoError(t, err)
		assert.True(t, res.NonValidReferences)
	})

	t.Run("no supported reference", func(t *testing.T) {
		res, err := svc.Render(ctx, formRequest(2, "spreadsheet://589?index=1&range=D2%3AG5&direction=vertical"))
		require.NoError(t, err)
		assert.Equal(t, &FormElementResult{InputSize: 100, NonValidReferences: true}, res)
	})

	t.Run("default input size", func(t *testing.T) {
		req := formRequest(2, "")
		req.Config.Size = 0

		res, err := svc.Render(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, DefaultInputSize, res.InputSize)
	})

	t.Run("successful rendering", func(t *testing.T) {
		req := formRequest(1, "spreadsheet://465?index=1&range=d2:g5&direction=vertical")
		req.Config.Template = "DataInput.html"

		res, err := svc.Render(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, 100, res.InputSize)
		assert.Equal(t, "my-form-identifier", res.InputName)
		assert.Equal(t, &FieldConfig{UploadField: uploadField, SheetsOnly: true, Size: 100, Template: "DataInput.html"}, res.Config)
		assert.Equal(t, map[int64]SheetFile{xlsxUID: {Ext: "xlsx"}}, res.SheetFiles)
		assert.Equal(t, map[int64][]SheetInfo{xlsxUID: {
			{Name: "Fixture1", Cells: []extract.Row{}},
			{Name: "Fixture2", Cells: []extract.Row{}},
		}}, res.SheetData)
		require.NotNil(t, res.ValueObject)
		assert.Equal(t, "spreadsheet://465?index=1&range=D2%3AG5&direction=vertical", *res.ValueObject)
	})

	t.Run("invalid dsn", func(t *testing.T) {
		res, err := svc.Render(ctx, formRequest("1", "not a dsn"))
		require.NoError(t, err)
		require.NotNil(t, res.ValueObject)
		assert.Equal(t, "", *res.ValueObject)
		assert.Contains(t, res.SheetData, xlsxUID)
	})

	t.Run("read failure keeps the file", func(t *testing.T) {
		res, err := svc.Render(ctx, formRequest(3, "spreadsheet://678?index=1&range=D2%3AG5&direction=vertical"))
		require.NoError(t, err)
		assert.Equal(t, map[int64]SheetFile{brokenUID: {Ext: "xlsx"}}, res.SheetFiles)
		assert.Empty(t, res.SheetData)
		assert.Equal(t, "spreadsheet://678?index=1&range=D2%3AG5&direction=vertical", *res.ValueObject)
	})

	t.Run("cells", func(t *testing.T) {
		req := formRequest(float64(5), "")
		req.Config.SheetsOnly = false

		res, err := svc.Render(ctx, req)
		require.NoError(t, err)
		sheets := res.SheetData[csvUID]
		require.Len(t, sheets, 1)
		require.Len(t, sheets[0].Cells, 3)
		assert.Equal(t, "Köln, NRW", sheets[0].Cells[2].Cells[0].Value)
	})
}
