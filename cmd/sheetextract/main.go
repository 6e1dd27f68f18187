// Command sheetextract runs the spreadsheet extraction pipeline against a local
// file and prints the result as JSON or as an HTML table.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/locvowork/spreadsheets/internal/domain"
	"github.com/locvowork/spreadsheets/internal/repository"
	"github.com/locvowork/spreadsheets/internal/service"
	"github.com/locvowork/spreadsheets/pkg/dsn"
	"github.com/locvowork/spreadsheets/pkg/extract"
	"github.com/locvowork/spreadsheets/pkg/render"
	"github.com/locvowork/spreadsheets/pkg/style"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

const localFileUID int64 = 1

type options struct {
	dsn          string
	sheet        int
	cellRange    string
	direction    string
	format       string
	outputPath   string
	pretty       bool
	all          bool
	ignoreStyles bool
	scope        string
	caption      string
	footer       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "sheetextract [input.xlsx|input.csv]",
		Short: "Extract a cell range from a spreadsheet file",
		Long: `sheetextract resolves a spreadsheet DSN (or sheet/range flags) against a
local file and prints the head and body rows as JSON or as an HTML table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.dsn, "dsn", "", "Spreadsheet DSN; its file uid is ignored")
	flags.IntVar(&opts.sheet, "sheet", 0, "Sheet index (without --dsn)")
	flags.StringVar(&opts.cellRange, "range", "", "Cell range, e.g. A1:D10 (without --dsn)")
	flags.StringVar(&opts.direction, "direction", string(dsn.DirectionHorizontal), "horizontal or vertical (without --dsn)")
	flags.StringVar(&opts.format, "format", "json", "Output format: json or html")
	flags.StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: stdout)")
	flags.BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")
	flags.BoolVar(&opts.all, "all", false, "Extract every sheet")
	flags.BoolVar(&opts.ignoreStyles, "ignore-styles", false, "Do not generate a stylesheet")
	flags.StringVar(&opts.scope, "scope", ".spreadsheet", "CSS selector prefixing generated rules")
	flags.StringVar(&opts.caption, "caption", "", "Table caption (html)")
	flags.BoolVar(&opts.footer, "footer", false, "Render the last row as table footer (html)")
	return cmd
}

func selection(opts options) (dsn.DSN, error) {
	if opts.dsn != "" {
		d, err := dsn.Parse(opts.dsn)
		if err != nil {
			return dsn.DSN{}, err
		}
		d.FileUID = localFileUID
		return d, nil
	}

	return dsn.New(localFileUID, opts.sheet, opts.cellRange, dsn.Direction(opts.direction))
}

func run(ctx context.Context, stdout io.Writer, inputPath string, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.format != "json" && opts.format != "html" {
		return fmt.Errorf("invalid format: %s (must be json or html)", opts.format)
	}

	d, err := selection(opts)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	repo := repository.NewMemoryFileReferenceRepository(domain.FileReference{
		UID:        localFileUID,
		Identifier: filepath.Base(abs),
	})
	reader := service.NewReaderService(filepath.Dir(abs))
	svc := service.NewExtractorService(repo, reader, extract.New(), style.NewService(opts.scope))

	var extractions []*extract.Extraction
	var f *excelize.File
	if opts.all {
		extractions, f, err = svc.GetAllByDSN(ctx, d)
	} else {
		var ex *extract.Extraction
		ex, f, err = svc.GetDataByDSN(ctx, d)
		extractions = []*extract.Extraction{ex}
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	defer f.Close()

	var css string
	if !opts.ignoreStyles {
		css, err = svc.GetStylesheet(ctx, f, opts.scope, "", extractions...)
		if err != nil {
			return fmt.Errorf("stylesheet failed: %w", err)
		}
	}

	var buf bytes.Buffer
	switch opts.format {
	case "html":
		err = writeHTML(&buf, extractions, opts, css)
	default:
		err = writeJSON(&buf, extractions, opts, css)
	}
	if err != nil {
		return err
	}

	if opts.outputPath != "" {
		if err := os.WriteFile(opts.outputPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err = stdout.Write(buf.Bytes())
	return err
}

type jsonOutput struct {
	Stylesheet  string                `json:"stylesheet,omitempty"`
	Extractions []*extract.Extraction `json:"extractions"`
}

func writeJSON(w io.Writer, extractions []*extract.Extraction, opts options, css string) error {
	enc := json.NewEncoder(w)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(jsonOutput{Stylesheet: css, Extractions: extractions}); err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return nil
}

func writeHTML(w io.Writer, extractions []*extract.Extraction, opts options, css string) error {
	tableOpts := render.TableOptions{
		Caption: opts.caption,
		Footer:  opts.footer,
		Styles:  css,
	}
	if !opts.all {
		return render.Table(w, render.FromExtraction(extractions[0]), tableOpts)
	}

	tabs := make([]render.TabData, 0, len(extractions))
	for _, ex := range extractions {
		tabs = append(tabs, render.TabData{Title: ex.SheetName, Data: render.FromExtraction(ex)})
	}
	return render.Tabs(w, tabs, tableOpts)
}
