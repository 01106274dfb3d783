package dataprocessing

import (
	"bufio"
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/errors"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// ctxCheckInterval is how many records are read between cancellation checks.
const ctxCheckInterval = 10000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoaderOptions tunes how files are read.
type LoaderOptions struct {
	// Sheet is the XLSX worksheet to read. Empty means the first sheet.
	Sheet string
}

// Loader reads prescribing extracts from disk.
type Loader struct {
	logger *slog.Logger
	opts   LoaderOptions
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger, opts LoaderOptions) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger: logger.With(slog.String("component", "loader")),
		opts:   opts,
	}
}

// IsSupported reports whether the loader can read files with this name.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// LoadFile reads a CSV or XLSX file, choosing the reader by extension.
func (l *Loader) LoadFile(ctx context.Context, path string) (*domain.Table, error) {
	start := time.Now()

	if !IsSupported(path) {
		return nil, errors.NewDatasetError(fmt.Sprintf("cannot load %s", filepath.Base(path)), ErrUnsupportedFormat).
			WithContext("path", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open dataset", err).WithContext("path", path)
	}
	defer f.Close()

	var table *domain.Table
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		table, err = l.ReadXLSX(ctx, f)
	} else {
		table, err = l.ReadCSV(ctx, f)
	}
	if err != nil {
		l.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("columns", table.Width()),
		slog.Duration("duration", time.Since(start)))

	return table, nil
}

// ReadCSV parses comma separated text with a header row. Blank lines are
// skipped, short records are padded with missing cells and a record with more
// fields than the header is an error.
func (l *Loader) ReadCSV(ctx context.Context, r io.Reader) (*domain.Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && string(prefix) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, errors.NewParsingError("failed to read header", ErrEmptyFile)
	}
	if err != nil {
		return nil, errors.NewParsingError("failed to read header", err)
	}
	columns := normalizeHeader(header)

	var rows []domain.Row
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError("failed to read record", err)
		}
		if len(record) > len(columns) {
			line, _ := reader.FieldPos(0)
			return nil, errors.NewParsingError("failed to read record",
				fmt.Errorf("expected %d fields in line %d, saw %d", len(columns), line, len(record))).
				WithContext("line", line)
		}

		rows = append(rows, parseRecord(record))
	}

	return domain.NewTable(columns, rows), nil
}

// ReadXLSX reads one worksheet of a workbook. The first row is the header and
// cells are taken as raw values so number formats do not leak into the data.
func (l *Loader) ReadXLSX(ctx context.Context, r io.Reader) (*domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewParsingError("workbook has no sheets", ErrEmptyFile)
		}
		sheet = sheets[0]
	}

	it, err := f.Rows(sheet)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	defer it.Close()

	var columns []string
	var rows []domain.Row
	for n := 0; it.Next(); n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := it.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, errors.NewParsingError("failed to read row", err).WithContext("row", n+1)
		}

		if columns == nil {
			if isBlank(record) {
				continue
			}
			columns = normalizeHeader(record)
			continue
		}
		if len(record) > len(columns) {
			record = record[:len(columns)]
		}
		if row := parseRecord(record); row != nil {
			rows = append(rows, row)
		}
	}
	if err := it.Error(); err != nil {
		return nil, errors.NewParsingError("failed to read rows", err)
	}
	if columns == nil {
		return nil, errors.NewParsingError(fmt.Sprintf("sheet %q is empty", sheet), ErrEmptyFile)
	}

	return domain.NewTable(columns, rows), nil
}

// parseRecord converts raw fields to cells. A record whose fields are all
// blank yields nil.
func parseRecord(record []string) domain.Row {
	if isBlank(record) {
		return nil
	}
	row := make(domain.Row, len(record))
	for i, field := range record {
		row[i] = domain.ParseCell(field)
	}
	return row
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader trims names, labels empty ones "Unnamed: i" and suffixes
// duplicates with ".1", ".2" and so on.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if seen[name] {
			base := name
			for k := 1; seen[name]; k++ {
				name = base + "." + strconv.Itoa(k)
			}
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}
