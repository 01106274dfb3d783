package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Exporter writes sheets as CSV or XLSX.
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger.With(slog.String("component", "exporter"))}
}

// Write encodes sheets to w in the given format. CSV output carries a BOM.
func (e *Exporter) Write(w io.Writer, format Format, sheets ...Sheet) error {
	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(w, CSVOptions{BOMPrefix: true}, sheets...)
	case FormatXLSX:
		err = WriteXLSX(w, sheets...)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		e.logger.Error("Export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return err
	}
	e.logger.Debug("Export written",
		slog.String("format", string(format)),
		slog.Int("sheets", len(sheets)))
	return nil
}

// WriteFile writes sheets to path, choosing the format from its extension
// and creating parent directories as needed.
func (e *Exporter) WriteFile(path string, sheets ...Sheet) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := e.Write(file, format, sheets...); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	e.logger.Info("Export file written",
		slog.String("file_path", path),
		slog.String("format", string(format)))
	return nil
}
