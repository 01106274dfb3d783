package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures CSV writing behavior
type CSVOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognises the encoding.
	BOMPrefix bool
}

// WriteCSV writes sheets one after another, separated by an empty line.
func WriteCSV(w io.Writer, opts CSVOptions, sheets ...Sheet) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	for i, sheet := range sheets {
		if i > 0 {
			if err := writer.Write(nil); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
		}
		if len(sheet.Header) > 0 {
			if err := writer.Write(sheet.Header); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		for j, row := range sheet.Rows {
			record := make([]string, len(row))
			for k, v := range row {
				record[k] = formatCell(v)
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d of %s: %w", j, sheet.Name, err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
