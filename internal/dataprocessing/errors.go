package dataprocessing

import "errors"

var (
	// ErrColumnNotFound is returned when an operation names a column the table lacks.
	ErrColumnNotFound = errors.New("column not found")

	// ErrEmptyFile is returned when a file has no header row.
	ErrEmptyFile = errors.New("no columns to parse from file")

	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)
