// Package shared holds code used across the explorer's packages that
// belongs to no single layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output, and fixtures for writing small prescribing datasets as CSV or
// XLSX files in test directories.
package shared
