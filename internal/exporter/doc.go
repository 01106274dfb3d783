// Package exporter writes plot groups and summaries as CSV or XLSX.
//
// Results are first laid out as Sheets (PlotSheet, SummarySheets) and then
// encoded. CSV output puts every sheet in one file separated by blank lines
// and starts with a UTF-8 BOM for Excel. XLSX output gives each sheet its own
// worksheet.
//
// Example usage:
//
//	exp := exporter.New(logger)
//	sheet := exporter.PlotSheet(groups, spec)
//	err := exp.WriteFile("out/top15.xlsx", sheet)
package exporter
