package exporter

import (
	"fmt"
	"math"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// Sheet is one named table of an export. Row values are strings, ints,
// float64s or nil for a blank cell.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// PlotSheet lays out plot groups as group, value and row count columns.
func PlotSheet(groups []domain.GroupValue, spec domain.AggregationSpec) Sheet {
	method := spec.Method.Normalize()
	s := Sheet{
		Name:   "Plot",
		Header: []string{spec.GroupBy, fmt.Sprintf("%s of %s", method, spec.Measure), "rows"},
		Rows:   make([][]interface{}, 0, len(groups)),
	}
	for _, g := range groups {
		s.Rows = append(s.Rows, []interface{}{g.Key, number(g.Value), g.Count})
	}
	return s
}

// SummarySheets returns the numeric table first, then one sheet per
// frequency table. Empty parts produce no sheet.
func SummarySheets(numeric *domain.NumericSummary, categorical domain.CategoricalSummary) []Sheet {
	var sheets []Sheet
	if !numeric.IsEmpty() {
		sheets = append(sheets, NumericSheet(numeric))
	}
	for _, t := range categorical.Tables {
		sheets = append(sheets, FrequencySheet(t))
	}
	return sheets
}

// NumericSheet lays out a numeric summary with its index as first column.
func NumericSheet(s *domain.NumericSummary) Sheet {
	indexName := s.IndexName
	if indexName == "" {
		indexName = "statistic"
	}
	sheet := Sheet{
		Name:   "Numeric Summary",
		Header: append([]string{indexName}, s.Columns...),
		Rows:   make([][]interface{}, 0, len(s.Index)),
	}
	for i, label := range s.Index {
		row := make([]interface{}, 0, len(s.Columns)+1)
		row = append(row, label)
		for _, v := range s.Values[i] {
			row = append(row, number(v))
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

// FrequencySheet lays out one value count table.
func FrequencySheet(t domain.FrequencyTable) Sheet {
	sheet := Sheet{
		Name:   t.Column,
		Header: []string{t.Column, "count"},
		Rows:   make([][]interface{}, 0, len(t.Entries)),
	}
	for _, e := range t.Entries {
		sheet.Rows = append(sheet.Rows, []interface{}{e.Value, e.Count})
	}
	return sheet
}

// number blanks undefined statistics
func number(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
