package dataprocessing

import (
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// tableOf parses raw records the way the loader does.
func tableOf(columns []string, records ...[]string) *domain.Table {
	rows := make([]domain.Row, len(records))
	for i, rec := range records {
		rows[i] = parseRecord(rec)
	}
	return domain.NewTable(columns, rows)
}

// scenarioTable is the four-row reference table used across the package tests.
func scenarioTable() *domain.Table {
	return tableOf(
		[]string{"A", "B", "REGION", "SNOMED_CODE"},
		[]string{"1", "10", "X", "111"},
		[]string{"2", "20", "X", "222"},
		[]string{"3", "30", "Y", "333"},
		[]string{"4", "40", "Y", "444"},
	)
}

func columnTexts(t *domain.Table, column string) []string {
	cells, _ := t.Column(column)
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text
	}
	return out
}

func groupKeys(groups []domain.GroupValue) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}
