package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name            string
		table           *domain.Table
		wantNumeric     []string
		wantCategorical []string
	}{
		{
			name:            "scenario table",
			table:           scenarioTable(),
			wantNumeric:     []string{"A", "B"},
			wantCategorical: []string{"REGION", "SNOMED_CODE"},
		},
		{
			name:            "empty table",
			table:           domain.NewTable(nil, nil),
			wantNumeric:     []string{},
			wantCategorical: []string{},
		},
		{
			name: "missing cells keep a column numeric",
			table: tableOf([]string{"ITEMS", "COST"},
				[]string{"1", "2.5"},
				[]string{"", "NaN"},
				[]string{"3", "1e3"},
			),
			wantNumeric:     []string{"ITEMS", "COST"},
			wantCategorical: []string{},
		},
		{
			name:            "all missing column is categorical",
			table:           tableOf([]string{"EMPTY", "N"}, []string{"", "1"}, []string{"NA", "2"}),
			wantNumeric:     []string{"N"},
			wantCategorical: []string{"EMPTY"},
		},
		{
			name:            "one text value makes a column categorical",
			table:           tableOf([]string{"MIXED"}, []string{"1"}, []string{"two"}),
			wantNumeric:     []string{},
			wantCategorical: []string{"MIXED"},
		},
		{
			name:            "header only table",
			table:           domain.NewTable([]string{"A", "B"}, nil),
			wantNumeric:     []string{},
			wantCategorical: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.table)
			assert.Equal(t, tt.wantNumeric, got.Numeric)
			assert.Equal(t, tt.wantCategorical, got.Categorical)
		})
	}
}

func TestClassify_PartitionsAllColumns(t *testing.T) {
	table := scenarioTable()
	got := Classify(table)

	assert.Len(t, append(got.Numeric, got.Categorical...), table.Width())
	assert.NotContains(t, got.Numeric, domain.ColumnSNOMEDCode)
	for _, col := range got.Numeric {
		assert.False(t, got.IsCategorical(col))
	}
}

func TestClassifyWith_ExtraIdentifiers(t *testing.T) {
	got := ClassifyWith(scenarioTable(), domain.ColumnSNOMEDCode, "B")

	assert.Equal(t, []string{"A"}, got.Numeric)
	assert.Equal(t, []string{"B", "REGION", "SNOMED_CODE"}, got.Categorical)
}

func TestClassifyWith_SNOMEDCodeAlwaysCategorical(t *testing.T) {
	tests := []struct {
		name        string
		identifiers []string
	}{
		{"no identifiers", nil},
		{"other identifiers", []string{"BNF_CODE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyWith(scenarioTable(), tt.identifiers...)
			assert.Equal(t, []string{"A", "B"}, got.Numeric)
			assert.Equal(t, []string{"REGION", "SNOMED_CODE"}, got.Categorical)
		})
	}
}
