package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name    string
		spec    *domain.FilterSpec
		wantA   []string
		wantErr error
	}{
		{
			name:  "equality keeps matching rows in order",
			spec:  domain.NewFilterSpec().Set("REGION", domain.Equals("X")),
			wantA: []string{"1", "2"},
		},
		{
			name:  "any imposes nothing",
			spec:  domain.NewFilterSpec().Set("REGION", domain.Any()),
			wantA: []string{"1", "2", "3", "4"},
		},
		{
			name:  "nil spec imposes nothing",
			spec:  nil,
			wantA: []string{"1", "2", "3", "4"},
		},
		{
			name: "entries are conjunctive",
			spec: domain.NewFilterSpec().
				Set("REGION", domain.Equals("Y")).
				Set("SNOMED_CODE", domain.Equals("444")),
			wantA: []string{"4"},
		},
		{
			name:  "no match is an empty table",
			spec:  domain.NewFilterSpec().Set("REGION", domain.Equals("Z")),
			wantA: []string{},
		},
		{
			name:  "match is exact",
			spec:  domain.NewFilterSpec().Set("REGION", domain.Equals("x")),
			wantA: []string{},
		},
		{
			name:  "any on an absent column is ignored",
			spec:  domain.NewFilterSpec().Set("ICB_NAME", domain.Any()),
			wantA: []string{"1", "2", "3", "4"},
		},
		{
			name:    "constraint on an absent column",
			spec:    domain.NewFilterSpec().Set("ICB_NAME", domain.Equals("NHS KENT")),
			wantErr: ErrColumnNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := scenarioTable()
			got, err := ApplyFilters(table, tt.spec)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantA, columnTexts(got, "A"))
			assert.Equal(t, 4, table.Len())
		})
	}
}

func TestApplyFilters_MissingNeverMatches(t *testing.T) {
	table := tableOf([]string{"PCO_NAME", "ITEMS"},
		[]string{"", "1"},
		[]string{"NA", "2"},
		[]string{"EAST", "3"},
	)

	got, err := ApplyFilters(table, domain.NewFilterSpec().Set("PCO_NAME", domain.Equals("NA")))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())

	got, err = ApplyFilters(table, domain.NewFilterSpec().Set("PCO_NAME", domain.Equals("EAST")))
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, columnTexts(got, "ITEMS"))
}

func TestApplyFilters_ParsedSelections(t *testing.T) {
	spec := domain.FilterSpecFromMap([]string{"REGION", "SNOMED_CODE"}, map[string]string{
		"REGION":      "X",
		"SNOMED_CODE": domain.AnyLabel,
	})

	got, err := ApplyFilters(scenarioTable(), spec)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestFilterOptions(t *testing.T) {
	table := tableOf([]string{"PRACTICE_NAME", "SNOMED_CODE", "ICB_NAME"},
		[]string{"ZED SURGERY", "100", ""},
		[]string{"ALPHA PRACTICE", "9", "NHS KENT"},
		[]string{"ZED SURGERY", "10", "NHS KENT"},
		[]string{"", "9", "NHS DEVON"},
	)

	got := FilterOptions(table, []string{"PRACTICE_NAME", "REGIONAL_OFFICE_NAME", "SNOMED_CODE", "ICB_NAME"})

	require.Len(t, got, 3)
	assert.Equal(t, domain.FilterOption{Column: "PRACTICE_NAME", Values: []string{"ALPHA PRACTICE", "ZED SURGERY"}}, got[0])
	assert.Equal(t, domain.FilterOption{Column: "SNOMED_CODE", Values: []string{"9", "10", "100"}}, got[1])
	assert.Equal(t, domain.FilterOption{Column: "ICB_NAME", Values: []string{"NHS DEVON", "NHS KENT"}}, got[2])
}

func TestNumericColumnsCompareByValue(t *testing.T) {
	table := tableOf([]string{"SNOMED_CODE", "CODE", "ITEMS"},
		[]string{"1", "1", "10"},
		[]string{"1.0", "01", "20"},
		[]string{"2", "A2", "30"},
	)

	opts := FilterOptions(table, []string{"SNOMED_CODE", "CODE"})
	assert.Equal(t, []string{"1", "2"}, opts[0].Values)
	assert.Equal(t, []string{"01", "1", "A2"}, opts[1].Values)

	spec := domain.FilterSpecFromMap([]string{"SNOMED_CODE"}, map[string]string{"SNOMED_CODE": "1"})
	got, err := ApplyFilters(table, spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20"}, columnTexts(got, "ITEMS"))

	spec = domain.FilterSpecFromMap([]string{"CODE"}, map[string]string{"CODE": "1"})
	got, err = ApplyFilters(table, spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"10"}, columnTexts(got, "ITEMS"))
}
