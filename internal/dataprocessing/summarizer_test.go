package dataprocessing

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

func TestNumericSummary_Describe(t *testing.T) {
	got, err := NumericSummary(scenarioTable(), []string{"A", "B"}, "", "")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, domain.SummaryDescribe, got.Mode)
	assert.Equal(t, domain.DescribeStats(), got.Index)
	assert.Equal(t, []string{"A", "B"}, got.Columns)

	want := map[string][2]float64{
		domain.StatCount: {4, 4},
		domain.StatMean:  {2.5, 25},
		domain.StatStd:   {1.29, 12.91},
		domain.StatMin:   {1, 10},
		domain.StatQ1:    {1.75, 17.5},
		domain.StatQ2:    {2.5, 25},
		domain.StatQ3:    {3.25, 32.5},
		domain.StatMax:   {4, 40},
	}
	for stat, cols := range want {
		a, ok := got.Value(stat, "A")
		require.True(t, ok, stat)
		b, _ := got.Value(stat, "B")
		assert.Equal(t, cols[0], a, "A %s", stat)
		assert.Equal(t, cols[1], b, "B %s", stat)
	}
}

func TestNumericSummary_DescribeNeedsMethodAndGroup(t *testing.T) {
	for _, tc := range []struct {
		method   domain.AggregationMethod
		groupCol string
	}{
		{method: domain.AggregationSum},
		{groupCol: "REGION"},
	} {
		got, err := NumericSummary(scenarioTable(), []string{"A"}, tc.method, tc.groupCol)
		require.NoError(t, err)
		assert.Equal(t, domain.SummaryDescribe, got.Mode)
	}
}

func TestNumericSummary_DescribeUndefinedStats(t *testing.T) {
	table := tableOf([]string{"ONE", "NONE"}, []string{"5", ""})

	got, err := NumericSummary(table, []string{"ONE", "NONE"}, "", "")
	require.NoError(t, err)

	std, _ := got.Value(domain.StatStd, "ONE")
	assert.True(t, math.IsNaN(std))
	q1, _ := got.Value(domain.StatQ1, "ONE")
	assert.Equal(t, 5.0, q1)

	count, _ := got.Value(domain.StatCount, "NONE")
	assert.Equal(t, 0.0, count)
	mean, _ := got.Value(domain.StatMean, "NONE")
	assert.True(t, math.IsNaN(mean))
}

func TestNumericSummary_Grouped(t *testing.T) {
	tests := []struct {
		name   string
		method domain.AggregationMethod
		want   map[string][]float64
	}{
		{
			name:   "average",
			method: domain.AggregationAverage,
			want:   map[string][]float64{"X": {1.5, 15}, "Y": {3.5, 35}},
		},
		{
			name:   "sum",
			method: domain.AggregationSum,
			want:   map[string][]float64{"X": {3, 30}, "Y": {7, 70}},
		},
		{
			name:   "count",
			method: domain.AggregationCount,
			want:   map[string][]float64{"X": {2, 2}, "Y": {2, 2}},
		},
		{
			name:   "unknown method is sum",
			method: "total",
			want:   map[string][]float64{"X": {3, 30}, "Y": {7, 70}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NumericSummary(scenarioTable(), []string{"A", "B"}, tt.method, "REGION")
			require.NoError(t, err)

			assert.Equal(t, domain.SummaryGrouped, got.Mode)
			assert.Equal(t, "REGION", got.IndexName)
			assert.Equal(t, []string{"X", "Y"}, got.Index)
			for key, want := range tt.want {
				row, ok := got.Row(key)
				require.True(t, ok)
				assert.Equal(t, want, row)
			}
		})
	}
}

func TestNumericSummary_GroupedMatchesAggregator(t *testing.T) {
	table := tableOf([]string{"ICB_NAME", "ITEMS"},
		[]string{"KENT", "1.111"},
		[]string{"KENT", "2.222"},
		[]string{"DEVON", "3"},
		[]string{"", "50"},
	)

	summary, err := NumericSummary(table, []string{"ITEMS"}, domain.AggregationAverage, "ICB_NAME")
	require.NoError(t, err)
	groups, err := AggregateForPlot(table, "ICB_NAME", "ITEMS", domain.AggregationAverage)
	require.NoError(t, err)

	require.Len(t, summary.Index, len(groups))
	for _, g := range groups {
		v, ok := summary.Value(g.Key, "ITEMS")
		require.True(t, ok)
		assert.Equal(t, round2(g.Value), v)
	}
}

func TestNumericSummary_EmptyAndInvalid(t *testing.T) {
	got, err := NumericSummary(scenarioTable(), nil, domain.AggregationSum, "REGION")
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = NumericSummary(scenarioTable(), []string{"ITEMS"}, "", "")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = NumericSummary(scenarioTable(), []string{"A"}, domain.AggregationSum, "ICB_NAME")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestCategoricalSummary(t *testing.T) {
	got := CategoricalSummary(scenarioTable(), []string{"A", "B"}, nil)

	assert.Equal(t, []string{"REGION", "SNOMED_CODE"}, got.Columns())

	region, ok := got.Get("REGION")
	require.True(t, ok)
	assert.Equal(t, []domain.FrequencyEntry{{Value: "X", Count: 2}, {Value: "Y", Count: 2}}, region.Entries)

	snomed, ok := got.Get("SNOMED_CODE")
	require.True(t, ok)
	require.Len(t, snomed.Entries, 4)
	for _, e := range snomed.Entries {
		assert.Equal(t, 1, e.Count)
	}
	assert.Equal(t, "111", snomed.Entries[0].Value)
}

func TestCategoricalSummary_Exclusions(t *testing.T) {
	table := tableOf([]string{"PRACTICE_NAME", "POSTCODE", "YEAR_MONTH", "ITEMS"},
		[]string{"A SURGERY", "ME1 1AA", "202401", "3"},
	)

	got := CategoricalSummary(table, []string{"ITEMS"}, domain.DefaultSummaryExclusions())
	assert.Equal(t, []string{"PRACTICE_NAME"}, got.Columns())

	got = CategoricalSummary(table, nil, nil)
	assert.Equal(t, []string{"PRACTICE_NAME", "POSTCODE", "YEAR_MONTH", "ITEMS"}, got.Columns())
}

func TestCategoricalSummary_OrderingAndLimit(t *testing.T) {
	table := tableOf([]string{"BNF_CHEMICAL_SUBSTANCE"},
		[]string{"b"}, []string{"a"}, []string{""}, []string{"b"}, []string{"a"}, []string{"c"},
	)

	got := CategoricalSummary(table, nil, nil)
	freq, _ := got.Get("BNF_CHEMICAL_SUBSTANCE")
	assert.Equal(t, []domain.FrequencyEntry{
		{Value: "b", Count: 2},
		{Value: "a", Count: 2},
		{Value: "c", Count: 1},
	}, freq.Entries)

	records := make([][]string, 0, 30)
	for i := 0; i < 30; i++ {
		records = append(records, []string{fmt.Sprintf("drug-%02d", i)})
	}
	wide := tableOf([]string{"BNF_CHEMICAL_SUBSTANCE"}, records...)

	freq, _ = CategoricalSummary(wide, nil, nil).Get("BNF_CHEMICAL_SUBSTANCE")
	assert.Len(t, freq.Entries, DefaultFrequencyLimit)

	freq, _ = CategoricalSummaryN(wide, nil, nil, 0).Get("BNF_CHEMICAL_SUBSTANCE")
	assert.Len(t, freq.Entries, 30)
}
