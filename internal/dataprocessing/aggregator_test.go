package dataprocessing

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

func TestAggregateForPlot(t *testing.T) {
	tests := []struct {
		name    string
		method  domain.AggregationMethod
		measure string
		want    []domain.GroupValue
	}{
		{
			name:    "sum sorts descending",
			method:  domain.AggregationSum,
			measure: "A",
			want:    []domain.GroupValue{{Key: "Y", Value: 7, Count: 2}, {Key: "X", Value: 3, Count: 2}},
		},
		{
			name:    "average",
			method:  domain.AggregationAverage,
			measure: "B",
			want:    []domain.GroupValue{{Key: "Y", Value: 35, Count: 2}, {Key: "X", Value: 15, Count: 2}},
		},
		{
			name:    "count ties keep key order",
			method:  domain.AggregationCount,
			measure: "A",
			want:    []domain.GroupValue{{Key: "X", Value: 2, Count: 2}, {Key: "Y", Value: 2, Count: 2}},
		},
		{
			name:    "unknown method is sum",
			method:  domain.AggregationMethod("median"),
			measure: "A",
			want:    []domain.GroupValue{{Key: "Y", Value: 7, Count: 2}, {Key: "X", Value: 3, Count: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AggregateForPlot(scenarioTable(), "REGION", tt.measure, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateForPlot_AverageIsSumOverCount(t *testing.T) {
	table := tableOf([]string{"ICB_NAME", "ITEMS"},
		[]string{"KENT", "4"},
		[]string{"KENT", ""},
		[]string{"DEVON", "3"},
		[]string{"KENT", "8"},
		[]string{"DEVON", "6"},
	)

	sums, err := AggregateForPlot(table, "ICB_NAME", "ITEMS", domain.AggregationSum)
	require.NoError(t, err)
	avgs, err := AggregateForPlot(table, "ICB_NAME", "ITEMS", domain.AggregationAverage)
	require.NoError(t, err)
	counts, err := AggregateForPlot(table, "ICB_NAME", "ITEMS", domain.AggregationCount)
	require.NoError(t, err)

	byKey := func(groups []domain.GroupValue) map[string]float64 {
		m := make(map[string]float64)
		for _, g := range groups {
			m[g.Key] = g.Value
		}
		return m
	}
	s, a, c := byKey(sums), byKey(avgs), byKey(counts)

	assert.Equal(t, 2.0, c["KENT"])
	for key := range s {
		assert.InDelta(t, s[key]/c[key], a[key], 1e-9, key)
	}
}

func TestAggregateForPlot_MissingKeysDropped(t *testing.T) {
	table := tableOf([]string{"PCO_NAME", "ITEMS"},
		[]string{"NORTH", "1"},
		[]string{"", "100"},
		[]string{"NaN", "100"},
		[]string{"SOUTH", "2"},
	)

	got, err := AggregateForPlot(table, "PCO_NAME", "ITEMS", domain.AggregationSum)
	require.NoError(t, err)
	assert.Equal(t, []string{"SOUTH", "NORTH"}, groupKeys(got))
}

func TestAggregateForPlot_NaNSortsLast(t *testing.T) {
	table := tableOf([]string{"G", "M"},
		[]string{"a", ""},
		[]string{"b", "1"},
		[]string{"c", "2"},
	)

	got, err := AggregateForPlot(table, "G", "M", domain.AggregationAverage)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "b", "a"}, groupKeys(got))
	assert.True(t, math.IsNaN(got[2].Value))
	assert.Equal(t, 0, got[2].Count)

	sums, err := AggregateForPlot(table, "G", "M", domain.AggregationSum)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sums[2].Value)
}

func TestAggregateForPlot_NumericKeyOrder(t *testing.T) {
	table := tableOf([]string{"CODE", "M"},
		[]string{"100", "1"},
		[]string{"9", "1"},
		[]string{"10", "1"},
	)

	got, err := AggregateForPlot(table, "CODE", "M", domain.AggregationCount)
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "10", "100"}, groupKeys(got))
}

func TestAggregate_Limit(t *testing.T) {
	records := make([][]string, 0, 20)
	for i := 1; i <= 20; i++ {
		records = append(records, []string{fmt.Sprintf("P%02d", i), fmt.Sprint(i)})
	}
	table := tableOf([]string{"PRACTICE_NAME", "ITEMS"}, records...)

	tests := []struct {
		name    string
		limit   int
		wantLen int
	}{
		{name: "default limit", limit: 0, wantLen: DefaultPlotLimit},
		{name: "custom limit", limit: 5, wantLen: 5},
		{name: "no limit", limit: -1, wantLen: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(table, AggregateOptions{
				GroupBy: "PRACTICE_NAME",
				Measure: "ITEMS",
				Method:  domain.AggregationSum,
				Limit:   tt.limit,
			})
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, "P20", got[0].Key)
		})
	}
}

func TestAggregateForPlot_Errors(t *testing.T) {
	_, err := AggregateForPlot(scenarioTable(), "ICB_NAME", "A", domain.AggregationSum)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = AggregateForPlot(scenarioTable(), "REGION", "ITEMS", domain.AggregationSum)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestAggregateForPlot_EmptyTable(t *testing.T) {
	table := domain.NewTable([]string{"REGION", "A"}, nil)

	got, err := AggregateForPlot(table, "REGION", "A", domain.AggregationSum)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAggregateForPlot_NumericKeysGroupByValue(t *testing.T) {
	table := tableOf([]string{"SNOMED_CODE", "ITEMS"},
		[]string{"1", "2"},
		[]string{"1.0", "3"},
		[]string{"01", "4"},
		[]string{"2", "1"},
	)

	got, err := AggregateForPlot(table, "SNOMED_CODE", "ITEMS", domain.AggregationSum)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, groupKeys(got))
	assert.Equal(t, 9.0, got[0].Value)
	assert.Equal(t, 3, got[0].Count)
}

func TestAggregateForPlot_TextKeysStayDistinct(t *testing.T) {
	table := tableOf([]string{"CODE", "ITEMS"},
		[]string{"1", "2"},
		[]string{"01", "3"},
		[]string{"A1", "4"},
	)

	got, err := AggregateForPlot(table, "CODE", "ITEMS", domain.AggregationCount)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
