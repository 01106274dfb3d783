package dataprocessing

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

func TestBuildBarChart(t *testing.T) {
	groups := []domain.GroupValue{
		{Key: "Y", Value: 3.5, Count: 2},
		{Key: "Z", Value: math.NaN()},
	}

	chart := BuildBarChart(groups, "REGION", "A", "average")

	assert.Equal(t, "bar", chart.ChartType)
	assert.Equal(t, "Average of A by REGION", chart.Title)
	assert.Equal(t, "REGION", chart.XAxis)
	assert.Equal(t, "Average of A", chart.YAxis)
	require.Len(t, chart.Series, 1)
	require.Len(t, chart.Series[0].Data, 2)
	assert.Equal(t, "Y", chart.Series[0].Data[0].Label)
	require.NotNil(t, chart.Series[0].Data[0].Value)
	assert.Equal(t, 3.5, *chart.Series[0].Data[0].Value)
	assert.Nil(t, chart.Series[0].Data[1].Value)
}

func TestWriteSummaryReport(t *testing.T) {
	table := scenarioTable()
	numeric, err := NumericSummary(table, []string{"A", "B"}, "", "")
	require.NoError(t, err)
	categorical := CategoricalSummary(table, []string{"A", "B"}, nil)

	report := SummaryReport(numeric, categorical)

	numIdx := strings.Index(report, "=== Numeric Summary ===\n")
	catIdx := strings.Index(report, "=== Categorical Summary ===\n")
	require.GreaterOrEqual(t, numIdx, 0)
	require.Greater(t, catIdx, numIdx)

	assert.Contains(t, report, "REGION value counts:\nX  2\nY  2\n\n")
	assert.Contains(t, report, "SNOMED_CODE value counts:\n111  1\n")

	lines := strings.Split(report, "\n")
	assert.Equal(t, []string{"A", "B"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"count", "4.00", "4.00"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"std", "1.29", "12.91"}, strings.Fields(lines[4]))
	assert.Equal(t, []string{"25%", "1.75", "17.50"}, strings.Fields(lines[6]))
}

func TestWriteSummaryReport_Grouped(t *testing.T) {
	numeric, err := NumericSummary(scenarioTable(), []string{"A"}, domain.AggregationCount, "REGION")
	require.NoError(t, err)

	report := SummaryReport(numeric, domain.CategoricalSummary{})
	lines := strings.Split(report, "\n")

	assert.Equal(t, "=== Numeric Summary ===", lines[0])
	assert.Equal(t, []string{"REGION", "A"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"X", "2"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"Y", "2"}, strings.Fields(lines[3]))
	assert.NotContains(t, report, "Categorical")
}

func TestWriteSummaryReport_OmitsEmptySections(t *testing.T) {
	assert.Equal(t, "", SummaryReport(nil, domain.CategoricalSummary{}))

	report := SummaryReport(nil, CategoricalSummary(scenarioTable(), []string{"A", "B"}, nil))
	assert.True(t, strings.HasPrefix(report, "=== Categorical Summary ===\n"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NaN", FormatValue(math.NaN(), false))
	assert.Equal(t, "3", FormatValue(3, true))
	assert.Equal(t, "3.00", FormatValue(3, false))
	assert.Equal(t, "1.75", FormatValue(1.75, false))
}
