package exporter

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

func plotFixture() ([]domain.GroupValue, domain.AggregationSpec) {
	groups := []domain.GroupValue{
		{Key: "P2", Value: 20, Count: 1},
		{Key: "P1", Value: 8.5, Count: 2},
		{Key: "P3", Value: math.NaN(), Count: 0},
	}
	return groups, domain.AggregationSpec{GroupBy: "PRACTICE_NAME", Measure: "ITEMS", Method: domain.AggregationAverage}
}

func summaryFixture() (*domain.NumericSummary, domain.CategoricalSummary) {
	numeric := &domain.NumericSummary{
		Mode:    domain.SummaryDescribe,
		Index:   []string{domain.StatCount, domain.StatStd},
		Columns: []string{"ITEMS", "NIC"},
		Values:  [][]float64{{4, 4}, {6.55, math.NaN()}},
	}
	categorical := domain.CategoricalSummary{Tables: []domain.FrequencyTable{
		{Column: "REGIONAL_OFFICE_NAME", Entries: []domain.FrequencyEntry{{Value: "NORTH", Count: 2}, {Value: "SOUTH", Count: 2}}},
	}}
	return numeric, categorical
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{"XLSX", FormatXLSX, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	f, err := FormatFromPath("out/top.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	_, err = FormatFromPath("out/top")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "plot_20240102_150405.csv", FileName("plot", FormatCSV, at))
	assert.Equal(t, "summary_20240102_150405.xlsx", FileName("summary", FormatXLSX, at))
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.True(t, strings.HasPrefix(FormatCSV.ContentType(), "text/csv"))
}

func TestWriteCSVPlot(t *testing.T) {
	groups, spec := plotFixture()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, CSVOptions{}, PlotSheet(groups, spec)))

	want := "PRACTICE_NAME,Average of ITEMS,rows\n" +
		"P2,20.00,1\n" +
		"P1,8.50,2\n" +
		"P3,,0\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVSummary(t *testing.T) {
	numeric, categorical := summaryFixture()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, CSVOptions{BOMPrefix: true}, SummarySheets(numeric, categorical)...))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, utf8BOM))
	want := "statistic,ITEMS,NIC\n" +
		"count,4.00,4.00\n" +
		"std,6.55,\n" +
		"\n" +
		"REGIONAL_OFFICE_NAME,count\n" +
		"NORTH,2\n" +
		"SOUTH,2\n"
	assert.Equal(t, want, string(out[len(utf8BOM):]))
}

func TestSummarySheetsSkipsEmptyParts(t *testing.T) {
	assert.Empty(t, SummarySheets(nil, domain.CategoricalSummary{}))

	grouped := &domain.NumericSummary{
		Mode:      domain.SummaryGrouped,
		IndexName: "ICB_NAME",
		Index:     []string{"ICB A"},
		Columns:   []string{"ITEMS"},
		Values:    [][]float64{{30}},
	}
	sheets := SummarySheets(grouped, domain.CategoricalSummary{})
	require.Len(t, sheets, 1)
	assert.Equal(t, []string{"ICB_NAME", "ITEMS"}, sheets[0].Header)
}

func TestWriteXLSX(t *testing.T) {
	numeric, categorical := summaryFixture()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, SummarySheets(numeric, categorical)...))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Numeric Summary", "REGIONAL_OFFICE_NAME"}, f.GetSheetList())

	rows, err := f.GetRows("Numeric Summary")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"statistic", "ITEMS", "NIC"}, rows[0])
	assert.Equal(t, "6.55", rows[2][1])

	rows, err = f.GetRows("REGIONAL_OFFICE_NAME")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"REGIONAL_OFFICE_NAME", "count"}, {"NORTH", "2"}, {"SOUTH", "2"}}, rows)
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "BNF_CHEMICAL_SUBSTANCE", uniqueSheetName("BNF_CHEMICAL_SUBSTANCE", 0, used))
	// Excel compares sheet names case-insensitively.
	assert.Equal(t, "bnf_chemical_substance (2)", uniqueSheetName("bnf_chemical_substance", 1, used))
	assert.Equal(t, "a_b_c", uniqueSheetName("a/b:c", 2, used))
	assert.Equal(t, "Sheet4", uniqueSheetName("  ", 3, used))

	long := uniqueSheetName(strings.Repeat("X", 40), 4, used)
	assert.Len(t, long, maxSheetName)
}

func TestExporterWriteFile(t *testing.T) {
	dir := t.TempDir()
	groups, spec := plotFixture()
	exp := New(nil)

	csvPath := filepath.Join(dir, "nested", "top.csv")
	require.NoError(t, exp.WriteFile(csvPath, PlotSheet(groups, spec)))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "P1,8.50,2")

	xlsxPath := filepath.Join(dir, "top.xlsx")
	require.NoError(t, exp.WriteFile(xlsxPath, PlotSheet(groups, spec)))
	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Plot"}, f.GetSheetList())

	err = exp.WriteFile(filepath.Join(dir, "top.pdf"), PlotSheet(groups, spec))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = exp.Write(&bytes.Buffer{}, Format("json"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
