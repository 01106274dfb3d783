package dataprocessing

import (
	"fmt"
	"sort"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// DefaultFrequencyLimit is how many values each frequency table keeps.
const DefaultFrequencyLimit = 20

// NumericSummary summarizes numericCols. With both a method and a group
// column it reduces every column per group; otherwise it computes describe
// statistics. Values are rounded to two decimals. Empty numericCols yields nil.
func NumericSummary(t *domain.Table, numericCols []string, method domain.AggregationMethod, groupCol string) (*domain.NumericSummary, error) {
	if len(numericCols) == 0 {
		return nil, nil
	}

	indices := make([]int, len(numericCols))
	for j, col := range numericCols {
		ci, ok := t.ColumnIndex(col)
		if !ok {
			return nil, fmt.Errorf("summary column %q: %w", col, ErrColumnNotFound)
		}
		indices[j] = ci
	}

	if method != "" && groupCol != "" {
		return groupedSummary(t, numericCols, indices, method.Normalize(), groupCol)
	}
	return describeSummary(t, numericCols, indices), nil
}

func describeSummary(t *domain.Table, columns []string, indices []int) *domain.NumericSummary {
	statNames := domain.DescribeStats()
	values := make([][]float64, len(statNames))
	for i := range values {
		values[i] = make([]float64, len(columns))
	}

	all := allRows(t)
	for j, ci := range indices {
		nums, _ := numbersAt(t, all, ci)
		for i, v := range describe(nums) {
			values[i][j] = round2(v)
		}
	}

	return &domain.NumericSummary{
		Mode:    domain.SummaryDescribe,
		Index:   statNames,
		Columns: copyStrings(columns),
		Values:  values,
	}
}

func groupedSummary(t *domain.Table, columns []string, indices []int, method domain.AggregationMethod, groupCol string) (*domain.NumericSummary, error) {
	groups, err := groupRows(t, groupCol)
	if err != nil {
		return nil, err
	}

	index := make([]string, len(groups))
	values := make([][]float64, len(groups))
	for i, g := range groups {
		index[i] = g.key
		row := make([]float64, len(indices))
		for j, ci := range indices {
			nums, present := numbersAt(t, g.rows, ci)
			row[j] = reduce(method, nums, present)
		}
		values[i] = round2All(row)
	}

	return &domain.NumericSummary{
		Mode:      domain.SummaryGrouped,
		Method:    method,
		IndexName: groupCol,
		Index:     index,
		Columns:   copyStrings(columns),
		Values:    values,
	}, nil
}

// CategoricalSummary counts values of every column that is neither numeric nor
// excluded, keeping the DefaultFrequencyLimit most frequent per column.
func CategoricalSummary(t *domain.Table, numericCols, excludeCols []string) domain.CategoricalSummary {
	return CategoricalSummaryN(t, numericCols, excludeCols, DefaultFrequencyLimit)
}

// CategoricalSummaryN is CategoricalSummary with an explicit per-column limit.
// A non-positive limit keeps every value.
func CategoricalSummaryN(t *domain.Table, numericCols, excludeCols []string, limit int) domain.CategoricalSummary {
	skip := make(map[string]bool, len(numericCols)+len(excludeCols))
	for _, c := range numericCols {
		skip[c] = true
	}
	for _, c := range excludeCols {
		skip[c] = true
	}

	out := domain.CategoricalSummary{Tables: []domain.FrequencyTable{}}
	for ci, col := range t.Columns() {
		if skip[col] {
			continue
		}
		out.Tables = append(out.Tables, domain.FrequencyTable{
			Column:  col,
			Entries: valueCounts(t, ci, limit),
		})
	}
	return out
}

// valueCounts counts non-missing values, most frequent first. Equal counts keep
// the order in which values first appear.
func valueCounts(t *domain.Table, ci, limit int) []domain.FrequencyEntry {
	pos := make(map[string]int)
	entries := []domain.FrequencyEntry{}
	for i := 0; i < t.Len(); i++ {
		c := t.Row(i)[ci]
		if c.IsMissing() {
			continue
		}
		if p, ok := pos[c.Text]; ok {
			entries[p].Count++
			continue
		}
		pos[c.Text] = len(entries)
		entries = append(entries, domain.FrequencyEntry{Value: c.Text, Count: 1})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Count > entries[b].Count
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func allRows(t *domain.Table) []int {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
