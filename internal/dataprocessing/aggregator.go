package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// DefaultPlotLimit is how many groups a plot shows.
const DefaultPlotLimit = 15

// AggregateOptions selects a grouped reduction. Limit caps the number of
// groups returned: zero means DefaultPlotLimit and negative means no cap.
type AggregateOptions struct {
	GroupBy string
	Measure string
	Method  domain.AggregationMethod
	Limit   int
}

// AggregateForPlot reduces a measure per group and returns the top
// DefaultPlotLimit groups, largest value first.
func AggregateForPlot(t *domain.Table, groupBy, measure string, method domain.AggregationMethod) ([]domain.GroupValue, error) {
	return Aggregate(t, AggregateOptions{GroupBy: groupBy, Measure: measure, Method: method})
}

// Aggregate groups rows by opts.GroupBy and reduces opts.Measure within each
// group. Groups are sorted by value descending with ties in key order; groups
// whose value is NaN come last.
func Aggregate(t *domain.Table, opts AggregateOptions) ([]domain.GroupValue, error) {
	mi, ok := t.ColumnIndex(opts.Measure)
	if !ok {
		return nil, fmt.Errorf("measure %q: %w", opts.Measure, ErrColumnNotFound)
	}
	groups, err := groupRows(t, opts.GroupBy)
	if err != nil {
		return nil, err
	}

	method := opts.Method.Normalize()
	out := make([]domain.GroupValue, 0, len(groups))
	for _, g := range groups {
		values, present := numbersAt(t, g.rows, mi)
		out = append(out, domain.GroupValue{
			Key:   g.key,
			Value: reduce(method, values, present),
			Count: present,
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		va, vb := out[a].Value, out[b].Value
		if math.IsNaN(vb) {
			return !math.IsNaN(va)
		}
		return va > vb
	})

	limit := opts.Limit
	if limit == 0 {
		limit = DefaultPlotLimit
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// reduce applies method to one group. values holds the numeric cells and
// present counts every non-missing cell. Sum of nothing is 0 and Average of
// nothing is NaN.
func reduce(method domain.AggregationMethod, values []float64, present int) float64 {
	switch method {
	case domain.AggregationAverage:
		if len(values) == 0 {
			return math.NaN()
		}
		return stat.Mean(values, nil)
	case domain.AggregationCount:
		return float64(present)
	default:
		return floats.Sum(values)
	}
}

type rowGroup struct {
	key  string
	rows []int
}

// groupRows buckets row indices by the group column, dropping rows whose key
// is missing. A numeric column is keyed by value, so "1" and "1.0" share a
// group labelled by the first text seen. Groups are ordered by key,
// numerically when the column is numeric.
func groupRows(t *domain.Table, column string) ([]rowGroup, error) {
	ci, ok := t.ColumnIndex(column)
	if !ok {
		return nil, fmt.Errorf("group by %q: %w", column, ErrColumnNotFound)
	}

	numeric := isNumericColumn(t, ci)
	byKey := make(map[cellKey]int)
	var groups []rowGroup
	var keys []domain.Cell
	for i := 0; i < t.Len(); i++ {
		c := t.Row(i)[ci]
		if c.IsMissing() {
			continue
		}
		k := keyOf(c, numeric)
		gi, seen := byKey[k]
		if !seen {
			gi = len(groups)
			byKey[k] = gi
			groups = append(groups, rowGroup{key: c.Text})
			keys = append(keys, c)
		}
		groups[gi].rows = append(groups[gi].rows, i)
	}

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lessKey(keys[order[a]], keys[order[b]], numeric)
	})

	sorted := make([]rowGroup, len(groups))
	for i, gi := range order {
		sorted[i] = groups[gi]
	}
	return sorted, nil
}

// numbersAt collects the numeric values of column ci over the given rows and
// counts the cells that are not missing.
func numbersAt(t *domain.Table, rows []int, ci int) ([]float64, int) {
	values := make([]float64, 0, len(rows))
	present := 0
	for _, i := range rows {
		c := t.Row(i)[ci]
		if c.IsMissing() {
			continue
		}
		present++
		if c.IsNumber() {
			values = append(values, c.Num)
		}
	}
	return values, present
}
