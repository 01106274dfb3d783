package dataprocessing

import (
	"fmt"
	"sort"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// ApplyFilters returns the rows matching every active selection, in their
// original order. Unconstrained entries are ignored even when the column is
// absent. A constrained entry on a missing column is an error.
func ApplyFilters(t *domain.Table, spec *domain.FilterSpec) (*domain.Table, error) {
	active := spec.Active()
	if len(active) == 0 {
		return t, nil
	}

	type predicate struct {
		ci      int
		sel     domain.Selection
		numeric bool
	}
	preds := make([]predicate, 0, len(active))
	for _, e := range active {
		ci, ok := t.ColumnIndex(e.Column)
		if !ok {
			return nil, fmt.Errorf("filter on %q: %w", e.Column, ErrColumnNotFound)
		}
		preds = append(preds, predicate{ci: ci, sel: e.Selection, numeric: isNumericColumn(t, ci)})
	}

	keep := make([]int, 0, t.Len())
rows:
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for _, p := range preds {
			matched := p.sel.Matches(row[p.ci])
			if p.numeric {
				matched = p.sel.MatchesNumber(row[p.ci])
			}
			if !matched {
				continue rows
			}
		}
		keep = append(keep, i)
	}
	return t.Select(keep), nil
}

// FilterOptions lists the distinct non-missing values of each column that the
// table has, sorted ascending. Columns the table lacks are skipped.
func FilterOptions(t *domain.Table, columns []string) []domain.FilterOption {
	out := make([]domain.FilterOption, 0, len(columns))
	for _, col := range columns {
		ci, ok := t.ColumnIndex(col)
		if !ok {
			continue
		}
		out = append(out, domain.FilterOption{Column: col, Values: distinctSorted(t, ci)})
	}
	return out
}

// distinctSorted orders numerically when every value is a number, lexically
// otherwise. Numeric values are deduplicated by value, keeping the first text.
func distinctSorted(t *domain.Table, ci int) []string {
	numeric := isNumericColumn(t, ci)
	seen := make(map[cellKey]bool)
	var cells []domain.Cell
	for i := 0; i < t.Len(); i++ {
		c := t.Row(i)[ci]
		if c.IsMissing() {
			continue
		}
		k := keyOf(c, numeric)
		if seen[k] {
			continue
		}
		seen[k] = true
		cells = append(cells, c)
	}

	sort.SliceStable(cells, func(a, b int) bool {
		return lessKey(cells[a], cells[b], numeric)
	})

	values := make([]string, len(cells))
	for i, c := range cells {
		values[i] = c.Text
	}
	return values
}

func lessKey(a, b domain.Cell, numeric bool) bool {
	if numeric && a.Num != b.Num {
		return a.Num < b.Num
	}
	return a.Text < b.Text
}

// cellKey identifies a distinct value: by number in a numeric column and by
// text otherwise.
type cellKey struct {
	text string
	num  float64
}

func keyOf(c domain.Cell, numeric bool) cellKey {
	if numeric {
		return cellKey{num: c.Num}
	}
	return cellKey{text: c.Text}
}
