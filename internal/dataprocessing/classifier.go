package dataprocessing

import "github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"

// DefaultIdentifierColumns are coded columns that look numeric but must be
// treated as labels.
func DefaultIdentifierColumns() []string {
	return []string{domain.ColumnSNOMEDCode}
}

// Classify splits the table's columns into numeric and categorical using the
// default identifier list.
func Classify(t *domain.Table) domain.ColumnClassification {
	return ClassifyWith(t, DefaultIdentifierColumns()...)
}

// ClassifyWith splits the table's columns into numeric and categorical. A
// column is numeric when it has at least one value and every value parses as a
// number. SNOMED_CODE and the given identifier columns are always categorical.
func ClassifyWith(t *domain.Table, identifiers ...string) domain.ColumnClassification {
	out := domain.ColumnClassification{
		Numeric:     []string{},
		Categorical: []string{},
	}
	if t == nil {
		return out
	}

	forced := make(map[string]bool, len(identifiers)+1)
	forced[domain.ColumnSNOMEDCode] = true
	for _, id := range identifiers {
		forced[id] = true
	}

	for ci, name := range t.Columns() {
		if !forced[name] && isNumericColumn(t, ci) {
			out.Numeric = append(out.Numeric, name)
		} else {
			out.Categorical = append(out.Categorical, name)
		}
	}
	return out
}

func isNumericColumn(t *domain.Table, ci int) bool {
	seen := false
	for i := 0; i < t.Len(); i++ {
		c := t.Row(i)[ci]
		switch c.Kind {
		case domain.CellMissing:
			continue
		case domain.CellNumber:
			seen = true
		default:
			return false
		}
	}
	return seen
}
