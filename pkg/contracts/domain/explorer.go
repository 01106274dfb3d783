package domain

import "strings"

// Fixed column names of the NHS prescribing dataset.
const (
	ColumnRegionalOffice    = "REGIONAL_OFFICE_NAME"
	ColumnPCO               = "PCO_NAME"
	ColumnICB               = "ICB_NAME"
	ColumnPractice          = "PRACTICE_NAME"
	ColumnChemicalSubstance = "BNF_CHEMICAL_SUBSTANCE"
	ColumnPresentationName  = "BNF_PRESENTATION_NAME"
	ColumnChapterPlusCode   = "BNF_CHAPTER_PLUS_CODE"
	ColumnSNOMEDCode        = "SNOMED_CODE"
	ColumnYearMonth         = "YEAR_MONTH"
	ColumnPostcode          = "POSTCODE"
)

// AnyLabel is the label user interfaces show for an unconstrained filter.
const AnyLabel = "All"

// DefaultFilterColumns lists the columns offered as filters.
func DefaultFilterColumns() []string {
	return []string{
		ColumnRegionalOffice,
		ColumnPCO,
		ColumnICB,
		ColumnPractice,
		ColumnChemicalSubstance,
		ColumnPresentationName,
		ColumnChapterPlusCode,
	}
}

// DefaultSummaryExclusions lists columns left out of the categorical summary.
func DefaultSummaryExclusions() []string {
	return []string{"ADDRESS_1", "ADDRESS_2", "ADDRESS_3", "ADDRESS_4", ColumnPostcode, ColumnYearMonth}
}

// ColumnClassification partitions a table's columns into numeric measures and
// categorical labels. Both lists follow table column order.
type ColumnClassification struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
}

// IsNumeric reports whether the column was classified as numeric.
func (c ColumnClassification) IsNumeric(column string) bool {
	return contains(c.Numeric, column)
}

// IsCategorical reports whether the column was classified as categorical.
func (c ColumnClassification) IsCategorical(column string) bool {
	return contains(c.Categorical, column)
}

// Selection is an optional equality constraint on one column.
// The zero value matches every row.
type Selection struct {
	value string
	set   bool
}

// Any returns the unconstrained selection.
func Any() Selection { return Selection{} }

// Equals returns a selection matching rows whose value is exactly v.
func Equals(v string) Selection { return Selection{value: v, set: true} }

// ParseSelection maps user input to a selection; "" and "All" mean Any.
func ParseSelection(raw string) Selection {
	if raw == "" || raw == AnyLabel {
		return Any()
	}
	return Equals(raw)
}

// IsAny reports whether the selection imposes no constraint.
func (s Selection) IsAny() bool { return !s.set }

// Value returns the required value and whether one is set.
func (s Selection) Value() (string, bool) { return s.value, s.set }

// Matches reports whether a cell satisfies the selection.
func (s Selection) Matches(c Cell) bool {
	if !s.set {
		return true
	}
	return !c.IsMissing() && c.Text == s.value
}

// MatchesNumber is Matches for a numeric column: a numeric required value
// compares by number, so "1" selects a cell read from "1.0".
func (s Selection) MatchesNumber(c Cell) bool {
	if !s.set || !c.IsNumber() {
		return s.Matches(c)
	}
	if want, ok := parseNumber(strings.TrimSpace(s.value)); ok {
		return c.Num == want
	}
	return c.Text == s.value
}

func (s Selection) String() string {
	if !s.set {
		return AnyLabel
	}
	return s.value
}

// FilterEntry pairs a column with its selection.
type FilterEntry struct {
	Column    string
	Selection Selection
}

// FilterSpec is an ordered set of per-column selections. Setting a column
// twice replaces its selection in place.
type FilterSpec struct {
	entries []FilterEntry
}

// NewFilterSpec returns an empty spec.
func NewFilterSpec() *FilterSpec { return &FilterSpec{} }

// FilterSpecFromMap builds a spec from raw form values, visiting columns in
// the order given. Columns without a value are unconstrained.
func FilterSpecFromMap(columns []string, values map[string]string) *FilterSpec {
	spec := NewFilterSpec()
	for _, col := range columns {
		spec.Set(col, ParseSelection(values[col]))
	}
	return spec
}

// Set adds or replaces the selection for a column.
func (f *FilterSpec) Set(column string, sel Selection) *FilterSpec {
	for i := range f.entries {
		if f.entries[i].Column == column {
			f.entries[i].Selection = sel
			return f
		}
	}
	f.entries = append(f.entries, FilterEntry{Column: column, Selection: sel})
	return f
}

// Entries returns the entries in insertion order.
func (f *FilterSpec) Entries() []FilterEntry {
	if f == nil {
		return nil
	}
	out := make([]FilterEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Active returns only the constrained entries.
func (f *FilterSpec) Active() []FilterEntry {
	if f == nil {
		return nil
	}
	var out []FilterEntry
	for _, e := range f.entries {
		if !e.Selection.IsAny() {
			out = append(out, e)
		}
	}
	return out
}

// Restrict returns a copy holding only entries whose column is allowed.
func (f *FilterSpec) Restrict(allowed []string) *FilterSpec {
	out := NewFilterSpec()
	for _, e := range f.Entries() {
		if contains(allowed, e.Column) {
			out.entries = append(out.entries, e)
		}
	}
	return out
}

// Map renders the active selections as column -> value.
func (f *FilterSpec) Map() map[string]string {
	out := make(map[string]string)
	for _, e := range f.Active() {
		v, _ := e.Selection.Value()
		out[e.Column] = v
	}
	return out
}

// AggregationMethod is the reduction applied to a measure within a group.
type AggregationMethod string

const (
	AggregationSum     AggregationMethod = "Sum"
	AggregationAverage AggregationMethod = "Average"
	AggregationCount   AggregationMethod = "Count"
)

// AggregationMethods lists the supported methods in display order.
func AggregationMethods() []AggregationMethod {
	return []AggregationMethod{AggregationSum, AggregationAverage, AggregationCount}
}

// ParseAggregationMethod is case-insensitive; anything unrecognized is Sum.
func ParseAggregationMethod(s string) AggregationMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "average", "mean", "avg":
		return AggregationAverage
	case "count":
		return AggregationCount
	default:
		return AggregationSum
	}
}

// Normalize maps the method onto a supported value.
func (m AggregationMethod) Normalize() AggregationMethod {
	return ParseAggregationMethod(string(m))
}

// AggregationSpec selects a grouped reduction.
type AggregationSpec struct {
	GroupBy string            `json:"group_by"`
	Measure string            `json:"measure"`
	Method  AggregationMethod `json:"method"`
}

// GroupValue is one reduced group. Value is NaN when an average is taken
// over no values.
type GroupValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// FilterOption lists the selectable values of one filter column.
type FilterOption struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
