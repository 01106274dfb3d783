package domain

import "math"

// SummaryMode tells which kind of numeric summary was produced.
type SummaryMode string

const (
	SummaryDescribe SummaryMode = "describe"
	SummaryGrouped  SummaryMode = "grouped"
)

// Describe statistic names, in output order.
const (
	StatCount = "count"
	StatMean  = "mean"
	StatStd   = "std"
	StatMin   = "min"
	StatQ1    = "25%"
	StatQ2    = "50%"
	StatQ3    = "75%"
	StatMax   = "max"
)

// DescribeStats lists the describe rows in order.
func DescribeStats() []string {
	return []string{StatCount, StatMean, StatStd, StatMin, StatQ1, StatQ2, StatQ3, StatMax}
}

// NumericSummary is a rectangular table of numbers. In describe mode the index
// holds statistic names; in grouped mode it holds group keys and IndexName is
// the grouping column. Values[i][j] belongs to Index[i] and Columns[j].
type NumericSummary struct {
	Mode      SummaryMode       `json:"mode"`
	Method    AggregationMethod `json:"method,omitempty"`
	IndexName string            `json:"index_name,omitempty"`
	Index     []string          `json:"index"`
	Columns   []string          `json:"columns"`
	Values    [][]float64       `json:"-"`
}

// IsEmpty reports whether there is nothing to show.
func (s *NumericSummary) IsEmpty() bool {
	return s == nil || len(s.Columns) == 0
}

// Value looks up a single entry by index label and column.
func (s *NumericSummary) Value(index, column string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	ri, ci := -1, -1
	for i, v := range s.Index {
		if v == index {
			ri = i
			break
		}
	}
	for j, c := range s.Columns {
		if c == column {
			ci = j
			break
		}
	}
	if ri < 0 || ci < 0 {
		return 0, false
	}
	return s.Values[ri][ci], true
}

// Row returns the values of one index entry.
func (s *NumericSummary) Row(index string) ([]float64, bool) {
	for i, v := range s.Index {
		if v == index {
			return s.Values[i], true
		}
	}
	return nil, false
}

// NullableValues returns Values with NaN replaced by nil so the table can be
// encoded as JSON.
func (s *NumericSummary) NullableValues() [][]*float64 {
	out := make([][]*float64, len(s.Values))
	for i, row := range s.Values {
		out[i] = NullableFloats(row)
	}
	return out
}

// NullableFloats maps NaN and infinities to nil.
func NullableFloats(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for j, v := range vs {
		out[j] = NullableFloat(v)
	}
	return out
}

// NullableFloat maps NaN and infinities to nil.
func NullableFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FrequencyEntry is one distinct value and how often it occurs.
type FrequencyEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FrequencyTable holds the most frequent values of one column, most frequent first.
type FrequencyTable struct {
	Column  string           `json:"column"`
	Entries []FrequencyEntry `json:"entries"`
}

// CategoricalSummary holds frequency tables in table column order.
type CategoricalSummary struct {
	Tables []FrequencyTable `json:"tables"`
}

// Get returns the frequency table of a column.
func (c CategoricalSummary) Get(column string) (FrequencyTable, bool) {
	for _, t := range c.Tables {
		if t.Column == column {
			return t, true
		}
	}
	return FrequencyTable{}, false
}

// Columns returns the summarized column names in order.
func (c CategoricalSummary) Columns() []string {
	out := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		out[i] = t.Column
	}
	return out
}

// IsEmpty reports whether no column was summarized.
func (c CategoricalSummary) IsEmpty() bool { return len(c.Tables) == 0 }

// ChartPoint is a single labelled bar.
type ChartPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// ChartSeries is a named sequence of points.
type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

// BarChart is a render-ready description of a bar chart.
type BarChart struct {
	ChartType string        `json:"chart_type"`
	Title     string        `json:"title"`
	XAxis     string        `json:"x_axis"`
	YAxis     string        `json:"y_axis"`
	Series    []ChartSeries `json:"series"`
}
