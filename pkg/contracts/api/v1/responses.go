package api

import (
	"time"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// Response statuses
const (
	StatusSuccess = "success"
	StatusNoData  = "no_data"
)

// NoDataMessage is shown when filtering leaves nothing to plot or summarize.
const NoDataMessage = "No rows match the selected filters."

// DatasetInfo describes the dataset currently loaded.
type DatasetInfo struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	LoadedAt time.Time `json:"loaded_at"`
}

// DatasetFile is a candidate dataset found in the data directory.
type DatasetFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// FilterOptionsResponse lists the selectable values of each filter column.
type FilterOptionsResponse struct {
	AnyLabel string                `json:"any_label"`
	Filters  []domain.FilterOption `json:"filters"`
}

// GroupValue is the JSON form of domain.GroupValue; an undefined value is null.
type GroupValue struct {
	Key   string   `json:"key"`
	Value *float64 `json:"value"`
	Count int      `json:"count"`
}

// PlotResponse carries a bar chart of the filtered data.
type PlotResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message,omitempty"`
	Rows    int              `json:"rows"`
	Chart   *domain.BarChart `json:"chart,omitempty"`
	Groups  []GroupValue     `json:"groups,omitempty"`
}

// NumericSummary is the JSON form of domain.NumericSummary.
type NumericSummary struct {
	Mode      domain.SummaryMode       `json:"mode"`
	Method    domain.AggregationMethod `json:"method,omitempty"`
	IndexName string                   `json:"index_name,omitempty"`
	Index     []string                 `json:"index"`
	Columns   []string                 `json:"columns"`
	Values    [][]*float64             `json:"values"`
}

// SummaryResponse carries the numeric and categorical summaries.
type SummaryResponse struct {
	Status      string                  `json:"status"`
	Message     string                  `json:"message,omitempty"`
	Rows        int                     `json:"rows"`
	Numeric     *NumericSummary         `json:"numeric,omitempty"`
	Categorical []domain.FrequencyTable `json:"categorical,omitempty"`
}

// NewGroupValues converts plot groups for JSON encoding.
func NewGroupValues(groups []domain.GroupValue) []GroupValue {
	out := make([]GroupValue, len(groups))
	for i, g := range groups {
		out[i] = GroupValue{Key: g.Key, Value: domain.NullableFloat(g.Value), Count: g.Count}
	}
	return out
}

// NewNumericSummary converts a numeric summary for JSON encoding. nil stays nil.
func NewNumericSummary(s *domain.NumericSummary) *NumericSummary {
	if s == nil {
		return nil
	}
	return &NumericSummary{
		Mode:      s.Mode,
		Method:    s.Method,
		IndexName: s.IndexName,
		Index:     s.Index,
		Columns:   s.Columns,
		Values:    s.NullableValues(),
	}
}
