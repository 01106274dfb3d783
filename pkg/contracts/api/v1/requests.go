// Package api contains the HTTP API contracts of the explorer.
// Version v1 represents the current stable API version.
package api

// Dataset API Requests

// LoadDatasetRequest asks the server to load a dataset file in the background.
type LoadDatasetRequest struct {
	Path string `json:"path" validate:"required,dataset_path"`
}

// Explorer API Requests

// PlotRequest selects rows with Filters, groups them by X and reduces Y.
// Filter values of "" or "All" leave a column unconstrained. An unknown
// aggregation is treated as Sum.
type PlotRequest struct {
	Filters     map[string]string `json:"filters,omitempty" validate:"omitempty,max=32,dive,keys,column,endkeys,max=512"`
	X           string            `json:"x" validate:"required,column"`
	Y           string            `json:"y" validate:"required,column"`
	Aggregation string            `json:"aggregation,omitempty" validate:"omitempty,max=32"`
}

// SummaryRequest selects rows with Filters and summarizes them. When both
// GroupBy and Aggregation are set the numeric summary is grouped; otherwise
// it holds describe statistics.
type SummaryRequest struct {
	Filters     map[string]string `json:"filters,omitempty" validate:"omitempty,max=32,dive,keys,column,endkeys,max=512"`
	GroupBy     string            `json:"group_by,omitempty" validate:"omitempty,column"`
	Aggregation string            `json:"aggregation,omitempty" validate:"omitempty,max=32"`
}

// ExportQuery is the query string of the export endpoints.
type ExportQuery struct {
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}
