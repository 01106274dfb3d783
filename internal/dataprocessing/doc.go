// Package dataprocessing holds the analytical core of the prescribing explorer.
// Every operation takes an immutable domain.Table and returns a new value, so the
// functions are safe to call from many goroutines over the same snapshot.
//
// # Architecture
//
// The package is organized into five components:
//
// 1. Loader: reads CSV or XLSX extracts into a domain.Table
// 2. Classifier: splits columns into numeric measures and categorical labels
// 3. Filters: applies per-column equality selections
// 4. Aggregator: groups rows by a category and reduces one measure
// 5. Summarizer: builds describe-style numeric tables and frequency counts
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger, dataprocessing.LoaderOptions{})
//	table, err := loader.LoadFile(ctx, "prescriptions.csv")
//	if err != nil {
//	    return err
//	}
//
//	spec := domain.NewFilterSpec().Set(domain.ColumnICB, domain.Equals("NHS KENT"))
//	filtered, err := dataprocessing.ApplyFilters(table, spec)
//
//	groups, err := dataprocessing.AggregateForPlot(filtered, domain.ColumnPractice, "ITEMS", domain.AggregationSum)
//
// # Data Flow
//
//	File → Loader → Table → Filters → Aggregator / Summarizer → chart and report renderers
//
// # Missing Values
//
// Cells equal to one of the pandas NA tokens ("", "NA", "NaN", "NULL" and so on)
// are missing. Missing measure values are skipped by every reducer and rows with
// a missing group key are dropped before grouping.
package dataprocessing
