package dataprocessing

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

const (
	numericHeader     = "=== Numeric Summary ==="
	categoricalHeader = "=== Categorical Summary ==="
)

// WriteSummaryReport renders the numeric table followed by one value count
// listing per categorical column. Either part is omitted when empty.
func WriteSummaryReport(w io.Writer, numeric *domain.NumericSummary, categorical domain.CategoricalSummary) error {
	bw := bufio.NewWriter(w)

	if !numeric.IsEmpty() {
		fmt.Fprintln(bw, numericHeader)
		if err := writeNumericTable(bw, numeric); err != nil {
			return err
		}
		fmt.Fprintln(bw)
	}

	if !categorical.IsEmpty() {
		fmt.Fprintln(bw, categoricalHeader)
		for _, table := range categorical.Tables {
			fmt.Fprintf(bw, "%s value counts:\n", table.Column)
			tw := tabwriter.NewWriter(bw, 0, 0, 2, ' ', 0)
			for _, e := range table.Entries {
				fmt.Fprintf(tw, "%s\t%d\n", e.Value, e.Count)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(bw)
		}
	}

	return bw.Flush()
}

// SummaryReport returns WriteSummaryReport output as a string.
func SummaryReport(numeric *domain.NumericSummary, categorical domain.CategoricalSummary) string {
	var sb strings.Builder
	_ = WriteSummaryReport(&sb, numeric, categorical)
	return sb.String()
}

func writeNumericTable(w io.Writer, s *domain.NumericSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	integral := s.Mode == domain.SummaryGrouped && s.Method == domain.AggregationCount

	fmt.Fprint(tw, s.IndexName)
	for _, col := range s.Columns {
		fmt.Fprintf(tw, "\t%s", col)
	}
	fmt.Fprint(tw, "\t\n")

	for i, label := range s.Index {
		fmt.Fprint(tw, label)
		for _, v := range s.Values[i] {
			fmt.Fprintf(tw, "\t%s", FormatValue(v, integral))
		}
		fmt.Fprint(tw, "\t\n")
	}
	return tw.Flush()
}

// FormatValue prints a summary number with two decimals, or none when
// integral is set. NaN prints as "NaN".
func FormatValue(v float64, integral bool) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case integral:
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}
