package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/config"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/dataprocessing"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/exporter"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/files"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/infrastructure"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/services"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/session"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/validation"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts"
	api "github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/api/v1"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

type options struct {
	sheet    string
	logLevel string

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "rxsummary",
		Short:         "Summarize English Prescribing Dataset extracts",
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "XLSX worksheet to read (default: first sheet)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level of the stderr log")

	root.AddCommand(
		newColumnsCmd(opts),
		newPlotCmd(opts),
		newSummaryCmd(opts),
	)
	return root
}

func newColumnsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "columns <file>",
		Short: "List the numeric and categorical columns of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := opts.open(cmd.Context(), args[0], nil, nil)
			if err != nil {
				return err
			}
			cols, err := svc.Columns(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(opts.stdout, "Numeric columns:")
			for _, c := range cols.Numeric {
				fmt.Fprintf(opts.stdout, "  %s\n", c)
			}
			fmt.Fprintln(opts.stdout, "Categorical columns:")
			for _, c := range cols.Categorical {
				fmt.Fprintf(opts.stdout, "  %s\n", c)
			}
			return nil
		},
	}
}

func newPlotCmd(opts *options) *cobra.Command {
	var (
		x, y, agg, out string
		filters        []string
	)

	cmd := &cobra.Command{
		Use:   "plot <file>",
		Short: "Print the top groups of a measure",
		Long: `Group the filtered rows by a categorical column, reduce a numeric
column per group and print the largest groups, as the explorer charts them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			values, filterCols, err := parseFilters(filters)
			if err != nil {
				return err
			}
			svc, logger, err := opts.open(ctx, args[0], filterCols, nil)
			if err != nil {
				return err
			}

			result, err := svc.Plot(ctx, api.PlotRequest{Filters: values, X: x, Y: y, Aggregation: agg})
			if errors.Is(err, services.ErrNoMatchingRows) {
				fmt.Fprintln(opts.stdout, api.NoDataMessage)
				return nil
			}
			if err != nil {
				return err
			}

			if err := writePlotTable(opts.stdout, result); err != nil {
				return err
			}
			if out == "" {
				return nil
			}
			return opts.export(logger, out, exporter.PlotSheet(result.Groups, result.Spec))
		},
	}

	cmd.Flags().StringVar(&x, "x", "", "categorical column to group by")
	cmd.Flags().StringVar(&y, "y", "", "numeric column to aggregate")
	cmd.Flags().StringVar(&agg, "agg", string(domain.AggregationSum), "aggregation: "+methodList())
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "COLUMN=VALUE row filter, repeatable")
	cmd.Flags().StringVar(&out, "out", "", "also export the groups to a .csv or .xlsx file")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func newSummaryCmd(opts *options) *cobra.Command {
	var (
		groupBy, agg, out string
		filters, exclude  []string
	)

	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Print the numeric and categorical summary report",
		Long: `Print describe statistics of every numeric column, or one aggregate per
group when both --group-by and --agg are given, followed by the value counts
of the categorical columns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			values, filterCols, err := parseFilters(filters)
			if err != nil {
				return err
			}
			svc, logger, err := opts.open(ctx, args[0], filterCols, exclude)
			if err != nil {
				return err
			}

			result, err := svc.Summary(ctx, api.SummaryRequest{Filters: values, GroupBy: groupBy, Aggregation: agg})
			if errors.Is(err, services.ErrNoMatchingRows) {
				fmt.Fprintln(opts.stdout, api.NoDataMessage)
				return nil
			}
			if err != nil {
				return err
			}

			if err := dataprocessing.WriteSummaryReport(opts.stdout, result.Numeric, result.Categorical); err != nil {
				return err
			}
			if out == "" {
				return nil
			}
			return opts.export(logger, out, exporter.SummarySheets(result.Numeric, result.Categorical)...)
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "", "categorical column for a grouped numeric summary")
	cmd.Flags().StringVar(&agg, "agg", "", "aggregation of the grouped summary: "+methodList())
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "COLUMN=VALUE row filter, repeatable")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "column left out of the value counts, repeatable")
	cmd.Flags().StringVar(&out, "out", "", "also export the report to a .csv or .xlsx file")
	return cmd
}

// open loads path into a fresh session and returns an explorer over it.
// filterCols are the columns the query may constrain; exclude extends the
// configured summary exclusions.
func (o *options) open(ctx context.Context, path string, filterCols, exclude []string) (*services.ExplorerService, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.Logging
	logCfg.Level = o.logLevel
	logCfg.Output = "console"
	logger, _, err := infrastructure.NewLogger(logCfg, o.stderr)
	if err != nil {
		return nil, nil, err
	}

	sheet := o.sheet
	if sheet == "" {
		sheet = cfg.Explorer.Sheet
	}

	sess := session.New(
		dataprocessing.NewLoader(logger, dataprocessing.LoaderOptions{Sheet: sheet}),
		session.Config{MaxConcurrentLoads: 1, MaxTasks: 1, Identifiers: cfg.Explorer.IdentifierColumns},
		logger,
	)
	fileValidator := validation.NewFileValidator(logger,
		validation.WithExtensions(cfg.Explorer.AllowedExtensions...),
		validation.WithMaxSizeMB(cfg.Explorer.MaxFileMB),
	)

	exclusions := append(append([]string(nil), cfg.Explorer.SummaryExclusions...), exclude...)
	svc := services.NewExplorerService(sess, files.NewDiscovery("."), fileValidator, services.ExplorerConfig{
		FilterColumns:     filterCols,
		SummaryExclusions: exclusions,
		PlotLimit:         cfg.Explorer.PlotLimit,
		FrequencyLimit:    cfg.Explorer.FrequencyLimit,
	}, nil, nil, logger)

	snapshot, err := svc.LoadDataset(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	task, err := sess.Task(snapshot.ID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := task.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return svc, logger, nil
}

func (o *options) export(logger *slog.Logger, path string, sheets ...exporter.Sheet) error {
	if err := exporter.New(logger).WriteFile(path, sheets...); err != nil {
		return err
	}
	fmt.Fprintf(o.stderr, "Wrote %s\n", path)
	return nil
}

// parseFilters splits COLUMN=VALUE pairs. The returned columns keep the
// order of their first appearance; a repeated column keeps its last value.
func parseFilters(raw []string) (map[string]string, []string, error) {
	values := make(map[string]string, len(raw))
	columns := make([]string, 0, len(raw))
	for _, f := range raw {
		col, val, ok := strings.Cut(f, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, nil, fmt.Errorf("invalid filter %q: want COLUMN=VALUE", f)
		}
		if _, seen := values[col]; !seen {
			columns = append(columns, col)
		}
		values[col] = strings.TrimSpace(val)
	}
	return values, columns, nil
}

func methodList() string {
	methods := domain.AggregationMethods()
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func writePlotTable(w io.Writer, result *services.PlotResult) error {
	spec := result.Spec
	integral := spec.Method == domain.AggregationCount

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s of %s\trows\n", spec.GroupBy, spec.Method, spec.Measure)
	for _, g := range result.Groups {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", g.Key, dataprocessing.FormatValue(g.Value, integral), g.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d rows matched\n", result.Rows)
	return err
}
