package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/dataprocessing"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/files"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/infrastructure"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/session"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/validation"
	api "github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/api/v1"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// ExplorerConfig holds the query settings of the explorer.
type ExplorerConfig struct {
	FilterColumns     []string
	SummaryExclusions []string
	PlotLimit         int
	FrequencyLimit    int
}

// DefaultExplorerConfig returns the stock column lists and limits.
func DefaultExplorerConfig() ExplorerConfig {
	return ExplorerConfig{
		FilterColumns:     domain.DefaultFilterColumns(),
		SummaryExclusions: domain.DefaultSummaryExclusions(),
		PlotLimit:         dataprocessing.DefaultPlotLimit,
		FrequencyLimit:    dataprocessing.DefaultFrequencyLimit,
	}
}

// PlotResult is a reduced, ordered and truncated view of the filtered rows.
type PlotResult struct {
	Rows    int
	Filters map[string]string
	Spec    domain.AggregationSpec
	Groups  []domain.GroupValue
	Chart   domain.BarChart
}

// SummaryResult holds both summaries of the filtered rows.
type SummaryResult struct {
	Rows        int
	Filters     map[string]string
	Numeric     *domain.NumericSummary
	Categorical domain.CategoricalSummary
}

// ExplorerService coordinates dataset loading and queries over the current dataset.
type ExplorerService struct {
	session   *session.Session
	discovery *files.Discovery
	validator *validation.FileValidator
	cfg       ExplorerConfig
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewExplorerService creates an explorer service. metrics and tracer may be nil.
func NewExplorerService(
	sess *session.Session,
	discovery *files.Discovery,
	validator *validation.FileValidator,
	cfg ExplorerConfig,
	metrics *infrastructure.BusinessMetrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) *ExplorerService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	if discovery == nil {
		discovery = files.NewDiscovery(".")
	}
	if validator == nil {
		validator = validation.NewFileValidator(logger)
	}
	if cfg.FilterColumns == nil {
		cfg.FilterColumns = domain.DefaultFilterColumns()
	}
	if cfg.FrequencyLimit == 0 {
		cfg.FrequencyLimit = dataprocessing.DefaultFrequencyLimit
	}
	return &ExplorerService{
		session:   sess,
		discovery: discovery,
		validator: validator,
		cfg:       cfg,
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger.With(slog.String("service", "explorer")),
	}
}

// LoadDataset validates path and starts loading it in the background.
// Relative paths are resolved against the data directory. The load outlives
// ctx; cancelling the request does not cancel it.
func (s *ExplorerService) LoadDataset(ctx context.Context, path string) (session.TaskSnapshot, error) {
	resolved := s.discovery.Resolve(path)
	if err := s.validator.ValidateDatasetFile(resolved); err != nil {
		s.logger.WarnContext(ctx, "dataset rejected",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return session.TaskSnapshot{}, err
	}

	task := s.session.Load(context.WithoutCancel(ctx), resolved)
	s.logger.InfoContext(ctx, "dataset load queued",
		slog.String("task_id", task.ID()),
		slog.String("path", resolved))
	return task.Snapshot(), nil
}

// Task returns the state of a load task.
func (s *ExplorerService) Task(ctx context.Context, id string) (session.TaskSnapshot, error) {
	task, err := s.session.Task(id)
	if err != nil {
		return session.TaskSnapshot{}, err
	}
	return task.Snapshot(), nil
}

// Tasks lists the tracked load tasks, oldest first.
func (s *ExplorerService) Tasks(ctx context.Context) []session.TaskSnapshot {
	return s.session.Tasks()
}

// CurrentDataset describes the loaded dataset.
func (s *ExplorerService) CurrentDataset(ctx context.Context) (api.DatasetInfo, error) {
	ds, err := s.session.Current()
	if err != nil {
		return api.DatasetInfo{}, err
	}
	return api.DatasetInfo{
		ID:       ds.ID,
		Name:     ds.Name,
		Source:   ds.Source,
		Rows:     ds.Table.Len(),
		Columns:  ds.Table.Columns(),
		LoadedAt: ds.LoadedAt,
	}, nil
}

// Columns returns the classification of the loaded dataset.
func (s *ExplorerService) Columns(ctx context.Context) (domain.ColumnClassification, error) {
	ds, err := s.session.Current()
	if err != nil {
		return domain.ColumnClassification{}, err
	}
	return ds.Classification, nil
}

// FilterOptions lists the distinct values of each filter column present in
// the loaded dataset.
func (s *ExplorerService) FilterOptions(ctx context.Context) (api.FilterOptionsResponse, error) {
	ds, err := s.session.Current()
	if err != nil {
		return api.FilterOptionsResponse{}, err
	}
	return api.FilterOptionsResponse{
		AnyLabel: domain.AnyLabel,
		Filters:  dataprocessing.FilterOptions(ds.Table, s.cfg.FilterColumns),
	}, nil
}

// ListDatasetFiles lists candidate dataset files in the data directory, newest first.
func (s *ExplorerService) ListDatasetFiles(ctx context.Context) ([]api.DatasetFile, error) {
	found, err := s.discovery.FindDatasets(".")
	if err != nil {
		return nil, err
	}
	out := make([]api.DatasetFile, len(found))
	for i, f := range found {
		out[i] = api.DatasetFile{Name: f.Name, Path: f.Path, Size: f.Size, ModTime: f.ModTime}
	}
	return out, nil
}

// Plot filters the dataset, groups it by req.X and reduces req.Y.
// X must be categorical and Y numeric. An empty selection yields ErrNoMatchingRows.
func (s *ExplorerService) Plot(ctx context.Context, req api.PlotRequest) (*PlotResult, error) {
	ctx, span := s.tracer.Start(ctx, "explorer.plot", trace.WithAttributes(
		attribute.String("plot.x", req.X),
		attribute.String("plot.y", req.Y),
	))
	defer span.End()
	start := time.Now()

	result, err := s.plot(ctx, req)
	s.finish(ctx, span, "plot", start, err)
	if err == nil {
		span.SetAttributes(
			attribute.Int("plot.rows", result.Rows),
			attribute.Int("plot.groups", len(result.Groups)))
	}
	return result, err
}

func (s *ExplorerService) plot(ctx context.Context, req api.PlotRequest) (*PlotResult, error) {
	ds, err := s.session.Current()
	if err != nil {
		return nil, err
	}
	if err := requireColumn(ds, req.X, ds.Classification.IsCategorical, "categorical"); err != nil {
		return nil, err
	}
	if err := requireColumn(ds, req.Y, ds.Classification.IsNumeric, "numeric"); err != nil {
		return nil, err
	}

	filtered, spec, err := s.filter(ds, req.Filters)
	if err != nil {
		return nil, err
	}
	if filtered.IsEmpty() {
		return nil, ErrNoMatchingRows
	}

	agg := domain.AggregationSpec{
		GroupBy: req.X,
		Measure: req.Y,
		Method:  domain.ParseAggregationMethod(req.Aggregation),
	}
	groups, err := dataprocessing.Aggregate(filtered, dataprocessing.AggregateOptions{
		GroupBy: agg.GroupBy,
		Measure: agg.Measure,
		Method:  agg.Method,
		Limit:   s.cfg.PlotLimit,
	})
	if err != nil {
		return nil, columnError(err)
	}

	s.logger.DebugContext(ctx, "plot computed",
		slog.String("x", agg.GroupBy),
		slog.String("y", agg.Measure),
		slog.String("method", string(agg.Method)),
		slog.Int("rows", filtered.Len()),
		slog.Int("groups", len(groups)))

	return &PlotResult{
		Rows:    filtered.Len(),
		Filters: spec.Map(),
		Spec:    agg,
		Groups:  groups,
		Chart:   dataprocessing.BuildBarChart(groups, agg.GroupBy, agg.Measure, agg.Method),
	}, nil
}

// Summary filters the dataset and summarizes it. With both GroupBy and
// Aggregation set the numeric part is reduced per group; otherwise it holds
// describe statistics. An empty selection yields ErrNoMatchingRows.
func (s *ExplorerService) Summary(ctx context.Context, req api.SummaryRequest) (*SummaryResult, error) {
	ctx, span := s.tracer.Start(ctx, "explorer.summary", trace.WithAttributes(
		attribute.String("summary.group_by", req.GroupBy),
		attribute.String("summary.aggregation", req.Aggregation),
	))
	defer span.End()
	start := time.Now()

	result, err := s.summary(ctx, req)
	s.finish(ctx, span, "summary", start, err)
	if err == nil {
		span.SetAttributes(attribute.Int("summary.rows", result.Rows))
	}
	return result, err
}

func (s *ExplorerService) summary(ctx context.Context, req api.SummaryRequest) (*SummaryResult, error) {
	ds, err := s.session.Current()
	if err != nil {
		return nil, err
	}

	var method domain.AggregationMethod
	if req.GroupBy != "" && req.Aggregation != "" {
		if err := requireColumn(ds, req.GroupBy, ds.Classification.IsCategorical, "categorical"); err != nil {
			return nil, err
		}
		method = domain.ParseAggregationMethod(req.Aggregation)
	}

	filtered, spec, err := s.filter(ds, req.Filters)
	if err != nil {
		return nil, err
	}
	if filtered.IsEmpty() {
		return nil, ErrNoMatchingRows
	}

	groupBy := req.GroupBy
	if method == "" {
		groupBy = ""
	}
	numeric, err := dataprocessing.NumericSummary(filtered, ds.Classification.Numeric, method, groupBy)
	if err != nil {
		return nil, columnError(err)
	}
	categorical := dataprocessing.CategoricalSummaryN(filtered, ds.Classification.Numeric, s.cfg.SummaryExclusions, s.cfg.FrequencyLimit)

	s.logger.DebugContext(ctx, "summary computed",
		slog.String("group_by", groupBy),
		slog.String("method", string(method)),
		slog.Int("rows", filtered.Len()),
		slog.Int("frequency_tables", len(categorical.Tables)))

	return &SummaryResult{
		Rows:        filtered.Len(),
		Filters:     spec.Map(),
		Numeric:     numeric,
		Categorical: categorical,
	}, nil
}

// filter applies the raw filter values of the configured filter columns.
// Values for other columns are ignored.
func (s *ExplorerService) filter(ds *session.Dataset, raw map[string]string) (*domain.Table, *domain.FilterSpec, error) {
	spec := domain.FilterSpecFromMap(s.cfg.FilterColumns, raw)
	filtered, err := dataprocessing.ApplyFilters(ds.Table, spec)
	if err != nil {
		return nil, nil, columnError(err)
	}
	return filtered, spec, nil
}

func (s *ExplorerService) finish(ctx context.Context, span trace.Span, kind string, start time.Time, err error) {
	recorded := err
	if errors.Is(err, ErrNoMatchingRows) {
		recorded = nil
		span.SetAttributes(attribute.Bool(kind+".no_data", true))
	}
	if recorded != nil {
		span.RecordError(recorded)
		span.SetStatus(codes.Error, recorded.Error())
		s.logger.WarnContext(ctx, kind+" query failed", slog.String("error", recorded.Error()))
	}
	infrastructure.RecordQuery(ctx, s.metrics, kind, time.Since(start), recorded)
}

func requireColumn(ds *session.Dataset, column string, ofKind func(string) bool, kind string) error {
	if !ds.Table.HasColumn(column) {
		return fmt.Errorf("%w: column %q not found", ErrInvalidColumn, column)
	}
	if !ofKind(column) {
		return fmt.Errorf("%w: column %q is not %s", ErrInvalidColumn, column, kind)
	}
	return nil
}

// columnError maps a core column lookup failure onto ErrInvalidColumn.
func columnError(err error) error {
	if errors.Is(err, dataprocessing.ErrColumnNotFound) {
		return fmt.Errorf("%w: %w", ErrInvalidColumn, err)
	}
	return err
}
