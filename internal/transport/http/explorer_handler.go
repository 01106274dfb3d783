package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/dataprocessing"
	apierrors "github.com/alan-aru/MOD006901-PrescribeGUI/internal/errors"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/exporter"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/middleware"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/services"
	api "github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/api/v1"
)

var (
	summaryFormats = []string{"json", "text"}
	exportFormats  = []string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}
)

// ExplorerHandler serves dataset loading and the plot and summary queries.
type ExplorerHandler struct {
	service      ExplorerServiceInterface
	exporter     *exporter.Exporter
	validator    *middleware.Validator
	queryParams  *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewExplorerHandler creates the explorer handler. A nil validator accepts
// .csv and .xlsx dataset paths.
func NewExplorerHandler(
	service ExplorerServiceInterface,
	exp *exporter.Exporter,
	validator *middleware.Validator,
	errorHandler *apierrors.ErrorHandler,
	logger *slog.Logger,
) *ExplorerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = middleware.NewValidator()
	}
	if exp == nil {
		exp = exporter.New(logger)
	}
	return &ExplorerHandler{
		service:      service,
		exporter:     exp,
		validator:    validator,
		queryParams:  middleware.NewQueryParamValidator(errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "explorer_handler")),
	}
}

// RegisterRoutes adds the explorer routes to r, normally the /api router.
func (h *ExplorerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/datasets", func(r chi.Router) {
		r.Get("/files", h.ListFiles)
		r.Post("/", h.LoadDataset)
		r.Get("/current", h.CurrentDataset)
		r.Get("/tasks", h.ListTasks)
		r.Get("/tasks/{taskID}", h.GetTask)
	})

	r.Get("/columns", h.Columns)
	r.Get("/filters", h.Filters)
	r.Post("/plot", h.Plot)
	r.Post("/summary", h.Summary)

	r.Route("/export", func(r chi.Router) {
		r.Post("/plot", h.ExportPlot)
		r.Post("/summary", h.ExportSummary)
	})
}

// ListFiles handles GET /api/datasets/files
func (h *ExplorerHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.ListDatasetFiles(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("list dataset files", err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"files": files,
		"count": len(files),
	})
}

// LoadDataset handles POST /api/datasets. The load runs in the background;
// the response carries the task to poll.
func (h *ExplorerHandler) LoadDataset(w http.ResponseWriter, r *http.Request) {
	var req api.LoadDatasetRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	task, err := h.service.LoadDataset(r.Context(), req.Path)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Dataset load accepted",
		slog.String("task_id", task.ID),
		slog.String("source", task.Source),
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	w.Header().Set("Location", "/api/datasets/tasks/"+task.ID)
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{"task": task})
}

// ListTasks handles GET /api/datasets/tasks
func (h *ExplorerHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := h.service.Tasks(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// GetTask handles GET /api/datasets/tasks/{taskID}
func (h *ExplorerHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Task(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"task": task})
}

// CurrentDataset handles GET /api/datasets/current
func (h *ExplorerHandler) CurrentDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.CurrentDataset(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// Columns handles GET /api/columns
func (h *ExplorerHandler) Columns(w http.ResponseWriter, r *http.Request) {
	cols, err := h.service.Columns(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, cols)
}

// Filters handles GET /api/filters
func (h *ExplorerHandler) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// Plot handles POST /api/plot
func (h *ExplorerHandler) Plot(w http.ResponseWriter, r *http.Request) {
	result, ok := h.plot(w, r)
	if !ok {
		return
	}
	if result == nil {
		render.JSON(w, r, api.PlotResponse{Status: api.StatusNoData, Message: api.NoDataMessage})
		return
	}

	chart := result.Chart
	render.JSON(w, r, api.PlotResponse{
		Status: api.StatusSuccess,
		Rows:   result.Rows,
		Chart:  &chart,
		Groups: api.NewGroupValues(result.Groups),
	})
}

// Summary handles POST /api/summary. ?format=text returns the plain text report.
func (h *ExplorerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	format, ok := h.queryParams.ValidateEnum(w, r, "format", summaryFormats, "json")
	if !ok {
		return
	}
	result, ok := h.summary(w, r)
	if !ok {
		return
	}

	if format == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if result == nil {
			fmt.Fprintln(w, api.NoDataMessage)
			return
		}
		var buf bytes.Buffer
		if err := dataprocessing.WriteSummaryReport(&buf, result.Numeric, result.Categorical); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		_, _ = w.Write(buf.Bytes())
		return
	}

	if result == nil {
		render.JSON(w, r, api.SummaryResponse{Status: api.StatusNoData, Message: api.NoDataMessage})
		return
	}
	render.JSON(w, r, api.SummaryResponse{
		Status:      api.StatusSuccess,
		Rows:        result.Rows,
		Numeric:     api.NewNumericSummary(result.Numeric),
		Categorical: result.Categorical.Tables,
	})
}

// ExportPlot handles POST /api/export/plot?format=csv|xlsx
func (h *ExplorerHandler) ExportPlot(w http.ResponseWriter, r *http.Request) {
	format, ok := h.exportFormat(w, r)
	if !ok {
		return
	}
	result, ok := h.plot(w, r)
	if !ok {
		return
	}
	if result == nil {
		render.JSON(w, r, api.PlotResponse{Status: api.StatusNoData, Message: api.NoDataMessage})
		return
	}
	h.export(w, r, "plot", format, exporter.PlotSheet(result.Groups, result.Spec))
}

// ExportSummary handles POST /api/export/summary?format=csv|xlsx
func (h *ExplorerHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	format, ok := h.exportFormat(w, r)
	if !ok {
		return
	}
	result, ok := h.summary(w, r)
	if !ok {
		return
	}
	if result == nil {
		render.JSON(w, r, api.SummaryResponse{Status: api.StatusNoData, Message: api.NoDataMessage})
		return
	}
	h.export(w, r, "summary", format, exporter.SummarySheets(result.Numeric, result.Categorical)...)
}

// plot decodes and runs a plot request. A nil result with ok set means the
// filters matched nothing; when ok is false the error was already written.
func (h *ExplorerHandler) plot(w http.ResponseWriter, r *http.Request) (*services.PlotResult, bool) {
	var req api.PlotRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	result, err := h.service.Plot(r.Context(), req)
	if errors.Is(err, services.ErrNoMatchingRows) {
		return nil, true
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return result, true
}

// summary is the summary counterpart of plot.
func (h *ExplorerHandler) summary(w http.ResponseWriter, r *http.Request) (*services.SummaryResult, bool) {
	var req api.SummaryRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	result, err := h.service.Summary(r.Context(), req)
	if errors.Is(err, services.ErrNoMatchingRows) {
		return nil, true
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return result, true
}

func (h *ExplorerHandler) exportFormat(w http.ResponseWriter, r *http.Request) (exporter.Format, bool) {
	raw, ok := h.queryParams.ValidateEnum(w, r, "format", exportFormats, string(exporter.FormatCSV))
	if !ok {
		return "", false
	}
	format, err := exporter.ParseFormat(raw)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return "", false
	}
	return format, true
}

// export encodes into memory first so a failure can still be reported as a
// problem response.
func (h *ExplorerHandler) export(w http.ResponseWriter, r *http.Request, prefix string, format exporter.Format, sheets ...exporter.Sheet) {
	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, format, sheets...); err != nil {
		h.logger.ErrorContext(r.Context(), "Export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ExportFailedError(string(format)))
		return
	}

	name := exporter.FileName(prefix, format, time.Now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	_, _ = w.Write(buf.Bytes())

	h.logger.InfoContext(r.Context(), "Export served",
		slog.String("file_name", name),
		slog.Int("bytes", buf.Len()),
		slog.String("request_id", middleware.GetRequestID(r.Context())))
}
