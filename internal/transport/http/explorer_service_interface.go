package http

import (
	"context"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/services"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/session"
	api "github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/api/v1"
	"github.com/alan-aru/MOD006901-PrescribeGUI/pkg/contracts/domain"
)

// ExplorerServiceInterface defines the interface for dataset and query operations
type ExplorerServiceInterface interface {
	LoadDataset(ctx context.Context, path string) (session.TaskSnapshot, error)
	Task(ctx context.Context, id string) (session.TaskSnapshot, error)
	Tasks(ctx context.Context) []session.TaskSnapshot
	CurrentDataset(ctx context.Context) (api.DatasetInfo, error)
	ListDatasetFiles(ctx context.Context) ([]api.DatasetFile, error)

	Columns(ctx context.Context) (domain.ColumnClassification, error)
	FilterOptions(ctx context.Context) (api.FilterOptionsResponse, error)
	Plot(ctx context.Context, req api.PlotRequest) (*services.PlotResult, error)
	Summary(ctx context.Context, req api.SummaryRequest) (*services.SummaryResult, error)
}

var _ ExplorerServiceInterface = (*services.ExplorerService)(nil)
