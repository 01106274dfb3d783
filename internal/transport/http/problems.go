package http

import (
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/dataprocessing"
	apierrors "github.com/alan-aru/MOD006901-PrescribeGUI/internal/errors"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/exporter"
	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/services"
)

// RegisterProblems teaches eh the explorer's error sentinels.
func RegisterProblems(eh *apierrors.ErrorHandler) *apierrors.ErrorHandler {
	return eh.
		MapAPIError(services.ErrNoDatasetLoaded, func(error) *apierrors.APIError {
			return apierrors.ErrDatasetNotLoaded
		}).
		MapAPIError(services.ErrInvalidColumn, apierrors.InvalidColumnError).
		MapAPIError(dataprocessing.ErrColumnNotFound, apierrors.InvalidColumnError).
		MapAPIError(services.ErrTaskNotFound, apierrors.TaskNotFoundError).
		MapAPIError(exporter.ErrUnsupportedFormat, apierrors.ValidationFailedError).
		MapAPIError(services.ErrInvalidInput, apierrors.ValidationFailedError)
}
