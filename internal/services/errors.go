package services

import (
	"errors"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/session"
)

// Explorer service errors
var (
	// Dataset errors
	ErrNoDatasetLoaded = session.ErrNoDataset
	ErrTaskNotFound    = session.ErrTaskNotFound

	// Query errors
	ErrNoMatchingRows = errors.New("no rows match the selected filters")
	ErrInvalidColumn  = errors.New("invalid column")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
