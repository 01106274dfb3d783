package session

import "errors"

var (
	// ErrNoDataset is returned when nothing has been loaded yet.
	ErrNoDataset = errors.New("no dataset loaded")

	// ErrTaskNotFound is returned for an unknown or evicted task id.
	ErrTaskNotFound = errors.New("load task not found")

	// ErrSuperseded is returned by a load that finished after a newer one was committed.
	ErrSuperseded = errors.New("load superseded by a newer dataset")
)
