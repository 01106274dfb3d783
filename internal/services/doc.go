// Package services implements the explorer's business logic between the
// transport layer and the data processing core.
//
// ExplorerService answers every question a client can ask about the loaded
// dataset: which columns it has, which filter values exist, and the plot and
// summary of a filtered selection. It owns no data itself. The dataset lives
// in a session.Session, and each request works on the snapshot current when
// it started, so a load that completes mid-request never mixes two tables.
//
// Errors are reported as sentinels from this package (ErrNoDatasetLoaded,
// ErrInvalidColumn, ErrNoMatchingRows, ErrTaskNotFound) and transports map
// them with errors.Is. The package never imports transport code.
//
// Loads are observed by two collaborators:
//
//   - TracedLoader wraps the file loader with a dataset.load span and load
//     metrics.
//   - DatasetNotifier turns session load events into WebSocket broadcasts.
//
// HealthService reports liveness, and readiness once a dataset is loaded.
package services
