package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/errors"
)

// DefaultMaxFileSizeMB bounds the size of a dataset file accepted for loading.
const DefaultMaxFileSizeMB = 512

// FileValidator checks dataset files before they are handed to the loader.
type FileValidator struct {
	logger     *slog.Logger
	extensions map[string]bool
	maxBytes   int64
	root       string
}

// Option configures a FileValidator.
type Option func(*FileValidator)

// WithExtensions replaces the accepted file extensions.
func WithExtensions(exts ...string) Option {
	return func(v *FileValidator) {
		v.extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			e = strings.ToLower(e)
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			v.extensions[e] = true
		}
	}
}

// WithMaxSizeMB sets the largest file accepted. Zero or less disables the check.
func WithMaxSizeMB(mb int64) Option {
	return func(v *FileValidator) {
		v.maxBytes = mb << 20
	}
}

// WithRoot confines accepted files to the directory tree below root.
func WithRoot(root string) Option {
	return func(v *FileValidator) {
		v.root = root
	}
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger, opts ...Option) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	v := &FileValidator{
		logger:     logger,
		extensions: map[string]bool{".csv": true, ".xlsx": true},
		maxBytes:   DefaultMaxFileSizeMB << 20,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return nil, errors.NewNotFoundError(fmt.Sprintf("file %s", path))
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, errors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if !info.Mode().IsRegular() {
		v.logger.Error("Path is not a regular file",
			slog.String("path", path))
		return nil, errors.NewAppValidationError(fmt.Sprintf("%s is not a regular file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, errors.NewPermissionError(fmt.Sprintf("file %s is not readable", path))
	}
	file.Close()

	return info, nil
}

// ValidateDatasetFile checks that path names a readable CSV or Excel file
// inside the configured root and within the size limit.
func (v *FileValidator) ValidateDatasetFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewAppValidationError("dataset path is empty")
	}

	if v.root != "" && !v.within(path) {
		v.logger.Warn("Dataset path outside data directory",
			slog.String("file", path),
			slog.String("root", v.root))
		return errors.NewPermissionError(fmt.Sprintf("file %s is outside the data directory", path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !v.extensions[ext] {
		v.logger.Error("Unsupported dataset file type",
			slog.String("file", path),
			slog.String("extension", ext))
		return errors.NewAppValidationError(fmt.Sprintf("file %s has unsupported extension %q", path, ext))
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", path))
		return errors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", path))
	}

	info, err := v.ValidateFile(path)
	if err != nil {
		return err
	}

	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		v.logger.Error("Dataset file too large",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("max_size", v.maxBytes))
		return errors.NewAppValidationError(fmt.Sprintf("file %s is %d bytes, larger than the %d byte limit", path, info.Size(), v.maxBytes)).
			WithContext("size", info.Size())
	}

	v.logger.Debug("Dataset file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

func (v *FileValidator) within(path string) bool {
	root, err := filepath.Abs(v.root)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
