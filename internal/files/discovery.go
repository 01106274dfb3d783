package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds dataset files below a base path.
type Discovery struct {
	basePath   string
	extensions map[string]bool
}

// NewDiscovery creates a discovery instance. With no extensions given it
// matches .csv and .xlsx files.
func NewDiscovery(basePath string, extensions ...string) *Discovery {
	if len(extensions) == 0 {
		extensions = []string{".csv", ".xlsx"}
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &Discovery{basePath: basePath, extensions: exts}
}

// BasePath returns the directory relative paths are resolved against.
func (d *Discovery) BasePath() string {
	return d.basePath
}

// Resolve joins a relative path onto the base path. Absolute paths are
// returned cleaned.
func (d *Discovery) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(d.basePath, p)
}

// Matches reports whether name has one of the dataset extensions.
// Office lock files (~$name.xlsx) never match.
func (d *Discovery) Matches(name string) bool {
	if strings.HasPrefix(filepath.Base(name), "~$") {
		return false
	}
	return d.extensions[strings.ToLower(filepath.Ext(name))]
}

// FindDatasets lists the dataset files directly inside dir, newest first.
// Files with the same modification time are ordered by name.
func (d *Discovery) FindDatasets(dir string) ([]FileInfo, error) {
	fullPath := d.Resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !d.Matches(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
