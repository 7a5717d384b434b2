package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// lockFilePrefix marks the owner files Excel leaves next to open workbooks
const lockFilePrefix = "~$"

// InputExtensions are the spreadsheet formats the consolidator reads
var InputExtensions = []string{".csv", ".xlsx", ".xls"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Ext     string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindInputFiles finds every CSV and Excel export in dir, skipping Excel
// lock files, sorted by file name.
func (d *Discovery) FindInputFiles(dir string) ([]FileInfo, error) {
	files, err := d.find(dir, InputExtensions...)
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// find lists regular files in dir whose lower-cased extension is one of exts
func (d *Discovery) find(dir string, exts ...string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, lockFilePrefix) {
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !hasExtension(ext, exts) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Ext:     ext,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

// resolve joins relative directories onto the base path
func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

func hasExtension(ext string, exts []string) bool {
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Names returns the base names of files, in order
func Names(files []FileInfo) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
