package artifact_manager

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	DefaultBaseDir = "temp_scraper_work"
	AssetsDir      = "assets"
)

// GetJobDir returns the working directory for a job.
// Example: temp_scraper_work/0193f6.../
func GetJobDir(baseDir, jobID string) string {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return filepath.Join(baseDir, jobID)
}

// Manager creates per-job working trees under a root directory. Jobs never
// share a tree, so no locking is needed between them.
type Manager struct {
	baseDir string
}

// NewManager creates a Manager and ensures the root directory exists.
func NewManager(baseDir string) (*Manager, error) {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return &Manager{baseDir: baseDir}, nil
}

// BaseDir returns the root all job trees live under.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// CreateJobTree creates <root>/<jobID>/assets/. It fails if the job
// directory already exists.
func (m *Manager) CreateJobTree(jobID string) (*JobTree, error) {
	if jobID == "" || strings.ContainsAny(jobID, `/\`) || jobID == "." || jobID == ".." {
		return nil, fmt.Errorf("invalid job ID %q", jobID)
	}

	root := GetJobDir(m.baseDir, jobID)
	if err := os.Mkdir(root, 0750); err != nil {
		return nil, fmt.Errorf("failed to create job directory: %w", err)
	}
	if err := os.Mkdir(filepath.Join(root, AssetsDir), 0750); err != nil {
		_ = os.RemoveAll(root)
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}
	return &JobTree{root: root}, nil
}

// JobTree is one job's working directory: page HTML files at the root and a
// flat assets/ directory shared by all pages of the job.
type JobTree struct {
	root string
}

// Root returns the job directory.
func (t *JobTree) Root() string {
	return t.root
}

// AssetsDir returns <root>/assets.
func (t *JobTree) AssetsDir() string {
	return filepath.Join(t.root, AssetsDir)
}

// PagePath returns where a page with the given safe name is written.
func (t *JobTree) PagePath(safeName string) string {
	return filepath.Join(t.root, safeName+".html")
}

// WritePage writes <root>/<safeName>.html, replacing an existing page.
func (t *JobTree) WritePage(safeName string, html []byte) (string, error) {
	p := t.PagePath(safeName)
	if err := os.WriteFile(p, html, 0640); err != nil {
		return "", fmt.Errorf("failed to write page %s: %w", filepath.Base(p), err)
	}
	return p, nil
}

// Files lists every regular file in the tree as slash-separated paths
// relative to the root, sorted.
func (t *JobTree) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(t.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(t.root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list job files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Remove deletes the whole job directory. Removing a missing tree is not an error.
func (t *JobTree) Remove() error {
	if err := os.RemoveAll(t.root); err != nil {
		return fmt.Errorf("failed to remove job directory: %w", err)
	}
	return nil
}

// Exists reports whether the job directory is still on disk.
func (t *JobTree) Exists() bool {
	_, err := os.Stat(t.root)
	return err == nil
}
