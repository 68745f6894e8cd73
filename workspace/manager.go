package workspace

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/diagramkit/logger"
	"github.com/kbukum/diagramkit/util"
)

// TransientFile is a workspace path handed to one request.
type TransientFile struct {
	Path      string
	CreatedAt time.Time
}

// SweepReport summarizes one sweep pass.
type SweepReport struct {
	Scanned int `json:"scanned"`
	Removed int `json:"removed"`
	Failed  int `json:"failed"`
}

// Manager allocates and releases transient files under a root directory.
type Manager struct {
	root        string
	log         *logger.Logger
	allocations atomic.Int64
	now         func() time.Time
}

// New creates the workspace root (recursively) and returns its Manager.
func New(cfg Config, log *logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.Nop()
	}
	root, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve %s: %w", cfg.Dir, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: create %s: %w", root, err)
	}
	return &Manager{
		root: root,
		log:  log.WithComponent("workspace"),
		now:  time.Now,
	}, nil
}

// Root returns the absolute workspace directory.
func (m *Manager) Root() string { return m.root }

// Allocations returns how many files have been allocated since start.
func (m *Manager) Allocations() int64 { return m.allocations.Load() }

// Allocate returns a fresh unique path with extension ext. The file is not
// created.
func (m *Manager) Allocate(ext string) TransientFile {
	m.allocations.Add(1)
	now := m.now()
	ext = util.SanitizeFilename(strings.TrimPrefix(ext, "."), "tmp")
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("diagram-%d-%s.%s", now.UnixNano(), random, ext)
	return TransientFile{Path: filepath.Join(m.root, name), CreatedAt: now}
}

// Release removes f. A missing file is not an error; other failures are
// logged and swallowed.
func (m *Manager) Release(f TransientFile) {
	if f.Path == "" {
		return
	}
	if err := os.Remove(f.Path); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		m.log.Warn("Failed to release transient file", logger.Fields(
			logger.FieldPath, f.Path,
			logger.FieldError, err.Error(),
		))
	}
}

// Lease returns a scope that releases every file it allocates.
func (m *Manager) Lease() *Lease {
	return &Lease{manager: m}
}

// Sweep removes entries of the root whose modification time is older than
// maxAge. Per-entry failures are logged and counted.
func (m *Manager) Sweep(ctx context.Context, maxAge time.Duration) (SweepReport, error) {
	var report SweepReport

	entries, err := os.ReadDir(m.root)
	if err != nil {
		return report, fmt.Errorf("workspace: read %s: %w", m.root, err)
	}

	cutoff := m.now().Add(-maxAge)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		path := filepath.Join(m.root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			if !stderrors.Is(err, os.ErrNotExist) {
				report.Failed++
				m.log.Warn("Failed to stat workspace entry", logger.Fields(logger.FieldPath, path, logger.FieldError, err.Error()))
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			report.Failed++
			m.log.Warn("Failed to remove stale workspace entry", logger.Fields(logger.FieldPath, path, logger.FieldError, err.Error()))
			continue
		}
		report.Removed++
	}
	return report, nil
}

// Lease tracks the files allocated for one request.
type Lease struct {
	manager *Manager
	mu      sync.Mutex
	files   []TransientFile
	once    sync.Once
}

// Allocate allocates a file and records it for Release.
func (l *Lease) Allocate(ext string) TransientFile {
	f := l.manager.Allocate(ext)
	l.mu.Lock()
	l.files = append(l.files, f)
	l.mu.Unlock()
	return f
}

// Files returns the files allocated so far.
func (l *Lease) Files() []TransientFile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]TransientFile(nil), l.files...)
}

// Release releases every allocated file. Only the first call has effect.
func (l *Lease) Release() {
	l.once.Do(func() {
		for _, f := range l.Files() {
			l.manager.Release(f)
		}
	})
}
