// Package storage persists computed summary runs as compressed JSON
// snapshots on local disk.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/epistats/epistats/internal/compression"
	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/services"
	"github.com/google/uuid"
)

const snapshotExt = ".json"

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrInvalidRunID = errors.New("invalid run id")
)

// Run is one persisted batch of country summaries
type Run struct {
	RunID     string                     `json:"run_id"`
	CreatedAt time.Time                  `json:"created_at"`
	Region    string                     `json:"region,omitempty"`
	Window    int                        `json:"window"`
	PopNorm   float64                    `json:"pop_norm"`
	Summaries []*services.CountrySummary `json:"summaries"`
	Skipped   []string                   `json:"skipped,omitempty"`
}

// RunInfo describes a stored run without loading it
type RunInfo struct {
	RunID   string    `json:"run_id"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// SnapshotStore writes runs as <run-id>.json[.sz] files under one directory
type SnapshotStore struct {
	dir        string
	compressor compression.Compressor
	logger     *logging.Logger
	mu         sync.Mutex
}

// NewSnapshotStore creates the directory if needed
func NewSnapshotStore(dir string, algo compression.Algorithm, logger *logging.Logger) (*SnapshotStore, error) {
	compressor, err := compression.GetCompressor(algo)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results dir: %w", err)
	}
	return &SnapshotStore{dir: dir, compressor: compressor, logger: logger}, nil
}

// NewSnapshotStoreFromConfig creates a store from the results section
func NewSnapshotStoreFromConfig(cfg config.ResultsConfig, logger *logging.Logger) (*SnapshotStore, error) {
	algo, err := compression.ParseAlgorithm(cfg.Compression)
	if err != nil {
		return nil, err
	}
	return NewSnapshotStore(cfg.Dir, algo, logger)
}

// Dir returns the results directory
func (s *SnapshotStore) Dir() string {
	return s.dir
}

func (s *SnapshotStore) suffix() string {
	return snapshotExt + s.compressor.Algorithm().Extension()
}

func (s *SnapshotStore) path(runID string) string {
	return filepath.Join(s.dir, runID+s.suffix())
}

// Save writes run, assigning a run ID and creation time when unset, and
// returns the run ID. The file appears atomically.
func (s *SnapshotStore) Save(ctx context.Context, run *Run) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if run.RunID == "" {
		run.RunID = uuid.New().String()
	} else if _, err := uuid.Parse(run.RunID); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidRunID, run.RunID)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	finalPath := s.path(run.RunID)
	tmp, err := os.CreateTemp(s.dir, ".tmp-"+run.RunID+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := s.compressor.NewWriter(tmp)
	encErr := json.NewEncoder(w).Encode(run)
	if encErr == nil {
		encErr = w.Close()
	}
	closeErr := tmp.Close()
	if encErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write run %s: %w", run.RunID, errors.Join(encErr, closeErr))
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename %s to %s: %w", tmpPath, finalPath, err)
	}

	s.logger.Info("Run saved",
		"run_id", run.RunID,
		"path", finalPath,
		"summaries", len(run.Summaries),
		"compression", s.compressor.Algorithm().String())

	return run.RunID, nil
}

// Load reads a run by ID
func (s *SnapshotStore) Load(ctx context.Context, runID string) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRunID, runID)
	}

	f, err := os.Open(s.path(runID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var run Run
	if err := json.NewDecoder(s.compressor.NewReader(f)).Decode(&run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", runID, err)
	}
	return &run, nil
}

// List returns the stored runs, newest first
func (s *SnapshotStore) List(ctx context.Context) ([]RunInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	suffix := s.suffix()
	var runs []RunInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}
		runID := strings.TrimSuffix(name, suffix)
		if _, err := uuid.Parse(runID); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		runs = append(runs, RunInfo{
			RunID:   runID,
			Path:    filepath.Join(s.dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].ModTime.Equal(runs[j].ModTime) {
			return runs[i].ModTime.After(runs[j].ModTime)
		}
		return runs[i].RunID < runs[j].RunID
	})
	return runs, nil
}

// Latest loads the most recently written run
func (s *SnapshotStore) Latest(ctx context.Context) (*Run, error) {
	runs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return s.Load(ctx, runs[0].RunID)
}

// Delete removes a stored run
func (s *SnapshotStore) Delete(runID string) error {
	if _, err := uuid.Parse(runID); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRunID, runID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(runID)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return err
	}
	return nil
}
