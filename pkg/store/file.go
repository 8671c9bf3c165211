package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/persist"
)

const indexFile = "index.json"

// File is a directory-backed store for CLI use. Each workflow is written
// to <id>.json; index.json holds the summaries.
type File struct {
	mu      sync.RWMutex
	baseDir string
	nowFunc func() time.Time
}

// NewFile creates a file store rooted at baseDir.
// If baseDir is empty, defaults to <user config dir>/canicai/workflows.
func NewFile(baseDir string) (*File, error) {
	if baseDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		baseDir = filepath.Join(dir, "canicai", "workflows")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create workflow dir: %w", err)
	}
	return &File{baseDir: baseDir, nowFunc: time.Now}, nil
}

func (s *File) workflowPath(id string) (string, error) {
	if err := apperrors.ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, id+".json"), nil
}

func (s *File) Load(_ context.Context, id string) (*persist.SavedWorkflow, error) {
	path, err := s.workflowPath(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	saved, err := persist.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workflow: %w", err)
	}
	return saved, nil
}

func (s *File) Save(_ context.Context, saved *persist.SavedWorkflow) error {
	path, err := s.workflowPath(saved.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := persist.WriteFile(saved, path); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}

	index, err := s.readIndex()
	if err != nil {
		return err
	}
	index[saved.ID] = SummaryOf(saved, s.nowFunc())
	return s.writeIndex(index)
}

func (s *File) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(index))
	for _, sum := range index {
		out = append(out, sum)
	}
	SortSummaries(out)
	return out, nil
}

func (s *File) Delete(_ context.Context, id string) error {
	path, err := s.workflowPath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove workflow file: %w", err)
	}
	index, err := s.readIndex()
	if err != nil {
		return err
	}
	if _, ok := index[id]; !ok {
		return nil
	}
	delete(index, id)
	return s.writeIndex(index)
}

func (s *File) Close() error { return nil }

// Path returns the base directory for workflow files.
func (s *File) Path() string {
	return s.baseDir
}

func (s *File) readIndex() (map[string]Summary, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]Summary), nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	var list []Summary
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	index := make(map[string]Summary, len(list))
	for _, sum := range list {
		index[sum.ID] = sum
	}
	return index, nil
}

func (s *File) writeIndex(index map[string]Summary) error {
	list := make([]Summary, 0, len(index))
	for _, sum := range index {
		list = append(list, sum)
	}
	SortSummaries(list)
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.baseDir, indexFile), data, 0600); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

var _ Store = (*File)(nil)
