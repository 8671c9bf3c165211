// Package editor ties one workflow to the catalog and the workflow store.
//
// A [Session] is what the CLI and the API hold while working on a
// workflow: it loads a saved workflow by id, rebuilds it through
// [persist.FromPersisted], applies edits under a lock, tracks unsaved
// changes through the workflow's hash pair and writes it back.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/canicai/canicai/pkg/catalog"
	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/observability"
	"github.com/canicai/canicai/pkg/persist"
	"github.com/canicai/canicai/pkg/store"
	"github.com/canicai/canicai/pkg/workflow"
)

// Session owns a single workflow. It is safe for concurrent use; every
// access to the workflow goes through the session lock.
type Session struct {
	Store   store.Store
	Fetcher catalog.Fetcher
	Logger  *log.Logger

	mu       sync.Mutex
	w        *workflow.Workflow
	spacing  float64
	lastLoad persist.Result
}

// NewSession creates a session holding an empty, unnamed workflow.
// Catalog records resolved through f are kept for the session's lifetime.
// A nil logger falls back to log.Default(). A spacing of 0 keeps
// workflow.DefaultSpacing.
func NewSession(st store.Store, f catalog.Fetcher, logger *log.Logger, spacing float64) *Session {
	if logger == nil {
		logger = log.Default()
	}
	s := &Session{Store: st, Fetcher: catalog.NewCached(f), Logger: logger, spacing: spacing}
	s.w = s.fresh("")
	return s
}

func (s *Session) fresh(name string) *workflow.Workflow {
	w := workflow.New(name)
	w.SetSpacing(s.spacing)
	w.MarkSaved()
	return w
}

// New replaces the current workflow with an empty one called name.
// The empty workflow starts without unsaved changes.
func (s *Session) New(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = s.fresh(name)
	s.lastLoad = persist.Result{}
}

// Load fetches the saved workflow id from the store and rebuilds it.
// A missing workflow yields an ErrCodeWorkflowNotFound error wrapping
// persist.ErrWorkflowNotFound and leaves the session untouched.
func (s *Session) Load(ctx context.Context, id string) (persist.Result, error) {
	hooks := observability.Workflow()
	hooks.OnLoadStart(ctx, id)
	start := time.Now()

	saved, err := s.Store.Load(ctx, id)
	if err != nil {
		err = apperrors.Wrap(apperrors.ErrCodeStorage, err, "load workflow %s", id)
		hooks.OnLoadComplete(ctx, id, 0, 0, time.Since(start), err)
		return persist.Result{}, err
	}
	if saved == nil {
		err = apperrors.Wrap(apperrors.ErrCodeWorkflowNotFound, persist.ErrWorkflowNotFound, "workflow %s", id)
		hooks.OnLoadComplete(ctx, id, 0, 0, time.Since(start), err)
		return persist.Result{}, err
	}

	res, err := s.Open(ctx, saved)
	hooks.OnLoadComplete(ctx, id, s.NodeCount(), len(res.Missing), time.Since(start), err)
	return res, err
}

// Open rebuilds saved into the session without touching the store.
// On a catalog failure the session holds a cleared workflow.
func (s *Session) Open(ctx context.Context, saved *persist.SavedWorkflow) (persist.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := workflow.New(saved.Name)
	w.SetSpacing(s.spacing)
	res, err := persist.FromPersisted(ctx, w, saved, s.Fetcher)
	if err != nil {
		w.Clear()
		w.MarkSaved()
		s.w = w
		s.lastLoad = persist.Result{}
		return res, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "rebuild workflow %s", saved.ID)
	}
	w.MarkSaved()
	s.w = w
	s.lastLoad = res

	if len(res.Missing) > 0 || res.DroppedEdges > 0 {
		s.Logger.Warn("workflow restored partially",
			"id", saved.ID, "missing", res.Missing, "droppedEdges", res.DroppedEdges)
	}
	s.Logger.Debug("opened workflow", "id", saved.ID, "nodes", w.NodeCount(), "edges", w.EdgeCount())
	return res, nil
}

// Save serializes the workflow, assigns an id if it has none, and writes
// it to the store. The saved state becomes the new reference for Dirty.
func (s *Session) Save(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if s.w.ID == "" {
		s.w.ID = uuid.NewString()
	}
	saved := persist.ToPersisted(s.w)
	err := persist.Validate(saved)
	if err != nil {
		err = apperrors.Wrap(apperrors.ErrCodeInvalidWorkflow, err, "save workflow %s", saved.ID)
	} else if err = s.Store.Save(ctx, saved); err != nil {
		err = apperrors.Wrap(apperrors.ErrCodeStorage, err, "save workflow %s", saved.ID)
	}
	observability.Workflow().OnSaveComplete(ctx, saved.ID, s.w.NodeCount(), time.Since(start), err)
	if err != nil {
		return "", err
	}
	s.w.MarkSaved()
	s.Logger.Info("saved workflow", "id", saved.ID, "name", saved.Name, "components", saved.ComponentCount())
	return saved.ID, nil
}

// Snapshot returns the persisted form of the current workflow.
func (s *Session) Snapshot() *persist.SavedWorkflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return persist.ToPersisted(s.w)
}

// Edit runs fn with exclusive access to the workflow.
// fn must not keep the pointer after it returns.
func (s *Session) Edit(fn func(w *workflow.Workflow)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.w)
}

// Dirty reports whether the workflow changed since it was loaded or saved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.HasUnsavedChanges()
}

// Check is the outcome of a compatibility check.
type Check struct {
	ID     string          `json:"id,omitempty"`
	Name   string          `json:"name"`
	Hash   string          `json:"hash"`
	Report workflow.Report `json:"report"`
	// Missing lists node ids dropped when the workflow was restored.
	Missing      []string `json:"missing,omitempty"`
	DroppedEdges int      `json:"droppedEdges,omitempty"`
}

// Check reports the compatibility state and hash of the current workflow.
func (s *Session) Check(ctx context.Context) Check {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Check{
		ID:           s.w.ID,
		Name:         s.w.Name,
		Hash:         s.w.RefreshHash(),
		Report:       s.w.CompatibilityReport(),
		Missing:      s.lastLoad.Missing,
		DroppedEdges: s.lastLoad.DroppedEdges,
	}
	observability.Workflow().OnCheck(ctx, s.w.NodeCount(), c.Report.Compatible)
	return c
}

// ID returns the current workflow id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.ID
}

// NodeCount returns the number of nodes in the current workflow.
func (s *Session) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.NodeCount()
}
