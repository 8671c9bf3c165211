package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/canicai/canicai/pkg/cache"
	"github.com/canicai/canicai/pkg/catalog"
	"github.com/canicai/canicai/pkg/editor"
	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/observability"
	"github.com/canicai/canicai/pkg/persist"
	"github.com/canicai/canicai/pkg/render/nodelink"
	"github.com/canicai/canicai/pkg/store"
	"github.com/canicai/canicai/pkg/workflow"
)

type errorBody struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	code := apperrors.GetCode(err)
	msg := apperrors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		if code == "" {
			code = apperrors.ErrCodeInternal
			msg = "internal server error"
		}
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

// getComponents serves GET /components?ids=a,b.
func (s *Server) getComponents(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		s.fail(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "ids query parameter is required"))
		return
	}
	ids := catalog.Dedupe(strings.Split(raw, ","))
	for _, id := range ids {
		if err := apperrors.ValidateID(id); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	batch, err := s.catalog.FetchComponentsByIDs(r.Context(), ids)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if batch.Components == nil {
		batch.Components = []catalog.Component{}
	}
	if batch.Missing == nil {
		batch.Missing = []string{}
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) getComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := s.catalog.FetchComponentByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if c == nil {
		s.fail(w, r, apperrors.New(apperrors.ErrCodeComponentNotFound, "component %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) getCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if cats == nil {
		cats = []catalog.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := s.catalog.FetchCategoryByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if c == nil {
		s.fail(w, r, apperrors.New(apperrors.ErrCodeCategoryNotFound, "category %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) getCategoryComponents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := s.catalog.FetchCategoryByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if c == nil {
		s.fail(w, r, apperrors.New(apperrors.ErrCodeCategoryNotFound, "category %s not found", id))
		return
	}
	comps, err := s.catalog.ComponentsInCategory(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if comps == nil {
		comps = []catalog.Component{}
	}
	writeJSON(w, http.StatusOK, comps)
}

// search serves GET /search?query=...&type=input,output.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	comps, err := s.catalog.Search(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if comps == nil {
		comps = []catalog.Component{}
	}
	writeJSON(w, http.StatusOK, comps)
}

func parseQuery(r *http.Request) (catalog.Query, error) {
	params := r.URL.Query()
	q := catalog.Query{Text: strings.TrimSpace(params.Get("query"))}
	if q.Text == "" {
		return q, apperrors.New(apperrors.ErrCodeInvalidInput, "query parameter is required")
	}
	if len(q.Text) < catalog.MinQueryLength {
		return q, apperrors.New(apperrors.ErrCodeInvalidInput, "query must be at least %d characters long", catalog.MinQueryLength)
	}
	if raw := params.Get("type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			ft := catalog.FunctionType(strings.TrimSpace(t))
			if !ft.Valid() {
				return q, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown type %q", t)
			}
			q.Types = append(q.Types, ft)
		}
	}
	return q, nil
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeStorage, err, "list workflows"))
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func decodeWorkflow(w http.ResponseWriter, r *http.Request) (*persist.SavedWorkflow, error) {
	var saved persist.SavedWorkflow
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&saved); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode workflow: %v", err)
	}
	if err := persist.Validate(&saved); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidWorkflow, err, "%v", err)
	}
	return &saved, nil
}

// saveWorkflow stores a posted workflow under a fresh id.
func (s *Server) saveWorkflow(w http.ResponseWriter, r *http.Request) {
	saved, err := decodeWorkflow(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	saved.ID = uuid.NewString()
	if err := s.store.Save(r.Context(), saved); err != nil {
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeStorage, err, "save workflow"))
		return
	}
	s.logger.Info("workflow shared", "id", saved.ID, "name", saved.Name, "components", saved.ComponentCount())
	w.Header().Set("Location", "/workflows/"+saved.ID)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) load(r *http.Request) (*persist.SavedWorkflow, error) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateID(id); err != nil {
		return nil, err
	}
	saved, err := s.store.Load(r.Context(), id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "load workflow %s", id)
	}
	if saved == nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeWorkflowNotFound, persist.ErrWorkflowNotFound, "workflow %s not found", id)
	}
	return saved, nil
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	saved, err := s.load(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeStorage, err, "delete workflow %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session rebuilds saved in a throwaway editor session.
func (s *Server) session(r *http.Request, saved *persist.SavedWorkflow) (*editor.Session, error) {
	sess := editor.NewSession(s.store, s.catalog, s.logger, s.spacing)
	if _, err := sess.Open(r.Context(), saved); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Server) checkPosted(w http.ResponseWriter, r *http.Request) {
	saved, err := decodeWorkflow(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.check(w, r, saved)
}

func (s *Server) checkStored(w http.ResponseWriter, r *http.Request) {
	saved, err := s.load(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.check(w, r, saved)
}

func (s *Server) check(w http.ResponseWriter, r *http.Request, saved *persist.SavedWorkflow) {
	sess, err := s.session(r, saved)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Check(r.Context()))
}

// renderStored serves a diagram of a stored workflow as DOT or SVG.
func (s *Server) renderStored(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	if format != "svg" && format != "dot" {
		s.fail(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "format must be svg or dot"))
		return
	}
	saved, err := s.load(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.session(r, saved)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var dot string
	sess.Edit(func(wf *workflow.Workflow) {
		dot = nodelink.ToDOT(wf, nodelink.Options{Detailed: r.URL.Query().Has("detailed")})
	})
	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
		return
	}
	svg, err := s.renderSVG(r.Context(), dot)
	if err != nil {
		s.fail(w, r, fmt.Errorf("render %s: %w", saved.ID, err))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// renderSVG serves dot from the render cache, rendering and storing it on
// a miss. Cache failures are logged and never fail the request.
func (s *Server) renderSVG(ctx context.Context, dot string) ([]byte, error) {
	key := cache.RenderKey(dot, "svg")
	hooks := observability.Cache()

	if svg, ok, err := s.renders.Get(ctx, key); err != nil {
		s.logger.Warn("render cache read failed", "err", err)
	} else if ok {
		hooks.OnCacheHit(ctx, "render", 1)
		return svg, nil
	}
	hooks.OnCacheMiss(ctx, "render", 1)

	svg, err := nodelink.RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	if err := s.renders.Set(ctx, key, svg, s.renderTTL); err != nil {
		s.logger.Warn("render cache write failed", "err", err)
	}
	return svg, nil
}
