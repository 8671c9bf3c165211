// Package remote implements a catalog.Source backed by the canicai HTTP API.
//
// Lookups go through [httputil.Client], so transient failures are retried
// with backoff. An optional [httputil.Cache] keeps resolved components and
// categories on disk between runs.
package remote

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/canicai/canicai/pkg/catalog"
	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/httputil"
	"github.com/canicai/canicai/pkg/observability"
)

// Client talks to a remote catalog API.
type Client struct {
	http     *httputil.Client
	httpOpts []httputil.Option
	cache    *httputil.Cache
}

// Option configures a [Client].
type Option func(*Client)

// WithCache keeps fetched components and categories in c.
func WithCache(c *httputil.Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithHTTPOptions configures the underlying [httputil.Client].
func WithHTTPOptions(opts ...httputil.Option) Option {
	return func(cl *Client) { cl.httpOpts = append(cl.httpOpts, opts...) }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	hc, err := httputil.NewClient(baseURL, c.httpOpts...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "catalog url")
	}
	c.http = hc
	return c, nil
}

// FetchComponentsByIDs serves ids from the disk cache when possible and
// asks the API for the rest in one request.
func (c *Client) FetchComponentsByIDs(ctx context.Context, ids []string) (catalog.Batch, error) {
	ids = catalog.Dedupe(ids)
	found := make(map[string]catalog.Component, len(ids))
	var pending []string
	for _, id := range ids {
		if comp, ok := c.cachedComponent(id); ok {
			found[id] = comp
		} else {
			pending = append(pending, id)
		}
	}
	if c.cache != nil {
		observability.Cache().OnCacheHit(ctx, "disk-component", len(found))
		observability.Cache().OnCacheMiss(ctx, "disk-component", len(pending))
	}

	if len(pending) > 0 {
		var fetched catalog.Batch
		q := url.Values{"ids": {strings.Join(pending, ",")}}
		if err := c.http.GetJSON(ctx, "/components", q, &fetched); err != nil {
			return catalog.Batch{}, wrap(err, "fetch components")
		}
		for _, comp := range fetched.Components {
			found[comp.ID] = comp
			c.store("component:", comp.ID, comp)
		}
	}

	var b catalog.Batch
	for _, id := range ids {
		if comp, ok := found[id]; ok {
			b.Components = append(b.Components, comp)
		} else {
			b.Missing = append(b.Missing, id)
		}
	}
	return b, nil
}

// FetchComponentByID returns the component, or nil if the API reports 404.
func (c *Client) FetchComponentByID(ctx context.Context, id string) (*catalog.Component, error) {
	if comp, ok := c.cachedComponent(id); ok {
		return &comp, nil
	}
	var comp catalog.Component
	if err := c.http.GetJSON(ctx, "/components/"+url.PathEscape(id), nil, &comp); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap(err, "fetch component %s", id)
	}
	c.store("component:", id, comp)
	return &comp, nil
}

// FetchCategoryByID returns the category, or nil if the API reports 404.
func (c *Client) FetchCategoryByID(ctx context.Context, id string) (*catalog.Category, error) {
	if c.cache != nil {
		var cat catalog.Category
		if ok, _ := c.cache.Namespace("category:").Get(id, &cat); ok {
			return &cat, nil
		}
	}
	var cat catalog.Category
	if err := c.http.GetJSON(ctx, "/categories/"+url.PathEscape(id), nil, &cat); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, wrap(err, "fetch category %s", id)
	}
	c.store("category:", id, cat)
	return &cat, nil
}

// Categories lists every category. The listing is never cached.
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	var cats []catalog.Category
	if err := c.http.GetJSON(ctx, "/categories", nil, &cats); err != nil {
		return nil, wrap(err, "list categories")
	}
	return cats, nil
}

// ComponentsInCategory lists the components of a category.
func (c *Client) ComponentsInCategory(ctx context.Context, categoryID string) ([]catalog.Component, error) {
	var comps []catalog.Component
	path := "/categories/" + url.PathEscape(categoryID) + "/components"
	if err := c.http.GetJSON(ctx, path, nil, &comps); err != nil {
		return nil, wrap(err, "list components of %s", categoryID)
	}
	return comps, nil
}

// Search runs a free-text component search on the API.
func (c *Client) Search(ctx context.Context, q catalog.Query) ([]catalog.Component, error) {
	params := url.Values{"query": {q.Text}}
	if len(q.Types) > 0 {
		types := make([]string, len(q.Types))
		for i, t := range q.Types {
			types[i] = string(t)
		}
		params.Set("type", strings.Join(types, ","))
	}
	var comps []catalog.Component
	if err := c.http.GetJSON(ctx, "/search", params, &comps); err != nil {
		return nil, wrap(err, "search %q", q.Text)
	}
	return comps, nil
}

func (c *Client) cachedComponent(id string) (catalog.Component, bool) {
	var comp catalog.Component
	if c.cache == nil {
		return comp, false
	}
	ok, err := c.cache.Namespace("component:").Get(id, &comp)
	return comp, ok && err == nil
}

// store writes to the disk cache; failures only cost a refetch.
func (c *Client) store(ns, id string, v any) {
	if c.cache != nil {
		_ = c.cache.Namespace(ns).Set(id, v)
	}
}

func notFound(err error) bool {
	var se *httputil.StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

func wrap(err error, format string, args ...any) error {
	var se *httputil.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(apperrors.ErrCodeTimeout, err, format, args...)
	case errors.As(err, &se) && se.Status == http.StatusTooManyRequests:
		return apperrors.Wrap(apperrors.ErrCodeRateLimited, err, format, args...)
	case errors.As(err, &se) && se.Status == http.StatusBadRequest:
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, format, args...)
	default:
		return apperrors.Wrap(apperrors.ErrCodeNetwork, err, format, args...)
	}
}

var _ catalog.Source = (*Client)(nil)
