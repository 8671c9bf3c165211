package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/canicai/canicai/pkg/catalog"
	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/httputil"
)

var (
	camera  = catalog.Component{ID: "c1", Name: "Camera", Category: "k1", Type: catalog.TypeInput, Compatible: true}
	printer = catalog.Component{ID: "c2", Name: "Printer", Category: "k1", Type: catalog.TypeOutput}
	kat     = catalog.Category{ID: "k1", Name: catalog.LocalizedName{EN: "Devices"}, Icon: "cam"}
)

// fakeAPI serves a two-component catalog and counts component requests.
func fakeAPI(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	known := map[string]catalog.Component{"c1": camera, "c2": printer}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /components", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var b catalog.Batch
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			if c, ok := known[id]; ok {
				b.Components = append(b.Components, c)
			} else {
				b.Missing = append(b.Missing, id)
			}
		}
		json.NewEncoder(w).Encode(b)
	})
	mux.HandleFunc("GET /components/{id}", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		c, ok := known[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(c)
	})
	mux.HandleFunc("GET /categories", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]catalog.Category{kat})
	})
	mux.HandleFunc("GET /categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != kat.ID {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(kat)
	})
	mux.HandleFunc("GET /categories/{id}/components", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]catalog.Component{camera, printer})
	})
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "cam" || r.URL.Query().Get("type") != "input,input-output" {
			json.NewEncoder(w).Encode([]catalog.Component{})
			return
		}
		json.NewEncoder(w).Encode([]catalog.Component{camera})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchComponentsByIDs(t *testing.T) {
	var hits atomic.Int32
	srv := fakeAPI(t, &hits)
	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	b, err := c.FetchComponentsByIDs(context.Background(), []string{"c2", "nope", "c1", "c2"})
	if err != nil {
		t.Fatalf("FetchComponentsByIDs() failed: %v", err)
	}
	var got []string
	for _, comp := range b.Components {
		got = append(got, comp.ID)
	}
	if !slices.Equal(got, []string{"c2", "c1"}) {
		t.Errorf("components = %v, want [c2 c1]", got)
	}
	if !slices.Equal(b.Missing, []string{"nope"}) {
		t.Errorf("missing = %v, want [nope]", b.Missing)
	}
}

func TestDiskCache(t *testing.T) {
	var hits atomic.Int32
	srv := fakeAPI(t, &hits)
	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	first, _ := New(srv.URL, WithCache(cache))
	if _, err := first.FetchComponentsByIDs(ctx, []string{"c1"}); err != nil {
		t.Fatal(err)
	}

	second, _ := New(srv.URL, WithCache(cache))
	b, err := second.FetchComponentsByIDs(ctx, []string{"c1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Components) != 1 || b.Components[0] != camera {
		t.Errorf("components = %+v, want camera", b.Components)
	}
	comp, err := second.FetchComponentByID(ctx, "c1")
	if err != nil || comp == nil || comp.Name != "Camera" {
		t.Errorf("FetchComponentByID() = %+v, %v", comp, err)
	}
	if hits.Load() != 1 {
		t.Errorf("API hit %d times, want 1", hits.Load())
	}
}

func TestNotFoundIsNil(t *testing.T) {
	var hits atomic.Int32
	srv := fakeAPI(t, &hits)
	c, _ := New(srv.URL)
	ctx := context.Background()

	comp, err := c.FetchComponentByID(ctx, "nope")
	if comp != nil || err != nil {
		t.Errorf("FetchComponentByID(nope) = %v, %v; want nil, nil", comp, err)
	}
	cat, err := c.FetchCategoryByID(ctx, "nope")
	if cat != nil || err != nil {
		t.Errorf("FetchCategoryByID(nope) = %v, %v; want nil, nil", cat, err)
	}
	cat, err = c.FetchCategoryByID(ctx, "k1")
	if err != nil || cat == nil || cat.Icon != "cam" {
		t.Errorf("FetchCategoryByID(k1) = %+v, %v", cat, err)
	}
}

func TestBrowse(t *testing.T) {
	var hits atomic.Int32
	srv := fakeAPI(t, &hits)
	c, _ := New(srv.URL)
	ctx := context.Background()

	cats, err := c.Categories(ctx)
	if err != nil || len(cats) != 1 || cats[0].ID != "k1" {
		t.Errorf("Categories() = %+v, %v", cats, err)
	}
	comps, err := c.ComponentsInCategory(ctx, "k1")
	if err != nil || len(comps) != 2 {
		t.Errorf("ComponentsInCategory() = %+v, %v", comps, err)
	}
	found, err := c.Search(ctx, catalog.Query{Text: "cam", Types: []catalog.FunctionType{catalog.TypeInput, catalog.TypeInputOutput}})
	if err != nil || len(found) != 1 || found[0].ID != "c1" {
		t.Errorf("Search() = %+v, %v", found, err)
	}
}

func TestServerErrorsAreNetworkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, WithHTTPOptions(httputil.WithRetry(2, time.Millisecond)))
	_, err := c.FetchComponentsByIDs(context.Background(), []string{"c1"})
	if !apperrors.Is(err, apperrors.ErrCodeNetwork) {
		t.Fatalf("err = %v, want NETWORK_ERROR", err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("not a url")
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Fatalf("err = %v, want INVALID_CONFIG", err)
	}
}
