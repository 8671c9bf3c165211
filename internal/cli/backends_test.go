package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/canicai/canicai/pkg/cache"
	"github.com/canicai/canicai/pkg/catalog/remote"
	"github.com/canicai/canicai/pkg/config"
	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/store"
	badgerstore "github.com/canicai/canicai/pkg/store/badger"
)

func TestOpenStoreLocalBackends(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		backend string
		check   func(t *testing.T, st store.Store)
	}{
		{config.BackendMemory, func(t *testing.T, st store.Store) {
			if _, ok := st.(*store.Memory); !ok {
				t.Errorf("store = %T, want *store.Memory", st)
			}
		}},
		{config.BackendFile, func(t *testing.T, st store.Store) {
			if _, ok := st.(*store.File); !ok {
				t.Errorf("store = %T, want *store.File", st)
			}
		}},
		{config.BackendBadger, func(t *testing.T, st store.Store) {
			if _, ok := st.(*badgerstore.Store); !ok {
				t.Errorf("store = %T, want *badger.Store", st)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.Default().Store
			cfg.Backend = tt.backend
			cfg.Dir = filepath.Join(t.TempDir(), "data")

			st, err := openStore(ctx, cfg)
			if err != nil {
				t.Fatalf("openStore(%s): %v", tt.backend, err)
			}
			defer st.Close()
			tt.check(t, st)

			list, err := st.List(ctx)
			if err != nil || len(list) != 0 {
				t.Errorf("List() = %v, %v, want empty", list, err)
			}
		})
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	cfg := config.Default().Store
	cfg.Backend = "tape"
	_, err := openStore(context.Background(), cfg)
	if !apperrors.Is(err, apperrors.ErrCodeStorage) {
		t.Errorf("error = %v, want STORAGE_ERROR", err)
	}
}

func TestOpenCatalogMissingFile(t *testing.T) {
	cfg := config.Default().Catalog
	cfg.File = filepath.Join(t.TempDir(), "missing.json")
	_, _, err := openCatalog(context.Background(), cfg)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestOpenCatalogRemote(t *testing.T) {
	cfg := config.Default().Catalog
	cfg.Source = config.SourceRemote
	cfg.URL = "https://catalog.example.com/api"
	cfg.CacheDir = t.TempDir()

	src, release, err := openCatalog(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openCatalog: %v", err)
	}
	defer release()
	if _, ok := src.(*remote.Client); !ok {
		t.Errorf("source = %T, want *remote.Client", src)
	}
}

func TestOpenCatalogRemoteBadURL(t *testing.T) {
	cfg := config.Default().Catalog
	cfg.Source = config.SourceRemote
	cfg.URL = "ftp://catalog.example.com"
	cfg.CacheDir = t.TempDir()

	_, _, err := openCatalog(context.Background(), cfg)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestOpenRenderCache(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		kind string
		want string
	}{
		{config.RenderCacheNone, "*cache.Null"},
		{config.RenderCacheMemory, "*cache.Memory"},
		{config.RenderCacheFile, "*cache.File"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			cfg := config.Default()
			cfg.Catalog.CacheDir = t.TempDir()
			cfg.Server.RenderCache = tt.kind

			c, err := openRenderCache(ctx, cfg)
			if err != nil {
				t.Fatalf("openRenderCache(%s): %v", tt.kind, err)
			}
			defer c.Close()
			if got := fmt.Sprintf("%T", c); got != tt.want {
				t.Errorf("cache = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOpenRenderCacheFileLocation(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.CacheDir = t.TempDir()
	cfg.Server.RenderCache = config.RenderCacheFile

	c, err := openRenderCache(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	f, ok := c.(*cache.File)
	if !ok {
		t.Fatalf("cache = %T", c)
	}
	if want := filepath.Join(cfg.Catalog.CacheDir, "render"); f.Dir() != want {
		t.Errorf("Dir() = %q, want %q", f.Dir(), want)
	}
}
