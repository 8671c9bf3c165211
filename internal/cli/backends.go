package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/canicai/canicai/pkg/cache"
	"github.com/canicai/canicai/pkg/catalog"
	catalogmongo "github.com/canicai/canicai/pkg/catalog/mongo"
	"github.com/canicai/canicai/pkg/catalog/remote"
	"github.com/canicai/canicai/pkg/config"
	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/httputil"
	"github.com/canicai/canicai/pkg/store"
	badgerstore "github.com/canicai/canicai/pkg/store/badger"
	mongostore "github.com/canicai/canicai/pkg/store/mongo"
	pgstore "github.com/canicai/canicai/pkg/store/postgres"
	redisstore "github.com/canicai/canicai/pkg/store/redis"
)

// closer releases a backend connection. It is never nil.
type closer func()

func noClose() {}

// openCatalog opens the catalog source selected by cfg.Catalog.Source.
func openCatalog(ctx context.Context, cfg config.Catalog) (catalog.Source, closer, error) {
	logger := loggerFromContext(ctx)

	switch cfg.Source {
	case config.SourceFile:
		m, err := catalog.ReadFile(cfg.File)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "load catalog")
		}
		logger.Debugf("Loaded catalog %s: %d components", cfg.File, m.Len())
		return m, noClose, nil

	case config.SourceMongo:
		src, err := catalogmongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "open catalog")
		}
		logger.Debugf("Connected to catalog database %s", cfg.Mongo.Database)
		return src, func() { _ = src.Close(context.Background()) }, nil

	case config.SourceRemote:
		cache, err := httputil.NewCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("open catalog cache: %w", err)
		}
		client, err := remote.New(cfg.URL, remote.WithCache(cache))
		if err != nil {
			return nil, nil, err
		}
		logger.Debugf("Using remote catalog %s (cache %s)", cfg.URL, cache.Dir())
		return client, noClose, nil
	}
	return nil, nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown catalog source %q", cfg.Source)
}

// openStore opens the workflow store selected by cfg.Backend.
func openStore(ctx context.Context, cfg config.Store) (store.Store, error) {
	st, err := dialStore(ctx, cfg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "open %s store", cfg.Backend)
	}
	loggerFromContext(ctx).Debugf("Opened %s store", cfg.Backend)
	return st, nil
}

func dialStore(ctx context.Context, cfg config.Store) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return store.NewFile(cfg.Dir)
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendMongo:
		return mongostore.New(ctx, mongostore.Config{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
	case config.BackendRedis:
		return redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case config.BackendPostgres:
		return pgstore.Open(ctx, cfg.Postgres.DSN)
	case config.BackendBadger:
		dir := cfg.Dir
		if dir == "" {
			base, err := os.UserConfigDir()
			if err != nil {
				return nil, fmt.Errorf("get config dir: %w", err)
			}
			dir = filepath.Join(base, appName, "badger")
		}
		return badgerstore.Open(dir)
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// openRenderCache opens the render cache selected by cfg.Server.RenderCache.
func openRenderCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Server.RenderCache {
	case config.RenderCacheNone:
		return cache.NewNull(), nil
	case config.RenderCacheMemory:
		return cache.NewMemory(0), nil
	case config.RenderCacheFile:
		dir := cfg.Catalog.CacheDir
		if dir == "" {
			d, err := httputil.DefaultCacheDir()
			if err != nil {
				return nil, fmt.Errorf("get cache dir: %w", err)
			}
			dir = d
		}
		return cache.NewFile(filepath.Join(dir, "render"))
	case config.RenderCacheRedis:
		rc := cfg.Store.Redis
		c, err := cache.DialRedis(ctx, cache.RedisConfig{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "open render cache")
		}
		return cache.NewScoped(c, rc.Prefix), nil
	}
	return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown render cache %q", cfg.Server.RenderCache)
}
