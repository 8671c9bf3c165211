// Package config loads canicai settings from a TOML file.
//
// Lookup order for the file is the --config flag, then $CANICAI_CONFIG,
// then config.toml in the canicai directory under the user config dir.
// A missing file is not an error: [Default] values are used. A few
// environment variables override file values (see [ApplyEnv]).
//
// Example file:
//
//	[catalog]
//	source = "remote"
//	url = "https://canicai.example.com/api"
//
//	[store]
//	backend = "redis"
//
//	[store.redis]
//	addr = "localhost:6379"
//
//	[layout]
//	spacing = 24
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/canicai/canicai/pkg/errors"
)

// Catalog sources.
const (
	SourceFile   = "file"
	SourceMongo  = "mongo"
	SourceRemote = "remote"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

// Config is the complete settings tree.
type Config struct {
	Catalog Catalog `toml:"catalog"`
	Store   Store   `toml:"store"`
	Layout  Layout  `toml:"layout"`
	Server  Server  `toml:"server"`
}

// Catalog selects where components and categories come from.
type Catalog struct {
	Source string `toml:"source" validate:"oneof=file mongo remote"`
	// File is the JSON catalog used by the file source.
	File string `toml:"file" validate:"required_if=Source file"`
	// URL is the API root used by the remote source.
	URL string `toml:"url" validate:"omitempty,url"`
	// CacheDir holds fetched components for the remote source. Empty means
	// the user cache dir.
	CacheDir string        `toml:"cache_dir"`
	CacheTTL time.Duration `toml:"cache_ttl"`
	Mongo    Mongo         `toml:"mongo"`
}

// Store selects where saved workflows live.
type Store struct {
	Backend string `toml:"backend" validate:"oneof=file memory mongo redis postgres badger"`
	// Dir is used by the file and badger backends. Empty means the default
	// location under the user config dir.
	Dir      string   `toml:"dir"`
	Mongo    Mongo    `toml:"mongo"`
	Redis    Redis    `toml:"redis"`
	Postgres Postgres `toml:"postgres"`
}

// Mongo holds MongoDB connection settings.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Redis holds Redis connection settings.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"min=0"`
	Prefix   string `toml:"prefix"`
}

// Postgres holds the connection string for the postgres backend.
type Postgres struct {
	DSN string `toml:"dsn"`
}

// Layout tunes the layout engine.
type Layout struct {
	Spacing float64 `toml:"spacing" validate:"gt=0"`
}

// Server configures `canicai serve`.
type Server struct {
	Addr            string        `toml:"addr" validate:"required"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	Metrics         bool          `toml:"metrics"`
	// RenderCache keeps rendered SVG diagrams. The redis cache shares the
	// [store.redis] connection settings; the file cache lives in a
	// "render" directory under the catalog cache dir.
	RenderCache    string        `toml:"render_cache" validate:"oneof=none memory file redis"`
	RenderCacheTTL time.Duration `toml:"render_cache_ttl"`
}

// Render cache kinds.
const (
	RenderCacheNone   = "none"
	RenderCacheMemory = "memory"
	RenderCacheFile   = "file"
	RenderCacheRedis  = "redis"
)

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Catalog: Catalog{
			Source:   SourceFile,
			File:     "catalog.json",
			CacheTTL: 24 * time.Hour,
			Mongo:    Mongo{URI: "mongodb://localhost:27017", Database: "canicai"},
		},
		Store: Store{
			Backend:  BackendFile,
			Mongo:    Mongo{URI: "mongodb://localhost:27017", Database: "canicai", Collection: "workflows"},
			Redis:    Redis{Addr: "localhost:6379", Prefix: "canicai:"},
			Postgres: Postgres{DSN: "postgres://localhost:5432/canicai"},
		},
		Layout: Layout{Spacing: 20},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Metrics:         true,
			RenderCache:     RenderCacheMemory,
			RenderCacheTTL:  time.Hour,
		},
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "validate config")
	}
	if c.Catalog.Source == SourceRemote && c.Catalog.URL == "" {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "Config.Catalog.URL: required for the remote source")
	}
	if c.Server.RenderCacheTTL < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "Config.Server.RenderCacheTTL: must not be negative")
	}
	if c.Catalog.CacheTTL < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "Config.Catalog.CacheTTL: must not be negative")
	}
	return nil
}

// DefaultPath returns the config file location, honouring $CANICAI_CONFIG.
func DefaultPath() (string, error) {
	if p := os.Getenv("CANICAI_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "canicai", "config.toml"), nil
}

// Load reads path on top of [Default], applies environment overrides and
// validates the result. An empty path means [DefaultPath]. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "locate config")
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML from r on top of [Default] without consulting the
// environment.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides cfg with the CANICAI_* environment variables:
// CATALOG_SOURCE, CATALOG_URL, STORE_BACKEND, STORE_DIR, MONGO_URI,
// REDIS_ADDR, POSTGRES_DSN, LAYOUT_SPACING and SERVER_ADDR.
func ApplyEnv(cfg *Config) error {
	strs := map[string]*string{
		"CANICAI_CATALOG_SOURCE": &cfg.Catalog.Source,
		"CANICAI_CATALOG_URL":    &cfg.Catalog.URL,
		"CANICAI_STORE_BACKEND":  &cfg.Store.Backend,
		"CANICAI_STORE_DIR":      &cfg.Store.Dir,
		"CANICAI_REDIS_ADDR":     &cfg.Store.Redis.Addr,
		"CANICAI_POSTGRES_DSN":   &cfg.Store.Postgres.DSN,
		"CANICAI_SERVER_ADDR":    &cfg.Server.Addr,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("CANICAI_MONGO_URI"); ok {
		cfg.Catalog.Mongo.URI = v
		cfg.Store.Mongo.URI = v
	}
	if v, ok := os.LookupEnv("CANICAI_LAYOUT_SPACING"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "CANICAI_LAYOUT_SPACING")
		}
		cfg.Layout.Spacing = f
	}
	return nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
