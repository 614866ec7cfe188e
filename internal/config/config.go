package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML files use the "24h" notation instead
// of raw nanoseconds.
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Bare integers are accepted as
// nanoseconds for compatibility with files written by older builds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var ns int64
	if err := value.Decode(&ns); err != nil {
		return fmt.Errorf("invalid duration node: %w", err)
	}
	*d = Duration(ns)
	return nil
}

// Std returns the wrapped standard library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// StoreBackend selects the persistence implementation.
type StoreBackend string

const (
	// StoreMongo uses the MongoDB-backed store.
	StoreMongo StoreBackend = "mongo"
	// StoreMemory uses the in-process store. Development and tests only;
	// nothing survives a restart.
	StoreMemory StoreBackend = "memory"
)

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// Argon2Config tunes the password hashing cost.
type Argon2Config struct {
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Iterations  uint32 `yaml:"iterations"`
	Parallelism uint8  `yaml:"parallelism"`
}

// Config is the top-level service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// Store selects the persistence backend: "mongo" or "memory".
	Store StoreBackend `yaml:"store"`

	Mongo MongoConfig `yaml:"mongo"`

	// SessionTTL bounds how long an issued session token stays valid.
	SessionTTL Duration `yaml:"session_ttl"`

	// SessionSweepCron is the cron schedule for pruning expired sessions.
	SessionSweepCron string `yaml:"session_sweep"`

	Argon2 Argon2Config `yaml:"argon2"`

	// Development switches logging to the human-readable console encoder.
	Development bool `yaml:"development"`
}

// Default returns the in-memory default configuration.
func Default() *Config {
	return &Config{
		Listen: "127.0.0.1:8080",
		Store:  StoreMongo,
		Mongo: MongoConfig{
			URI:      "mongodb://127.0.0.1:27017",
			Database: "classroom_reserve",
		},
		SessionTTL:       Duration(24 * time.Hour),
		SessionSweepCron: "@hourly",
		Argon2: Argon2Config{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: 2,
		},
	}
}

// Normalize fills missing or zero values with defaults so partially filled
// config files still behave.
func (c *Config) Normalize() {
	def := Default()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	switch c.Store {
	case StoreMongo, StoreMemory:
	default:
		c.Store = StoreMongo
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = def.Mongo.URI
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = def.Mongo.Database
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = def.SessionTTL
	}
	if c.SessionSweepCron == "" {
		c.SessionSweepCron = def.SessionSweepCron
	}
	if c.Argon2.MemoryKiB == 0 {
		c.Argon2.MemoryKiB = def.Argon2.MemoryKiB
	}
	if c.Argon2.Iterations == 0 {
		c.Argon2.Iterations = def.Argon2.Iterations
	}
	if c.Argon2.Parallelism == 0 {
		c.Argon2.Parallelism = def.Argon2.Parallelism
	}
}

// Load reads the YAML config at path, creating it with defaults on first run,
// then applies ROOMRESERVE_* environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	var cfg *Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = Default()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Normalize()
	}

	if err := cfg.applyEnvironment(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".roomreserve-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) applyEnvironment() error {
	invalid := make([]string, 0, 2)

	if listen := strings.TrimSpace(os.Getenv("ROOMRESERVE_LISTEN")); listen != "" {
		c.Listen = listen
	}
	if store := strings.TrimSpace(os.Getenv("ROOMRESERVE_STORE")); store != "" {
		switch StoreBackend(store) {
		case StoreMongo, StoreMemory:
			c.Store = StoreBackend(store)
		default:
			invalid = append(invalid, "ROOMRESERVE_STORE")
		}
	}
	if uri := strings.TrimSpace(os.Getenv("ROOMRESERVE_MONGO_URI")); uri != "" {
		c.Mongo.URI = uri
	}
	if db := strings.TrimSpace(os.Getenv("ROOMRESERVE_MONGO_DATABASE")); db != "" {
		c.Mongo.Database = db
	}
	if ttlValue := strings.TrimSpace(os.Getenv("ROOMRESERVE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROOMRESERVE_SESSION_TTL")
		} else {
			c.SessionTTL = Duration(ttl)
		}
	}
	if sweep := strings.TrimSpace(os.Getenv("ROOMRESERVE_SESSION_SWEEP")); sweep != "" {
		c.SessionSweepCron = sweep
	}
	if dev := strings.TrimSpace(os.Getenv("ROOMRESERVE_DEVELOPMENT")); dev != "" {
		switch strings.ToLower(dev) {
		case "1", "true", "yes":
			c.Development = true
		case "0", "false", "no":
			c.Development = false
		default:
			invalid = append(invalid, "ROOMRESERVE_DEVELOPMENT")
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return nil
}
