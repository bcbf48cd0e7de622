// Package config loads service configuration from defaults, an optional YAML
// file and MINIMINDS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override, e.g.
	// MINIMINDS_AUDIT_QUEUE_CAPACITY -> audit.queue_capacity.
	EnvPrefix = "MINIMINDS_"

	maxConfigFileSize = 1 << 20

	// DevSigningKey is accepted outside production only.
	DevSigningKey = "dev-secret-key-change-in-production"
)

// Audit store backends.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"
)

type Config struct {
	Server     Server     `koanf:"server"`
	Identity   Identity   `koanf:"identity"`
	Remote     Remote     `koanf:"remote"`
	Audit      Audit      `koanf:"audit"`
	Escalation Escalation `koanf:"escalation"`
	Classifier Classifier `koanf:"classifier"`
	RateLimit  RateLimit  `koanf:"ratelimit"`
	History    History    `koanf:"history"`
	Log        Log        `koanf:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `koanf:"addr"`
	Environment     string        `koanf:"environment"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type Identity struct {
	SigningKey string `koanf:"signing_key"`
	Issuer     string `koanf:"issuer"`
}

// Remote holds the collaborator endpoints. An empty URL makes every call to
// that collaborator fail as unavailable.
type Remote struct {
	ResponderURL  string        `koanf:"responder_url"`
	AuditURL      string        `koanf:"audit_url"`
	EscalationURL string        `koanf:"escalation_url"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`
}

type Audit struct {
	QueueCapacity    int           `koanf:"queue_capacity"`
	FlushInterval    time.Duration `koanf:"flush_interval"`
	Store            string        `koanf:"store"`
	StorePath        string        `koanf:"store_path"`
	Namespace        string        `koanf:"namespace"`
	FailureThreshold int           `koanf:"failure_threshold"`
	ProbeCooldown    time.Duration `koanf:"probe_cooldown"`
	FingerprintKey   string        `koanf:"fingerprint_key"`
}

type Escalation struct {
	// Durability is best_effort or audited.
	Durability string `koanf:"durability"`
}

type Classifier struct {
	PhrasesFile    string `koanf:"phrases_file"`
	MaxQueryLength int    `koanf:"max_query_length"`
}

// RateLimit applies per caller to query submission.
type RateLimit struct {
	PerSecond float64 `koanf:"per_second"`
	Burst     int     `koanf:"burst"`
}

type History struct {
	MaxTurns int           `koanf:"max_turns"`
	IdleTTL  time.Duration `koanf:"idle_ttl"`
}

type Log struct {
	Level string `koanf:"level"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			Environment:     "development",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Identity: Identity{SigningKey: DevSigningKey},
		Remote:   Remote{Timeout: 10 * time.Second},
		Audit: Audit{
			QueueCapacity:    100,
			FlushInterval:    5 * time.Minute,
			Store:            StoreSQLite,
			StorePath:        "data/miniminds.db",
			Namespace:        "miniminds",
			FailureThreshold: 3,
			ProbeCooldown:    30 * time.Second,
		},
		Escalation: Escalation{Durability: "best_effort"},
		Classifier: Classifier{MaxQueryLength: 2000},
		RateLimit:  RateLimit{PerSecond: 1, Burst: 5},
		History:    History{MaxTurns: 200, IdleTTL: 2 * time.Hour},
		Log:        Log{Level: "info"},
	}
}

// Load reads path (optional, skipped when empty or missing) and the
// environment over Default, then validates the result.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		if content != nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey maps MINIMINDS_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Validate reports every nonsensical value at once.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}

	if c.Identity.SigningKey == "" {
		errs = append(errs, errors.New("identity.signing_key is required"))
	} else if c.IsProduction() && c.Identity.SigningKey == DevSigningKey {
		errs = append(errs, errors.New("identity.signing_key must be changed in production"))
	}

	for name, raw := range map[string]string{
		"remote.responder_url":  c.Remote.ResponderURL,
		"remote.audit_url":      c.Remote.AuditURL,
		"remote.escalation_url": c.Remote.EscalationURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}
	if c.Remote.Timeout <= 0 {
		errs = append(errs, errors.New("remote.timeout must be positive"))
	}

	if c.Audit.QueueCapacity <= 0 {
		errs = append(errs, errors.New("audit.queue_capacity must be positive"))
	}
	if c.Audit.FlushInterval <= 0 {
		errs = append(errs, errors.New("audit.flush_interval must be positive"))
	}
	switch c.Audit.Store {
	case StoreMemory:
	case StoreSQLite, StoreFile:
		if c.Audit.StorePath == "" {
			errs = append(errs, fmt.Errorf("audit.store_path is required for the %s store", c.Audit.Store))
		}
	default:
		errs = append(errs, fmt.Errorf("audit.store must be sqlite, file or memory, got %q", c.Audit.Store))
	}
	if c.Audit.Namespace == "" {
		errs = append(errs, errors.New("audit.namespace is required"))
	}
	if c.Audit.FailureThreshold <= 0 {
		errs = append(errs, errors.New("audit.failure_threshold must be positive"))
	}
	if c.Audit.ProbeCooldown <= 0 {
		errs = append(errs, errors.New("audit.probe_cooldown must be positive"))
	}

	switch c.Escalation.Durability {
	case "best_effort", "audited":
	default:
		errs = append(errs, fmt.Errorf("escalation.durability must be best_effort or audited, got %q", c.Escalation.Durability))
	}

	if c.Classifier.MaxQueryLength <= 0 {
		errs = append(errs, errors.New("classifier.max_query_length must be positive"))
	}
	if c.RateLimit.PerSecond <= 0 {
		errs = append(errs, errors.New("ratelimit.per_second must be positive"))
	}
	if c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("ratelimit.burst must be at least 1"))
	}
	if c.History.MaxTurns <= 0 {
		errs = append(errs, errors.New("history.max_turns must be positive"))
	}
	if c.History.IdleTTL <= 0 {
		errs = append(errs, errors.New("history.idle_ttl must be positive"))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
