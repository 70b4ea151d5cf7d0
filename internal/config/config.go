// Package config loads and validates client configuration. Config files
// are YAML; the shape is validated by unifying the decoded document with
// an embedded CUE schema, so schema violations surface before any
// connection is attempted.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/cygnet/internal/resilience"
)

//go:embed schema.cue
var schemaCUE string

// Config is the validated client configuration.
type Config struct {
	URI      string `yaml:"uri" json:"uri"`
	Database string `yaml:"database" json:"database"`

	UsernameEnv string `yaml:"username_env" json:"username_env"`
	PasswordEnv string `yaml:"password_env" json:"password_env"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	TimeoutMS int `yaml:"timeout_ms" json:"timeout_ms"`

	Retry struct {
		MaxAttempts       int `yaml:"max_attempts" json:"max_attempts"`
		InitialIntervalMS int `yaml:"initial_interval_ms" json:"initial_interval_ms"`
	} `yaml:"retry" json:"retry"`

	Breaker struct {
		FailureThreshold int `yaml:"failure_threshold" json:"failure_threshold"`
		CooldownMS       int `yaml:"cooldown_ms" json:"cooldown_ms"`
	} `yaml:"breaker" json:"breaker"`

	LatencyWindow int `yaml:"latency_window" json:"latency_window"`
}

// Load reads a YAML config file and validates it against the embedded
// CUE schema. Defaults declared in the schema are applied to absent fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse validates raw YAML config bytes.
func Parse(data []byte) (*Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	defn := schema.LookupPath(cue.ParsePath("#Config"))
	if err := defn.Err(); err != nil {
		return nil, fmt.Errorf("lookup config schema: %w", err)
	}

	unified := defn.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Credentials resolves username/password through the configured
// environment variable indirection. Missing variables return empty
// strings; whether that is acceptable is the driver's concern.
func (c *Config) Credentials() (username, password string) {
	return os.Getenv(c.UsernameEnv), os.Getenv(c.PasswordEnv)
}

// ResilienceOptions maps config values onto a resilience policy.
func (c *Config) ResilienceOptions() resilience.Options {
	return resilience.Options{
		MaxRetries:       uint64(c.Retry.MaxAttempts),
		InitialInterval:  time.Duration(c.Retry.InitialIntervalMS) * time.Millisecond,
		AttemptTimeout:   time.Duration(c.TimeoutMS) * time.Millisecond,
		BreakerThreshold: uint32(c.Breaker.FailureThreshold),
		BreakerCooldown:  time.Duration(c.Breaker.CooldownMS) * time.Millisecond,
	}
}
