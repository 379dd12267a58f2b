package analytics

import (
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable constants of the analytics engine. All values are
// overridable without redeploying: defaults <- YAML file <- environment.
type Config struct {
	// CostPerComputeSecond is the linear cost rate in dollars per compute second
	CostPerComputeSecond float64 `yaml:"cost_per_compute_second"`

	// TargetCostPerUser is the sustainability target; cost-per-user strictly
	// above it marks a team or user at_risk
	TargetCostPerUser float64 `yaml:"target_cost_per_user"`

	// IdleThresholdSecondsPerTool is the idle ratio above which a session group
	// becomes a zombie candidate
	IdleThresholdSecondsPerTool float64 `yaml:"idle_threshold_seconds_per_tool"`

	// MinSessions is the minimum reconstructed sessions a group needs before it
	// is considered for zombie detection
	MinSessions int `yaml:"min_sessions"`

	// MinZeroToolSessionSeconds excludes instant connect/disconnect noise from
	// the zero-tool zombie rule
	MinZeroToolSessionSeconds float64 `yaml:"min_zero_tool_session_seconds"`

	// LivenessTimeout implicitly closes a session with no activity for longer
	// than this duration
	LivenessTimeout time.Duration `yaml:"liveness_timeout"`

	// DefaultWindowDays is the trailing window used when a caller does not
	// supply one (overview report)
	DefaultWindowDays int `yaml:"default_window_days"`

	// MaxConcurrentScans bounds concurrent full scans of the event store
	MaxConcurrentScans int `yaml:"max_concurrent_scans"`
}

// DefaultConfig returns the built-in engine configuration
func DefaultConfig() *Config {
	return &Config{
		CostPerComputeSecond:        0.0001,
		TargetCostPerUser:           0.09,
		IdleThresholdSecondsPerTool: 300,
		MinSessions:                 3,
		MinZeroToolSessionSeconds:   300,
		LivenessTimeout:             10 * time.Minute,
		DefaultWindowDays:           30,
		MaxConcurrentScans:          4,
	}
}

// UnmarshalYAML decodes a config document, leaving fields the document does
// not mention at their current (default) values. Durations accept the usual
// Go forms ("10m", "1h30m").
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		CostPerComputeSecond        *float64 `yaml:"cost_per_compute_second"`
		TargetCostPerUser           *float64 `yaml:"target_cost_per_user"`
		IdleThresholdSecondsPerTool *float64 `yaml:"idle_threshold_seconds_per_tool"`
		MinSessions                 *int     `yaml:"min_sessions"`
		MinZeroToolSessionSeconds   *float64 `yaml:"min_zero_tool_session_seconds"`
		LivenessTimeout             *string  `yaml:"liveness_timeout"`
		DefaultWindowDays           *int     `yaml:"default_window_days"`
		MaxConcurrentScans          *int     `yaml:"max_concurrent_scans"`
	}

	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.CostPerComputeSecond != nil {
		c.CostPerComputeSecond = *raw.CostPerComputeSecond
	}
	if raw.TargetCostPerUser != nil {
		c.TargetCostPerUser = *raw.TargetCostPerUser
	}
	if raw.IdleThresholdSecondsPerTool != nil {
		c.IdleThresholdSecondsPerTool = *raw.IdleThresholdSecondsPerTool
	}
	if raw.MinSessions != nil {
		c.MinSessions = *raw.MinSessions
	}
	if raw.MinZeroToolSessionSeconds != nil {
		c.MinZeroToolSessionSeconds = *raw.MinZeroToolSessionSeconds
	}
	if raw.LivenessTimeout != nil {
		d, err := time.ParseDuration(*raw.LivenessTimeout)
		if err != nil {
			return fmt.Errorf("parse liveness_timeout: %w", err)
		}
		c.LivenessTimeout = d
	}
	if raw.DefaultWindowDays != nil {
		c.DefaultWindowDays = *raw.DefaultWindowDays
	}
	if raw.MaxConcurrentScans != nil {
		c.MaxConcurrentScans = *raw.MaxConcurrentScans
	}

	return nil
}

// LoadConfig builds a Config from defaults, then the YAML file at path (if
// any), then environment variable overrides
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
			// Missing file is fine, env overrides still apply
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides config fields from environment variables
func (c *Config) applyEnv() {
	if v, ok := envFloat("ANALYTICS_COST_PER_COMPUTE_SECOND"); ok {
		c.CostPerComputeSecond = v
	}
	if v, ok := envFloat("ANALYTICS_TARGET_COST_PER_USER"); ok {
		c.TargetCostPerUser = v
	}
	if v, ok := envFloat("ANALYTICS_IDLE_THRESHOLD_SECONDS"); ok {
		c.IdleThresholdSecondsPerTool = v
	}
	if v, ok := envInt("ANALYTICS_MIN_SESSIONS"); ok {
		c.MinSessions = v
	}
	if v, ok := envFloat("ANALYTICS_MIN_ZERO_TOOL_SESSION_SECONDS"); ok {
		c.MinZeroToolSessionSeconds = v
	}
	if v := os.Getenv("ANALYTICS_LIVENESS_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.LivenessTimeout = d
		}
	}
	if v, ok := envInt("ANALYTICS_DEFAULT_WINDOW_DAYS"); ok {
		c.DefaultWindowDays = v
	}
	if v, ok := envInt("ANALYTICS_MAX_CONCURRENT_SCANS"); ok {
		c.MaxConcurrentScans = v
	}
}

// Validate checks that all config values are usable
func (c *Config) Validate() error {
	if c.CostPerComputeSecond < 0 {
		return fmt.Errorf("cost_per_compute_second must be non-negative, got %v", c.CostPerComputeSecond)
	}
	if c.TargetCostPerUser <= 0 {
		return fmt.Errorf("target_cost_per_user must be positive, got %v", c.TargetCostPerUser)
	}
	if c.IdleThresholdSecondsPerTool <= 0 {
		return fmt.Errorf("idle_threshold_seconds_per_tool must be positive, got %v", c.IdleThresholdSecondsPerTool)
	}
	if c.MinSessions <= 0 {
		return fmt.Errorf("min_sessions must be positive, got %d", c.MinSessions)
	}
	if c.LivenessTimeout <= 0 {
		return fmt.Errorf("liveness_timeout must be positive, got %s", c.LivenessTimeout)
	}
	if c.DefaultWindowDays <= 0 {
		return fmt.Errorf("default_window_days must be positive, got %d", c.DefaultWindowDays)
	}
	if c.MaxConcurrentScans <= 0 {
		return fmt.Errorf("max_concurrent_scans must be positive, got %d", c.MaxConcurrentScans)
	}
	return nil
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

// ConfigHolder provides an atomic, consistent snapshot of the engine config.
// A single computation always reads one version, even across a reload.
type ConfigHolder struct {
	current atomic.Pointer[Config]
}

// NewConfigHolder creates a holder with an initial config
func NewConfigHolder(cfg *Config) *ConfigHolder {
	h := &ConfigHolder{}
	h.current.Store(cfg)
	return h
}

// Snapshot returns the current config. The returned value must not be mutated.
func (h *ConfigHolder) Snapshot() *Config {
	return h.current.Load()
}

// Replace swaps in a new config atomically
func (h *ConfigHolder) Replace(cfg *Config) {
	h.current.Store(cfg)
}
