package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete bridge configuration
type Config struct {
	Snapshots SnapshotsConfig `mapstructure:"snapshots"`
	State     StateConfig     `mapstructure:"state"`
	Index     IndexConfig     `mapstructure:"index"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Freshness FreshnessConfig `mapstructure:"freshness"`
	Workflows WorkflowsConfig `mapstructure:"workflows"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SnapshotsConfig locates the monitor's snapshot files
type SnapshotsConfig struct {
	Dir string `mapstructure:"dir"`
}

// StateConfig locates the write-state file
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// IndexConfig configures the optional local proof index. An empty path
// disables indexing entirely.
type IndexConfig struct {
	Path string `mapstructure:"path"`
}

// ChainConfig contains RPC endpoints, registry contract and signing material
type ChainConfig struct {
	Endpoints       []string      `mapstructure:"endpoints"`
	RegistryAddress string        `mapstructure:"registry_address"`
	PrivateKey      string        `mapstructure:"private_key"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	ConfirmTimeout  time.Duration `mapstructure:"confirm_timeout"`
}

// FreshnessConfig controls the staleness gate
type FreshnessConfig struct {
	ThresholdSeconds int `mapstructure:"threshold_seconds"`
}

// Threshold returns the staleness threshold as a duration.
func (f FreshnessConfig) Threshold() time.Duration {
	return time.Duration(f.ThresholdSeconds) * time.Second
}

// WorkflowsConfig selects which workflows a cycle runs. Empty means all.
type WorkflowsConfig struct {
	Enabled []string `mapstructure:"enabled"`
	Workers int      `mapstructure:"workers"`
}

// OutputConfig contains output formatting configuration
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultStalenessSeconds is the staleness threshold applied when no
// configuration overrides it: 45 minutes, three monitor cycles' worth of
// headroom over the producer's 15-minute cadence.
const DefaultStalenessSeconds = 2700

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Snapshots: SnapshotsConfig{
			Dir: "./snapshots",
		},
		State: StateConfig{
			Path: "~/.sentinel/write-state.json",
		},
		Index: IndexConfig{
			Path: "",
		},
		Chain: ChainConfig{
			Endpoints:       []string{},
			RegistryAddress: "",
			PrivateKey:      "",
			DialTimeout:     10 * time.Second,
			ConfirmTimeout:  90 * time.Second,
		},
		Freshness: FreshnessConfig{
			ThresholdSeconds: DefaultStalenessSeconds,
		},
		Workflows: WorkflowsConfig{
			Enabled: []string{},
			Workers: 3,
		},
		Output: OutputConfig{
			Format:  "text",
			NoColor: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	config := DefaultConfig()

	// Set configuration file paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add configuration paths
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".sentinel"))
	}
	viper.AddConfigPath(".")

	// Set environment variable support
	viper.SetEnvPrefix("SENTINEL")
	viper.AutomaticEnv()

	// Map environment variables to config keys
	viper.BindEnv("snapshots.dir", "SENTINEL_SNAPSHOTS_DIR")
	viper.BindEnv("state.path", "SENTINEL_STATE_PATH")
	viper.BindEnv("index.path", "SENTINEL_INDEX_PATH")
	viper.BindEnv("chain.registry_address", "SENTINEL_REGISTRY_ADDRESS")
	viper.BindEnv("chain.private_key", "SENTINEL_PRIVATE_KEY")
	viper.BindEnv("freshness.threshold_seconds", "SENTINEL_STALENESS_THRESHOLD")
	viper.BindEnv("logging.level", "SENTINEL_LOG_LEVEL")

	// Read configuration file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is not an error - we'll use defaults
	}

	// Unmarshal into our config struct
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// RPC endpoints usually arrive as a comma-separated env var rather than
	// a YAML list; viper does not split env strings into slices for us.
	if raw := os.Getenv("SENTINEL_RPC_ENDPOINTS"); raw != "" {
		config.Chain.Endpoints = SplitEndpoints(raw)
	}

	return config, nil
}

// SplitEndpoints parses a comma-separated endpoint list, trimming whitespace
// and dropping empty entries while preserving order.
func SplitEndpoints(raw string) []string {
	parts := strings.Split(raw, ",")
	endpoints := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			endpoints = append(endpoints, trimmed)
		}
	}
	return endpoints
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Snapshots.Dir == "" {
		return fmt.Errorf("snapshots directory is required")
	}

	if c.State.Path == "" {
		return fmt.Errorf("write-state path is required")
	}

	if c.Freshness.ThresholdSeconds <= 0 {
		return fmt.Errorf("staleness threshold must be positive, got %d", c.Freshness.ThresholdSeconds)
	}

	if c.Workflows.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", c.Workflows.Workers)
	}

	return nil
}

// ValidateForPublish checks the additional fields a publishing cycle needs.
// Dry runs and read-only commands skip this.
func (c *Config) ValidateForPublish() error {
	if len(c.Chain.Endpoints) == 0 {
		return fmt.Errorf("at least one RPC endpoint is required (set SENTINEL_RPC_ENDPOINTS)")
	}

	if c.Chain.RegistryAddress == "" {
		return fmt.Errorf("registry contract address is required (set SENTINEL_REGISTRY_ADDRESS)")
	}

	if c.Chain.PrivateKey == "" {
		return fmt.Errorf("signing key is required (set SENTINEL_PRIVATE_KEY)")
	}

	return nil
}

// ExpandPaths expands home directory paths
func (c *Config) ExpandPaths() error {
	var err error
	c.Snapshots.Dir, err = expandPath(c.Snapshots.Dir)
	if err != nil {
		return fmt.Errorf("failed to expand snapshots dir: %w", err)
	}

	c.State.Path, err = expandPath(c.State.Path)
	if err != nil {
		return fmt.Errorf("failed to expand state path: %w", err)
	}

	c.Index.Path, err = expandPath(c.Index.Path)
	if err != nil {
		return fmt.Errorf("failed to expand index path: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}
