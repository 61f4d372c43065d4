package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/localconnect/directory/pkg/logger"
)

// SupabaseConfig holds the hosted backend connection settings. Secrets are
// always taken from the environment, never the yaml file.
type SupabaseConfig struct {
	URL        string        `yaml:"url"`
	AnonKey    string        `yaml:"-"`
	ServiceKey string        `yaml:"-"`
	JWTSecret  string        `yaml:"-"`
	Timeout    time.Duration `yaml:"timeout"`
}

// SweepConfig controls the orphaned-object maintenance sweep.
type SweepConfig struct {
	Schedule string `yaml:"schedule"`
	DryRun   bool   `yaml:"dry_run"`
}

// Config is the application configuration.
type Config struct {
	Supabase  SupabaseConfig       `yaml:"supabase"`
	Logging   logger.LoggingConfig `yaml:"logging"`
	Sweep     SweepConfig          `yaml:"sweep"`
	StatePath string               `yaml:"state_path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Supabase: SupabaseConfig{Timeout: 30 * time.Second},
		Logging: logger.LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
		Sweep:     SweepConfig{Schedule: "@daily"},
		StatePath: defaultStatePath(),
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "localconnect.json"
	}
	return filepath.Join(dir, "localconnect", "state.json")
}

// Load reads configuration from path (defaults applied for anything the
// file omits) and overlays environment variables. A .env file in the
// working directory is honored when present. An empty path skips the file
// and uses defaults plus environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Supabase.URL == "" {
		return nil, fmt.Errorf("supabase url is required (set SUPABASE_URL or supabase.url)")
	}
	if cfg.Supabase.AnonKey == "" {
		return nil, fmt.Errorf("supabase anon key is required (set SUPABASE_ANON_KEY)")
	}
	return cfg, nil
}

// LoadOrDefault loads the config file at path, falling back to defaults
// plus environment when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	return Load(path)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		cfg.Supabase.AnonKey = v
	}
	if v := os.Getenv("SUPABASE_SERVICE_KEY"); v != "" {
		cfg.Supabase.ServiceKey = v
	}
	if v := os.Getenv("SUPABASE_JWT_SECRET"); v != "" {
		cfg.Supabase.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LOCALCONNECT_STATE"); v != "" {
		cfg.StatePath = v
	}
}
