// Package config resolves runtime settings from, in increasing precedence:
// defaults, an optional config file, environment variables. A .env file in
// the working directory is loaded into the environment first when present.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every tunable the CLI and pipeline need.
type Config struct {
	// Model settings.
	Model          string        `mapstructure:"model"`
	APIKey         string        `mapstructure:"api_key"`
	Temperature    float32       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Paths.
	CatalogDir string `mapstructure:"catalog_dir"`
	SessionDB  string `mapstructure:"session_db"`

	// Logging.
	LogFormat string `mapstructure:"log_format"` // "json" or "human"
	Debug     bool   `mapstructure:"debug"`
}

// Load reads configuration. cfgFile may be empty, in which case only
// defaults, .env, and AUTOFLOW_* environment variables apply.
func Load(cfgFile string) (*Config, error) {
	// Best-effort: a missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("temperature", 0.2)
	v.SetDefault("max_tokens", 4096)
	v.SetDefault("request_timeout", 60*time.Second)
	v.SetDefault("catalog_dir", "catalog")
	v.SetDefault("session_db", "autoflow.db")
	v.SetDefault("log_format", "human")
	v.SetDefault("debug", false)

	v.SetEnvPrefix("AUTOFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// The API key is conventionally provided via OPENAI_API_KEY; the
	// AUTOFLOW_API_KEY form wins when both are set.
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return &cfg, nil
}
