package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "CIRCLE"
	defaultAPIURL  = "http://127.0.0.1:8001/api/v1"
	defaultSession = "default"
	defaultTimeout = 15 * time.Second
)

// Config is resolved from flags, CIRCLE_* environment variables and
// <home>/config.yaml, in that order of precedence.
type Config struct {
	APIURL  string        `mapstructure:"api_url"`
	Home    string        `mapstructure:"home"`
	Session string        `mapstructure:"session"`
	Timeout time.Duration `mapstructure:"timeout"`
	JSON    bool          `mapstructure:"json"`
	Verbose bool          `mapstructure:"verbose"`
}

// SessionDir holds one JSON file per named session.
func (c Config) SessionDir() string {
	return filepath.Join(c.Home, "sessions")
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".circle"
	}
	return filepath.Join(home, ".circle")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", defaultAPIURL)
	v.SetDefault("home", defaultHome())
	v.SetDefault("session", defaultSession)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("json", false)
	v.SetDefault("verbose", false)
	return v
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, flag := range map[string]string{
		"api_url": "api-url",
		"home":    "home",
		"session": "session",
		"timeout": "timeout",
		"json":    "json",
		"verbose": "verbose",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig reads the optional config file from the resolved home directory.
func loadConfig(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("home"))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.Session == "" {
		cfg.Session = defaultSession
	}
	return cfg, nil
}
