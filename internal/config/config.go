// Package config loads js2liquibase settings from flags, environment,
// .env files and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/script"
)

// AppFs is the filesystem used for config, scripts and changelogs.
var AppFs = afero.NewOsFs()

const (
	configName = ".js2liquibase"
	envPrefix  = "JS2LIQUIBASE"
)

// Config holds the application configuration
type Config struct {
	Author       string
	OutputDir    string
	Order        script.Order
	LedgerDSN    string
	HistoryLimit int
	Verbose      bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("author", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("order", string(script.OrderDeclaration))
	v.SetDefault("ledger_dsn", "")
	v.SetDefault("history_limit", 20)
	v.SetDefault("verbose", false)
}

// Load reads configuration into v and returns the resolved settings.
// configFile, when set, must exist; otherwise the config file is searched in
// the working directory, $HOME and $HOME/.config/js2liquibase and may be absent.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetFs(AppFs)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "js2liquibase"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	loadDotEnv()

	cfg := &Config{
		Author:       v.GetString("author"),
		OutputDir:    v.GetString("output_dir"),
		Order:        script.Order(v.GetString("order")),
		LedgerDSN:    v.GetString("ledger_dsn"),
		HistoryLimit: v.GetInt("history_limit"),
		Verbose:      v.GetBool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Order {
	case script.OrderDeclaration, script.OrderSource:
	default:
		return fmt.Errorf("invalid order %q: must be %s or %s", c.Order, script.OrderDeclaration, script.OrderSource)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit)
	}
	return nil
}

// loadDotEnv loads .env and then .env.local, which takes priority. Variables
// already set in the environment are kept for .env.
func loadDotEnv() {
	if ok, _ := afero.Exists(AppFs, ".env"); ok {
		_ = godotenv.Load()
	}
	if ok, _ := afero.Exists(AppFs, ".env.local"); ok {
		_ = godotenv.Overload(".env.local")
	}
}
