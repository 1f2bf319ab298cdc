package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "DAGBOK"
	defaultHTTPAddress  = "127.0.0.1:8080"
	defaultDatabasePath = "dagbok.db"
	defaultStorageKey   = "koddagbok.v0.1"
	defaultHistoryLimit = 10
	defaultLogLevel     = "info"
)

// AppConfig captures runtime configuration for the server and CLI.
type AppConfig struct {
	HTTPAddress  string
	DatabasePath string
	StorageKey   string
	HistoryLimit int
	Location     *time.Location
	LogLevel     string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("storage.key", defaultStorageKey)
	configViper.SetDefault("history.limit", defaultHistoryLimit)
	configViper.SetDefault("journal.timezone", "")
	configViper.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	location, err := loadLocation(configViper.GetString("journal.timezone"))
	if err != nil {
		return AppConfig{}, err
	}

	cfg := AppConfig{
		HTTPAddress:  configViper.GetString("http.address"),
		DatabasePath: configViper.GetString("database.path"),
		StorageKey:   configViper.GetString("storage.key"),
		HistoryLimit: configViper.GetInt("history.limit"),
		Location:     location,
		LogLevel:     configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(trimmed)
	if err != nil {
		return nil, fmt.Errorf("journal.timezone is invalid: %w", err)
	}
	return location, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("storage.key is required")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history.limit must be positive")
	}
	return nil
}
