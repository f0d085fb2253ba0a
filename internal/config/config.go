package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

// SyncConfig drives the client-side sync engine.
type SyncConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AssumeOnline   bool          `mapstructure:"assume_online"`
}

// RemoteConfig configures the reference reconciliation server.
type RemoteConfig struct {
	Address     string  `mapstructure:"address"`
	Port        int     `mapstructure:"port"`
	FailureRate float64 `mapstructure:"failure_rate"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Log      LogConfig      `mapstructure:"log"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from the given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in the current working
// directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		v.SetDefault("server.address", "127.0.0.1")
		v.SetDefault("server.port", 8080)
		v.SetDefault("database.path", "data/tracker.db")
		v.SetDefault("sync.endpoint", "http://localhost:3001/sync")
		v.SetDefault("sync.retry_delay", 5*time.Second)
		v.SetDefault("sync.request_timeout", 10*time.Second)
		v.SetDefault("sync.assume_online", true)
		v.SetDefault("remote.address", "0.0.0.0")
		v.SetDefault("remote.port", 3001)
		v.SetDefault("remote.failure_rate", 0.2)
		v.SetDefault("log.level", "info")

		// environment overrides, e.g. QT_SERVER_PORT=9000
		v.SetEnvPrefix("QT")
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
