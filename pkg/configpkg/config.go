// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	DBDriver           string        `mapstructure:"DB_DRIVER"`
	DBSource           string        `mapstructure:"DB_SOURCE"`
	DBMaxOpenConns     int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns     int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime  time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	MigrationURL       string        `mapstructure:"MIGRATION_URL"`
	ServerAddress      string        `mapstructure:"SERVER_ADDRESS"`
	ServerReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	ServerWriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout    time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	DefaultBalance     int64         `mapstructure:"DEFAULT_BALANCE"`
	Environement       string        `mapstructure:"GO_ENV"`
}

var defaults = map[string]any{
	"DB_DRIVER":            "postgres",
	"DB_MAX_OPEN_CONNS":    25,
	"DB_MAX_IDLE_CONNS":    10,
	"DB_CONN_MAX_LIFETIME": 30 * time.Minute,
	"MIGRATION_URL":        "file://db/migration",
	"SERVER_ADDRESS":       "0.0.0.0:8080",
	"SERVER_READ_TIMEOUT":  10 * time.Second,
	"SERVER_WRITE_TIMEOUT": 10 * time.Second,
	"SHUTDOWN_TIMEOUT":     15 * time.Second,
	"DEFAULT_BALANCE":      100,
	"GO_ENV":               "production",
}

// Load read configuration from file or environment variables.
//
// Environment variables take precedence over app.env found in path.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	if err := c.validate(); err != nil {
		return c, err
	}

	return c, nil
}

func (c Config) validate() error {
	if c.DBSource == "" {
		return fmt.Errorf("DB_SOURCE is required")
	}

	if c.DefaultBalance < 0 {
		return fmt.Errorf("DEFAULT_BALANCE must not be negative, got %d", c.DefaultBalance)
	}

	return nil
}
