package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted in storage.driver.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

type ServerConfig struct {
	Address            string   `mapstructure:"address"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// StorageConfig selects the exercise store backend.
type StorageConfig struct {
	Driver         string `mapstructure:"driver"`
	SeedSampleData bool   `mapstructure:"seed_sample_data"`
}

// DatabaseConfig is the MongoDB connection used by the mongo driver.
type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig enables bearer-token auth when JWTSecret is set.
type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	PasswordHash string        `mapstructure:"password_hash"`
	Expiration   time.Duration `mapstructure:"expiration"`
}

var envReplacer = strings.NewReplacer(`.`, `_`)

// LoadConfig reads config.yaml from path, if present, then applies environment overrides.
// Nested keys map to env vars with dots replaced by underscores, e.g. storage.driver -> STORAGE_DRIVER.
// A .env file in path fills in variables the process environment leaves unset.
func LoadConfig(path string) (Config, error) {
	var config Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(envReplacer)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors_allowed_origins", []string{})
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.seed_sample_data", true)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "exercise_tracker")
	v.SetDefault("sqlite.path", "exercises.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("auth.expiration", "24h")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
	}

	if err := applyDotEnv(v, path); err != nil {
		return config, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	config.Storage.Driver = strings.ToLower(strings.TrimSpace(config.Storage.Driver))
	if err := config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

// applyDotEnv overrides keys from path/.env unless the real environment sets them.
func applyDotEnv(v *viper.Viper, path string) error {
	values, err := godotenv.Read(filepath.Join(path, ".env"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read .env: %w", err)
	}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(envReplacer.Replace(key))
		if _, ok := os.LookupEnv(name); ok {
			continue
		}
		if value, ok := values[name]; ok {
			v.Set(key, value)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Address == "" {
		return errors.New("server.address is required")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return errors.New("sqlite.path is required for the sqlite driver")
		}
	case DriverMongo:
		if c.Database.URI == "" || c.Database.Name == "" {
			return errors.New("database.uri and database.name are required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q (want %s, %s or %s)", c.Storage.Driver, DriverMemory, DriverSQLite, DriverMongo)
	}

	if (c.Auth.JWTSecret == "") != (c.Auth.PasswordHash == "") {
		return errors.New("auth.jwt_secret and auth.password_hash must be set together")
	}
	if c.Auth.Expiration <= 0 {
		return errors.New("auth.expiration must be positive")
	}
	return nil
}
