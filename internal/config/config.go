package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

var supportedDrivers = map[string]bool{
	"sqlite":   true,
	"postgres": true,
	"pgx":      true,
}

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Clock     ClockConfig     `yaml:"clock"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// DBConfig selects the database/sql driver and its data source. SeedPath,
// when set, names a JSON fixture loaded into an empty database on startup.
type DBConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	SeedPath string `yaml:"seed_path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// ClockConfig names the IANA zone that decides which calendar day "today" is.
type ClockConfig struct {
	Zone string `yaml:"zone"`
}

// Location resolves the configured zone.
func (c ClockConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Zone)
	if err != nil {
		return nil, fmt.Errorf("invalid clock zone %q: %w", c.Zone, err)
	}
	return loc, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportStdio,
		},
		DB: DBConfig{
			Driver: "sqlite",
			DSN:    "library.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Clock: ClockConfig{
			Zone: "UTC",
		},
	}
}

// Load reads configuration from an optional .env file, an optional YAML file
// and environment variables, in increasing order of precedence.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	cfg := Default()

	if path := os.Getenv("LIBRARY_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("LIBRARY_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("LIBRARY_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LIBRARY_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("LIBRARY_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if driver := os.Getenv("LIBRARY_DB_DRIVER"); driver != "" {
		cfg.DB.Driver = driver
	}
	if dsn := os.Getenv("LIBRARY_DB_DSN"); dsn != "" {
		cfg.DB.DSN = dsn
	}
	if seed := os.Getenv("LIBRARY_DB_SEED_PATH"); seed != "" {
		cfg.DB.SeedPath = seed
	}
	if level := os.Getenv("LIBRARY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if zone := os.Getenv("LIBRARY_CLOCK_ZONE"); zone != "" {
		cfg.Clock.Zone = zone
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting the server cannot start with.
func (c Config) Validate() error {
	if !supportedDrivers[c.DB.Driver] {
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db dsn must not be empty")
	}
	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported transport %q", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if _, err := c.Clock.Location(); err != nil {
		return err
	}
	return nil
}

// loadEnvFile exports the variables of LIBRARY_ENV_FILE, or of ./.env when
// present. Variables already set in the environment win.
func loadEnvFile() error {
	if path := os.Getenv("LIBRARY_ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
