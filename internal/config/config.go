// Package config provides configuration related utilities.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/ilyakaznacheev/cleanenv"
)

// Default values for config.
const (
	defaultHost                   = "0.0.0.0"
	defaultPort                   = "8080"
	defaultRPCPort                = "3200"
	defaultLogPath                = "logs/app.log"
	defaultMaxLogSizeMB           = 5
	defaultMaxLogBackups          = 10
	defaultMaxLogFileLifetimeDays = 14
	// DefaultAlphabet is the URL-safe nanoid alphabet.
	DefaultAlphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// DefaultIDLength is the length of generated short IDs.
	DefaultIDLength = 6
	// MaxIDLength is the size of the id column in the postgres schema.
	MaxIDLength = 64
	// DefaultMaxRetries is the number of ID collision retries per allocation.
	DefaultMaxRetries = 3
)

// Default variables.
var (
	// Default address to start server with.
	DefaultAddress = fmt.Sprintf("%s:%s", defaultHost, defaultPort)
	// Default address to start RPC server with.
	DefaultRPCAddress = fmt.Sprintf("%s:%s", defaultHost, defaultRPCPort)
	// Default base of the returned short URLs.
	DefaultBaseURL = fmt.Sprintf("http://localhost:%s", defaultPort)
)

// Config represents an application configuration.
type (
	Config struct {
		// Subconfigs.
		Server    Server    `yaml:"http_server"`
		RPC       RPC       `yaml:"rpc_server"`
		Logger    Logger    `yaml:"logger"`
		Storage   Storage   `yaml:"storage"`
		Shortener Shortener `yaml:"shortener"`
		// TLSEnable determines whether the server will be started in the TLS mode.
		TLSEnabled Enabled `yaml:"enable_https" env:"ENABLE_HTTPS"`
	}
	// Config for server.
	Server struct {
		// Address to run the server.
		RunAddress *NetAddress `yaml:"server_address" env:"SERVER_ADDRESS"`
		// Base URL the short IDs are appended to.
		BaseURL string `yaml:"base_url" env:"BASE_URL"`
		// Read header timeout.
		Timeout time.Duration `yaml:"timeout" env-default:"5s"`
		// Idle timeout.
		IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
		// Shutdown timeout.
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
	}
	// Config for RPC server.
	RPC struct {
		// Enabled defines if the RPC server should be started next to HTTP.
		Enabled Enabled `yaml:"enabled" env:"ENABLE_RPC"`
		// Address to run the RPC server.
		Address *NetAddress `yaml:"address" env:"RPC_ADDRESS"`
	}
	// Config for application's logger.
	Logger struct {
		// Path to store log files. Empty path disables file logging.
		Path string `yaml:"log_path" env:"LOG_PATH"`
		// Application logging level.
		Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		// Log files details.
		MaxSizeMB  int `yaml:"max_size_mb"`
		MaxBackups int `yaml:"max_backups"`
		MaxAgeDays int `yaml:"max_age_days"`
	}
	// Config for URL storage. The first non-empty option wins
	// in the order: DSN, SQLitePath, RedisURL, FileStoragePath.
	Storage struct {
		// The data source name (DSN) for connecting to the postgres database.
		DSN string `yaml:"dsn" env:"DATABASE_DSN"`
		// Path to the SQLite database file.
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
		// Redis connection URL, e.g. redis://localhost:6379/0.
		RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
		// Path to the file storage.
		FileStoragePath string `yaml:"file_storage_path" env:"FILE_STORAGE_PATH"`
	}
	// Config for short ID allocation.
	Shortener struct {
		// Characters short IDs are drawn from.
		Alphabet string `yaml:"alphabet" env:"ID_ALPHABET"`
		// Length of short IDs.
		IDLength int `yaml:"id_length" env:"ID_LENGTH"`
		// Number of retries on short ID collision.
		MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	}
)

// Interface implementation guards.
var (
	_ flag.Value      = (*NetAddress)(nil)
	_ cleanenv.Setter = (*NetAddress)(nil)
	_ flag.Value      = (*Enabled)(nil)
	_ cleanenv.Setter = (*Enabled)(nil)
)

// NetAddress represents a network address with a host and a port.
type NetAddress string

// NewNetAddress returns a pointer to a new NetAddress with default Host and Port.
func NewNetAddress() *NetAddress {
	a := NetAddress(DefaultAddress)
	return &a
}

// NewRPCAddress returns a pointer to a new NetAddress with the default RPC port.
func NewRPCAddress() *NetAddress {
	a := NetAddress(DefaultRPCAddress)
	return &a
}

// String returns a string representation of the NetAddress in the form "host:port".
func (a *NetAddress) String() string {
	return string(*a)
}

// Set sets the host and port of the NetAddress from a string
// in the form "host:port".
func (a *NetAddress) Set(s string) error {
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")

	hp := strings.Split(s, ":")

	if len(hp) != 2 {
		return errors.New("need address in a form host:port")
	}

	if _, err := strconv.Atoi(hp[1]); err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}

	if hp[0] != "" {
		*a = NetAddress(fmt.Sprintf("%s:%s", hp[0], hp[1]))
		return nil
	}

	*a = NetAddress(fmt.Sprintf("%s:%s", defaultHost, hp[1]))
	return nil
}

// SetValue implements cleanenv value setter.
func (a *NetAddress) SetValue(s string) error {
	return a.Set(s)
}

// Enabled implements general setter for boolean values.
// Implements cleanenv value setter.
type Enabled bool

// Set sets Enabled value from string.
func (e *Enabled) Set(s string) error {
	trueValues := []string{
		"true", "1", "t", "T", "TRUE", "True",
	}
	falseValues := []string{
		"false", "0", "f", "F", "FALSE", "False",
	}
	switch {
	case slices.Contains(trueValues, s):
		*e = true
	case slices.Contains(falseValues, s):
		*e = false
	default:
		msg := fmt.Sprintf(
			"invalid value: %q; need boolean value in form: true: %q false: %q",
			s,
			strings.Join(trueValues, "\", \""),
			strings.Join(falseValues, "\", \""),
		)
		return errors.New(msg)
	}
	return nil
}

// SetValue implements cleanenv value setter.
func (e *Enabled) SetValue(s string) error {
	return e.Set(s)
}

// String returns a string representation of the Enabled value.
func (e *Enabled) String() string {
	return fmt.Sprintf("%v", *e)
}

// IsBoolFlag lets the flag be passed without a value.
func (e *Enabled) IsBoolFlag() bool {
	return true
}

// Validate reports the first invalid configuration value.
func (c *Config) Validate() error {
	if !govalidator.IsURL(c.Server.BaseURL) {
		return fmt.Errorf("invalid base url: %q", c.Server.BaseURL)
	}
	if len(c.Shortener.Alphabet) < 2 {
		return fmt.Errorf("alphabet must contain at least 2 characters: %q",
			c.Shortener.Alphabet)
	}
	if c.Shortener.IDLength <= 0 || c.Shortener.IDLength > MaxIDLength {
		return fmt.Errorf("id length must be in [1, %d]: %d",
			MaxIDLength, c.Shortener.IDLength)
	}
	if c.Shortener.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative: %d",
			c.Shortener.MaxRetries)
	}
	return nil
}

// Order of loading configuration:
// 1. Config file (YAML, JSON supported)
// 2. Flags
// 3. Environment variables

// MustLoad returns an application configuration which is populated
// from the given configuration file, environment variables and flags.
func MustLoad() *Config {
	cfg := defaults()

	// Configuration file path.
	configPath, set := os.LookupEnv("CONFIG")

	if set {
		if err := readFile(configPath, cfg); err != nil {
			log.Fatal(err)
		}
	}

	// Read given flags. If not provided use file values.
	flag.Var(cfg.Server.RunAddress, "a", "server start address in form host:port")
	flag.StringVar(&cfg.Server.BaseURL, "b", cfg.Server.BaseURL, "base url of the short links")
	flag.Var(&cfg.TLSEnabled, "s", "run the server in TLS mode")
	flag.Var(&cfg.RPC.Enabled, "r", "run the RPC server next to HTTP")
	flag.Var(cfg.RPC.Address, "g", "RPC server address in form host:port")
	flag.StringVar(&cfg.Storage.DSN, "d", cfg.Storage.DSN, "postgres data source name")
	flag.StringVar(&cfg.Storage.SQLitePath, "q", cfg.Storage.SQLitePath, "sqlite database path")
	flag.StringVar(&cfg.Storage.RedisURL, "R", cfg.Storage.RedisURL, "redis url")
	flag.StringVar(&cfg.Storage.FileStoragePath, "f", cfg.Storage.FileStoragePath, "file storage path")
	flag.StringVar(&cfg.Logger.Level, "l", cfg.Logger.Level, "logging level")
	flag.IntVar(&cfg.Shortener.IDLength, "n", cfg.Shortener.IDLength, "short id length")
	flag.Parse()

	// Read environment variables.
	if err := cleanenv.ReadEnv(cfg); err != nil {
		log.Fatalf("failed to read environment variables: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	return cfg
}

// readFile populates cfg from a YAML or JSON configuration file.
func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	// Support different file extensions.
	ext := filepath.Ext(path)
	switch ext {
	case ".yaml", ".yml":
		err = cleanenv.ParseYAML(file, cfg)
	case ".json":
		err = cleanenv.ParseJSON(file, cfg)
	default:
		return fmt.Errorf("unsupported configuration file extension: %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func defaults() *Config {
	var cfg Config
	cfg.Server.RunAddress = NewNetAddress()
	cfg.Server.BaseURL = DefaultBaseURL
	cfg.Server.Timeout = 5 * time.Second
	cfg.Server.IdleTimeout = 60 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second
	cfg.RPC.Address = NewRPCAddress()
	cfg.Logger.Path = defaultLogPath
	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = defaultMaxLogSizeMB
	cfg.Logger.MaxBackups = defaultMaxLogBackups
	cfg.Logger.MaxAgeDays = defaultMaxLogFileLifetimeDays
	cfg.Shortener.Alphabet = DefaultAlphabet
	cfg.Shortener.IDLength = DefaultIDLength
	cfg.Shortener.MaxRetries = DefaultMaxRetries
	return &cfg
}

// NewForTest returns application configuration for testing.
func NewForTest() *Config {
	cfg := defaults()
	cfg.Logger.Path = ""
	cfg.Logger.Level = "debug"
	return cfg
}
