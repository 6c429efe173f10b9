package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultAPIURL is used when neither the config file nor API_URL names an upstream.
const DefaultAPIURL = "http://localhost:5000"

type Config struct {
	APIURL         string   `toml:"api_url"`
	SessionCookie  string   `toml:"session_cookie"`
	StaleAfter     Duration `toml:"stale_after"`
	RetryCount     int      `toml:"retry_count"`
	RequestTimeout Duration `toml:"request_timeout"`
	Store          string   `toml:"store"`
	RedisAddr      string   `toml:"redis_addr"`
	ProxyListen    string   `toml:"proxy_listen"`
	ReportsOutput  string   `toml:"reports_output"`
	LogLevel       string   `toml:"log_level"`
}

// Duration lets durations be written as "5m" in the config file.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		APIURL:         DefaultAPIURL,
		StaleAfter:     Duration{5 * time.Minute},
		RetryCount:     3,
		RequestTimeout: Duration{30 * time.Second},
		Store:          "sqlite",
		RedisAddr:      "localhost:6379",
		ProxyListen:    ":3000",
		ReportsOutput:  filepath.Join(homeDir, "Documents", "constructsync"),
		LogLevel:       "info",
	}
}

func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".constructsync"), nil
}

func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func DatabasePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db", "state.sqlite"), nil
}

func LogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "constructsync.log"), nil
}

func EnsureDirectories() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(dir, "db"), 0755); err != nil {
		return err
	}

	return nil
}

// Load reads the config file (writing defaults on first run), then applies
// .env and environment overrides.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes path over the defaults, creating it when missing.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	cfg.ReportsOutput = expandPath(cfg.ReportsOutput)
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CONSTRUCTSYNC_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("CONSTRUCTSYNC_SESSION_COOKIE"); v != "" {
		cfg.SessionCookie = v
	}
	if v := os.Getenv("CONSTRUCTSYNC_RETRY_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetryCount = n
		}
	}
}

// Validate checks fields the rest of the program relies on.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.StaleAfter.Duration <= 0 {
		return fmt.Errorf("stale_after must be positive")
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("retry_count cannot be negative")
	}
	switch c.Store {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("store must be sqlite or redis, got %q", c.Store)
	}
	return nil
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
