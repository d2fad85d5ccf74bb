// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Cheertaboi/coupon-board/internal/catalog"
)

const envPrefix = "COUPON_BOARD_"

type Config struct {
	Server struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	Board struct {
		CopyReset  time.Duration `yaml:"copy_reset"`
		SessionTTL time.Duration `yaml:"session_ttl"`
	} `yaml:"board"`

	Storefront struct {
		URL string `yaml:"url"`
	} `yaml:"storefront"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 15 * time.Second
	cfg.Server.IdleTimeout = 60 * time.Second
	cfg.Board.CopyReset = 2 * time.Second
	cfg.Board.SessionTTL = 30 * time.Minute
	cfg.Storefront.URL = catalog.DefaultStorefrontURL
	cfg.Log.Level = "info"
	return cfg
}

// Load builds the config from defaults, the optional YAML file at path,
// a .env file in the working directory, and COUPON_BOARD_* variables,
// in that order of precedence (last wins).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "ADDR"); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := lookup(envPrefix + "COPY_RESET"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sCOPY_RESET: %w", envPrefix, err)
		}
		cfg.Board.CopyReset = d
	}
	if v, ok := lookup(envPrefix + "SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSESSION_TTL: %w", envPrefix, err)
		}
		cfg.Board.SessionTTL = d
	}
	if v, ok := lookup(envPrefix + "STOREFRONT_URL"); ok && v != "" {
		cfg.Storefront.URL = v
	}
	if v, ok := lookup(envPrefix + "LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Board.CopyReset <= 0 {
		errs = append(errs, fmt.Errorf("board.copy_reset must be positive, got %s", c.Board.CopyReset))
	}
	if c.Board.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("board.session_ttl must be positive, got %s", c.Board.SessionTTL))
	}
	u, err := url.Parse(c.Storefront.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("storefront.url must be an absolute http(s) URL, got %q", c.Storefront.URL))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}
