package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config defines the app configuration.
type Config struct {
	Server struct {
		Port int    `yaml:"port" env:"PORT" env-default:"4000"`
		Env  string `yaml:"env" env:"ENV" env-default:"development"`
	} `yaml:"server"`
	API struct {
		BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:5000/api"`
		Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"10s"`
		RPS     float64       `yaml:"rps" env:"API_RPS" env-default:"20"`
		Burst   int           `yaml:"burst" env:"API_BURST" env-default:"40"`
	} `yaml:"api"`
	Cache struct {
		KeepUnusedFor time.Duration `yaml:"keep_unused_for" env:"CACHE_KEEP_UNUSED_FOR" env-default:"60s"`
		RefetchAfter  time.Duration `yaml:"refetch_after" env:"CACHE_REFETCH_AFTER" env-default:"0s"`
	} `yaml:"cache"`
	Pagination struct {
		Limit int `yaml:"limit" env:"PAGE_LIMIT" env-default:"10"`
	} `yaml:"pagination"`
	Limiter struct {
		RPS     float64 `yaml:"rps" env:"RPS" env-default:"4"`
		Burst   int     `yaml:"burst" env:"BURST" env-default:"8"`
		Enabled bool    `yaml:"enabled" env:"LENABLED" env-default:"true"`
	} `yaml:"limiter"`
	Metrics struct {
		Enabled bool `yaml:"enabled" env:"MENABLED" env-default:"true"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	} `yaml:"log"`
	S3 struct {
		AccessKeyID     string `yaml:"access_key_id" env:"ACCESSKEYID"`
		SecretAccessKey string `yaml:"secret_access_key" env:"SECRETACCESSKEY"`
		Region          string `yaml:"region" env:"REGION" env-default:"us-east-1"`
		Bucket          string `yaml:"bucket" env:"BUCKET"`
		Prefix          string `yaml:"prefix" env:"S3_PREFIX" env-default:"borrow-summary/"`
	} `yaml:"s3"`
}

// Decode reads the configuration from path, overlaid with environment
// variables. When path is empty or does not exist only the environment and
// defaults are used.
func Decode(path string) (Config, error) {
	var cfg Config
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
			return cfg, cfg.validate()
		case !errors.Is(err, fs.ErrNotExist):
			return Config{}, err
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read config from env: %w", err)
	}
	return cfg, cfg.validate()
}

// ExportEnabled reports whether a bucket is configured for summary exports.
func (c Config) ExportEnabled() bool {
	return c.S3.Bucket != ""
}

func (c Config) validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api base_url must be set")
	}
	if c.Pagination.Limit < 1 {
		return errors.New("pagination limit must be positive")
	}
	if c.Cache.KeepUnusedFor <= 0 {
		return errors.New("cache keep_unused_for must be positive")
	}
	return nil
}
