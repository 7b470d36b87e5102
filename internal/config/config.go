package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

// EnvPrefix marks the environment variables that override file values.
// A double underscore maps to a nested key: SITEADMIN_SUPABASE__URL -> supabase.url.
const EnvPrefix = "SITEADMIN_"

const defaultConfigFile = "conf/config.yaml"

type Server struct {
	Port           string `koanf:"port" validate:"required"`
	Environment    string `koanf:"environment" validate:"oneof=development production test"`
	AllowedOrigins string `koanf:"allowed_origins"`
}

type Supabase struct {
	URL        string `koanf:"url" validate:"required,url"`
	ServiceKey string `koanf:"service_key" validate:"required"`
	JWTSecret  string `koanf:"jwt_secret" validate:"required"`
}

type Storage struct {
	Bucket      string `koanf:"bucket" validate:"required"`
	Folder      string `koanf:"folder" validate:"required"`
	MaxUploadMB int    `koanf:"max_upload_mb" validate:"gt=0"`
}

// Database is the direct Postgres connection used for migrations only.
// Runtime reads and writes go through the Supabase REST API.
type Database struct {
	URL string `koanf:"url"`
}

type Cache struct {
	CountTTL  time.Duration `koanf:"count_ttl" validate:"gt=0"`
	RedisAddr string        `koanf:"redis_addr"`
}

type Log struct {
	Mode string `koanf:"mode"`
	File string `koanf:"file"`
}

type Config struct {
	Server   Server   `koanf:"server"`
	Supabase Supabase `koanf:"supabase"`
	Storage  Storage  `koanf:"storage"`
	Database Database `koanf:"database"`
	Cache    Cache    `koanf:"cache"`
	Log      Log      `koanf:"log"`
}

// Load reads CONFIG_FILE (or conf/config.yaml), then .env, then SITEADMIN_
// environment variables, highest precedence last.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = defaultConfigFile
	}
	_ = godotenv.Load()
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit config file. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// MaxUploadBytes is the upload ceiling in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxUploadMB) << 20
}

// Origins splits the comma separated CORS allow list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func defaults() *Config {
	return &Config{
		Server: Server{
			Port:        "8080",
			Environment: "development",
		},
		Storage: Storage{
			Bucket:      "site-images",
			Folder:      "images",
			MaxUploadMB: 5,
		},
		Cache: Cache{
			CountTTL: 5 * time.Minute,
		},
		Log: Log{
			Mode: "development",
		},
	}
}
