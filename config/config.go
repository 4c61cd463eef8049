package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv        string   `yaml:"app_env"`
	Port          string   `yaml:"port"`
	PublicBaseURL string   `yaml:"public_base_url"`
	CORSOrigins   []string `yaml:"cors_origins"`
	Database      Database `yaml:"database"`
	Redis         Redis    `yaml:"redis"`
	Auth          Auth     `yaml:"auth"`
	Uploads       Uploads  `yaml:"uploads"`
	Policy        Policy   `yaml:"policy"`
}

type Database struct {
	Driver string `yaml:"driver"` // mongo | memory
	URI    string `yaml:"uri"`
	Name   string `yaml:"name"`
}

type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type Auth struct {
	JWTKey   string        `yaml:"jwt_key"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type Uploads struct {
	RatePerMinute int `yaml:"rate_per_minute"`
}

type Policy struct {
	// EnforceUpdateOwnership makes property updates by non-owners fail with
	// 403, like deletes do.
	EnforceUpdateOwnership bool `yaml:"enforce_update_ownership"`
}

// Load reads .env, then the optional YAML file named by CONFIG_FILE, then
// environment variables. Later sources win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	c := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := c.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func Defaults() Config {
	return Config{
		AppEnv:        "prod",
		Port:          "8080",
		PublicBaseURL: "http://localhost:8080",
		CORSOrigins:   []string{"*"},
		Database:      Database{Driver: "mongo", Name: "rentals"},
		Redis:         Redis{CacheTTL: 10 * time.Minute},
		Auth:          Auth{TokenTTL: 24 * time.Hour},
		Uploads:       Uploads{RatePerMinute: 30},
	}
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.AppEnv = env("APP_ENV", c.AppEnv)
	c.Port = env("PORT", c.Port)
	c.PublicBaseURL = env("PUBLIC_BASE_URL", c.PublicBaseURL)
	if origins := os.Getenv("CORS_ORIGIN"); origins != "" {
		c.CORSOrigins = strings.Split(origins, ",")
	}

	c.Database.Driver = env("DB_DRIVER", c.Database.Driver)
	c.Database.URI = env("MONGOURI", c.Database.URI)
	c.Database.Name = env("DB", c.Database.Name)

	c.Redis.Addr = env("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = env("REDIS_PASS", c.Redis.Password)
	c.Redis.DB = atoi("REDIS_DB", c.Redis.DB)
	if secs := atoi("CACHE_TTL_SECONDS", 0); secs > 0 {
		c.Redis.CacheTTL = time.Duration(secs) * time.Second
	}

	c.Auth.JWTKey = env("JWT_KEY", c.Auth.JWTKey)
	if mins := atoi("TOKEN_TTL_MINUTES", 0); mins > 0 {
		c.Auth.TokenTTL = time.Duration(mins) * time.Minute
	}

	c.Uploads.RatePerMinute = atoi("UPLOAD_RATE_PER_MINUTE", c.Uploads.RatePerMinute)

	if v := os.Getenv("ENFORCE_UPDATE_OWNERSHIP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Policy.EnforceUpdateOwnership = b
		}
	}
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "mongo":
		if c.Database.URI == "" {
			return fmt.Errorf("MONGOURI not set in environment")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.JWTKey == "" {
		return fmt.Errorf("JWT_KEY not set in environment")
	}
	return nil
}

func (c Config) MediaBaseURL() string {
	return strings.TrimSuffix(c.PublicBaseURL, "/") + "/api/v1/media"
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric setting")
	}
	return def
}
