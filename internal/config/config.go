package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Hirebase  HirebaseConfig  `mapstructure:"hirebase"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Retention RetentionConfig `mapstructure:"retention"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	Path            string        `mapstructure:"path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// HirebaseConfig describes the upstream job-listing API. Endpoint and APIKey
// have no defaults: without both the fetch client refuses to run.
type HirebaseConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	PageLimit  int           `mapstructure:"page_limit"`
	SortBy     string        `mapstructure:"sort_by"`
	SortOrder  string        `mapstructure:"sort_order"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type SyncConfig struct {
	StaleAfterDays int `mapstructure:"stale_after_days"`
	PlateauPages   int `mapstructure:"plateau_pages"`
	IntervalHours  int `mapstructure:"interval_hours"`
}

type RetentionConfig struct {
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Schedule   string `mapstructure:"schedule"`
}

type CacheConfig struct {
	FacetTTL time.Duration `mapstructure:"facet_ttl"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "jobboard")
	v.SetDefault("database.name", "jobboard")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "./data/jobboard.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("hirebase.page_limit", 100)
	v.SetDefault("hirebase.sort_by", "date_posted")
	v.SetDefault("hirebase.sort_order", "desc")
	v.SetDefault("hirebase.timeout", 5*time.Minute)
	v.SetDefault("hirebase.retries", 3)
	v.SetDefault("hirebase.retry_delay", time.Second)
	v.SetDefault("sync.stale_after_days", 8)
	v.SetDefault("sync.plateau_pages", 5)
	v.SetDefault("sync.interval_hours", 6)
	v.SetDefault("retention.max_age_days", 7)
	v.SetDefault("retention.schedule", "@daily")
	v.SetDefault("cache.facet_ttl", 30*time.Minute)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("hirebase.endpoint", "JOB_API_ENDPOINT")
	v.BindEnv("hirebase.api_key", "JOB_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
