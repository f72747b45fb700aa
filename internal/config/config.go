package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Storage   StorageConfig   `mapstructure:"storage"`
	NumVerify NumVerifyConfig `mapstructure:"numverify"`
	LLM       LLMConfig       `mapstructure:"llm"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	URL             string        `mapstructure:"url"` // overrides the discrete fields
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool               `mapstructure:"enabled"`
	URL        string             `mapstructure:"url"`
	StreamName string             `mapstructure:"stream_name"`
	Subjects   NATSSubjectsConfig `mapstructure:"subjects"`
}

type NATSSubjectsConfig struct {
	Traced   string `mapstructure:"traced"`
	Reported string `mapstructure:"reported"`
	Analyzed string `mapstructure:"analyzed"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

type CacheConfig struct {
	TraceTTL        time.Duration `mapstructure:"trace_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// StorageConfig holds the JSON-file store locations used when no database is available
type StorageConfig struct {
	DataDir      string `mapstructure:"data_dir"`
	ReportsFile  string `mapstructure:"reports_file"`
	HistoryFile  string `mapstructure:"history_file"`
	HistoryLimit int    `mapstructure:"history_limit"`
}

type NumVerifyConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	APIURL  string        `mapstructure:"api_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLMConfig configures the optional text generator. Any OpenAI-compatible
// endpoint works, including local llama.cpp and Ollama servers.
type LLMConfig struct {
	Provider          string        `mapstructure:"provider"` // "", openai, ollama, local
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Temperature       float64       `mapstructure:"temperature"`
	TopP              float64       `mapstructure:"top_p"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	RetryAfter        time.Duration `mapstructure:"retry_after"`
	VerifyOnLoad      bool          `mapstructure:"verify_on_load"`
}

// setDefaults registers defaults so the service starts without a config file
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "phonetracer")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8000)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 60*time.Second)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "phonetracer")
	v.SetDefault("database.dbname", "phonetracer")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "phonetracer:")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.stream_name", "PHONETRACER_EVENTS")
	v.SetDefault("nats.subjects.traced", "phone.traced")
	v.SetDefault("nats.subjects.reported", "phone.reported")
	v.SetDefault("nats.subjects.analyzed", "phone.analyzed")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"*"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.time_format", time.RFC3339)

	v.SetDefault("cache.trace_ttl", 24*time.Hour)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.reports_file", "reports.json")
	v.SetDefault("storage.history_file", "history.json")
	v.SetDefault("storage.history_limit", 50)

	v.SetDefault("numverify.enabled", false)
	v.SetDefault("numverify.api_url", "http://apilayer.net/api/validate")
	v.SetDefault("numverify.timeout", 5*time.Second)

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.top_p", 0.9)
	v.SetDefault("llm.requests_per_second", 2.0)
	v.SetDefault("llm.burst", 4)
	v.SetDefault("llm.retry_after", time.Minute)
	v.SetDefault("llm.verify_on_load", true)
}

// Load reads configuration from an optional file, the .env file and
// PHONETRACER_* environment variables.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/phonetracer")
	}

	v.SetEnvPrefix("PHONETRACER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// viper doesn't auto-bind nested keys that have no default
	_ = v.BindEnv("database.password", "PHONETRACER_DATABASE_PASSWORD")
	_ = v.BindEnv("database.url", "PHONETRACER_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("redis.password", "PHONETRACER_REDIS_PASSWORD")
	_ = v.BindEnv("nats.url", "PHONETRACER_NATS_URL")
	_ = v.BindEnv("numverify.api_key", "PHONETRACER_NUMVERIFY_API_KEY", "NUMVERIFY_API_KEY")
	_ = v.BindEnv("llm.api_key", "PHONETRACER_LLM_API_KEY")
	_ = v.BindEnv("llm.base_url", "PHONETRACER_LLM_BASE_URL")
	_ = v.BindEnv("llm.model", "PHONETRACER_LLM_MODEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit path must exist; the search path is optional.
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// NumVerify is switched on implicitly when a key is present
	if cfg.NumVerify.APIKey != "" {
		cfg.NumVerify.Enabled = true
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}
