package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Tracing     TracingConfig     `mapstructure:"tracing"`
	AI          AIConfig          `mapstructure:"ai"`
	Plan        PlanConfig        `mapstructure:"plan"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
	// 生成学习计划接口单独限流，调用大模型成本较高
	GenerateMaxRequests int `mapstructure:"generate_max_requests"`
}

// AIConfig 大模型服务配置，Providers 的顺序即调用优先级
type AIConfig struct {
	Providers []ProviderConfig `mapstructure:"providers"`
}

type ProviderConfig struct {
	Name           string  `mapstructure:"name"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	APIKey         string  `mapstructure:"api_key"`
	APIKeyEnv      string  `mapstructure:"api_key_env"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxAttempts    int     `mapstructure:"max_attempts"`
	RetryDelayMs   int     `mapstructure:"retry_delay_ms"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	ResponseFormat string  `mapstructure:"response_format"` // json_object 或留空
	Disabled       bool    `mapstructure:"disabled"`
}

const (
	DefaultProviderTimeout = 120 * time.Second
	DefaultMaxAttempts     = 2
	DefaultRetryDelay      = 2 * time.Second
	DefaultMaxTokens       = 8000
	DefaultTemperature     = 0.7
)

// Timeout 单次请求超时，未配置时为 120 秒
func (p ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return DefaultProviderTimeout
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func (p ProviderConfig) Attempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

func (p ProviderConfig) RetryDelay() time.Duration {
	if p.RetryDelayMs <= 0 {
		return DefaultRetryDelay
	}
	return time.Duration(p.RetryDelayMs) * time.Millisecond
}

// EnabledProviders 按配置顺序返回启用的服务商
func (c AIConfig) EnabledProviders() []ProviderConfig {
	out := make([]ProviderConfig, 0, len(c.Providers))
	for _, p := range c.Providers {
		if !p.Disabled && p.BaseURL != "" {
			out = append(out, p)
		}
	}
	return out
}

type PlanConfig struct {
	DefaultDailyMinutes int `mapstructure:"default_daily_minutes"`
	MaterialOutlineSize int `mapstructure:"material_outline_size"` // 写入提示词的资料条目上限
}

type DiagnosticsConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Prefix          string `mapstructure:"prefix"`
	RedisList       string `mapstructure:"redis_list"`
	RedisMaxEntries int64  `mapstructure:"redis_max_entries"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("STUDY_PLAN")
	v.AutomaticEnv()

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Storage / OSS
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Diagnostics
	v.BindEnv("diagnostics.enabled", "DIAGNOSTICS_ENABLED")

	v.SetDefault("server.port", "8080")
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("plan.default_daily_minutes", 120)
	v.SetDefault("plan.material_outline_size", 80)
	v.SetDefault("diagnostics.enabled", true)
	v.SetDefault("diagnostics.prefix", "ai_logs")
	v.SetDefault("diagnostics.redis_list", "study_plan:ai_diagnostics")
	v.SetDefault("diagnostics.redis_max_entries", 200)
	v.SetDefault("rate_limit.generate_max_requests", 10)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// Validate 校验服务商配置，名称重复会导致指标和诊断记录无法区分
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.AI.Providers))
	for i, p := range c.AI.Providers {
		if p.Name == "" {
			return fmt.Errorf("ai provider %d: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("ai provider %q configured more than once", p.Name)
		}
		seen[p.Name] = true
		if p.MaxAttempts < 0 || p.RetryDelayMs < 0 || p.TimeoutSeconds < 0 {
			return fmt.Errorf("ai provider %q: timeout, attempts and retry delay must be non-negative", p.Name)
		}
	}
	return nil
}
