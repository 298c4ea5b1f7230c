package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the headline service
type Config struct {
	General    GeneralConfig    `mapstructure:"general"`
	Server     ServerConfig     `mapstructure:"server"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Generation GenerationConfig `mapstructure:"generation"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Prompts    PromptsConfig    `mapstructure:"prompts"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// Debug reports whether verbose logging is enabled.
func (g GeneralConfig) Debug() bool {
	return strings.EqualFold(strings.TrimSpace(g.LogLevel), "debug")
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (s ServerConfig) Normalize() ServerConfig {
	s.Address = strings.TrimSpace(s.Address)
	if s.Address == "" {
		s.Address = ":10001"
	}
	if s.Address[0] != ':' && !strings.Contains(s.Address, ":") {
		s.Address = ":" + s.Address
	}
	if len(s.CORSOrigins) == 0 {
		s.CORSOrigins = []string{"*"}
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = 10 * time.Second
	}
	return s
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig controls the headline cache.
type CacheConfig struct {
	Backend        string        `mapstructure:"backend"`
	Capacity       int           `mapstructure:"capacity"`
	TTL            time.Duration `mapstructure:"ttl"`
	FallbackTTL    time.Duration `mapstructure:"fallback_ttl"`
	DedupeInflight bool          `mapstructure:"dedupe_inflight"`
}

// Normalize applies defaults for unset cache values.
func (c CacheConfig) Normalize() CacheConfig {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = CacheBackendMemory
	}
	if c.Capacity <= 0 {
		c.Capacity = 1024
	}
	if c.TTL <= 0 {
		c.TTL = 24 * time.Hour
	}
	if c.FallbackTTL <= 0 {
		c.FallbackTTL = 5 * time.Minute
	}
	if c.FallbackTTL > c.TTL {
		c.FallbackTTL = c.TTL
	}
	return c
}

func (c CacheConfig) Validate() error {
	switch c.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Backend)
	}
	return nil
}

const (
	StrategyExternal = "external"
	StrategyTemplate = "template"
)

// GenerationConfig selects and tunes the headline generation strategy.
type GenerationConfig struct {
	Strategy          string        `mapstructure:"strategy"`
	Count             int           `mapstructure:"count"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Prompt            string        `mapstructure:"prompt"`
	RequireExactCount bool          `mapstructure:"require_exact_count"`
	Temperature       float64       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
}

func (g GenerationConfig) Normalize() GenerationConfig {
	g.Strategy = strings.ToLower(strings.TrimSpace(g.Strategy))
	if g.Strategy == "" {
		g.Strategy = StrategyExternal
	}
	if g.Count <= 0 {
		g.Count = 5
	}
	if g.Count > 20 {
		g.Count = 20
	}
	if g.Timeout <= 0 {
		g.Timeout = 10 * time.Second
	}
	g.Prompt = strings.TrimSpace(g.Prompt)
	if g.Prompt == "" {
		g.Prompt = "default"
	}
	if g.Temperature < 0 {
		g.Temperature = 0
	}
	if g.Temperature > 2 {
		g.Temperature = 2
	}
	if g.MaxTokens <= 0 {
		g.MaxTokens = 300
	}
	return g
}

func (g GenerationConfig) Validate() error {
	switch g.Strategy {
	case StrategyExternal, StrategyTemplate:
	default:
		return fmt.Errorf("generation.strategy must be external or template, got %q", g.Strategy)
	}
	return nil
}

// LLMConfig contains the text-generation provider configuration
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // openai, anthropic, gemini, ollama
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// Normalize resolves provider API keys from the conventional environment variables.
func (l LLMConfig) Normalize() LLMConfig {
	l.Provider = strings.ToLower(strings.TrimSpace(l.Provider))
	if l.Provider == "" {
		l.Provider = "ollama"
	}
	if strings.TrimSpace(l.APIKey) == "" {
		switch l.Provider {
		case "openai":
			l.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			l.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "gemini":
			l.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	return l
}

// PromptsConfig bounds the prompt registry.
type PromptsConfig struct {
	File       string `mapstructure:"file"`
	MaxEntries int    `mapstructure:"max_entries"`
	MaxLength  int    `mapstructure:"max_length"`
	ReloadCron string `mapstructure:"reload_cron"`
}

func (p PromptsConfig) Normalize() PromptsConfig {
	if p.MaxEntries <= 0 {
		p.MaxEntries = 32
	}
	if p.MaxLength <= 0 {
		p.MaxLength = 4000
	}
	p.File = strings.TrimSpace(p.File)
	p.ReloadCron = strings.TrimSpace(p.ReloadCron)
	return p
}

func (p PromptsConfig) Validate() error {
	if p.ReloadCron != "" && p.File == "" {
		return fmt.Errorf("prompts.reload_cron requires prompts.file")
	}
	return nil
}

// AdminConfig guards the prompt administration endpoints.
type AdminConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	PasswordHash string        `mapstructure:"password_hash"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

// Enabled reports whether admin tokens can be issued and verified.
func (a AdminConfig) Enabled() bool {
	return strings.TrimSpace(a.JWTSecret) != "" && strings.TrimSpace(a.PasswordHash) != ""
}

func (a AdminConfig) Normalize() AdminConfig {
	if a.TokenTTL <= 0 {
		a.TokenTTL = time.Hour
	}
	return a
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("redis.port required")
	}
	return nil
}

// TelemetryConfig contains monitoring settings
type TelemetryConfig struct {
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

// Normalize applies every section's defaults.
func (c *Config) Normalize() {
	c.Server = c.Server.Normalize()
	c.Cache = c.Cache.Normalize()
	c.Generation = c.Generation.Normalize()
	c.LLM = c.LLM.Normalize()
	c.Prompts = c.Prompts.Normalize()
	c.Admin = c.Admin.Normalize()
}

// Validate checks cross-section consistency.
func (c *Config) Validate() error {
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	if err := c.Prompts.Validate(); err != nil {
		return err
	}
	if c.Cache.Backend == CacheBackendRedis {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("server.address", ":10001")
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.capacity", 1024)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.fallback_ttl", "5m")
	v.SetDefault("cache.dedupe_inflight", true)
	v.SetDefault("generation.strategy", StrategyExternal)
	v.SetDefault("generation.count", 5)
	v.SetDefault("generation.timeout", "10s")
	v.SetDefault("generation.prompt", "default")
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.max_tokens", 300)
	v.SetDefault("llm.provider", "ollama")
	// empty defaults register the keys so LOCALSEO_* env vars reach Unmarshal
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("prompts.file", "")
	v.SetDefault("prompts.reload_cron", "")
	v.SetDefault("prompts.max_entries", 32)
	v.SetDefault("prompts.max_length", 4000)
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.token_ttl", "1h")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.timeout", "2s")
	v.SetDefault("telemetry.metrics_enabled", true)
}

// Load reads config from path (or the default search paths), the LOCALSEO_* environment and defaults.
// A missing config file is not an error when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if exe, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exe)
			v.AddConfigPath(exeDir)
			v.AddConfigPath(filepath.Join(exeDir, "..", "config"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("LOCALSEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads config and panics on failure
func LoadConfig(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return cfg
}
