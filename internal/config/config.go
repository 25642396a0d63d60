package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	Redis      RedisConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	R2         R2Config
	Storyboard StoryboardConfig
	Mock       MockConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	BodyLimit int // bytes
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	TextTimeout  time.Duration
	ImageTimeout time.Duration
}

type GeminiConfig struct {
	APIKey string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
	Issuer    string
	Audience  string
	Scope     string
}

type RateLimitConfig struct {
	SuggestPerMin     int
	PanelPerMin       int
	StoryboardPerHour int
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

// Configured reports whether enough R2 settings are present to build a client.
func (c R2Config) Configured() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != ""
}

type StoryboardConfig struct {
	WorkerConcurrency int
	PanelParallelism  int
	PanelInterval     time.Duration
	MaxRetry          int
}

type MockConfig struct {
	Providers bool
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("OPENAI_API_KEY")
	readSecret("GEMINI_API_KEY")
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.body_limit", "BODY_LIMIT")
	_ = v.BindEnv("logger.level", "LOG_LEVEL")
	_ = v.BindEnv("logger.encoding", "LOG_ENCODING")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("openai.text_timeout", "OPENAI_TEXT_TIMEOUT")
	_ = v.BindEnv("openai.image_timeout", "OPENAI_IMAGE_TIMEOUT")
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("redis.enabled", "REDIS_ENABLED")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("auth.enabled", "AUTH_ENABLED")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("auth.issuer", "AUTH_ISSUER")
	_ = v.BindEnv("auth.audience", "AUTH_AUDIENCE")
	_ = v.BindEnv("auth.scope", "AUTH_REQUIRED_SCOPE")
	_ = v.BindEnv("ratelimit.suggest_per_min", "RATELIMIT_SUGGEST_PER_MIN")
	_ = v.BindEnv("ratelimit.panel_per_min", "RATELIMIT_PANEL_PER_MIN")
	_ = v.BindEnv("ratelimit.storyboard_per_hour", "RATELIMIT_STORYBOARD_PER_HOUR")
	_ = v.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = v.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = v.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = v.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = v.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = v.BindEnv("storyboard.worker_concurrency", "STORYBOARD_WORKER_CONCURRENCY")
	_ = v.BindEnv("storyboard.panel_parallelism", "STORYBOARD_PANEL_PARALLELISM")
	_ = v.BindEnv("storyboard.panel_interval", "STORYBOARD_PANEL_INTERVAL")
	_ = v.BindEnv("storyboard.max_retry", "STORYBOARD_MAX_RETRY")
	_ = v.BindEnv("mock.providers", "MOCK_PROVIDERS")

	// Defaults
	v.SetDefault("server.port", "3002")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.body_limit", 10*1024*1024)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	// 0 leaves provider calls unbounded beyond the HTTP client defaults
	v.SetDefault("openai.text_timeout", 0)
	v.SetDefault("openai.image_timeout", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.enabled", false)

	// 0 disables the limiter for that route group
	v.SetDefault("ratelimit.suggest_per_min", 0)
	v.SetDefault("ratelimit.panel_per_min", 0)
	v.SetDefault("ratelimit.storyboard_per_hour", 0)

	v.SetDefault("storyboard.worker_concurrency", 4)
	v.SetDefault("storyboard.panel_parallelism", 1)
	v.SetDefault("storyboard.panel_interval", 2*time.Second)
	v.SetDefault("storyboard.max_retry", 3)
	v.SetDefault("mock.providers", false)

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      v.GetString("server.port"),
			Env:       v.GetString("server.env"),
			BodyLimit: v.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Level:    v.GetString("logger.level"),
			Encoding: v.GetString("logger.encoding"),
		},
		OpenAI: OpenAIConfig{
			APIKey:       v.GetString("openai.api_key"),
			BaseURL:      v.GetString("openai.base_url"),
			TextTimeout:  v.GetDuration("openai.text_timeout"),
			ImageTimeout: v.GetDuration("openai.image_timeout"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("gemini.api_key"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			Enabled:   v.GetBool("auth.enabled"),
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
			Audience:  v.GetString("auth.audience"),
			Scope:     v.GetString("auth.scope"),
		},
		RateLimit: RateLimitConfig{
			SuggestPerMin:     v.GetInt("ratelimit.suggest_per_min"),
			PanelPerMin:       v.GetInt("ratelimit.panel_per_min"),
			StoryboardPerHour: v.GetInt("ratelimit.storyboard_per_hour"),
		},
		R2: R2Config{
			AccountID:       v.GetString("r2.account_id"),
			AccessKeyID:     v.GetString("r2.access_key_id"),
			SecretAccessKey: v.GetString("r2.secret_access_key"),
			BucketName:      v.GetString("r2.bucket_name"),
			PublicURL:       strings.TrimRight(v.GetString("r2.public_url"), "/"),
		},
		Storyboard: StoryboardConfig{
			WorkerConcurrency: v.GetInt("storyboard.worker_concurrency"),
			PanelParallelism:  v.GetInt("storyboard.panel_parallelism"),
			PanelInterval:     v.GetDuration("storyboard.panel_interval"),
			MaxRetry:          v.GetInt("storyboard.max_retry"),
		},
		Mock: MockConfig{
			Providers: v.GetBool("mock.providers"),
		},
	}

	return cfg, nil
}
