package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Engine    EngineConfig
	LLM       LLMConfig
	Retry     RetryConfig
	Transcode TranscodeConfig
	Relay     RelayConfig
	TTS       TTSConfig
	Storage   StorageConfig
	Work      WorkConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	CORSOrigins    []string
	MaxUploadMB    int
	RateLimitRPS   int
	RateLimitBurst int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LinkTTL  time.Duration
}

// EngineConfig configures the remote transcription engine.
type EngineConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	PollInterval time.Duration
	PollTimeout  time.Duration
	Timeout      time.Duration
}

type LLMConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
}

type RetryConfig struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
}

type TranscodeConfig struct {
	FFmpegPath string
	SampleRate int
	Bitrate    string
}

type RelayConfig struct {
	Strategies      []string
	YtDlpPath       string
	CobaltInstances []string
	PipedInstances  []string
	MinBytes        int64
	Timeout         time.Duration
}

type TTSConfig struct {
	PrimaryAPIKey  string
	PrimaryBaseURL string
	PrimaryModel   string
	EdgeTTSPath    string
}

type StorageConfig struct {
	Backend     string // "local" or "supabase"
	Dir         string
	URLPrefix   string
	SupabaseURL string
	SupabaseKey string
	Bucket      string
}

type WorkConfig struct {
	Dir string
}

type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// KnownStrategies lists the relay strategy names accepted in RELAY_STRATEGIES.
var KnownStrategies = []string{"ytdlp-mobile", "cobalt", "piped", "ytdlp-insecure"}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var errs []error
	intVar := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}
	durVar := func(key string, fallback time.Duration) time.Duration {
		v, err := getEnvDuration(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}

	multiplier, err := getEnvFloat("ENGINE_RETRY_MULTIPLIER", 2)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid ENGINE_RETRY_MULTIPLIER: %w", err))
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           intVar("SERVER_PORT", 8080),
			CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
			MaxUploadMB:    intVar("MAX_UPLOAD_MB", 500),
			RateLimitRPS:   intVar("RATE_LIMIT_RPS", 10),
			RateLimitBurst: intVar("RATE_LIMIT_BURST", 20),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       intVar("DB_MAX_CONNS", 20),
			MinConns:       intVar("DB_MIN_CONNS", 2),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       intVar("REDIS_DB", 0),
			LinkTTL:  durVar("LINK_CACHE_TTL", 6*time.Hour),
		},
		Engine: EngineConfig{
			APIKey:       getEnv("GEMINI_API_KEY", ""),
			BaseURL:      getEnv("ENGINE_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:        getEnv("ENGINE_MODEL", "gemini-flash-latest"),
			PollInterval: durVar("ENGINE_POLL_INTERVAL", 2*time.Second),
			PollTimeout:  durVar("ENGINE_POLL_TIMEOUT", 60*time.Second),
			Timeout:      durVar("ENGINE_HTTP_TIMEOUT", 5*time.Minute),
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "gemini"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", ""),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
		},
		Retry: RetryConfig{
			Attempts:     intVar("ENGINE_RETRY_ATTEMPTS", 3),
			InitialDelay: durVar("ENGINE_RETRY_DELAY", 5*time.Second),
			Multiplier:   multiplier,
		},
		Transcode: TranscodeConfig{
			FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),
			SampleRate: intVar("TRANSCODE_SAMPLE_RATE", 16000),
			Bitrate:    getEnv("TRANSCODE_BITRATE", "32k"),
		},
		Relay: RelayConfig{
			Strategies:      getEnvList("RELAY_STRATEGIES", []string{"ytdlp-mobile", "cobalt", "piped", "ytdlp-insecure"}),
			YtDlpPath:       getEnv("YTDLP_PATH", "yt-dlp"),
			CobaltInstances: getEnvList("COBALT_INSTANCES", []string{"https://api.cobalt.tools"}),
			PipedInstances:  getEnvList("PIPED_INSTANCES", []string{"https://pipedapi.kavin.rocks", "https://pipedapi.adminforge.de"}),
			MinBytes:        int64(intVar("RELAY_MIN_BYTES", 1000)),
			Timeout:         durVar("RELAY_TIMEOUT", 3*time.Minute),
		},
		TTS: TTSConfig{
			PrimaryAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
			PrimaryBaseURL: getEnv("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
			PrimaryModel:   getEnv("ELEVENLABS_MODEL", "eleven_multilingual_v2"),
			EdgeTTSPath:    getEnv("EDGE_TTS_PATH", "edge-tts"),
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", "local"),
			Dir:         getEnv("STATIC_DIR", "temp"),
			URLPrefix:   getEnv("STATIC_URL_PREFIX", "/temp"),
			SupabaseURL: getEnv("SUPABASE_URL", ""),
			SupabaseKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:      getEnv("STORAGE_BUCKET", "audio"),
		},
		Work: WorkConfig{
			Dir: getEnv("WORK_DIR", os.TempDir()),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var problems []string
	if c.Engine.APIKey == "" {
		problems = append(problems, "GEMINI_API_KEY is required")
	}
	if len(c.Relay.Strategies) == 0 {
		problems = append(problems, "RELAY_STRATEGIES must name at least one strategy")
	}
	for _, s := range c.Relay.Strategies {
		if !isKnownStrategy(s) {
			problems = append(problems, fmt.Sprintf("unknown relay strategy %q", s))
		}
	}
	if c.Retry.Attempts < 1 {
		problems = append(problems, "ENGINE_RETRY_ATTEMPTS must be at least 1")
	}
	if c.Retry.Multiplier <= 1 {
		problems = append(problems, "ENGINE_RETRY_MULTIPLIER must be greater than 1")
	}
	if c.Engine.PollInterval <= 0 {
		problems = append(problems, "ENGINE_POLL_INTERVAL must be positive")
	}
	switch c.Storage.Backend {
	case "local":
	case "supabase":
		if c.Storage.SupabaseURL == "" || c.Storage.SupabaseKey == "" {
			problems = append(problems, "SUPABASE_URL and SUPABASE_SERVICE_KEY are required for supabase storage")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func isKnownStrategy(name string) bool {
	for _, k := range KnownStrategies {
		if k == name {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
