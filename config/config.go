package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	EngineHTTP = "http"
	EngineCLI  = "cli"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Render   RenderConfig
	Session  SessionConfig
	Export   ExportConfig
	Versions VersionsConfig
	App      AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type StoreConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Key           string
	DSN           string
}

type RenderConfig struct {
	Engine  string
	URL     string
	CLIPath string
	Timeout time.Duration
	Rate    float64
	Burst   int
}

type SessionConfig struct {
	LiveMode  bool
	WatchFile string
}

type ExportConfig struct {
	ChromeDebugURL string
	Dir            string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3Prefix       string
}

type VersionsConfig struct {
	DSN              string
	AutosaveSchedule string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Store: StoreConfig{
			Backend:       strings.ToLower(getEnv("STORE_BACKEND", StoreRedis)),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			Key:           getEnv("STORE_KEY", "studio:projects"),
			DSN:           getEnv("DB_DSN", ""),
		},
		Render: RenderConfig{
			Engine:  strings.ToLower(getEnv("RENDER_ENGINE", EngineHTTP)),
			URL:     getEnv("RENDER_ENGINE_URL", "http://localhost:8000"),
			CLIPath: getEnv("RENDER_CLI_PATH", "mmdc"),
			Timeout: getEnvAsDuration("RENDER_TIMEOUT", 30*time.Second),
			Rate:    getEnvAsFloat("RENDER_RATE", 5),
			Burst:   getEnvAsInt("RENDER_BURST", 2),
		},
		Session: SessionConfig{
			LiveMode:  getEnvAsBool("LIVE_MODE", false),
			WatchFile: getEnv("EDITOR_WATCH_FILE", ""),
		},
		Export: ExportConfig{
			ChromeDebugURL: getEnv("CHROME_DEBUG_URL", ""),
			Dir:            getEnv("EXPORT_DIR", ""),
			S3Bucket:       getEnv("EXPORT_S3_BUCKET", ""),
			S3Region:       getEnv("EXPORT_S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("EXPORT_S3_ENDPOINT", ""),
			S3Prefix:       getEnv("EXPORT_S3_PREFIX", ""),
		},
		Versions: VersionsConfig{
			DSN:              getEnv("VERSIONS_DSN", ""),
			AutosaveSchedule: getEnv("AUTOSAVE_SCHEDULE", ""),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("DB_DSN is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be redis, postgres or memory, got %q", c.Store.Backend)
	}

	switch c.Render.Engine {
	case EngineHTTP:
		if c.Render.URL == "" {
			return fmt.Errorf("RENDER_ENGINE_URL is required for the http engine")
		}
	case EngineCLI:
		if c.Render.CLIPath == "" {
			return fmt.Errorf("RENDER_CLI_PATH is required for the cli engine")
		}
	default:
		return fmt.Errorf("RENDER_ENGINE must be http or cli, got %q", c.Render.Engine)
	}

	if c.Render.Rate <= 0 || c.Render.Burst <= 0 {
		return fmt.Errorf("RENDER_RATE and RENDER_BURST must be positive")
	}

	if c.Export.Dir != "" && c.Export.S3Bucket != "" {
		return fmt.Errorf("set at most one of EXPORT_DIR and EXPORT_S3_BUCKET")
	}

	if c.Versions.AutosaveSchedule != "" && c.Versions.DSN == "" {
		return fmt.Errorf("AUTOSAVE_SCHEDULE requires VERSIONS_DSN")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
