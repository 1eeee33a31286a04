package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logger"
)

// Config is built entirely from environment variables (a .env file is
// loaded first when present). The Azure endpoint/key variables are required;
// everything else has a default.
type Config struct {
	Port            int
	ModelsDir       string
	UploadMaxBytes  int64
	RateLimitWindow time.Duration
	SessionTTL      time.Duration
	SessionSweep    string
	EmbedCacheSize  int
	EmbedCacheTTL   time.Duration
	RequestTimeout  time.Duration

	OpenAI    OpenAIConfig
	Search    SearchConfig
	Embedding EmbeddingConfig
	FileStore FileStoreConfig
	Log       logger.LogConfig
}

// OpenAIConfig points at the chat-completions deployment.
type OpenAIConfig struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
}

// SearchConfig points at the vector search index.
type SearchConfig struct {
	Endpoint   string
	APIKey     string
	Index      string
	APIVersion string
}

// EmbeddingConfig points at the embeddings deployment. The endpoint is the
// full request URL, as in the original deployment.
type EmbeddingConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
}

// FileStoreConfig selects where original uploads are archived. An empty
// Type disables archival.
type FileStoreConfig struct {
	Type string
	Dir  string
	S3   S3Config
}

type S3Config struct {
	Endpoint  string
	SecretID  string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// FromEnv reads the whole configuration from the environment. Every missing
// required variable is collected and reported in a single error so an
// operator fixes the deployment in one pass.
func FromEnv() (*Config, error) {
	var missing []string
	required := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		Port:            getEnvInt("RARA_PORT", 8080),
		ModelsDir:       getEnv("RARA_MODELS_DIR", "models"),
		UploadMaxBytes:  int64(getEnvInt("RARA_UPLOAD_MAX_MB", 20)) * 1024 * 1024,
		RateLimitWindow: getEnvDuration("RARA_RATE_LIMIT_WINDOW", 2*time.Second),
		SessionTTL:      getEnvDuration("RARA_SESSION_TTL", 2*time.Hour),
		SessionSweep:    getEnv("RARA_SESSION_SWEEP_SPEC", "*/10 * * * *"),
		EmbedCacheSize:  getEnvInt("RARA_EMBED_CACHE_SIZE", 4096),
		EmbedCacheTTL:   getEnvDuration("RARA_EMBED_CACHE_TTL", 2*time.Hour),
		RequestTimeout:  getEnvDuration("RARA_REQUEST_TIMEOUT", 90*time.Second),
		OpenAI: OpenAIConfig{
			Endpoint:   required("AZURE_OPENAI_ENDPOINT"),
			APIKey:     required("AZURE_OPENAI_API_KEY"),
			APIVersion: required("AZURE_OPENAI_API_VERSION"),
			Deployment: getEnv("AZURE_DEPLOYMENT_NAME", "gpt-4"),
		},
		Search: SearchConfig{
			Endpoint:   required("AZURE_SEARCH_ENDPOINT"),
			APIKey:     required("AZURE_SEARCH_KEY"),
			Index:      required("AZURE_SEARCH_INDEX"),
			APIVersion: getEnv("AZURE_SEARCH_API_VERSION", "2023-07-01-Preview"),
		},
		Embedding: EmbeddingConfig{
			Endpoint:   required("AZURE_EMBEDDING_ENDPOINT"),
			APIKey:     required("AZURE_EMBEDDING_API_KEY"),
			Deployment: getEnv("AZURE_EMBEDDING_DEPLOYMENT", "text-embedding-ada-002"),
		},
		FileStore: FileStoreConfig{
			Type: getEnv("RARA_FILE_STORE", ""),
			Dir:  getEnv("RARA_FILE_STORE_DIR", "uploads"),
			S3: S3Config{
				Endpoint:  getEnv("RARA_S3_ENDPOINT", ""),
				SecretID:  getEnv("RARA_S3_SECRET_ID", ""),
				SecretKey: getEnv("RARA_S3_SECRET_KEY", ""),
				Bucket:    getEnv("RARA_S3_BUCKET", ""),
				Region:    getEnv("RARA_S3_REGION", ""),
				Prefix:    getEnv("RARA_S3_PREFIX", ""),
				UseSSL:    getEnvBool("RARA_S3_USE_SSL", true),
			},
		},
		Log: logger.LogConfig{
			File:      getEnv("RARA_LOG_FILE", ""),
			Level:     getEnv("RARA_LOG_LEVEL", "info"),
			FileCount: uint64(getEnvInt("RARA_LOG_FILE_COUNT", 5)),
			FileSize:  uint64(getEnvInt("RARA_LOG_FILE_SIZE_MB", 50)),
			KeepDays:  uint32(getEnvInt("RARA_LOG_KEEP_DAYS", 7)),
			Console:   getEnvBool("RARA_LOG_CONSOLE", true),
		},
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
