package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StorageMinio  = "minio"
	StorageS3     = "s3"
	StorageMemory = "memory"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"databaseURL"`
	LogLevel    string `yaml:"logLevel"`
	CORSOrigin  string `yaml:"corsOrigin"`

	// Google Cloud Text-to-Speech
	GoogleCredentialsFile string `yaml:"googleCredentialsFile"`
	VoiceLanguageCode     string `yaml:"voiceLanguageCode"`
	VoiceName             string `yaml:"voiceName"`
	VoiceGender           string `yaml:"voiceGender"`

	StorageDriver         string `yaml:"storageDriver"`
	StoragePublicBaseURL  string `yaml:"storagePublicBaseURL"`
	MinioEndpoint         string `yaml:"minioEndpoint"`
	MinioAccessKey        string `yaml:"minioAccessKey"`
	MinioSecretKey        string `yaml:"minioSecretKey"`
	MinioBucket           string `yaml:"minioBucket"`
	MinioRegion           string `yaml:"minioRegion"`
	MinioUseSSL           bool   `yaml:"minioUseSSL"`
	S3Region              string `yaml:"s3Region"`
	S3AccessKey           string `yaml:"s3AccessKey"`
	S3SecretKey           string `yaml:"s3SecretKey"`
	S3Bucket              string `yaml:"s3Bucket"`
	S3Endpoint            string `yaml:"s3Endpoint"`
	StorageExistsParallel int    `yaml:"storageExistsParallel"`

	GeminiAPIKey string `yaml:"geminiAPIKey"`
	GeminiModel  string `yaml:"geminiModel"`

	RedisAddr          string   `yaml:"redisAddr"`
	RedisPassword      string   `yaml:"redisPassword"`
	RateLimitPerMinute int      `yaml:"rateLimitPerMinute"`
	TrustedProxies     []string `yaml:"trustedProxies"`

	MaxUploadBytes int64 `yaml:"maxUploadBytes"`
}

// Load reads config from path (defaults to ConfigPath), applies environment
// overrides and validates the result. A missing file is allowed when the
// environment supplies everything required.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.CORSOrigin, "CORS_ORIGIN")
	overrideString(&cfg.GoogleCredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	overrideString(&cfg.StorageDriver, "STORAGE_DRIVER")
	overrideString(&cfg.StoragePublicBaseURL, "STORAGE_PUBLIC_BASE_URL")
	overrideString(&cfg.MinioEndpoint, "MINIO_ENDPOINT")
	overrideString(&cfg.MinioAccessKey, "MINIO_ACCESS_KEY")
	overrideString(&cfg.MinioSecretKey, "MINIO_SECRET_KEY")
	overrideString(&cfg.MinioBucket, "MINIO_BUCKET")
	overrideString(&cfg.MinioRegion, "MINIO_REGION")
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.MinioUseSSL = v == "true" || v == "1"
	}
	overrideString(&cfg.S3Region, "S3_REGION")
	overrideString(&cfg.S3AccessKey, "S3_ACCESS_KEY")
	overrideString(&cfg.S3SecretKey, "S3_SECRET_KEY")
	overrideString(&cfg.S3Bucket, "S3_BUCKET")
	overrideString(&cfg.S3Endpoint, "S3_ENDPOINT")
	overrideString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	overrideString(&cfg.GeminiModel, "GEMINI_MODEL")
	overrideString(&cfg.RedisAddr, "REDIS_ADDR")
	overrideString(&cfg.RedisPassword, "REDIS_PASSWORD")
	if v := os.Getenv("SOUNDBOARD_RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("config: SOUNDBOARD_RATE_LIMIT_PER_MINUTE: %w", err)
		}
		cfg.RateLimitPerMinute = n
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("config: MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.MaxUploadBytes = n
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.TrustedProxies = splitCSV(v)
	}

	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *FileConfig) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = StorageMinio
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func validateConfig(cfg FileConfig) error {
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("config: port %q is not a number", cfg.Port)
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	switch cfg.StorageDriver {
	case StorageMinio:
		if cfg.MinioEndpoint == "" {
			return errors.New("config: minioEndpoint is required for the minio storage driver")
		}
		if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
			return errors.New("config: minioAccessKey and minioSecretKey are required for the minio storage driver")
		}
		if cfg.MinioBucket == "" {
			return errors.New("config: minioBucket is required for the minio storage driver")
		}
	case StorageS3:
		if cfg.S3Bucket == "" {
			return errors.New("config: s3Bucket is required for the s3 storage driver")
		}
		if cfg.S3Region == "" {
			return errors.New("config: s3Region is required for the s3 storage driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config: unknown storageDriver %q (want minio, s3 or memory)", cfg.StorageDriver)
	}
	if cfg.RateLimitPerMinute < 0 {
		return errors.New("config: rateLimitPerMinute must not be negative")
	}
	if cfg.RateLimitPerMinute > 0 && cfg.RedisAddr == "" {
		return errors.New("config: redisAddr is required when rateLimitPerMinute is set")
	}
	if cfg.MaxUploadBytes < 0 {
		return errors.New("config: maxUploadBytes must not be negative")
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
