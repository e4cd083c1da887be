package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Storage       StorageConfig
	Queue         QueueConfig
	Transcription TranscriptionConfig
	Generation    GenerationConfig
	Polling       PollingConfig
	Notify        NotifyConfig
	Tracing       TracingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	StatusTTL time.Duration
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
}

// QueueConfig holds message queue configuration
type QueueConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Vhost    string
}

// TranscriptionConfig holds transcription pipeline configuration
type TranscriptionConfig struct {
	// RemoteURL selects the remote transcription service when non-empty;
	// when empty the pipeline falls back to the local whisper CLI.
	RemoteURL      string
	HealthTimeout  time.Duration
	RequestTimeout time.Duration

	WhisperPath  string
	WhisperModel string

	TempDir         string
	FFmpegPath      string
	FFprobePath     string
	MaxChunkSeconds float64
	StaleTempAge    time.Duration

	MinSegmentSeconds float64
	MaxSegmentSeconds float64
}

// GenerationConfig holds study-content generation configuration
type GenerationConfig struct {
	ServerURL          string
	RequestTimeout     time.Duration
	OllamaModel        string
	MinTranscriptChars int
}

// PollingConfig holds the client-side status polling contract
type PollingConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// NotifyConfig holds webhook notification configuration. Notifications are
// disabled when WebhookURL is empty.
type NotifyConfig struct {
	WebhookURL    string
	WebhookSecret string
	Timeout       time.Duration
}

// TracingConfig holds distributed tracing configuration
type TracingConfig struct {
	Enabled        bool
	ServiceName    string
	JaegerEndpoint string
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.readTimeout", "30s")
	viper.SetDefault("server.writeTimeout", "30s")
	viper.SetDefault("server.shutdownTimeout", "10s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "studyscribe")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxConns", 25)
	viper.SetDefault("database.minConns", 5)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.statusTTL", "30s")

	// Storage defaults
	viper.SetDefault("storage.endpoint", "localhost:9000")
	viper.SetDefault("storage.accessKeyID", "minioadmin")
	viper.SetDefault("storage.secretAccessKey", "minioadmin")
	viper.SetDefault("storage.bucketName", "media")
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("storage.useSSL", false)

	// Queue defaults
	viper.SetDefault("queue.host", "localhost")
	viper.SetDefault("queue.port", 5672)
	viper.SetDefault("queue.user", "guest")
	viper.SetDefault("queue.password", "guest")
	viper.SetDefault("queue.vhost", "/")

	// Transcription defaults
	viper.SetDefault("transcription.remoteURL", "")
	viper.SetDefault("transcription.healthTimeout", "5s")
	viper.SetDefault("transcription.requestTimeout", "10m")
	viper.SetDefault("transcription.whisperPath", "whisper")
	viper.SetDefault("transcription.whisperModel", "base")
	viper.SetDefault("transcription.tempDir", "/tmp/studyscribe")
	viper.SetDefault("transcription.ffmpegPath", "ffmpeg")
	viper.SetDefault("transcription.ffprobePath", "ffprobe")
	viper.SetDefault("transcription.maxChunkSeconds", 600)
	viper.SetDefault("transcription.staleTempAge", "24h")
	viper.SetDefault("transcription.minSegmentSeconds", 2)
	viper.SetDefault("transcription.maxSegmentSeconds", 30)

	// Generation defaults
	viper.SetDefault("generation.serverURL", "")
	viper.SetDefault("generation.requestTimeout", "2m")
	viper.SetDefault("generation.ollamaModel", "llama3")
	viper.SetDefault("generation.minTranscriptChars", 100)

	// Polling defaults
	viper.SetDefault("polling.interval", "3s")
	viper.SetDefault("polling.maxAttempts", 100)

	// Notify defaults
	viper.SetDefault("notify.webhookURL", "")
	viper.SetDefault("notify.webhookSecret", "")
	viper.SetDefault("notify.timeout", "30s")

	// Tracing defaults
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.serviceName", "studyscribe")
	viper.SetDefault("tracing.jaegerEndpoint", "http://localhost:14268/api/traces")
}
