package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"logLevel"`
	Server      struct {
		Port            int           `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"readTimeout"`
		WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Database struct {
		PostgresDSN         string `mapstructure:"postgresDSN"`
		PostgresAutoMigrate bool   `mapstructure:"postgresAutoMigrate"`
	} `mapstructure:"database"`
	Auth struct {
		JWTSecret string        `mapstructure:"jwtSecret"`
		Issuer    string        `mapstructure:"issuer"`
		TokenTTL  time.Duration `mapstructure:"tokenTTL"`
	} `mapstructure:"auth"`
	Storage struct {
		MediaRoot      string `mapstructure:"mediaRoot"`
		MaxUploadBytes int64  `mapstructure:"maxUploadBytes"`
	} `mapstructure:"storage"`
	NATS struct {
		Enabled    bool               `mapstructure:"enabled"`
		URL        string             `mapstructure:"url"`
		Intake     ConsumerNatsConfig `mapstructure:"intake"`
		DLQSubject string             `mapstructure:"dlqSubject"` // Base subject for DLQ messages (e.g., v1.dlq)
		DLQ        DLQWorkerConfig    `mapstructure:"dlq"`
	} `mapstructure:"nats"`
	AI struct {
		Anthropic ProviderConfig `mapstructure:"anthropic"`
		OpenAI    ProviderConfig `mapstructure:"openai"`
	} `mapstructure:"ai"`
	Voice       VoiceConfig `mapstructure:"voice"`
	WorkerPools struct {
		Extraction WorkerPoolConfig `mapstructure:"extraction"`
	} `mapstructure:"workerPools"`
}

// ProviderConfig configures one text generation provider.
type ProviderConfig struct {
	APIKey      string        `mapstructure:"apiKey"`
	ModelID     string        `mapstructure:"modelId"`
	BaseURL     string        `mapstructure:"baseUrl"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"maxTokens"`
	Temperature float32       `mapstructure:"temperature"`
}

// VoiceConfig configures the outbound call provider.
type VoiceConfig struct {
	APIKey        string        `mapstructure:"apiKey"`
	BaseURL       string        `mapstructure:"baseUrl"`
	AssistantID   string        `mapstructure:"assistantId"`
	PhoneNumberID string        `mapstructure:"phoneNumberId"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// WorkerPoolConfig holds configuration for a bounded worker pool
type WorkerPoolConfig struct {
	PoolSize   int           `mapstructure:"poolSize"`   // Number of workers
	ExpiryTime time.Duration `mapstructure:"expiryTime"` // Idle worker expiry time
}

// ConsumerNatsConfig holds configuration specific to a NATS consumer
type ConsumerNatsConfig struct {
	MaxAge       int64         `mapstructure:"maxAge"` // max age of messages in day
	Stream       string        `mapstructure:"stream"`
	Consumer     string        `mapstructure:"consumer"` // durable name
	QueueGroup   string        `mapstructure:"group"`
	SubjectList  []string      `mapstructure:"subjectList"`
	MaxDeliver   int           `mapstructure:"maxDeliver"`   // Max delivery attempts before DLQ
	NakBaseDelay time.Duration `mapstructure:"nakBaseDelay"` // Base delay for exponential backoff NAK
	NakMaxDelay  time.Duration `mapstructure:"nakMaxDelay"`  // Maximum delay for exponential backoff NAK
}

// DLQWorkerConfig configures the worker that re-drives dead-lettered intake events.
type DLQWorkerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Workers       int           `mapstructure:"workers"`
	MaxRetries    int           `mapstructure:"maxRetries"`
	AckWait       time.Duration `mapstructure:"ackWait"`
	MaxAckPending int           `mapstructure:"maxAckPending"`
	BaseDelay     time.Duration `mapstructure:"baseDelay"`
	MaxDelay      time.Duration `mapstructure:"maxDelay"`
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("environment", "development")
	v.SetDefault("logLevel", "info")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second)
	v.SetDefault("server.shutdownTimeout", 15*time.Second)
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 2112)
	v.SetDefault("database.postgresAutoMigrate", true)

	v.SetDefault("auth.issuer", "agency-core")
	v.SetDefault("auth.tokenTTL", 24*time.Hour)

	v.SetDefault("storage.mediaRoot", "media")
	v.SetDefault("storage.maxUploadBytes", int64(20<<20))

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.dlqSubject", "v1.dlq")
	v.SetDefault("nats.intake.stream", "intake_events")
	v.SetDefault("nats.intake.consumer", "agency-core-intake")
	v.SetDefault("nats.intake.group", "agency-core")
	v.SetDefault("nats.intake.subjectList", []string{"v1.intake.>"})
	v.SetDefault("nats.intake.maxAge", 7)
	v.SetDefault("nats.intake.maxDeliver", 5)
	v.SetDefault("nats.intake.nakBaseDelay", time.Second)
	v.SetDefault("nats.intake.nakMaxDelay", 5*time.Minute)
	v.SetDefault("nats.dlq.enabled", true)
	v.SetDefault("nats.dlq.workers", 4)
	v.SetDefault("nats.dlq.maxRetries", 5)
	v.SetDefault("nats.dlq.ackWait", 2*time.Minute)
	v.SetDefault("nats.dlq.maxAckPending", 100)
	v.SetDefault("nats.dlq.baseDelay", time.Minute)
	v.SetDefault("nats.dlq.maxDelay", time.Hour)

	// Provider defaults
	v.SetDefault("ai.anthropic.modelId", "claude-3-7-sonnet-latest")
	v.SetDefault("ai.anthropic.baseUrl", "https://api.anthropic.com")
	v.SetDefault("ai.anthropic.timeout", 120*time.Second)
	v.SetDefault("ai.anthropic.maxTokens", 4000)
	v.SetDefault("ai.anthropic.temperature", 0.2)
	v.SetDefault("ai.openai.modelId", "o3-mini-2025-01-31")
	v.SetDefault("ai.openai.timeout", 120*time.Second)
	v.SetDefault("voice.baseUrl", "https://api.vapi.ai")
	v.SetDefault("voice.timeout", 30*time.Second)

	v.SetDefault("workerPools.extraction.poolSize", 4)
	v.SetDefault("workerPools.extraction.expiryTime", time.Minute)

	v.SetConfigName("default")
	v.SetConfigType("yaml")

	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("$HOME/.agency-core")
	v.AddConfigPath("/etc/agency-core")

	if err := v.ReadInConfig(); err != nil {
		// It's ok if config file is not found, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvs(v, Config{})

	// Read directly from ENV for critical values
	overrides := map[string]string{
		"POSTGRES_DSN":      "database.postgresDSN",
		"LOG_LEVEL":         "logLevel",
		"NATS_URL":          "nats.url",
		"JWT_SECRET":        "auth.jwtSecret",
		"ANTHROPIC_API_KEY": "ai.anthropic.apiKey",
		"OPENAI_API_KEY":    "ai.openai.apiKey",
		"VAPI_API_KEY":      "voice.apiKey",
	}
	for env, key := range overrides {
		if val := os.Getenv(env); val != "" {
			v.Set(key, val)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &config, nil
}

// bindEnvs recursively binds environment variables to config struct fields
func bindEnvs(v *viper.Viper, cfg interface{}, parts ...string) {
	ifv := reflect.ValueOf(cfg)
	ift := reflect.TypeOf(cfg)
	for i := 0; i < ift.NumField(); i++ {
		fieldVal := ifv.Field(i)
		fieldType := ift.Field(i)

		tag := fieldType.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		path := append(append([]string{}, parts...), tag)
		key := strings.Join(path, ".")

		if fieldType.Type.Kind() == reflect.Struct {
			bindEnvs(v, fieldVal.Interface(), path...)
			continue
		}

		_ = v.BindEnv(key)
	}
}
