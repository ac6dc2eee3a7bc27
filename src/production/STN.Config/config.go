package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// Telemetry configuration
	Telemetry TelemetryConfig `json:"telemetry"`

	// Alerting configuration
	Alerts AlertsConfig `json:"alerts"`

	// Messaging (Twilio) configuration
	Messaging MessagingConfig `json:"messaging"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// CORS configuration
	CORS CORSConfig `json:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// StorageConfig holds the durable store configuration
type StorageConfig struct {
	// Driver selects the repository implementation: "mongo" or "memory".
	Driver          string `json:"driver"`
	MongoURI        string `json:"-"`
	DBName          string `json:"db_name"`
	ReadingsColl    string `json:"readings_coll"`
	SubscribersColl string `json:"subscribers_coll"`
}

// TelemetryConfig holds staleness/aggregation tuning
type TelemetryConfig struct {
	// FreshnessThreshold is the max age before a reading is reported offline.
	FreshnessThreshold time.Duration `json:"freshness_threshold"`
	// RollingWindow is the lookback for GET /average.
	RollingWindow time.Duration `json:"rolling_window"`
}

// AlertsConfig holds threshold alerting configuration
type AlertsConfig struct {
	Cooldown             time.Duration `json:"cooldown"`
	DefaultThresholdHigh float64       `json:"default_threshold_high"`
	DefaultThresholdLow  float64       `json:"default_threshold_low"`
}

// MessagingConfig holds SMS provider credentials. Enabled is false when any
// credential is missing; the server then runs with alerting disabled.
type MessagingConfig struct {
	Enabled    bool   `json:"enabled"`
	AccountSID string `json:"-"`
	AuthToken  string `json:"-"`
	FromNumber string `json:"from_number"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout or stderr
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// IngestorConfig holds configuration for the MQTT ingestor bridge
type IngestorConfig struct {
	MQTT          MQTTConfig    `json:"mqtt"`
	Logging       LoggingConfig `json:"logging"`
	ApiServiceURL string        `json:"api_service_url"`
}

// MQTTConfig holds MQTT-related configuration
type MQTTConfig struct {
	BrokerHost  string        `json:"broker_host"`
	BrokerPort  int           `json:"broker_port"`
	BrokerUser  string        `json:"broker_user"`
	BrokerPass  string        `json:"broker_pass"`
	UseTLS      bool          `json:"use_tls"`
	CACertPath  string        `json:"ca_cert_path"`
	Topic       string        `json:"topic"`
	ClientID    string        `json:"client_id"`
	KeepAlive   time.Duration `json:"keep_alive"`
	PingTimeout time.Duration `json:"ping_timeout"`
}

// Load loads API server configuration from environment variables with
// fallback defaults. A missing store URI is fatal; missing Twilio credentials
// only disable messaging.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	if err := godotenv.Load(); err != nil {
		// Environment variables may be set directly
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Storage: StorageConfig{
			Driver:          getEnv("STORAGE_DRIVER", "mongo"),
			MongoURI:        os.Getenv("MONGODB_URI"),
			DBName:          getEnv("DB_NAME", "zero"),
			ReadingsColl:    getEnv("READINGS_COLL", "readings"),
			SubscribersColl: getEnv("SUBSCRIBERS_COLL", "subscribers"),
		},
		Telemetry: TelemetryConfig{
			FreshnessThreshold: getDuration("FRESHNESS_THRESHOLD", 5*time.Second),
			RollingWindow:      getDuration("ROLLING_WINDOW", 24*time.Hour),
		},
		Alerts: AlertsConfig{
			Cooldown:             getDuration("ALERT_COOLDOWN", time.Hour),
			DefaultThresholdHigh: getFloat("DEFAULT_THRESHOLD_HIGH", 35.0),
			DefaultThresholdLow:  getFloat("DEFAULT_THRESHOLD_LOW", 5.0),
		},
		Messaging: MessagingConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			FromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "text"),
			Output:       getEnv("LOG_OUTPUT", "stdout"),
			EnableCaller: getBool("LOG_ENABLE_CALLER", false),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders:   getStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept"}),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getInt("CORS_MAX_AGE", 43200), // 12 hours
		},
	}

	// Messaging is an explicit capability flag: all three credentials or
	// nothing.
	cfg.Messaging.Enabled = cfg.Messaging.AccountSID != "" &&
		cfg.Messaging.AuthToken != "" &&
		cfg.Messaging.FromNumber != ""

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadIngestorConfig loads configuration for the MQTT ingestor bridge
func LoadIngestorConfig() (*IngestorConfig, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	if err := godotenv.Load(); err != nil {
		// Environment variables may be set directly
	}

	cfg := &IngestorConfig{
		MQTT: MQTTConfig{
			BrokerHost:  getEnv("BROKER_HOST", "localhost"),
			BrokerPort:  getInt("BROKER_PORT", 1883),
			BrokerUser:  getEnv("BROKER_USER", ""),
			BrokerPass:  getEnv("BROKER_PASS", ""),
			UseTLS:      getBool("BROKER_TLS", false),
			CACertPath:  getEnv("BROKER_CA_FILE", ""),
			Topic:       getEnv("MQTT_TOPIC", "station/+/temperature"),
			ClientID:    getEnv("MQTT_CLIENT_ID", "zero-temp-ingestor"),
			KeepAlive:   getDuration("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout: getDuration("MQTT_PING_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "text"),
			Output:       getEnv("LOG_OUTPUT", "stdout"),
			EnableCaller: getBool("LOG_ENABLE_CALLER", false),
		},
		ApiServiceURL: getEnv("API_SERVICE_URL", "http://localhost:8080"),
	}

	if cfg.ApiServiceURL == "" {
		return nil, fmt.Errorf("API_SERVICE_URL is required")
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "mongo":
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required")
		}
	case "memory":
		// No store configuration needed; volatile, for local development.
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (expected mongo or memory)", c.Storage.Driver)
	}
	if c.Telemetry.FreshnessThreshold <= 0 {
		return fmt.Errorf("FRESHNESS_THRESHOLD must be positive")
	}
	if c.Alerts.Cooldown <= 0 {
		return fmt.Errorf("ALERT_COOLDOWN must be positive")
	}
	if c.Alerts.DefaultThresholdLow >= c.Alerts.DefaultThresholdHigh {
		return fmt.Errorf("DEFAULT_THRESHOLD_LOW must be below DEFAULT_THRESHOLD_HIGH")
	}
	if !c.Messaging.Enabled {
		log.Println("WARNING: Twilio credentials not set, SMS alerting disabled")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return intValue
}

func getFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return floatValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "1" || value == "true" || value == "TRUE" {
		return true
	}
	if value == "0" || value == "false" || value == "FALSE" {
		return false
	}
	log.Fatalf("invalid %s: %q (expected true/false or 1/0)", key, value)
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return duration
}

func getStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range splitString(value, ",") {
		if trimmed := trimString(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// Simple string splitting and trimming helpers
func splitString(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	parts := make([]string, 0)
	start := 0
	for i := 0; i < len(s); i++ {
		if i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			parts = append(parts, s[start:i])
			start = i + len(sep)
			i += len(sep) - 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func trimString(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}
