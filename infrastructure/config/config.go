package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage backends the repositories can run against
const (
	BackendMemory   = "memory"
	BackendSupabase = "supabase"
	BackendDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Storage backend selection
	StorageBackend string

	// Supabase configuration
	SupabaseURL    string
	SupabaseAPIKey string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string

	// Refresh cadence
	EngagementRefreshInterval   time.Duration
	NotificationRefreshInterval time.Duration

	// Dynamic config file watched at runtime; empty disables watching
	DynamicConfigPath string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Observability
	EnableMetrics bool
	EnableTracing bool
	OTLPEndpoint  string
	TraceSample   float64

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:  getEnv("SERVER_ADDRESS", ":8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		StorageBackend: getEnv("STORAGE_BACKEND", BackendMemory),

		SupabaseURL:    getEnv("SUPABASE_URL", ""),
		SupabaseAPIKey: getEnv("SUPABASE_API_KEY", ""),

		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("DYNAMODB_TABLE", "campuspulse"),

		EngagementRefreshInterval:   getEnvDuration("ENGAGEMENT_REFRESH_INTERVAL", 30*time.Second),
		NotificationRefreshInterval: getEnvDuration("NOTIFICATION_REFRESH_INTERVAL", 60*time.Second),

		DynamicConfigPath: getEnv("DYNAMIC_CONFIG_PATH", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "campuspulse-backend"),

		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		OTLPEndpoint:  getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TraceSample:   getEnvFloat("TRACE_SAMPLE_RATE", 0.1),

		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendSupabase, BackendDynamoDB:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.StorageBackend == BackendSupabase {
		if c.SupabaseURL == "" || c.SupabaseAPIKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_API_KEY are required for the supabase backend")
		}
	}
	if c.StorageBackend == BackendDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb backend")
	}

	if c.Environment == "production" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	if c.EngagementRefreshInterval <= 0 || c.NotificationRefreshInterval <= 0 {
		return fmt.Errorf("refresh intervals must be positive")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable. Accepts Go
// duration strings ("30s") and bare millisecond counts.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
