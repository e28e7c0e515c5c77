package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT,overwrite"`
		Mode string `yaml:"mode" env:"SERVER_MODE,overwrite"`
	} `yaml:"server"`

	App struct {
		// URL is the public base URL used in emailed links.
		URL  string `yaml:"url" env:"APP_URL,overwrite"`
		Name string `yaml:"name" env:"APP_NAME,overwrite"`
	} `yaml:"app"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST,overwrite"`
		Port            string `yaml:"port" env:"DB_PORT,overwrite"`
		User            string `yaml:"user" env:"DB_USER,overwrite"`
		Password        string `yaml:"password" env:"DB_PASSWORD,overwrite"`
		DBName          string `yaml:"dbname" env:"DB_NAME,overwrite"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE,overwrite"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS,overwrite"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS,overwrite"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME,overwrite"`
		AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE,overwrite"`
	} `yaml:"database"`

	JWT struct {
		Secret          string `yaml:"secret" env:"JWT_SECRET,overwrite"`
		SessionDuration string `yaml:"session_duration" env:"JWT_SESSION_DURATION,overwrite"`
		Issuer          string `yaml:"issuer" env:"JWT_ISSUER,overwrite"`
	} `yaml:"jwt"`

	Session struct {
		CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME,overwrite"`
		Secure     bool   `yaml:"secure" env:"SESSION_COOKIE_SECURE,overwrite"`
		Domain     string `yaml:"domain" env:"SESSION_COOKIE_DOMAIN,overwrite"`
	} `yaml:"session"`

	Verification struct {
		TokenTTL      string `yaml:"token_ttl" env:"VERIFICATION_TOKEN_TTL,overwrite"`
		AuthCodeTTL   string `yaml:"auth_code_ttl" env:"AUTH_CODE_TTL,overwrite"`
		MaxUploadSize int64  `yaml:"max_upload_size" env:"VERIFICATION_MAX_UPLOAD_SIZE,overwrite"`
		Bucket        string `yaml:"bucket" env:"VERIFICATION_BUCKET,overwrite"`
	} `yaml:"verification"`

	Email struct {
		// Driver is one of "smtp", "kafka" or "log".
		Driver   string `yaml:"driver" env:"EMAIL_DRIVER,overwrite"`
		From     string `yaml:"from" env:"EMAIL_FROM,overwrite"`
		FromName string `yaml:"from_name" env:"EMAIL_FROM_NAME,overwrite"`
		SMTP     struct {
			Host     string `yaml:"host" env:"SMTP_HOST,overwrite"`
			Port     int    `yaml:"port" env:"SMTP_PORT,overwrite"`
			Username string `yaml:"username" env:"SMTP_USERNAME,overwrite"`
			Password string `yaml:"password" env:"SMTP_PASSWORD,overwrite"`
			UseTLS   bool   `yaml:"use_tls" env:"SMTP_USE_TLS,overwrite"`
		} `yaml:"smtp"`
		Kafka struct {
			Brokers  string `yaml:"brokers" env:"KAFKA_BROKERS,overwrite"`
			Topic    string `yaml:"topic" env:"KAFKA_EMAIL_TOPIC,overwrite"`
			GroupID  string `yaml:"group_id" env:"KAFKA_EMAIL_GROUP_ID,overwrite"`
			Username string `yaml:"username" env:"KAFKA_USERNAME,overwrite"`
			Password string `yaml:"password" env:"KAFKA_PASSWORD,overwrite"`
		} `yaml:"kafka"`
	} `yaml:"email"`

	Storage struct {
		// Driver is one of "local", "s3" or "cloudinary".
		Driver    string `yaml:"driver" env:"STORAGE_DRIVER,overwrite"`
		LocalPath string `yaml:"local_path" env:"STORAGE_LOCAL_PATH,overwrite"`
		S3        struct {
			Region          string `yaml:"region" env:"S3_REGION,overwrite"`
			Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT,overwrite"`
			AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID,overwrite"`
			SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY,overwrite"`
			UsePathStyle    bool   `yaml:"use_path_style" env:"S3_USE_PATH_STYLE,overwrite"`
		} `yaml:"s3"`
		Cloudinary struct {
			URL string `yaml:"url" env:"CLOUDINARY_URL,overwrite"`
		} `yaml:"cloudinary"`
	} `yaml:"storage"`

	Redis struct {
		URL string `yaml:"url" env:"REDIS_URL,overwrite"`
	} `yaml:"redis"`

	RateLimit struct {
		RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM,overwrite"`
		Burst             int `yaml:"burst" env:"RATE_LIMIT_BURST,overwrite"`
	} `yaml:"rate_limit"`

	Telemetry struct {
		OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT,overwrite"`
		ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME,overwrite"`
	} `yaml:"telemetry"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL,overwrite"`
		Format string `yaml:"format" env:"LOG_FORMAT,overwrite"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, a .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.App.URL = "http://localhost:8080"
	config.App.Name = "CareerNest"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "careernest"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.AutoMigrate = true

	config.JWT.SessionDuration = "168h"
	config.JWT.Issuer = "careernest.app"

	config.Session.CookieName = "careernest_session"

	config.Verification.TokenTTL = "1h"
	config.Verification.AuthCodeTTL = "15m"
	config.Verification.MaxUploadSize = 5 << 20
	config.Verification.Bucket = "id-proofs"

	config.Email.Driver = "log"
	config.Email.From = "no-reply@careernest.app"
	config.Email.FromName = "CareerNest"
	config.Email.SMTP.Port = 587
	config.Email.Kafka.Topic = "careernest.email"
	config.Email.Kafka.GroupID = "careernest-mailer"

	config.Storage.Driver = "local"
	config.Storage.LocalPath = "./uploads"
	config.Storage.S3.Region = "us-east-1"

	config.RateLimit.RequestsPerMinute = 20
	config.RateLimit.Burst = 5

	config.Telemetry.ServiceName = "careernest-api"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if config.IsProduction() && len(config.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 bytes in production")
	}

	if _, err := url.ParseRequestURI(config.App.URL); err != nil {
		return fmt.Errorf("invalid app url %q: %w", config.App.URL, err)
	}

	for name, value := range map[string]string{
		"JWT session duration":    config.JWT.SessionDuration,
		"verification token ttl":  config.Verification.TokenTTL,
		"auth code ttl":           config.Verification.AuthCodeTTL,
		"connection max lifetime": config.Database.ConnMaxLifetime,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch config.Email.Driver {
	case "smtp":
		if config.Email.SMTP.Host == "" {
			return fmt.Errorf("smtp host is required for the smtp email driver")
		}
	case "kafka":
		if config.Email.Kafka.Brokers == "" || config.Email.Kafka.Topic == "" {
			return fmt.Errorf("kafka brokers and topic are required for the kafka email driver")
		}
	case "log":
	default:
		return fmt.Errorf("unknown email driver %q", config.Email.Driver)
	}

	switch config.Storage.Driver {
	case "local":
		if config.Storage.LocalPath == "" {
			return fmt.Errorf("local storage path is required")
		}
	case "s3":
		if config.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
	case "cloudinary":
		if config.Storage.Cloudinary.URL == "" {
			return fmt.Errorf("cloudinary url is required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.RateLimit.RequestsPerMinute <= 0 || config.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// KafkaBrokers splits the comma separated broker list
func (c *Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.Email.Kafka.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     c.Database.DBName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}
