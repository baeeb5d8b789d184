package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env           string              `mapstructure:"env" envconfig:"APP_ENV" default:"development"`
	Server        ServerConfig        `mapstructure:"http_server" envconfig:"HTTP"`
	Database      DatabaseConfig      `mapstructure:"database" envconfig:"DB"`
	Redis         RedisConfig         `mapstructure:"redis" envconfig:"REDIS"`
	Security      SecurityConfig      `mapstructure:"security" envconfig:"SECURITY" validate:"required"`
	Mail          MailConfig          `mapstructure:"mail" envconfig:"MAIL"`
	OpenAI        OpenAIConfig        `mapstructure:"openai" envconfig:"OPENAI"`
	Storage       StorageConfig       `mapstructure:"storage" envconfig:"STORAGE"`
	Observability ObservabilityConfig `mapstructure:"observability" envconfig:"OBS"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" envconfig:"PORT" default:"8080"`
	BaseURL           string        `mapstructure:"base_url" envconfig:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	OpenAPIPath       string        `mapstructure:"openapi_path" envconfig:"OPENAPI_PATH" default:"./api/openapi.yml"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"MAX_OPEN_CONNS" default:"20" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"MAX_IDLE_CONNS" default:"5" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME" default:"30m" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" envconfig:"CONN_MAX_IDLE_TIME" default:"5m" validate:"required,min=1m"`
	Source          string        `mapstructure:"source" envconfig:"SOURCE" validate:"required"`
}

// RedisConfig backs the permission cache and the mail queue. An empty Addr
// disables both; permissions are then read from the database on every
// request and mail is delivered inline.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" envconfig:"ADDR"`
	Password string        `mapstructure:"password" envconfig:"PASSWORD"`
	DB       int           `mapstructure:"db" envconfig:"DB"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" envconfig:"CACHE_TTL" default:"10m"`
}

type SecurityConfig struct {
	BCryptCost        int           `mapstructure:"bcrypt_cost" envconfig:"BCRYPT_COST" default:"10" validate:"required,min=4,max=15"`
	SessionTTL        time.Duration `mapstructure:"session_ttl" envconfig:"SESSION_TTL" default:"720h" validate:"required,min=1m"`
	SessionCookieName string        `mapstructure:"session_cookie_name" envconfig:"SESSION_COOKIE_NAME" default:"SESSION" validate:"required"`
	CookieSecure      bool          `mapstructure:"cookie_secure" envconfig:"COOKIE_SECURE"`
	ResetTokenTTL     time.Duration `mapstructure:"reset_token_ttl" envconfig:"RESET_TOKEN_TTL" default:"1h" validate:"required,min=1m"`
	LoginRateLimit    int           `mapstructure:"login_rate_limit" envconfig:"LOGIN_RATE_LIMIT" default:"10" validate:"min=0"`
}

type MailConfig struct {
	Host     string `mapstructure:"host" envconfig:"HOST"`
	Port     int    `mapstructure:"port" envconfig:"PORT" default:"465"`
	Username string `mapstructure:"username" envconfig:"USERNAME"`
	Password string `mapstructure:"password" envconfig:"PASSWORD"`
	From     string `mapstructure:"from" envconfig:"FROM" default:"no-reply@recruitment.local"`
	// TLS is implicit on 465 and STARTTLS otherwise.
	Insecure bool `mapstructure:"insecure" envconfig:"INSECURE"`
}

type OpenAIConfig struct {
	APIKey    string        `mapstructure:"api_key" envconfig:"API_KEY"`
	BaseURL   string        `mapstructure:"base_url" envconfig:"BASE_URL"`
	Model     string        `mapstructure:"model" envconfig:"MODEL" default:"gpt-3.5-turbo"`
	Timeout   time.Duration `mapstructure:"timeout" envconfig:"TIMEOUT" default:"60s"`
	MaxTokens int           `mapstructure:"max_tokens" envconfig:"MAX_TOKENS" default:"2000"`
}

type StorageConfig struct {
	// CVBackend is "database" or "s3".
	CVBackend string   `mapstructure:"cv_backend" envconfig:"CV_BACKEND" default:"database" validate:"oneof=database s3"`
	S3        S3Config `mapstructure:"s3" envconfig:"S3"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket" envconfig:"BUCKET"`
	Region          string `mapstructure:"region" envconfig:"REGION"`
	EndpointURL     string `mapstructure:"endpoint_url" envconfig:"ENDPOINT_URL"`
	AccessKeyID     string `mapstructure:"access_key_id" envconfig:"ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"secret_access_key" envconfig:"SECRET_ACCESS_KEY"`
	ForcePathStyle  bool   `mapstructure:"force_path_style" envconfig:"FORCE_PATH_STYLE"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging" envconfig:"LOG"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" envconfig:"LEVEL" default:"info" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" envconfig:"FORMAT" default:"text" validate:"omitempty,oneof=json text"`
}

// LoadConfigFromEnv reads the whole configuration from environment
// variables, e.g. HTTP_PORT, DB_SOURCE, SECURITY_SESSION_TTL.
func LoadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		errs = append(errs, err.Error())
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *StorageConfig) Validate() error {
	if c.CVBackend == "s3" && c.S3.Bucket == "" {
		return errors.New("s3.bucket is required when cv_backend is s3")
	}
	return nil
}
