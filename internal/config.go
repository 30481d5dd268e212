package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Permissions   PermissionsConfig   `mapstructure:"permissions"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Client        ClientConfig        `mapstructure:"client"`
	Workspace     WorkspaceConfig     `mapstructure:"workspace"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	OpenAPIPath       string        `mapstructure:"openapi_path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source" validate:"required"`
}

type SecurityConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m,max=24h"`
	BCryptCost           int           `mapstructure:"bcrypt_cost" validate:"required,min=4,max=15"`
	DefaultAdminUsername string        `mapstructure:"default_admin_username" validate:"required"`
	DefaultAdminPassword string        `mapstructure:"default_admin_password" validate:"required,min=8"`
	LoginRateLimit       float64       `mapstructure:"login_rate_limit" validate:"min=0"`
	LoginRateBurst       int           `mapstructure:"login_rate_burst" validate:"min=0"`
}

type PermissionsConfig struct {
	// Model is "stored" (role defaults plus per-user grants) or "role_table" (role defaults only).
	Model string `mapstructure:"model" validate:"omitempty,oneof=stored role_table"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

// ClientConfig configures the REST client used by the stock command and the workspace.
type ClientConfig struct {
	BaseURL  string        `mapstructure:"base_url" validate:"omitempty,url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheDir string        `mapstructure:"cache_dir"`
}

type WorkspaceConfig struct {
	InactivityTimeout time.Duration `mapstructure:"inactivity_timeout"`
	Locale            string        `mapstructure:"locale" validate:"omitempty,oneof=en de"`
}

// ----------------- DEFAULTS -----------------

func (c *Config) ApplyDefaults() {
	if c.Permissions.Model == "" {
		c.Permissions.Model = "stored"
	}
	if c.Server.OpenAPIPath == "" {
		c.Server.OpenAPIPath = "./api/openapi.yml"
	}
	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = "/metrics"
	}
	if c.Security.LoginRateLimit == 0 {
		c.Security.LoginRateLimit = 1
	}
	if c.Security.LoginRateBurst == 0 {
		c.Security.LoginRateBurst = 5
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = 15 * time.Second
	}
	if c.Client.CacheDir == "" {
		c.Client.CacheDir = ".warehouse"
	}
	if c.Workspace.InactivityTimeout == 0 {
		c.Workspace.InactivityTimeout = 30 * time.Minute
	}
	if c.Workspace.Locale == "" {
		c.Workspace.Locale = "en"
	}
}

// ----------------- ENV LOADING -----------------

// LoadConfigFromEnv builds the config for container deployments. A .env file in the
// working directory is loaded first when present; real environment variables win.
func LoadConfigFromEnv() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			OpenAPIPath:       getEnv("OPENAPI_PATH", "./api/openapi.yml"),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
		},
		Security: SecurityConfig{
			JWTSecret:            getEnv("JWT_SECRET", ""),
			AccessTokenDuration:  getEnvAsDuration("ACCESS_TOKEN_DURATION", 8*time.Hour),
			BCryptCost:           getEnvAsInt("BCRYPT_COST", 12),
			DefaultAdminUsername: getEnv("DEFAULT_ADMIN_USERNAME", "admin"),
			DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
			LoginRateLimit:       getEnvAsFloat("LOGIN_RATE_LIMIT", 1),
			LoginRateBurst:       getEnvAsInt("LOGIN_RATE_BURST", 5),
		},
		Permissions: PermissionsConfig{
			Model: getEnv("PERMISSION_MODEL", "stored"),
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: getEnv("METRICS_ENABLED", "true") == "true",
				Path:    getEnv("METRICS_PATH", "/metrics"),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
		Client: ClientConfig{
			BaseURL:  getEnv("CLIENT_BASE_URL", "http://localhost:8080"),
			Username: getEnv("CLIENT_USERNAME", ""),
			Password: getEnv("CLIENT_PASSWORD", ""),
			Timeout:  getEnvAsDuration("CLIENT_TIMEOUT", 15*time.Second),
			CacheDir: getEnv("CLIENT_CACHE_DIR", ".warehouse"),
		},
		Workspace: WorkspaceConfig{
			InactivityTimeout: getEnvAsDuration("INACTIVITY_TIMEOUT", 30*time.Minute),
			Locale:            getEnv("LOCALE", "en"),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

var configValidator = validator.New()

func (c *Config) Validate() error {
	var errs []string

	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
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

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

// ValidateClient checks only the sections the stock command needs.
func (c *Config) ValidateClient() error {
	if c.Client.BaseURL == "" {
		return errors.New("client.base_url is required")
	}
	if err := configValidator.Struct(c.Client); err != nil {
		return fmt.Errorf("client config: %w", err)
	}
	return nil
}
