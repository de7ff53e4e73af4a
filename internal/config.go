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
)

type Config struct {
	Server   ServerConfig   `mapstructure:"http_server"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security" validate:"required"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	Source          string        `mapstructure:"source" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
}

type SecurityConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenDuration time.Duration `mapstructure:"token_duration" validate:"required,min=1m"`
	BCryptCost    int           `mapstructure:"bcrypt_cost" validate:"required,min=4,max=15"`
}

type UploadConfig struct {
	Dir        string           `mapstructure:"dir" validate:"required_if=Storage local"`
	PublicPath string           `mapstructure:"public_path" validate:"required,startswith=/"`
	MaxSize    int64            `mapstructure:"max_size" validate:"required,min=1"`
	Storage    string           `mapstructure:"storage" validate:"required,oneof=local cloudinary"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

// RedisConfig enables login throttling when URL is set.
type RedisConfig struct {
	URL           string        `mapstructure:"url"`
	LoginAttempts int           `mapstructure:"login_attempts" validate:"omitempty,min=1"`
	LoginWindow   time.Duration `mapstructure:"login_window" validate:"omitempty,min=1s"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
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

	if err := c.Upload.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("upload config: %v", err))
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
	if strings.TrimSpace(c.AllowedOrigins) == "" {
		return []string{"*"}
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
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

func (c *UploadConfig) Validate() error {
	if c.Storage != "cloudinary" {
		return nil
	}
	cl := c.Cloudinary
	if cl.CloudName == "" || cl.APIKey == "" || cl.APISecret == "" {
		return errors.New("cloudinary storage needs cloud_name, api_key and api_secret")
	}
	return nil
}

func (c *RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// DefaultConfig is the development baseline that file and env values
// override.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              5000,
			BaseURL:           "http://localhost:5000",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
		},
		Security: SecurityConfig{
			TokenDuration: 7 * 24 * time.Hour,
			BCryptCost:    12,
		},
		Upload: UploadConfig{
			Dir:        "uploads",
			PublicPath: "/uploads",
			MaxSize:    5 << 20,
			Storage:    "local",
		},
		Redis: RedisConfig{
			LoginAttempts: 5,
			LoginWindow:   15 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfigFromEnv reads plain environment variables over DefaultConfig.
// Unparseable numbers and durations keep the default.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()

	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.BaseURL = getEnv("BASE_URL", cfg.Server.BaseURL)
	cfg.Server.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Source = getEnv("DATABASE_URL", cfg.Database.Source)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)

	cfg.Security.JWTSecret = getEnv("JWT_SECRET", cfg.Security.JWTSecret)
	cfg.Security.TokenDuration = getEnvDuration("JWT_EXPIRES_IN", cfg.Security.TokenDuration)
	cfg.Security.BCryptCost = getEnvInt("BCRYPT_COST", cfg.Security.BCryptCost)

	cfg.Upload.Dir = getEnv("UPLOAD_DIR", cfg.Upload.Dir)
	cfg.Upload.PublicPath = getEnv("UPLOAD_PUBLIC_PATH", cfg.Upload.PublicPath)
	cfg.Upload.MaxSize = int64(getEnvInt("UPLOAD_MAX_SIZE", int(cfg.Upload.MaxSize)))
	cfg.Upload.Storage = getEnv("UPLOAD_STORAGE", cfg.Upload.Storage)
	cfg.Upload.Cloudinary = CloudinaryConfig{
		CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		Folder:    getEnv("CLOUDINARY_FOLDER", "campus-fixit"),
	}

	cfg.Redis.URL = getEnv("REDIS_URL", cfg.Redis.URL)
	cfg.Redis.LoginAttempts = getEnvInt("LOGIN_MAX_ATTEMPTS", cfg.Redis.LoginAttempts)
	cfg.Redis.LoginWindow = getEnvDuration("LOGIN_WINDOW", cfg.Redis.LoginWindow)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

// ParseDuration accepts time.ParseDuration syntax plus a whole-day form
// such as "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
