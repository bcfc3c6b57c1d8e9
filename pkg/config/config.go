package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Employee EmployeeConfig `mapstructure:"employee"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Requests RequestsConfig `mapstructure:"requests"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	DefaultLocale string        `mapstructure:"default_locale"`
}

type EmployeeConfig struct {
	ID string `mapstructure:"id"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

type ChatConfig struct {
	ReplyDelay     time.Duration `mapstructure:"reply_delay"`
	HistoryLimit   int           `mapstructure:"history_limit"`
	MaxSessions    int           `mapstructure:"max_sessions"`
	SessionIdleTTL time.Duration `mapstructure:"session_idle_ttl"`
}

type RequestsConfig struct {
	SubmitDelay    time.Duration `mapstructure:"submit_delay"`
	FailureRate    float64       `mapstructure:"failure_rate"`
	Seed           uint64        `mapstructure:"seed"`
	DraftRetention time.Duration `mapstructure:"draft_retention"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return DatabaseConfig{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Driver:   "postgres",
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.default_locale", "en-US")
	v.SetDefault("employee.id", "EMP001")
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "hrhub.db")
	v.SetDefault("chat.reply_delay", 1500*time.Millisecond)
	v.SetDefault("chat.history_limit", 100)
	v.SetDefault("chat.max_sessions", 1000)
	v.SetDefault("chat.session_idle_ttl", 30*time.Minute)
	v.SetDefault("requests.submit_delay", time.Second)
	v.SetDefault("requests.failure_rate", 0.1)
	v.SetDefault("requests.draft_retention", time.Hour)
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.timeout", 20*time.Second)
	v.SetDefault("telegram.token", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "hrhub")
	v.SetDefault("requests.seed", 0)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// LoadConfig reads path when it exists; every key can be overridden from
// the environment as HRHUB_<SECTION>_<KEY>. A .env file in the working
// directory is loaded first and never overrides variables already set.
func LoadConfig(path string) (*Config, error) {
	godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Enable environment variable support
	v.SetEnvPrefix("hrhub")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("database_url", "DATABASE_URL")
	v.BindEnv("telegram.token", "HRHUB_TELEGRAM_TOKEN", "TELEGRAM_TOKEN")
	v.BindEnv("openai.api_key", "HRHUB_OPENAI_API_KEY", "OPENAI_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("database_url"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database = dbConfig
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "memory", "postgres", "sqlite3":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Requests.FailureRate < 0 || c.Requests.FailureRate > 1 {
		return fmt.Errorf("requests.failure_rate must be within [0, 1], got %v", c.Requests.FailureRate)
	}
	if c.Chat.ReplyDelay < 0 || c.Requests.SubmitDelay < 0 || c.OpenAI.Timeout < 0 ||
		c.Chat.SessionIdleTTL < 0 || c.Requests.DraftRetention < 0 {
		return errors.New("delays and timeouts must not be negative")
	}
	return nil
}
