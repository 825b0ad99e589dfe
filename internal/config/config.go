package config

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Синки уведомлений
const (
	SinkLog      = "log"
	SinkEmail    = "email"
	SinkTelegram = "telegram"
	SinkRabbitMQ = "rabbitmq"
)

type Config struct {
	Environment string `envconfig:"ENV" default:"development"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8000"`

	// Хранилище
	StoreDriver   string `envconfig:"STORE_DRIVER" default:"postgres"`
	DBDSN         string `envconfig:"DB_DSN"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR"` // пусто = встроенные миграции
	SeedDemoData  bool   `envconfig:"SEED_DEMO_DATA" default:"false"`

	// Авторизация
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"30m"`

	// Какие группы маршрутов поднимать: auth,post,application,booking,transaction,rating
	EnabledServices []string `envconfig:"ENABLED_SERVICES"`

	// Уведомления
	NotifySinks     []string      `envconfig:"NOTIFY_SINKS" default:"log"`
	NotifyTimeout   time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"5s"`
	NotifyQueueSize int           `envconfig:"NOTIFY_QUEUE_SIZE" default:"256"`
	EmailServiceURL string        `envconfig:"EMAIL_SERVICE_URL"`
	TelegramToken   string        `envconfig:"TELEGRAM_TOKEN"`
	RabbitURL       string        `envconfig:"RABBIT_URL"`
	RabbitExchange  string        `envconfig:"RABBIT_EXCHANGE" default:"tutorhub.notifications"`

	// HTTP
	RateLimitRPS     float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst   int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
	DefaultPageLimit int     `envconfig:"DEFAULT_PAGE_LIMIT" default:"20"`
	MaxPageLimit     int     `envconfig:"MAX_PAGE_LIMIT" default:"100"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) normalize() {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.EnabledServices = cleanList(c.EnabledServices)
	c.NotifySinks = cleanList(c.NotifySinks)
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// Validate проверяет обязательные поля и связки между ними
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}

	for _, sink := range c.NotifySinks {
		switch sink {
		case SinkLog:
		case SinkEmail:
			if c.EmailServiceURL == "" {
				return fmt.Errorf("EMAIL_SERVICE_URL is required for the email sink")
			}
		case SinkTelegram:
			if c.TelegramToken == "" {
				return fmt.Errorf("TELEGRAM_TOKEN is required for the telegram sink")
			}
		case SinkRabbitMQ:
			if c.RabbitURL == "" {
				return fmt.Errorf("RABBIT_URL is required for the rabbitmq sink")
			}
		default:
			return fmt.Errorf("unknown notification sink %q", sink)
		}
	}

	if c.NotifyQueueSize <= 0 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.DefaultPageLimit <= 0 || c.MaxPageLimit < c.DefaultPageLimit {
		return fmt.Errorf("DEFAULT_PAGE_LIMIT must be positive and not exceed MAX_PAGE_LIMIT")
	}
	return nil
}

// HasSink проверяет, включён ли синк уведомлений
func (c *Config) HasSink(name string) bool {
	return slices.Contains(c.NotifySinks, name)
}
