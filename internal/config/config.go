package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config конфигурация сервиса (config.toml + переменные окружения)
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Business      BusinessConfig      `toml:"business"`
	Booking       BookingConfig       `toml:"booking"`
	Scheduler     SchedulerConfig     `toml:"scheduler"`
	Notifications NotificationsConfig `toml:"notifications"`
	SMTP          SMTPConfig          `toml:"smtp"`
	PushGateway   PushGatewayConfig   `toml:"push_gateway"`
	Kafka         KafkaConfig         `toml:"kafka"`
	Redis         RedisConfig         `toml:"redis"`
	RateLimit     RateLimitConfig     `toml:"rate_limit"`
	Cron          CronConfig          `toml:"cron"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type BusinessConfig struct {
	// Timezone IANA пояс, в котором заданы смены и считается "сегодня"
	Timezone string `toml:"timezone"`
}

// Location загруженный часовой пояс салона
func (c BusinessConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

type BookingConfig struct {
	SlotStepMinutes        int `toml:"slot_step_minutes"`
	MinNoticeMinutes       int `toml:"min_notice_minutes"`
	DefaultDurationMinutes int `toml:"default_duration_minutes"`
	// ShuffleSeed 0 означает зерно от текущего времени
	ShuffleSeed uint64 `toml:"shuffle_seed"`
}

type SchedulerConfig struct {
	CompletionInterval int  `toml:"completion_interval"` // секунды
	ReminderInterval   int  `toml:"reminder_interval"`   // секунды
	Enabled            bool `toml:"enabled"`
}

type NotificationsConfig struct {
	Workers     int `toml:"workers"`
	QueueSize   int `toml:"queue_size"`
	SendTimeout int `toml:"send_timeout"` // секунды
}

type SMTPConfig struct {
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

type PushGatewayConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type KafkaConfig struct {
	Enabled bool   `toml:"enabled"`
	Brokers string `toml:"brokers"` // через запятую
	Topic   string `toml:"topic"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type RateLimitConfig struct {
	Enabled  bool   `toml:"enabled"`
	Limit    int    `toml:"limit"`
	Window   int    `toml:"window"` // секунды
	Prefix   string `toml:"prefix"`
	FailOpen bool   `toml:"fail_open"`
	// TrustedProxies CIDR балансировщиков, чей X-Forwarded-For учитывается
	TrustedProxies []string `toml:"trusted_proxies"`
}

type CronConfig struct {
	Secret string `toml:"secret"`
}

// Load читает конфигурацию из файла, затем применяет .env и переменные окружения
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	// .env необязателен
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "appointment_service"},
		Business: BusinessConfig{
			Timezone: "Europe/Madrid",
		},
		Booking: BookingConfig{
			SlotStepMinutes:        30,
			MinNoticeMinutes:       30,
			DefaultDurationMinutes: 30,
		},
		Scheduler: SchedulerConfig{
			CompletionInterval: 300,
			ReminderInterval:   3600,
			Enabled:            true,
		},
		Notifications: NotificationsConfig{
			Workers:     4,
			QueueSize:   256,
			SendTimeout: 10,
		},
		PushGateway: PushGatewayConfig{Timeout: 5},
		Kafka:       KafkaConfig{Topic: "booking-events"},
		RateLimit: RateLimitConfig{
			Limit:    20,
			Window:   60,
			Prefix:   "rl:bookings",
			FailOpen: true,
		},
	}
}

// applyEnv секреты и адреса инфраструктуры из окружения имеют приоритет над файлом
func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("DB_HOST", &c.Database.Host)
	setString("DB_USER", &c.Database.User)
	setString("DB_PASSWORD", &c.Database.Password)
	setString("DB_NAME", &c.Database.DBName)
	setString("SMTP_PASSWORD", &c.SMTP.Password)
	setString("CRON_SECRET", &c.Cron.Secret)
	setString("REDIS_ADDR", &c.Redis.Addr)
	setString("REDIS_PASSWORD", &c.Redis.Password)
	setString("KAFKA_BROKERS", &c.Kafka.Brokers)
	setString("PUSH_GATEWAY_URL", &c.PushGateway.URL)
	setString("BUSINESS_TIMEZONE", &c.Business.Timezone)

	if v, ok := os.LookupEnv("DB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid DB_PORT %q: %w", v, err)
		}
		c.Database.Port = port
	}

	return nil
}

// Validate проверяет значения, без которых сервис не может корректно считать слоты
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Business.Location(); err != nil {
		errs = append(errs, fmt.Errorf("business.timezone %q: %w", c.Business.Timezone, err))
	}
	if c.Booking.SlotStepMinutes <= 0 {
		errs = append(errs, errors.New("booking.slot_step_minutes must be positive"))
	}
	if c.Booking.MinNoticeMinutes < 0 {
		errs = append(errs, errors.New("booking.min_notice_minutes must not be negative"))
	}
	if c.Booking.DefaultDurationMinutes <= 0 {
		errs = append(errs, errors.New("booking.default_duration_minutes must be positive"))
	}
	if c.Server.HTTPPort <= 0 {
		errs = append(errs, errors.New("server.http_port must be positive"))
	}
	if c.Notifications.Workers <= 0 || c.Notifications.QueueSize <= 0 {
		errs = append(errs, errors.New("notifications.workers and queue_size must be positive"))
	}
	if c.Kafka.Enabled && c.Kafka.Brokers == "" {
		errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
	}
	if c.RateLimit.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when rate_limit is enabled"))
	}
	for _, cidr := range c.RateLimit.TrustedProxies {
		if _, err := netip.ParsePrefix(strings.TrimSpace(cidr)); err != nil {
			errs = append(errs, fmt.Errorf("rate_limit.trusted_proxies %q: %w", cidr, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
