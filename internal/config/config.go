// Package config предоставляет структуры и функции для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения запуска.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	MigrationsPath  string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
	HTTPServer      `yaml:"http_server"`
	Mongo           `yaml:"mongo"`
	RedisConnection `yaml:"redis_connection"`
	JWTToken        `yaml:"jwttoken"`
	Security        `yaml:"security"`
	SMTP            `yaml:"smtp"`
	RabbitMQ        `yaml:"rabbitmq"`
	RateLimit       `yaml:"rate_limit"`
	Scheduler       `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Mongo структура для подключения к MongoDB
type Mongo struct {
	MongoURI      string        `yaml:"uri" env:"MONGO_URI" env-required:"true"`
	MongoDatabase string        `yaml:"database" env:"MONGO_DATABASE" env-default:"natours"`
	MongoTimeout  time.Duration `yaml:"timeout" env-default:"10s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis  string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	PasswordRedis string        `yaml:"password" env:"REDIS_PASSWORD"`
	UserRedis     string        `yaml:"user" env:"REDIS_USER"`
	DB            int           `yaml:"db"`
	MaxRetries    int           `yaml:"max_retries"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
	TimeoutRedis  time.Duration `yaml:"timeoutredis"`
	TourTTL       time.Duration `yaml:"tour_ttl" env-default:"5m"`
}

// JWTToken структура для работы с jwt-токеном и cookie сессии
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_EXPIRES_IN" env-default:"2160h"`
	CookieTTL    time.Duration `yaml:"cookie_ttl" env:"JWT_COOKIE_EXPIRES_IN" env-default:"2160h"`
}

// Security параметры хеширования паролей
type Security struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"12"`
}

// SMTP параметры почтового сервера
type SMTP struct {
	SMTPHost string `yaml:"host" env:"EMAIL_HOST"`
	SMTPPort string `yaml:"port" env:"EMAIL_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"EMAIL_USERNAME"`
	SMTPPass string `yaml:"password" env:"EMAIL_PASSWORD"`
	SMTPFrom string `yaml:"from" env:"EMAIL_FROM"`
}

// RabbitMQ параметры подключения к брокеру
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// RateLimit ограничение числа запросов с одного IP
type RateLimit struct {
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"5"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1h"`
}

// Scheduler расписание фоновых задач
type Scheduler struct {
	PurgeSchedule string `yaml:"purge_schedule" env:"PURGE_SCHEDULE" env-default:"@every 10m"`
}

// IsProduction сообщает, запущено ли приложение в продакшене.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProd
}

// Load читает конфиг из файла path с переопределением переменными окружения.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if path == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("config path is empty"))
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: file %s: %w", op, path, err)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH; при ошибке завершает процесс
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Mongo:\n"+
			"  Database: %s\n"+
			"  Timeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  TourTTL: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"  CookieTTL: %s\n"+
			"RateLimit: %d per %s\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.MongoDatabase,
		c.MongoTimeout,
		c.AddressRedis,
		c.DB,
		c.TourTTL,
		c.TokenTTL,
		c.CookieTTL,
		c.Requests,
		c.Window,
	)
}
