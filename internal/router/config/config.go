package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	PostgresDriver = "postgres"
	MemoryDriver   = "memory"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn  string `mapstructure:"POSTGRES_CONN"`
	PostgresUser  string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass  string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost  string `mapstructure:"POSTGRES_HOST"`
	PostgresPort  string `mapstructure:"POSTGRES_PORT"`
	PostgresDB    string `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL  string `mapstructure:"MIGRATION_URL"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	MemorySeed    string `mapstructure:"MEMORY_SEED_PATH"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	AcceptLockTTL time.Duration `mapstructure:"ACCEPT_LOCK_TTL"`

	RabbitMQURL    string        `mapstructure:"RABBITMQ_URL"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":    "0.0.0.0:8080",
	"POSTGRES_CONN":     "",
	"POSTGRES_USERNAME": "",
	"POSTGRES_PASSWORD": "",
	"POSTGRES_HOST":     "",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_DATABASE": "",
	"MIGRATION_URL":     "file://migrations",
	"STORAGE_DRIVER":    PostgresDriver,
	"MEMORY_SEED_PATH":  "",
	"REDIS_ADDR":        "",
	"REDIS_PASSWORD":    "",
	"REDIS_DB":          0,
	"ACCEPT_LOCK_TTL":   "10s",
	"RABBITMQ_URL":      "",
	"JWT_SECRET":        "",
	"REQUEST_TIMEOUT":   "5s",
}

// LoadConfig загружает конфигурацию из файла app.env. Переменные окружения
// имеют приоритет над файлом, а сам файл необязателен.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}
	if err = v.Unmarshal(&cfg); err != nil {
		return
	}
	err = cfg.Validate()
	return
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	switch c.StorageDriver {
	case PostgresDriver:
		if c.PostgresConn == "" {
			return fmt.Errorf("POSTGRES_CONN must be set for the %s storage driver", PostgresDriver)
		}
	case MemoryDriver:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q, must be %q or %q", c.StorageDriver, PostgresDriver, MemoryDriver)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.AcceptLockTTL <= 0 {
		return fmt.Errorf("ACCEPT_LOCK_TTL must be positive")
	}
	return nil
}
