package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment   string `env:"ENV" env-default:"development"`
	DBDSN         string `env:"DB_DSN" env-required:"true"`
	MigrationsDir string `env:"MIGRATIONS_DIR"` // пусто = встроенные миграции
	HTTPServer
	Booking
}

type HTTPServer struct {
	Address         string        `env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type Booking struct {
	RedisAddr              string        `env:"REDIS_ADDR"` // пусто = без межпроцессной блокировки
	ReservationLockTTL     time.Duration `env:"RESERVATION_LOCK_TTL" env-default:"10s"`
	RecurrenceHorizonWeeks int           `env:"RECURRENCE_HORIZON_WEEKS" env-default:"4"`
	MaxRecurrenceWeeks     int           `env:"MAX_RECURRENCE_WEEKS" env-default:"52"`
}

// RecurrenceHorizon горизонт развёртки бессрочных повторений
func (b Booking) RecurrenceHorizon() time.Duration {
	return weeks(b.RecurrenceHorizonWeeks)
}

// MaxRecurrenceSpan предел даты окончания повторения от первого вхождения
func (b Booking) MaxRecurrenceSpan() time.Duration {
	return weeks(b.MaxRecurrenceWeeks)
}

func weeks(n int) time.Duration {
	return time.Duration(n) * 7 * 24 * time.Hour
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Проверяем обязательные поля: cleanenv пропускает заданную, но пустую переменную
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	if cfg.RecurrenceHorizonWeeks < 1 {
		return nil, fmt.Errorf("RECURRENCE_HORIZON_WEEKS must be positive, got %d", cfg.RecurrenceHorizonWeeks)
	}

	if cfg.MaxRecurrenceWeeks < cfg.RecurrenceHorizonWeeks {
		return nil, fmt.Errorf("MAX_RECURRENCE_WEEKS (%d) must not be less than RECURRENCE_HORIZON_WEEKS (%d)",
			cfg.MaxRecurrenceWeeks, cfg.RecurrenceHorizonWeeks)
	}

	return &cfg, nil
}
