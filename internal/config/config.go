package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	JWTSecret       string
	TokenExpiration time.Duration
	DefaultCurrency string
	TelegramToken   string
	TelegramChatID  int64
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "адрес и порт запуска сервиса")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.StringVar(&cfg.DefaultCurrency, "c", "USD", "валюта по умолчанию для заявок")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		cfg.RunAddress = envRunAddr
	}
	if envDBURI := os.Getenv("DATABASE_URI"); envDBURI != "" {
		cfg.DatabaseURI = envDBURI
	}
	if envCurrency := os.Getenv("DEFAULT_CURRENCY"); envCurrency != "" {
		cfg.DefaultCurrency = envCurrency
	}

	// JWT секрет
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "default-secret-change-in-production"
	}

	// Время жизни токена
	cfg.TokenExpiration = 24 * time.Hour

	// Канал уведомлений в Telegram (опционально)
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if envChatID := os.Getenv("TELEGRAM_CHAT_ID"); envChatID != "" {
		if chatID, err := strconv.ParseInt(envChatID, 10, 64); err == nil {
			cfg.TelegramChatID = chatID
		}
	}

	return cfg
}
