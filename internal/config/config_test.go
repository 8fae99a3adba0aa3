package config

import (
	"flag"
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Сохраняем оригинальные значения для восстановления
	originalArgs := os.Args
	originalEnv := make(map[string]string)
	envVars := []string{"RUN_ADDRESS", "DATABASE_URI", "JWT_SECRET", "DEFAULT_CURRENCY", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID"}
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
	}

	defer func() {
		os.Args = originalArgs
		for key, value := range originalEnv {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
		flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	}()

	tests := []struct {
		name         string
		args         []string
		envVars      map[string]string
		wantAddress  string
		wantDBURI    string
		wantCurrency string
		wantChatID   int64
	}{
		{
			name:         "defaults",
			args:         []string{"payouts"},
			envVars:      map[string]string{},
			wantAddress:  "localhost:8080",
			wantDBURI:    "",
			wantCurrency: "USD",
		},
		{
			name:         "flags",
			args:         []string{"payouts", "-a", ":9090", "-d", "postgres://localhost/payouts", "-c", "EUR"},
			envVars:      map[string]string{},
			wantAddress:  ":9090",
			wantDBURI:    "postgres://localhost/payouts",
			wantCurrency: "EUR",
		},
		{
			name: "env overrides flags",
			args: []string{"payouts", "-a", ":9090"},
			envVars: map[string]string{
				"RUN_ADDRESS":  ":7070",
				"DATABASE_URI": "postgres://env/payouts",
			},
			wantAddress:  ":7070",
			wantDBURI:    "postgres://env/payouts",
			wantCurrency: "USD",
		},
		{
			name: "telegram chat id parsed",
			args: []string{"payouts"},
			envVars: map[string]string{
				"TELEGRAM_TOKEN":   "123:abc",
				"TELEGRAM_CHAT_ID": "-100200300",
			},
			wantAddress:  "localhost:8080",
			wantCurrency: "USD",
			wantChatID:   -100200300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envVars {
				os.Unsetenv(key)
			}
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}
			os.Args = tt.args
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			cfg := Load()

			if cfg.RunAddress != tt.wantAddress {
				t.Errorf("RunAddress = %q, want %q", cfg.RunAddress, tt.wantAddress)
			}
			if cfg.DatabaseURI != tt.wantDBURI {
				t.Errorf("DatabaseURI = %q, want %q", cfg.DatabaseURI, tt.wantDBURI)
			}
			if cfg.DefaultCurrency != tt.wantCurrency {
				t.Errorf("DefaultCurrency = %q, want %q", cfg.DefaultCurrency, tt.wantCurrency)
			}
			if cfg.TelegramChatID != tt.wantChatID {
				t.Errorf("TelegramChatID = %d, want %d", cfg.TelegramChatID, tt.wantChatID)
			}
			if cfg.JWTSecret == "" {
				t.Error("JWTSecret must have a default value")
			}
		})
	}
}
