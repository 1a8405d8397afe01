package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ValidatorHeuristic = "heuristic"
	ValidatorGoCV      = "gocv"
)

type Config struct {
	TelegramToken string
	Server        ServerConfig
	Scan          ScanConfig
	Log           LogConfig
}

type ServerConfig struct {
	Host string
	Port string
}

// Addr адрес для http.Server
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type ScanConfig struct {
	MaxUploadSize  int64
	Delay          time.Duration
	Validator      string
	PreviewMaxSide uint
}

type LogConfig struct {
	Level string
}

// Load собирает конфигурацию из .env, переменных окружения и значений по умолчанию.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("SERVER_HOST", "localhost")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SCAN_MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	v.SetDefault("SCAN_DELAY", "2s")
	v.SetDefault("SCAN_VALIDATOR", ValidatorHeuristic)
	v.SetDefault("PREVIEW_MAX_SIDE", 256)
	v.SetDefault("LOG_LEVEL", "info")

	v.AutomaticEnv()

	cfg := &Config{
		TelegramToken: v.GetString("TELEGRAM_TOKEN"),
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetString("SERVER_PORT"),
		},
		Scan: ScanConfig{
			MaxUploadSize:  v.GetInt64("SCAN_MAX_UPLOAD_SIZE"),
			Delay:          v.GetDuration("SCAN_DELAY"),
			Validator:      v.GetString("SCAN_VALIDATOR"),
			PreviewMaxSide: v.GetUint("PREVIEW_MAX_SIDE"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет значения, которые нельзя исправить молча.
func (c *Config) Validate() error {
	if c.Scan.MaxUploadSize <= 0 {
		return fmt.Errorf("SCAN_MAX_UPLOAD_SIZE must be positive, got %d", c.Scan.MaxUploadSize)
	}
	if c.Scan.Delay < 0 {
		return fmt.Errorf("SCAN_DELAY must not be negative, got %s", c.Scan.Delay)
	}
	switch c.Scan.Validator {
	case ValidatorHeuristic, ValidatorGoCV:
	default:
		return fmt.Errorf("unknown SCAN_VALIDATOR %q", c.Scan.Validator)
	}
	return nil
}
