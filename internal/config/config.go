package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config - вся конфигурация приложения в одном месте.
// Никаких глобальных переменных: структура собирается один раз
// в main и передается компонентам явно.
type Config struct {
	// DBType - "postgres" (прод) или "sqlite" (локальная разработка).
	DBType string
	// DatabaseURL - строка подключения pgx либо путь к файлу sqlite.
	DatabaseURL string
	// JWTSecret - ключ подписи токенов. Обязателен, в коде не хранится.
	JWTSecret []byte
	// Port - адрес HTTP-сервера, например ":8080".
	Port string
	// LeaderboardRefresh - период пересчета таблицы лидеров.
	LeaderboardRefresh time.Duration
	// StaticDir - папка со статикой (landing.html, index.html, js/css).
	StaticDir string
}

// Load читает конфигурацию из переменных окружения.
// .env (если есть) подгружается в main через godotenv ДО вызова Load.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if len(secret) < 32 {
		return nil, errors.New("JWT_SECRET environment variable is required (min 32 bytes)")
	}

	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "postgres"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	refresh := 5 * time.Minute
	if v := os.Getenv("LEADERBOARD_REFRESH_MINUTES"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil || mins <= 0 {
			return nil, errors.New("LEADERBOARD_REFRESH_MINUTES must be a positive integer")
		}
		refresh = time.Duration(mins) * time.Minute
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web/static"
	}

	return &Config{
		DBType:             dbType,
		DatabaseURL:        dbURL,
		JWTSecret:          []byte(secret),
		Port:               port,
		LeaderboardRefresh: refresh,
		StaticDir:          staticDir,
	}, nil
}
