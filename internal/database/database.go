package database

import (
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL драйвер (прод)
	_ "github.com/mattn/go-sqlite3"    // SQLite драйвер (локальная разработка и тесты)
)

// Connect открывает пул соединений к БД и ждет ее готовности.
// dbType - "postgres" или "sqlite", url - строка подключения либо путь к файлу.
func Connect(dbType, url string) (*sqlx.DB, error) {
	driver := "pgx"
	if dbType == "sqlite" {
		driver = "sqlite3"
	}

	// sqlx.Open не устанавливает соединение, а только готовит пул
	db, err := sqlx.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection (driver error): %w", err)
	}

	if dbType == "sqlite" {
		// SQLite не умеет несколько писателей одновременно
		db.SetMaxOpenConns(1)
	}

	// В docker-compose БД может подниматься дольше приложения,
	// поэтому пингуем с повторами.
	maxRetries := 10
	var pingErr error
	for i := 1; i <= maxRetries; i++ {
		pingErr = db.Ping()
		if pingErr == nil {
			return db, nil
		}
		log.Printf("DB not ready (attempt %d/%d). Retrying in 3 seconds...", i, maxRetries)
		time.Sleep(3 * time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, pingErr)
}

// CreateSchema создает таблицы, если их еще нет. Используется скриптом
// scripts/db_init и тестами на sqlite. Каталог уровней в БД не хранится -
// это фиксированная таблица в коде, в user_progress пишется только level_id.
func CreateSchema(db *sqlx.DB) error {
	idColumn := "SERIAL PRIMARY KEY"
	if db.DriverName() == "sqlite3" {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS users (
				id %s,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL
			)`, idColumn),
		`
			CREATE TABLE IF NOT EXISTS user_progress (
				user_id INTEGER NOT NULL,
				level_id INTEGER NOT NULL,
				completed BOOLEAN NOT NULL DEFAULT FALSE,
				points INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (user_id, level_id)
			)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
