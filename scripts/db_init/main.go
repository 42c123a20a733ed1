package main

import (
	"database/sql"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"finn-sprint/internal/config"
	"finn-sprint/internal/database"
)

// Скрипт первичной настройки БД: создает таблицы users и user_progress
// и (опционально) демо-пользователя. Каталог уровней в БД не грузится -
// он живет в коде (internal/catalog).
func main() {
	log.Println("Запуск инициализации БД...")
	startTime := time.Now()

	// 1. Загружаем .env (из корня проекта)
	if err := godotenv.Load(); err != nil {
		log.Println("Нет .env файла, берем настройки из окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	// 2. Подключаемся к БД
	db, err := database.Connect(cfg.DBType, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer db.Close()
	log.Println("Успешно подключен к БД.")

	// 3. Создаем схему
	if err := database.CreateSchema(db); err != nil {
		log.Fatalf("Ошибка создания схемы: %v", err)
	}
	log.Println("Схема создана (или уже существовала).")

	// 4. Демо-пользователь, если попросили
	if os.Getenv("SEED_DEMO_USER") == "1" {
		if err := seedDemoUser(db.DB); err != nil {
			log.Fatalf("Ошибка создания демо-пользователя: %v", err)
		}
	}

	log.Printf("--- УСПЕХ! --- \nБД готова за %v.", time.Since(startTime))
}

// seedDemoUser создает пользователя demo@finn-sprint.dev, если его еще нет.
// Все в одной транзакции: либо пользователь есть целиком, либо его нет.
func seedDemoUser(db *sql.DB) error {
	const email = "demo@finn-sprint.dev"

	password := os.Getenv("DEMO_USER_PASSWORD")
	if password == "" {
		password = "demo-password"
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existingID int
	err = tx.QueryRow("SELECT id FROM users WHERE email = $1", email).Scan(&existingID)
	if err == nil {
		log.Printf("Демо-пользователь уже существует (id=%d), пропускаем.", existingID)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("INSERT INTO users (email, password_hash) VALUES ($1, $2)", email, string(hash)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("Создан демо-пользователь %s.", email)
	return nil
}
