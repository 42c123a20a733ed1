package leaderboard

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jmoiron/sqlx"

	"finn-sprint/internal/models"
)

// Board - кэшированная таблица лидеров: сумма очков по всем уровням
// на пользователя. Пересчитывается по расписанию, читается из памяти,
// чтобы каждый запрос страницы не делал агрегирующий SELECT.
type Board struct {
	db    *sqlx.DB
	limit int

	mu      sync.RWMutex
	entries []models.LeaderboardEntry

	scheduler *gocron.Scheduler
}

// NewBoard создает таблицу лидеров c верхними limit позициями.
func NewBoard(db *sqlx.DB, limit int) *Board {
	return &Board{db: db, limit: limit}
}

// Refresh пересчитывает снимок из БД.
func (b *Board) Refresh(ctx context.Context) error {
	entries := []models.LeaderboardEntry{}
	err := b.db.SelectContext(ctx, &entries, `
		SELECT u.id AS user_id, u.email, COALESCE(SUM(up.points), 0) AS total_points
		FROM users u
		JOIN user_progress up ON up.user_id = u.id
		GROUP BY u.id, u.email
		ORDER BY total_points DESC, u.id ASC
		LIMIT $1`,
		b.limit)
	if err != nil {
		return fmt.Errorf("%w: refresh leaderboard: %v", models.ErrStore, err)
	}

	b.mu.Lock()
	b.entries = entries
	b.mu.Unlock()
	return nil
}

// Top возвращает текущий снимок. До первого успешного Refresh - пустой срез.
func (b *Board) Top() []models.LeaderboardEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.LeaderboardEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// StartSchedule запускает периодический пересчет в фоне.
// Ошибка пересчета только логируется: устаревший снимок лучше,
// чем упавший сервер.
func (b *Board) StartSchedule(interval time.Duration) {
	b.scheduler = gocron.NewScheduler(time.UTC)
	b.scheduler.Every(interval).Do(func() {
		if err := b.Refresh(context.Background()); err != nil {
			log.Printf("Leaderboard refresh failed: %v", err)
		}
	})
	b.scheduler.StartAsync()
}

// Stop останавливает фоновый пересчет.
func (b *Board) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
}
