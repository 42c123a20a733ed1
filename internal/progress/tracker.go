package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"finn-sprint/internal/models"
)

// Tracker - единственный компонент с семантикой read-modify-write:
// он читает и пишет прогресс пользователя по уровням.
// Вся запись идет одним атомарным UPSERT по ключу (user_id, level_id),
// чтобы два одновременных сохранения (например, из двух вкладок)
// разрешались на стороне БД, а не гонкой "прочитал-посчитал-записал".
type Tracker struct {
	db *sqlx.DB
}

// NewTracker создает трекер поверх готового подключения к БД.
func NewTracker(db *sqlx.DB) *Tracker {
	return &Tracker{db: db}
}

// Load читает текущий прогресс по уровню. Если записи еще нет,
// возвращается {completed: false, points: 0} БЕЗ создания строки.
func (t *Tracker) Load(ctx context.Context, userID, levelID int) (models.ProgressRecord, error) {
	rec := models.ProgressRecord{UserID: userID, LevelID: levelID}
	err := t.db.GetContext(ctx, &rec,
		"SELECT user_id, level_id, completed, points FROM user_progress WHERE user_id = $1 AND level_id = $2",
		userID, levelID)
	if errors.Is(err, sql.ErrNoRows) {
		// Уровень еще не начат - это не ошибка
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("%w: load progress for user %d level %d: %v", models.ErrStore, userID, levelID, err)
	}
	return rec, nil
}

// MarkCompleted отмечает уровень пройденным и добавляет 10 очков.
// Каждый вызов добавляет 10 еще раз - повторное "Start Learning"
// намеренно не отличается от первого, поэтому вызывающий код должен
// дергать эту операцию не чаще раза за осмысленную сессию.
func (t *Tracker) MarkCompleted(ctx context.Context, userID, levelID int) (models.ProgressRecord, error) {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, level_id, completed, points)
		VALUES ($1, $2, TRUE, 10)
		ON CONFLICT (user_id, level_id)
		DO UPDATE SET
			completed = TRUE,
			points = user_progress.points + 10`,
		userID, levelID)
	if err != nil {
		return models.ProgressRecord{}, fmt.Errorf("%w: mark completed for user %d level %d: %v", models.ErrStore, userID, levelID, err)
	}
	return t.Load(ctx, userID, levelID)
}

// RecordReviewScore записывает результат ревью: кандидат = correct * 10,
// в БД попадает максимум из старых и новых очков. Так более слабая
// повторная попытка никогда не уменьшает сохраненный результат.
func (t *Tracker) RecordReviewScore(ctx context.Context, userID, levelID, correct, total int) (models.ProgressRecord, error) {
	if correct < 0 || total < 0 || correct > total {
		return models.ProgressRecord{}, fmt.Errorf("%w: invalid review score %d/%d", models.ErrValidation, correct, total)
	}

	candidate := correct * 10
	// CASE вместо GREATEST/MAX, потому что запрос должен работать
	// и на PostgreSQL, и на SQLite.
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO user_progress (user_id, level_id, completed, points)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (user_id, level_id)
		DO UPDATE SET
			completed = TRUE,
			points = CASE
				WHEN user_progress.points >= excluded.points THEN user_progress.points
				ELSE excluded.points
			END`,
		userID, levelID, candidate)
	if err != nil {
		return models.ProgressRecord{}, fmt.Errorf("%w: record review score for user %d level %d: %v", models.ErrStore, userID, levelID, err)
	}
	return t.Load(ctx, userID, levelID)
}
