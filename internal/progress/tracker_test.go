package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"finn-sprint/internal/database"
	"finn-sprint/internal/models"
)

// newTestDB поднимает sqlite в памяти со схемой приложения.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("не удалось открыть sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.CreateSchema(db); err != nil {
		t.Fatalf("не удалось создать схему: %v", err)
	}
	return db
}

func TestLoadMissingRecord(t *testing.T) {
	tr := NewTracker(newTestDB(t))
	ctx := context.Background()

	rec, err := tr.Load(ctx, 1, 3)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Completed || rec.Points != 0 {
		t.Fatalf("для отсутствующей записи ожидалось {false, 0}, получили %+v", rec)
	}

	// Load не должен создавать строку
	var count int
	if err := tr.db.Get(&count, "SELECT COUNT(*) FROM user_progress"); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("Load создал строку: count = %d", count)
	}
}

func TestMarkCompletedTwiceAddsTwice(t *testing.T) {
	tr := NewTracker(newTestDB(t))
	ctx := context.Background()

	rec, err := tr.MarkCompleted(ctx, 1, 2)
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if !rec.Completed || rec.Points != 10 {
		t.Fatalf("после первого вызова ожидалось {true, 10}, получили %+v", rec)
	}

	// Задокументированная особенность: второй вызов добавляет еще 10
	rec, err = tr.MarkCompleted(ctx, 1, 2)
	if err != nil {
		t.Fatalf("MarkCompleted повторно: %v", err)
	}
	if !rec.Completed || rec.Points != 20 {
		t.Fatalf("после второго вызова ожидалось {true, 20}, получили %+v", rec)
	}
}

func TestRecordReviewScoreMaxMerge(t *testing.T) {
	tr := NewTracker(newTestDB(t))
	ctx := context.Background()

	rec, err := tr.RecordReviewScore(ctx, 7, 1, 2, 5)
	if err != nil {
		t.Fatalf("RecordReviewScore: %v", err)
	}
	if !rec.Completed || rec.Points != 20 {
		t.Fatalf("ожидалось {true, 20}, получили %+v", rec)
	}

	// Более слабая попытка не должна уменьшить очки
	rec, err = tr.RecordReviewScore(ctx, 7, 1, 1, 5)
	if err != nil {
		t.Fatalf("RecordReviewScore повторно: %v", err)
	}
	if rec.Points != 20 {
		t.Fatalf("слабая попытка уменьшила очки: %+v", rec)
	}

	// Более сильная - увеличивает
	rec, err = tr.RecordReviewScore(ctx, 7, 1, 4, 5)
	if err != nil {
		t.Fatalf("RecordReviewScore третий раз: %v", err)
	}
	if rec.Points != 40 {
		t.Fatalf("сильная попытка должна поднять очки до 40, получили %+v", rec)
	}
}

func TestRecordReviewScoreZeroKeepsExisting(t *testing.T) {
	tr := NewTracker(newTestDB(t))
	ctx := context.Background()

	if _, err := tr.MarkCompleted(ctx, 2, 5); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	rec, err := tr.RecordReviewScore(ctx, 2, 5, 0, 5)
	if err != nil {
		t.Fatalf("RecordReviewScore: %v", err)
	}
	if rec.Points != 10 || !rec.Completed {
		t.Fatalf("нулевое ревью не должно трогать очки: %+v", rec)
	}
}

func TestRecordReviewScoreValidation(t *testing.T) {
	tr := NewTracker(newTestDB(t))
	ctx := context.Background()

	cases := []struct{ correct, total int }{
		{-1, 5},
		{3, -1},
		{6, 5},
	}
	for _, c := range cases {
		_, err := tr.RecordReviewScore(ctx, 1, 1, c.correct, c.total)
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("RecordReviewScore(%d, %d): ожидался ErrValidation, получили %v", c.correct, c.total, err)
		}
	}
}

func TestProgressIsPerUserPerLevel(t *testing.T) {
	tr := NewTracker(newTestDB(t))
	ctx := context.Background()

	if _, err := tr.MarkCompleted(ctx, 1, 1); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	// Другой пользователь и другой уровень не затронуты
	rec, err := tr.Load(ctx, 2, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Points != 0 || rec.Completed {
		t.Fatalf("прогресс утек другому пользователю: %+v", rec)
	}

	rec, err = tr.Load(ctx, 1, 2)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Points != 0 || rec.Completed {
		t.Fatalf("прогресс утек на другой уровень: %+v", rec)
	}
}
