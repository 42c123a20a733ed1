package review

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"finn-sprint/internal/models"
	"finn-sprint/internal/progress"
	"finn-sprint/internal/speech"
)

// Ошибки оркестратора ревью.
var (
	// ErrNoSession - по паре (user, level) нет активной сессии.
	ErrNoSession = errors.New("no active review session")
	// ErrNoExamples - у уровня пустой список примеров, ревьюить нечего.
	ErrNoExamples = errors.New("level has no examples to review")
)

type key struct {
	userID  int
	levelID int
}

// Manager держит активные сессии ревью: не больше одной на пару
// (user, level). Оригинальный интерфейс крутился в одном event loop,
// здесь же запросы приходят из разных горутин, поэтому реестр под мьютексом.
type Manager struct {
	mu       sync.Mutex
	sessions map[key]*Session
	recogs   map[key]*speech.Session
	tracker  *progress.Tracker
}

// NewManager создает оркестратор поверх трекера прогресса.
func NewManager(tracker *progress.Tracker) *Manager {
	return &Manager{
		sessions: make(map[key]*Session),
		recogs:   make(map[key]*speech.Session),
		tracker:  tracker,
	}
}

// State - снимок состояния сессии для ответа API.
type State struct {
	LevelID        int            `json:"level_id"`
	Index          int            `json:"index"`
	Total          int            `json:"total"`
	Score          int            `json:"score"`
	Current        models.Example `json:"current"`
	LastTranscript string         `json:"last_transcript,omitempty"`
}

func snapshot(s *Session) State {
	return State{
		LevelID:        s.levelID,
		Index:          s.currentIndex,
		Total:          s.Total(),
		Score:          s.score,
		Current:        s.Current(),
		LastTranscript: s.lastTranscript,
	}
}

// Start открывает новую сессию ревью с нулевого примера.
// Уже идущая сессия по этой паре (user, level) молча заменяется.
func (m *Manager) Start(userID int, level models.Level) (State, error) {
	if len(level.Examples) == 0 {
		return State{}, ErrNoExamples
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{userID: userID, levelID: level.ID}
	m.cancelRecognitionLocked(k)
	s := newSession(userID, level)
	m.sessions[k] = s
	return snapshot(s), nil
}

// State возвращает снимок активной сессии, ничего не меняя.
func (m *Manager) State(userID, levelID int) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[key{userID: userID, levelID: levelID}]
	if !ok {
		return State{}, ErrNoSession
	}
	return snapshot(s), nil
}

// SubmitResult - что вернуть клиенту после одной распознанной реплики.
// Reference открывается независимо от того, совпало или нет.
type SubmitResult struct {
	Correct   bool           `json:"correct"`
	Reference models.Example `json:"reference"`
	State     State          `json:"state"`
}

// Submit сверяет транскрипт с текущим примером сессии.
func (m *Manager) Submit(userID, levelID int, transcript string) (SubmitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[key{userID: userID, levelID: levelID}]
	if !ok {
		return SubmitResult{}, ErrNoSession
	}

	correct := s.submit(transcript)
	return SubmitResult{
		Correct:   correct,
		Reference: s.Current(),
		State:     snapshot(s),
	}, nil
}

// AdvanceResult - результат перехода к следующему примеру.
// Когда Finished == true, сессия уже уничтожена, счет сохранен
// в Progress (points = max(старые, score*10), completed = true).
type AdvanceResult struct {
	Finished bool                   `json:"finished"`
	State    *State                 `json:"state,omitempty"`
	Progress *models.ProgressRecord `json:"progress,omitempty"`
}

// Advance двигает сессию вперед. На последнем примере финализирует:
// записывает счет через трекер и выбрасывает сессию. Если запись
// в хранилище не удалась, сессия остается живой - вызов можно повторить.
func (m *Manager) Advance(ctx context.Context, userID, levelID int) (AdvanceResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{userID: userID, levelID: levelID}
	s, ok := m.sessions[k]
	if !ok {
		return AdvanceResult{}, ErrNoSession
	}

	if finished := s.advance(); !finished {
		st := snapshot(s)
		return AdvanceResult{State: &st}, nil
	}

	rec, err := m.tracker.RecordReviewScore(ctx, userID, levelID, s.score, s.Total())
	if err != nil {
		return AdvanceResult{}, fmt.Errorf("finalize review: %w", err)
	}

	m.cancelRecognitionLocked(k)
	delete(m.sessions, k)
	return AdvanceResult{Finished: true, Progress: &rec}, nil
}

// Abandon выбрасывает сессию без сохранения счета (пользователь
// вышел из ревью). Отсутствие сессии - не ошибка.
func (m *Manager) Abandon(userID, levelID int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{userID: userID, levelID: levelID}
	m.cancelRecognitionLocked(k)
	delete(m.sessions, k)
}

// AttachRecognition регистрирует сессию распознавания для пары
// (user, level). Одновременно может быть активна только одна:
// предыдущая, если была, сначала отменяется.
func (m *Manager) AttachRecognition(userID, levelID int, rs *speech.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{userID: userID, levelID: levelID}
	m.cancelRecognitionLocked(k)
	m.recogs[k] = rs
}

// DetachRecognition снимает завершившуюся сессию распознавания
// (без отмены - она уже доставила результат).
func (m *Manager) DetachRecognition(userID, levelID int, rs *speech.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key{userID: userID, levelID: levelID}
	if m.recogs[k] == rs {
		delete(m.recogs, k)
	}
}

func (m *Manager) cancelRecognitionLocked(k key) {
	if rs, ok := m.recogs[k]; ok {
		rs.Cancel()
		delete(m.recogs, k)
	}
}
