// Package speech прячет платформенные движки синтеза и распознавания
// речи за двумя минимальными операциями. Обе возможности опциональны:
// приложение обязано работать и без них.
package speech

import (
	"context"
	"sync"

	"finn-sprint/internal/models"
)

// Recognizer - интерфейс движка распознавания речи.
type Recognizer interface {
	// Recognize распознает ровно одну реплику из аудио данных.
	// locale - язык распознавания, например "fi-FI".
	Recognize(ctx context.Context, audio []byte, locale string) (string, error)

	// Name возвращает название движка (для логирования).
	Name() string
}

// Synthesizer - интерфейс движка синтеза речи (текст -> аудио).
type Synthesizer interface {
	Synthesize(ctx context.Context, text, locale string) ([]byte, error)
	Name() string
}

// Result - тегированный результат сессии распознавания.
// Либо Transcript заполнен и Err == nil, либо наоборот.
// Вызывающий код сверяет Err вместо прощупывания нетипизированных полей.
type Result struct {
	Transcript string `json:"transcript"`
	Err        error  `json:"-"`
}

// Adapter - адаптер речевого ввода-вывода. Нулевые движки означают,
// что соответствующая возможность на платформе отсутствует.
type Adapter struct {
	synth Synthesizer
	recog Recognizer
}

// NewAdapter собирает адаптер. И synth, и recog могут быть nil.
func NewAdapter(synth Synthesizer, recog Recognizer) *Adapter {
	return &Adapter{synth: synth, recog: recog}
}

// CanSynthesize сообщает, доступен ли синтез речи.
func (a *Adapter) CanSynthesize() bool { return a.synth != nil }

// CanRecognize сообщает, доступно ли распознавание.
func (a *Adapter) CanRecognize() bool { return a.recog != nil }

// Synthesize превращает текст в аудио (MP3). Если синтез недоступен,
// операция - тихий no-op: (nil, nil), БЕЗ ошибки в вызывающую логику.
func (a *Adapter) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	if a.synth == nil {
		return nil, nil
	}
	return a.synth.Synthesize(ctx, text, locale)
}

// Session - одна сессия распознавания. Не бесконечный поток:
// сессия выдает ровно один Result и завершается сама.
type Session struct {
	result chan Result
	cancel context.CancelFunc
	once   sync.Once
}

// StartRecognition запускает одноразовую сессию распознавания.
// Если движок распознавания отсутствует, возвращается
// models.ErrCapabilityUnavailable сразу - сессия не должна молча висеть.
func (a *Adapter) StartRecognition(ctx context.Context, audio []byte, locale string) (*Session, error) {
	if a.recog == nil {
		return nil, models.ErrCapabilityUnavailable
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		// Буфер на один результат: горутина не зависнет,
		// даже если результат никто не заберет.
		result: make(chan Result, 1),
		cancel: cancel,
	}

	go func() {
		defer cancel()
		transcript, err := a.recog.Recognize(ctx, audio, locale)
		s.deliver(Result{Transcript: transcript, Err: err})
	}()

	return s, nil
}

// Result возвращает канал с единственным результатом сессии.
// Канал закрывается после доставки.
func (s *Session) Result() <-chan Result { return s.result }

// Cancel досрочно останавливает сессию. Идемпотентен: повторный вызов
// и вызов на уже завершенной сессии безопасны. Отмененная сессия
// доставляет Result с ошибкой context.Canceled, а не транскрипт.
func (s *Session) Cancel() {
	s.cancel()
	s.deliver(Result{Err: context.Canceled})
}

// deliver кладет результат в канал ровно один раз.
func (s *Session) deliver(r Result) {
	s.once.Do(func() {
		s.result <- r
		close(s.result)
	})
}
