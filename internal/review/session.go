package review

import (
	"strings"

	"finn-sprint/internal/models"
)

// Matches решает, засчитан ли распознанный транскрипт за пример.
// Правило одно: точное равенство без учета регистра. Никакого
// fuzzy-сравнения и частичных совпадений; пробелы и пунктуация
// НЕ обрезаются, так что "Hei " за "hei" не засчитывается.
func Matches(transcript, reference string) bool {
	return strings.EqualFold(transcript, reference)
}

// Session - одно прохождение ревью уровня. Живет только в памяти
// на время прохождения; в БД попадает только итоговый счет.
type Session struct {
	userID  int
	levelID int

	examples       []models.Example
	currentIndex   int
	score          int
	lastTranscript string

	// answered не дает засчитать одно и то же слово дважды:
	// счет инкрементируется максимум раз на позицию.
	answered bool
}

// newSession создает сессию на первом примере уровня.
func newSession(userID int, level models.Level) *Session {
	return &Session{
		userID:   userID,
		levelID:  level.ID,
		examples: level.Examples,
	}
}

// Current возвращает пример, который сейчас отрабатывается.
func (s *Session) Current() models.Example {
	return s.examples[s.currentIndex]
}

// Index - текущая позиция курсора, 0 <= Index < Total.
func (s *Session) Index() int { return s.currentIndex }

// Total - сколько примеров в уровне.
func (s *Session) Total() int { return len(s.examples) }

// Score - сколько произношений засчитано на данный момент.
func (s *Session) Score() int { return s.score }

// LastTranscript - последняя распознанная реплика (или пустая строка).
func (s *Session) LastTranscript() string { return s.lastTranscript }

// submit обрабатывает один распознанный транскрипт: сравнивает его
// с финским текстом текущего примера и запоминает реплику.
// Эталонный ответ открывается независимо от результата.
func (s *Session) submit(transcript string) bool {
	s.lastTranscript = transcript
	correct := Matches(transcript, s.Current().Finnish)
	if correct && !s.answered {
		s.score++
	}
	s.answered = true
	return correct
}

// advance двигает курсор на следующий пример.
// Возвращает true, когда текущий пример был последним -
// тогда сессию пора финализировать и выбросить.
func (s *Session) advance() bool {
	if s.currentIndex >= len(s.examples)-1 {
		return true
	}
	s.currentIndex++
	s.lastTranscript = ""
	s.answered = false
	return false
}
