package models

// Difficulty - уровень сложности учебного уровня.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Valid проверяет, что строка - одна из трех известных сложностей.
func (d Difficulty) Valid() bool {
	return d == Beginner || d == Intermediate || d == Advanced
}

// Example - одна пара "финская фраза - английский перевод".
type Example struct {
	Finnish string `json:"finnish"`
	English string `json:"english"`
}

// Level представляет один учебный уровень.
// Каталог уровней статический: id однозначно определяет
// сложность и список примеров, ничего не меняется в рантайме.
type Level struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Examples    []Example  `json:"examples"`
}

// ProgressRecord - сохраненный прогресс пользователя по уровню.
// Ключ в БД - пара (user_id, level_id). Поле points никогда
// не уменьшается при последующих сохранениях.
type ProgressRecord struct {
	UserID    int  `json:"user_id" db:"user_id"`
	LevelID   int  `json:"level_id" db:"level_id"`
	Completed bool `json:"completed" db:"completed"`
	Points    int  `json:"points" db:"points"`
}

// User - зарегистрированный пользователь.
type User struct {
	ID           int    `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
}

// LeaderboardEntry - одна строка таблицы лидеров (сумма очков по всем уровням).
type LeaderboardEntry struct {
	UserID      int    `json:"user_id" db:"user_id"`
	Email       string `json:"email" db:"email"`
	TotalPoints int    `json:"total_points" db:"total_points"`
}
