package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"finn-sprint/internal/catalog"
	"finn-sprint/internal/leaderboard"
	"finn-sprint/internal/models"
	"finn-sprint/internal/progress"
	"finn-sprint/internal/review"
	"finn-sprint/internal/speech"
)

// defaultLocale - язык озвучки и распознавания по умолчанию.
const defaultLocale = "fi-FI"

// ApiHandler хранит все зависимости хэндлеров. Собирается один раз
// в main и передается явно - никакого глобального состояния.
type ApiHandler struct {
	DB        *sqlx.DB
	Tracker   *progress.Tracker
	Reviews   *review.Manager
	Speech    *speech.Adapter
	Board     *leaderboard.Board
	JWTSecret []byte
}

// NewApiHandler создает обработчик API.
func NewApiHandler(db *sqlx.DB, tracker *progress.Tracker, reviews *review.Manager, sp *speech.Adapter, board *leaderboard.Board, jwtSecret []byte) *ApiHandler {
	return &ApiHandler{
		DB:        db,
		Tracker:   tracker,
		Reviews:   reviews,
		Speech:    sp,
		Board:     board,
		JWTSecret: jwtSecret,
	}
}

// Credentials - структура для JSON-запросов регистрации/входа.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Claims - структура для данных внутри JWT-токена.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// validateCredentials отсекает заведомо плохой ввод ДО похода в БД.
func validateCredentials(creds Credentials) string {
	if strings.TrimSpace(creds.Email) == "" {
		return "Email is required"
	}
	if !strings.Contains(creds.Email, "@") {
		return "Invalid email address"
	}
	if len(creds.Password) < 6 {
		return "Password must be at least 6 characters"
	}
	return ""
}

// RegisterUser регистрирует нового пользователя.
func (h *ApiHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if msg := validateCredentials(creds); msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	// Хэшируем пароль
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	_, err = h.DB.ExecContext(r.Context(),
		"INSERT INTO users (email, password_hash) VALUES ($1, $2)",
		creds.Email, string(hashedPassword))
	if err != nil {
		// На users.email стоит UNIQUE, так что конфликт = дубликат
		respondWithError(w, http.StatusConflict, "Email already exists")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// LoginUser проверяет пароль и выдает JWT-токен.
func (h *ApiHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if msg := validateCredentials(creds); msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	var user models.User
	err := h.DB.GetContext(r.Context(), &user,
		"SELECT id, email, password_hash FROM users WHERE email = $1", creds.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Одно и то же сообщение для "нет такого" и "пароль не тот"
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		} else {
			respondWithError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	// Успех! Токен "живет" 3 дня
	expirationTime := time.Now().Add(72 * time.Hour)
	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTSecret)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create token")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"token": tokenString})
}

// GetLevels отдает уровни каталога. С параметром ?difficulty=
// возвращается только одна сложность (в порядке каталога),
// без параметра - весь каталог.
func (h *ApiHandler) GetLevels(w http.ResponseWriter, r *http.Request) {
	d := r.URL.Query().Get("difficulty")
	if d == "" {
		respondWithJSON(w, http.StatusOK, catalog.All())
		return
	}

	difficulty := models.Difficulty(d)
	if !difficulty.Valid() {
		respondWithError(w, http.StatusBadRequest, "Unknown difficulty")
		return
	}
	respondWithJSON(w, http.StatusOK, catalog.ByDifficulty(difficulty))
}

// levelResponse - уровень вместе с прогрессом пользователя и
// ссылками на соседние уровни (для кнопок Previous/Next).
type levelResponse struct {
	models.Level
	Progress    models.ProgressRecord `json:"progress"`
	PrevLevelID *int                  `json:"prev_level_id,omitempty"`
	NextLevelID *int                  `json:"next_level_id,omitempty"`
}

// GetLevel отдает один уровень с прогрессом текущего пользователя.
func (h *ApiHandler) GetLevel(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token (no user ID)")
		return
	}

	levelID, level, ok := levelFromPath(w, r)
	if !ok {
		return
	}

	rec, err := h.Tracker.Load(r.Context(), userID, levelID)
	if err != nil {
		log.Printf("Error fetching progress for user %d level %d: %v", userID, levelID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}

	resp := levelResponse{Level: level, Progress: rec}
	// Соседей может не быть - тогда кнопка просто не рисуется
	if prev, ok := catalog.FindByID(levelID - 1); ok {
		resp.PrevLevelID = &prev.ID
	}
	if next, ok := catalog.FindByID(levelID + 1); ok {
		resp.NextLevelID = &next.ID
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// GetProgress отдает прогресс пользователя по уровню.
// Для еще не начатого уровня это {completed: false, points: 0}.
func (h *ApiHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token (no user ID)")
		return
	}

	levelID, _, ok := levelFromPath(w, r)
	if !ok {
		return
	}

	rec, err := h.Tracker.Load(r.Context(), userID, levelID)
	if err != nil {
		log.Printf("Error fetching progress for user %d level %d: %v", userID, levelID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// CompleteLevel - кнопка "Start Learning": отмечает уровень пройденным
// и добавляет 10 очков. Каждый повторный вызов добавляет еще 10.
func (h *ApiHandler) CompleteLevel(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token (no user ID)")
		return
	}

	levelID, _, ok := levelFromPath(w, r)
	if !ok {
		return
	}

	rec, err := h.Tracker.MarkCompleted(r.Context(), userID, levelID)
	if err != nil {
		log.Printf("Failed to save progress for user %d, level %d: %v", userID, levelID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to save progress")
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// StartReview открывает сессию ревью уровня с первого примера.
func (h *ApiHandler) StartReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token (no user ID)")
		return
	}

	_, level, ok := levelFromPath(w, r)
	if !ok {
		return
	}

	state, err := h.Reviews.Start(userID, level)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Level has no examples to review")
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// GetReviewState отдает снимок активной сессии ревью (для восстановления
// экрана после перезагрузки страницы).
func (h *ApiHandler) GetReviewState(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token (no user ID)")
		return
	}

	levelID, _, ok := levelFromPath(w, r)
	if !ok {
		return
	}

	state, err := h.Reviews.State(userID, levelID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "No active review session")
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}

// submitRequest - одна распознанная реплика от клиента.
type submitRequest struct {
	Transcript string `json:"transcript"`
}

// SubmitReview сверяет реплику с текущим примером сессии.
func (h *ApiHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token (no user ID)")
		return
	}

	levelID, _, ok := levelFromPath(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.Reviews.Submit(userID, levelID, req.Transcript)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "No active review session")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// AdvanceReview двигает сессию к следующему примеру; на последнем
// финализирует ревью и сохраняет счет.
func (h *ApiHandler) AdvanceReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token (no user ID)")
		return
	}

	levelID, _, ok := levelFromPath(w, r)
	if !ok {
		return
	}

	result, err := h.Reviews.Advance(r.Context(), userID, levelID)
	if errors.Is(err, review.ErrNoSession) {
		respondWithError(w, http.StatusNotFound, "No active review session")
		return
	}
	if err != nil {
		log.Printf("Failed to finalize review for user %d, level %d: %v", userID, levelID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to save progress")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// AbandonReview выбрасывает сессию без сохранения (выход из ревью).
func (h *ApiHandler) AbandonReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token (no user ID)")
		return
	}

	levelID, _, ok := levelFromPath(w, r)
	if !ok {
		return
	}

	h.Reviews.Abandon(userID, levelID)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Review abandoned"})
}

// synthesizeRequest - запрос на озвучку фразы.
type synthesizeRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}

// SynthesizeSpeech озвучивает текст. Если синтез на платформе
// недоступен, отвечаем 204 без тела - это no-op, а не ошибка.
func (h *ApiHandler) SynthesizeSpeech(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondWithError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if req.Locale == "" {
		req.Locale = defaultLocale
	}

	audio, err := h.Speech.Synthesize(r.Context(), req.Text, req.Locale)
	if err != nil {
		log.Printf("Speech synthesis failed: %v", err)
		respondWithError(w, http.StatusBadGateway, "Speech synthesis failed")
		return
	}
	if audio == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// RecognizeSpeech принимает аудио и возвращает один транскрипт.
// Новая сессия для той же пары (user, level) сначала отменяет
// предыдущую - активной может быть только одна.
func (h *ApiHandler) RecognizeSpeech(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token (no user ID)")
		return
	}

	levelID, err := strconv.Atoi(r.URL.Query().Get("level_id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid level ID")
		return
	}

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = defaultLocale
	}

	// Ограничиваем размер, чтобы никто не залил нам гигабайт "аудио"
	audio, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read audio")
		return
	}
	if len(audio) == 0 {
		respondWithError(w, http.StatusBadRequest, "Audio is required")
		return
	}

	session, err := h.Speech.StartRecognition(r.Context(), audio, locale)
	if errors.Is(err, models.ErrCapabilityUnavailable) {
		respondWithError(w, http.StatusNotImplemented, "Speech recognition is not available")
		return
	}
	if err != nil {
		log.Printf("Speech recognition failed to start: %v", err)
		respondWithError(w, http.StatusBadGateway, "Speech recognition failed")
		return
	}

	h.Reviews.AttachRecognition(userID, levelID, session)
	result := <-session.Result()
	h.Reviews.DetachRecognition(userID, levelID, session)

	if result.Err != nil {
		if errors.Is(result.Err, context.Canceled) {
			respondWithError(w, http.StatusConflict, "Recognition canceled")
			return
		}
		log.Printf("Speech recognition failed: %v", result.Err)
		respondWithError(w, http.StatusBadGateway, "Speech recognition failed")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetLeaderboard отдает кэшированный снимок таблицы лидеров.
func (h *ApiHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.Board.Top())
}

// --- Вспомогательные функции ---

// levelFromPath парсит {level_id} из URL и ищет уровень в каталоге.
// Сам пишет ответ при ошибке, вызывающему остается только return.
func levelFromPath(w http.ResponseWriter, r *http.Request) (int, models.Level, bool) {
	vars := mux.Vars(r)
	levelID, err := strconv.Atoi(vars["level_id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid level ID")
		return 0, models.Level{}, false
	}

	level, ok := catalog.FindByID(levelID)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Level not found")
		return 0, models.Level{}, false
	}
	return levelID, level, true
}

// respondWithJSON - вспомогательная функция для отправки JSON-ответов.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
