package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"finn-sprint/internal/catalog"
	"finn-sprint/internal/database"
	"finn-sprint/internal/leaderboard"
	"finn-sprint/internal/models"
	"finn-sprint/internal/progress"
	"finn-sprint/internal/review"
	"finn-sprint/internal/speech"
)

const testSecret = "test_secret_key_with_enough_length_32b"

// newTestRouter собирает API поверх sqlite в памяти - та же схема
// роутов, что и в cmd/server, но без страниц и статики.
func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	db, err := database.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("не удалось открыть sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.CreateSchema(db); err != nil {
		t.Fatalf("не удалось создать схему: %v", err)
	}

	tracker := progress.NewTracker(db)
	reviews := review.NewManager(tracker)
	// Без речевых движков: проверяем как раз поведение "возможности нет"
	adapter := speech.NewAdapter(nil, nil)
	board := leaderboard.NewBoard(db, 20)

	h := NewApiHandler(db, tracker, reviews, adapter, board, []byte(testSecret))

	r := mux.NewRouter()
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/register", h.RegisterUser).Methods("POST")
	apiRouter.HandleFunc("/login", h.LoginUser).Methods("POST")

	s := apiRouter.PathPrefix("/").Subrouter()
	s.Use(h.AuthMiddleware)
	s.HandleFunc("/levels", h.GetLevels).Methods("GET")
	s.HandleFunc("/levels/{level_id:[0-9]+}", h.GetLevel).Methods("GET")
	s.HandleFunc("/levels/{level_id:[0-9]+}/complete", h.CompleteLevel).Methods("POST")
	s.HandleFunc("/progress/{level_id:[0-9]+}", h.GetProgress).Methods("GET")
	s.HandleFunc("/review/{level_id:[0-9]+}", h.GetReviewState).Methods("GET")
	s.HandleFunc("/review/{level_id:[0-9]+}/start", h.StartReview).Methods("POST")
	s.HandleFunc("/review/{level_id:[0-9]+}/submit", h.SubmitReview).Methods("POST")
	s.HandleFunc("/review/{level_id:[0-9]+}/advance", h.AdvanceReview).Methods("POST")
	s.HandleFunc("/review/{level_id:[0-9]+}", h.AbandonReview).Methods("DELETE")
	s.HandleFunc("/speech/synthesize", h.SynthesizeSpeech).Methods("POST")
	s.HandleFunc("/speech/recognize", h.RecognizeSpeech).Methods("POST")
	s.HandleFunc("/leaderboard", h.GetLeaderboard).Methods("GET")

	return r
}

func doJSON(t *testing.T, r *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// registerAndLogin создает пользователя и возвращает его токен.
func registerAndLogin(t *testing.T, r *mux.Router, email string) string {
	t.Helper()

	creds := Credentials{Email: email, Password: "salasana123"}
	if w := doJSON(t, r, "POST", "/api/register", "", creds); w.Code != http.StatusCreated {
		t.Fatalf("register: код %d, тело %s", w.Code, w.Body.String())
	}

	w := doJSON(t, r, "POST", "/api/login", "", creds)
	if w.Code != http.StatusOK {
		t.Fatalf("login: код %d, тело %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp["token"] == "" {
		t.Fatal("login не вернул токен")
	}
	return resp["token"]
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRouter(t)

	cases := []Credentials{
		{Email: "", Password: "salasana123"},
		{Email: "   ", Password: "salasana123"},
		{Email: "not-an-email", Password: "salasana123"},
		{Email: "a@b.fi", Password: "short"},
	}
	for _, c := range cases {
		if w := doJSON(t, r, "POST", "/api/register", "", c); w.Code != http.StatusBadRequest {
			t.Errorf("register(%+v): код %d, ожидался 400", c, w.Code)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter(t)

	token := registerAndLogin(t, r, "user@example.com")
	if token == "" {
		t.Fatal("пустой токен")
	}

	// Дубликат email
	creds := Credentials{Email: "user@example.com", Password: "salasana123"}
	if w := doJSON(t, r, "POST", "/api/register", "", creds); w.Code != http.StatusConflict {
		t.Errorf("повторная регистрация: код %d, ожидался 409", w.Code)
	}

	// Неверный пароль и несуществующий пользователь - одинаковый ответ
	bad := Credentials{Email: "user@example.com", Password: "wrong-pass"}
	if w := doJSON(t, r, "POST", "/api/login", "", bad); w.Code != http.StatusUnauthorized {
		t.Errorf("login с неверным паролем: код %d, ожидался 401", w.Code)
	}
	unknown := Credentials{Email: "nobody@example.com", Password: "salasana123"}
	if w := doJSON(t, r, "POST", "/api/login", "", unknown); w.Code != http.StatusUnauthorized {
		t.Errorf("login несуществующего: код %d, ожидался 401", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter(t)

	if w := doJSON(t, r, "GET", "/api/levels", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("без токена: код %d, ожидался 401", w.Code)
	}
	if w := doJSON(t, r, "GET", "/api/levels", "garbage.token.here", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("с мусорным токеном: код %d, ожидался 401", w.Code)
	}

	token := registerAndLogin(t, r, "auth@example.com")
	if w := doJSON(t, r, "GET", "/api/levels", token, nil); w.Code != http.StatusOK {
		t.Errorf("с валидным токеном: код %d, ожидался 200", w.Code)
	}
}

func TestGetLevelsFilter(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "levels@example.com")

	w := doJSON(t, r, "GET", "/api/levels?difficulty=Beginner", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("код %d, тело %s", w.Code, w.Body.String())
	}

	var levels []models.Level
	if err := json.Unmarshal(w.Body.Bytes(), &levels); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(levels) == 0 {
		t.Fatal("пустой список Beginner-уровней")
	}
	for _, l := range levels {
		if l.Difficulty != models.Beginner {
			t.Errorf("в выборке Beginner оказался уровень %d (%s)", l.ID, l.Difficulty)
		}
	}

	if w := doJSON(t, r, "GET", "/api/levels?difficulty=Impossible", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("неизвестная сложность: код %d, ожидался 400", w.Code)
	}
}

func TestGetLevelWithNeighbors(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "nav@example.com")

	w := doJSON(t, r, "GET", "/api/levels/2", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("код %d, тело %s", w.Code, w.Body.String())
	}

	var resp struct {
		models.Level
		Progress    models.ProgressRecord `json:"progress"`
		PrevLevelID *int                  `json:"prev_level_id"`
		NextLevelID *int                  `json:"next_level_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != 2 {
		t.Fatalf("не тот уровень: %+v", resp.Level)
	}
	if resp.Progress.Completed || resp.Progress.Points != 0 {
		t.Fatalf("свежий уровень должен быть без прогресса: %+v", resp.Progress)
	}
	if resp.PrevLevelID == nil || *resp.PrevLevelID != 1 {
		t.Errorf("ожидался prev_level_id = 1, получили %v", resp.PrevLevelID)
	}
	if resp.NextLevelID == nil || *resp.NextLevelID != 3 {
		t.Errorf("ожидался next_level_id = 3, получили %v", resp.NextLevelID)
	}

	// У первого уровня нет предыдущего - поле просто отсутствует
	w = doJSON(t, r, "GET", "/api/levels/1", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("код %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "prev_level_id") {
		t.Error("у уровня 1 не должно быть prev_level_id")
	}

	if w := doJSON(t, r, "GET", "/api/levels/9999", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("несуществующий уровень: код %d, ожидался 404", w.Code)
	}
}

func TestCompleteLevelTwice(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "complete@example.com")

	w := doJSON(t, r, "POST", "/api/levels/1/complete", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("код %d, тело %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "POST", "/api/levels/1/complete", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("код %d, тело %s", w.Code, w.Body.String())
	}

	var rec models.ProgressRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !rec.Completed || rec.Points != 20 {
		t.Fatalf("после двух завершений ожидалось {true, 20}, получили %+v", rec)
	}
}

func TestReviewFlow(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "review@example.com")

	// Уровень 41 удобен: в нем ровно два примера
	level, ok := catalog.FindByID(41)
	if !ok || len(level.Examples) != 2 {
		t.Fatalf("ожидался уровень 41 с двумя примерами, получили %+v", level)
	}

	w := doJSON(t, r, "POST", "/api/review/41/start", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: код %d, тело %s", w.Code, w.Body.String())
	}

	// Первое слово верно
	w = doJSON(t, r, "POST", "/api/review/41/submit", token,
		map[string]string{"transcript": level.Examples[0].Finnish})
	if w.Code != http.StatusOK {
		t.Fatalf("submit: код %d", w.Code)
	}
	var sub review.SubmitResult
	if err := json.Unmarshal(w.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !sub.Correct || sub.State.Score != 1 {
		t.Fatalf("первое слово должно засчитаться: %+v", sub)
	}

	w = doJSON(t, r, "POST", "/api/review/41/advance", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("advance: код %d", w.Code)
	}

	// Второе слово мимо
	w = doJSON(t, r, "POST", "/api/review/41/submit", token,
		map[string]string{"transcript": "ihan väärin"})
	if w.Code != http.StatusOK {
		t.Fatalf("submit: код %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/review/41/advance", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("финальный advance: код %d, тело %s", w.Code, w.Body.String())
	}
	var adv review.AdvanceResult
	if err := json.Unmarshal(w.Body.Bytes(), &adv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !adv.Finished || adv.Progress == nil {
		t.Fatalf("ревью должно было завершиться: %+v", adv)
	}
	if adv.Progress.Points != 10 || !adv.Progress.Completed {
		t.Fatalf("ожидалось {true, 10}, получили %+v", adv.Progress)
	}

	// Сессии больше нет
	if w := doJSON(t, r, "GET", "/api/review/41", token, nil); w.Code != http.StatusNotFound {
		t.Errorf("после финала сессии быть не должно: код %d", w.Code)
	}
}

func TestSynthesizeWithoutCapability(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "tts@example.com")

	// Движка нет - тихий no-op: 204 без тела, НЕ ошибка
	w := doJSON(t, r, "POST", "/api/speech/synthesize", token,
		map[string]string{"text": "Hei"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("код %d, ожидался 204", w.Code)
	}

	// А вот пустой текст - это ошибка валидации
	w = doJSON(t, r, "POST", "/api/speech/synthesize", token,
		map[string]string{"text": "  "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("пустой текст: код %d, ожидался 400", w.Code)
	}
}

func TestRecognizeWithoutCapability(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "stt@example.com")

	req := httptest.NewRequest("POST", "/api/speech/recognize?level_id=1", bytes.NewBufferString("fake-audio"))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// Распознавание, в отличие от синтеза, сообщает о недоступности явно
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("код %d, ожидался 501", w.Code)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "board@example.com")

	w := doJSON(t, r, "GET", "/api/leaderboard", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("код %d", w.Code)
	}

	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v (тело %s)", err, w.Body.String())
	}
}

func TestProgressEndpoint(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndLogin(t, r, "progress@example.com")

	w := doJSON(t, r, "GET", "/api/progress/3", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("код %d", w.Code)
	}

	var rec models.ProgressRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Completed || rec.Points != 0 {
		t.Fatalf("непосещенный уровень: ожидалось {false, 0}, получили %+v", rec)
	}

	if w := doJSON(t, r, "POST", "/api/levels/3/complete", token, nil); w.Code != http.StatusOK {
		t.Fatalf("complete: код %d", w.Code)
	}

	w = doJSON(t, r, "GET", "/api/progress/3", token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !rec.Completed || rec.Points != 10 {
		t.Fatalf("ожидалось {true, 10}, получили %+v", rec)
	}
}
