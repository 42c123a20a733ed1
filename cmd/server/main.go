package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	speechapi "cloud.google.com/go/speech/apiv1"
	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"finn-sprint/internal/api"
	"finn-sprint/internal/config"
	"finn-sprint/internal/database"
	"finn-sprint/internal/leaderboard"
	"finn-sprint/internal/progress"
	"finn-sprint/internal/review"
	"finn-sprint/internal/speech"
)

// isLoggedIn проверяет простой cookie 'auth_status'.
// Этого достаточно, чтобы решить, какую СТРАНИЦУ отдать;
// сам API защищен настоящим JWT-middleware.
func isLoggedIn(r *http.Request) bool {
	cookie, err := r.Cookie("auth_status")
	if err != nil {
		return false
	}
	return cookie.Value == "logged_in"
}

// buildSpeechAdapter собирает речевой адаптер. Обе возможности
// опциональны: без GOOGLE_APPLICATION_CREDENTIALS приложение
// работает, просто без озвучки и распознавания.
func buildSpeechAdapter(ctx context.Context) *speech.Adapter {
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		log.Println("GOOGLE_APPLICATION_CREDENTIALS not set, speech features disabled")
		return speech.NewAdapter(nil, nil)
	}

	var synth speech.Synthesizer
	if ttsClient, err := texttospeech.NewClient(ctx); err != nil {
		log.Printf("TTS client unavailable, synthesis disabled: %v", err)
	} else {
		synth = speech.NewGoogleSynthesizer(ttsClient)
	}

	var recog speech.Recognizer
	if sttClient, err := speechapi.NewClient(ctx); err != nil {
		log.Printf("STT client unavailable, recognition disabled: %v", err)
	} else {
		recog = speech.NewGoogleRecognizer(sttClient)
	}

	return speech.NewAdapter(synth, recog)
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// .env нужен только для локального запуска, в проде его нет
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, reading configuration from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := database.Connect(cfg.DBType, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connect error: %v", err)
	}
	log.Println("DB connected!")
	defer db.Close()

	ctx := context.Background()

	// --- СБОРКА КОМПОНЕНТОВ ---
	tracker := progress.NewTracker(db)
	reviews := review.NewManager(tracker)
	speechAdapter := buildSpeechAdapter(ctx)

	board := leaderboard.NewBoard(db, 20)
	if err := board.Refresh(ctx); err != nil {
		// Не фатально: снимок догонит по расписанию
		log.Printf("Initial leaderboard refresh failed: %v", err)
	}
	board.StartSchedule(cfg.LeaderboardRefresh)
	defer board.Stop()

	// --- ИНИЦИАЛИЗАЦИЯ РОУТЕРА ---
	r := mux.NewRouter()
	apiHandler := api.NewApiHandler(db, tracker, reviews, speechAdapter, board, cfg.JWTSecret)

	// --- 1. РЕГИСТРАЦИЯ API ЭНДПОИНТОВ ---
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/register", apiHandler.RegisterUser).Methods("POST")
	apiRouter.HandleFunc("/login", apiHandler.LoginUser).Methods("POST")

	s := apiRouter.PathPrefix("/").Subrouter()
	s.Use(apiHandler.AuthMiddleware)
	s.HandleFunc("/levels", apiHandler.GetLevels).Methods("GET")
	s.HandleFunc("/levels/{level_id:[0-9]+}", apiHandler.GetLevel).Methods("GET")
	s.HandleFunc("/levels/{level_id:[0-9]+}/complete", apiHandler.CompleteLevel).Methods("POST")
	s.HandleFunc("/progress/{level_id:[0-9]+}", apiHandler.GetProgress).Methods("GET")
	s.HandleFunc("/review/{level_id:[0-9]+}", apiHandler.GetReviewState).Methods("GET")
	s.HandleFunc("/review/{level_id:[0-9]+}/start", apiHandler.StartReview).Methods("POST")
	s.HandleFunc("/review/{level_id:[0-9]+}/submit", apiHandler.SubmitReview).Methods("POST")
	s.HandleFunc("/review/{level_id:[0-9]+}/advance", apiHandler.AdvanceReview).Methods("POST")
	s.HandleFunc("/review/{level_id:[0-9]+}", apiHandler.AbandonReview).Methods("DELETE")
	s.HandleFunc("/speech/synthesize", apiHandler.SynthesizeSpeech).Methods("POST")
	s.HandleFunc("/speech/recognize", apiHandler.RecognizeSpeech).Methods("POST")
	s.HandleFunc("/leaderboard", apiHandler.GetLeaderboard).Methods("GET")

	// --- 2. РЕГИСТРАЦИЯ СТРАНИЦ ПРИЛОЖЕНИЯ ---
	// /app отдает index.html ТОЛЬКО если залогинен
	r.HandleFunc("/app", func(w http.ResponseWriter, r *http.Request) {
		if !isLoggedIn(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		http.ServeFile(w, r, filepath.Join(cfg.StaticDir, "index.html"))
	}).Methods("GET")

	// /login и /register как страницы просто редиректят на лендинг
	r.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}).Methods("GET")
	r.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}).Methods("GET")

	// --- 3. РЕГИСТРАЦИЯ ЛЕНДИНГА ---
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if isLoggedIn(r) {
			http.Redirect(w, r, "/app", http.StatusSeeOther)
			return
		}
		http.ServeFile(w, r, filepath.Join(cfg.StaticDir, "landing.html"))
	}).Methods("GET")

	// --- 4. РЕГИСТРАЦИЯ FILESERVER ДЛЯ СТАТИКИ (CSS, JS, АУДИО) ---
	// Этот обработчик должен быть ПОСЛЕДНИМ ИЗ ОБЫЧНЫХ ПУТЕЙ
	fs := http.FileServer(http.Dir(cfg.StaticDir))
	r.MatcherFunc(func(r *http.Request, rm *mux.RouteMatch) bool {
		path := r.URL.Path
		return path != "/" && path != "/app" && path != "/login" && path != "/register" && !strings.HasPrefix(path, "/api")
	}).Handler(http.StripPrefix("/", fs))

	// --- ЗАПУСК СЕРВЕРА ---
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(cfg.Port, r); err != nil {
		log.Fatalf("Server start error: %v", err)
	}
}
