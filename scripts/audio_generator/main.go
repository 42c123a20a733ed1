package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/joho/godotenv"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"

	"finn-sprint/internal/catalog"
)

// job - одна фраза каталога для озвучки.
type job struct {
	LevelID int
	Index   int
	Finnish string
}

// === Настройки ===
const outputDir = "web/static/media" // Папка для сохранения .mp3
const maxWorkers = 10                // Кол-во одновременных запросов к Google
const voiceLocale = "fi-FI"

// =================

func main() {
	log.Println("Запуск генератора аудио...")

	// 1. Загружаем .env (из корня проекта)
	// Скрипт запускается из корня: go run ./scripts/audio_generator
	if err := godotenv.Load(); err != nil {
		log.Println("Нет .env файла, берем настройки из окружения")
	}

	// 2. Создаем TTS клиент
	// (Он автоматически найдет ключ через GOOGLE_APPLICATION_CREDENTIALS)
	ctx := context.Background()
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		log.Fatalf("Не удалось создать TTS клиент: %v", err)
	}
	defer client.Close()
	log.Println("Успешно подключен к Google TTS API.")

	// 3. Создаем папку для аудио, если ее нет
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		log.Fatalf("Не удалось создать папку %s: %v", outputDir, err)
	}

	// 4. Собираем фразы из каталога, пропуская уже озвученные
	var todo []job
	for _, level := range catalog.All() {
		for i, ex := range level.Examples {
			if _, err := os.Stat(audioPath(level.ID, i)); err == nil {
				continue
			}
			todo = append(todo, job{LevelID: level.ID, Index: i, Finnish: ex.Finnish})
		}
	}

	if len(todo) == 0 {
		log.Println("Все фразы уже озвучены. Завершение.")
		return
	}
	log.Printf("Найдено %d фраз для озвучки.", len(todo))

	// 5. Запускаем пул воркеров
	jobs := make(chan job, len(todo))
	results := make(chan string, len(todo))
	var wg sync.WaitGroup

	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go worker(ctx, &wg, client, jobs, results)
	}

	for _, j := range todo {
		jobs <- j
	}
	close(jobs)

	wg.Wait()
	close(results)

	log.Println("--- Генерация завершена! ---")
	processedCount := 0
	for msg := range results {
		log.Println(msg)
		processedCount++
	}
	log.Printf("Успешно обработано: %d", processedCount)
}

// audioPath - путь к mp3 для примера index уровня levelID.
// Клиент строит тот же путь сам, поэтому формат имени менять нельзя.
func audioPath(levelID, index int) string {
	return filepath.Join(outputDir, fmt.Sprintf("level%d_%d.mp3", levelID, index))
}

// worker берет задания из канала jobs и озвучивает их по одному.
func worker(ctx context.Context, wg *sync.WaitGroup, client *texttospeech.Client, jobs <-chan job, results chan<- string) {
	defer wg.Done()

	for j := range jobs {
		filePath := audioPath(j.LevelID, j.Index)

		if err := synthesizeAndSave(ctx, client, j.Finnish, filePath); err != nil {
			log.Printf("Ошибка (уровень %d, пример %d): %v", j.LevelID, j.Index, err)
			continue
		}

		results <- fmt.Sprintf("Успех: %q -> %s", j.Finnish, filePath)

		// Пауза, чтобы не превысить лимит запросов в минуту
		// (10 воркеров * (1000ms / 700ms) = ~14 req/sec)
		time.Sleep(700 * time.Millisecond)
	}
}

// synthesizeAndSave вызывает Google API и сохраняет .mp3 файл.
func synthesizeAndSave(ctx context.Context, client *texttospeech.Client, text, outputPath string) error {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		// "Standard" (не "Wavenet") голос ради бесплатного лимита
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voiceLocale,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return fmt.Errorf("SynthesizeSpeech: %w", err)
	}

	if err := os.WriteFile(outputPath, resp.AudioContent, 0644); err != nil {
		return fmt.Errorf("WriteFile: %w", err)
	}
	return nil
}
