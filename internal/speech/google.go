package speech

import (
	"context"
	"fmt"

	speechapi "cloud.google.com/go/speech/apiv1"
	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// GoogleSynthesizer - синтез через Google Cloud TTS.
// Клиент сам находит ключ через GOOGLE_APPLICATION_CREDENTIALS.
type GoogleSynthesizer struct {
	client *texttospeech.Client
}

// NewGoogleSynthesizer оборачивает готовый TTS клиент.
func NewGoogleSynthesizer(client *texttospeech.Client) *GoogleSynthesizer {
	return &GoogleSynthesizer{client: client}
}

func (g *GoogleSynthesizer) Name() string { return "google-tts" }

// Synthesize озвучивает текст и возвращает MP3 байты.
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		// Берем "Standard" (не "Wavenet") голос ради бесплатного лимита
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: locale,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("SynthesizeSpeech: %w", err)
	}
	return resp.AudioContent, nil
}

// GoogleRecognizer - распознавание через Google Cloud Speech-to-Text.
type GoogleRecognizer struct {
	client *speechapi.Client
}

// NewGoogleRecognizer оборачивает готовый Speech клиент.
func NewGoogleRecognizer(client *speechapi.Client) *GoogleRecognizer {
	return &GoogleRecognizer{client: client}
}

func (g *GoogleRecognizer) Name() string { return "google-stt" }

// Recognize делает один синхронный запрос распознавания (не стриминг)
// и возвращает первый вариант первого результата.
func (g *GoogleRecognizer) Recognize(ctx context.Context, audio []byte, locale string) (string, error) {
	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			// MediaRecorder в браузерах по умолчанию пишет webm/opus 48kHz
			Encoding:        speechpb.RecognitionConfig_WEBM_OPUS,
			SampleRateHertz: 48000,
			LanguageCode:    locale,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}

	resp, err := g.client.Recognize(ctx, req)
	if err != nil {
		return "", fmt.Errorf("Recognize: %w", err)
	}

	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			return result.Alternatives[0].Transcript, nil
		}
	}
	return "", nil
}
