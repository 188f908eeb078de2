package voice

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	realtimeModel = "gpt-4o-realtime-preview-2024-12-17"
	audioFormat   = "pcm16"
)

// TurnDetection configures server-side voice activity detection.
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
	CreateResponse    bool    `json:"create_response"`
}

// Transcription selects the model used to transcribe caller audio.
type Transcription struct {
	Model string `json:"model"`
}

// SessionConfig is the realtime session payload handed to the voice client.
type SessionConfig struct {
	Model                   string        `json:"model"`
	Modalities              []string      `json:"modalities"`
	InputAudioFormat        string        `json:"input_audio_format"`
	OutputAudioFormat       string        `json:"output_audio_format"`
	InputAudioTranscription Transcription `json:"input_audio_transcription"`
	TurnDetection           TurnDetection `json:"turn_detection"`
	Voice                   Voice         `json:"voice"`
	Instructions            string        `json:"instructions"`
}

// BuildSessionConfig assembles the realtime session for impersonating the
// given participant. The persona string drives both the spoken instructions
// and the voice choice.
func BuildSessionConfig(displayName, persona string, voice Voice) SessionConfig {
	title := cases.Title(language.English)
	name := title.String(displayName)

	instructions := fmt.Sprintf(
		"You are %s, having a direct voice conversation with the user, and this is your persona: %s\n"+
			"Keep responses concise and clear while staying in character. "+
			"If you have no specific context about the user, just be natural and friendly.",
		name, persona,
	)

	return SessionConfig{
		Model:             realtimeModel,
		Modalities:        []string{"text", "audio"},
		InputAudioFormat:  audioFormat,
		OutputAudioFormat: audioFormat,
		InputAudioTranscription: Transcription{
			Model: "whisper-1",
		},
		TurnDetection: TurnDetection{
			Type:              "server_vad",
			Threshold:         0.5,
			PrefixPaddingMs:   300,
			SilenceDurationMs: 200,
			CreateResponse:    true,
		},
		Voice:        voice,
		Instructions: instructions,
	}
}
