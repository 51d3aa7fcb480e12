package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
)

// CloudTTSConfig holds configuration for the hosted TTS backend.
type CloudTTSConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.elevenlabs.io"
	Model   string // default: "eleven_multilingual_v2"
}

// CloudTTS synthesizes speech with an ElevenLabs-compatible HTTP API.
type CloudTTS struct {
	cfg        CloudTTSConfig
	httpClient *http.Client
}

func NewCloudTTS(cfg CloudTTSConfig) *CloudTTS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if cfg.Model == "" {
		cfg.Model = "eleven_multilingual_v2"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &CloudTTS{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *CloudTTS) Name() string { return "primary" }

type cloudVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Speed           float64 `json:"speed"`
}

type cloudRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings cloudVoiceSettings `json:"voice_settings"`
}

// Synthesize returns MP3 audio. Anything other than a 200 carrying audio is
// reported as a synthesis failure.
func (c *CloudTTS) Synthesize(ctx context.Context, req SpeechRequest) (*Audio, error) {
	data, err := json.Marshal(cloudRequest{
		Text:    req.Text,
		ModelID: c.cfg.Model,
		VoiceSettings: cloudVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			Speed:           clamp(req.Prosody.SpeedFactor(), 0.7, 1.2),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=mp3_44100_128", c.cfg.BaseURL, req.VoiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.Synthesis(fmt.Errorf("tts request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperr.Synthesis(fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, string(respBody)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Synthesis(fmt.Errorf("read audio: %w", err))
	}
	if len(audio) == 0 {
		return nil, apperr.Synthesis(errors.New("tts returned no audio"))
	}
	if m := mimetype.Detect(audio); !strings.HasPrefix(m.String(), "audio/") {
		return nil, apperr.Synthesis(fmt.Errorf("tts returned %s instead of audio", m.String()))
	}

	return &Audio{Data: audio, ContentType: "audio/mpeg", Ext: ".mp3"}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
