package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/mediainsight/internal/voice"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, req voice.SynthesisRequest) (*voice.SynthesisResult, error)
}

type VoiceHandler struct {
	synth   Synthesizer
	catalog *voice.Catalog
}

func NewVoiceHandler(synth Synthesizer, catalog *voice.Catalog) *VoiceHandler {
	return &VoiceHandler{synth: synth, catalog: catalog}
}

type audioResponse struct {
	Status string `json:"status"`
	*voice.SynthesisResult
}

// GenerateAudio accepts form fields text, emotion, language and voice_id.
func (h *VoiceHandler) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	res, err := h.synth.Synthesize(r.Context(), voice.SynthesisRequest{
		Text:     r.FormValue("text"),
		Language: r.FormValue("language"),
		VoiceID:  r.FormValue("voice_id"),
		Emotion:  r.FormValue("emotion"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, audioResponse{Status: "success", SynthesisResult: res})
}

func (h *VoiceHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Languages())
}

func (h *VoiceHandler) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Voices(strings.TrimSpace(r.URL.Query().Get("language"))))
}

func (h *VoiceHandler) Emotions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, voice.Emotions())
}
