// Package voice turns text into speech in a chosen language, voice and
// emotion. A hosted primary engine is tried for voices that belong to it;
// every failure there falls through to the local alternate engine.
package voice

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/parser"
	"github.com/nikhilbhutani/mediainsight/internal/storage"
)

type SynthesisRequest struct {
	Text     string
	Language string
	VoiceID  string
	Emotion  string
}

type SynthesisResult struct {
	AudioURL       string `json:"audio_url"`
	TranslatedText string `json:"translated_text,omitempty"`
	Language       string `json:"language"`
	Engine         string `json:"engine"`
	VoiceID        string `json:"voice_id"`
}

type Dispatcher struct {
	catalog    *Catalog
	translator *Translator
	primary    Engine // nil when no hosted engine is configured
	alternate  Engine
	store      storage.Storage
}

func NewDispatcher(catalog *Catalog, translator *Translator, primary, alternate Engine, store storage.Storage) *Dispatcher {
	return &Dispatcher{
		catalog:    catalog,
		translator: translator,
		primary:    primary,
		alternate:  alternate,
		store:      store,
	}
}

func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

func (d *Dispatcher) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperr.Input("Text is required.")
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = BaselineLanguage
	}

	translated, err := d.translator.Translate(ctx, req.Text, language)
	if err != nil {
		return nil, err
	}
	speech := parser.SanitizeForSpeech(translated)
	if speech == "" {
		return nil, apperr.Input("Nothing to speak after removing formatting.")
	}

	res := d.catalog.Resolve(language, req.VoiceID)
	prosody := LookupEmotion(req.Emotion)

	audio, engine, voiceID, err := d.synthesize(ctx, speech, res, prosody)
	if err != nil {
		return nil, err
	}

	name := "voice_" + uuid.NewString() + audio.Ext
	url, err := d.store.Save(ctx, name, bytes.NewReader(audio.Data), audio.ContentType)
	if err != nil {
		return nil, apperr.Synthesis(err)
	}

	out := &SynthesisResult{
		AudioURL: url,
		Language: language,
		Engine:   engine,
		VoiceID:  voiceID,
	}
	if NeedsTranslation(language) {
		out.TranslatedText = translated
	}
	return out, nil
}

func (d *Dispatcher) synthesize(ctx context.Context, text string, res Resolution, prosody Prosody) (*Audio, string, string, error) {
	altVoice := res.Voice.ID
	if res.Voice.Engine == EnginePrimary {
		altVoice = res.FallbackID

		if d.primary != nil {
			audio, err := d.primary.Synthesize(ctx, SpeechRequest{Text: text, VoiceID: res.Voice.ID, Prosody: prosody})
			if err == nil {
				return audio, d.primary.Name(), res.Voice.ID, nil
			}
			slog.Warn("primary speech engine failed, using alternate",
				"voice", res.Voice.ID,
				"fallback", altVoice,
				"error", err,
			)
		}
	}

	audio, err := d.alternate.Synthesize(ctx, SpeechRequest{Text: text, VoiceID: altVoice, Prosody: prosody})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindSynthesisFailed {
			err = apperr.Synthesis(err)
		}
		return nil, "", "", err
	}
	return audio, d.alternate.Name(), altVoice, nil
}
