package voice

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
)

type stubEngine struct {
	name  string
	err   error
	calls []SpeechRequest
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Synthesize(_ context.Context, req SpeechRequest) (*Audio, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &Audio{Data: fakeMP3, ContentType: "audio/mpeg", Ext: ".mp3"}, nil
}

type memStore struct {
	saved map[string][]byte
}

func (m *memStore) Save(_ context.Context, name string, data io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[name] = b
	return "/temp/" + name, nil
}

type echoCompleter struct {
	prompts []string
	reply   string
	err     error
}

func (e *echoCompleter) Complete(_ context.Context, prompt string) (string, error) {
	e.prompts = append(e.prompts, prompt)
	return e.reply, e.err
}

func TestDispatcherAlternateVoice(t *testing.T) {
	alternate := &stubEngine{name: "alternate"}
	store := &memStore{}
	completer := &echoCompleter{}
	d := NewDispatcher(DefaultCatalog(false), NewTranslator(completer), nil, alternate, store)

	res, err := d.Synthesize(context.Background(), SynthesisRequest{
		Text:     "## Hello **world**",
		Language: "English (US)",
		Emotion:  "Excited",
	})
	require.NoError(t, err)

	assert.Empty(t, completer.prompts, "English targets are not translated")
	assert.Empty(t, res.TranslatedText)
	assert.Equal(t, "alternate", res.Engine)
	assert.Equal(t, "en-US-GuyNeural", res.VoiceID)
	assert.True(t, strings.HasPrefix(res.AudioURL, "/temp/voice_"))
	assert.True(t, strings.HasSuffix(res.AudioURL, ".mp3"))

	require.Len(t, alternate.calls, 1)
	assert.Equal(t, "Hello world", alternate.calls[0].Text)
	assert.Equal(t, "+10%", alternate.calls[0].Prosody.Rate)
	assert.Len(t, store.saved, 1)
}

func TestDispatcherTranslates(t *testing.T) {
	alternate := &stubEngine{name: "alternate"}
	completer := &echoCompleter{reply: " Bonjour le monde \n"}
	d := NewDispatcher(DefaultCatalog(false), NewTranslator(completer), nil, alternate, &memStore{})

	res, err := d.Synthesize(context.Background(), SynthesisRequest{Text: "Hello world", Language: "French"})
	require.NoError(t, err)

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "French")
	assert.Equal(t, "Bonjour le monde", res.TranslatedText)
	assert.Equal(t, "Bonjour le monde", alternate.calls[0].Text)
	assert.Equal(t, "fr-FR-VivienneNeural", res.VoiceID)
}

func TestDispatcherPrimaryFallsBack(t *testing.T) {
	primary := &stubEngine{name: "primary", err: apperr.Synthesis(errors.New("quota exceeded"))}
	alternate := &stubEngine{name: "alternate"}
	d := NewDispatcher(DefaultCatalog(true), NewTranslator(&echoCompleter{}), primary, alternate, &memStore{})

	res, err := d.Synthesize(context.Background(), SynthesisRequest{
		Text:     "Hi",
		Language: "English (US)",
		VoiceID:  "21m00Tcm4TlvDq8ikWAM",
	})
	require.NoError(t, err)

	require.Len(t, primary.calls, 1)
	assert.Equal(t, "21m00Tcm4TlvDq8ikWAM", primary.calls[0].VoiceID)
	require.Len(t, alternate.calls, 1)
	assert.Equal(t, "en-US-JennyNeural", alternate.calls[0].VoiceID)
	assert.Equal(t, "alternate", res.Engine)
	assert.Equal(t, "en-US-JennyNeural", res.VoiceID)
}

func TestDispatcherPrimarySuccess(t *testing.T) {
	primary := &stubEngine{name: "primary"}
	alternate := &stubEngine{name: "alternate"}
	d := NewDispatcher(DefaultCatalog(true), NewTranslator(&echoCompleter{}), primary, alternate, &memStore{})

	res, err := d.Synthesize(context.Background(), SynthesisRequest{Text: "Hi", Language: "English (US)", VoiceID: "pNInz6obpgDQGcFmaJgB"})
	require.NoError(t, err)
	assert.Equal(t, "primary", res.Engine)
	assert.Empty(t, alternate.calls)
}

func TestDispatcherErrors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		d := NewDispatcher(DefaultCatalog(false), NewTranslator(&echoCompleter{}), nil, &stubEngine{}, &memStore{})
		_, err := d.Synthesize(context.Background(), SynthesisRequest{Text: "  "})
		assert.True(t, apperr.Is(err, apperr.KindInput))
	})

	t.Run("alternate failure", func(t *testing.T) {
		alternate := &stubEngine{name: "alternate", err: errors.New("boom")}
		d := NewDispatcher(DefaultCatalog(false), NewTranslator(&echoCompleter{}), nil, alternate, &memStore{})
		_, err := d.Synthesize(context.Background(), SynthesisRequest{Text: "hi"})
		assert.True(t, apperr.Is(err, apperr.KindSynthesisFailed))
	})

	t.Run("translation failure", func(t *testing.T) {
		completer := &echoCompleter{err: apperr.RateLimited(errors.New("429"))}
		d := NewDispatcher(DefaultCatalog(false), NewTranslator(completer), nil, &stubEngine{}, &memStore{})
		_, err := d.Synthesize(context.Background(), SynthesisRequest{Text: "hi", Language: "German"})
		assert.True(t, apperr.Is(err, apperr.KindEngineRateLimited))
	})
}
