package voice

import "context"

// SpeechRequest holds the parameters for one text-to-speech call.
type SpeechRequest struct {
	Text    string
	VoiceID string
	Prosody Prosody
}

// Audio is synthesized speech and how to store it.
type Audio struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Engine is the interface for text-to-speech backends.
type Engine interface {
	Synthesize(ctx context.Context, req SpeechRequest) (*Audio, error)
	Name() string
}
