package voice

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
	"github.com/nikhilbhutani/mediainsight/internal/command"
	"github.com/nikhilbhutani/mediainsight/internal/workspace"
)

// EdgeTTS synthesizes speech with the edge-tts command line tool. It is the
// alternate engine and the only one that applies pitch.
type EdgeTTS struct {
	bin        string
	runner     command.Runner
	workspaces *workspace.Manager
}

func NewEdgeTTS(bin string, runner command.Runner, workspaces *workspace.Manager) *EdgeTTS {
	if bin == "" {
		bin = "edge-tts"
	}
	return &EdgeTTS{bin: bin, runner: runner, workspaces: workspaces}
}

func (e *EdgeTTS) Name() string { return "alternate" }

// Synthesize writes the text to a file so long passages do not hit argv
// limits, runs edge-tts, and returns the MP3 it produced.
func (e *EdgeTTS) Synthesize(ctx context.Context, req SpeechRequest) (*Audio, error) {
	ws, err := e.workspaces.Open()
	if err != nil {
		return nil, apperr.Synthesis(err)
	}
	defer ws.Cleanup()

	textPath := ws.Path("speech.txt")
	if err := afero.WriteFile(ws.Fs(), textPath, []byte(req.Text), 0o644); err != nil {
		return nil, apperr.Synthesis(fmt.Errorf("write speech text: %w", err))
	}
	outPath := ws.Path("speech.mp3")

	if _, err := e.runner.Run(ctx, e.bin, buildEdgeArgs(req, textPath, outPath)...); err != nil {
		return nil, apperr.Synthesis(err)
	}

	audio, err := afero.ReadFile(ws.Fs(), outPath)
	if err != nil {
		return nil, apperr.Synthesis(fmt.Errorf("read edge-tts output: %w", err))
	}
	if len(audio) == 0 {
		return nil, apperr.Synthesis(errors.New("edge-tts produced empty audio"))
	}
	return &Audio{Data: audio, ContentType: "audio/mpeg", Ext: ".mp3"}, nil
}

// Rate and pitch use the --flag=value form: values like "-10%" would
// otherwise be parsed as flags.
func buildEdgeArgs(req SpeechRequest, textPath, outPath string) []string {
	return []string{
		"--voice", req.VoiceID,
		"--rate=" + req.Prosody.Rate,
		"--pitch=" + req.Prosody.Pitch,
		"--file", textPath,
		"--write-media", outPath,
	}
}
