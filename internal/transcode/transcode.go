// Package transcode turns uploaded media into a small mono audio artifact.
// Video is run through ffmpeg; audio passes through untouched. A failed
// conversion falls back to uploading the original video.
package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/nikhilbhutani/mediainsight/internal/command"
	"github.com/nikhilbhutani/mediainsight/internal/config"
	"github.com/nikhilbhutani/mediainsight/internal/models"
)

// FallbackVideoMime is declared for videos uploaded without conversion.
const FallbackVideoMime = "video/mp4"

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".webm": true, ".m4v": true, ".flv": true,
}

var audioMimes = map[string]string{
	".mp3":  "audio/mp3",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".opus": "audio/ogg",
	".flac": "audio/flac",
}

type Transcoder struct {
	ffmpegPath string
	sampleRate int
	bitrate    string
	runner     command.Runner
	fs         afero.Fs
}

func New(cfg config.TranscodeConfig, runner command.Runner, fs afero.Fs) *Transcoder {
	return &Transcoder{
		ffmpegPath: cfg.FFmpegPath,
		sampleRate: cfg.SampleRate,
		bitrate:    cfg.Bitrate,
		runner:     runner,
		fs:         fs,
	}
}

// Transcode returns the artifact to upload for the file at inputPath. It
// only fails when the input itself cannot be read.
func (t *Transcoder) Transcode(ctx context.Context, inputPath, ext string) (models.Artifact, error) {
	info, err := t.fs.Stat(inputPath)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("stat input: %w", err)
	}
	size := info.Size()
	ext = strings.ToLower(ext)

	if mime, ok := audioMimes[ext]; ok {
		return models.Artifact{Path: inputPath, MimeType: mime, Size: size}, nil
	}
	if videoExts[ext] {
		return t.extractAudio(ctx, inputPath, size), nil
	}

	mime, err := t.sniff(inputPath)
	if err != nil {
		slog.Warn("could not sniff upload, treating as video", "path", inputPath, "error", err)
		return models.Artifact{Path: inputPath, MimeType: FallbackVideoMime, Size: size}, nil
	}
	switch {
	case strings.HasPrefix(mime, "audio/"):
		return models.Artifact{Path: inputPath, MimeType: mime, Size: size}, nil
	case strings.HasPrefix(mime, "video/"):
		return t.extractAudio(ctx, inputPath, size), nil
	default:
		slog.Info("unrecognised upload type, sending as video", "path", inputPath, "detected", mime)
		return models.Artifact{Path: inputPath, MimeType: FallbackVideoMime, Size: size}, nil
	}
}

func (t *Transcoder) extractAudio(ctx context.Context, inputPath string, inputSize int64) models.Artifact {
	fallback := models.Artifact{Path: inputPath, MimeType: FallbackVideoMime, Size: inputSize}

	outPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".audio.mp3"
	args := buildFFmpegArgs(inputPath, outPath, t.sampleRate, t.bitrate)

	res, err := t.runner.Run(ctx, t.ffmpegPath, args...)
	if err != nil {
		slog.Warn("ffmpeg conversion failed, uploading original video",
			"path", inputPath,
			"exit_code", res.ExitCode,
			"error", err,
		)
		return fallback
	}

	info, err := t.fs.Stat(outPath)
	if err != nil || info.Size() == 0 {
		slog.Warn("ffmpeg produced no audio, uploading original video", "path", inputPath)
		return fallback
	}

	slog.Info("video converted to audio",
		"input_size", humanize.Bytes(uint64(inputSize)),
		"output_size", humanize.Bytes(uint64(info.Size())),
	)
	return models.Artifact{Path: outPath, MimeType: "audio/mp3", Size: info.Size()}
}

func (t *Transcoder) sniff(path string) (string, error) {
	f, err := t.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	m, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

// buildFFmpegArgs builds args for mono low-bitrate mp3 output.
func buildFFmpegArgs(inputPath, outPath string, sampleRate int, bitrate string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", fmt.Sprint(sampleRate),
		"-b:a", bitrate,
		outPath,
	}
}
