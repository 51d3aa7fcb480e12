package relay

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/nikhilbhutani/mediainsight/internal/command"
)

// YtDlp runs yt-dlp with a fixed set of extra flags. The mobile and insecure
// strategies differ only in those flags.
type YtDlp struct {
	name   string
	bin    string
	extra  []string
	runner command.Runner
	fs     afero.Fs
}

// NewMobileYtDlp impersonates the mobile YouTube clients, which are blocked
// less often than the web client from datacenter addresses.
func NewMobileYtDlp(bin string, runner command.Runner, fs afero.Fs) *YtDlp {
	return &YtDlp{
		name: "ytdlp-mobile",
		bin:  bin,
		extra: []string{
			"--extractor-args", "youtube:player_client=android,ios",
			"--user-agent", mobileUserAgent,
		},
		runner: runner,
		fs:     fs,
	}
}

// NewInsecureYtDlp is the last resort: no certificate checks, IPv4 only,
// geo-restriction bypass.
func NewInsecureYtDlp(bin string, runner command.Runner, fs afero.Fs) *YtDlp {
	return &YtDlp{
		name:   "ytdlp-insecure",
		bin:    bin,
		extra:  []string{"--no-check-certificates", "--force-ipv4", "--geo-bypass"},
		runner: runner,
		fs:     fs,
	}
}

func (y *YtDlp) Name() string { return y.name }

func (y *YtDlp) Fetch(ctx context.Context, url, destBase string) (string, error) {
	args := buildYtDlpArgs(url, destBase, y.extra)
	if _, err := y.runner.Run(ctx, y.bin, args...); err != nil {
		return "", err
	}

	matches, err := afero.Glob(y.fs, destBase+".*")
	if err != nil {
		return "", fmt.Errorf("locate output: %w", err)
	}
	return pickOutput(matches)
}

func buildYtDlpArgs(url, destBase string, extra []string) []string {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--quiet",
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3",
		"-o", destBase + ".%(ext)s",
	}
	args = append(args, extra...)
	return append(args, url)
}

// pickOutput prefers the converted mp3 over leftovers yt-dlp did not clean up.
func pickOutput(matches []string) (string, error) {
	var candidates []string
	for _, m := range matches {
		if filepath.Ext(m) != ".part" {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("yt-dlp produced no output")
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return filepath.Ext(candidates[i]) == ".mp3" && filepath.Ext(candidates[j]) != ".mp3"
	})
	return candidates[0], nil
}
