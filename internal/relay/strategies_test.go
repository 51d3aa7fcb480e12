package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/mediainsight/internal/command"
	"github.com/nikhilbhutani/mediainsight/internal/config"
)

func mediaServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCobaltTriesNextInstance(t *testing.T) {
	media := mediaServer(t, fakeMP3(2048))

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		var req cobaltRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://youtu.be/abc", req.URL)
		assert.Equal(t, "audio", req.DownloadMode)

		_ = json.NewEncoder(w).Encode(map[string]string{"status": "tunnel", "url": media.URL + "/file.mp3"})
	}))
	defer working.Close()

	fs := afero.NewMemMapFs()
	c := NewCobalt([]string{broken.URL, working.URL}, http.DefaultClient, fs)

	path, err := c.Fetch(context.Background(), "https://youtu.be/abc", "/job/link-1-cobalt")
	require.NoError(t, err)
	assert.Equal(t, "/job/link-1-cobalt.mp3", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Len(t, data, 2048)
}

func TestCobaltErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","error":{"code":"error.api.content.video.unavailable"}}`))
	}))
	defer srv.Close()

	c := NewCobalt([]string{srv.URL}, http.DefaultClient, afero.NewMemMapFs())
	_, err := c.Fetch(context.Background(), "https://youtu.be/abc", "/job/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "video.unavailable")
}

func TestPipedPicksHighestBitrate(t *testing.T) {
	media := mediaServer(t, fakeMP3(3000))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/streams/dQw4w9WgXcQ", r.URL.Path)
		_ = json.NewEncoder(w).Encode(pipedStreams{AudioStreams: []pipedStream{
			{URL: media.URL + "/low", MimeType: "audio/webm", Bitrate: 48000},
			{URL: media.URL + "/high", MimeType: "audio/mp4", Bitrate: 128000},
		}})
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	p := NewPiped([]string{srv.URL}, http.DefaultClient, fs)

	path, err := p.Fetch(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "/job/link-2-piped")
	require.NoError(t, err)
	assert.Equal(t, "/job/link-2-piped.m4a", path)
}

func TestPipedRejectsNonYouTube(t *testing.T) {
	p := NewPiped([]string{"http://unused"}, http.DefaultClient, afero.NewMemMapFs())
	_, err := p.Fetch(context.Background(), "https://www.tiktok.com/@user/video/1", "/job/x")
	assert.Error(t, err)
}

func TestYouTubeID(t *testing.T) {
	tests := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":  "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=10":            "dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ":    "dQw4w9WgXcQ",
		"https://youtube.com/shorts/abc123":            "abc123",
		"https://www.youtube.com/embed/abc123":         "abc123",
		"https://music.youtube.com/watch?v=xyz&list=1": "xyz",
	}
	for in, want := range tests {
		got, err := YouTubeID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := YouTubeID("https://vimeo.com/123")
	assert.Error(t, err)
}

type recordingRunner struct {
	name string
	args []string
	run  func(args []string) error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) (command.Result, error) {
	r.name = name
	r.args = args
	if r.run != nil {
		return command.Result{}, r.run(args)
	}
	return command.Result{}, nil
}

func TestYtDlpMobileFetch(t *testing.T) {
	fs := afero.NewMemMapFs()
	runner := &recordingRunner{run: func(args []string) error {
		_ = afero.WriteFile(fs, "/job/link-0-ytdlp-mobile.webm.part", []byte("partial"), 0o644)
		return afero.WriteFile(fs, "/job/link-0-ytdlp-mobile.mp3", fakeMP3(2048), 0o644)
	}}

	y := NewMobileYtDlp("yt-dlp", runner, fs)
	path, err := y.Fetch(context.Background(), "https://youtu.be/abc", "/job/link-0-ytdlp-mobile")
	require.NoError(t, err)

	assert.Equal(t, "/job/link-0-ytdlp-mobile.mp3", path)
	assert.Equal(t, "yt-dlp", runner.name)
	assert.Contains(t, runner.args, "youtube:player_client=android,ios")
	assert.Contains(t, runner.args, "/job/link-0-ytdlp-mobile.%(ext)s")
	assert.Equal(t, "https://youtu.be/abc", runner.args[len(runner.args)-1])
}

func TestYtDlpInsecureFlags(t *testing.T) {
	runner := &recordingRunner{}
	y := NewInsecureYtDlp("yt-dlp", runner, afero.NewMemMapFs())

	_, err := y.Fetch(context.Background(), "https://youtu.be/abc", "/job/x")
	assert.Error(t, err, "no output file was written")
	assert.Contains(t, runner.args, "--no-check-certificates")
	assert.Contains(t, runner.args, "--force-ipv4")
	assert.Contains(t, runner.args, "--geo-bypass")
}

func TestBuild(t *testing.T) {
	cfg := config.RelayConfig{
		Strategies: []string{"ytdlp-mobile", "cobalt", "piped", "ytdlp-insecure"},
		YtDlpPath:  "yt-dlp",
		MinBytes:   1000,
	}
	chain, err := Build(cfg, &recordingRunner{}, http.DefaultClient, afero.NewMemMapFs())
	require.NoError(t, err)
	assert.Equal(t, cfg.Strategies, chain.Names())

	cfg.Strategies = []string{"moviepy"}
	_, err = Build(cfg, &recordingRunner{}, http.DefaultClient, afero.NewMemMapFs())
	assert.Error(t, err)
}
