package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, afero.Fs) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	fs := afero.NewMemMapFs()
	return NewClient("test-key", srv.URL, 5*time.Second, fs), fs
}

func TestUploadFile(t *testing.T) {
	c, fs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload/v1beta/files", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "multipart", r.Header.Get("X-Goog-Upload-Protocol"))

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/related", mediaType)

		mr := multipart.NewReader(r.Body, params["boundary"])
		meta, err := mr.NextPart()
		require.NoError(t, err)
		var m map[string]map[string]string
		require.NoError(t, json.NewDecoder(meta).Decode(&m))
		assert.Equal(t, "clip.mp3", m["file"]["displayName"])

		media, err := mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "audio/mp3", media.Header.Get("Content-Type"))
		data, _ := io.ReadAll(media)
		assert.Equal(t, "audio-bytes", string(data))

		_, _ = w.Write([]byte(`{"file":{"name":"files/abc","uri":"https://example/files/abc","mimeType":"audio/mp3","state":"PROCESSING"}}`))
	})
	require.NoError(t, afero.WriteFile(fs, "/job/clip.mp3", []byte("audio-bytes"), 0o644))

	f, err := c.UploadFile(context.Background(), "/job/clip.mp3", "audio/mp3")
	require.NoError(t, err)
	assert.Equal(t, "files/abc", f.Name)
	assert.Equal(t, FileStateProcessing, f.State)
}

// gatedFs hands out files whose reads wait for the server to start handling
// the request, so a client that reads the whole file before sending fails.
type gatedFs struct {
	afero.Fs
	started <-chan struct{}
}

func (g gatedFs) Open(name string) (afero.File, error) {
	f, err := g.Fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &gatedFile{File: f, started: g.started}, nil
}

type gatedFile struct {
	afero.File
	started <-chan struct{}
}

func (f *gatedFile) Read(p []byte) (int, error) {
	select {
	case <-f.started:
		return f.File.Read(p)
	case <-time.After(3 * time.Second):
		return 0, errors.New("file read before the request reached the server")
	}
}

func TestUploadFileStreamsFromDisk(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), 64*1024)
	started := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, int64(-1), r.ContentLength)

		mr := multipart.NewReader(r.Body, params["boundary"])
		_, err = mr.NextPart()
		require.NoError(t, err)
		media, err := mr.NextPart()
		require.NoError(t, err)
		data, err := io.ReadAll(media)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(payload, data))

		_, _ = w.Write([]byte(`{"file":{"name":"files/big","state":"PROCESSING"}}`))
	}))
	defer srv.Close()

	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/job/input.mp4", payload, 0o644))
	c := NewClient("test-key", srv.URL, 10*time.Second, gatedFs{Fs: mem, started: started})

	f, err := c.UploadFile(context.Background(), "/job/input.mp4", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "files/big", f.Name)
}

func TestUploadFileMissing(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.UploadFile(context.Background(), "/job/none.mp3", "audio/mp3")
	assert.ErrorContains(t, err, "open /job/none.mp3")
}

func TestGetAndDeleteFile(t *testing.T) {
	var deleted bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/files/abc", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"name":"files/abc","state":"ACTIVE","uri":"u","mimeType":"audio/mp3"}`))
		case http.MethodDelete:
			deleted = true
			_, _ = w.Write([]byte(`{}`))
		}
	})

	f, err := c.GetFile(context.Background(), "files/abc")
	require.NoError(t, err)
	assert.Equal(t, FileStateActive, f.State)

	require.NoError(t, c.DeleteFile(context.Background(), "files/abc"))
	assert.True(t, deleted)
}

func TestGenerateContent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-flash-latest:generateContent", r.URL.Path)

		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.Equal(t, "https://example/files/abc", req.Contents[0].Parts[0].FileData.FileURI)
		assert.Equal(t, "describe", req.Contents[0].Parts[1].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"world"}]}}]}`))
	})

	resp, err := c.GenerateContent(context.Background(), "models/gemini-flash-latest", GenerateRequest{
		Contents: []Content{{Role: "user", Parts: []Part{
			{FileData: &FileData{MimeType: "audio/mp3", FileURI: "https://example/files/abc"}},
			{Text: "describe"},
		}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", resp.Text())
}

func TestRateLimitError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := c.GenerateContent(context.Background(), "gemini-flash-latest", GenerateRequest{})
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Quota exceeded", apiErr.Message)
}

func TestServerErrorIsNotRateLimit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.GetFile(context.Background(), "files/abc")
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))
}

func TestBlockedPrompt(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	_, err := c.GenerateContent(context.Background(), "m", GenerateRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestListModelsPaginates(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = w.Write([]byte(`{"models":[{"name":"models/a","supportedGenerationMethods":["generateContent"]}],"nextPageToken":"p2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"models/b","supportedGenerationMethods":["embedContent"]}]}`))
	})

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "models/b", models[1].Name)
}
