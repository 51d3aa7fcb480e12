package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/spf13/afero"
)

// Piped resolves YouTube audio streams through Piped API instances.
type Piped struct {
	instances []string
	client    *http.Client
	dl        *downloader
}

type pipedStreams struct {
	Error        string        `json:"error"`
	AudioStreams []pipedStream `json:"audioStreams"`
}

type pipedStream struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
	Bitrate  int    `json:"bitrate"`
}

func NewPiped(instances []string, client *http.Client, fs afero.Fs) *Piped {
	return &Piped{instances: instances, client: client, dl: &downloader{client: client, fs: fs}}
}

func (p *Piped) Name() string { return "piped" }

func (p *Piped) Fetch(ctx context.Context, url, destBase string) (string, error) {
	id, err := YouTubeID(url)
	if err != nil {
		return "", err
	}

	var errs []error
	for _, instance := range p.instances {
		stream, err := p.bestAudio(ctx, instance, id)
		if err != nil {
			slog.Debug("piped node failed", "instance", instance, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", instance, err))
			continue
		}
		dest := destBase + extForStream(stream.MimeType)
		if _, err := p.dl.download(ctx, stream.URL, dest); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", instance, err))
			continue
		}
		return dest, nil
	}
	if len(errs) == 0 {
		return "", errors.New("no piped instances configured")
	}
	return "", errors.Join(errs...)
}

func (p *Piped) bestAudio(ctx context.Context, instance, id string) (pipedStream, error) {
	endpoint := strings.TrimRight(instance, "/") + "/streams/" + neturl.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pipedStream{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return pipedStream{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pipedStream{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out pipedStreams
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return pipedStream{}, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return pipedStream{}, fmt.Errorf("piped error: %s", out.Error)
	}

	var best pipedStream
	for _, s := range out.AudioStreams {
		if s.URL != "" && s.Bitrate > best.Bitrate {
			best = s
		}
	}
	if best.URL == "" {
		return pipedStream{}, errors.New("no audio streams")
	}
	return best, nil
}

func extForStream(mime string) string {
	switch {
	case strings.Contains(mime, "webm"):
		return ".webm"
	case strings.Contains(mime, "mp4"):
		return ".m4a"
	default:
		return ".audio"
	}
}

// YouTubeID extracts the video id from watch, short, shorts, embed and live URLs.
func YouTubeID(raw string) (string, error) {
	u, err := neturl.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch {
	case host == "youtu.be":
		if segments[0] != "" {
			return segments[0], nil
		}
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			return v, nil
		}
		if len(segments) == 2 {
			switch segments[0] {
			case "shorts", "embed", "live", "v":
				return segments[1], nil
			}
		}
	}
	return "", fmt.Errorf("not a youtube video url: %s", raw)
}
