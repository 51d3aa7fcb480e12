package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/afero"
)

// Cobalt resolves links through public cobalt API instances.
type Cobalt struct {
	instances []string
	client    *http.Client
	dl        *downloader
}

type cobaltRequest struct {
	URL          string `json:"url"`
	DownloadMode string `json:"downloadMode"`
	AudioFormat  string `json:"audioFormat"`
}

type cobaltResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Audio  string `json:"audio"`
	Error  *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func NewCobalt(instances []string, client *http.Client, fs afero.Fs) *Cobalt {
	return &Cobalt{instances: instances, client: client, dl: &downloader{client: client, fs: fs}}
}

func (c *Cobalt) Name() string { return "cobalt" }

func (c *Cobalt) Fetch(ctx context.Context, url, destBase string) (string, error) {
	dest := destBase + ".mp3"
	var errs []error
	for _, instance := range c.instances {
		direct, err := c.resolve(ctx, instance, url)
		if err != nil {
			slog.Debug("cobalt node failed", "instance", instance, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", instance, err))
			continue
		}
		if _, err := c.dl.download(ctx, direct, dest); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", instance, err))
			continue
		}
		return dest, nil
	}
	if len(errs) == 0 {
		return "", errors.New("no cobalt instances configured")
	}
	return "", errors.Join(errs...)
}

func (c *Cobalt) resolve(ctx context.Context, instance, url string) (string, error) {
	body, err := json.Marshal(cobaltRequest{URL: url, DownloadMode: "audio", AudioFormat: "mp3"})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(instance, "/") + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var out cobaltResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	switch out.Status {
	case "tunnel", "redirect", "stream":
		if out.URL == "" {
			return "", fmt.Errorf("status %s without url", out.Status)
		}
		return out.URL, nil
	case "picker":
		if out.Audio == "" {
			return "", errors.New("picker response without audio")
		}
		return out.Audio, nil
	case "error":
		if out.Error != nil {
			return "", fmt.Errorf("cobalt error %s", out.Error.Code)
		}
		return "", errors.New("cobalt error")
	default:
		return "", fmt.Errorf("unexpected status %q", out.Status)
	}
}
