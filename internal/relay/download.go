package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/afero"
)

const mobileUserAgent = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Mobile Safari/537.36"

// downloader streams a resolved direct URL to disk.
type downloader struct {
	client *http.Client
	fs     afero.Fs
}

func (d *downloader) download(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("User-Agent", mobileUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download: status %d", resp.StatusCode)
	}

	tmp := dest + ".part"
	f, err := d.fs.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", tmp, err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = d.fs.Remove(tmp)
		return 0, fmt.Errorf("write download: %w", err)
	}
	if err := d.fs.Rename(tmp, dest); err != nil {
		_ = d.fs.Remove(tmp)
		return 0, fmt.Errorf("finalize download: %w", err)
	}
	return n, nil
}
