package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SupabaseStorage uploads into a public Supabase Storage bucket.
type SupabaseStorage struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

func NewSupabaseStorage(supabaseURL, serviceKey, bucket string) *SupabaseStorage {
	return &SupabaseStorage{
		baseURL:    supabaseURL + "/storage/v1",
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (s *SupabaseStorage) Save(ctx context.Context, name string, data io.Reader, contentType string) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, data)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("upload failed (%d): %s", resp.StatusCode, string(body))
	}

	return s.PublicURL(name), nil
}

func (s *SupabaseStorage) PublicURL(name string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, name)
}
