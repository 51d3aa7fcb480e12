// Package gemini is a small REST client for the Gemini Files and
// generateContent APIs.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	FileStateProcessing = "PROCESSING"
	FileStateActive     = "ACTIVE"
	FileStateFailed     = "FAILED"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	fs         afero.Fs
}

func NewClient(apiKey, baseURL string, timeout time.Duration, fs afero.Fs) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		fs:         fs,
	}
}

type File struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName,omitempty"`
	MimeType    string  `json:"mimeType"`
	URI         string  `json:"uri"`
	State       string  `json:"state"`
	Error       *Status `json:"error,omitempty"`
}

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type FileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type Part struct {
	Text     string    `json:"text,omitempty"`
	FileData *FileData `json:"fileData,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type GenerateRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type GenerateResponse struct {
	Candidates     []Candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	UsageMetadata UsageMetadata `json:"usageMetadata"`
}

// Text concatenates the text parts of the first candidate.
func (r *GenerateResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

type Model struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini: %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err is a quota or rate-limit rejection.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
}

// UploadFile sends a local file with the multipart upload protocol. The
// body is streamed from disk, so large artifacts are never held in memory.
func (c *Client) UploadFile(ctx context.Context, path, mimeType string) (*File, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		defer f.Close()
		pw.CloseWithError(writeUpload(mw, f, filepath.Base(path), mimeType))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/v1beta/files", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())
	req.Header.Set("X-Goog-Upload-Protocol", "multipart")

	var out struct {
		File File `json:"file"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}
	return &out.File, nil
}

func writeUpload(mw *multipart.Writer, media io.Reader, displayName, mimeType string) error {
	meta, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return err
	}
	if err := json.NewEncoder(meta).Encode(map[string]any{
		"file": map[string]string{"displayName": displayName},
	}); err != nil {
		return err
	}

	part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {mimeType}})
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, media); err != nil {
		return fmt.Errorf("read %s: %w", displayName, err)
	}
	return mw.Close()
}

func (c *Client) GetFile(ctx context.Context, name string) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1beta/"+name, nil)
	if err != nil {
		return nil, err
	}
	var out File
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("get file %s: %w", name, err)
	}
	return &out, nil
}

func (c *Client) DeleteFile(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v1beta/"+name, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("delete file %s: %w", name, err)
	}
	return nil
}

func (c *Client) GenerateContent(ctx context.Context, model string, genReq GenerateRequest) (*GenerateResponse, error) {
	payload, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, strings.TrimPrefix(model, "models/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out GenerateResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("generate content: prompt blocked: %s", out.PromptFeedback.BlockReason)
	}
	return &out, nil
}

// ListModels returns every model the key can see.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var models []Model
	pageToken := ""
	for {
		endpoint := c.baseURL + "/v1beta/models?pageSize=100"
		if pageToken != "" {
			endpoint += "&pageToken=" + url.QueryEscape(pageToken)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		var page struct {
			Models        []Model `json:"models"`
			NextPageToken string  `json:"nextPageToken"`
		}
		if err := c.do(req, &page); err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		models = append(models, page.Models...)
		if page.NextPageToken == "" {
			return models, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}

	var envelope struct {
		Error Status `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
