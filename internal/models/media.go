package models

import (
	"io"
	"strings"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
)

type InputKind string

const (
	InputMedia InputKind = "media"
	InputLink  InputKind = "link"
	InputText  InputKind = "text"
)

// JobInput carries exactly one of an uploaded file, a link, or raw text.
type JobInput struct {
	Kind     InputKind
	UserID   string
	Filename string
	Data     io.Reader
	URL      string
	Text     string
}

func (in JobInput) Validate() error {
	if strings.TrimSpace(in.UserID) == "" {
		return apperr.Input("User ID is required.")
	}
	switch in.Kind {
	case InputMedia:
		if in.Data == nil {
			return apperr.Input("A file is required.")
		}
		if in.URL != "" || in.Text != "" {
			return apperr.Input("Provide exactly one of file, url or text.")
		}
	case InputLink:
		if strings.TrimSpace(in.URL) == "" {
			return apperr.Input("A URL is required.")
		}
		if in.Data != nil || in.Text != "" {
			return apperr.Input("Provide exactly one of file, url or text.")
		}
	case InputText:
		if strings.TrimSpace(in.Text) == "" {
			return apperr.Input("Text is required.")
		}
		if in.Data != nil || in.URL != "" {
			return apperr.Input("Provide exactly one of file, url or text.")
		}
	default:
		return apperr.Input("Unsupported input type.")
	}
	return nil
}

// Artifact is a local media file ready for upload to the transcription engine.
type Artifact struct {
	Path     string `json:"path"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

func (a Artifact) IsVideo() bool {
	return strings.HasPrefix(a.MimeType, "video/")
}

// StructuredResult is the three-section output of a transcription job.
type StructuredResult struct {
	Transcript string `json:"transcript"`
	BlogPost   string `json:"blog_post"`
	Summary    string `json:"summary"`
}
