// Package transcription uploads media artifacts to a remote engine, waits for
// them to become usable, and asks the engine for a structured reply.
package transcription

import "context"

type FileState string

const (
	StateUploading  FileState = "uploading"
	StateProcessing FileState = "processing"
	StateReady      FileState = "ready"
	StateFailed     FileState = "failed"
)

// RemoteFile is the engine-side handle of an uploaded artifact.
type RemoteFile struct {
	Name     string
	URI      string
	MimeType string
	State    FileState
}

type GenerateRequest struct {
	File   *RemoteFile
	Prompt string
}

// Engine is the remote transcription service. Rate-limit rejections must be
// returned as apperr.KindEngineRateLimited errors.
type Engine interface {
	Upload(ctx context.Context, path, mimeType string) (*RemoteFile, error)
	GetFile(ctx context.Context, name string) (*RemoteFile, error)
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	DeleteFile(ctx context.Context, name string) error
	ListModels(ctx context.Context) ([]string, error)
}
