package models

import "time"

const (
	SourceMedia    = "media"
	SourceLink     = "link"
	SourceText     = "text"
	SourceDocument = "document"
)

type HistoryRecord struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"-" db:"user_id"`
	Filename   string    `json:"filename" db:"filename"`
	Source     string    `json:"source" db:"source"`
	Transcript string    `json:"transcript" db:"transcript"`
	BlogPost   string    `json:"blog_post" db:"blog_post"`
	Summary    string    `json:"summary" db:"summary"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
