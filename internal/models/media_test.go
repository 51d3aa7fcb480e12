package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikhilbhutani/mediainsight/internal/apperr"
)

func TestJobInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      JobInput
		wantErr bool
	}{
		{"text ok", JobInput{Kind: InputText, UserID: "u1", Text: "hello"}, false},
		{"link ok", JobInput{Kind: InputLink, UserID: "u1", URL: "https://youtu.be/abc"}, false},
		{"media ok", JobInput{Kind: InputMedia, UserID: "u1", Data: strings.NewReader("x")}, false},
		{"missing user", JobInput{Kind: InputText, Text: "hello"}, true},
		{"blank user", JobInput{Kind: InputText, UserID: "  ", Text: "hello"}, true},
		{"empty text", JobInput{Kind: InputText, UserID: "u1"}, true},
		{"two payloads", JobInput{Kind: InputLink, UserID: "u1", URL: "https://x", Text: "hi"}, true},
		{"media without data", JobInput{Kind: InputMedia, UserID: "u1"}, true},
		{"unknown kind", JobInput{Kind: "fax", UserID: "u1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, apperr.KindInput, apperr.KindOf(err))
		})
	}
}
