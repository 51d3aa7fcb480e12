// Package parser splits the engine's semi-structured reply into transcript,
// blog post and summary, and cleans text for display and speech.
package parser

import (
	"regexp"
	"strings"

	"github.com/nikhilbhutani/mediainsight/internal/models"
)

const (
	HeadingTranscript = "Transcript"
	HeadingBlogPost   = "Blog Post"
	HeadingSummary    = "Summary"
)

var headings = []string{HeadingTranscript, HeadingBlogPost, HeadingSummary}

// headingTail is the decoration after a heading word on its own line,
// as in "**Summary:**" or "Blog Post ##".
var headingTail = regexp.MustCompile(`^[ \t*#:]*`)

// headingLead matches a line prefix holding only markdown or list decoration
// ahead of a heading word, as in "## 2. " or "**".
var headingLead = regexp.MustCompile(`^[ \t#*]*(?:\d+\.)?[ \t#*]*$`)

// Parse locates the three headings in order and returns the text between
// each heading and the next one found after it. A missing heading yields "".
func Parse(raw string) models.StructuredResult {
	sections := Sections(raw)
	return models.StructuredResult{
		Transcript: CleanTranscript(sections[HeadingTranscript]),
		BlogPost:   sections[HeadingBlogPost],
		Summary:    sections[HeadingSummary],
	}
}

// Sections returns the body of every heading, keyed by heading. Only the
// heading's own decoration and surrounding whitespace are removed.
func Sections(raw string) map[string]string {
	type span struct {
		name       string
		start, end int // heading start, body start
	}

	var found []span
	cursor := 0
	for _, h := range headings {
		idx := strings.Index(raw[cursor:], h)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		found = append(found, span{name: h, start: start, end: start + len(h)})
		cursor = start + len(h)
	}

	out := make(map[string]string, len(headings))
	for _, h := range headings {
		out[h] = ""
	}
	for i, s := range found {
		stop := len(raw)
		if i+1 < len(found) {
			stop = lineStart(raw, s.end, found[i+1].start)
		}
		body := raw[s.end:stop]
		body = body[len(headingTail.FindString(body)):]
		out[s.name] = strings.TrimSpace(body)
	}
	return out
}

// lineStart moves a heading offset back to the start of its line when only
// decoration precedes it there, never past floor.
func lineStart(raw string, floor, at int) int {
	from := floor
	if nl := strings.LastIndexByte(raw[floor:at], '\n'); nl >= 0 {
		from = floor + nl + 1
	}
	if headingLead.MatchString(raw[from:at]) {
		return from
	}
	return at
}
