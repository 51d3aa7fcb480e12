package parser

import (
	"regexp"
	"strings"
)

const clock = `\d{1,2}:\d{2}(?::\d{2})?`

var (
	// *1:02 - 3:04*, **[00:01-00:05]**
	starredRange = regexp.MustCompile(`\*{1,2}\s*[\[(]?\s*` + clock + `(?:\s*(?:-|–|to)\s*` + clock + `)?\s*[\])]?\s*\*{1,2}`)
	// [12:34], (0:01 - 0:05)
	bracketedTime = regexp.MustCompile(`[\[(]\s*` + clock + `(?:\s*(?:-|–)\s*` + clock + `)?\s*[\])]`)
	// 12:34, 1:02:03 - 1:02:09
	bareTime   = regexp.MustCompile(`\b` + clock + `(?:\s*(?:-|–)\s*` + clock + `)?\b`)
	frameLabel = regexp.MustCompile(`\bFrame\s+\d+\b:?`)
	spaceRun   = regexp.MustCompile(`[ \t]+`)
)

// lineLead is separator punctuation left at the start of a line after its
// timestamp was removed.
const lineLead = " \t-–:|>*"

// CleanTranscript strips timestamps and frame markers while keeping the words
// and paragraph breaks of the transcript.
func CleanTranscript(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		cleaned := stripMarkers(line)
		if cleaned != line {
			cleaned = strings.TrimLeft(cleaned, lineLead)
		}
		cleaned = strings.TrimSpace(spaceRun.ReplaceAllString(cleaned, " "))

		if cleaned == "" {
			// Lines emptied by stripping disappear; real blank lines separate paragraphs.
			if strings.TrimSpace(line) == "" && len(out) > 0 && !blank {
				out = append(out, "")
				blank = true
			}
			continue
		}
		out = append(out, cleaned)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func stripMarkers(line string) string {
	line = starredRange.ReplaceAllString(line, "")
	line = bracketedTime.ReplaceAllString(line, "")
	line = bareTime.ReplaceAllString(line, "")
	return frameLabel.ReplaceAllString(line, "")
}

var speechMarkup = strings.NewReplacer("#", "", "*", "", "_", "")

var doubleSpace = regexp.MustCompile(` {2,}`)

// SanitizeForSpeech removes markdown emphasis and heading characters that a
// speech engine would otherwise read aloud.
func SanitizeForSpeech(s string) string {
	s = speechMarkup.Replace(s)
	s = doubleSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
