package voice

import (
	"sort"
	"strconv"
	"strings"
)

// Prosody is the rate and pitch offset applied for an emotion, in edge-tts
// notation ("+10%", "-5Hz").
type Prosody struct {
	Rate  string `json:"rate"`
	Pitch string `json:"pitch"`
}

const Neutral = "Neutral"

var emotions = map[string]Prosody{
	Neutral:      {Rate: "+0%", Pitch: "+0Hz"},
	"Excited":    {Rate: "+10%", Pitch: "+5Hz"},
	"Sad":        {Rate: "-10%", Pitch: "-5Hz"},
	"Whispering": {Rate: "-5%", Pitch: "+0Hz"},
	"Calm":       {Rate: "-5%", Pitch: "-2Hz"},
	"Angry":      {Rate: "+5%", Pitch: "+3Hz"},
}

// LookupEmotion matches label case-insensitively; anything unknown is Neutral.
func LookupEmotion(label string) Prosody {
	label = strings.TrimSpace(label)
	for name, p := range emotions {
		if strings.EqualFold(name, label) {
			return p
		}
	}
	return emotions[Neutral]
}

// Emotions lists the supported labels with Neutral first.
func Emotions() []string {
	names := make([]string, 0, len(emotions))
	for name := range emotions {
		if name != Neutral {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{Neutral}, names...)
}

// SpeedFactor converts the rate offset into a playback multiplier (+10% -> 1.1).
func (p Prosody) SpeedFactor() float64 {
	pct, err := strconv.ParseFloat(strings.TrimSuffix(p.Rate, "%"), 64)
	if err != nil {
		return 1
	}
	return 1 + pct/100
}
