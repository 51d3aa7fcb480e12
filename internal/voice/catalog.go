package voice

import (
	"sort"
	"strings"
)

type EngineKind string

const (
	EnginePrimary   EngineKind = "primary"
	EngineAlternate EngineKind = "alternate"
)

type Voice struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Gender     string     `json:"gender"`
	Engine     EngineKind `json:"engine"`
	FallbackID string     `json:"fallback_id,omitempty"`
}

// Catalog maps languages to the voices offered for them.
type Catalog struct {
	voices        map[string][]Voice
	defaults      map[string]string
	baseline      string
	globalDefault string
}

// Resolution is the voice chosen for a request plus the alternate-engine
// voice to use if the primary engine fails.
type Resolution struct {
	Voice      Voice
	FallbackID string
}

func NewCatalog(voices map[string][]Voice, defaults map[string]string, baseline, globalDefault string) *Catalog {
	return &Catalog{voices: voices, defaults: defaults, baseline: baseline, globalDefault: globalDefault}
}

// Languages returns every language with voices or a default voice, sorted.
func (c *Catalog) Languages() []string {
	seen := make(map[string]bool)
	for lang := range c.voices {
		seen[lang] = true
	}
	for lang := range c.defaults {
		seen[lang] = true
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Voices lists the voices for language. Languages with only a default voice
// get that single entry; unknown languages get the baseline list.
func (c *Catalog) Voices(language string) []Voice {
	if vs, ok := c.voices[language]; ok {
		return vs
	}
	if id, ok := c.defaults[language]; ok {
		return []Voice{{ID: id, Name: "Default Voice", Gender: "Neutral", Engine: EngineAlternate}}
	}
	return c.voices[c.baseline]
}

// Resolve picks the voice for (language, voiceID). An empty voiceID selects
// the language default. Ids not in the catalog are passed to the alternate
// engine unchanged.
func (c *Catalog) Resolve(language, voiceID string) Resolution {
	voiceID = strings.TrimSpace(voiceID)

	var v Voice
	switch {
	case voiceID == "":
		v = c.defaultVoice(language)
	default:
		found, ok := c.find(language, voiceID)
		if !ok {
			found = Voice{ID: voiceID, Name: voiceID, Engine: EngineAlternate}
		}
		v = found
	}

	res := Resolution{Voice: v}
	if v.Engine == EnginePrimary {
		res.FallbackID = c.fallbackFor(language, v)
	}
	return res
}

func (c *Catalog) defaultVoice(language string) Voice {
	if vs := c.voices[language]; len(vs) > 0 {
		return vs[0]
	}
	if id, ok := c.defaults[language]; ok {
		return Voice{ID: id, Name: "Default Voice", Gender: "Neutral", Engine: EngineAlternate}
	}
	return Voice{ID: c.globalDefault, Name: "Default Voice", Gender: "Neutral", Engine: EngineAlternate}
}

// find looks in the requested language first, then everywhere else.
func (c *Catalog) find(language, id string) (Voice, bool) {
	for _, v := range c.voices[language] {
		if v.ID == id {
			return v, true
		}
	}
	for _, vs := range c.voices {
		for _, v := range vs {
			if v.ID == id {
				return v, true
			}
		}
	}
	return Voice{}, false
}

func (c *Catalog) fallbackFor(language string, v Voice) string {
	if v.FallbackID != "" {
		return v.FallbackID
	}
	for _, alt := range c.voices[language] {
		if alt.Engine == EngineAlternate {
			return alt.ID
		}
	}
	if id, ok := c.defaults[language]; ok {
		return id
	}
	return c.globalDefault
}
