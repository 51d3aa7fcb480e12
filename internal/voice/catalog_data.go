package voice

const (
	BaselineLanguage = "English (US)"
	GlobalDefault    = "en-US-GuyNeural"
)

func alt(id, name, gender string) Voice {
	return Voice{ID: id, Name: name, Gender: gender, Engine: EngineAlternate}
}

// DefaultCatalog is the built-in voice list. Primary-engine voices are only
// offered when that engine is configured.
func DefaultCatalog(withPrimary bool) *Catalog {
	voices := map[string][]Voice{
		"English (US)": {
			alt("en-US-GuyNeural", "Guy (Male)", "Male"),
			alt("en-US-JennyNeural", "Jenny (Female)", "Female"),
			alt("en-US-AriaNeural", "Aria (Female - Cheerful)", "Female"),
			alt("en-US-ChristopherNeural", "Christopher (Male)", "Male"),
		},
		"English (UK)": {
			alt("en-GB-SoniaNeural", "Sonia (Female)", "Female"),
			alt("en-GB-RyanNeural", "Ryan (Male)", "Male"),
		},
		"English (Nigeria)": {
			alt("en-NG-AbeoNeural", "Abeo (Male)", "Male"),
			alt("en-NG-EzinneNeural", "Ezinne (Female)", "Female"),
		},
		"French": {
			alt("fr-FR-VivienneNeural", "Vivienne (Female)", "Female"),
			alt("fr-FR-HenriNeural", "Henri (Male)", "Male"),
		},
		"Spanish (Spain)": {
			alt("es-ES-ElviraNeural", "Elvira (Female)", "Female"),
			alt("es-ES-AlvaroNeural", "Alvaro (Male)", "Male"),
		},
		"Spanish (Mexico)": {
			alt("es-MX-DaliaNeural", "Dalia (Female)", "Female"),
			alt("es-MX-JorgeNeural", "Jorge (Male)", "Male"),
		},
		"German": {
			alt("de-DE-KatjaNeural", "Katja (Female)", "Female"),
			alt("de-DE-ConradNeural", "Conrad (Male)", "Male"),
		},
		"Chinese (Mandarin)": {
			alt("zh-CN-XiaoxiaoNeural", "Xiaoxiao (Female)", "Female"),
			alt("zh-CN-YunxiNeural", "Yunxi (Male)", "Male"),
		},
		"Japanese": {
			alt("ja-JP-NanamiNeural", "Nanami (Female)", "Female"),
			alt("ja-JP-KeitaNeural", "Keita (Male)", "Male"),
		},
		"Korean": {
			alt("ko-KR-SunHiNeural", "Sun-Hi (Female)", "Female"),
			alt("ko-KR-InJoonNeural", "In-Joon (Male)", "Male"),
		},
		"Portuguese (Brazil)": {
			alt("pt-BR-FranciscaNeural", "Francisca (Female)", "Female"),
			alt("pt-BR-AntonioNeural", "Antonio (Male)", "Male"),
		},
		"Hindi": {
			alt("hi-IN-SwaraNeural", "Swara (Female)", "Female"),
			alt("hi-IN-MadhurNeural", "Madhur (Male)", "Male"),
		},
	}

	if withPrimary {
		voices["English (US)"] = append(voices["English (US)"],
			Voice{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel (Female - Studio)", Gender: "Female", Engine: EnginePrimary, FallbackID: "en-US-JennyNeural"},
			Voice{ID: "pNInz6obpgDQGcFmaJgB", Name: "Adam (Male - Studio)", Gender: "Male", Engine: EnginePrimary, FallbackID: "en-US-GuyNeural"},
		)
		voices["French"] = append(voices["French"],
			Voice{ID: "ThT5KcBeYPX3keUQqHPh", Name: "Dorothy (Female - Studio)", Gender: "Female", Engine: EnginePrimary, FallbackID: "fr-FR-VivienneNeural"},
		)
	}

	defaults := map[string]string{
		"Arabic":  "ar-SA-HamedNeural",
		"Italian": "it-IT-DiegoNeural",
		"Russian": "ru-RU-DmitryNeural",
	}
	return NewCatalog(voices, defaults, BaselineLanguage, GlobalDefault)
}
