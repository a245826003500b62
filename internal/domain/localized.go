package domain

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSwedish Language = "sv"
)

// LocalizedText carries the same text in both languages the restaurant
// publishes in.
type LocalizedText struct {
	English string `json:"english"`
	Swedish string `json:"swedish"`
}

// Pick returns the text for the requested language. When that language has
// no text, the other one is returned instead so the UI never shows a hole.
func (t LocalizedText) Pick(lang Language) string {
	if lang == LanguageSwedish {
		if t.Swedish != "" {
			return t.Swedish
		}
		return t.English
	}
	if t.English != "" {
		return t.English
	}
	return t.Swedish
}

// IsEmpty reports whether neither language has any text.
func (t LocalizedText) IsEmpty() bool {
	return t.English == "" && t.Swedish == ""
}
