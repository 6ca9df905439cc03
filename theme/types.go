package theme

// ClassSet holds the style classes derived from a single color name.
type ClassSet struct {
	Color      string `json:"color"`
	Recognized bool   `json:"recognized"`
	Text       string `json:"text"`
	Border     string `json:"border"`
	Suggestion string `json:"suggestion"`
}
