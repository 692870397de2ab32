package assistant

// Style is a verbosity hint affecting prompt instructions only.
type Style string

const (
	StyleShort    Style = "short"
	StyleDetailed Style = "detailed"
)

// NormalizeStyle maps unknown or empty styles to StyleShort.
func NormalizeStyle(style string) Style {
	if Style(style) == StyleDetailed {
		return StyleDetailed
	}

	return StyleShort
}

type AskRequest struct {
	Message   string
	SessionID string
	Style     string
}

// StructuredResponse is the fixed-shape contract returned to every caller.
// All four fields are always present, missing model output defaults to
// empty values rather than an error.
type StructuredResponse struct {
	Answer             string   `json:"answer"`
	KeyPoints          []string `json:"key_points"`
	SuggestedQuestions []string `json:"suggested_questions"`
	References         []string `json:"references"`
}

func (r *StructuredResponse) normalize() {
	if r.KeyPoints == nil {
		r.KeyPoints = []string{}
	}
	if r.SuggestedQuestions == nil {
		r.SuggestedQuestions = []string{}
	}
	if r.References == nil {
		r.References = []string{}
	}
}
