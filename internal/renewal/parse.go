package renewal

import (
	"encoding/json"
	"errors"
	"strings"
)

// Comparison is the interpreted model output: either an email with its
// attachment, or the raw text when neither could be found.
type Comparison struct {
	Email        string
	Attachment   string
	Raw          string
	ParsingError string
}

// Parsed reports whether email and attachment were recovered.
func (c Comparison) Parsed() bool {
	return c.ParsingError == ""
}

// MarshalJSON renders {email, attachment} or {comparison, parsing_error}.
func (c Comparison) MarshalJSON() ([]byte, error) {
	if !c.Parsed() {
		return json.Marshal(map[string]string{"comparison": c.Raw, "parsing_error": c.ParsingError})
	}
	return json.Marshal(map[string]string{"email": c.Email, "attachment": c.Attachment})
}

var errNoMarkers = errors.New("response is neither JSON nor contains email/attachment markers")

// Parse interprets a model response. JSON is tried first, then the email and
// attachment markers; anything else is returned raw. It never fails.
func Parse(response string) Comparison {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, `"email"`) {
		cleaned = "{" + cleaned + "}"
	}

	var obj struct {
		Email      string `json:"email"`
		Attachment string `json:"attachment"`
	}
	if strings.HasPrefix(cleaned, "{") && json.Unmarshal([]byte(cleaned), &obj) == nil {
		return Comparison{Email: obj.Email, Attachment: obj.Attachment}
	}

	email, emailFound := afterMarker(response, "email")
	if emailFound {
		if end, ok := markerStart(email, "attachment"); ok {
			email = email[:end]
		}
	}
	attachment, attachmentFound := afterMarker(response, "attachment")
	if !emailFound && !attachmentFound {
		return Comparison{Raw: response, ParsingError: errNoMarkers.Error()}
	}
	return Comparison{
		Email:      unquote(strings.TrimSpace(email)),
		Attachment: unquote(strings.TrimSpace(attachment)),
	}
}

func isSeparator(b byte) bool {
	switch b {
	case '"', ':', ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// markerStart finds the first marker followed by at least one separator and
// one more character.
func markerStart(s, marker string) (int, bool) {
	from := 0
	for {
		idx := strings.Index(s[from:], marker)
		if idx < 0 {
			return 0, false
		}
		start := from + idx
		end := start + len(marker)
		if end < len(s) && isSeparator(s[end]) {
			return start, true
		}
		from = start + 1
	}
}

// afterMarker returns the text after the first marker and its separators.
func afterMarker(s, marker string) (string, bool) {
	from := 0
	for {
		start, ok := markerStart(s[from:], marker)
		if !ok {
			return "", false
		}
		i := from + start + len(marker)
		for i < len(s) && isSeparator(s[i]) {
			i++
		}
		if i < len(s) {
			return s[i:], true
		}
		from += start + 1
	}
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
