package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when the model's reply contains no JSON object at all.
var ErrNoJSON = errors.New("llm: no JSON object in model reply")

// ExtractedLead is the structured result of mining a conversation for lead
// information. Pointer fields distinguish "not mentioned" (nil) from an
// explicit empty string.
type ExtractedLead struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	BusinessName *string `json:"businessName"`
	Website      *string `json:"website"`
	ProjectType  *string `json:"projectType"`
	BudgetRange  *string `json:"budgetRange"`
	Timeline     *string `json:"timeline"`
	Requirements *string `json:"requirements"`
	Confidence   float64 `json:"confidence"`
}

// HasContactInfo reports whether the lead carries at least one of email,
// phone, or name. Leads without any contact info are not worth recording.
func (l *ExtractedLead) HasContactInfo() bool {
	return notBlank(l.Email) || notBlank(l.Phone) || notBlank(l.Name)
}

func notBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// ParseLeadJSON parses an ExtractedLead out of a model's free-text reply.
//
// Models wrap JSON in markdown fences, preambles, and trailing prose, so the
// reply is first narrowed to its first balanced {...} region before
// unmarshalling. This is the single fragile boundary between model output and
// typed data; callers treat any error as "no lead this turn".
func ParseLeadJSON(text string) (*ExtractedLead, error) {
	raw, err := firstJSONObject(text)
	if err != nil {
		return nil, err
	}
	var lead ExtractedLead
	if err := json.Unmarshal([]byte(raw), &lead); err != nil {
		return nil, err
	}
	if lead.Confidence < 0 {
		lead.Confidence = 0
	} else if lead.Confidence > 1 {
		lead.Confidence = 1
	}
	return &lead, nil
}

// firstJSONObject returns the first balanced top-level {...} substring,
// ignoring braces inside JSON string literals.
func firstJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSON
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}
