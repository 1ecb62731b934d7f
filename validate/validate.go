// Package validate checks and formats the JSON payload produced by the
// lookup sub-task. Every possible payload is classified into exactly one
// formatted success or one typed error; nothing panics.
package validate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// previewLen bounds how much of the raw text is echoed back in a
// malformed-JSON error.
const previewLen = 100

// The first {...} span in the raw text, spanning newlines. Models often
// wrap the payload in prose.
var jsonSpan = regexp.MustCompile(`(?s)\{.*\}`)

// MalformedJSONError reports text that could not be decoded as JSON. The
// Preview is a bounded prefix of the original raw text.
type MalformedJSONError struct {
	Preview string
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("response was not valid JSON: %s", e.Preview)
}

// UpstreamError carries an error the sub-task itself reported via
// status "error".
type UpstreamError struct {
	Information string
}

func (e *UpstreamError) Error() string {
	if strings.TrimSpace(e.Information) == "" {
		return "lookup reported an error with no details"
	}
	return e.Information
}

// InvalidStatusError reports a missing, wrong-typed or unrecognized
// status field.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	if e.Status == "" {
		return "response is missing a valid status field"
	}
	return fmt.Sprintf("response has unrecognized status %q", e.Status)
}

// MissingFieldsError reports a success payload lacking one of the
// required string fields.
type MissingFieldsError struct{}

func (e *MissingFieldsError) Error() string {
	return "success response is missing source_title, source_url or information"
}

// EmptyFieldError reports a required field that is present but empty
// after trimming.
type EmptyFieldError struct {
	Field string
}

func (e *EmptyFieldError) Error() string {
	return fmt.Sprintf("success response has an empty %s field", e.Field)
}

// Validate decodes the sub-task's raw output and either formats the final
// lookup result or returns one of the typed errors above. The formatted
// result is:
//
//	Source: <source_title>
//	URL: <source_url>
//
//	<information>
func Validate(raw string) (string, error) {
	candidate := raw
	if span := jsonSpan.FindString(raw); span != "" {
		candidate = span
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return "", &MalformedJSONError{Preview: preview(raw)}
	}

	status, ok := payload["status"].(string)
	switch {
	case ok && status == "success":
		// fall through to field validation
	case ok && status == "error":
		info, _ := payload["information"].(string)
		return "", &UpstreamError{Information: info}
	default:
		return "", &InvalidStatusError{Status: status}
	}

	title, titleOK := payload["source_title"].(string)
	url, urlOK := payload["source_url"].(string)
	info, infoOK := payload["information"].(string)
	if !titleOK || !urlOK || !infoOK {
		return "", &MissingFieldsError{}
	}

	// Empty checks run in a fixed order; the first failure wins.
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	info = strings.TrimSpace(info)
	switch {
	case title == "":
		return "", &EmptyFieldError{Field: "source_title"}
	case url == "":
		return "", &EmptyFieldError{Field: "source_url"}
	case info == "":
		return "", &EmptyFieldError{Field: "information"}
	}

	return fmt.Sprintf("Source: %s\nURL: %s\n\n%s", title, url, info), nil
}

func preview(raw string) string {
	runes := []rune(raw)
	if len(runes) <= previewLen {
		return raw
	}
	return string(runes[:previewLen]) + "..."
}
