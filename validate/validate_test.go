package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSuccess(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{"BareJSON", `{"status":"success","source_title":"T","source_url":"https://x","information":"I"}`},
		{"WrappedInProse", "Here is what I found:\n" +
			`{"status":"success","source_title":"T","source_url":"https://x","information":"I"}` +
			"\nHope that helps!"},
		{"Multiline", "{\n  \"status\": \"success\",\n  \"source_title\": \"T\",\n  \"source_url\": \"https://x\",\n  \"information\": \"I\"\n}"},
		{"PaddedFields", `{"status":"success","source_title":"  T  ","source_url":" https://x ","information":" I "}`},
	}
	want := "Source: T\nURL: https://x\n\nI"
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Validate(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("Validate() = %q, want %q", got, want)
			}
		})
	}
}

func TestValidateMalformedJSON(t *testing.T) {
	long := strings.Repeat("x", 500)
	got, err := Validate(long)
	if got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
	var malformed *MalformedJSONError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedJSONError, got %T: %v", err, err)
	}
	if !strings.Contains(malformed.Preview, "xxx") {
		t.Errorf("preview should contain a prefix of the input: %q", malformed.Preview)
	}
	if len(malformed.Preview) > 120 {
		t.Errorf("preview is unbounded: %d chars", len(malformed.Preview))
	}
}

func TestValidatePartialJSON(t *testing.T) {
	_, err := Validate(`{"status":"success","source_title":`)
	var malformed *MalformedJSONError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedJSONError, got %T: %v", err, err)
	}
}

func TestValidateUpstreamError(t *testing.T) {
	_, err := Validate(`{"status":"error","information":"page was a captcha wall"}`)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if upstream.Information != "page was a captcha wall" {
		t.Errorf("unexpected information: %q", upstream.Information)
	}
}

func TestValidateInvalidStatus(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{"MissingStatus", `{"source_title":"T"}`},
		{"UnknownStatus", `{"status":"partial"}`},
		{"NumericStatus", `{"status":42}`},
		{"NullStatus", `{"status":null}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.raw)
			var invalid *InvalidStatusError
			if !errors.As(err, &invalid) {
				t.Errorf("expected InvalidStatusError, got %T: %v", err, err)
			}
		})
	}
}

func TestValidateMissingFields(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{"NoFields", `{"status":"success"}`},
		{"MissingInformation", `{"status":"success","source_title":"T","source_url":"https://x"}`},
		{"WrongType", `{"status":"success","source_title":1,"source_url":"https://x","information":"I"}`},
		{"NullField", `{"status":"success","source_title":null,"source_url":"https://x","information":"I"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.raw)
			var missing *MissingFieldsError
			if !errors.As(err, &missing) {
				t.Errorf("expected MissingFieldsError, got %T: %v", err, err)
			}
		})
	}
}

func TestValidateEmptyFieldOrder(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		wantField string
	}{
		{"AllEmpty", `{"status":"success","source_title":"","source_url":"","information":""}`, "source_title"},
		{"TitleAndURLEmpty", `{"status":"success","source_title":" ","source_url":"","information":"I"}`, "source_title"},
		{"URLEmpty", `{"status":"success","source_title":"T","source_url":"  ","information":""}`, "source_url"},
		{"InformationEmpty", `{"status":"success","source_title":"T","source_url":"https://x","information":"\t"}`, "information"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.raw)
			var empty *EmptyFieldError
			if !errors.As(err, &empty) {
				t.Fatalf("expected EmptyFieldError, got %T: %v", err, err)
			}
			if empty.Field != tc.wantField {
				t.Errorf("reported field %q, want %q", empty.Field, tc.wantField)
			}
		})
	}
}

func TestValidateErrorsAreReadable(t *testing.T) {
	inputs := []string{
		"not json",
		`{"status":"nope"}`,
		`{"status":"success"}`,
		`{"status":"success","source_title":"","source_url":"","information":""}`,
		`{"status":"error","information":""}`,
	}
	for _, in := range inputs {
		_, err := Validate(in)
		if err == nil {
			t.Fatalf("expected error for %q", in)
		}
		msg := err.Error()
		if strings.TrimSpace(msg) == "" {
			t.Errorf("error for %q has empty message", in)
		}
	}
}
