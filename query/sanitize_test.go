package query

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"PlainText", "golang concurrency patterns", "golang concurrency patterns"},
		{"ShellInjection", "test; rm -rf /", "test rm -rf "},
		{"Backticks", "`whoami`", "whoami"},
		{"DollarExpansion", "$(cat /etc/passwd)", "cat etcpasswd"},
		{"PipesAndRedirects", "a | b > c < d", "a  b  c  d"},
		{"KeptPunctuation", `what's "this", really?!`, `what's "this", really?!`},
		{"Unicode", "café über ☃", "caf ber "},
		{"Empty", "", ""},
		{"OnlyDisallowed", ";;;$$$###", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sanitize(tc.input)
			if got != tc.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"test; rm -rf /",
		"plain text",
		"",
		"café < > | & ;",
		strings.Repeat("a$b", 100),
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSanitizeAllowListClosure(t *testing.T) {
	const allowed = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 .,?!-'\""
	inputs := []string{
		"test; rm -rf /",
		"mixed éèê input with 123 !?",
		"<script>alert(1)</script>",
	}
	for _, in := range inputs {
		for _, r := range Sanitize(in) {
			if !strings.ContainsRune(allowed, r) {
				t.Errorf("Sanitize(%q) leaked disallowed character %q", in, r)
			}
		}
	}
}

func TestIsDegenerate(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"real query", false},
		{"", true},
		{"   ", true},
		{";;;///", true},
		{"$   $", true},
		{"a", false},
	}
	for _, tc := range testCases {
		if got := IsDegenerate(tc.input); got != tc.expected {
			t.Errorf("IsDegenerate(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}
