// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. Backend error messages
// can echo connection strings, file paths and host names; this package strips
// them before a message leaves the process.
package redact

import (
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedHostPlaceholder       = "[REDACTED_HOST]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order; credentials go first so that later patterns
// never see them.
var rules = []rule{
	// Connection URLs with userinfo for every supported backend
	{
		regexp.MustCompile(
			`(?i)(postgres|postgresql|mysql|mongodb|mongodb\+srv|redis|rediss|db|database|connection)://[^@\s]+@`,
		),
		RedactedCredentialPlaceholder,
	},
	// MySQL driver DSNs carry credentials without a scheme: user:pass@tcp(host:3306)/db
	{
		regexp.MustCompile(`[^\s:@/]+:[^\s@]*@(tcp|unix)\(`),
		RedactedCredentialPlaceholder + "$1(",
	},
	// Credential parameters
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`),
		RedactedCredentialPlaceholder,
	},
	// File paths, e.g. the SQLite database file
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), RedactedPathPlaceholder},
	// Stack trace fragments
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},
	// Email addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), RedactedEmailPlaceholder},
	// Qualified host names with optional port
	{
		regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`),
		RedactedHostPlaceholder,
	},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
