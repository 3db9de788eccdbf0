package ciutil

import (
	"strings"
	"testing"
)

// IntegrationURL returns the backend URL for an integration suite, read from
// the first set variable in envVars. When none is set the test is skipped,
// unless IntegrationRequired, in which case it fails.
func IntegrationURL(t testing.TB, envVars ...string) string {
	t.Helper()

	if url := GetEnvWithFallbacks(envVars, "", nil); url != "" {
		return url
	}

	msg := strings.Join(envVars, " or ") + " not set"
	if IntegrationRequired() {
		t.Fatalf("%s; integration tests are required in this CI run", msg)
	}
	t.Skipf("%s; skipping integration tests", msg)
	return ""
}
