// Package ciutil provides environment detection for tests.
//
// It centralizes how the integration suites find their backend URLs and
// decides whether a missing URL skips the suite (local development) or
// fails it (a CI run that asked for integration coverage).
package ciutil
