package ciutil

import (
	"log/slog"
	"os"

	"github.com/phrazzld/userstore/internal/redact"
)

// Common environment variable names used across the codebase.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvTravisCI      = "TRAVIS"
	EnvCircleCI      = "CIRCLECI"

	// EnvRequireIntegration makes a missing backend URL a test failure in CI.
	EnvRequireIntegration = "REQUIRE_INTEGRATION"

	// Backend connection variables, shared with the server configuration.
	EnvPostgresURL   = "POSTGRES_URL"
	EnvMySQLURL      = "MYSQL_URL"
	EnvMongoURL      = "MONGO_URL"
	EnvMongoDatabase = "MONGO_DATABASE"
	EnvRedisURL      = "REDIS_URL"

	// EnvDatabaseURL is accepted as a fallback for the PostgreSQL suite.
	EnvDatabaseURL = "DATABASE_URL"
)

// ciVars lists the variables that any of the supported CI providers set.
var ciVars = []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvTravisCI, EnvCircleCI}

// IsCI returns true if the current environment is a CI environment.
func IsCI() bool {
	for _, name := range ciVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// IntegrationRequired reports whether integration suites must run rather
// than skip. It only applies in CI.
func IntegrationRequired() bool {
	return IsCI() && os.Getenv(EnvRequireIntegration) != ""
}

// GetEnvWithFallbacks returns the value of the first non-empty environment variable
// from the provided list. If no environment variables are set, it returns the defaultValue.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			if i > 0 && logger != nil {
				logger.Warn("Using fallback environment variable",
					"used_var", envVar,
					"preferred_var", envVars[0],
					"value", redact.String(val),
				)
			}
			return val
		}
	}
	return defaultValue
}
