// Package config loads and validates the service configuration.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// config.yaml in the working directory, and environment variables such as
// DATABASE_TYPE, SERVER_PORT and LOG_LEVEL. Loading uses viper; validation
// uses go-playground/validator struct tags.
package config
