// Package store defines the persistence contract shared by every storage
// backend and the normalized error model that crosses it. Handlers depend only
// on UserStore; each engine-specific adapter under internal/platform
// translates the contract into its own schema, queries and error vocabulary.
package store
