// Package mocks provides test doubles for the store contract. Each mock
// has function fields to override individual operations and a simple
// in-memory default behavior otherwise.
package mocks
