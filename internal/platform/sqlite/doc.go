// Package sqlite implements store.UserStore on an embedded SQLite database
// using the pure-Go modernc.org/sqlite driver. The database lives in a single
// file; the schema is provisioned idempotently when the store is opened.
package sqlite
