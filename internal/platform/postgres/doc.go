// Package postgres provides the PostgreSQL implementation of
// store.UserStore. It handles the details of database connections, schema
// provisioning, query execution, and mapping PostgreSQL error codes onto the
// normalized store errors.
package postgres
