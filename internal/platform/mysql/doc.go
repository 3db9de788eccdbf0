// Package mysql implements store.UserStore on MySQL using
// github.com/go-sql-driver/mysql through database/sql.
//
// Connections are opened with ClientFoundRows enabled so that an UPDATE
// which leaves the age unchanged still reports the matched row. Without it
// MySQL reports zero affected rows and an existing user would look missing.
package mysql
