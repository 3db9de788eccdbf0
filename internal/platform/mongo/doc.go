// Package mongo implements store.UserStore on MongoDB using the official
// v2 driver. Users live in the "users" collection of the configured
// database, keyed by a unique index on username.
//
// MongoDB assigns ObjectIDs rather than integers. The numeric id reported to
// callers is a 64-bit xxhash of the ObjectID bytes. It is stable for the
// life of the document and is for display only; it is never used for lookup.
package mongo
