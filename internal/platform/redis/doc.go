// Package redis implements store.UserStore on Redis using go-redis.
//
// Layout:
//
//	user:<username>   JSON encoded user record
//	user_id:<id>      username, the reverse index
//	counter:user_id   id counter advanced with INCR
//
// Ids are taken from the counter before the record is written, so a lost
// create race consumes an id. Ids are never reused.
//
// Updates and deletes read the record under WATCH and write it in a
// MULTI/EXEC block, so a record deleted and recreated mid-update keeps the
// id of whichever incarnation the write lands on.
package redis
