// Package domain contains the core entities of the service: the User record
// and the request shapes used to create and update it. It is independent of
// any storage engine or delivery mechanism.
package domain
