// Package api handles incoming HTTP requests, request validation and
// response formatting. It is a thin adapter over store.UserStore: handlers
// translate HTTP to store operations and normalized store errors back to
// status codes.
package api
