// Package relayclient is a Go client for the NeoChat relay HTTP API.
//
// It covers the whole surface: profile upsert and lookup, envelope send,
// poll and ack, and the status probe. All calls take a context for
// cancellation and deadlines. Non-2xx responses are returned as *APIError
// carrying the status code and the relay's error message, so callers can
// tell a missing profile (404) from bad input (400) or a relay failure
// (5xx). Send and Ack are idempotent on the relay side, so retrying them
// after a timeout is always safe.
package relayclient
