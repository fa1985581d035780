// Package kv is the key-value storage the relay persists into. It offers
// exactly what an eventually consistent edge KV offers: single-key put,
// get and delete, prefix listing, and per-key TTL expiry enforced by the
// store itself.
package kv

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or has expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is implemented by every backend. All operations touch a single key
// (or a read-only prefix scan), so there is never anything to roll back.
type Store interface {
	// Put creates or fully replaces key. A ttl <= 0 means no expiry;
	// otherwise the expiry window restarts on every Put.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the live value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key string) error

	// List returns up to limit live keys starting with prefix, in
	// ascending key order.
	List(ctx context.Context, prefix string, limit int) ([]string, error)
}

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Key joins a namespace and components with ':' separators. Components
// are escaped so that no component can forge a separator.
func Key(namespace string, parts ...string) string {
	var b strings.Builder
	b.WriteString(namespace)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(keyEscaper.Replace(p))
	}
	return b.String()
}

// Prefix returns the listing prefix covering every key built by
// Key(namespace, parts..., <anything>).
func Prefix(namespace string, parts ...string) string {
	return Key(namespace, parts...) + ":"
}
