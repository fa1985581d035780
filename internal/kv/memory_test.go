package kv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "profile:a", []byte(`{"id":"a"}`), 0))

	value, err := store.Get(ctx, "profile:a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a"}`, string(value))

	// Upsert replaces the value
	require.NoError(t, store.Put(ctx, "profile:a", []byte(`{"id":"a","v":2}`), 0))
	value, err = store.Get(ctx, "profile:a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","v":2}`, string(value))

	require.NoError(t, store.Delete(ctx, "profile:a"))
	_, err = store.Get(ctx, "profile:a")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine
	assert.NoError(t, store.Delete(ctx, "profile:a"))
}

func TestMemoryStore_ValueIsCopied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	buf := []byte(`"x"`)
	require.NoError(t, store.Put(ctx, "k", buf, 0))
	buf[1] = 'y'

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(value))
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewMemoryStoreWithClock(clock.Now)

	require.NoError(t, store.Put(ctx, "msg:u1:m1", []byte(`{}`), time.Hour))

	clock.Advance(59 * time.Minute)
	_, err := store.Get(ctx, "msg:u1:m1")
	require.NoError(t, err)

	// Rewriting restarts the window
	require.NoError(t, store.Put(ctx, "msg:u1:m1", []byte(`{}`), time.Hour))
	clock.Advance(59 * time.Minute)
	_, err = store.Get(ctx, "msg:u1:m1")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = store.Get(ctx, "msg:u1:m1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len(), "expired entry should be dropped on read")
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := NewMemoryStoreWithClock(clock.Now)

	require.NoError(t, store.Put(ctx, "msg:u1:c", []byte(`{}`), 0))
	require.NoError(t, store.Put(ctx, "msg:u1:a", []byte(`{}`), 0))
	require.NoError(t, store.Put(ctx, "msg:u1:b", []byte(`{}`), time.Minute))
	require.NoError(t, store.Put(ctx, "msg:u2:a", []byte(`{}`), 0))
	require.NoError(t, store.Put(ctx, "profile:u1", []byte(`{}`), 0))

	keys, err := store.List(ctx, "msg:u1:", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"msg:u1:a", "msg:u1:b", "msg:u1:c"}, keys)

	keys, err = store.List(ctx, "msg:u1:", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"msg:u1:a", "msg:u1:b"}, keys)

	clock.Advance(time.Minute)
	keys, err = store.List(ctx, "msg:u1:", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"msg:u1:a", "msg:u1:c"}, keys)

	keys, err = store.List(ctx, "msg:nobody:", 10)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	assert.ErrorIs(t, store.Put(ctx, "k", []byte(`1`), 0), context.Canceled)
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.List(ctx, "", 0)
	assert.ErrorIs(t, err, context.Canceled)
}
