package mailbox

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/neochat/relay/internal/apperr"
	"github.com/neochat/relay/internal/kv"
	"github.com/neochat/relay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMailbox(cfg Config) (*Service, *kv.MemoryStore, *testClock) {
	clock := &testClock{t: time.Unix(1_700_000_000, 0)}
	store := kv.NewMemoryStoreWithClock(clock.Now)
	return NewService(store, cfg).WithClock(clock.Now), store, clock
}

func TestSend_Validation(t *testing.T) {
	svc, store, _ := newTestMailbox(Config{})

	for _, in := range []SendInput{
		{Payload: "Q0lQSEVS", MessageID: "m1"},
		{To: "u1", MessageID: "m1"},
		{To: "u1", Payload: "Q0lQSEVS"},
	} {
		_, err := svc.Send(context.Background(), in)
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
		assert.Equal(t, "Missing required fields: to, payload, message_id", err.Error())
	}
	assert.Equal(t, 0, store.Len())
}

func TestSendPollAck(t *testing.T) {
	svc, _, _ := newTestMailbox(Config{})
	ctx := context.Background()

	id, err := svc.Send(ctx, SendInput{To: "u1ab", Payload: "Q0lQSEVS", MessageID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, "m1", id)

	messages, err := svc.Poll(ctx, "u1ab")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, models.Envelope{
		From:      models.AnonymousSender,
		To:        "u1ab",
		Payload:   "Q0lQSEVS",
		MessageID: "m1",
		Timestamp: time.Unix(1_700_000_000, 0).UnixMilli(),
	}, messages[0])

	// Polling does not consume
	messages, err = svc.Poll(ctx, "u1ab")
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	require.NoError(t, svc.Ack(ctx, "u1ab", "m1"))

	messages, err = svc.Poll(ctx, "u1ab")
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.NotNil(t, messages, "empty mailbox encodes as [] not null")
}

func TestSend_ResendOverwrites(t *testing.T) {
	svc, _, clock := newTestMailbox(Config{})
	ctx := context.Background()

	_, err := svc.Send(ctx, SendInput{From: "alice", To: "bob1", Payload: "first", MessageID: "m1"})
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = svc.Send(ctx, SendInput{From: "alice", To: "bob1", Payload: "second", MessageID: "m1"})
	require.NoError(t, err)

	messages, err := svc.Poll(ctx, "bob1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "second", messages[0].Payload)
	assert.Equal(t, clock.Now().UnixMilli(), messages[0].Timestamp)
}

func TestSend_PayloadIsOpaque(t *testing.T) {
	svc, _, _ := newTestMailbox(Config{})
	ctx := context.Background()
	payload := "a\x00b\u2028\"quoted\""

	_, err := svc.Send(ctx, SendInput{To: "u1ab", Payload: payload, MessageID: "m1"})
	require.NoError(t, err)

	messages, err := svc.Poll(ctx, "u1ab")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, payload, messages[0].Payload)
}

func TestSend_ResendRefreshesTTL(t *testing.T) {
	svc, _, clock := newTestMailbox(Config{TTL: time.Hour})
	ctx := context.Background()

	_, err := svc.Send(ctx, SendInput{To: "bob1", Payload: "p", MessageID: "m1"})
	require.NoError(t, err)
	clock.Advance(50 * time.Minute)
	_, err = svc.Send(ctx, SendInput{To: "bob1", Payload: "p", MessageID: "m1"})
	require.NoError(t, err)
	clock.Advance(50 * time.Minute)

	messages, err := svc.Poll(ctx, "bob1")
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	clock.Advance(10 * time.Minute)
	messages, err = svc.Poll(ctx, "bob1")
	require.NoError(t, err)
	assert.Empty(t, messages, "unacked envelope expires after its TTL")
}

func TestPoll_ReturnsEveryDistinctMessage(t *testing.T) {
	svc, _, _ := newTestMailbox(Config{})
	ctx := context.Background()

	const n = 25
	want := make(map[string]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("m%02d", i)
		payload := fmt.Sprintf("cipher-%d==", i)
		want[id] = payload
		_, err := svc.Send(ctx, SendInput{To: "carol", Payload: payload, MessageID: id})
		require.NoError(t, err)
	}
	// Another recipient's mail stays out of carol's mailbox
	_, err := svc.Send(ctx, SendInput{To: "carolx", Payload: "x", MessageID: "m00"})
	require.NoError(t, err)

	messages, err := svc.Poll(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, messages, n)

	got := make(map[string]string, n)
	for _, m := range messages {
		assert.Equal(t, "carol", m.To)
		got[m.MessageID] = m.Payload
	}
	assert.Equal(t, want, got)
}

func TestPoll_Limit(t *testing.T) {
	svc, _, _ := newTestMailbox(Config{PollLimit: 3})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Send(ctx, SendInput{To: "dave", Payload: "p", MessageID: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}

	messages, err := svc.Poll(ctx, "dave")
	require.NoError(t, err)
	assert.Len(t, messages, 3)
}

func TestPoll_RejectsShortRecipient(t *testing.T) {
	svc, _, _ := newTestMailbox(Config{})

	_, err := svc.Poll(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "Invalid user hash", err.Error())
}

func TestPoll_RecipientWithSeparatorIsIsolated(t *testing.T) {
	svc, _, _ := newTestMailbox(Config{})
	ctx := context.Background()

	_, err := svc.Send(ctx, SendInput{To: "user", Payload: "p", MessageID: "x:y"})
	require.NoError(t, err)

	messages, err := svc.Poll(ctx, "user:x")
	require.NoError(t, err)
	assert.Empty(t, messages)
}

// racyStore lists keys that are already gone or unreadable by the time they
// are fetched.
type racyStore struct {
	*kv.MemoryStore
	vanished map[string]bool
	corrupt  map[string]bool
	failGet  error
}

func (s *racyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}
	if s.vanished[key] {
		return nil, kv.ErrNotFound
	}
	if s.corrupt[key] {
		return []byte("{not json"), nil
	}
	return s.MemoryStore.Get(ctx, key)
}

func TestPoll_SkipsVanishedAndCorruptedEntries(t *testing.T) {
	store := &racyStore{
		MemoryStore: kv.NewMemoryStore(),
		vanished:    map[string]bool{"msg:erin:m1": true},
		corrupt:     map[string]bool{"msg:erin:m2": true},
	}
	svc := NewService(store, Config{})
	ctx := context.Background()

	for _, id := range []string{"m1", "m2", "m3"} {
		_, err := svc.Send(ctx, SendInput{To: "erin", Payload: "p-" + id, MessageID: id})
		require.NoError(t, err)
	}

	messages, err := svc.Poll(ctx, "erin")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "m3", messages[0].MessageID)
}

func TestPoll_StorageFailure(t *testing.T) {
	store := &racyStore{MemoryStore: kv.NewMemoryStore(), failGet: errors.New("kv timeout")}
	svc := NewService(store, Config{})
	ctx := context.Background()

	_, err := svc.Send(ctx, SendInput{To: "frank", Payload: "p", MessageID: "m1"})
	require.NoError(t, err)

	_, err = svc.Poll(ctx, "frank")
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
}

func TestAck_Idempotent(t *testing.T) {
	svc, _, _ := newTestMailbox(Config{})

	assert.NoError(t, svc.Ack(context.Background(), "u1ab", "never-sent"))
	assert.NoError(t, svc.Ack(context.Background(), "u1ab", "never-sent"))
}

func TestAck_OnlyRemovesNamedEnvelope(t *testing.T) {
	svc, _, _ := newTestMailbox(Config{})
	ctx := context.Background()

	for _, id := range []string{"m1", "m2"} {
		_, err := svc.Send(ctx, SendInput{To: "gina", Payload: "p", MessageID: id})
		require.NoError(t, err)
	}
	require.NoError(t, svc.Ack(ctx, "gina", "m1"))

	messages, err := svc.Poll(ctx, "gina")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "m2", messages[0].MessageID)
}
