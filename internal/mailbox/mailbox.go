// Package mailbox buffers encrypted envelopes for offline recipients.
//
// Envelopes live under msg:{to}:{message_id}. Sending the same pair again
// overwrites the envelope and restarts its TTL, polling never removes
// anything, and an ack deletes exactly one key. Nothing here is
// transactional: a poll is a best-effort snapshot of whatever the store
// lists and still returns at fetch time.
package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/neochat/relay/internal/apperr"
	"github.com/neochat/relay/internal/kv"
	"github.com/neochat/relay/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	namespace = "msg"

	DefaultTTL                 = 7 * 24 * time.Hour
	DefaultPollLimit           = 100
	DefaultMinRecipientHashLen = 2

	// fetchConcurrency bounds parallel Gets during a poll
	fetchConcurrency = 8
)

// Config tunes the mailbox. Zero values take the defaults above.
type Config struct {
	TTL                 time.Duration
	PollLimit           int
	MinRecipientHashLen int
}

// SendInput is an envelope as submitted by a client.
type SendInput struct {
	From      string
	To        string
	Payload   string
	MessageID string
}

// Service implements send, poll and ack over a kv.Store.
type Service struct {
	store kv.Store
	cfg   Config
	now   func() time.Time
}

// NewService creates a mailbox over store.
func NewService(store kv.Store, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.PollLimit <= 0 {
		cfg.PollLimit = DefaultPollLimit
	}
	if cfg.MinRecipientHashLen <= 0 {
		cfg.MinRecipientHashLen = DefaultMinRecipientHashLen
	}
	return &Service{store: store, cfg: cfg, now: time.Now}
}

// WithClock overrides the time source used for envelope timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Send stores (or overwrites) the envelope for (to, message_id) and
// returns its message id.
func (s *Service) Send(ctx context.Context, in SendInput) (string, error) {
	if in.To == "" || in.Payload == "" || in.MessageID == "" {
		return "", apperr.Validation("Missing required fields: to, payload, message_id")
	}

	envelope := models.Envelope{
		From:      in.From,
		To:        in.To,
		Payload:   in.Payload,
		MessageID: in.MessageID,
		Timestamp: s.now().UnixMilli(),
	}
	if envelope.From == "" {
		envelope.From = models.AnonymousSender
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return "", apperr.Storage("failed to encode envelope", err)
	}
	if err := s.store.Put(ctx, kv.Key(namespace, in.To, in.MessageID), data, s.cfg.TTL); err != nil {
		return "", apperr.Storage("failed to store envelope", err)
	}
	return in.MessageID, nil
}

// Poll returns the pending envelopes for recipient, up to the poll limit.
// Entries that vanish between list and fetch, or that no longer decode,
// are skipped. Order is unspecified.
func (s *Service) Poll(ctx context.Context, recipient string) ([]models.Envelope, error) {
	if len(recipient) < s.cfg.MinRecipientHashLen {
		return nil, apperr.Validation("Invalid user hash")
	}

	keys, err := s.store.List(ctx, kv.Prefix(namespace, recipient), s.cfg.PollLimit)
	if err != nil {
		return nil, apperr.Storage("failed to list mailbox", err)
	}

	slots := make([]*models.Envelope, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			data, err := s.store.Get(gctx, key)
			if errors.Is(err, kv.ErrNotFound) {
				// Acked or expired after the listing
				return nil
			}
			if err != nil {
				return err
			}
			var envelope models.Envelope
			if err := json.Unmarshal(data, &envelope); err != nil {
				log.Printf("⚠️ Skipping corrupted mailbox entry %s: %v", key, err)
				return nil
			}
			slots[i] = &envelope
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Storage("failed to fetch mailbox entry", err)
	}

	messages := make([]models.Envelope, 0, len(slots))
	for _, envelope := range slots {
		if envelope != nil {
			messages = append(messages, *envelope)
		}
	}
	return messages, nil
}

// Ack deletes the envelope for (recipient, messageID). Acking an absent
// envelope succeeds and reports nothing about prior existence.
func (s *Service) Ack(ctx context.Context, recipient, messageID string) error {
	if recipient == "" || messageID == "" {
		return apperr.Validation("Missing required fields: recipient, message_id")
	}
	if err := s.store.Delete(ctx, kv.Key(namespace, recipient, messageID)); err != nil {
		return apperr.Storage("failed to delete envelope", err)
	}
	return nil
}
