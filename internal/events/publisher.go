// Package events publishes comment lifecycle events to NATS JetStream.
// Publishing is a best-effort side channel: a failed publish never fails
// the originating request.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectCreated = "comments.created"
	SubjectUpdated = "comments.updated"
	SubjectDeleted = "comments.deleted"
)

type Options struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// Connect establishes a NATS connection with the configured retry policy.
// On failure it returns an error so the caller can decide to run without
// the event stream.
func Connect(opts Options) (*nats.Conn, error) {
	if opts.URL == "" {
		opts.URL = "nats://nats:4222"
	}
	if opts.MaxReconnects == 0 {
		opts.MaxReconnects = 5
	}
	if opts.ReconnectWait == 0 {
		opts.ReconnectWait = 2 * time.Second
	}

	nc, err := nats.Connect(opts.URL,
		nats.MaxReconnects(opts.MaxReconnects),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.RetryOnFailedConnect(false),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", opts.URL, err)
	}
	return nc, nil
}

type Publisher struct {
	js nats.JetStreamContext
}

func NewPublisher(nc *nats.Conn) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{js: js}, nil
}

// Enabled is nil-safe so callers wired without NATS can skip publishing.
func (p *Publisher) Enabled() bool {
	return p != nil && p.js != nil
}

// PublishJSON stamps the payload with an event id and timestamp and
// publishes it, returning the event id.
func (p *Publisher) PublishJSON(subject string, payload map[string]any) (string, error) {
	if !p.Enabled() {
		return "", nats.ErrConnectionClosed
	}

	eventID := uuid.NewString()
	payload["event_id"] = eventID
	if _, ok := payload["created_at"]; !ok {
		payload["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	if _, err := p.js.Publish(subject, body); err != nil {
		return "", err
	}
	return eventID, nil
}
