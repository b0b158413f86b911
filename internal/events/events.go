// Package events announces completed registrations to other services.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dukerupert/cadastro/internal/domain"
)

// DefaultSubject is the NATS subject registrations are published on.
const DefaultSubject = "users.registered"

// UserRegistered is the payload published after a successful write.
type UserRegistered struct {
	ID           string    `json:"id"`
	Name         string    `json:"nome"`
	Age          int       `json:"idade"`
	Role         string    `json:"cargo"`
	PostalCode   string    `json:"cep"`
	Street       string    `json:"logradouro"`
	Neighborhood string    `json:"bairro"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// Publisher delivers registration events.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, evt UserRegistered) error
	Close() error
}

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    Conn
	subject string
}

// Connect dials the NATS server at url.
func Connect(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("cadastro"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, domain.Unavailable(err, "events.connect", "failed to connect to NATS")
	}
	return NewNATSPublisher(conn, subject), nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(conn Conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: conn, subject: subject}
}

// PublishUserRegistered implements Publisher.
func (p *NATSPublisher) PublishUserRegistered(ctx context.Context, evt UserRegistered) error {
	const op = "events.publish"
	if err := ctx.Err(); err != nil {
		return domain.Unavailable(err, op, "publish cancelled")
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return domain.Internal(err, op, "failed to encode event")
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return domain.Unavailable(err, op, "failed to publish event")
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishUserRegistered(context.Context, UserRegistered) error { return nil }
func (NopPublisher) Close() error                                                 { return nil }

// UserCreator is the write half of a user store.
type UserCreator interface {
	Create(ctx context.Context, user domain.User) (string, error)
}

// PublishingStore publishes UserRegistered after each successful Create.
// Publish failures are logged and never fail the write.
type PublishingStore struct {
	next      UserCreator
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
	onPublish func(err error)
}

// StoreOption configures a PublishingStore.
type StoreOption func(*PublishingStore)

// WithPublishHook is called after every publish attempt with its result.
func WithPublishHook(fn func(err error)) StoreOption {
	return func(s *PublishingStore) { s.onPublish = fn }
}

// NewPublishingStore decorates next.
func NewPublishingStore(next UserCreator, publisher Publisher, logger *slog.Logger, opts ...StoreOption) *PublishingStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &PublishingStore{
		next:      next,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create writes the user and then announces it.
func (s *PublishingStore) Create(ctx context.Context, user domain.User) (string, error) {
	id, err := s.next.Create(ctx, user)
	if err != nil {
		return "", err
	}

	evt := UserRegistered{
		ID:           id,
		Name:         user.Name,
		Age:          user.Age,
		Role:         user.Role,
		PostalCode:   user.PostalCode,
		Street:       user.Street,
		Neighborhood: user.Neighborhood,
		OccurredAt:   s.now().UTC(),
	}
	err = s.publisher.PublishUserRegistered(context.WithoutCancel(ctx), evt)
	if err != nil {
		s.logger.Error("failed to publish registration event", "user_id", id, "error", err)
	}
	if s.onPublish != nil {
		s.onPublish(err)
	}
	return id, nil
}
