package announce

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/objectmodel/schema"
)

const (
	defaultExchange   = "objectmodel.topic"
	defaultRoutingKey = "schema.announce"
	defaultTimeout    = 10 * time.Second

	announcementType = "SchemaAnnouncement"
)

// Channel publishes AMQP messages. *amqp.Channel satisfies it.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Announcement is the body published for one registered schema
type Announcement struct {
	ID        string        `json:"id"`
	Key       string        `json:"key"`
	Title     string        `json:"title,omitempty"`
	Version   string        `json:"version,omitempty"`
	Source    string        `json:"source,omitempty"`
	Schema    schema.Schema `json:"schema"`
	Timestamp time.Time     `json:"timestamp"`
}

// Announcer publishes registered schemas so other services can discover them
type Announcer struct {
	ch         Channel
	exchange   string
	routingKey string
	source     string
	timeout    time.Duration
	retry      RetryPolicy
	logger     *slog.Logger
}

// Option configures the announcer
type Option func(*Announcer)

// WithExchange sets the exchange announcements are published to
func WithExchange(exchange string) Option {
	return func(a *Announcer) {
		a.exchange = exchange
	}
}

// WithRoutingKey sets the routing key of announcements
func WithRoutingKey(key string) Option {
	return func(a *Announcer) {
		a.routingKey = key
	}
}

// WithSource names the announcing service
func WithSource(source string) Option {
	return func(a *Announcer) {
		a.source = source
	}
}

// WithPublishTimeout bounds each publish when ctx has no deadline
func WithPublishTimeout(timeout time.Duration) Option {
	return func(a *Announcer) {
		a.timeout = timeout
	}
}

// WithRetryPolicy sets the policy for failed publishes. nil disables retries.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(a *Announcer) {
		a.retry = policy
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Announcer) {
		a.logger = logger
	}
}

// NewAnnouncer creates an announcer publishing on ch
func NewAnnouncer(ch Channel, opts ...Option) *Announcer {
	a := &Announcer{
		ch:         ch,
		exchange:   defaultExchange,
		routingKey: defaultRoutingKey,
		timeout:    defaultTimeout,
		retry:      NewExponentialBackoff(100*time.Millisecond, 2*time.Second, 2.0, 3),
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Announce publishes the schema registered under key
func (a *Announcer) Announce(ctx context.Context, key string, s schema.Schema) error {
	if key == "" {
		return schema.ErrInvalidKey
	}
	if s == nil {
		return schema.ErrNilSchema
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	announcement := Announcement{
		ID:        uuid.NewString(),
		Key:       key,
		Title:     s.Title(),
		Version:   s.Version(),
		Source:    a.source,
		Schema:    s,
		Timestamp: time.Now().UTC(),
	}

	body, err := gojson.Marshal(announcement)
	if err != nil {
		return fmt.Errorf("failed to marshal announcement for %s: %w", key, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    announcement.ID,
		Timestamp:    announcement.Timestamp,
		Type:         announcementType,
		AppId:        a.source,
		Headers: amqp.Table{
			"x-schema-key":     key,
			"x-schema-version": announcement.Version,
		},
		Body: body,
	}

	attempts := 0
	err = withRetry(ctx, a.retry, func() error {
		attempts++
		if attempts > 1 {
			a.logger.Warn("Retrying schema announcement", "key", key, "attempt", attempts)
		}
		return a.ch.PublishWithContext(ctx, a.exchange, a.routingKey, false, false, msg)
	})
	if err != nil {
		return &PublishError{
			Exchange:   a.exchange,
			RoutingKey: a.routingKey,
			Key:        key,
			Attempts:   attempts,
			Err:        err,
			Timestamp:  time.Now(),
		}
	}

	a.logger.Info("Schema announced", "key", key, "exchange", a.exchange, "messageId", announcement.ID)
	return nil
}

// AnnounceAll publishes every schema in r in key order, stopping at the
// first failure
func (a *Announcer) AnnounceAll(ctx context.Context, r *schema.Registry) error {
	for _, key := range r.Keys() {
		s, ok := r.GetSchema(key)
		if !ok {
			continue
		}
		if err := a.Announce(ctx, key, s); err != nil {
			return err
		}
	}
	return nil
}
