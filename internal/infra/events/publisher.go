// Package events publishes booking lifecycle events to a RabbitMQ topic
// exchange. Delivery is best effort: downstream notification consumers
// live outside this service and a broker outage must never fail a
// booking operation.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"harborline/internal/pkg/config"
	"harborline/internal/pkg/errs"
	"harborline/internal/usecase/shared"

	amqp "github.com/rabbitmq/amqp091-go"
)

type AMQPPublisher struct {
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the durable topic
// exchange. The returned cleanup closes the channel and connection.
func NewAMQPPublisher(cfg config.EventsConfig) (*AMQPPublisher, func(), error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to dial amqp broker")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, errs.Wrap(err, "failed to open amqp channel")
	}

	if err := ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, errs.Wrap(err, "failed to declare exchange")
	}

	p := &AMQPPublisher{exchange: cfg.Exchange, conn: conn, ch: ch}
	cleanup := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if err := p.ch.Close(); err != nil {
			slog.Warn("failed to close amqp channel", "error", err.Error())
		}
		if err := p.conn.Close(); err != nil {
			slog.Warn("failed to close amqp connection", "error", err.Error())
		}
	}
	return p, cleanup, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "failed to marshal event payload")
	}

	// amqp091 channels are not safe for concurrent publishes.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		topic,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return errs.Wrap(err, "failed to publish event")
	}
	return nil
}

// NopPublisher drops every event; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// NewPublisher picks the AMQP publisher when a broker URL is configured
// and the no-op fallback otherwise.
func NewPublisher(cfg config.EventsConfig) (shared.EventPublisher, func(), error) {
	if cfg.AMQPURL == "" {
		slog.Info("no amqp broker configured, events disabled")
		return NopPublisher{}, func() {}, nil
	}
	p, cleanup, err := NewAMQPPublisher(cfg)
	if err != nil {
		return nil, nil, err
	}
	return p, cleanup, nil
}
