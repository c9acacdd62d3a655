package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const confirmTimeout = 5 * time.Second

type Publisher struct {
	mu         sync.Mutex                  // one publish awaits its confirm at a time
	ch         *amqp091.Channel            // AMQP channel for publishing messages
	confirms   <-chan amqp091.Confirmation // Channel to receive publish confirmations
	exchange   string                      // Exchange to publish messages to
	routingKey string                      // Prefix of every event routing key
}

func NewPublisher(conn *amqp091.Connection, exchange, routingKey string) (*Publisher, error) {
	if conn == nil {
		return nil, errors.New("AMQP connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return nil, err
	}

	confirms := ch.NotifyPublish(make(chan amqp091.Confirmation, 100))

	return &Publisher{
		ch:         ch,
		confirms:   confirms,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// Publish wraps payload in an event envelope and publishes it.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	event, err := NewEvent(eventType, time.Now(), payload)
	if err != nil {
		return err
	}
	return p.PublishEvent(ctx, event)
}

// PublishEvent sends one event and waits for the broker to confirm it.
func (p *Publisher) PublishEvent(ctx context.Context, event EventPayload) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.publish(ctx, EventRoutingKey(p.routingKey, event.Type), event.ID.String(), body); err != nil {
		return err
	}

	select {
	case confirm, ok := <-p.confirms:
		if !ok {
			return errors.New("publish confirms channel closed")
		}
		if !confirm.Ack {
			return errors.New("broker nacked message")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(confirmTimeout):
		return errors.New("publish confirms timeout")
	}
}

func (p *Publisher) publish(ctx context.Context, routingKey, messageID string, body []byte) error {
	if p.ch == nil {
		return errors.New("AMQP channel is nil")
	}

	return p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

func EventRoutingKey(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}
