package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const rabbitPublishTimeout = 5 * time.Second

// RabbitMQEventPublisher publishes events to a topic exchange, routed by event type
type RabbitMQEventPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
	Logger   *slog.Logger
}

func NewRabbitMQEventPublisher(config RabbitMQConfig) (*RabbitMQEventPublisher, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		config.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", config.Exchange, err)
	}

	return &RabbitMQEventPublisher{
		conn:     conn,
		channel:  ch,
		exchange: config.Exchange,
		logger:   config.Logger,
	}, nil
}

func (p *RabbitMQEventPublisher) Publish(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, rabbitPublishTimeout)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	err = p.channel.PublishWithContext(
		publishCtx,
		p.exchange,
		string(event.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         string(event.Type),
			AppId:        event.Source,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
		},
	)
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *RabbitMQEventPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("Failed to close RabbitMQ channel", "error", err)
	}
	return p.conn.Close()
}
