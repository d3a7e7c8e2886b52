package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/tutoring-service/internal/events"
)

const (
	PublisherKafka    = "kafka"
	PublisherRabbitMQ = "rabbitmq"
	PublisherMock     = "mock"
)

// EventConfig holds configuration for event publishing
type EventConfig struct {
	Enabled   bool
	Publisher string // kafka, rabbitmq or mock

	KafkaBrokers string
	RabbitMQURL  string
	// NotificationTopic is the Kafka topic or the RabbitMQ exchange name.
	NotificationTopic string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokers, ",")
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case PublisherKafka:
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.NotificationTopic)

		return events.NewKafkaEventPublisher(events.KafkaConfig{
			Brokers:   c.GetKafkaBrokers(),
			TopicName: c.NotificationTopic,
			Logger:    logger,
		})
	case PublisherRabbitMQ:
		logger.Info("Creating RabbitMQ event publisher", "exchange", c.NotificationTopic)

		return events.NewRabbitMQEventPublisher(events.RabbitMQConfig{
			URL:      c.RabbitMQURL,
			Exchange: c.NotificationTopic,
			Logger:   logger,
		})
	case PublisherMock:
		logger.Info("Using mock event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
