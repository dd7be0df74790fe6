package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/voice-service/internal/events"
)

const (
	PublisherKafka = "kafka"
	PublisherMock  = "mock"
)

// EventConfig selects where survey lifecycle events go. Disabled events are
// kept in memory by the mock publisher so services never see a nil publisher.
type EventConfig struct {
	Enabled      bool
	Publisher    string
	KafkaBrokers string
	Topic        string
}

func (c *EventConfig) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

func (c *EventConfig) kind() string {
	return strings.ToLower(strings.TrimSpace(c.Publisher))
}

// CreateEventPublisher builds the configured publisher. An unknown publisher
// kind is a configuration error.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Survey events disabled, keeping them in memory")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.kind() {
	case PublisherKafka:
		brokers := c.Brokers()
		if len(brokers) == 0 {
			return nil, fmt.Errorf("kafka publisher needs at least one broker")
		}
		if strings.TrimSpace(c.Topic) == "" {
			return nil, fmt.Errorf("kafka publisher needs a topic")
		}
		logger.Info("Publishing survey events to Kafka", "brokers", brokers, "topic", c.Topic)
		publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: brokers,
			TopicName:    c.Topic,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case PublisherMock:
		return events.NewMockEventPublisher(logger), nil
	}
	return nil, fmt.Errorf("unknown events publisher %q", c.Publisher)
}
