// Package kafka provides a Kafka-backed pubsub channel for multi-process
// deployments.
package kafka

import (
	"errors"
	"os"
	"strings"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
)

// Config controls the Kafka channel. Zero-value fields fall back to the
// KAFKA_BROKERS environment variable and a "cg-"+service consumer group.
type Config struct {
	Brokers       []string
	ConsumerGroup string
}

func (c Config) resolve(serviceName string) (brokers []string, group string, err error) {
	brokers = c.Brokers
	if len(brokers) == 0 {
		if env := os.Getenv("KAFKA_BROKERS"); env != "" {
			brokers = strings.Split(env, ",")
		}
	}

	if len(brokers) == 0 || brokers[0] == "" {
		return nil, "", errors.New("no Kafka brokers configured and KAFKA_BROKERS is not set")
	}

	group = c.ConsumerGroup
	if group == "" {
		group = "cg-" + serviceName
	}

	return brokers, group, nil
}

// CreateChannel builds a publisher and subscriber pair from the environment.
func CreateChannel(logger watermill.LoggerAdapter, serviceName string) (*kafka.Publisher, *kafka.Subscriber, error) {
	return CreateChannelWithConfig(logger, serviceName, Config{})
}

// CreateChannelWithConfig builds a publisher and subscriber pair with
// explicit broker and consumer-group settings.
func CreateChannelWithConfig(logger watermill.LoggerAdapter, serviceName string, cfg Config) (*kafka.Publisher, *kafka.Subscriber, error) {
	brokers, group, err := cfg.resolve(serviceName)
	if err != nil {
		return nil, nil, err
	}

	saramaSubscriberConfig := kafka.DefaultSaramaSubscriberConfig()
	saramaSubscriberConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:               brokers,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaSubscriberConfig,
			ConsumerGroup:         group,
			OTELEnabled:           true,
		},
		logger,
	)
	if err != nil {
		return nil, nil, err
	}

	saramaPublisherConfig := sarama.NewConfig()
	saramaPublisherConfig.Producer.Return.Successes = true

	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               brokers,
			Marshaler:             kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: saramaPublisherConfig,
			OTELEnabled:           true,
		},
		logger,
	)
	if err != nil {
		return nil, nil, err
	}

	return publisher, subscriber, nil
}
