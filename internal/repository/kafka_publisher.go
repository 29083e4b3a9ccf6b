package repository

import (
	"context"

	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
	pkgkafka "StockSage/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Messages are keyed by
// symbol so consumers see analyses for one instrument in order.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishAnalysis(ctx context.Context, a *models.CombinedAnalysis) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.Symbol), a)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
