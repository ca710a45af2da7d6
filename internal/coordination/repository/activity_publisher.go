package repository

import (
	"context"
	"encoding/json"

	"case_coordination_service/internal/coordination/domain"

	"github.com/segmentio/kafka-go"
)

// ActivityPublisher egress of activity events to downstream platform consumers
type ActivityPublisher interface {
	Publish(ctx context.Context, event domain.ActivityEvent) error
}

type kafkaActivityPublisher struct {
	writer *kafka.Writer
}

// NewKafkaActivityPublisher create an ActivityPublisher over a kafka topic
func NewKafkaActivityPublisher(writer *kafka.Writer) ActivityPublisher {
	return &kafkaActivityPublisher{writer: writer}
}

func (p *kafkaActivityPublisher) Publish(ctx context.Context, event domain.ActivityEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(string(event.Scope) + ":" + event.ScopeID),
		Value: data,
	})
}
