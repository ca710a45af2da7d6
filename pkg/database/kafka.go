package database

import (
	"context"
	"fmt"
	"time"

	"case_coordination_service/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriterWithRetry build a Kafka writer, probing the brokers with a ping message
func NewKafkaWriterWithRetry(k KafkaConnection) (*kafka.Writer, error) {
	var writer *kafka.Writer
	var err error

	for attempt := 1; attempt <= k.RetryCount; attempt++ {
		writer = kafka.NewWriter(kafka.WriterConfig{
			Brokers:  k.Brokers,
			Topic:    k.Topic,
			Balancer: &kafka.LeastBytes{},
		})

		err = writer.WriteMessages(context.Background(), kafka.Message{
			Key:   []byte("ping"),
			Value: []byte("ping"),
		})
		if err == nil {
			logger.Log.Infof("kafka writer ready, attempts:", attempt)
			return writer, nil
		}

		logger.Log.Errorf(fmt.Sprintf("kafka writer attempt %d/%d failed:", attempt, k.RetryCount), err)
		writer.Close()
		time.Sleep(k.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("failed to build kafka writer after %d attempts: %v", k.RetryCount, err)
}
