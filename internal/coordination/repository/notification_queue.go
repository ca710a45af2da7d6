package repository

import (
	"encoding/json"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/pkg/database"

	"github.com/streadway/amqp"
)

// NotificationQueue hands created notifications to the external email/push worker
type NotificationQueue interface {
	Enqueue(n domain.Notification) error
}

type rabbitNotificationQueue struct {
	rabbit database.RabbitRepo
	queue  string
}

// NewRabbitNotificationQueue create a NotificationQueue over a rabbit queue
func NewRabbitNotificationQueue(rabbit database.RabbitRepo, queue string) NotificationQueue {
	return &rabbitNotificationQueue{rabbit: rabbit, queue: queue}
}

func (q *rabbitNotificationQueue) Enqueue(n domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return q.rabbit.Publish("", q.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        data,
	})
}
