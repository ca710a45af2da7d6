package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"case_coordination_service/internal/coordination/domain"
	"case_coordination_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// fabricChannel single shared channel; envelopes carry the target room
const fabricChannel = "coordination:rooms"

// RoomEnvelope one room broadcast crossing the process boundary
type RoomEnvelope struct {
	NodeID       string            `json:"node_id"`
	Room         string            `json:"room"`
	ExceptUserID string            `json:"except_user_id,omitempty"`
	Response     domain.WSResponse `json:"response"`
}

// RedisPubSub broadcast fabric between hub processes. Each node publishes its
// room broadcasts and delivers remote envelopes to its own local members,
// skipping envelopes it published itself.
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish serialize the envelope and publish it on the fabric channel
func (r *RedisPubSub) Publish(env RoomEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, fabricChannel, data).Err()
}

// Subscribe consume fabric envelopes until ctx is cancelled
func (r *RedisPubSub) Subscribe(ctx context.Context, handler func(env RoomEnvelope)) error {
	sub := r.client.Subscribe(r.ctx, fabricChannel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var env RoomEnvelope
				if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
					logger.Log.Error("fabric envelope err :", zap.String("err", fmt.Sprintf("failed to unmarshal envelope: %v", err)))
					continue
				}
				handler(env)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", fabricChannel))
				sub.Close()
			}
		}
	}()
	return nil
}
