// Package events fans catalog changes out over Redis pub/sub.
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

// Channel is the Redis channel every event is published on.
const Channel = "broadcast"

// Envelope is the wire shape of an event.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// RedisPublisher implements catalog.Publisher. A nil client turns it into a
// no-op, and publish errors are only logged.
type RedisPublisher struct {
	rdb *redis.Client
	log logrus.FieldLogger
}

var _ catalog.Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(rdb *redis.Client, log logrus.FieldLogger) *RedisPublisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisPublisher{rdb: rdb, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload any) {
	if p == nil || p.rdb == nil {
		return
	}

	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	if err != nil {
		p.log.WithFields(logrus.Fields{"type": eventType, "error": err}).Warn("encode event")
		return
	}

	if err := p.rdb.Publish(ctx, Channel, string(data)).Err(); err != nil {
		p.log.WithFields(logrus.Fields{"type": eventType, "error": err}).Warn("publish event")
	}
}
