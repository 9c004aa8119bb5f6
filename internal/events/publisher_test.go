package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, Channel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	p := NewRedisPublisher(rdb, nil)
	p.Publish(ctx, "media.created", map[string]string{"id": "abc"})

	select {
	case msg := <-sub.Channel():
		var env struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		assert.Equal(t, "media.created", env.Type)
		assert.Equal(t, "abc", env.Payload["id"])
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestRedisPublisher_ErrorsAreLoggedNotReturned(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mr.SetError("redis connection failed")

	logger, hook := test.NewNullLogger()
	p := NewRedisPublisher(rdb, logger)
	p.Publish(context.Background(), "list.created", nil)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "list.created", hook.LastEntry().Data["type"])
}

func TestRedisPublisher_NilSafe(t *testing.T) {
	var p *RedisPublisher
	p.Publish(context.Background(), "x", nil)

	NewRedisPublisher(nil, nil).Publish(context.Background(), "x", nil)
}
