package publisher

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// This test requires a running Redis instance and is skipped otherwise.
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()

	// A single stream makes the target stream name deterministic.
	publisher := NewRedisPublisher(ctx, "localhost:6379", 0, "test_products", 1, 100)
	defer publisher.Close()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	stream := "test_products:0"
	err := client.XGroupCreateMkStream(ctx, stream, "test_group", "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		t.Fatal(err)
	}

	messages := make(chan string, 1)
	go func() {
		result, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Streams:  []string{stream, ">"},
			Group:    "test_group",
			Consumer: "test_consumer",
			Block:    0,
		}).Result()
		assert.NoError(t, err)
		messages <- result[0].Messages[0].Values["tunisianet"].(string)
	}()

	time.Sleep(100 * time.Millisecond)

	payload := []byte(`{"title":"PC Asus X515","price":1299}`)
	err = publisher.Publish("tunisianet", payload)
	assert.NoError(t, err)

	select {
	case msg := <-messages:
		assert.Equal(t, base64.StdEncoding.EncodeToString(payload), msg)
	case <-time.After(1 * time.Second):
		t.Error("Timed out waiting for message")
	}

	assert.NoError(t, publisher.TrimStreams())
}
