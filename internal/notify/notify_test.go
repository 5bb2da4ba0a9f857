package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisNotifier_Publishes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "drsign:notifications")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	at := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	event := ContractSigned("c-1", "org-1", "CTR-001", "Amina Benali", at)
	require.NoError(t, NewRedisNotifier(client, "drsign:notifications").Notify(ctx, event))

	select {
	case msg := <-sub.Channel():
		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, EventContractSigned, got.Type)
		assert.Equal(t, "org-1", got.OrganizationID)
		assert.Equal(t, "Le contrat CTR-001 a été signé électroniquement par Amina Benali", got.Message)
		assert.True(t, at.Equal(got.OccurredAt))
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisNotifier_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	err := NewRedisNotifier(client, "ch").Notify(context.Background(), Event{Type: EventContractSigned})
	assert.ErrorContains(t, err, "failed to publish event")
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier(zap.NewNop()).Notify(context.Background(), Event{}))
}
