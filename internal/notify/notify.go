// Package notify tells the back office that a contract changed state.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const EventContractSigned = "contract_signed"

type Event struct {
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	ContractID     string    `json:"contract_id"`
	OrganizationID string    `json:"organization_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ContractSigned builds the event emitted after an electronic signature.
func ContractSigned(contractID, organizationID, contractNumber, customerName string, at time.Time) Event {
	return Event{
		Type:           EventContractSigned,
		Title:          "Contrat signé",
		Message:        fmt.Sprintf("Le contrat %s a été signé électroniquement par %s", contractNumber, customerName),
		ContractID:     contractID,
		OrganizationID: organizationID,
		OccurredAt:     at,
	}
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// RedisNotifier publishes events as JSON on a pub/sub channel. Subscribers
// filter on organization_id.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// LogNotifier only records the event.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.logger.Info("Notification",
		zap.String("type", event.Type),
		zap.String("contract_id", event.ContractID),
		zap.String("organization_id", event.OrganizationID),
		zap.String("message", event.Message),
	)
	return nil
}
