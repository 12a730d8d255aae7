// pkg/pubsub/dispatcher.go
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// Статусы события.
const (
	StatusFound              = "found"
	StatusNoTracks           = "no_tracks"
	StatusNotRecognized      = "not_recognized"
	StatusCatalogUnavailable = "catalog_unavailable"
)

// Event описывает итог одного распознавания.
type Event struct {
	ChatID int64     `json:"chat_id"`
	Query  *string   `json:"query"`
	Tracks int       `json:"tracks"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// Publisher отправляет события распознавания.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// PubSubClient публикует события в топик Google Cloud Pub/Sub.
type PubSubClient struct {
	Client *pubsub.Client
	Topic  *pubsub.Topic
}

// InitPubSubClient инициализирует клиента Pub/Sub для проекта. Топик должен существовать.
func InitPubSubClient(ctx context.Context, projectID, topicID string, opts ...option.ClientOption) (*PubSubClient, error) {
	if topicID == "" {
		return nil, errors.New("pubsub topic is required")
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	return &PubSubClient{
		Client: client,
		Topic:  client.Topic(topicID),
	}, nil
}

// Publish публикует событие и дожидается подтверждения сервера.
func (p *PubSubClient) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	result := p.Topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"status": ev.Status},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish to %s: %w", p.Topic.ID(), err)
	}
	return nil
}

func (p *PubSubClient) Close() error {
	p.Topic.Stop()
	return p.Client.Close()
}

// NopPublisher используется, когда Pub/Sub не настроен.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
