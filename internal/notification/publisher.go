package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// TasksSavedEvent is published after a user's task collection is written
type TasksSavedEvent struct {
	UserID    string    `json:"userId"`
	TaskCount int       `json:"taskCount"`
	SavedAt   time.Time `json:"savedAt"`
}

// Publisher sends task change events to a Pub/Sub topic
type Publisher struct {
	pubsubClient *pubsub.Client
	topic        *pubsub.Topic
	topicName    string
}

// NewPublisher connects to projectID and checks that topicName exists
func NewPublisher(ctx context.Context, projectID, topicName, credentialsFile string) (*Publisher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check topic %s: %w", topicName, err)
	}
	if !exists {
		client.Close()
		return nil, fmt.Errorf("pubsub topic %s does not exist", topicName)
	}

	log.Printf("[PubSub] Publishing task events to topic: %s", topicName)
	return &Publisher{pubsubClient: client, topic: topic, topicName: topicName}, nil
}

// PublishTasksSaved waits for the server to accept the event
func (p *Publisher) PublishTasksSaved(ctx context.Context, userID string, taskCount int) error {
	data, err := json.Marshal(TasksSavedEvent{
		UserID:    userID,
		TaskCount: taskCount,
		SavedAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"userId": userID, "type": "tasks.saved"},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topicName, err)
	}
	return nil
}

// Close flushes pending messages and releases the client
func (p *Publisher) Close() error {
	p.topic.Stop()
	return p.pubsubClient.Close()
}
