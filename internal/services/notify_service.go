package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
)

// NotificationTopic is the channel the client subscribes to for toast-style
// notices. Nothing business-critical travels over it.
const NotificationTopic = "general-notifications"

// NotifyService publishes events on the realtime notification bus.
type NotifyService struct {
	redis *redis.Client
}

func NewNotifyService(redisClient *redis.Client) *NotifyService {
	return &NotifyService{redis: redisClient}
}

type notificationEvent struct {
	Name string           `json:"name"`
	Data notificationData `json:"data"`
}

type notificationData struct {
	Text string `json:"text"`
}

// Publish emits a new-message event on the notification topic. Publishing is
// best-effort; a missing bus is logged and ignored.
func (s *NotifyService) Publish(ctx context.Context, message string) error {
	if s.redis == nil {
		log.Println("[NOTIFY] Notification bus not configured, dropping message")
		return nil
	}

	payload, err := json.Marshal(notificationEvent{
		Name: "new-message",
		Data: notificationData{Text: message},
	})
	if err != nil {
		return err
	}

	if err := s.redis.Publish(ctx, NotificationTopic, string(payload)).Err(); err != nil {
		log.Printf("[NOTIFY] Publish failed: %v", err)
		return err
	}
	return nil
}
