package notification

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeWebhook NotificationType = "WEBHOOK"
)

// NotificationStatus represents the status of a notification
type NotificationStatus string

const (
	NotificationStatusPending   NotificationStatus = "PENDING"
	NotificationStatusSent      NotificationStatus = "SENT"
	NotificationStatusFailed    NotificationStatus = "FAILED"
	NotificationStatusDelivered NotificationStatus = "DELIVERED"
)

// Notification represents a notification to be sent
type Notification struct {
	ID          string
	Type        NotificationType
	Recipient   string
	Subject     string
	Body        string
	TemplateID  *string
	TemplateData map[string]interface{}
	Status      NotificationStatus
	Error       *string
	SentAt      *time.Time
	DeliveredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NotificationSender defines the interface for sending notifications
type NotificationSender interface {
	Send(ctx context.Context, notification *Notification) error
	GetType() NotificationType
}

// NotificationService manages sending notifications
type NotificationService struct {
	senders map[NotificationType]NotificationSender
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	return &NotificationService{
		senders: make(map[NotificationType]NotificationSender),
	}
}

// RegisterSender registers a sender for a notification type
func (s *NotificationService) RegisterSender(sender NotificationSender) {
	s.senders[sender.GetType()] = sender
}

// Send sends a notification
func (s *NotificationService) Send(ctx context.Context, notification *Notification) error {
	sender, exists := s.senders[notification.Type]
	if !exists {
		return fmt.Errorf("no sender registered for notification type: %s", notification.Type)
	}

	notification.Status = NotificationStatusPending

	err := sender.Send(ctx, notification)
	if err != nil {
		notification.Status = NotificationStatusFailed
		errStr := err.Error()
		notification.Error = &errStr
		return err
	}

	notification.Status = NotificationStatusSent
	now := time.Now()
	notification.SentAt = &now

	return nil
}

// SendWebhook sends a sweep lifecycle alert to a configured webhook URL.
func (s *NotificationService) SendWebhook(ctx context.Context, url, body string) error {
	notification := &Notification{
		Type:      NotificationTypeWebhook,
		Recipient: url,
		Body:      body,
		CreatedAt: time.Now(),
	}

	return s.Send(ctx, notification)
}

// WebhookSender POSTs the notification body to the recipient URL. The
// Master Orchestrator uses it to alert an operator-configured endpoint when
// a sweep phase fails.
type WebhookSender struct {
	client *http.Client
}

// NewWebhookSender creates a new webhook sender.
func NewWebhookSender(client *http.Client) *WebhookSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSender{client: client}
}

func (s *WebhookSender) GetType() NotificationType {
	return NotificationTypeWebhook
}

func (s *WebhookSender) Send(ctx context.Context, notification *Notification) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notification.Recipient,
		strings.NewReader(notification.Body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
