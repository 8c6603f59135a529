// Package notification exposes a user's persisted notification feed.
package notification

import (
	"errors"
	"fmt"

	notificationRepo "machly/database/repository/notification"
	"machly/models"
)

// ErrNotFound is returned when the notification does not exist or belongs
// to another user.
var ErrNotFound = errors.New("notification not found")

// NotificationService reads and acknowledges a user's notifications.
type NotificationService interface {
	ListForUser(userID string) ([]models.Notification, error)
	MarkRead(actor models.Actor, notificationID string) error
}

// DefaultNotificationService implements NotificationService.
type DefaultNotificationService struct {
	Repo notificationRepo.NotificationRepository
}

// NewDefaultNotificationService wires a notification service over the repository.
func NewDefaultNotificationService(repo notificationRepo.NotificationRepository) *DefaultNotificationService {
	return &DefaultNotificationService{Repo: repo}
}

// ListForUser returns the user's notifications, newest first.
func (s *DefaultNotificationService) ListForUser(userID string) ([]models.Notification, error) {
	notifications, err := s.Repo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead acknowledges one of the actor's own notifications.
func (s *DefaultNotificationService) MarkRead(actor models.Actor, notificationID string) error {
	if err := s.Repo.MarkRead(notificationID, actor.ID); err != nil {
		if errors.Is(err, notificationRepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
