package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/tutoring-service/internal/events"
	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/google/uuid"
)

// NotificationService owns the bounded per-user notification log
type NotificationService interface {
	// Push prepends an unread notification and keeps the newest 50.
	Push(ctx context.Context, userID, title, message string) (*models.Notification, error)

	List(ctx context.Context, principal models.Principal) ([]models.Notification, error)
	UnreadCount(ctx context.Context, principal models.Principal) (int, error)
	// MarkRead is a no-op when the id is not in the caller's list.
	MarkRead(ctx context.Context, principal models.Principal, notificationID string) error
	MarkAllRead(ctx context.Context, principal models.Principal) error
}

type notificationService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	locks     *utils.KeyedMutex
	now       func() time.Time
}

func NewNotificationService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) NotificationService {
	return &notificationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		locks:     utils.NewKeyedMutex(),
		now:       time.Now,
	}
}

func (s *notificationService) Push(ctx context.Context, userID, title, message string) (*models.Notification, error) {
	notification := models.Notification{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Read:      false,
		CreatedAt: s.now().UTC(),
	}

	err := s.update(ctx, userID, func(list []models.Notification) ([]models.Notification, bool) {
		list = append([]models.Notification{notification}, list...)
		if len(list) > models.MaxNotificationsPerUser {
			list = list[:models.MaxNotificationsPerUser]
		}
		return list, true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to push notification: %w", err)
	}

	s.logger.Debug("Notification pushed", "user_id", userID, "notification_id", notification.ID, "title", title)

	if err := s.publisher.Publish(ctx, events.NewNotificationCreatedEvent(userID, notification)); err != nil {
		s.logger.Warn("Failed to publish notification event", "user_id", userID, "error", err)
	}

	return &notification, nil
}

func (s *notificationService) List(ctx context.Context, principal models.Principal) ([]models.Notification, error) {
	list, err := s.repo.Notification().List(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, principal models.Principal) (int, error) {
	list, err := s.List(ctx, principal)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, principal models.Principal, notificationID string) error {
	err := s.update(ctx, principal.UserID, func(list []models.Notification) ([]models.Notification, bool) {
		for i := range list {
			if list[i].ID == notificationID {
				if list[i].Read {
					return list, false
				}
				list[i].Read = true
				return list, true
			}
		}
		return list, false
	})
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, principal models.Principal) error {
	err := s.update(ctx, principal.UserID, func(list []models.Notification) ([]models.Notification, bool) {
		changed := false
		for i := range list {
			if !list[i].Read {
				list[i].Read = true
				changed = true
			}
		}
		return list, changed
	})
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// update runs a read-modify-write of one user's list under that user's lock.
func (s *notificationService) update(ctx context.Context, userID string, fn func([]models.Notification) ([]models.Notification, bool)) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	list, err := s.repo.Notification().List(ctx, userID)
	if err != nil {
		return err
	}
	next, changed := fn(list)
	if !changed {
		return nil
	}
	return s.repo.Notification().Save(ctx, userID, next)
}
