package repositories

import (
	"context"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
)

type NotificationRepository interface {
	// List returns the stored list newest first, empty when none.
	List(ctx context.Context, userID string) ([]models.Notification, error)
	Save(ctx context.Context, userID string, notifications []models.Notification) error
}

type notificationRepository struct {
	store KVStore
}

func (r *notificationRepository) List(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := getJSON(ctx, r.store, NotificationsKey(userID), &notifications); err != nil {
		if IsNotFoundError(err) {
			return []models.Notification{}, nil
		}
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

func (r *notificationRepository) Save(ctx context.Context, userID string, notifications []models.Notification) error {
	return setJSON(ctx, r.store, NotificationsKey(userID), notifications)
}
