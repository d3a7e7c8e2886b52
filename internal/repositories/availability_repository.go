package repositories

import (
	"context"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
)

type AvailabilityRepository interface {
	// GetDay returns the stored slots for the day, empty when unset.
	GetDay(ctx context.Context, tutorID string, day models.Weekday) ([]models.AvailabilitySlot, error)
	SetDay(ctx context.Context, tutorID string, day models.Weekday, slots []models.AvailabilitySlot) error
}

type availabilityRepository struct {
	store KVStore
}

func (r *availabilityRepository) GetDay(ctx context.Context, tutorID string, day models.Weekday) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	if err := getJSON(ctx, r.store, AvailabilityKey(tutorID, day), &slots); err != nil {
		if IsNotFoundError(err) {
			return []models.AvailabilitySlot{}, nil
		}
		return nil, err
	}
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	return slots, nil
}

func (r *availabilityRepository) SetDay(ctx context.Context, tutorID string, day models.Weekday, slots []models.AvailabilitySlot) error {
	if slots == nil {
		slots = []models.AvailabilitySlot{}
	}
	return setJSON(ctx, r.store, AvailabilityKey(tutorID, day), slots)
}
