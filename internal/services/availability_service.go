package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/SAP-F-2025/tutoring-service/internal/validator"
)

type AvailabilityService interface {
	// GetAvailability returns all seven weekdays, with empty lists where unset.
	GetAvailability(ctx context.Context, tutorID string) (models.WeeklyAvailability, error)
	// SetDaySlots replaces the caller's slot list for day wholesale.
	SetDaySlots(ctx context.Context, principal models.Principal, req *SetDaySlotsRequest) error
}

type SetDaySlotsRequest struct {
	Day   models.Weekday            `json:"day" validate:"required,weekday"`
	Slots []models.AvailabilitySlot `json:"slots"`
}

type availabilityService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *slog.Logger
}

func NewAvailabilityService(repo repositories.Repository, validator *validator.Validator, logger *slog.Logger) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

func (s *availabilityService) GetAvailability(ctx context.Context, tutorID string) (models.WeeklyAvailability, error) {
	week := make(models.WeeklyAvailability, len(models.Weekdays))
	for _, day := range models.Weekdays {
		slots, err := s.repo.Availability().GetDay(ctx, tutorID, day)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s availability: %w", day, err)
		}
		week[day] = slots
	}
	return week, nil
}

func (s *availabilityService) SetDaySlots(ctx context.Context, principal models.Principal, req *SetDaySlotsRequest) error {
	profile, err := s.repo.User().GetByID(ctx, principal.UserID)
	if err != nil {
		return mapNotFound(err, ErrUserNotFound)
	}
	if profile.Role != models.RoleTutor {
		return ErrTutorRequired
	}

	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if errs := s.validator.ValidateSlots(req.Slots); len(errs) > 0 {
		return errs
	}

	if err := s.repo.Availability().SetDay(ctx, principal.UserID, req.Day, req.Slots); err != nil {
		return fmt.Errorf("failed to save availability: %w", err)
	}

	s.logger.Info("Availability updated",
		"tutor_id", principal.UserID,
		"day", req.Day,
		"slots", len(req.Slots))
	return nil
}
