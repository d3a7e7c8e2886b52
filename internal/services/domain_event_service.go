package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/tutoring-service/internal/events"
	"github.com/SAP-F-2025/tutoring-service/internal/models"
)

// DomainEventService announces state changes on the configured broker.
// Publication is best effort: failures are logged and never fail the operation.
type DomainEventService interface {
	RequestChanged(ctx context.Context, req *models.TutoringRequest, actorID string)
	ReviewModerated(ctx context.Context, review *models.Review, action models.ModerationAction, counted bool)
	TutorApprovalChanged(ctx context.Context, tutorID string, approved bool, adminID string)
}

type domainEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewDomainEventService(eventPublisher events.EventPublisher, logger *slog.Logger) DomainEventService {
	return &domainEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *domainEventService) RequestChanged(ctx context.Context, req *models.TutoringRequest, actorID string) {
	s.publish(ctx, events.NewRequestEvent(req, actorID), "request_id", req.ID)
}

func (s *domainEventService) ReviewModerated(ctx context.Context, review *models.Review, action models.ModerationAction, counted bool) {
	s.publish(ctx, events.NewReviewModeratedEvent(review, action, counted), "review_id", review.ID)
}

func (s *domainEventService) TutorApprovalChanged(ctx context.Context, tutorID string, approved bool, adminID string) {
	s.publish(ctx, events.NewTutorApprovalEvent(tutorID, approved, adminID), "tutor_id", tutorID)
}

func (s *domainEventService) publish(ctx context.Context, event *events.Event, idKey, id string) {
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish domain event",
			"event_type", event.Type,
			idKey, id,
			"error", err)
		return
	}
	s.logger.Debug("Published domain event", "event_type", event.Type, idKey, id)
}
