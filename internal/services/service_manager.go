package services

import (
	"log/slog"

	"github.com/SAP-F-2025/tutoring-service/internal/auth"
	"github.com/SAP-F-2025/tutoring-service/internal/events"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/SAP-F-2025/tutoring-service/internal/validator"
)

// ServiceManager wires every service over one repository
type ServiceManager struct {
	Auth         AuthService
	User         UserService
	Availability AvailabilityService
	Request      RequestService
	Review       ReviewService
	Notification NotificationService
	Admin        AdminService
	DomainEvents DomainEventService
}

type ServiceDeps struct {
	Repo      repositories.Repository
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    *slog.Logger

	Tokens   *auth.JWTService
	Verifier auth.TokenVerifier
	Bot      auth.BotVerifier

	StrictRequestAuthz bool
}

func NewServiceManager(deps ServiceDeps) *ServiceManager {
	logger := deps.Logger

	domainEvents := NewDomainEventService(deps.Publisher, logger)
	notifications := NewNotificationService(deps.Repo, deps.Publisher, logger)
	users := NewUserService(deps.Repo, notifications, domainEvents, deps.Validator, logger)
	requests := NewRequestService(deps.Repo, users, notifications, domainEvents, deps.Validator, logger,
		RequestServiceConfig{StrictAuthz: deps.StrictRequestAuthz})
	reviews := NewReviewService(deps.Repo, users, notifications, domainEvents, deps.Validator, logger)

	return &ServiceManager{
		Auth:         NewAuthService(deps.Repo, users, deps.Tokens, deps.Verifier, deps.Bot, deps.Validator, logger),
		User:         users,
		Availability: NewAvailabilityService(deps.Repo, deps.Validator, logger),
		Request:      requests,
		Review:       reviews,
		Notification: notifications,
		Admin:        NewAdminService(deps.Repo, users, requests, reviews, logger),
		DomainEvents: domainEvents,
	}
}
