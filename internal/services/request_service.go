package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/SAP-F-2025/tutoring-service/internal/validator"
	"github.com/google/uuid"
)

// RequestService drives the tutoring request lifecycle
type RequestService interface {
	Create(ctx context.Context, principal models.Principal, req *CreateRequestRequest) (*models.TutoringRequest, error)
	// UpdateStatus applies any subset of status and confirmation flags, then
	// auto-completes an accepted request once both parties confirmed.
	UpdateStatus(ctx context.Context, principal models.Principal, requestID string, update *RequestUpdate) (*models.TutoringRequest, error)
	ListForUser(ctx context.Context, principal models.Principal) ([]*models.RequestView, error)
	// History lists the requests of user from its role's index.
	History(ctx context.Context, user *models.UserProfile) ([]*models.RequestView, error)
}

type CreateRequestRequest struct {
	TutorID string         `json:"tutor_id" validate:"required"`
	Subject string         `json:"subject" validate:"required,max=120"`
	Date    models.Weekday `json:"date" validate:"required,weekday"`
	Time    string         `json:"time" validate:"required,max=32"`
	Message string         `json:"message" validate:"max=2000"`
}

// RequestUpdate is a partial patch; nil fields are left untouched.
type RequestUpdate struct {
	Status             *models.RequestStatus `json:"status" validate:"omitempty,request_status"`
	ConfirmedByStudent *bool                 `json:"confirmed_by_student"`
	ConfirmedByTutor   *bool                 `json:"confirmed_by_tutor"`
}

func (u *RequestUpdate) empty() bool {
	return u.Status == nil && u.ConfirmedByStudent == nil && u.ConfirmedByTutor == nil
}

// allowedTransitions lists the status changes an update may request.
var allowedTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.RequestPending:  {models.RequestAccepted, models.RequestRejected},
	models.RequestAccepted: {models.RequestCompleted, models.RequestCancelled},
}

func canTransition(from, to models.RequestStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type RequestServiceConfig struct {
	// StrictAuthz restricts updates to participants and admins.
	StrictAuthz bool
}

type requestService struct {
	repo          repositories.Repository
	users         UserService
	notifications NotificationService
	events        DomainEventService
	validator     *validator.Validator
	logger        *slog.Logger
	svcLogger     *ServiceLogger
	config        RequestServiceConfig
	locks         *utils.KeyedMutex
	now           func() time.Time
}

func NewRequestService(
	repo repositories.Repository,
	users UserService,
	notifications NotificationService,
	domainEvents DomainEventService,
	validator *validator.Validator,
	logger *slog.Logger,
	config RequestServiceConfig,
) RequestService {
	return &requestService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		events:        domainEvents,
		validator:     validator,
		logger:        logger,
		svcLogger:     NewServiceLogger(logger, "request"),
		config:        config,
		locks:         utils.NewKeyedMutex(),
		now:           time.Now,
	}
}

func (s *requestService) Create(ctx context.Context, principal models.Principal, req *CreateRequestRequest) (created *models.TutoringRequest, err error) {
	op := s.svcLogger.WithOperation(ctx, "create_request", principal.UserID)
	defer func() {
		var id string
		if created != nil {
			id = created.ID
		}
		op.LogResult(id, "request", err)
	}()

	if principal.Role != models.RoleStudent {
		return nil, ErrStudentRequired
	}
	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	tutor, err := s.repo.User().GetByID(ctx, req.TutorID)
	if err != nil {
		return nil, mapNotFound(err, ErrTutorNotFound)
	}
	if tutor.Role != models.RoleTutor {
		return nil, ErrTutorNotFound
	}

	now := s.now().UTC()
	created = &models.TutoringRequest{
		ID:        uuid.NewString(),
		StudentID: principal.UserID,
		TutorID:   req.TutorID,
		Subject:   req.Subject,
		Date:      req.Date,
		Time:      req.Time,
		Message:   req.Message,
		Status:    models.RequestPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err = s.repo.Request().Create(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if _, err = s.notifications.Push(ctx, created.TutorID, models.TitleNewRequest,
		fmt.Sprintf("You have a new tutoring request for %s", created.Subject)); err != nil {
		return nil, err
	}

	s.events.RequestChanged(ctx, created, principal.UserID)
	return created, nil
}

func (s *requestService) UpdateStatus(ctx context.Context, principal models.Principal, requestID string, update *RequestUpdate) (req *models.TutoringRequest, err error) {
	op := s.svcLogger.WithOperation(ctx, "update_request", principal.UserID)
	defer func() { op.LogResult(requestID, "request", err) }()

	if err = s.validator.Validate(update); err != nil {
		return nil, err
	}
	if update.empty() {
		return nil, NewValidationError("status", "status or a confirmation flag is required", nil)
	}

	unlock := s.locks.Lock(requestID)
	defer unlock()

	req, err = s.repo.Request().GetByID(ctx, requestID)
	if err != nil {
		return nil, mapNotFound(err, ErrRequestNotFound)
	}

	if err = s.authorizeUpdate(principal, req, update); err != nil {
		return nil, err
	}

	previous := req.Status
	if previous.Terminal() {
		return nil, NewBusinessRuleError(RuleRequestTerminal,
			fmt.Sprintf("request is %s and can no longer change", previous),
			map[string]interface{}{"request_id": req.ID, "status": previous})
	}

	if update.ConfirmedByStudent != nil {
		req.ConfirmedByStudent = *update.ConfirmedByStudent
	}
	if update.ConfirmedByTutor != nil {
		req.ConfirmedByTutor = *update.ConfirmedByTutor
	}

	requested := previous
	if update.Status != nil {
		requested = *update.Status
	}
	if requested != previous {
		if !canTransition(previous, requested) {
			return nil, NewBusinessRuleError(RuleInvalidStatusTransition,
				fmt.Sprintf("cannot move request from %s to %s", previous, requested),
				map[string]interface{}{"request_id": req.ID, "from": previous, "to": requested})
		}
		if requested == models.RequestCompleted && !(req.ConfirmedByStudent && req.ConfirmedByTutor) {
			return nil, NewBusinessRuleError(RuleCompletionUnconfirmed,
				"both participants must confirm before completion",
				map[string]interface{}{"request_id": req.ID})
		}
		req.Status = requested
	}

	if req.ConfirmedByStudent && req.ConfirmedByTutor && req.Status == models.RequestAccepted {
		req.Status = models.RequestCompleted
	}

	req.UpdatedAt = s.now().UTC()
	if err = s.repo.Request().Save(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}

	if requested != previous {
		if err = s.notifyTransition(ctx, principal, req, requested); err != nil {
			return nil, err
		}
	}
	if req.Status != previous {
		s.events.RequestChanged(ctx, req, principal.UserID)
		op.LogAudit(AuditEventUpdate, req.ID, "request", previous, req.Status)
	}

	return req, nil
}

// authorizeUpdate enforces participant ownership when strict authorization is on.
func (s *requestService) authorizeUpdate(principal models.Principal, req *models.TutoringRequest, update *RequestUpdate) error {
	if !s.config.StrictAuthz || principal.IsAdmin() {
		return nil
	}
	if !req.Participant(principal.UserID) {
		return NewPermissionError(principal.UserID, req.ID, "request", "update", "not a participant")
	}

	isTutor := principal.UserID == req.TutorID
	if update.ConfirmedByTutor != nil && !isTutor {
		return NewPermissionError(principal.UserID, req.ID, "request", "confirm", "only the tutor confirms for the tutor")
	}
	if update.ConfirmedByStudent != nil && principal.UserID != req.StudentID {
		return NewPermissionError(principal.UserID, req.ID, "request", "confirm", "only the student confirms for the student")
	}
	if update.Status != nil && !isTutor {
		switch *update.Status {
		case models.RequestAccepted, models.RequestRejected:
			if *update.Status != req.Status {
				return NewPermissionError(principal.UserID, req.ID, "request", string(*update.Status), "only the tutor can answer a request")
			}
		}
	}
	return nil
}

func (s *requestService) notifyTransition(ctx context.Context, principal models.Principal, req *models.TutoringRequest, status models.RequestStatus) error {
	var (
		recipients     []string
		title, message string
	)
	switch status {
	case models.RequestAccepted:
		recipients, title = []string{req.StudentID}, models.TitleRequestAccepted
		message = fmt.Sprintf("Your tutoring request for %s has been accepted", req.Subject)
	case models.RequestRejected:
		recipients, title = []string{req.StudentID}, models.TitleRequestRejected
		message = fmt.Sprintf("Your tutoring request for %s has been rejected", req.Subject)
	case models.RequestCancelled:
		recipients, title = req.OtherParties(principal.UserID), models.TitleRequestCancelled
		message = fmt.Sprintf("A tutoring session for %s has been cancelled", req.Subject)
	default:
		return nil
	}

	for _, recipient := range recipients {
		if _, err := s.notifications.Push(ctx, recipient, title, message); err != nil {
			return err
		}
	}
	return nil
}

func (s *requestService) ListForUser(ctx context.Context, principal models.Principal) ([]*models.RequestView, error) {
	var (
		requests []*models.TutoringRequest
		err      error
	)
	if principal.Role == models.RoleTutor {
		requests, err = s.repo.Request().ListByTutor(ctx, principal.UserID)
	} else {
		requests, err = s.repo.Request().ListByStudent(ctx, principal.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return s.enrich(ctx, requests)
}

func (s *requestService) History(ctx context.Context, user *models.UserProfile) ([]*models.RequestView, error) {
	return s.ListForUser(ctx, models.Principal{UserID: user.ID, Role: user.Role})
}

func (s *requestService) enrich(ctx context.Context, requests []*models.TutoringRequest) ([]*models.RequestView, error) {
	ids := make([]string, 0, len(requests)*2)
	for _, r := range requests {
		ids = append(ids, r.StudentID, r.TutorID)
	}
	names, err := s.users.DisplayNames(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve names: %w", err)
	}

	views := make([]*models.RequestView, len(requests))
	for i, r := range requests {
		views[i] = &models.RequestView{
			TutoringRequest: *r,
			StudentName:     names[r.StudentID],
			TutorName:       names[r.TutorID],
		}
	}
	return views, nil
}
