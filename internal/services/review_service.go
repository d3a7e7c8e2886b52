package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/SAP-F-2025/tutoring-service/internal/validator"
	"github.com/google/uuid"
)

// ReviewService owns review submission, moderation and listings
type ReviewService interface {
	Submit(ctx context.Context, principal models.Principal, req *SubmitReviewRequest) (*models.Review, error)
	// Moderate approves or deletes a review, keeping the reviewed party's rating in step.
	Moderate(ctx context.Context, principal models.Principal, reviewID string, action models.ModerationAction) error

	// ReviewsForTutor lists approved reviews students wrote about the tutor.
	ReviewsForTutor(ctx context.Context, tutorID string) ([]*models.Review, error)
	// ReviewsForStudent lists approved reviews tutors wrote about the student.
	ReviewsForStudent(ctx context.Context, studentID string) ([]*models.Review, error)
	PendingReviews(ctx context.Context) ([]*models.ReviewView, error)
	ApprovedReviews(ctx context.Context) ([]*models.ReviewView, error)
}

type SubmitReviewRequest struct {
	TutorID   string `json:"tutor_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment   string `json:"comment" validate:"required,max=2000"`
	RequestID string `json:"request_id"`
}

type reviewService struct {
	repo          repositories.Repository
	users         UserService
	notifications NotificationService
	events        DomainEventService
	validator     *validator.Validator
	logger        *slog.Logger
	svcLogger     *ServiceLogger
	locks         *utils.KeyedMutex
	now           func() time.Time
}

func NewReviewService(
	repo repositories.Repository,
	users UserService,
	notifications NotificationService,
	domainEvents DomainEventService,
	validator *validator.Validator,
	logger *slog.Logger,
) ReviewService {
	return &reviewService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		events:        domainEvents,
		validator:     validator,
		logger:        logger,
		svcLogger:     NewServiceLogger(logger, "review"),
		locks:         utils.NewKeyedMutex(),
		now:           time.Now,
	}
}

func (s *reviewService) Submit(ctx context.Context, principal models.Principal, req *SubmitReviewRequest) (*models.Review, error) {
	req.Comment = strings.TrimSpace(req.Comment)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.TutorID == req.StudentID {
		return nil, NewValidationError("student_id", "tutor and student must differ", req.StudentID)
	}
	if principal.UserID != req.StudentID && principal.UserID != req.TutorID {
		return nil, NewValidationError("reviewer_id", "reviewer must be the student or the tutor", principal.UserID)
	}

	review := &models.Review{
		ID:         uuid.NewString(),
		TutorID:    req.TutorID,
		StudentID:  req.StudentID,
		ReviewerID: principal.UserID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		RequestID:  req.RequestID,
		Approved:   false,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.repo.Review().Save(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	if err := s.repo.Index().Append(ctx, repositories.KeyPendingReviews, review.ID); err != nil {
		return nil, fmt.Errorf("failed to queue review: %w", err)
	}

	s.logger.Info("Review submitted",
		"review_id", review.ID,
		"reviewer_id", review.ReviewerID,
		"subject_id", review.SubjectID())
	return review, nil
}

func (s *reviewService) Moderate(ctx context.Context, principal models.Principal, reviewID string, action models.ModerationAction) (err error) {
	op := s.svcLogger.WithOperation(ctx, "moderate_review", principal.UserID)
	defer func() { op.LogResult(reviewID, "review", err) }()

	if !principal.IsAdmin() {
		return ErrAdminRequired
	}
	if action != models.ModerationApprove && action != models.ModerationDelete {
		return NewValidationError("action", "must be approve or delete", action)
	}

	unlock := s.locks.Lock(reviewID)
	defer unlock()

	review, err := s.repo.Review().GetByID(ctx, reviewID)
	if err != nil {
		return mapNotFound(err, ErrReviewNotFound)
	}

	wasApproved := review.Approved
	switch action {
	case models.ModerationApprove:
		err = s.approve(ctx, review)
	case models.ModerationDelete:
		err = s.delete(ctx, review)
	}
	if err != nil {
		return err
	}

	if err = s.repo.Index().Remove(ctx, repositories.KeyPendingReviews, reviewID); err != nil {
		return fmt.Errorf("failed to update pending reviews: %w", err)
	}

	s.events.ReviewModerated(ctx, review, action, wasApproved || action == models.ModerationApprove)
	op.LogAudit(AuditEventUpdate, reviewID, "review", wasApproved, action)
	return nil
}

// approve is a no-op on the rating when the review was already approved.
func (s *reviewService) approve(ctx context.Context, review *models.Review) error {
	if review.Approved {
		return nil
	}

	approvedAt := s.now().UTC()
	review.Approved = true
	review.ApprovedAt = &approvedAt
	if err := s.repo.Review().Save(ctx, review); err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}

	if err := s.adjustRating(ctx, review, &review.Rating, nil); err != nil {
		return err
	}

	_, err := s.notifications.Push(ctx, review.SubjectID(), models.TitleReviewPublished,
		fmt.Sprintf("A new %d-star review about you has been published", review.Rating))
	return err
}

func (s *reviewService) delete(ctx context.Context, review *models.Review) error {
	if err := s.repo.Review().Delete(ctx, review.ID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if review.Approved {
		return s.adjustRating(ctx, review, nil, &review.Rating)
	}
	return nil
}

// adjustRating credits the reviewed party; a vanished profile is skipped.
func (s *reviewService) adjustRating(ctx context.Context, review *models.Review, added, removed *int) error {
	_, err := s.users.ApplyRatingDelta(ctx, review.SubjectID(), added, removed)
	if err != nil {
		if IsNotFound(err) {
			s.logger.Warn("Reviewed user missing, rating not adjusted",
				"review_id", review.ID,
				"subject_id", review.SubjectID())
			return nil
		}
		return fmt.Errorf("failed to adjust rating: %w", err)
	}
	return nil
}

func (s *reviewService) ReviewsForTutor(ctx context.Context, tutorID string) ([]*models.Review, error) {
	reviews, err := s.repo.Review().List(ctx, repositories.ReviewFilter{
		TutorID:   &tutorID,
		Approved:  boolPtr(true),
		ByStudent: boolPtr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	sortByCreatedDesc(reviews)
	return reviews, nil
}

func (s *reviewService) ReviewsForStudent(ctx context.Context, studentID string) ([]*models.Review, error) {
	reviews, err := s.repo.Review().List(ctx, repositories.ReviewFilter{
		StudentID: &studentID,
		Approved:  boolPtr(true),
		ByStudent: boolPtr(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	sortByCreatedDesc(reviews)
	return reviews, nil
}

// PendingReviews follows the pending index, skipping ids already moderated.
func (s *reviewService) PendingReviews(ctx context.Context) ([]*models.ReviewView, error) {
	ids, err := s.repo.Index().Get(ctx, repositories.KeyPendingReviews)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending reviews: %w", err)
	}

	reviews := make([]*models.Review, 0, len(ids))
	for _, id := range ids {
		review, err := s.repo.Review().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				continue
			}
			return nil, fmt.Errorf("failed to load review: %w", err)
		}
		if !review.Approved {
			reviews = append(reviews, review)
		}
	}
	sortByCreatedDesc(reviews)
	return s.enrich(ctx, reviews)
}

func (s *reviewService) ApprovedReviews(ctx context.Context) ([]*models.ReviewView, error) {
	reviews, err := s.repo.Review().List(ctx, repositories.ReviewFilter{Approved: boolPtr(true)})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return approvedTime(reviews[i]).After(approvedTime(reviews[j]))
	})
	return s.enrich(ctx, reviews)
}

func approvedTime(r *models.Review) time.Time {
	if r.ApprovedAt == nil {
		return time.Time{}
	}
	return *r.ApprovedAt
}

func (s *reviewService) enrich(ctx context.Context, reviews []*models.Review) ([]*models.ReviewView, error) {
	ids := make([]string, 0, len(reviews)*2)
	for _, r := range reviews {
		ids = append(ids, r.StudentID, r.TutorID)
	}
	names, err := s.users.DisplayNames(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve names: %w", err)
	}

	views := make([]*models.ReviewView, len(reviews))
	for i, r := range reviews {
		views[i] = &models.ReviewView{
			Review:      *r,
			StudentName: names[r.StudentID],
			TutorName:   names[r.TutorID],
		}
	}
	return views, nil
}
