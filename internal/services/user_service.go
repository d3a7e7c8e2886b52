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

// UserService is the user directory: profiles, tutor approval and ratings
type UserService interface {
	CreateProfile(ctx context.Context, req *CreateProfileRequest) (*models.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, principal models.Principal, req *UpdateProfileRequest) (*models.UserProfile, error)

	// SetApproval is idempotent for repeated calls with the same flag.
	SetApproval(ctx context.Context, principal models.Principal, tutorID string, approved bool) (*models.UserProfile, error)
	// ApplyRatingDelta folds an added and/or removed review rating into the running mean.
	ApplyRatingDelta(ctx context.Context, userID string, added, removed *int) (*models.RatingSummary, error)

	SearchTutors(ctx context.Context, filters TutorSearchFilters) ([]*models.UserProfile, error)
	GetTutor(ctx context.Context, tutorID string) (*TutorDetail, error)
	GetStudent(ctx context.Context, studentID string) (*StudentDetail, error)

	// DisplayNames maps ids to names; unknown ids map to "".
	DisplayNames(ctx context.Context, ids ...string) (map[string]string, error)
}

type CreateProfileRequest struct {
	// ID is assigned by the identity layer; generated when empty.
	ID       string          `json:"-"`
	Email    string          `json:"email" validate:"required,email"`
	Name     string          `json:"name" validate:"required,max=120"`
	Role     models.UserRole `json:"role" validate:"required"`
	Carrera  string          `json:"carrera" validate:"max=120"`
	WhatsApp string          `json:"whatsapp" validate:"max=32"`
	Bio      string          `json:"bio" validate:"max=2000"`
	Subjects []string        `json:"subjects" validate:"dive,required,max=120"`
}

// UpdateProfileRequest holds the mergeable fields. Nil means unchanged.
type UpdateProfileRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1,max=120"`
	WhatsApp *string  `json:"whatsapp" validate:"omitempty,max=32"`
	Bio      *string  `json:"bio" validate:"omitempty,max=2000"`
	Subjects []string `json:"subjects" validate:"omitempty,dive,required,max=120"`
	Carrera  *string  `json:"carrera" validate:"omitempty,max=120"`
}

type TutorSearchFilters struct {
	Subject   string
	MinRating *float64
}

type TutorDetail struct {
	Tutor   *models.UserProfile `json:"tutor"`
	Reviews []*models.Review    `json:"reviews"`
}

type StudentDetail struct {
	Student *models.UserProfile `json:"student"`
	Reviews []*models.Review    `json:"reviews"`
}

type userService struct {
	repo          repositories.Repository
	notifications NotificationService
	events        DomainEventService
	validator     *validator.Validator
	logger        *slog.Logger
	svcLogger     *ServiceLogger
	// profileLocks serializes every read-modify-write of a profile record.
	profileLocks *utils.KeyedMutex
	now          func() time.Time
}

func NewUserService(
	repo repositories.Repository,
	notifications NotificationService,
	domainEvents DomainEventService,
	validator *validator.Validator,
	logger *slog.Logger,
) UserService {
	return &userService{
		repo:          repo,
		notifications: notifications,
		events:        domainEvents,
		validator:     validator,
		logger:        logger,
		svcLogger:     NewServiceLogger(logger, "user"),
		profileLocks:  utils.NewKeyedMutex(),
		now:           time.Now,
	}
}

// ===== PROFILES =====

func (s *userService) CreateProfile(ctx context.Context, req *CreateProfileRequest) (*models.UserProfile, error) {
	if req.Role == models.RoleAdmin {
		return nil, NewValidationError("role", "admin registration is not allowed", req.Role)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Role != models.RoleStudent && req.Role != models.RoleTutor {
		return nil, NewValidationError("role", "must be student or tutor", req.Role)
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	profile := &models.UserProfile{
		ID:        id,
		Email:     strings.TrimSpace(req.Email),
		Name:      strings.TrimSpace(req.Name),
		Role:      req.Role,
		CreatedAt: s.now().UTC(),
	}
	switch req.Role {
	case models.RoleStudent:
		profile.Student = &models.StudentProfile{
			Carrera:  req.Carrera,
			WhatsApp: req.WhatsApp,
		}
	case models.RoleTutor:
		profile.Tutor = &models.TutorProfile{
			Bio:      req.Bio,
			Subjects: normalizeSubjects(req.Subjects),
			WhatsApp: req.WhatsApp,
			Approved: false,
		}
	}

	if err := s.repo.User().Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if profile.Role == models.RoleTutor {
		if err := s.repo.Index().Append(ctx, repositories.KeyPendingTutors, profile.ID); err != nil {
			return nil, fmt.Errorf("failed to register pending tutor: %w", err)
		}
	}

	s.logger.Info("Profile created", "user_id", profile.ID, "role", profile.Role)
	return profile, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, principal models.Principal, req *UpdateProfileRequest) (*models.UserProfile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	unlock := s.profileLocks.Lock(principal.UserID)
	defer unlock()

	profile, err := s.GetProfile(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		profile.Name = strings.TrimSpace(*req.Name)
	}
	switch {
	case profile.Tutor != nil:
		if req.WhatsApp != nil {
			profile.Tutor.WhatsApp = *req.WhatsApp
		}
		if req.Bio != nil {
			profile.Tutor.Bio = *req.Bio
		}
		if req.Subjects != nil {
			profile.Tutor.Subjects = normalizeSubjects(req.Subjects)
		}
	case profile.Student != nil:
		if req.WhatsApp != nil {
			profile.Student.WhatsApp = *req.WhatsApp
		}
		if req.Carrera != nil {
			profile.Student.Carrera = *req.Carrera
		}
	}

	if err := s.repo.User().Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

// ===== APPROVAL AND RATINGS =====

func (s *userService) SetApproval(ctx context.Context, principal models.Principal, tutorID string, approved bool) (profile *models.UserProfile, err error) {
	op := s.svcLogger.WithOperation(ctx, "set_tutor_approval", principal.UserID)
	defer func() { op.LogResult(tutorID, "tutor", err) }()

	if !principal.IsAdmin() {
		return nil, ErrAdminRequired
	}

	unlock := s.profileLocks.Lock(tutorID)
	profile, err = s.repo.User().GetByID(ctx, tutorID)
	if err != nil {
		unlock()
		return nil, mapNotFound(err, ErrTutorNotFound)
	}
	if profile.Tutor == nil {
		unlock()
		return nil, ErrTutorNotFound
	}

	previous := profile.Tutor.Approved
	profile.Tutor.Approved = approved
	err = s.repo.User().Save(ctx, profile)
	unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to save tutor: %w", err)
	}

	index := s.repo.Index()
	if err = index.Remove(ctx, repositories.KeyPendingTutors, tutorID); err != nil {
		return nil, fmt.Errorf("failed to update pending tutors: %w", err)
	}
	if approved {
		err = index.AppendUnique(ctx, repositories.KeyApprovedTutors, tutorID)
	} else {
		err = index.Remove(ctx, repositories.KeyApprovedTutors, tutorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update approved tutors: %w", err)
	}

	title, message := models.TitleTutorRejected, "Your application to become a tutor has been rejected"
	if approved {
		title, message = models.TitleTutorApproved, "Your application to become a tutor has been approved"
	}
	if _, err = s.notifications.Push(ctx, tutorID, title, message); err != nil {
		return nil, err
	}

	s.events.TutorApprovalChanged(ctx, tutorID, approved, principal.UserID)
	op.LogAudit(AuditEventUpdate, tutorID, "tutor", previous, approved)
	return profile, nil
}

func (s *userService) ApplyRatingDelta(ctx context.Context, userID string, added, removed *int) (*models.RatingSummary, error) {
	unlock := s.profileLocks.Lock(userID)
	defer unlock()

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := profile.Ratings()
	if summary == nil {
		return nil, NewBusinessRuleError("NOT_RATEABLE", "user has no rating", map[string]interface{}{
			"user_id": userID,
			"role":    profile.Role,
		})
	}

	if added != nil {
		summary.Add(*added)
	}
	if removed != nil {
		summary.Remove(*removed)
	}

	if err := s.repo.User().Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	s.logger.Debug("Rating updated",
		"user_id", userID,
		"rating", summary.Rating,
		"review_count", summary.ReviewCount)

	result := *summary
	return &result, nil
}

// ===== READS =====

func (s *userService) SearchTutors(ctx context.Context, filters TutorSearchFilters) ([]*models.UserProfile, error) {
	ids, err := s.repo.Index().Get(ctx, repositories.KeyApprovedTutors)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved tutors: %w", err)
	}
	profiles, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tutors: %w", err)
	}

	tutors := make([]*models.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.Tutor == nil || !p.Tutor.Approved {
			continue
		}
		if filters.Subject != "" && !p.HasSubject(filters.Subject) {
			continue
		}
		if filters.MinRating != nil && p.Tutor.Rating < *filters.MinRating {
			continue
		}
		tutors = append(tutors, p)
	}
	return tutors, nil
}

func (s *userService) GetTutor(ctx context.Context, tutorID string) (*TutorDetail, error) {
	profile, err := s.repo.User().GetByID(ctx, tutorID)
	if err != nil {
		return nil, mapNotFound(err, ErrTutorNotFound)
	}
	if profile.Role != models.RoleTutor {
		return nil, ErrTutorNotFound
	}

	reviews, err := s.repo.Review().List(ctx, repositories.ReviewFilter{
		TutorID:   &tutorID,
		Approved:  boolPtr(true),
		ByStudent: boolPtr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	sortByCreatedDesc(reviews)

	return &TutorDetail{Tutor: profile, Reviews: reviews}, nil
}

func (s *userService) GetStudent(ctx context.Context, studentID string) (*StudentDetail, error) {
	profile, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		return nil, mapNotFound(err, ErrStudentNotFound)
	}
	if profile.Role != models.RoleStudent {
		return nil, ErrStudentNotFound
	}

	reviews, err := s.repo.Review().List(ctx, repositories.ReviewFilter{
		StudentID: &studentID,
		Approved:  boolPtr(true),
		ByStudent: boolPtr(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	sortByCreatedDesc(reviews)

	return &StudentDetail{Student: profile, Reviews: reviews}, nil
}

func (s *userService) DisplayNames(ctx context.Context, ids ...string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, seen := names[id]; seen || id == "" {
			continue
		}
		profile, err := s.repo.User().GetByID(ctx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				names[id] = ""
				continue
			}
			return nil, err
		}
		names[id] = profile.Name
	}
	return names, nil
}

// normalizeSubjects trims, drops empties and duplicates, keeping first occurrence order.
func normalizeSubjects(subjects []string) []string {
	out := make([]string, 0, len(subjects))
	seen := make(map[string]struct{}, len(subjects))
	for _, subject := range subjects {
		subject = strings.TrimSpace(subject)
		if subject == "" {
			continue
		}
		if _, ok := seen[subject]; ok {
			continue
		}
		seen[subject] = struct{}{}
		out = append(out, subject)
	}
	return out
}

func sortByCreatedDesc(reviews []*models.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}

func boolPtr(b bool) *bool { return &b }
