package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// AdminService is the moderation back office. Every method requires an admin principal.
type AdminService interface {
	PendingTutors(ctx context.Context, principal models.Principal) ([]*models.UserProfile, error)
	SetTutorApproval(ctx context.Context, principal models.Principal, tutorID string, approved bool) (*models.UserProfile, error)

	PendingReviews(ctx context.Context, principal models.Principal) ([]*models.ReviewView, error)
	ApprovedReviews(ctx context.Context, principal models.Principal) ([]*models.ReviewView, error)
	ModerateReview(ctx context.Context, principal models.Principal, reviewID string, action models.ModerationAction) error

	AllUsers(ctx context.Context, principal models.Principal, role *models.UserRole) ([]*models.UserProfile, error)
	UserDetail(ctx context.Context, principal models.Principal, userID string) (*UserDetail, error)
	// ExportUsers renders AllUsers as an XLSX workbook.
	ExportUsers(ctx context.Context, principal models.Principal, role *models.UserRole) ([]byte, error)
}

type UserDetail struct {
	User     *models.UserProfile   `json:"user"`
	Requests []*models.RequestView `json:"requests"`
	// Stats is only set for tutors.
	Stats *TutorStats `json:"stats"`
}

type TutorStats struct {
	AcceptedCount  int     `json:"accepted_count"`
	CompletedCount int     `json:"completed_count"`
	Rating         float64 `json:"rating"`
	ReviewCount    int     `json:"review_count"`
}

type adminService struct {
	repo     repositories.Repository
	users    UserService
	requests RequestService
	reviews  ReviewService
	logger   *slog.Logger
}

func NewAdminService(
	repo repositories.Repository,
	users UserService,
	requests RequestService,
	reviews ReviewService,
	logger *slog.Logger,
) AdminService {
	return &adminService{
		repo:     repo,
		users:    users,
		requests: requests,
		reviews:  reviews,
		logger:   logger,
	}
}

func requireAdmin(principal models.Principal) error {
	if !principal.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

func (s *adminService) PendingTutors(ctx context.Context, principal models.Principal) ([]*models.UserProfile, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	ids, err := s.repo.Index().Get(ctx, repositories.KeyPendingTutors)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending tutors: %w", err)
	}
	profiles, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tutors: %w", err)
	}

	tutors := make([]*models.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.Tutor != nil && !p.Tutor.Approved {
			tutors = append(tutors, p)
		}
	}
	return tutors, nil
}

func (s *adminService) SetTutorApproval(ctx context.Context, principal models.Principal, tutorID string, approved bool) (*models.UserProfile, error) {
	return s.users.SetApproval(ctx, principal, tutorID, approved)
}

func (s *adminService) PendingReviews(ctx context.Context, principal models.Principal) ([]*models.ReviewView, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.reviews.PendingReviews(ctx)
}

func (s *adminService) ApprovedReviews(ctx context.Context, principal models.Principal) ([]*models.ReviewView, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	return s.reviews.ApprovedReviews(ctx)
}

func (s *adminService) ModerateReview(ctx context.Context, principal models.Principal, reviewID string, action models.ModerationAction) error {
	return s.reviews.Moderate(ctx, principal, reviewID, action)
}

func (s *adminService) AllUsers(ctx context.Context, principal models.Principal, role *models.UserRole) ([]*models.UserProfile, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	users, err := s.repo.User().List(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *adminService) UserDetail(ctx context.Context, principal models.Principal, userID string) (*UserDetail, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	user, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.requests.History(ctx, user)
	if err != nil {
		return nil, err
	}

	detail := &UserDetail{User: user, Requests: history}
	if user.Tutor != nil {
		stats := &TutorStats{
			Rating:      user.Tutor.Rating,
			ReviewCount: user.Tutor.ReviewCount,
		}
		for _, r := range history {
			switch r.Status {
			case models.RequestAccepted:
				stats.AcceptedCount++
			case models.RequestCompleted:
				stats.CompletedCount++
			}
		}
		detail.Stats = stats
	}
	return detail, nil
}

var userExportHeaders = []string{
	"ID", "Name", "Email", "Role", "Created At", "Carrera", "Subjects", "Approved", "Rating", "Review Count",
}

func (s *adminService) ExportUsers(ctx context.Context, principal models.Principal, role *models.UserRole) ([]byte, error) {
	users, err := s.AllUsers(ctx, principal, role)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Users"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for i, header := range userExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, user := range users {
		for colIndex, value := range userExportRow(user) {
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Users exported", "admin_id", principal.UserID, "count", len(users))
	return buf.Bytes(), nil
}

func userExportRow(u *models.UserProfile) []interface{} {
	row := []interface{}{u.ID, u.Name, u.Email, string(u.Role), u.CreatedAt.Format("2006-01-02 15:04"), "", "", "", 0.0, 0}
	switch {
	case u.Student != nil:
		row[5] = u.Student.Carrera
		row[8] = u.Student.Rating
		row[9] = u.Student.ReviewCount
	case u.Tutor != nil:
		row[6] = strings.Join(u.Tutor.Subjects, ", ")
		row[7] = u.Tutor.Approved
		row[8] = u.Tutor.Rating
		row[9] = u.Tutor.ReviewCount
	}
	return row
}
