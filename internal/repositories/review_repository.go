package repositories

import (
	"context"
	"encoding/json"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
)

// ReviewFilter narrows a review scan. Nil fields match everything.
type ReviewFilter struct {
	TutorID   *string
	StudentID *string
	Approved  *bool
	// ByStudent selects student-authored (true) or tutor-authored (false) reviews.
	ByStudent *bool
}

func (f ReviewFilter) matches(r *models.Review) bool {
	if f.TutorID != nil && r.TutorID != *f.TutorID {
		return false
	}
	if f.StudentID != nil && r.StudentID != *f.StudentID {
		return false
	}
	if f.Approved != nil && r.Approved != *f.Approved {
		return false
	}
	if f.ByStudent != nil && r.ByStudent() != *f.ByStudent {
		return false
	}
	return true
}

type ReviewRepository interface {
	GetByID(ctx context.Context, id string) (*models.Review, error)
	Save(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id string) error
	// List scans the review family; order is unspecified.
	List(ctx context.Context, filter ReviewFilter) ([]*models.Review, error)
}

type reviewRepository struct {
	store KVStore
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := getJSON(ctx, r.store, ReviewKey(id), &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Save(ctx context.Context, review *models.Review) error {
	return setJSON(ctx, r.store, ReviewKey(review.ID), review)
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	return deleteKey(ctx, r.store, ReviewKey(id))
}

func (r *reviewRepository) List(ctx context.Context, filter ReviewFilter) ([]*models.Review, error) {
	var reviews []*models.Review
	err := scanJSON(ctx, r.store, PrefixReview, func(raw []byte) error {
		var review models.Review
		if err := json.Unmarshal(raw, &review); err != nil {
			return err
		}
		if filter.matches(&review) {
			reviews = append(reviews, &review)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
