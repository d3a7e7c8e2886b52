package repositories

import (
	"context"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
)

type RequestRepository interface {
	GetByID(ctx context.Context, id string) (*models.TutoringRequest, error)
	Save(ctx context.Context, req *models.TutoringRequest) error
	// Create writes the record then appends its id to both owner indexes.
	Create(ctx context.Context, req *models.TutoringRequest) error
	ListByStudent(ctx context.Context, studentID string) ([]*models.TutoringRequest, error)
	ListByTutor(ctx context.Context, tutorID string) ([]*models.TutoringRequest, error)
}

type requestRepository struct {
	store KVStore
	index *indexRepository
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*models.TutoringRequest, error) {
	var req models.TutoringRequest
	if err := getJSON(ctx, r.store, RequestKey(id), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) Save(ctx context.Context, req *models.TutoringRequest) error {
	return setJSON(ctx, r.store, RequestKey(req.ID), req)
}

func (r *requestRepository) Create(ctx context.Context, req *models.TutoringRequest) error {
	if err := r.Save(ctx, req); err != nil {
		return err
	}
	if err := r.index.Append(ctx, StudentRequestsKey(req.StudentID), req.ID); err != nil {
		return err
	}
	return r.index.Append(ctx, TutorRequestsKey(req.TutorID), req.ID)
}

func (r *requestRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.TutoringRequest, error) {
	return r.listIndex(ctx, StudentRequestsKey(studentID))
}

func (r *requestRepository) ListByTutor(ctx context.Context, tutorID string) ([]*models.TutoringRequest, error) {
	return r.listIndex(ctx, TutorRequestsKey(tutorID))
}

// listIndex resolves every id of an owner index to its live record.
func (r *requestRepository) listIndex(ctx context.Context, key string) ([]*models.TutoringRequest, error) {
	ids, err := r.index.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	requests := make([]*models.TutoringRequest, 0, len(ids))
	for _, id := range ids {
		req, err := r.GetByID(ctx, id)
		if err != nil {
			if IsNotFoundError(err) {
				continue
			}
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}
