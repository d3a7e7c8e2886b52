package services

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/tutoring-service/internal/events"
	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewService_Submit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tutor := env.approvedTutor(t, "tom", "Calculus")
	student := env.createStudent(t, "ana")
	outsider := env.createStudent(t, "eve")

	tests := []struct {
		name        string
		actor       models.Principal
		request     *SubmitReviewRequest
		expectError bool
	}{
		{
			name:    "student reviews tutor",
			actor:   student,
			request: &SubmitReviewRequest{TutorID: tutor.UserID, StudentID: student.UserID, Rating: 5, Comment: "  great  "},
		},
		{
			name:    "tutor reviews student",
			actor:   tutor,
			request: &SubmitReviewRequest{TutorID: tutor.UserID, StudentID: student.UserID, Rating: 3, Comment: "ok"},
		},
		{
			name:        "rating above range",
			actor:       student,
			request:     &SubmitReviewRequest{TutorID: tutor.UserID, StudentID: student.UserID, Rating: 6, Comment: "wow"},
			expectError: true,
		},
		{
			name:        "rating below range",
			actor:       student,
			request:     &SubmitReviewRequest{TutorID: tutor.UserID, StudentID: student.UserID, Rating: 0, Comment: "meh"},
			expectError: true,
		},
		{
			name:        "blank comment",
			actor:       student,
			request:     &SubmitReviewRequest{TutorID: tutor.UserID, StudentID: student.UserID, Rating: 4, Comment: "   "},
			expectError: true,
		},
		{
			name:        "self review",
			actor:       student,
			request:     &SubmitReviewRequest{TutorID: student.UserID, StudentID: student.UserID, Rating: 4, Comment: "me"},
			expectError: true,
		},
		{
			name:        "reviewer not a participant",
			actor:       outsider,
			request:     &SubmitReviewRequest{TutorID: tutor.UserID, StudentID: student.UserID, Rating: 1, Comment: "spite"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			review, err := env.services.Review.Submit(ctx, tt.actor, tt.request)
			if tt.expectError {
				assert.True(t, IsValidation(err), "expected validation error, got %v", err)
				assert.Nil(t, review)
				return
			}
			require.NoError(t, err)
			assert.False(t, review.Approved)
			assert.Nil(t, review.ApprovedAt)
			assert.Equal(t, tt.actor.UserID, review.ReviewerID)

			pending, err := env.repo.Index().Get(ctx, repositories.KeyPendingReviews)
			require.NoError(t, err)
			assert.Contains(t, pending, review.ID)
		})
	}

	stored, err := env.repo.Review().List(ctx, repositories.ReviewFilter{ByStudent: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "great", stored[0].Comment)
}

func TestReviewService_ModerationRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tutor := env.approvedTutor(t, "tom", "Calculus")
	student := env.createStudent(t, "ana")

	review, err := env.services.Review.Submit(ctx, student, &SubmitReviewRequest{
		TutorID: tutor.UserID, StudentID: student.UserID, Rating: 5, Comment: "great",
	})
	require.NoError(t, err)

	require.NoError(t, env.services.Review.Moderate(ctx, env.admin, review.ID, models.ModerationApprove))
	p := env.profile(t, tutor.UserID)
	assert.Equal(t, 5.0, p.Tutor.Rating)
	assert.Equal(t, 1, p.Tutor.ReviewCount)

	notes := env.notifications(t, tutor.UserID)
	require.NotEmpty(t, notes)
	assert.Equal(t, models.TitleReviewPublished, notes[0].Title)

	// Approving twice leaves the rating untouched.
	require.NoError(t, env.services.Review.Moderate(ctx, env.admin, review.ID, models.ModerationApprove))
	p = env.profile(t, tutor.UserID)
	assert.Equal(t, 1, p.Tutor.ReviewCount)

	require.NoError(t, env.services.Review.Moderate(ctx, env.admin, review.ID, models.ModerationDelete))
	p = env.profile(t, tutor.UserID)
	assert.Zero(t, p.Tutor.Rating)
	assert.Zero(t, p.Tutor.ReviewCount)

	_, err = env.repo.Review().GetByID(ctx, review.ID)
	assert.True(t, repositories.IsNotFoundError(err))

	err = env.services.Review.Moderate(ctx, env.admin, review.ID, models.ModerationDelete)
	assert.ErrorIs(t, err, ErrReviewNotFound)

	assert.Len(t, env.publisher.EventsOfType(events.EventReviewApproved), 2)
	assert.Len(t, env.publisher.EventsOfType(events.EventReviewDeleted), 1)
}

func TestReviewService_DeletePendingKeepsRating(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tutor := env.approvedTutor(t, "tom")
	student := env.createStudent(t, "ana")

	review, err := env.services.Review.Submit(ctx, tutor, &SubmitReviewRequest{
		TutorID: tutor.UserID, StudentID: student.UserID, Rating: 2, Comment: "late",
	})
	require.NoError(t, err)

	require.NoError(t, env.services.Review.Moderate(ctx, env.admin, review.ID, models.ModerationDelete))

	p := env.profile(t, student.UserID)
	assert.Zero(t, p.Student.ReviewCount)

	pending, err := env.services.Review.PendingReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReviewService_ModerateValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	student := env.createStudent(t, "ana")

	err := env.services.Review.Moderate(ctx, student, "any", models.ModerationApprove)
	assert.ErrorIs(t, err, ErrAdminRequired)

	err = env.services.Review.Moderate(ctx, env.admin, "any", "publish")
	assert.True(t, IsValidation(err))

	err = env.services.Review.Moderate(ctx, env.admin, "missing", models.ModerationApprove)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewService_VanishedSubjectIsSkipped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	student := env.createStudent(t, "ana")

	review := &models.Review{
		ID: "orphan", TutorID: "gone", StudentID: student.UserID, ReviewerID: student.UserID,
		Rating: 4, Comment: "who?", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, env.repo.Review().Save(ctx, review))

	require.NoError(t, env.services.Review.Moderate(ctx, env.admin, review.ID, models.ModerationApprove))
	stored, err := env.repo.Review().GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.True(t, stored.Approved)
}

func TestReviewService_Listings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tutor := env.approvedTutor(t, "tom", "Calculus")
	student := env.createStudent(t, "ana")

	submit := func(actor models.Principal, rating int) *models.Review {
		r, err := env.services.Review.Submit(ctx, actor, &SubmitReviewRequest{
			TutorID: tutor.UserID, StudentID: student.UserID, Rating: rating, Comment: "c",
		})
		require.NoError(t, err)
		return r
	}

	first := submit(student, 5)
	second := submit(student, 4)
	third := submit(tutor, 3)

	pending, err := env.services.Review.PendingReviews(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
	for _, v := range pending {
		assert.Equal(t, "ana", v.StudentName)
		assert.Equal(t, "tom", v.TutorName)
	}

	for _, r := range []*models.Review{second, first, third} {
		require.NoError(t, env.services.Review.Moderate(ctx, env.admin, r.ID, models.ModerationApprove))
		time.Sleep(time.Millisecond)
	}

	pending, err = env.services.Review.PendingReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	approved, err := env.services.Review.ApprovedReviews(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 3)
	assert.Equal(t, third.ID, approved[0].ID)
	assert.Equal(t, first.ID, approved[1].ID)
	assert.Equal(t, second.ID, approved[2].ID)

	forTutor, err := env.services.Review.ReviewsForTutor(ctx, tutor.UserID)
	require.NoError(t, err)
	assert.Len(t, forTutor, 2)

	forStudent, err := env.services.Review.ReviewsForStudent(ctx, student.UserID)
	require.NoError(t, err)
	require.Len(t, forStudent, 1)
	assert.Equal(t, third.ID, forStudent[0].ID)

	p := env.profile(t, tutor.UserID)
	assert.InDelta(t, 4.5, p.Tutor.Rating, 1e-9)
	assert.Equal(t, 2, p.Tutor.ReviewCount)
	assert.Equal(t, 3.0, env.profile(t, student.UserID).Student.Rating)
}
