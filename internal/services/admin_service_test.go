package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestAdminService_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	student := env.createStudent(t, "ana")
	admin := env.services.Admin

	checks := map[string]func() error{
		"pending tutors": func() error { _, err := admin.PendingTutors(ctx, student); return err },
		"approval": func() error {
			_, err := admin.SetTutorApproval(ctx, student, "x", true)
			return err
		},
		"pending reviews":  func() error { _, err := admin.PendingReviews(ctx, student); return err },
		"approved reviews": func() error { _, err := admin.ApprovedReviews(ctx, student); return err },
		"moderate":         func() error { return admin.ModerateReview(ctx, student, "x", models.ModerationApprove) },
		"all users":        func() error { _, err := admin.AllUsers(ctx, student, nil); return err },
		"user detail":      func() error { _, err := admin.UserDetail(ctx, student, student.UserID); return err },
		"export":           func() error { _, err := admin.ExportUsers(ctx, student, nil); return err },
	}

	for name, call := range checks {
		t.Run(name, func(t *testing.T) {
			err := call()
			assert.ErrorIs(t, err, ErrAdminRequired)
		})
	}
}

func TestAdminService_PendingTutors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	first := env.createTutor(t, "tom")
	second := env.createTutor(t, "tina")

	pending, err := env.services.Admin.PendingTutors(ctx, env.admin)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.UserID, pending[0].ID)

	_, err = env.services.Admin.SetTutorApproval(ctx, env.admin, first.UserID, true)
	require.NoError(t, err)

	pending, err = env.services.Admin.PendingTutors(ctx, env.admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.UserID, pending[0].ID)
}

func TestAdminService_AllUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createStudent(t, "ana")
	env.createTutor(t, "tom")

	all, err := env.services.Admin.AllUsers(ctx, env.admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	role := models.RoleTutor
	tutors, err := env.services.Admin.AllUsers(ctx, env.admin, &role)
	require.NoError(t, err)
	require.Len(t, tutors, 1)
	assert.Equal(t, "tom", tutors[0].Name)
}

func TestAdminService_UserDetail(t *testing.T) {
	ctx := context.Background()
	f := newRequestFixture(t)
	env := f.env

	accepted := f.create(t)
	completed := f.create(t)
	f.create(t)

	_, err := f.update(t, f.tutor, accepted.ID, &RequestUpdate{Status: statusPtr(models.RequestAccepted)})
	require.NoError(t, err)
	_, err = f.update(t, f.tutor, completed.ID, &RequestUpdate{Status: statusPtr(models.RequestAccepted), ConfirmedByTutor: boolPtr(true)})
	require.NoError(t, err)
	_, err = f.update(t, f.student, completed.ID, &RequestUpdate{ConfirmedByStudent: boolPtr(true)})
	require.NoError(t, err)

	detail, err := env.services.Admin.UserDetail(ctx, env.admin, f.tutor.UserID)
	require.NoError(t, err)
	assert.Equal(t, f.tutor.UserID, detail.User.ID)
	assert.Len(t, detail.Requests, 3)
	require.NotNil(t, detail.Stats)
	assert.Equal(t, 1, detail.Stats.AcceptedCount)
	assert.Equal(t, 1, detail.Stats.CompletedCount)

	detail, err = env.services.Admin.UserDetail(ctx, env.admin, f.student.UserID)
	require.NoError(t, err)
	assert.Len(t, detail.Requests, 3)
	assert.Nil(t, detail.Stats)

	_, err = env.services.Admin.UserDetail(ctx, env.admin, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminService_ExportUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createStudent(t, "ana")
	env.approvedTutor(t, "tom", "Calculus", "Physics")

	data, err := env.services.Admin.ExportUsers(ctx, env.admin, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Users"}, f.GetSheetList())

	rows, err := f.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, userExportHeaders, rows[0])

	var tutorRow []string
	for _, row := range rows[1:] {
		if len(row) > 1 && row[1] == "tom" {
			tutorRow = row
		}
	}
	require.NotNil(t, tutorRow)
	assert.Equal(t, "tutor", tutorRow[3])
	assert.Equal(t, "Calculus, Physics", tutorRow[6])
	assert.Equal(t, "TRUE", tutorRow[7])
}
