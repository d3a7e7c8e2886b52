package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/tutoring-service/internal/auth"
	"github.com/SAP-F-2025/tutoring-service/internal/events"
	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories/memory"
	"github.com/SAP-F-2025/tutoring-service/internal/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a testify mock of events.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type testEnv struct {
	store     *memory.KVMemory
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	services  *ServiceManager
	admin     models.Principal
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := newTestLogger()
	store := memory.NewKVMemory()
	repo := repositories.NewRepository(store)
	publisher := events.NewMockEventPublisher(logger)
	jwtService := auth.NewJWTService("test-secret", 60)

	env := &testEnv{
		store:     store,
		repo:      repo,
		publisher: publisher,
		services: NewServiceManager(ServiceDeps{
			Repo:               repo,
			Publisher:          publisher,
			Validator:          validator.New(),
			Logger:             logger,
			Tokens:             jwtService,
			Verifier:           auth.NewChainVerifier(jwtService),
			Bot:                auth.NoopBotVerifier{},
			StrictRequestAuthz: true,
		}),
	}

	// Admins cannot self-register, so seed one directly.
	adminProfile := &models.UserProfile{ID: "admin-1", Email: "admin@uni.edu", Name: "Admin", Role: models.RoleAdmin}
	require.NoError(t, repo.User().Save(context.Background(), adminProfile))
	env.admin = models.Principal{UserID: adminProfile.ID, Role: models.RoleAdmin}

	return env
}

func (e *testEnv) createStudent(t *testing.T, name string) models.Principal {
	t.Helper()
	profile, err := e.services.User.CreateProfile(context.Background(), &CreateProfileRequest{
		Email:   name + "@uni.edu",
		Name:    name,
		Role:    models.RoleStudent,
		Carrera: "Engineering",
	})
	require.NoError(t, err)
	return models.Principal{UserID: profile.ID, Role: profile.Role}
}

func (e *testEnv) createTutor(t *testing.T, name string, subjects ...string) models.Principal {
	t.Helper()
	profile, err := e.services.User.CreateProfile(context.Background(), &CreateProfileRequest{
		Email:    name + "@uni.edu",
		Name:     name,
		Role:     models.RoleTutor,
		Bio:      "Tutor " + name,
		Subjects: subjects,
	})
	require.NoError(t, err)
	return models.Principal{UserID: profile.ID, Role: profile.Role}
}

func (e *testEnv) approvedTutor(t *testing.T, name string, subjects ...string) models.Principal {
	t.Helper()
	tutor := e.createTutor(t, name, subjects...)
	_, err := e.services.User.SetApproval(context.Background(), e.admin, tutor.UserID, true)
	require.NoError(t, err)
	return tutor
}

func (e *testEnv) profile(t *testing.T, id string) *models.UserProfile {
	t.Helper()
	p, err := e.repo.User().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (e *testEnv) notifications(t *testing.T, userID string) []models.Notification {
	t.Helper()
	list, err := e.repo.Notification().List(context.Background(), userID)
	require.NoError(t, err)
	return list
}

func statusPtr(s models.RequestStatus) *models.RequestStatus { return &s }

func stringPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
