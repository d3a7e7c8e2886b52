package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/tutoring-service/internal/auth"
	"github.com/SAP-F-2025/tutoring-service/internal/events"
	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories/memory"
	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/SAP-F-2025/tutoring-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	repo   repositories.Repository
	tokens *auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogger)
	repo := repositories.NewRepository(memory.NewKVMemory())
	tokens := auth.NewJWTService("handler-secret", 60)
	v := validator.New()

	serviceManager := services.NewServiceManager(services.ServiceDeps{
		Repo:               repo,
		Publisher:          events.NewMockEventPublisher(slogger),
		Validator:          v,
		Logger:             slogger,
		Tokens:             tokens,
		Verifier:           auth.NewChainVerifier(tokens),
		Bot:                auth.NoopBotVerifier{},
		StrictRequestAuthz: true,
	})

	router := gin.New()
	router.Use(utils.RequestIDMiddleware())
	NewHandlerManager(serviceManager, repo, v, logger).SetupRoutes(router)

	return &testServer{router: router, repo: repo, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signUp registers through the API and returns the user id and a token.
func (s *testServer) signUp(t *testing.T, email string, role models.UserRole, subjects ...string) (string, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", services.SignUpRequest{
		Email: email, Password: "secret123", Name: email, Role: role, Subjects: subjects,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result services.SignUpResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	w = s.do(t, http.MethodPost, "/api/v1/auth/signin", "", services.SignInRequest{Email: email, Password: "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var signIn services.SignInResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signIn))
	return result.UserID, signIn.AccessToken
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	admin := &models.UserProfile{ID: "admin-1", Email: "admin@uni.edu", Name: "Admin", Role: models.RoleAdmin}
	require.NoError(t, s.repo.User().Save(context.Background(), admin))
	token, err := s.tokens.GenerateToken(admin.ID, admin.Email, string(admin.Role))
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "bad token", header: "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, CodeAuthentication, decodeError(t, w).Code)
		})
	}
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.signUp(t, "ana@uni.edu", models.RoleStudent)

	w := s.do(t, http.MethodGet, "/api/v1/auth/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, userID, profile.ID)

	w = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", services.SignUpRequest{
		Email: "ana@uni.edu", Password: "secret123", Name: "Again", Role: models.RoleStudent,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeConflict, decodeError(t, w).Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/signin", "", services.SignInRequest{Email: "ana@uni.edu", Password: "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", services.SignUpRequest{
		Email: "root@uni.edu", Password: "secret123", Name: "Root", Role: models.RoleAdmin,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeValidation, decodeError(t, w).Code)
}

func TestRequestFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)
	studentID, studentToken := s.signUp(t, "ana@uni.edu", models.RoleStudent)
	tutorID, tutorToken := s.signUp(t, "tom@uni.edu", models.RoleTutor, "Calculus")

	w := s.do(t, http.MethodPut, "/api/v1/admin/tutors/"+tutorID+"/approve", studentToken, TutorApprovalRequest{Approved: boolPtr(true)})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/admin/tutors/"+tutorID+"/approve", adminToken, TutorApprovalRequest{Approved: boolPtr(true)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPut, "/api/v1/tutors/availability", tutorToken, services.SetDaySlotsRequest{
		Day: models.Monday, Slots: []models.AvailabilitySlot{{Start: "10:00", End: "11:00"}},
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/tutors/search?subject=Calculus&minRating=0", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tutors []models.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tutors))
	require.Len(t, tutors, 1)
	assert.Equal(t, tutorID, tutors[0].ID)

	w = s.do(t, http.MethodGet, "/api/v1/tutors/search?minRating=high", studentToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/tutors/"+tutorID+"/availability", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var week models.WeeklyAvailability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &week))
	assert.Len(t, week, 7)
	assert.Equal(t, "10:00 - 11:00", week[models.Monday][0].Label())

	w = s.do(t, http.MethodPost, "/api/v1/requests", studentToken, services.CreateRequestRequest{
		TutorID: tutorID, Subject: "Calculus", Date: models.Monday, Time: "10:00 - 11:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.TutoringRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, studentID, created.StudentID)

	w = s.do(t, http.MethodPut, "/api/v1/requests/"+created.ID, studentToken, map[string]interface{}{"status": "cancelled"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, services.RuleInvalidStatusTransition, decodeError(t, w).Code)

	w = s.do(t, http.MethodPut, "/api/v1/requests/"+created.ID, studentToken, map[string]interface{}{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/requests/"+created.ID, tutorToken, map[string]interface{}{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/requests", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var views []models.RequestView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, models.RequestAccepted, views[0].Status)
	assert.Equal(t, "tom@uni.edu", views[0].TutorName)

	w = s.do(t, http.MethodGet, "/api/v1/notifications", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes NotificationListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notes))
	require.Len(t, notes.Notifications, 1)
	assert.Equal(t, 1, notes.UnreadCount)

	w = s.do(t, http.MethodPut, "/api/v1/notifications/"+notes.Notifications[0].ID+"/read", studentToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/notifications/read-all", studentToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/notifications", studentToken, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notes))
	assert.Zero(t, notes.UnreadCount)
}

func TestReviewModerationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)
	studentID, studentToken := s.signUp(t, "ana@uni.edu", models.RoleStudent)
	tutorID, _ := s.signUp(t, "tom@uni.edu", models.RoleTutor, "Calculus")

	w := s.do(t, http.MethodPost, "/api/v1/reviews", studentToken, services.SubmitReviewRequest{
		TutorID: tutorID, StudentID: studentID, Rating: 9, Comment: "too good",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/reviews", studentToken, services.SubmitReviewRequest{
		TutorID: tutorID, StudentID: studentID, Rating: 4, Comment: "Clear explanations",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var review models.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &review))

	w = s.do(t, http.MethodGet, "/api/v1/admin/reviews/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []models.ReviewView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	w = s.do(t, http.MethodPut, "/api/v1/admin/reviews/"+review.ID, adminToken, ModerateReviewRequest{Action: "publish"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/admin/reviews/"+review.ID, adminToken, ModerateReviewRequest{Action: models.ModerationApprove})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/reviews/tutor/"+tutorID, studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reviews []models.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviews))
	require.Len(t, reviews, 1)

	w = s.do(t, http.MethodGet, "/api/v1/tutors/"+tutorID, studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail services.TutorDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, 4.0, detail.Tutor.Tutor.Rating)
	assert.Equal(t, 1, detail.Tutor.Tutor.ReviewCount)

	w = s.do(t, http.MethodPut, "/api/v1/admin/reviews/missing", adminToken, ModerateReviewRequest{Action: models.ModerationDelete})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, w).Code)
}

func TestAdminUsersOverHTTP(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)
	_, studentToken := s.signUp(t, "ana@uni.edu", models.RoleStudent)
	tutorID, _ := s.signUp(t, "tom@uni.edu", models.RoleTutor)

	w := s.do(t, http.MethodGet, "/api/v1/admin/users?role=tutor", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []models.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, tutorID, users[0].ID)

	w = s.do(t, http.MethodGet, "/api/v1/admin/users?role=janitor", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/admin/users/"+tutorID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail services.UserDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.NotNil(t, detail.Stats)

	w = s.do(t, http.MethodGet, "/api/v1/admin/tutors/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 1)

	w = s.do(t, http.MethodGet, "/api/v1/admin/users/export", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "users.xlsx")
	assert.NotZero(t, w.Body.Len())

	w = s.do(t, http.MethodGet, "/api/v1/admin/users", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, CodeAuthorization, decodeError(t, w).Code)
}

func boolPtr(b bool) *bool { return &b }
