package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/tutoring-service/internal/auth"
	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/SAP-F-2025/tutoring-service/internal/validator"
	"github.com/google/uuid"
)

// AuthService is the identity boundary: registration, sign-in and token verification
type AuthService interface {
	SignUp(ctx context.Context, req *SignUpRequest, remoteIP string) (*SignUpResult, error)
	SignIn(ctx context.Context, req *SignInRequest, remoteIP string) (*SignInResult, error)
	Session(ctx context.Context, principal models.Principal) (*models.UserProfile, error)
	// Authenticate turns a bearer token into the acting principal.
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

type SignUpRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	Name     string          `json:"name" validate:"required,max=120"`
	Role     models.UserRole `json:"role" validate:"required,user_role"`
	Carrera  string          `json:"carrera" validate:"max=120"`
	Bio      string          `json:"bio" validate:"max=2000"`
	Subjects []string        `json:"subjects" validate:"dive,required,max=120"`
	BotToken string          `json:"bot_token"`
}

type SignUpResult struct {
	UserID        string          `json:"user_id"`
	Role          models.UserRole `json:"role"`
	NeedsApproval bool            `json:"needs_approval"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	BotToken string `json:"bot_token"`
}

type SignInResult struct {
	AccessToken string              `json:"access_token"`
	User        *models.UserProfile `json:"user"`
}

type authService struct {
	repo      repositories.Repository
	users     UserService
	tokens    *auth.JWTService
	verifier  auth.TokenVerifier
	bot       auth.BotVerifier
	validator *validator.Validator
	logger    *slog.Logger
}

func NewAuthService(
	repo repositories.Repository,
	users UserService,
	tokens *auth.JWTService,
	verifier auth.TokenVerifier,
	bot auth.BotVerifier,
	validator *validator.Validator,
	logger *slog.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		users:     users,
		tokens:    tokens,
		verifier:  verifier,
		bot:       bot,
		validator: validator,
		logger:    logger,
	}
}

func (s *authService) SignUp(ctx context.Context, req *SignUpRequest, remoteIP string) (*SignUpResult, error) {
	if err := s.verifyBot(ctx, req.BotToken, remoteIP); err != nil {
		return nil, err
	}
	if req.Role == models.RoleAdmin {
		return nil, NewValidationError("role", "admin registration is not allowed", req.Role)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	userID := uuid.NewString()
	profileReq := &CreateProfileRequest{
		ID:       userID,
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Carrera:  req.Carrera,
		Bio:      req.Bio,
		Subjects: req.Subjects,
	}
	// Profile rules are checked before anything is written for the email.
	if err := s.validator.Validate(profileReq); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	err = s.repo.User().CreateCredential(ctx, &models.Credential{
		UserID:       userID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	profile, err := s.users.CreateProfile(ctx, profileReq)
	if err != nil {
		if delErr := s.repo.User().DeleteCredential(ctx, email); delErr != nil {
			s.logger.Error("Failed to roll back credential", "email", email, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("User signed up", "user_id", profile.ID, "role", profile.Role)
	return &SignUpResult{
		UserID:        profile.ID,
		Role:          profile.Role,
		NeedsApproval: profile.Role == models.RoleTutor,
	}, nil
}

func (s *authService) SignIn(ctx context.Context, req *SignInRequest, remoteIP string) (*SignInResult, error) {
	if err := s.verifyBot(ctx, req.BotToken, remoteIP); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	cred, err := s.repo.User().GetCredential(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if err := auth.CheckPassword(cred.PasswordHash, req.Password); err != nil {
		s.logger.Warn("Sign-in rejected", "email", cred.Email)
		return nil, ErrAuthenticationFailed
	}

	profile, err := s.users.GetProfile(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(profile.ID, profile.Email, string(profile.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &SignInResult{AccessToken: token, User: profile}, nil
}

func (s *authService) Session(ctx context.Context, principal models.Principal) (*models.UserProfile, error) {
	return s.users.GetProfile(ctx, principal.UserID)
}

func (s *authService) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	identity, err := s.verifier.VerifyToken(ctx, token)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	// Role always comes from the stored profile, never from token claims.
	profile, err := s.repo.User().GetByID(ctx, identity.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return models.Principal{}, fmt.Errorf("%w: no profile for %s", ErrUnauthorized, identity.UserID)
		}
		return models.Principal{}, err
	}

	return models.Principal{UserID: profile.ID, Role: profile.Role}, nil
}

func (s *authService) verifyBot(ctx context.Context, token, remoteIP string) error {
	if err := s.bot.Verify(ctx, token, remoteIP); err != nil {
		s.logger.Warn("Bot verification failed", "remote_ip", remoteIP, "error", err)
		return fmt.Errorf("%w: %v", ErrBotVerificationFailed, err)
	}
	return nil
}
