package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"codecamp/internal/common"
	"codecamp/internal/common/security"
	"codecamp/internal/domain/model"
	"codecamp/internal/domain/repository"
	"codecamp/internal/platform/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 8

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *SignupRequest) normalize() error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fmt.Errorf("username, email and password are required: %w", common.ErrBadRequest)
	}
	if !emailRegex.MatchString(req.Email) {
		return fmt.Errorf("invalid email address: %w", common.ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, common.ErrValidation)
	}
	return nil
}

type LoginRequest struct {
	LoginField string `json:"loginField"` // username or email
	Password   string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	user, err := s.newUser(req, model.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict on duplicates
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.LoginField == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	// Try finding by email first, then by username
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.LoginField)))
	if errors.Is(err, common.ErrNotFound) {
		user, err = s.userRepo.FindByUsername(ctx, strings.TrimSpace(req.LoginField))
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

type ProvisionResult string

const (
	AdminCreated   ProvisionResult = "created"
	AdminPromoted  ProvisionResult = "promoted"
	AdminUnchanged ProvisionResult = "unchanged"
)

// ProvisionAdmin makes sure an admin account exists for req.Email. Running it
// again with the same email changes nothing; the password of an existing
// account is never overwritten.
func (s *AuthService) ProvisionAdmin(ctx context.Context, req SignupRequest) (ProvisionResult, error) {
	if err := req.normalize(); err != nil {
		return "", err
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if existing.Role == model.RoleAdmin {
			return AdminUnchanged, nil
		}
		if err := s.userRepo.UpdateRole(ctx, existing.ID, model.RoleAdmin); err != nil {
			return "", fmt.Errorf("failed to promote user: %w", err)
		}
		logger.Info(ctx, "user promoted to admin", zap.String("user_id", existing.ID))
		return AdminPromoted, nil
	case !errors.Is(err, common.ErrNotFound):
		return "", fmt.Errorf("failed to look up admin: %w", err)
	}

	user, err := s.newUser(req, model.RoleAdmin)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", fmt.Errorf("failed to create admin: %w", err)
	}
	logger.Info(ctx, "admin account created", zap.String("user_id", user.ID))
	return AdminCreated, nil
}

func (s *AuthService) newUser(req SignupRequest, role string) (*model.User, error) {
	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           role,
		SolvedProblems: []model.SolvedProblem{},
		RecentActivity: []model.ActivityEntry{},
	}, nil
}
