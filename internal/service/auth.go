package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recipebox/recipebox-go/internal/apperr"
	"github.com/recipebox/recipebox-go/internal/crypto"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
	minPasswordLength = 8
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var (
	ErrInvalidCredentials  = apperr.New(apperr.KindInvalidCredentials, "incorrect email or password")
	ErrCredentialsRequired = apperr.Validation("please provide email and password")
	ErrUserExists          = apperr.New(apperr.KindConflict, "user with this email or username already exists")
	ErrTokenRequired       = apperr.Validation("token is required")
	ErrInvalidToken        = apperr.New(apperr.KindUnauthenticated, "invalid or expired token")
	ErrUserGone            = apperr.New(apperr.KindUnauthenticated, "the user belonging to this token no longer exists")
	ErrInvalidRole         = apperr.Validation("role must be one of standard, moderator, admin")
	ErrUserNotFound        = apperr.NotFound("user not found")
)

// AuthService handles authentication business logic.
type AuthService struct {
	users  UserStore
	tokens *crypto.TokenIssuer
	logger *slog.Logger
	now    func() time.Time

	// dummyHash is verified against when the email is unknown so that both
	// login failures cost one password hash.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *crypto.TokenIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Signup creates a new user account and returns an auth token.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)
	if err := validateSignup(req); err != nil {
		return model.AuthResponse{}, err
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if exists {
		return model.AuthResponse{}, ErrUserExists
	}

	user, err := s.createUser(ctx, req.Username, req.Email, req.Password, model.RoleStandard)
	if err != nil {
		return model.AuthResponse{}, err
	}

	s.logger.Info("user signed up", "user_id", user.ID, "username", user.Username)
	return s.authResponse(user)
}

func validateSignup(req model.SignupRequest) error {
	switch {
	case req.Username == "":
		return apperr.Validation("username is required")
	case len(req.Username) < minUsernameLength || len(req.Username) > maxUsernameLength:
		return apperr.Validation(fmt.Sprintf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength))
	case !usernamePattern.MatchString(req.Username):
		return apperr.Validation("username may only contain letters, digits, '.', '_' and '-'")
	case req.Email == "":
		return apperr.Validation("email is required")
	case !validEmail(req.Email):
		return apperr.Validation("please provide a valid email")
	case req.Password == "":
		return apperr.Validation("password is required")
	case len(req.Password) < minPasswordLength:
		return apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (s *AuthService) createUser(ctx context.Context, username, email, password string, role model.Role) (*model.User, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and returns an auth token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return model.AuthResponse{}, ErrCredentialsRequired
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.burnHash(req.Password)
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("verifying password of user %s: %w", user.ID, err)
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// burnHash spends the same work as a real password check.
func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		h, err := crypto.HashPassword("recipebox-dummy-password")
		if err != nil {
			s.logger.Error("generating dummy hash", "error", err)
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		_, _ = crypto.VerifyPassword(password, s.dummyHash)
	}
}

// Refresh exchanges a still-valid token for one with a fresh expiry. The old
// token stays valid until it expires on its own.
func (s *AuthService) Refresh(ctx context.Context, req model.RefreshRequest) (model.TokenResponse, error) {
	if strings.TrimSpace(req.Token) == "" {
		return model.TokenResponse{}, ErrTokenRequired
	}

	user, err := s.Authenticate(ctx, req.Token)
	if err != nil {
		return model.TokenResponse{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.TokenResponse{}, err
	}
	return model.TokenResponse{Token: token}, nil
}

// Authenticate verifies a bearer token and loads the user it names.
// Invalid and expired tokens yield the same error.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidToken) || errors.Is(err, crypto.ErrExpiredToken) {
			return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidToken.Message, err)
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserGone
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates an admin account with the given credentials unless a
// user with that email already exists. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if err := validateSignup(model.SignupRequest{Username: username, Email: email, Password: password}); err != nil {
		return false, fmt.Errorf("admin bootstrap: %w", err)
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return false, err
	}

	user, err := s.createUser(ctx, username, email, password, model.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("admin bootstrap: %w", err)
	}

	s.logger.Info("admin user created", "user_id", user.ID, "email", user.Email)
	return true, nil
}

// SetRole changes the role of a user.
func (s *AuthService) SetRole(ctx context.Context, userID string, role model.Role) (model.UserResponse, error) {
	if !role.Valid() {
		return model.UserResponse{}, ErrInvalidRole
	}

	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	s.logger.Info("user role changed", "user_id", user.ID, "role", user.Role)
	return user.Public(), nil
}

func (s *AuthService) authResponse(user *model.User) (model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token: token,
		User:  user.Public(),
	}, nil
}
