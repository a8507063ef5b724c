package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vertice-erp/vertice-erp/internal/platform/httpx"
)

// Service wraps authentication and account administration rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// LoginResult carries the issued token and its owner.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	User        Principal `json:"user"`
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	principal := Principal{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
	token, err := s.tokens.Issue(ctx, principal)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, TokenType: "bearer", User: principal}, nil
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	return user, nil
}

// Register creates a new account. Duplicate emails are rejected.
func (s *Service) Register(ctx context.Context, name, email, password string, role Role) (*User, error) {
	if !role.Valid() {
		role = RoleSeller
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, httpx.ErrConflict) {
			return nil, fmt.Errorf("%w: email already registered", httpx.ErrConflict)
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every account.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// UpdateUser changes name, email and role.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, name, email string, role Role) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, role)
	}
	if err := s.repo.Update(ctx, id, name, strings.ToLower(strings.TrimSpace(email)), role); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// ResetPassword replaces an account's password.
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// SetActive enables or disables an account. Disabled accounts cannot log in.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

// DeleteUser removes an account permanently.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// EnsureDefaultAdmin creates the bootstrap administrator when missing.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, logger *slog.Logger, email, password string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return err
	}
	if _, err := s.Register(ctx, "Administrador", email, password, RoleAdmin); err != nil {
		return fmt.Errorf("auth: seed admin: %w", err)
	}
	if logger != nil {
		logger.Info("default admin created", slog.String("email", email))
	}
	return nil
}
