package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/repository"
	"github.com/karkasai/karkasai-backend/internal/security"
)

// CredentialStore is the identity collaborator the auth endpoints compose
// with. The auth core treats it as opaque; UserService is the built-in
// implementation backed by the user repository and bcrypt.
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// CreateAccount returns structured validation errors when the account is
	// rejected by policy; the error return is reserved for store failures.
	CreateAccount(ctx context.Context, username, email, password string) (*domain.User, []domain.FieldError, error)
	VerifyPassword(user *domain.User, password string) bool
	ListRoles(user *domain.User) []string
	AssignRole(ctx context.Context, userID, role string) error
}

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) CreateAccount(ctx context.Context, username, email, password string) (*domain.User, []domain.FieldError, error) {
	if fieldErrs := validateAccount(username, email, password); len(fieldErrs) > 0 {
		return nil, fieldErrs, nil
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}
	return user, nil, nil
}

func (s *UserService) VerifyPassword(user *domain.User, password string) bool {
	return security.VerifyPassword(user.PasswordHash, password)
}

func (s *UserService) ListRoles(user *domain.User) []string {
	return user.RoleNames()
}

func (s *UserService) AssignRole(ctx context.Context, userID, role string) error {
	return s.users.AddRole(ctx, userID, role)
}

func validateAccount(username, email, password string) []domain.FieldError {
	var errs []domain.FieldError
	if l := len(username); l < 3 || l > 64 {
		errs = append(errs, domain.FieldError{Field: "username", Message: "must be between 3 and 64 characters"})
	}
	if !strings.Contains(email, "@") {
		errs = append(errs, domain.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	errs = append(errs, validatePassword(password)...)
	return errs
}

func validatePassword(password string) []domain.FieldError {
	var errs []domain.FieldError
	if len(password) < 8 {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must contain an uppercase letter"})
	}
	if !hasLower {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must contain a lowercase letter"})
	}
	if !hasDigit {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must contain a digit"})
	}
	return errs
}
