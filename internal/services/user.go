package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jjudge-oj/glossary/internal/store"
	"github.com/jjudge-oj/glossary/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id string) error
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo     UserRepository
	hashCost int
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, hashCost: bcrypt.DefaultCost}
}

// Register creates an account with the default role. It does not sign the
// user in.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return types.User{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		Role:         types.RoleUser,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user matching the credentials. Unknown emails
// and wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return types.User{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

// SetRole changes the role of the user with the given email.
func (s *UserService) SetRole(ctx context.Context, email, role string) (types.User, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role != types.RoleUser && role != types.RoleAdmin {
		return types.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	if user.Role == role {
		return user, nil
	}
	user.Role = role
	return s.repo.Update(ctx, user)
}

// DeleteByEmail removes the account with the given email. Terms it added
// keep existing with no author.
func (s *UserService) DeleteByEmail(ctx context.Context, email string) (types.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return types.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
