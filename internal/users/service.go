package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"document-backend/internal/shared/telemetry"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 8

// ErrInvalidCredentials is returned for unknown usernames, wrong passwords,
// and disabled accounts alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// RegistrationError reports field-level problems with a registration request.
type RegistrationError struct {
	Fields map[string]string
}

func (e *RegistrationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid registration: " + strings.Join(parts, "; ")
}

// RegisterInput is a registration request.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
}

// Service contains account business logic.
type Service struct {
	Repo Repo
	Log  *telemetry.Logger

	hashPassword func(password string) (string, error)
}

// NewService constructs a Service.
func NewService(repo Repo, log *telemetry.Logger) *Service {
	return &Service{
		Repo: repo,
		Log:  log,
		hashPassword: func(password string) (string, error) {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			return string(hash), err
		},
	}
}

// Register validates the input and creates an active, non-staff account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	fields := map[string]string{}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" {
		fields["username"] = "username is required"
	}
	if in.Email == "" {
		fields["email"] = "email is required"
	}
	if len(in.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	}
	if in.Password != in.PasswordConfirm {
		fields["password_confirm"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return User{}, &RegistrationError{Fields: fields}
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		IsStaff:      false,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return User{}, &RegistrationError{Fields: map[string]string{"username": ErrUsernameTaken.Error()}}
		}
		return User{}, err
	}

	s.log().Info("user registered", map[string]any{"user": user.Username})
	return user, nil
}

// Authenticate checks a username/password pair. Unknown users, bad passwords,
// and inactive accounts all fail identically.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !user.IsActive {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID returns a user by primary key.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) log() *telemetry.Logger {
	if s.Log != nil {
		return s.Log
	}
	return telemetry.Default()
}
