// Package services holds the application's business logic, constructed with
// explicit dependencies and invoked by the controllers.
package services

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/rangershop/app/models"
	"github.com/shashiranjanraj/rangershop/app/repositories"
	"github.com/shashiranjanraj/rangershop/pkg/apperr"
	"github.com/shashiranjanraj/rangershop/pkg/auth"
	"github.com/shashiranjanraj/rangershop/pkg/event"
)

// AuthService handles registration, authentication and customer token
// issuance.
type AuthService struct {
	users  *repositories.UserRepository
	tokens *auth.Manager
	events *event.Bus
}

func NewAuthService(users *repositories.UserRepository, tokens *auth.Manager, events *event.Bus) *AuthService {
	return &AuthService{users: users, tokens: tokens, events: events}
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"nullable,max=100"`
	Username  string `json:"username"   validate:"required,alpha_dash,min=2,max=50"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8"`
}

// Register creates a User with a bcrypt-hashed password. An existing username
// or email fails with apperr.ErrDuplicate.
func (s *AuthService) Register(in RegisterInput) (models.User, error) {
	var user models.User

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return user, fmt.Errorf("username, email and password are required: %w", apperr.ErrValidation)
	}

	if _, err := s.users.FindByUsername(in.Username); err == nil {
		return user, fmt.Errorf("username %s already exists: %w", in.Username, apperr.ErrDuplicate)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return user, err
	}

	if _, err := s.users.FindByEmail(in.Email); err == nil {
		return user, fmt.Errorf("email %s already exists: %w", in.Email, apperr.ErrDuplicate)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return user, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return user, fmt.Errorf("hash password: %w", err)
	}

	user = models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
	}
	if err := s.users.Create(&user); err != nil {
		return models.User{}, err
	}

	s.events.Fire(event.UserRegistered, user)
	return user, nil
}

// Authenticate verifies email and password and returns the user with a fresh
// access token. An unknown email and a wrong password are indistinguishable
// to the caller.
func (s *AuthService) Authenticate(email, password string) (models.User, string, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, "", apperr.ErrInvalidCredentials
		}
		return models.User{}, "", err
	}

	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, "", apperr.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}

// Load returns the user with the given id.
func (s *AuthService) Load(id string) (models.User, error) {
	return s.users.FindByID(id)
}

// Token issues an access token for an arbitrary client id, the storefront's
// anonymous-customer flow.
func (s *AuthService) Token(clientID string) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("client id is required: %w", apperr.ErrValidation)
	}
	return s.tokens.Issue(clientID)
}
