package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"piazza/internal/models"
	"piazza/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo repository.UserRepository
}

type RegisterInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

const (
	minPasswordLen = 8
	maxUsernameLen = 30
)

// Register validates the signup payload, hashes the password with bcrypt
// and stores the user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if len(in.Username) > maxUsernameLen {
		return nil, models.NewValidationError("Username too long (max 30 characters)")
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, models.NewValidationError("First and last name are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, models.NewValidationError("A valid email address is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, models.NewValidationError("Password must be at least 8 characters")
	}

	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, models.NewValidationError("Username is already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}
	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, models.NewValidationError("Email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// Authenticate verifies credentials and returns the user. Unknown usernames
// and wrong passwords produce the same error so probes learn nothing.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	return s.checkCredentials(user, err, password)
}

// AuthenticateByEmail is the email variant of Authenticate, for clients
// that log in with an email address instead of a username.
func (s *UserService) AuthenticateByEmail(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	return s.checkCredentials(user, err, password)
}

func (s *UserService) checkCredentials(user *models.User, lookupErr error, password string) (*models.User, error) {
	if lookupErr != nil {
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid username or password")
		}
		return nil, models.NewInternalError(lookupErr)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// DeleteUser removes an account. Users may only delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, targetID, actorID uint) error {
	if targetID != actorID {
		return models.NewForbiddenError("You can only delete your own account")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", targetID)
		}
		return models.NewInternalError(err)
	}
	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
