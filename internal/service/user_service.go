package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing username or email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidActivationCode indicates a wrong or stale activation code.
	ErrInvalidActivationCode = errors.New("invalid activation code")
	// ErrUserNotActive is returned when an inactive account attempts to log in.
	ErrUserNotActive = errors.New("account is not activated")
	// ErrWrongPassword is returned by password change when the old password does not match.
	ErrWrongPassword = errors.New("old password is incorrect")
)

// Notifier enqueues outbound notifications without blocking the caller.
type Notifier interface {
	EnqueueEmail(recipients []string, subject, body string)
}

// RegisterInput is the payload for new account registration.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	PhoneNumber string
}

// LoginInput carries credentials plus the device metadata recorded at login.
type LoginInput struct {
	Username string
	Password string
	Device   domain.DeviceInfo
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

// UserService describes account lifecycle operations.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	ConfirmEmail(ctx context.Context, username, activationCode string) error
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	SetAvatar(ctx context.Context, userID int64, avatarKey string) error
}

type userService struct {
	users    repository.UserRepository
	tokenRec repository.TokenRepository
	tokens   TokenService
	notifier Notifier
}

func NewUserService(users repository.UserRepository, tokenRec repository.TokenRepository, tokens TokenService, notifier Notifier) UserService {
	return &userService{
		users:    users,
		tokenRec: tokenRec,
		tokens:   tokens,
		notifier: notifier,
	}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	password := strings.TrimSpace(input.Password)

	if username == "" {
		return nil, errors.New("username is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:       username,
		Email:          email,
		PhoneNumber:    strings.TrimSpace(input.PhoneNumber),
		PasswordHash:   string(hash),
		ActivationCode: uuid.NewString(),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.EnqueueEmail(
			[]string{user.Email},
			"Confirm your registration",
			fmt.Sprintf("Hello %s, your activation code is %s", user.Username, user.ActivationCode),
		)
	}

	return user, nil
}

func (s *userService) ConfirmEmail(ctx context.Context, username, activationCode string) error {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidActivationCode
		}
		return err
	}
	if user.IsActive || user.ActivationCode == "" || user.ActivationCode != strings.TrimSpace(activationCode) {
		return ErrInvalidActivationCode
	}
	return s.users.Activate(ctx, user.ID)
}

func (s *userService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserNotActive
	}

	if err := s.users.UpdateDeviceInfo(ctx, user.ID, input.Device); err != nil {
		return nil, fmt.Errorf("record device info: %w", err)
	}

	access, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	pair := &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}
	if s.tokenRec != nil {
		if _, err := s.tokenRec.Save(ctx, &domain.Token{
			UserID:       user.ID,
			AccessToken:  access,
			RefreshToken: refresh,
			TokenType:    pair.TokenType,
		}); err != nil {
			return nil, fmt.Errorf("persist tokens: %w", err)
		}
	}

	return pair, nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.ParseUserID(refreshToken)
	if err != nil {
		return "", err
	}
	return s.tokens.GenerateAccessToken(userID)
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	firstName := strings.TrimSpace(update.FirstName)
	lastName := strings.TrimSpace(update.LastName)
	email := strings.TrimSpace(update.Email)
	phone := strings.TrimSpace(update.PhoneNumber)
	if email == "" {
		email = user.Email
	}
	if phone == "" {
		phone = user.PhoneNumber
	}

	if err := s.users.UpdateProfile(ctx, userID, firstName, lastName, email, phone); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func (s *userService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}
	if len(strings.TrimSpace(newPassword)) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

func (s *userService) SetAvatar(ctx context.Context, userID int64, avatarKey string) error {
	if err := s.users.UpdateAvatar(ctx, userID, avatarKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	sanitized := *user
	sanitized.PasswordHash = ""
	sanitized.ActivationCode = ""
	return &sanitized
}
