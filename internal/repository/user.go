package repository

import (
	"context"

	"teleport-backend/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Activate(ctx context.Context, id int64) error
	UpdateDeviceInfo(ctx context.Context, id int64, info domain.DeviceInfo) error
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, email, phoneNumber string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateAvatar(ctx context.Context, id int64, avatarKey string) error
}

// TokenRepository records issued token pairs.
type TokenRepository interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, token *domain.Token) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Token, error)
}
