package repository

import (
	"context"
	"errors"

	"teleport-backend/internal/domain"
)

// ErrSubdomainConflict is returned by Upsert when the subdomain is already
// claimed by a different user.
var ErrSubdomainConflict = errors.New("subdomain already taken")

// CardRepository manages business card persistence. Each user has at most one
// card and each subdomain maps to at most one card.
type CardRepository interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, card *domain.BusinessCard) error
	GetByUserID(ctx context.Context, userID int64) (*domain.BusinessCard, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.BusinessCard, error)
}
