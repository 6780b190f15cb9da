package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/repository"
)

var (
	// ErrCardNotFound indicates the user or subdomain has no business card.
	ErrCardNotFound = errors.New("business card not found")
	// ErrSubdomainTaken is returned when the requested subdomain belongs to another user.
	ErrSubdomainTaken = errors.New("subdomain already taken")
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// CardInput is the payload for creating or updating a business card.
type CardInput struct {
	Subdomain   string
	Title       string
	Description string
	Links       string
}

// CardService manages business card microsite pages.
type CardService interface {
	CreateOrUpdate(ctx context.Context, userID int64, input CardInput) (*domain.BusinessCard, error)
	GetByUser(ctx context.Context, userID int64) (*domain.BusinessCard, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.BusinessCard, error)
}

type cardService struct {
	cards repository.CardRepository
}

func NewCardService(cards repository.CardRepository) CardService {
	return &cardService{cards: cards}
}

func (s *cardService) CreateOrUpdate(ctx context.Context, userID int64, input CardInput) (*domain.BusinessCard, error) {
	subdomain := strings.ToLower(strings.TrimSpace(input.Subdomain))
	if !subdomainPattern.MatchString(subdomain) {
		return nil, errors.New("invalid subdomain")
	}

	card := &domain.BusinessCard{
		UserID:      userID,
		Subdomain:   subdomain,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Links:       input.Links,
	}

	if err := s.cards.Upsert(ctx, card); err != nil {
		if errors.Is(err, repository.ErrSubdomainConflict) {
			return nil, ErrSubdomainTaken
		}
		return nil, err
	}
	return s.GetByUser(ctx, userID)
}

func (s *cardService) GetByUser(ctx context.Context, userID int64) (*domain.BusinessCard, error) {
	card, err := s.cards.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

func (s *cardService) GetBySubdomain(ctx context.Context, subdomain string) (*domain.BusinessCard, error) {
	card, err := s.cards.GetBySubdomain(ctx, strings.ToLower(strings.TrimSpace(subdomain)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}
