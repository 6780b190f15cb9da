package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/repository"
)

const createCardsTable = `
CREATE TABLE IF NOT EXISTS business_cards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL UNIQUE,
	subdomain TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	links TEXT NOT NULL DEFAULT ''
);
`

type CardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCardsTable); err != nil {
		return fmt.Errorf("create business cards table: %w", err)
	}
	return nil
}

func (r *CardRepository) Upsert(ctx context.Context, card *domain.BusinessCard) error {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO business_cards (user_id, subdomain, title, description, links)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	subdomain=excluded.subdomain,
	title=excluded.title,
	description=excluded.description,
	links=excluded.links`,
		card.UserID,
		card.Subdomain,
		card.Title,
		card.Description,
		card.Links,
	)
	if err != nil {
		// the user_id conflict is handled above, so a remaining unique
		// violation can only be the subdomain index
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return repository.ErrSubdomainConflict
		}
		return fmt.Errorf("upsert business card: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		card.ID = id
	}
	return nil
}

func (r *CardRepository) GetByUserID(ctx context.Context, userID int64) (*domain.BusinessCard, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, subdomain, title, description, links
FROM business_cards
WHERE user_id = ?`,
		userID,
	)
	return scanCard(row)
}

func (r *CardRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.BusinessCard, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, subdomain, title, description, links
FROM business_cards
WHERE subdomain = ?`,
		subdomain,
	)
	return scanCard(row)
}

func scanCard(row interface {
	Scan(dest ...any) error
}) (*domain.BusinessCard, error) {
	var card domain.BusinessCard
	if err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.Subdomain,
		&card.Title,
		&card.Description,
		&card.Links,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("business card: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan business card: %w", err)
	}
	return &card, nil
}
