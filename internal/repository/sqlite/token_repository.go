package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/repository"
)

const createTokensTable = `
CREATE TABLE IF NOT EXISTS tokens (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	access_token TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	token_type TEXT NOT NULL DEFAULT 'bearer',
	created_at DATETIME NOT NULL
);
`

type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) repository.TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTokensTable); err != nil {
		return fmt.Errorf("create tokens table: %w", err)
	}
	return nil
}

func (r *TokenRepository) Save(ctx context.Context, token *domain.Token) (int64, error) {
	if token.TokenType == "" {
		token.TokenType = "bearer"
	}
	token.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO tokens (user_id, access_token, refresh_token, token_type, created_at)
VALUES (?, ?, ?, ?, ?)`,
		token.UserID,
		token.AccessToken,
		token.RefreshToken,
		token.TokenType,
		token.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert token: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("token last insert id: %w", err)
	}
	token.ID = id
	return id, nil
}

func (r *TokenRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Token, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, access_token, refresh_token, token_type, created_at
FROM tokens
WHERE user_id = ?
ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []domain.Token
	for rows.Next() {
		var token domain.Token
		if err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.AccessToken,
			&token.RefreshToken,
			&token.TokenType,
			&token.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

var _ repository.TokenRepository = (*TokenRepository)(nil)
