package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/repository"
)

const createChatTables = `
CREATE TABLE IF NOT EXISTS chats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS chat_participants (
	chat_id INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
	participant TEXT NOT NULL,
	PRIMARY KEY (chat_id, participant)
);
CREATE TABLE IF NOT EXISTS chat_messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
	sender_id TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) repository.ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createChatTables); err != nil {
		return fmt.Errorf("create chat tables: %w", err)
	}
	return nil
}

func (r *ChatRepository) CreateChat(ctx context.Context, participants []string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO chats (created_at) VALUES (?)`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert chat: %w", err)
	}
	chatID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("chat last insert id: %w", err)
	}

	for _, p := range participants {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO chat_participants (chat_id, participant) VALUES (?, ?)`, chatID, p); err != nil {
			return 0, fmt.Errorf("insert chat participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit chat: %w", err)
	}
	return chatID, nil
}

func (r *ChatRepository) GetChat(ctx context.Context, id int64) (*domain.Chat, error) {
	var chat domain.Chat
	var createdAt time.Time
	if err := r.db.QueryRowContext(ctx, `SELECT id, created_at FROM chats WHERE id=?`, id).Scan(&chat.ID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("chat: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan chat: %w", err)
	}
	chat.CreatedAt = createdAt.Local()

	participants, err := r.listParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	chat.Participants = participants
	return &chat, nil
}

func (r *ChatRepository) listParticipants(ctx context.Context, chatID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT participant FROM chat_participants WHERE chat_id=? ORDER BY participant`, chatID)
	if err != nil {
		return nil, fmt.Errorf("query chat participants: %w", err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan chat participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *ChatRepository) ListByParticipant(ctx context.Context, participant string) ([]domain.Chat, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.created_at
FROM chats c
JOIN chat_participants p ON p.chat_id = c.id
WHERE p.participant = ?
ORDER BY c.id DESC`,
		participant,
	)
	if err != nil {
		return nil, fmt.Errorf("query chats: %w", err)
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		var chat domain.Chat
		var createdAt time.Time
		if err := rows.Scan(&chat.ID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chat.CreatedAt = createdAt.Local()
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range chats {
		participants, err := r.listParticipants(ctx, chats[i].ID)
		if err != nil {
			return nil, err
		}
		chats[i].Participants = participants
	}
	return chats, nil
}

func (r *ChatRepository) AddMessage(ctx context.Context, chatID int64, senderID, body string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO chat_messages (chat_id, sender_id, body, created_at)
VALUES (?, ?, ?, ?)`,
		chatID,
		senderID,
		body,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert chat message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("message last insert id: %w", err)
	}
	return id, nil
}

func (r *ChatRepository) ListMessages(ctx context.Context, chatID int64) ([]domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, chat_id, sender_id, body, created_at
FROM chat_messages
WHERE chat_id=?
ORDER BY id ASC`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var createdAt time.Time
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msg.CreatedAt = createdAt.Local()
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
