package repository

import (
	"context"

	"teleport-backend/internal/domain"
)

// ChatRepository manages chats and their messages.
type ChatRepository interface {
	Init(ctx context.Context) error
	CreateChat(ctx context.Context, participants []string) (int64, error)
	GetChat(ctx context.Context, id int64) (*domain.Chat, error)
	ListByParticipant(ctx context.Context, participant string) ([]domain.Chat, error)
	AddMessage(ctx context.Context, chatID int64, senderID, body string) (int64, error)
	ListMessages(ctx context.Context, chatID int64) ([]domain.ChatMessage, error)
}
