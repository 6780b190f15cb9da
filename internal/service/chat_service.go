package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/repository"
)

var (
	// ErrChatNotFound indicates the chat does not exist.
	ErrChatNotFound = errors.New("chat not found")
	// ErrNotParticipant is returned when the caller is not a member of the chat.
	ErrNotParticipant = errors.New("caller is not a participant of this chat")
	// ErrEmptyMessage is returned for blank message bodies.
	ErrEmptyMessage = errors.New("message cannot be empty")
	// ErrInvalidParticipant is returned for identifiers that are neither user IDs nor anon_ handles.
	ErrInvalidParticipant = errors.New("participants must be user IDs or identifiers starting with anon_")
)

// ParticipantID formats a registered user ID as a chat participant identifier.
func ParticipantID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// ChatService manages chats and message exchange between participants.
type ChatService interface {
	CreateChat(ctx context.Context, creatorID int64, participants []string) (*domain.Chat, error)
	StartChatByUsername(ctx context.Context, creatorID int64, username string) (*domain.Chat, error)
	SendMessage(ctx context.Context, chatID, callerID int64, body string) (*domain.ChatMessage, error)
	ListMessages(ctx context.Context, chatID, callerID int64) ([]domain.ChatMessage, error)
	ListChats(ctx context.Context, callerID int64) ([]domain.Chat, error)
}

type chatService struct {
	chats repository.ChatRepository
	users repository.UserRepository
}

func NewChatService(chats repository.ChatRepository, users repository.UserRepository) ChatService {
	return &chatService{
		chats: chats,
		users: users,
	}
}

func (s *chatService) CreateChat(ctx context.Context, creatorID int64, participants []string) (*domain.Chat, error) {
	all := append([]string{ParticipantID(creatorID)}, participants...)

	seen := make(map[string]struct{}, len(all))
	unique := make([]string, 0, len(all))
	for _, p := range all {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !validParticipant(p) {
			return nil, ErrInvalidParticipant
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}

	chatID, err := s.chats.CreateChat(ctx, unique)
	if err != nil {
		return nil, err
	}
	return s.chats.GetChat(ctx, chatID)
}

func (s *chatService) StartChatByUsername(ctx context.Context, creatorID int64, username string) (*domain.Chat, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.CreateChat(ctx, creatorID, []string{ParticipantID(user.ID)})
}

func (s *chatService) SendMessage(ctx context.Context, chatID, callerID int64, body string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}
	chat, err := s.memberChat(ctx, chatID, callerID)
	if err != nil {
		return nil, err
	}

	sender := ParticipantID(callerID)
	id, err := s.chats.AddMessage(ctx, chat.ID, sender, body)
	if err != nil {
		return nil, err
	}
	return &domain.ChatMessage{
		ID:       id,
		ChatID:   chat.ID,
		SenderID: sender,
		Body:     body,
	}, nil
}

func (s *chatService) ListMessages(ctx context.Context, chatID, callerID int64) ([]domain.ChatMessage, error) {
	chat, err := s.memberChat(ctx, chatID, callerID)
	if err != nil {
		return nil, err
	}
	return s.chats.ListMessages(ctx, chat.ID)
}

func (s *chatService) ListChats(ctx context.Context, callerID int64) ([]domain.Chat, error) {
	return s.chats.ListByParticipant(ctx, ParticipantID(callerID))
}

func (s *chatService) memberChat(ctx context.Context, chatID, callerID int64) (*domain.Chat, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	caller := ParticipantID(callerID)
	for _, p := range chat.Participants {
		if p == caller {
			return chat, nil
		}
	}
	return nil, ErrNotParticipant
}

func validParticipant(p string) bool {
	if strings.HasPrefix(p, "anon_") {
		return len(p) > len("anon_")
	}
	id, err := strconv.ParseInt(p, 10, 64)
	return err == nil && id > 0
}
