package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/footlink/internal/app/auth"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/websocket"
)

// Notifier pushes events to a user's live connections
type Notifier interface {
	SendToUser(userID int64, eventType string, payload any)
}

// MessageService manages direct messages
type MessageService interface {
	Send(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Message, error)
	GetConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error)
	MarkRead(ctx context.Context, actorID, messageID int64) (*models.Message, error)
}

type messageServiceImpl struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	authz       *appAuth.AuthorizationService
	notifier    Notifier
	logger      zerolog.Logger
}

// NewMessageService creates a new MessageService. notifier may be nil.
func NewMessageService(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	authz *appAuth.AuthorizationService,
	notifier Notifier,
	logger zerolog.Logger,
) MessageService {
	return &messageServiceImpl{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		authz:       authz,
		notifier:    notifier,
		logger:      logger,
	}
}

// Send stores the message and pushes it to the receiver
func (s *messageServiceImpl) Send(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error) {
	if senderID == receiverID {
		return nil, apperrors.ErrSelfMessage
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", apperrors.ErrValidationFailed)
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrUserNotFound, "Receiver not found")
		}
		return nil, fmt.Errorf("error finding receiver: %w", err)
	}

	msg := &models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("senderID", senderID).Int64("receiverID", receiverID).Msg("Error creating message")
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.SendToUser(receiverID, websocket.EventMessage, msg)
	}
	return msg, nil
}

// ListForUser returns every message userID sent or received, oldest first
func (s *messageServiceImpl) ListForUser(ctx context.Context, userID int64) ([]*models.Message, error) {
	msgs, err := s.messageRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	return msgs, nil
}

// GetConversation returns the messages between userID and otherID, oldest first
func (s *messageServiceImpl) GetConversation(ctx context.Context, userID, otherID int64) ([]*models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, err
	}
	msgs, err := s.messageRepo.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("error listing conversation: %w", err)
	}
	return msgs, nil
}

// MarkRead flags a received message as read and notifies the sender
func (s *messageServiceImpl) MarkRead(ctx context.Context, actorID, messageID int64) (*models.Message, error) {
	if _, err := s.authz.ValidateMessageParticipant(ctx, actorID, messageID); err != nil {
		// senders and strangers alike see a missing message
		if errors.Is(err, apperrors.ErrPermissionDenied) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, err
	}

	msg, err := s.messageRepo.MarkRead(ctx, messageID, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrMessageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error marking message read: %w", err)
	}

	if s.notifier != nil {
		s.notifier.SendToUser(msg.SenderID, websocket.EventMessageRead, msg)
	}
	return msg, nil
}
