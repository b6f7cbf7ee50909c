package auth

import (
	"context"
	"fmt"

	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/logger"
)

// AuthorizationService decides whether an actor may touch a resource
type AuthorizationService struct {
	connectionRepo repositories.ConnectionRepository
	messageRepo    repositories.MessageRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(connectionRepo repositories.ConnectionRepository, messageRepo repositories.MessageRepository) *AuthorizationService {
	return &AuthorizationService{
		connectionRepo: connectionRepo,
		messageRepo:    messageRepo,
	}
}

// ValidateProfileOwner allows users to edit only their own profile
func (s *AuthorizationService) ValidateProfileOwner(actorID, userID int64) error {
	if actorID != userID {
		return apperrors.NewForbiddenError("You can only edit your own profile")
	}
	return nil
}

// ValidateConnectionReceiver loads the connection and checks that actorID received it
func (s *AuthorizationService) ValidateConnectionReceiver(ctx context.Context, actorID, connectionID int64) (*models.Connection, error) {
	conn, err := s.connectionRepo.GetByID(ctx, connectionID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrConnectionNotFound
		}
		logger.Error().Err(err).Int64("connectionID", connectionID).Msg("Error getting connection in ValidateConnectionReceiver")
		return nil, fmt.Errorf("error getting connection: %w", err)
	}
	if conn.ReceiverID != actorID {
		return nil, apperrors.NewForbiddenError("Only the receiver can respond to a connection request")
	}
	return conn, nil
}

// ValidateMessageParticipant checks that actorID sent or received the message
func (s *AuthorizationService) ValidateMessageParticipant(ctx context.Context, actorID, messageID int64) (*models.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error getting message: %w", err)
	}
	if msg.SenderID != actorID && msg.ReceiverID != actorID {
		return nil, apperrors.NewForbiddenError("You are not part of this conversation")
	}
	return msg, nil
}
