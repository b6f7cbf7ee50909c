package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	appAuth "github.com/yigit/footlink/internal/app/auth"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/metrics"
)

// ConnectionService manages connection requests and the social graph built from them
type ConnectionService interface {
	Connect(ctx context.Context, requesterID, targetID int64) (*models.Connection, error)
	Accept(ctx context.Context, actorID, connectionID int64) (*models.Connection, error)
	Decline(ctx context.Context, actorID, connectionID int64) (*models.Connection, error)
	GetPending(ctx context.Context, userID int64) ([]models.UserConnection, error)
	GetAccepted(ctx context.Context, userID int64) ([]models.UserConnection, error)
	GetSuggestions(ctx context.Context, userID int64) []models.Suggestion
	// GetSuggestionsFor is GetSuggestions for an arbitrary user, who must exist
	GetSuggestionsFor(ctx context.Context, userID int64) ([]models.Suggestion, error)
	// ConnectedUserIDs returns the other party of every accepted connection of userID
	ConnectedUserIDs(ctx context.Context, userID int64) ([]int64, error)
}

type connectionServiceImpl struct {
	connectionRepo  repositories.ConnectionRepository
	userRepo        repositories.UserRepository
	authz           *appAuth.AuthorizationService
	suggestionLimit int
	logger          zerolog.Logger
}

// NewConnectionService creates a new ConnectionService. A non-positive suggestionLimit uses the default page size.
func NewConnectionService(
	connectionRepo repositories.ConnectionRepository,
	userRepo repositories.UserRepository,
	authz *appAuth.AuthorizationService,
	suggestionLimit int,
	logger zerolog.Logger,
) ConnectionService {
	if suggestionLimit <= 0 {
		suggestionLimit = repositories.DefaultSuggestionLimit
	}
	return &connectionServiceImpl{
		connectionRepo:  connectionRepo,
		userRepo:        userRepo,
		authz:           authz,
		suggestionLimit: suggestionLimit,
		logger:          logger,
	}
}

// Connect files a pending request from requesterID to targetID
func (s *connectionServiceImpl) Connect(ctx context.Context, requesterID, targetID int64) (*models.Connection, error) {
	if requesterID == targetID {
		return nil, apperrors.ErrSelfConnection
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrUserNotFound, "Target user not found")
		}
		return nil, fmt.Errorf("error finding target user: %w", err)
	}

	conn := &models.Connection{RequesterID: requesterID, ReceiverID: targetID, Status: models.ConnectionPending}
	if err := s.connectionRepo.Create(ctx, conn); err != nil {
		if errors.Is(err, apperrors.ErrConnectionExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("requesterID", requesterID).Int64("targetID", targetID).Msg("Error creating connection")
		return nil, fmt.Errorf("error creating connection: %w", err)
	}

	metrics.ConnectionTransitions.WithLabelValues(string(models.ConnectionPending)).Inc()
	s.logger.Info().Int64("connectionID", conn.ID).Int64("requesterID", requesterID).Int64("receiverID", targetID).Msg("Connection requested")
	return conn, nil
}

// Accept moves a pending request addressed to actorID to accepted
func (s *connectionServiceImpl) Accept(ctx context.Context, actorID, connectionID int64) (*models.Connection, error) {
	return s.respond(ctx, actorID, connectionID, models.ConnectionAccepted)
}

// Decline moves a pending request addressed to actorID to declined
func (s *connectionServiceImpl) Decline(ctx context.Context, actorID, connectionID int64) (*models.Connection, error) {
	return s.respond(ctx, actorID, connectionID, models.ConnectionDeclined)
}

func (s *connectionServiceImpl) respond(ctx context.Context, actorID, connectionID int64, to models.ConnectionStatus) (*models.Connection, error) {
	if _, err := s.authz.ValidateConnectionReceiver(ctx, actorID, connectionID); err != nil {
		return nil, err
	}

	conn, err := s.connectionRepo.UpdateStatus(ctx, connectionID, models.ConnectionPending, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrConnectionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating connection: %w", err)
	}

	metrics.ConnectionTransitions.WithLabelValues(string(to)).Inc()
	return conn, nil
}

// GetPending lists requests awaiting a response from userID
func (s *connectionServiceImpl) GetPending(ctx context.Context, userID int64) ([]models.UserConnection, error) {
	return s.view(ctx, userID, func(c *models.Connection) bool {
		return c.Status == models.ConnectionPending && c.ReceiverID == userID
	})
}

// GetAccepted lists the accepted connections of userID from either side
func (s *connectionServiceImpl) GetAccepted(ctx context.Context, userID int64) ([]models.UserConnection, error) {
	return s.view(ctx, userID, func(c *models.Connection) bool {
		return c.Status == models.ConnectionAccepted
	})
}

func (s *connectionServiceImpl) view(ctx context.Context, userID int64, keep func(*models.Connection) bool) ([]models.UserConnection, error) {
	rows, err := s.connectionRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing connections: %w", err)
	}
	rows = lo.Filter(rows, func(c *models.Connection, _ int) bool { return keep(c) })
	if len(rows) == 0 {
		return []models.UserConnection{}, nil
	}

	others, err := s.userRepo.GetByIDs(ctx, lo.Map(rows, func(c *models.Connection, _ int) int64 { return c.OtherParty(userID) }))
	if err != nil {
		return nil, fmt.Errorf("error loading connected users: %w", err)
	}
	byID := lo.KeyBy(others, func(u *models.User) int64 { return u.ID })

	result := make([]models.UserConnection, 0, len(rows))
	for _, c := range rows {
		other, ok := byID[c.OtherParty(userID)]
		if !ok {
			s.logger.Warn().Int64("connectionID", c.ID).Msg("Connection references a missing user")
			continue
		}
		result = append(result, models.UserConnection{ID: c.ID, User: other.Summary()})
	}
	return result, nil
}

// GetSuggestions returns users with no connection row to userID, newest account first.
// Failures degrade to an empty list.
func (s *connectionServiceImpl) GetSuggestions(ctx context.Context, userID int64) []models.Suggestion {
	rows, err := s.connectionRepo.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Suggestions: failed to load connections")
		return []models.Suggestion{}
	}

	exclude := append(lo.Map(rows, func(c *models.Connection, _ int) int64 { return c.OtherParty(userID) }), userID)
	users, err := s.userRepo.ListExcluding(ctx, lo.Uniq(exclude), s.suggestionLimit)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Suggestions: failed to load candidates")
		return []models.Suggestion{}
	}

	return lo.Map(users, func(u *models.User, _ int) models.Suggestion {
		return models.Suggestion{User: u.Summary()}
	})
}

// GetSuggestionsFor rejects unknown users; other lookup failures degrade like GetSuggestions
func (s *connectionServiceImpl) GetSuggestionsFor(ctx context.Context, userID int64) ([]models.Suggestion, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Suggestions: failed to load user")
		return []models.Suggestion{}, nil
	}
	return s.GetSuggestions(ctx, userID), nil
}

// ConnectedUserIDs returns the peer set of userID
func (s *connectionServiceImpl) ConnectedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.connectionRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing connections: %w", err)
	}
	return lo.FilterMap(rows, func(c *models.Connection, _ int) (int64, bool) {
		return c.OtherParty(userID), c.Status == models.ConnectionAccepted
	}), nil
}
