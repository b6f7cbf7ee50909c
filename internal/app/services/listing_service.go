package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

// OpportunityService manages job, trial and training listings
type OpportunityService interface {
	List(ctx context.Context) ([]*models.Opportunity, error)
	GetByID(ctx context.Context, id int64) (*models.Opportunity, error)
	Create(ctx context.Context, opp *models.Opportunity) (*models.Opportunity, error)
}

type opportunityServiceImpl struct {
	repo   repositories.OpportunityRepository
	logger zerolog.Logger
}

// NewOpportunityService creates a new OpportunityService
func NewOpportunityService(repo repositories.OpportunityRepository, logger zerolog.Logger) OpportunityService {
	return &opportunityServiceImpl{repo: repo, logger: logger}
}

func (s *opportunityServiceImpl) List(ctx context.Context) ([]*models.Opportunity, error) {
	opps, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing opportunities: %w", err)
	}
	return opps, nil
}

func (s *opportunityServiceImpl) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	opp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrOpportunityNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting opportunity: %w", err)
	}
	return opp, nil
}

func (s *opportunityServiceImpl) Create(ctx context.Context, opp *models.Opportunity) (*models.Opportunity, error) {
	if err := s.repo.Create(ctx, opp); err != nil {
		s.logger.Error().Err(err).Str("title", opp.Title).Msg("Error creating opportunity")
		return nil, fmt.Errorf("error creating opportunity: %w", err)
	}
	return opp, nil
}

// EventService manages calendar events
type EventService interface {
	List(ctx context.Context) ([]*models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
}

type eventServiceImpl struct {
	repo   repositories.EventRepository
	logger zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(repo repositories.EventRepository, logger zerolog.Logger) EventService {
	return &eventServiceImpl{repo: repo, logger: logger}
}

func (s *eventServiceImpl) List(ctx context.Context) ([]*models.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return events, nil
}

func (s *eventServiceImpl) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	return event, nil
}

func (s *eventServiceImpl) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if event.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", apperrors.ErrValidationFailed)
	}
	if err := s.repo.Create(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("title", event.Title).Msg("Error creating event")
		return nil, fmt.Errorf("error creating event: %w", err)
	}
	return event, nil
}
