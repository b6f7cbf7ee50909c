package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	appAuth "github.com/yigit/footlink/internal/app/auth"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/cache"
	"github.com/yigit/footlink/internal/pkg/filestorage"
	"github.com/yigit/footlink/internal/pkg/validation"
)

const (
	// MinSearchLength is the shortest query that reaches the repository
	MinSearchLength = 3
	// SearchLimit caps user search results
	SearchLimit = 20

	scoutingKeyPrefix = "scouting:"
)

// UserService defines the interface for user operations
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SearchUsers(ctx context.Context, query string) ([]*models.User, error)
	UpdateProfile(ctx context.Context, actorID, userID int64, update models.UserUpdate) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.User, error)
	UpdateCover(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.User, error)
	GetScoutingInsights(ctx context.Context, userID int64) (*models.ScoutingData, error)
}

type userServiceImpl struct {
	userRepo    repositories.UserRepository
	authz       *appAuth.AuthorizationService
	fileStorage filestorage.FileStorage
	cache       cache.Client
	scoutingTTL time.Duration
	logger      zerolog.Logger
}

// NewUserService creates a new UserService. cache may be nil, in which case insights are regenerated per call.
func NewUserService(
	userRepo repositories.UserRepository,
	authz *appAuth.AuthorizationService,
	fileStorage filestorage.FileStorage,
	cacheClient cache.Client,
	scoutingTTL time.Duration,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		authz:       authz,
		fileStorage: fileStorage,
		cache:       cacheClient,
		scoutingTTL: scoutingTTL,
		logger:      logger,
	}
}

// GetUserByID retrieves a user by ID
func (s *userServiceImpl) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return user, nil
}

// SearchUsers returns up to SearchLimit matches; short queries yield an empty list
func (s *userServiceImpl) SearchUsers(ctx context.Context, query string) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchLength {
		return []*models.User{}, nil
	}

	users, err := s.userRepo.Search(ctx, query, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("error searching users: %w", err)
	}
	return users, nil
}

// UpdateProfile applies a partial update to the actor's own profile
func (s *userServiceImpl) UpdateProfile(ctx context.Context, actorID, userID int64, update models.UserUpdate) (*models.User, error) {
	if err := s.authz.ValidateProfileOwner(actorID, userID); err != nil {
		return nil, err
	}

	for field, check := range map[string]struct {
		value *string
		max   int
	}{
		"fullName": {update.FullName, validation.NameMaxLength},
		"position": {update.Position, validation.NameMaxLength},
		"club":     {update.Club, validation.NameMaxLength},
		"location": {update.Location, validation.NameMaxLength},
		"bio":      {update.Bio, validation.BioMaxLength},
	} {
		if err := validation.ValidateOptional(field, check.value, check.max); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
		}
	}

	user, err := s.userRepo.Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Error updating profile")
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return user, nil
}

// UpdateAvatar stores the image and points avatarUrl at it
func (s *userServiceImpl) UpdateAvatar(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.User, error) {
	return s.replaceImage(ctx, userID, file, filestorage.FolderAvatars, func(u *models.User) *string { return &u.AvatarURL },
		func(url string) models.UserUpdate { return models.UserUpdate{AvatarURL: &url} })
}

// UpdateCover stores the image and points coverUrl at it
func (s *userServiceImpl) UpdateCover(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.User, error) {
	return s.replaceImage(ctx, userID, file, filestorage.FolderCovers, func(u *models.User) *string { return &u.CoverURL },
		func(url string) models.UserUpdate { return models.UserUpdate{CoverURL: &url} })
}

func (s *userServiceImpl) replaceImage(
	ctx context.Context,
	userID int64,
	file *multipart.FileHeader,
	folder string,
	current func(*models.User) *string,
	update func(url string) models.UserUpdate,
) (*models.User, error) {
	if _, err := filestorage.ValidateImage(file); err != nil {
		return nil, apperrors.NewBadRequestError("File must be an image")
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := *current(user)

	url, err := s.fileStorage.SaveFile(ctx, file, folder)
	if err != nil {
		return nil, fmt.Errorf("error saving %s image: %w", folder, err)
	}

	updated, err := s.userRepo.Update(ctx, userID, update(url))
	if err != nil {
		if delErr := s.fileStorage.DeleteFile(ctx, url); delErr != nil {
			s.logger.Warn().Err(delErr).Str("url", url).Msg("Failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("error updating user image: %w", err)
	}

	if previous != "" {
		if err := s.fileStorage.DeleteFile(ctx, previous); err != nil {
			s.logger.Warn().Err(err).Str("url", previous).Msg("Failed to delete previous image")
		}
	}
	return updated, nil
}

// GetScoutingInsights returns mock counters, stable for the cache TTL
func (s *userServiceImpl) GetScoutingInsights(ctx context.Context, userID int64) (*models.ScoutingData, error) {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	key := scoutingKeyPrefix + strconv.FormatInt(userID, 10)
	if s.cache != nil {
		var cached models.ScoutingData
		err := cache.GetObj(ctx, s.cache, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Scouting cache read failed")
		}
	}

	data := generateScoutingData()
	if s.cache != nil {
		if err := cache.SetObj(ctx, s.cache, key, data, s.scoutingTTL); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Scouting cache write failed")
		}
	}
	return lo.ToPtr(data), nil
}

func generateScoutingData() models.ScoutingData {
	return models.ScoutingData{
		ProfileViews:       20 + rand.IntN(15),
		HighlightViews:     143 + rand.IntN(50),
		OpportunityMatches: 5 + rand.IntN(5),
	}
}
