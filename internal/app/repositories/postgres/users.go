package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/dberrors"
	"github.com/yigit/footlink/internal/pkg/logger"
)

var userColumns = []string{
	"id", "username", "password",
	"COALESCE(full_name, '')", "COALESCE(position, '')", "COALESCE(club, '')",
	"COALESCE(location, '')", "COALESCE(bio, '')",
	"COALESCE(avatar_url, '')", "COALESCE(cover_url, '')",
	"verified", "is_pro", "created_at",
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Password,
		&user.FullName, &user.Position, &user.Club,
		&user.Location, &user.Bio,
		&user.AvatarURL, &user.CoverURL,
		&user.Verified, &user.IsPro, &user.CreatedAt,
	)
	return user, err
}

// UserRepository handles user database operations
type UserRepository struct {
	s *Store
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := r.s.sb.Insert("users").
		Columns("username", "password", "full_name", "position", "club", "location", "bio",
			"avatar_url", "cover_url", "verified", "is_pro").
		Values(user.Username, user.Password, user.FullName, user.Position, user.Club, user.Location, user.Bio,
			user.AvatarURL, user.CoverURL, user.Verified, user.IsPro).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.s.db.Pool.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.UsernameUniqueConstraint) {
			return apperrors.ErrUsernameTaken
		}
		logger.Error().Err(err).Str("username", user.Username).Msg("Error creating user")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves a user by username, compared case-insensitively
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(username) = LOWER(?)", username))
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.s.sb.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.s.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetByIDs retrieves the users that exist among ids
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	return r.list(ctx, r.s.sb.Select(userColumns...).From("users").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC"))
}

// Update applies a partial update and returns the stored user
func (r *UserRepository) Update(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	if update.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	fields := map[string]interface{}{}
	setIf := func(column string, value *string) {
		if value != nil {
			fields[column] = *value
		}
	}
	setIf("full_name", update.FullName)
	setIf("position", update.Position)
	setIf("club", update.Club)
	setIf("location", update.Location)
	setIf("bio", update.Bio)
	setIf("avatar_url", update.AvatarURL)
	setIf("cover_url", update.CoverURL)

	sql, args, err := r.s.sb.Update("users").
		SetMap(fields).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update user query: %w", err)
	}

	user, err := scanUser(r.s.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error updating user")
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user, nil
}

// Search matches username, full name or club with ILIKE
func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	pattern := likePattern(query)
	return r.list(ctx, r.s.sb.Select(userColumns...).From("users").
		Where(squirrel.Or{
			squirrel.ILike{"username": pattern},
			squirrel.ILike{"full_name": pattern},
			squirrel.ILike{"club": pattern},
		}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)))
}

// ListExcluding returns users whose id is not in exclude, newest first
func (r *UserRepository) ListExcluding(ctx context.Context, exclude []int64, limit int) ([]*models.User, error) {
	q := r.s.sb.Select(userColumns...).From("users").OrderBy("created_at DESC", "id DESC")
	if len(exclude) > 0 {
		q = q.Where(squirrel.NotEq{"id": exclude})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return r.list(ctx, q)
}

func (r *UserRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.User, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
