package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

const (
	tableUsers         = "users"
	tablePosts         = "posts"
	tableLikes         = "likes"
	tableComments      = "comments"
	tableConnections   = "connections"
	tableOpportunities = "opportunities"
	tableEvents        = "events"
	tableMessages      = "messages"
)

// NewRepositories wires every repository to client
func NewRepositories(client *Client) *repositories.Repositories {
	return &repositories.Repositories{
		UserRepository:        &UserRepository{c: client},
		PostRepository:        &PostRepository{c: client},
		LikeRepository:        &LikeRepository{c: client},
		CommentRepository:     &CommentRepository{c: client},
		ConnectionRepository:  &ConnectionRepository{c: client},
		OpportunityRepository: &OpportunityRepository{c: client},
		EventRepository:       &EventRepository{c: client},
		MessageRepository:     &MessageRepository{c: client},
	}
}

// UserRepository reads and writes the users table
type UserRepository struct {
	c *Client
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	var rows []userRow
	if err := r.c.insertRows(ctx, tableUsers, newUserRow(user), &rows); err != nil {
		if apiErr, ok := asAPIError(err); ok && apiErr.IsUniqueViolation() {
			return apperrors.ErrUsernameTaken
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("error creating user: empty representation")
	}
	user.ID = rows[0].ID
	user.CreatedAt = deref(rows[0].CreatedAt)
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var rows []userRow
	if err := r.c.selectRows(ctx, tableUsers, query("select", "*", "id", eq(id)), &rows); err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrUserNotFound
	}
	return rows[0].model(), nil
}

// GetByUsername retrieves a user by username, compared case-insensitively.
// ilike treats "_" as a wildcard, so candidates are narrowed client-side.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var rows []userRow
	if err := r.c.selectRows(ctx, tableUsers, query("select", "*", "username", "ilike."+username), &rows); err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	row, ok := lo.Find(rows, func(u userRow) bool { return strings.EqualFold(u.Username, username) })
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return row.model(), nil
}

// GetByIDs retrieves the users that exist among ids
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	return r.list(ctx, query("select", "*", "id", "in."+idList(lo.Uniq(ids)), "order", "id.asc"))
}

// Update patches the set fields of the user
func (r *UserRepository) Update(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	if update.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	fields := map[string]string{}
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

	var rows []userRow
	if err := r.c.updateRows(ctx, tableUsers, query("id", eq(id)), fields, &rows); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrUserNotFound
	}
	return rows[0].model(), nil
}

// Search matches username, full name or club case-insensitively
func (r *UserRepository) Search(ctx context.Context, q string, limit int) ([]*models.User, error) {
	pattern := quoted(likePattern(q))
	or := fmt.Sprintf("(username.ilike.%s,full_name.ilike.%s,club.ilike.%s)", pattern, pattern, pattern)
	return r.list(ctx, query(
		"select", "*",
		"or", or,
		"order", "created_at.desc,id.desc",
		"limit", strconv.Itoa(limit),
	))
}

// ListExcluding returns users whose id is not in exclude, newest first
func (r *UserRepository) ListExcluding(ctx context.Context, exclude []int64, limit int) ([]*models.User, error) {
	q := query("select", "*", "order", "created_at.desc,id.desc")
	if len(exclude) > 0 {
		q.Set("id", "not.in."+idList(exclude))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return r.list(ctx, q)
}

func (r *UserRepository) list(ctx context.Context, q url.Values) ([]*models.User, error) {
	var rows []userRow
	if err := r.c.selectRows(ctx, tableUsers, q, &rows); err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return lo.Map(rows, func(row userRow, _ int) *models.User { return row.model() }), nil
}
