package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

// UserRepository is the in-memory user table
type UserRepository struct {
	s *Store
}

// Create stores a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return apperrors.ErrUsernameTaken
		}
	}

	user.ID = r.s.nextID("users")
	user.CreatedAt = r.s.stamp(user.CreatedAt)
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

// GetByID returns the user with id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// GetByUsername returns the user with username, compared case-insensitively
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if strings.EqualFold(user.Username, username) {
			out := *user
			return &out, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// GetByIDs returns the users that exist among ids, in id order
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*models.User, 0, len(ids))
	for _, id := range lo.Uniq(ids) {
		if user, ok := r.s.users[id]; ok {
			out := *user
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update applies a partial update
func (r *UserRepository) Update(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	update.Apply(user)
	out := *user
	return &out, nil
}

// Search matches query against username, full name and club
func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(query)
	matches := lo.Filter(lo.Values(r.s.users), func(u *models.User, _ int) bool {
		return strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.FullName), q) ||
			strings.Contains(strings.ToLower(u.Club), q)
	})
	return copyUsers(newestFirst(matches), limit), nil
}

// ListExcluding returns users not in exclude, newest first
func (r *UserRepository) ListExcluding(ctx context.Context, exclude []int64, limit int) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	excluded := lo.SliceToMap(exclude, func(id int64) (int64, struct{}) { return id, struct{}{} })
	candidates := lo.Filter(lo.Values(r.s.users), func(u *models.User, _ int) bool {
		_, skip := excluded[u.ID]
		return !skip
	})
	return copyUsers(newestFirst(candidates), limit), nil
}

func newestFirst(users []*models.User) []*models.User {
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users
}

func copyUsers(users []*models.User, limit int) []*models.User {
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return lo.Map(users, func(u *models.User, _ int) *models.User {
		out := *u
		return &out
	})
}
