// Package memory implements the repositories on process-local maps guarded by one RWMutex.
package memory

import (
	"sync"
	"time"

	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories"
)

type likeKey struct {
	postID int64
	userID int64
}

// Store owns all in-memory tables
type Store struct {
	mu sync.RWMutex

	users         map[int64]*models.User
	posts         map[int64]*models.Post
	likes         map[likeKey]time.Time
	comments      map[int64]*models.Comment
	connections   map[int64]*models.Connection
	opportunities map[int64]*models.Opportunity
	events        map[int64]*models.Event
	messages      map[int64]*models.Message

	seq map[string]int64
	now func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		users:         make(map[int64]*models.User),
		posts:         make(map[int64]*models.Post),
		likes:         make(map[likeKey]time.Time),
		comments:      make(map[int64]*models.Comment),
		connections:   make(map[int64]*models.Connection),
		opportunities: make(map[int64]*models.Opportunity),
		events:        make(map[int64]*models.Event),
		messages:      make(map[int64]*models.Message),
		seq:           make(map[string]int64),
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRepositories wires every repository to a fresh store
func NewRepositories(opts ...Option) *repositories.Repositories {
	return NewStore(opts...).Repositories()
}

// Repositories exposes the store through the repository interfaces
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		UserRepository:        &UserRepository{s: s},
		PostRepository:        &PostRepository{s: s},
		LikeRepository:        &LikeRepository{s: s},
		CommentRepository:     &CommentRepository{s: s},
		ConnectionRepository:  &ConnectionRepository{s: s},
		OpportunityRepository: &OpportunityRepository{s: s},
		EventRepository:       &EventRepository{s: s},
		MessageRepository:     &MessageRepository{s: s},
	}
}

// nextID must be called with the write lock held
func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// stamp returns t when set, otherwise the store clock. Seeds may preset CreatedAt.
func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}
