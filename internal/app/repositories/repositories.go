// Package repositories defines the storage contract shared by every backend.
package repositories

import (
	"context"

	"github.com/yigit/footlink/internal/app/models"
)

// DefaultSuggestionLimit is the page size of the suggested-connections query.
const DefaultSuggestionLimit = 5

// UserRepository defines user persistence operations
type UserRepository interface {
	// Create stores user and fills in ID and CreatedAt. Returns apperrors.ErrUsernameTaken on duplicates.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	Update(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
	// Search matches username, full name or club case-insensitively.
	Search(ctx context.Context, query string, limit int) ([]*models.User, error)
	// ListExcluding returns users whose id is not in exclude, newest account first, ties by id descending.
	ListExcluding(ctx context.Context, exclude []int64, limit int) ([]*models.User, error)
}

// PostRepository defines post persistence operations. Likes on returned posts is the live like count.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	// List returns posts matching filter, newest first.
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
}

// LikeRepository defines like persistence operations
type LikeRepository interface {
	// Toggle removes the like when present and adds it otherwise, in one atomic step.
	Toggle(ctx context.Context, postID, userID int64) (liked bool, likes int, err error)
	Exists(ctx context.Context, postID, userID int64) (bool, error)
	Count(ctx context.Context, postID int64) (int, error)
}

// CommentRepository defines comment persistence operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListByPost returns comments in ascending creation order.
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
}

// ConnectionRepository defines connection persistence operations
type ConnectionRepository interface {
	// Create stores a pending request. Returns apperrors.ErrConnectionExists when any row exists for the pair.
	Create(ctx context.Context, conn *models.Connection) error
	GetByID(ctx context.Context, id int64) (*models.Connection, error)
	FindBetween(ctx context.Context, a, b int64) (*models.Connection, error)
	// ListForUser returns every row where userID is requester or receiver, any status.
	ListForUser(ctx context.Context, userID int64) ([]*models.Connection, error)
	// UpdateStatus moves the row from one status to another. Returns apperrors.ErrConnectionNotFound
	// when the row is missing or not in status from.
	UpdateStatus(ctx context.Context, id int64, from, to models.ConnectionStatus) (*models.Connection, error)
}

// OpportunityRepository defines opportunity persistence operations
type OpportunityRepository interface {
	Create(ctx context.Context, opp *models.Opportunity) error
	GetByID(ctx context.Context, id int64) (*models.Opportunity, error)
	// List returns opportunities newest first.
	List(ctx context.Context) ([]*models.Opportunity, error)
}

// EventRepository defines event persistence operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	// List returns events by date ascending.
	List(ctx context.Context) ([]*models.Event, error)
}

// MessageRepository defines direct message persistence operations
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	// ListForUser returns messages sent or received by userID, oldest first.
	ListForUser(ctx context.Context, userID int64) ([]*models.Message, error)
	// ListConversation returns messages between a and b in either direction, oldest first.
	ListConversation(ctx context.Context, a, b int64) ([]*models.Message, error)
	// MarkRead sets read=true. Returns apperrors.ErrMessageNotFound unless receiverID received the message.
	MarkRead(ctx context.Context, id, receiverID int64) (*models.Message, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        UserRepository
	PostRepository        PostRepository
	LikeRepository        LikeRepository
	CommentRepository     CommentRepository
	ConnectionRepository  ConnectionRepository
	OpportunityRepository OpportunityRepository
	EventRepository       EventRepository
	MessageRepository     MessageRepository

	// Close releases backend resources. May be nil.
	Close func()
}

// Shutdown calls Close when set
func (r *Repositories) Shutdown() {
	if r.Close != nil {
		r.Close()
	}
}
