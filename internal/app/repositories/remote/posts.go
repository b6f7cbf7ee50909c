package remote

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

const postSelect = "*,likes(count)"

// PostRepository reads and writes the posts table. Likes come from the embedded likes(count) aggregate.
type PostRepository struct {
	c *Client
}

// Create inserts a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	var rows []postRow
	if err := r.c.insertRows(ctx, tablePosts, newPostRow(post), &rows); err != nil {
		if apiErr, ok := asAPIError(err); ok && apiErr.IsForeignKeyViolation() {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating post: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("error creating post: empty representation")
	}
	post.ID = rows[0].ID
	post.CreatedAt = deref(rows[0].CreatedAt)
	post.Likes = 0
	return nil
}

// GetByID retrieves a post with its like count
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var rows []postRow
	if err := r.c.selectRows(ctx, tablePosts, query("select", postSelect, "id", eq(id)), &rows); err != nil {
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrPostNotFound
	}
	return rows[0].model(), nil
}

// List returns posts matching filter, newest first
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	q := query("select", postSelect, "order", "created_at.desc,id.desc")
	if filter.Type != "" {
		q.Set("type", eq(filter.Type))
	}
	if filter.AuthorIDs != nil {
		if len(filter.AuthorIDs) == 0 {
			return []*models.Post{}, nil
		}
		q.Set("author_id", "in."+idList(lo.Uniq(filter.AuthorIDs)))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	var rows []postRow
	if err := r.c.selectRows(ctx, tablePosts, q, &rows); err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return lo.Map(rows, func(row postRow, _ int) *models.Post { return row.model() }), nil
}

// LikeRepository reads and writes the likes table
type LikeRepository struct {
	c *Client
}

// Toggle deletes the like if present, otherwise inserts it.
// The unique (post_id, user_id) constraint resolves concurrent inserts.
func (r *LikeRepository) Toggle(ctx context.Context, postID, userID int64) (bool, int, error) {
	var posts []postRow
	if err := r.c.selectRows(ctx, tablePosts, query("select", "id", "id", eq(postID)), &posts); err != nil {
		return false, 0, fmt.Errorf("error checking post: %w", err)
	}
	if len(posts) == 0 {
		return false, 0, apperrors.ErrPostNotFound
	}

	pair := query("post_id", eq(postID), "user_id", eq(userID))

	var deleted []likeRow
	if err := r.c.deleteRows(ctx, tableLikes, pair, &deleted); err != nil {
		return false, 0, fmt.Errorf("error deleting like: %w", err)
	}

	liked := false
	if len(deleted) == 0 {
		err := r.c.insertRows(ctx, tableLikes, likeRow{PostID: postID, UserID: userID}, nil)
		if err != nil {
			apiErr, ok := asAPIError(err)
			switch {
			case ok && apiErr.IsUniqueViolation():
				// a concurrent toggle inserted the same like
			case ok && apiErr.IsForeignKeyViolation():
				return false, 0, apperrors.ErrPostNotFound
			default:
				return false, 0, fmt.Errorf("error inserting like: %w", err)
			}
		}
		liked = true
	}

	likes, err := r.Count(ctx, postID)
	if err != nil {
		return false, 0, err
	}
	return liked, likes, nil
}

// Exists reports whether userID likes postID
func (r *LikeRepository) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	var rows []likeRow
	q := query("select", "post_id,user_id", "post_id", eq(postID), "user_id", eq(userID), "limit", "1")
	if err := r.c.selectRows(ctx, tableLikes, q, &rows); err != nil {
		return false, fmt.Errorf("error checking like: %w", err)
	}
	return len(rows) > 0, nil
}

// Count returns the number of likes on postID
func (r *LikeRepository) Count(ctx context.Context, postID int64) (int, error) {
	n, err := r.c.count(ctx, tableLikes, query("select", "post_id", "post_id", eq(postID)))
	if err != nil {
		return 0, fmt.Errorf("error counting likes: %w", err)
	}
	return n, nil
}

// CommentRepository reads and writes the comments table
type CommentRepository struct {
	c *Client
}

// Create inserts a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	row := commentRow{PostID: comment.PostID, AuthorID: comment.AuthorID, Content: comment.Content, CreatedAt: timePtr(comment.CreatedAt)}
	var rows []commentRow
	if err := r.c.insertRows(ctx, tableComments, row, &rows); err != nil {
		if apiErr, ok := asAPIError(err); ok && apiErr.IsForeignKeyViolation() {
			return apperrors.ErrPostNotFound
		}
		return fmt.Errorf("error creating comment: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("error creating comment: empty representation")
	}
	comment.ID = rows[0].ID
	comment.CreatedAt = deref(rows[0].CreatedAt)
	return nil
}

// ListByPost returns the comments of postID in ascending order
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var rows []commentRow
	q := query("select", "*", "post_id", eq(postID), "order", "created_at.asc,id.asc")
	if err := r.c.selectRows(ctx, tableComments, q, &rows); err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return lo.Map(rows, func(row commentRow, _ int) *models.Comment { return row.model() }), nil
}
