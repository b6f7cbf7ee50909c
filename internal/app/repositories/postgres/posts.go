package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/dberrors"
	"github.com/yigit/footlink/internal/pkg/logger"
)

var postColumns = []string{
	"p.id", "p.author_id", "p.content", "p.type",
	"COALESCE(p.media_url, '')", "p.views",
	"COALESCE(p.achievement_title, '')", "COALESCE(p.achievement_subtitle, '')",
	"p.stats_data", "p.shared_data",
	"(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS likes",
	"p.created_at",
}

func scanPost(row pgx.Row) (*models.Post, error) {
	post := &models.Post{}
	var statsRaw, sharedRaw []byte
	err := row.Scan(
		&post.ID, &post.AuthorID, &post.Content, &post.Type,
		&post.MediaURL, &post.Views,
		&post.AchievementTitle, &post.AchievementSubtitle,
		&statsRaw, &sharedRaw,
		&post.Likes, &post.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(statsRaw, &post.StatsData); err != nil {
		return nil, fmt.Errorf("error decoding stats data: %w", err)
	}
	if len(sharedRaw) > 0 {
		post.SharedPost = &models.SharedSnapshot{}
		if err := decodeJSON(sharedRaw, post.SharedPost); err != nil {
			return nil, fmt.Errorf("error decoding shared post: %w", err)
		}
	}
	return post, nil
}

// PostRepository handles post database operations
type PostRepository struct {
	s *Store
}

// Create inserts a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	stats, err := encodeJSON(post.StatsData)
	if err != nil {
		return fmt.Errorf("error encoding stats data: %w", err)
	}
	var shared any
	if post.SharedPost != nil {
		if shared, err = encodeJSON(post.SharedPost); err != nil {
			return fmt.Errorf("error encoding shared post: %w", err)
		}
	}

	sql, args, err := r.s.sb.Insert("posts").
		Columns("author_id", "content", "type", "media_url", "views",
			"achievement_title", "achievement_subtitle", "stats_data", "shared_data").
		Values(post.AuthorID, post.Content, post.Type, post.MediaURL, post.Views,
			post.AchievementTitle, post.AchievementSubtitle, stats, shared).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create post query: %w", err)
	}

	if err := r.s.db.Pool.QueryRow(ctx, sql, args...).Scan(&post.ID, &post.CreatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("authorID", post.AuthorID).Msg("Error creating post")
		return fmt.Errorf("error creating post: %w", err)
	}
	post.Likes = 0
	return nil
}

// GetByID retrieves a post with its like count
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	sql, args, err := r.s.sb.Select(postColumns...).From("posts p").
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get post query: %w", err)
	}

	post, err := scanPost(r.s.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	return post, nil
}

// List returns posts matching filter, newest first
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	q := r.s.sb.Select(postColumns...).From("posts p").OrderBy("p.created_at DESC", "p.id DESC")
	if filter.Type != "" {
		q = q.Where(squirrel.Eq{"p.type": filter.Type})
	}
	if filter.AuthorIDs != nil {
		if len(filter.AuthorIDs) == 0 {
			return []*models.Post{}, nil
		}
		q = q.Where(squirrel.Eq{"p.author_id": filter.AuthorIDs})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list posts query: %w", err)
	}

	rows, err := r.s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list posts query")
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return posts, nil
}

// LikeRepository handles like database operations
type LikeRepository struct {
	s *Store
}

// Toggle deletes the like if present, otherwise inserts it, inside one transaction.
// The post row is locked so concurrent toggles on the same post serialize.
func (r *LikeRepository) Toggle(ctx context.Context, postID, userID int64) (bool, int, error) {
	var liked bool
	var likes int

	err := r.s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var locked int64
		if err := tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrPostNotFound
			}
			return fmt.Errorf("error locking post: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return fmt.Errorf("error deleting like: %w", err)
		}

		if tag.RowsAffected() == 0 {
			_, err = tx.Exec(ctx, `
				INSERT INTO likes (post_id, user_id) VALUES ($1, $2)
				ON CONFLICT (post_id, user_id) DO NOTHING`,
				postID, userID)
			if err != nil {
				if dberrors.IsForeignKeyError(err) {
					return apperrors.ErrUserNotFound
				}
				return fmt.Errorf("error inserting like: %w", err)
			}
			liked = true
		}

		return countLikes(ctx, tx, postID, &likes)
	})
	if err != nil {
		return false, 0, err
	}
	return liked, likes, nil
}

// Exists reports whether userID likes postID
func (r *LikeRepository) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	var exists bool
	err := r.s.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`,
		postID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking like: %w", err)
	}
	return exists, nil
}

// Count returns the number of likes on postID
func (r *LikeRepository) Count(ctx context.Context, postID int64) (int, error) {
	var likes int
	if err := countLikes(ctx, r.s.db.Pool, postID, &likes); err != nil {
		return 0, err
	}
	return likes, nil
}

func countLikes(ctx context.Context, q querier, postID int64, out *int) error {
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).Scan(out); err != nil {
		return fmt.Errorf("error counting likes: %w", err)
	}
	return nil
}

// CommentRepository handles comment database operations
type CommentRepository struct {
	s *Store
}

// Create inserts a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	sql, args, err := r.s.sb.Insert("comments").
		Columns("post_id", "author_id", "content").
		Values(comment.PostID, comment.AuthorID, comment.Content).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create comment query: %w", err)
	}

	if err := r.s.db.Pool.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrPostNotFound
		}
		logger.Error().Err(err).Int64("postID", comment.PostID).Msg("Error creating comment")
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// ListByPost returns the comments of postID in ascending order
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	sql, args, err := r.s.sb.Select("id", "post_id", "author_id", "content", "created_at").
		From("comments").
		Where(squirrel.Eq{"post_id": postID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list comments query: %w", err)
	}

	rows, err := r.s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}
	return comments, nil
}
