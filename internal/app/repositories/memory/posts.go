package memory

import (
	"context"
	"maps"
	"sort"

	"github.com/samber/lo"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

// PostRepository is the in-memory post table
type PostRepository struct {
	s *Store
}

// Create stores a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[post.AuthorID]; !ok {
		return apperrors.ErrUserNotFound
	}

	post.ID = r.s.nextID("posts")
	post.CreatedAt = r.s.stamp(post.CreatedAt)
	post.Likes = 0
	r.s.posts[post.ID] = clonePost(post)
	return nil
}

// GetByID returns the post with its live like count
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	post, ok := r.s.posts[id]
	if !ok {
		return nil, apperrors.ErrPostNotFound
	}
	return r.withLikes(post), nil
}

// List returns posts matching filter, newest first
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var authors map[int64]struct{}
	if filter.AuthorIDs != nil {
		authors = lo.SliceToMap(filter.AuthorIDs, func(id int64) (int64, struct{}) { return id, struct{}{} })
	}

	posts := lo.Filter(lo.Values(r.s.posts), func(p *models.Post, _ int) bool {
		if filter.Type != "" && p.Type != filter.Type {
			return false
		}
		if authors != nil {
			if _, ok := authors[p.AuthorID]; !ok {
				return false
			}
		}
		return true
	})

	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if filter.Limit > 0 && len(posts) > filter.Limit {
		posts = posts[:filter.Limit]
	}

	return lo.Map(posts, func(p *models.Post, _ int) *models.Post { return r.withLikes(p) }), nil
}

// withLikes must be called with the read lock held
func (r *PostRepository) withLikes(p *models.Post) *models.Post {
	out := clonePost(p)
	out.Likes = r.s.countLikes(p.ID)
	return out
}

func clonePost(p *models.Post) *models.Post {
	out := *p
	if p.StatsData != nil {
		out.StatsData = maps.Clone(p.StatsData)
	}
	if p.SharedPost != nil {
		snapshot := *p.SharedPost
		out.SharedPost = &snapshot
	}
	out.Author = nil
	out.Comments = nil
	out.HasLiked = false
	return &out
}

// countLikes must be called with a lock held
func (s *Store) countLikes(postID int64) int {
	count := 0
	for key := range s.likes {
		if key.postID == postID {
			count++
		}
	}
	return count
}

// LikeRepository is the in-memory like table
type LikeRepository struct {
	s *Store
}

// Toggle flips the like for (postID, userID) under the write lock
func (r *LikeRepository) Toggle(ctx context.Context, postID, userID int64) (bool, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return false, 0, apperrors.ErrPostNotFound
	}

	key := likeKey{postID: postID, userID: userID}
	_, existed := r.s.likes[key]
	if existed {
		delete(r.s.likes, key)
	} else {
		r.s.likes[key] = r.s.now()
	}
	return !existed, r.s.countLikes(postID), nil
}

// Exists reports whether userID likes postID
func (r *LikeRepository) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.likes[likeKey{postID: postID, userID: userID}]
	return ok, nil
}

// Count returns the number of likes on postID
func (r *LikeRepository) Count(ctx context.Context, postID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.countLikes(postID), nil
}

// CommentRepository is the in-memory comment table
type CommentRepository struct {
	s *Store
}

// Create stores a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[comment.PostID]; !ok {
		return apperrors.ErrPostNotFound
	}

	comment.ID = r.s.nextID("comments")
	comment.CreatedAt = r.s.stamp(comment.CreatedAt)
	stored := *comment
	stored.Author = nil
	r.s.comments[comment.ID] = &stored
	return nil
}

// ListByPost returns the comments of postID, oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comments := lo.Filter(lo.Values(r.s.comments), func(c *models.Comment, _ int) bool {
		return c.PostID == postID
	})
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return lo.Map(comments, func(c *models.Comment, _ int) *models.Comment {
		out := *c
		return &out
	}), nil
}
