package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/models/dto"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/filestorage"
	"github.com/yigit/footlink/internal/pkg/metrics"
)

// Feed scopes
const (
	ScopeAll     = "all"
	ScopeNetwork = "network"
)

// PostService defines feed, post, like, comment and share operations.
// A viewerID of 0 means an anonymous viewer.
type PostService interface {
	CreatePost(ctx context.Context, authorID int64, req *dto.CreatePostRequest) (*models.Post, error)
	GetFeed(ctx context.Context, viewerID int64, query dto.FeedQuery, limit int) ([]*models.Post, error)
	GetPost(ctx context.Context, postID, viewerID int64) (*models.Post, error)
	GetUserPosts(ctx context.Context, userID, viewerID int64) ([]*models.Post, error)
	ToggleLike(ctx context.Context, postID, userID int64) (*models.LikeState, error)
	GetComments(ctx context.Context, postID int64) ([]*models.Comment, error)
	AddComment(ctx context.Context, postID, authorID int64, req *dto.CreateCommentRequest) (*models.Comment, error)
	SharePost(ctx context.Context, postID, userID int64, req *dto.SharePostRequest) (*models.Post, error)
	UploadMedia(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error)
}

type postServiceImpl struct {
	postRepo    repositories.PostRepository
	likeRepo    repositories.LikeRepository
	commentRepo repositories.CommentRepository
	userRepo    repositories.UserRepository
	connections ConnectionService
	fileStorage filestorage.FileStorage
	logger      zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	repos *repositories.Repositories,
	connections ConnectionService,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
) PostService {
	return &postServiceImpl{
		postRepo:    repos.PostRepository,
		likeRepo:    repos.LikeRepository,
		commentRepo: repos.CommentRepository,
		userRepo:    repos.UserRepository,
		connections: connections,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

// CreatePost validates the payload against its type and stores it
func (s *postServiceImpl) CreatePost(ctx context.Context, authorID int64, req *dto.CreatePostRequest) (*models.Post, error) {
	post := req.ToModel(authorID)
	post.Content = strings.TrimSpace(post.Content)

	if !post.Type.IsCreatable() {
		return nil, fmt.Errorf("%w: must be one of text, video, achievement, stats", apperrors.ErrInvalidPostType)
	}
	if post.Type == models.PostTypeText && post.Content == "" {
		return nil, fmt.Errorf("%w: content is required for text posts", apperrors.ErrValidationFailed)
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("authorID", authorID).Msg("Error creating post")
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	metrics.PostsCreated.WithLabelValues(string(post.Type)).Inc()

	return s.hydrateOne(ctx, post, authorID)
}

// GetFeed returns the global or connections-scoped feed, newest first
func (s *postServiceImpl) GetFeed(ctx context.Context, viewerID int64, query dto.FeedQuery, limit int) ([]*models.Post, error) {
	postType, ok := models.ParseFeedFilter(query.Filter)
	if !ok {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Unknown feed filter %q", query.Filter))
	}
	filter := models.PostFilter{Type: postType, Limit: limit}

	if query.Scope == ScopeNetwork {
		if viewerID == 0 {
			return nil, apperrors.ErrUnauthenticated
		}
		peers, err := s.connections.ConnectedUserIDs(ctx, viewerID)
		if err != nil {
			return nil, fmt.Errorf("error resolving connections: %w", err)
		}
		if len(peers) == 0 {
			return []*models.Post{}, nil
		}
		filter.AuthorIDs = append(peers, viewerID)
	}

	posts, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return s.hydrate(ctx, posts, viewerID)
}

// GetPost retrieves a single hydrated post
func (s *postServiceImpl) GetPost(ctx context.Context, postID, viewerID int64) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting post: %w", err)
	}
	return s.hydrateOne(ctx, post, viewerID)
}

// GetUserPosts lists the posts authored by userID, newest first
func (s *postServiceImpl) GetUserPosts(ctx context.Context, userID, viewerID int64) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	posts, err := s.postRepo.List(ctx, models.PostFilter{AuthorIDs: []int64{userID}})
	if err != nil {
		return nil, fmt.Errorf("error listing user posts: %w", err)
	}
	return s.hydrate(ctx, posts, viewerID)
}

// ToggleLike likes or unlikes the post for userID
func (s *postServiceImpl) ToggleLike(ctx context.Context, postID, userID int64) (*models.LikeState, error) {
	liked, likes, err := s.likeRepo.Toggle(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPostNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("postID", postID).Int64("userID", userID).Msg("Error toggling like")
		return nil, fmt.Errorf("error toggling like: %w", err)
	}
	metrics.RecordLikeToggle(liked)
	return &models.LikeState{Liked: liked, Likes: likes}, nil
}

// GetComments returns the comments of a post in ascending order, each with its author
func (s *postServiceImpl) GetComments(ctx context.Context, postID int64) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}

	authors, err := s.loadAuthors(ctx, lo.Map(comments, func(c *models.Comment, _ int) int64 { return c.AuthorID }))
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		c.Author = authors[c.AuthorID]
	}
	return comments, nil
}

// AddComment appends a comment to the post
func (s *postServiceImpl) AddComment(ctx context.Context, postID, authorID int64, req *dto.CreateCommentRequest) (*models.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", apperrors.ErrValidationFailed)
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, AuthorID: authorID, Content: content}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, apperrors.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating comment: %w", err)
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err == nil {
		comment.Author = lo.ToPtr(author.Summary())
	}
	return comment, nil
}

// SharePost creates a "shared" post carrying a snapshot of the original
func (s *postServiceImpl) SharePost(ctx context.Context, postID, userID int64, req *dto.SharePostRequest) (*models.Post, error) {
	original, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	originalAuthor, err := s.userRepo.GetByID(ctx, original.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("error loading original author: %w", err)
	}

	post := &models.Post{
		AuthorID:   userID,
		Content:    strings.TrimSpace(req.Content),
		Type:       models.PostTypeShared,
		SharedPost: models.NewSharedSnapshot(original, originalAuthor),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("error sharing post: %w", err)
	}
	metrics.PostsCreated.WithLabelValues(string(post.Type)).Inc()

	s.logger.Debug().Int64("postID", postID).Int64("sharedAs", post.ID).Int64("userID", userID).Msg("Post shared")
	return s.hydrateOne(ctx, post, userID)
}

// UploadMedia stores an image or video for a future post
func (s *postServiceImpl) UploadMedia(ctx context.Context, userID int64, file *multipart.FileHeader) (string, error) {
	if _, err := filestorage.ValidateMedia(file); err != nil {
		return "", apperrors.NewBadRequestError("File must be an image or a video")
	}
	url, err := s.fileStorage.SaveFile(ctx, file, filestorage.FolderPosts)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Error saving post media")
		return "", fmt.Errorf("error saving media: %w", err)
	}
	return url, nil
}

func (s *postServiceImpl) hydrateOne(ctx context.Context, post *models.Post, viewerID int64) (*models.Post, error) {
	posts, err := s.hydrate(ctx, []*models.Post{post}, viewerID)
	if err != nil {
		return nil, err
	}
	return posts[0], nil
}

// hydrate attaches author, comments and hasLiked. Users are fetched once per call.
func (s *postServiceImpl) hydrate(ctx context.Context, posts []*models.Post, viewerID int64) ([]*models.Post, error) {
	if len(posts) == 0 {
		return []*models.Post{}, nil
	}

	commentsByPost := make(map[int64][]*models.Comment, len(posts))
	authorIDs := make([]int64, 0, len(posts))
	for _, p := range posts {
		comments, err := s.commentRepo.ListByPost(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("error loading comments: %w", err)
		}
		commentsByPost[p.ID] = comments
		authorIDs = append(authorIDs, p.AuthorID)
		for _, c := range comments {
			authorIDs = append(authorIDs, c.AuthorID)
		}
	}

	authors, err := s.loadAuthors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		p.Author = authors[p.AuthorID]
		p.Comments = make([]models.Comment, 0, len(commentsByPost[p.ID]))
		for _, c := range commentsByPost[p.ID] {
			c.Author = authors[c.AuthorID]
			p.Comments = append(p.Comments, *c)
		}

		p.HasLiked = false
		if viewerID > 0 {
			liked, err := s.likeRepo.Exists(ctx, p.ID, viewerID)
			if err != nil {
				return nil, fmt.Errorf("error loading like state: %w", err)
			}
			p.HasLiked = liked
		}
	}
	return posts, nil
}

func (s *postServiceImpl) loadAuthors(ctx context.Context, ids []int64) (map[int64]*models.UserSummary, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return map[int64]*models.UserSummary{}, nil
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading authors: %w", err)
	}
	return lo.SliceToMap(users, func(u *models.User) (int64, *models.UserSummary) {
		return u.ID, lo.ToPtr(u.Summary())
	}), nil
}
