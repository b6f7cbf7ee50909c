package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/footlink/internal/app/models/dto"
	"github.com/yigit/footlink/internal/app/services"
	"github.com/yigit/footlink/internal/middleware"
	"github.com/yigit/footlink/internal/pkg/helpers"
)

// PostController handles the feed, posts, likes, comments and shares
type PostController struct {
	postService services.PostService
	logger      zerolog.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService, logger zerolog.Logger) *PostController {
	return &PostController{
		postService: postService,
		logger:      logger,
	}
}

// GetFeed returns the feed, newest first
// @Summary Get feed
// @Description Global feed, or only the viewer's and their connections' posts with scope=network (requires a token).
// @Description filter accepts highlights, matches, achievements, all or a raw post type.
// @Tags posts
// @Produce json
// @Param filter query string false "Post filter"
// @Param scope query string false "Feed scope" Enums(all, network)
// @Param limit query int false "Maximum number of posts"
// @Success 200 {object} dto.APIResponse{data=[]models.Post} "Feed"
// @Failure 400 {object} dto.ErrorResponse "Unknown filter or scope"
// @Failure 401 {object} dto.ErrorResponse "Network scope without a token"
// @Router /posts [get]
func (c *PostController) GetFeed(ctx *gin.Context) {
	var query dto.FeedQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	limit := helpers.ParseLimit(ctx, 0)
	posts, err := c.postService.GetFeed(ctx.Request.Context(), viewerID(ctx), query, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts))
}

// GetPost returns a single hydrated post
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Post} "Post"
// @Failure 400 {object} dto.ErrorResponse "Invalid post ID"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [get]
func (c *PostController) GetPost(ctx *gin.Context) {
	postID, ok := pathID(ctx, "id", "post")
	if !ok {
		return
	}

	post, err := c.postService.GetPost(ctx.Request.Context(), postID, viewerID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// GetUserPosts returns the posts of one author
// @Summary Get a user's posts
// @Tags posts
// @Produce json
// @Param userId path int true "User ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.Post} "Posts"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID"
// @Router /posts/user/{userId} [get]
func (c *PostController) GetUserPosts(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId", "user")
	if !ok {
		return
	}

	posts, err := c.postService.GetUserPosts(ctx.Request.Context(), userID, viewerID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts))
}

// CreatePost publishes a post
// @Summary Create post
// @Description Content is required unless the type is video, achievement or stats
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post"
// @Success 201 {object} dto.APIResponse{data=models.Post} "Created post"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	authorID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	post, err := c.postService.CreatePost(ctx.Request.Context(), authorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post))
}

// UploadMedia stores a post attachment and returns its URL
// @Summary Upload post media
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image or video"
// @Success 201 {object} dto.APIResponse{data=dto.MediaUploadResponse} "Stored media"
// @Failure 400 {object} dto.ErrorResponse "Missing or unsupported file"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /media [post]
func (c *PostController) UploadMedia(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	file, ok := formFile(ctx)
	if !ok {
		return
	}

	url, err := c.postService.UploadMedia(ctx.Request.Context(), userID, file)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Media upload failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.MediaUploadResponse{URL: url}))
}

// ToggleLike likes the post, or unlikes it when already liked
// @Summary Toggle like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.LikeState} "Like state after the toggle"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/like [post]
func (c *PostController) ToggleLike(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post")
	if !ok {
		return
	}

	state, err := c.postService.ToggleLike(ctx.Request.Context(), postID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(state))
}

// GetComments lists the comments of a post, oldest first
// @Summary List comments
// @Tags posts
// @Produce json
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.Comment} "Comments"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/comments [get]
func (c *PostController) GetComments(ctx *gin.Context) {
	postID, ok := pathID(ctx, "id", "post")
	if !ok {
		return
	}

	comments, err := c.postService.GetComments(ctx.Request.Context(), postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(comments))
}

// AddComment comments on a post
// @Summary Add comment
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment} "Created comment"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/comments [post]
func (c *PostController) AddComment(ctx *gin.Context) {
	authorID, ok := requireUser(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	comment, err := c.postService.AddComment(ctx.Request.Context(), postID, authorID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(comment))
}

// SharePost reposts a post with optional commentary
// @Summary Share post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID" Format(int64) minimum(1)
// @Param request body dto.SharePostRequest false "Commentary"
// @Success 201 {object} dto.APIResponse{data=models.Post} "Shared post"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/share [post]
func (c *PostController) SharePost(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post")
	if !ok {
		return
	}

	var req dto.SharePostRequest
	if hasBody(ctx) && !middleware.BindJSON(ctx, &req) {
		return
	}

	post, err := c.postService.SharePost(ctx.Request.Context(), postID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("postID", postID).Int64("sharedAs", post.ID).Msg("Post shared")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post))
}
