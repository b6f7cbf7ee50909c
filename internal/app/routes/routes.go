package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/footlink/internal/app/controllers"
	"github.com/yigit/footlink/internal/app/models/dto"
	"github.com/yigit/footlink/internal/middleware"
)

// Controllers groups every HTTP controller mounted by SetupRouter
type Controllers struct {
	Auth        *controllers.AuthController
	User        *controllers.UserController
	Post        *controllers.PostController
	Connection  *controllers.ConnectionController
	Opportunity *controllers.OpportunityController
	Event       *controllers.EventController
	Message     *controllers.MessageController
}

// SetupRouter configures all application routes under /api.
// authLimiter may be nil to disable rate limiting of the auth endpoints.
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *middleware.RateLimiter,
) {
	api := router.Group("/api")

	requireAuth := authMiddleware.JWTAuth()
	optionalAuth := authMiddleware.OptionalAuth()

	// --- Public Auth routes ---
	auth := api.Group("/auth")
	if authLimiter != nil {
		auth.Use(authLimiter.Middleware())
	}
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	users := api.Group("/users")
	{
		users.GET("/me", requireAuth, ctrl.User.GetMe)
		users.GET("/search", ctrl.User.SearchUsers)
		users.POST("/me/avatar", requireAuth, ctrl.User.UploadAvatar)
		users.POST("/me/cover", requireAuth, ctrl.User.UploadCover)
		users.GET("/:id", ctrl.User.GetUserByID)
		users.PATCH("/:id", requireAuth, ctrl.User.UpdateProfile)
	}

	// Feed reads are public; hasLiked is filled in when a token is present
	posts := api.Group("/posts")
	{
		posts.GET("", optionalAuth, ctrl.Post.GetFeed)
		posts.POST("", requireAuth, ctrl.Post.CreatePost)
		posts.GET("/user/:userId", optionalAuth, ctrl.Post.GetUserPosts)
		posts.GET("/:id", optionalAuth, ctrl.Post.GetPost)
		posts.POST("/:id/like", requireAuth, ctrl.Post.ToggleLike)
		posts.GET("/:id/comments", ctrl.Post.GetComments)
		posts.POST("/:id/comments", requireAuth, ctrl.Post.AddComment)
		posts.POST("/:id/share", requireAuth, ctrl.Post.SharePost)
	}
	api.POST("/media", requireAuth, ctrl.Post.UploadMedia)

	connections := api.Group("/connections")
	{
		connections.GET("", requireAuth, ctrl.Connection.GetAccepted)
		connections.GET("/pending", requireAuth, ctrl.Connection.GetPending)
		connections.GET("/suggested", requireAuth, ctrl.Connection.GetSuggestions)
		connections.GET("/suggested/:userId", ctrl.Connection.GetSuggestionsFor)
		connections.POST("/connect", requireAuth, ctrl.Connection.Connect)
		connections.POST("/:id/accept", requireAuth, ctrl.Connection.Accept)
		connections.POST("/:id/decline", requireAuth, ctrl.Connection.Decline)
	}

	opportunities := api.Group("/opportunities")
	{
		opportunities.GET("", ctrl.Opportunity.List)
		opportunities.GET("/:id", ctrl.Opportunity.Get)
		opportunities.POST("", requireAuth, ctrl.Opportunity.Create)
	}

	events := api.Group("/events")
	{
		events.GET("", ctrl.Event.List)
		events.GET("/:id", ctrl.Event.Get)
		events.POST("", requireAuth, ctrl.Event.Create)
	}

	messages := api.Group("/messages")
	messages.Use(requireAuth)
	{
		messages.GET("", ctrl.Message.List)
		messages.POST("", ctrl.Message.Send)
		messages.GET("/ws", ctrl.Message.Stream)
		messages.GET("/conversations/:userId", ctrl.Message.GetConversation)
		messages.POST("/:id/read", ctrl.Message.MarkRead)
	}

	api.GET("/scouting-insights/:userId", ctrl.User.GetScoutingInsights)

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	router.NoRoute(func(c *gin.Context) {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Route not found")
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(errorDetail))
	})
}
