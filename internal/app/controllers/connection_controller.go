package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/models/dto"
	"github.com/yigit/footlink/internal/app/services"
	"github.com/yigit/footlink/internal/middleware"
)

// ConnectionController handles the social graph endpoints
type ConnectionController struct {
	connectionService services.ConnectionService
	logger            zerolog.Logger
}

// NewConnectionController creates a new ConnectionController
func NewConnectionController(connectionService services.ConnectionService, logger zerolog.Logger) *ConnectionController {
	return &ConnectionController{
		connectionService: connectionService,
		logger:            logger,
	}
}

// GetAccepted lists the authenticated user's accepted connections
// @Summary List connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.UserConnection} "Accepted connections"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /connections [get]
func (c *ConnectionController) GetAccepted(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	connections, err := c.connectionService.GetAccepted(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(connections))
}

// GetPending lists the requests waiting for the authenticated user's answer
// @Summary List pending requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.UserConnection} "Pending requests received"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /connections/pending [get]
func (c *ConnectionController) GetPending(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	connections, err := c.connectionService.GetPending(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(connections))
}

// GetSuggestions suggests people the authenticated user is not yet related to
// @Summary Suggested connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Suggestion} "Suggestions, newest accounts first"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /connections/suggested [get]
func (c *ConnectionController) GetSuggestions(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.connectionService.GetSuggestions(ctx.Request.Context(), userID)))
}

// GetSuggestionsFor suggests connections for the given user
// @Summary Suggested connections for a user
// @Tags connections
// @Produce json
// @Param userId path int true "User ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.Suggestion} "Suggestions, newest accounts first"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /connections/suggested/{userId} [get]
func (c *ConnectionController) GetSuggestionsFor(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId", "user")
	if !ok {
		return
	}

	suggestions, err := c.connectionService.GetSuggestionsFor(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(suggestions))
}

// Connect sends a connection request
// @Summary Send connection request
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ConnectRequest true "Target user"
// @Success 201 {object} dto.APIResponse{data=models.Connection} "Pending connection"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or connecting to yourself"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Target user not found"
// @Failure 409 {object} dto.ErrorResponse "Connection already exists"
// @Router /connections/connect [post]
func (c *ConnectionController) Connect(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.ConnectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	connection, err := c.connectionService.Connect(ctx.Request.Context(), userID, req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("requesterID", userID).
		Int64("receiverID", req.UserID).
		Msg("Connection requested")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(connection))
}

// Accept accepts a pending request
// @Summary Accept connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Connection} "Accepted connection"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the receiver of the request"
// @Failure 404 {object} dto.ErrorResponse "No pending connection with this ID"
// @Router /connections/{id}/accept [post]
func (c *ConnectionController) Accept(ctx *gin.Context) {
	c.respond(ctx, c.connectionService.Accept)
}

// Decline declines a pending request
// @Summary Decline connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Connection} "Declined connection"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not the receiver of the request"
// @Failure 404 {object} dto.ErrorResponse "No pending connection with this ID"
// @Router /connections/{id}/decline [post]
func (c *ConnectionController) Decline(ctx *gin.Context) {
	c.respond(ctx, c.connectionService.Decline)
}

type transition func(ctx context.Context, actorID, connectionID int64) (*models.Connection, error)

func (c *ConnectionController) respond(ctx *gin.Context, apply transition) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	connectionID, ok := pathID(ctx, "id", "connection")
	if !ok {
		return
	}

	connection, err := apply(ctx.Request.Context(), userID, connectionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("connectionID", connection.ID).
		Str("status", string(connection.Status)).
		Msg("Connection request answered")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(connection))
}
