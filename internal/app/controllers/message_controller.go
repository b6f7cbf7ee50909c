package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/footlink/internal/app/models/dto"
	"github.com/yigit/footlink/internal/app/services"
	"github.com/yigit/footlink/internal/middleware"
	"github.com/yigit/footlink/internal/pkg/websocket"
)

// MessageController handles direct messages and their live channel
type MessageController struct {
	messageService services.MessageService
	wsHandler      *websocket.Handler
	logger         zerolog.Logger
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService, wsHandler *websocket.Handler, logger zerolog.Logger) *MessageController {
	return &MessageController{
		messageService: messageService,
		wsHandler:      wsHandler,
		logger:         logger,
	}
}

// List returns every message the authenticated user sent or received
// @Summary List messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Message} "Messages, oldest first"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /messages [get]
func (c *MessageController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	messages, err := c.messageService.ListForUser(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages))
}

// GetConversation returns the messages exchanged with another user
// @Summary Get conversation
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user's ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.Message} "Conversation, oldest first"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /messages/conversations/{userId} [get]
func (c *MessageController) GetConversation(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	otherID, ok := pathID(ctx, "userId", "user")
	if !ok {
		return
	}

	messages, err := c.messageService.GetConversation(ctx.Request.Context(), userID, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages))
}

// Send delivers a direct message
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.Message} "Sent message"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or messaging yourself"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Receiver not found"
// @Router /messages [post]
func (c *MessageController) Send(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	message, err := c.messageService.Send(ctx.Request.Context(), userID, req.ReceiverID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message))
}

// MarkRead marks a received message as read
// @Summary Mark message read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Message} "Updated message"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Router /messages/{id}/read [post]
func (c *MessageController) MarkRead(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	messageID, ok := pathID(ctx, "id", "message")
	if !ok {
		return
	}

	message, err := c.messageService.MarkRead(ctx.Request.Context(), userID, messageID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(message))
}

// Stream upgrades to a websocket that receives new messages in real time
// @Summary Live message stream
// @Description Pass the access token as the token query parameter when headers cannot be set
// @Tags messages
// @Security BearerAuth
// @Param token query string false "Access token"
// @Success 101 "Switching protocols"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /messages/ws [get]
func (c *MessageController) Stream(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	c.wsHandler.Serve(ctx, userID)
}
