package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/footlink/internal/app/models/dto"
	"github.com/yigit/footlink/internal/app/services"
	"github.com/yigit/footlink/internal/middleware"
)

// OpportunityController handles opportunity listings
type OpportunityController struct {
	opportunityService services.OpportunityService
	logger             zerolog.Logger
}

// NewOpportunityController creates a new OpportunityController
func NewOpportunityController(opportunityService services.OpportunityService, logger zerolog.Logger) *OpportunityController {
	return &OpportunityController{
		opportunityService: opportunityService,
		logger:             logger,
	}
}

// List returns all opportunities, newest first
// @Summary List opportunities
// @Tags opportunities
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Opportunity} "Opportunities"
// @Router /opportunities [get]
func (c *OpportunityController) List(ctx *gin.Context) {
	opportunities, err := c.opportunityService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(opportunities))
}

// Get returns one opportunity
// @Summary Get opportunity
// @Tags opportunities
// @Produce json
// @Param id path int true "Opportunity ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Opportunity} "Opportunity"
// @Failure 404 {object} dto.ErrorResponse "Opportunity not found"
// @Router /opportunities/{id} [get]
func (c *OpportunityController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "opportunity")
	if !ok {
		return
	}

	opportunity, err := c.opportunityService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(opportunity))
}

// Create publishes an opportunity
// @Summary Create opportunity
// @Tags opportunities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOpportunityRequest true "Opportunity"
// @Success 201 {object} dto.APIResponse{data=models.Opportunity} "Created opportunity"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /opportunities [post]
func (c *OpportunityController) Create(ctx *gin.Context) {
	var req dto.CreateOpportunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	opportunity, err := c.opportunityService.Create(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("opportunityID", opportunity.ID).Str("club", opportunity.Club).Msg("Opportunity created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(opportunity))
}

// EventController handles events
type EventController struct {
	eventService services.EventService
	logger       zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService, logger zerolog.Logger) *EventController {
	return &EventController{
		eventService: eventService,
		logger:       logger,
	}
}

// List returns all events, soonest first
// @Summary List events
// @Tags events
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Event} "Events"
// @Router /events [get]
func (c *EventController) List(ctx *gin.Context) {
	events, err := c.eventService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events))
}

// Get returns one event
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path int true "Event ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Event} "Event"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "event")
	if !ok {
		return
	}

	event, err := c.eventService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event))
}

// Create publishes an event
// @Summary Create event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=models.Event} "Created event"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /events [post]
func (c *EventController) Create(ctx *gin.Context) {
	var req dto.CreateEventRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	event, err := c.eventService.Create(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("eventID", event.ID).Time("date", event.Date).Msg("Event created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(event))
}
