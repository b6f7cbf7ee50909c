package dto

import (
	"time"

	"github.com/yigit/footlink/internal/app/models"
)

// ConnectRequest asks for a connection with another user
type ConnectRequest struct {
	UserID int64 `json:"userId" binding:"required,gt=0"`
}

// CreateOpportunityRequest represents data for a new opportunity listing
type CreateOpportunityRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Club        string `json:"club" binding:"required,max=100"`
	Location    string `json:"location" binding:"required,max=100"`
	Category    string `json:"category" binding:"required,max=50"`
	Position    string `json:"position" binding:"max=100"`
	Description string `json:"description" binding:"max=5000"`
	Salary      string `json:"salary" binding:"max=100"`
	Type        string `json:"type" binding:"max=50"`
}

// ToModel converts the request into an unsaved opportunity
func (r CreateOpportunityRequest) ToModel() *models.Opportunity {
	return &models.Opportunity{
		Title:       r.Title,
		Club:        r.Club,
		Location:    r.Location,
		Category:    r.Category,
		Position:    r.Position,
		Description: r.Description,
		Salary:      r.Salary,
		Type:        r.Type,
	}
}

// CreateEventRequest represents data for a new event
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"max=5000"`
	Date        time.Time `json:"date" binding:"required"`
	Location    string    `json:"location" binding:"required,max=100"`
	Type        string    `json:"type" binding:"required,max=50"`
}

// ToModel converts the request into an unsaved event
func (r CreateEventRequest) ToModel() *models.Event {
	return &models.Event{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Location:    r.Location,
		Type:        r.Type,
	}
}

// SendMessageRequest represents a direct message
type SendMessageRequest struct {
	ReceiverID int64  `json:"receiverId" binding:"required,gt=0"`
	Content    string `json:"content" binding:"required,max=5000"`
}
