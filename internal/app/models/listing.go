package models

import "time"

// Opportunity is a job, trial or training listing
type Opportunity struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Club        string    `json:"club" db:"club"`
	Location    string    `json:"location" db:"location"`
	Category    string    `json:"category" db:"category"`
	Position    string    `json:"position,omitempty" db:"position"`
	Description string    `json:"description,omitempty" db:"description"`
	Salary      string    `json:"salary,omitempty" db:"salary"`
	Type        string    `json:"type,omitempty" db:"type"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Event is a calendar entry
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	Date        time.Time `json:"date" db:"date"`
	Location    string    `json:"location" db:"location"`
	Type        string    `json:"type" db:"type"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Message is a direct message between two users
type Message struct {
	ID         int64     `json:"id" db:"id"`
	SenderID   int64     `json:"senderId" db:"sender_id"`
	ReceiverID int64     `json:"receiverId" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	Read       bool      `json:"read" db:"read"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
