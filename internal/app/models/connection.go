package models

import "time"

// ConnectionStatus is the state of a connection request
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
)

// Connection is a directed request that becomes an undirected edge once accepted.
// Transitions: pending -> accepted, pending -> declined. Both are terminal.
type Connection struct {
	ID          int64            `json:"id" db:"id"`
	RequesterID int64            `json:"requesterId" db:"requester_id"`
	ReceiverID  int64            `json:"receiverId" db:"receiver_id"`
	Status      ConnectionStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
}

// Involves reports whether userID is either party
func (c *Connection) Involves(userID int64) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// OtherParty returns the id of the party that is not userID
func (c *Connection) OtherParty(userID int64) int64 {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// SamePair reports whether the connection links a and b in either direction
func (c *Connection) SamePair(a, b int64) bool {
	return (c.RequesterID == a && c.ReceiverID == b) || (c.RequesterID == b && c.ReceiverID == a)
}

// UserConnection is a connection seen from one party, carrying the other party's profile
type UserConnection struct {
	ID   int64       `json:"id"`
	User UserSummary `json:"user"`
}

// Suggestion is a person the user may want to connect with. It has no id of its own.
type Suggestion struct {
	User UserSummary `json:"user"`
}
