package memory

import (
	"context"
	"sort"

	"github.com/samber/lo"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

// ConnectionRepository is the in-memory connection table
type ConnectionRepository struct {
	s *Store
}

// Create stores a connection request unless the pair already has a row
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.connections {
		if existing.SamePair(conn.RequesterID, conn.ReceiverID) {
			return apperrors.ErrConnectionExists
		}
	}

	conn.ID = r.s.nextID("connections")
	conn.CreatedAt = r.s.stamp(conn.CreatedAt)
	if conn.Status == "" {
		conn.Status = models.ConnectionPending
	}
	stored := *conn
	r.s.connections[conn.ID] = &stored
	return nil
}

// GetByID returns the connection with id
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	conn, ok := r.s.connections[id]
	if !ok {
		return nil, apperrors.ErrConnectionNotFound
	}
	out := *conn
	return &out, nil
}

// FindBetween returns the row linking a and b in either direction
func (r *ConnectionRepository) FindBetween(ctx context.Context, a, b int64) (*models.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, conn := range r.s.connections {
		if conn.SamePair(a, b) {
			out := *conn
			return &out, nil
		}
	}
	return nil, apperrors.ErrConnectionNotFound
}

// ListForUser returns every connection row involving userID
func (r *ConnectionRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Connection, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	conns := lo.Filter(lo.Values(r.s.connections), func(c *models.Connection, _ int) bool {
		return c.Involves(userID)
	})
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })
	return lo.Map(conns, func(c *models.Connection, _ int) *models.Connection {
		out := *c
		return &out
	}), nil
}

// UpdateStatus moves a connection from one status to another
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id int64, from, to models.ConnectionStatus) (*models.Connection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	conn, ok := r.s.connections[id]
	if !ok || conn.Status != from {
		return nil, apperrors.ErrConnectionNotFound
	}
	conn.Status = to
	out := *conn
	return &out, nil
}

// OpportunityRepository is the in-memory opportunity table
type OpportunityRepository struct {
	s *Store
}

// Create stores a new opportunity
func (r *OpportunityRepository) Create(ctx context.Context, opp *models.Opportunity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	opp.ID = r.s.nextID("opportunities")
	opp.CreatedAt = r.s.stamp(opp.CreatedAt)
	stored := *opp
	r.s.opportunities[opp.ID] = &stored
	return nil
}

// GetByID returns the opportunity with id
func (r *OpportunityRepository) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	opp, ok := r.s.opportunities[id]
	if !ok {
		return nil, apperrors.ErrOpportunityNotFound
	}
	out := *opp
	return &out, nil
}

// List returns opportunities newest first
func (r *OpportunityRepository) List(ctx context.Context) ([]*models.Opportunity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	opps := lo.Map(lo.Values(r.s.opportunities), func(o *models.Opportunity, _ int) *models.Opportunity {
		out := *o
		return &out
	})
	sort.Slice(opps, func(i, j int) bool {
		if opps[i].CreatedAt.Equal(opps[j].CreatedAt) {
			return opps[i].ID > opps[j].ID
		}
		return opps[i].CreatedAt.After(opps[j].CreatedAt)
	})
	return opps, nil
}

// EventRepository is the in-memory event table
type EventRepository struct {
	s *Store
}

// Create stores a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	event.ID = r.s.nextID("events")
	event.CreatedAt = r.s.stamp(event.CreatedAt)
	stored := *event
	r.s.events[event.ID] = &stored
	return nil
}

// GetByID returns the event with id
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	event, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	out := *event
	return &out, nil
}

// List returns events by date ascending
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	events := lo.Map(lo.Values(r.s.events), func(e *models.Event, _ int) *models.Event {
		out := *e
		return &out
	})
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

// MessageRepository is the in-memory message table
type MessageRepository struct {
	s *Store
}

// Create stores a new unread message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[msg.ReceiverID]; !ok {
		return apperrors.ErrUserNotFound
	}

	msg.ID = r.s.nextID("messages")
	msg.CreatedAt = r.s.stamp(msg.CreatedAt)
	msg.Read = false
	stored := *msg
	r.s.messages[msg.ID] = &stored
	return nil
}

// GetByID returns the message with id
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	msg, ok := r.s.messages[id]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	out := *msg
	return &out, nil
}

// ListForUser returns messages sent or received by userID, oldest first
func (r *MessageRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Message, error) {
	return r.list(func(m *models.Message) bool {
		return m.SenderID == userID || m.ReceiverID == userID
	}), nil
}

// ListConversation returns messages exchanged between a and b, oldest first
func (r *MessageRepository) ListConversation(ctx context.Context, a, b int64) ([]*models.Message, error) {
	return r.list(func(m *models.Message) bool {
		return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
	}), nil
}

func (r *MessageRepository) list(match func(*models.Message) bool) []*models.Message {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	msgs := make([]*models.Message, 0)
	for _, m := range r.s.messages {
		if match(m) {
			out := *m
			msgs = append(msgs, &out)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs
}

// MarkRead flags the message as read when receiverID is its receiver
func (r *MessageRepository) MarkRead(ctx context.Context, id, receiverID int64) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	msg, ok := r.s.messages[id]
	if !ok || msg.ReceiverID != receiverID {
		return nil, apperrors.ErrMessageNotFound
	}
	msg.Read = true
	out := *msg
	return &out, nil
}
