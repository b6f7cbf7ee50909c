package remote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/samber/lo"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/pkg/apperrors"
)

func pairFilter(a, b int64) string {
	return fmt.Sprintf("(and(requester_id.eq.%d,receiver_id.eq.%d),and(requester_id.eq.%d,receiver_id.eq.%d))", a, b, b, a)
}

// ConnectionRepository reads and writes the connections table
type ConnectionRepository struct {
	c *Client
}

// Create inserts a pending request unless the pair already has a row.
// The backend's unique pair index rejects a racing duplicate.
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	if _, err := r.FindBetween(ctx, conn.RequesterID, conn.ReceiverID); err == nil {
		return apperrors.ErrConnectionExists
	} else if !apperrors.IsNotFound(err) {
		return err
	}

	if conn.Status == "" {
		conn.Status = models.ConnectionPending
	}
	row := connectionRow{RequesterID: conn.RequesterID, ReceiverID: conn.ReceiverID, Status: conn.Status}

	var rows []connectionRow
	if err := r.c.insertRows(ctx, tableConnections, row, &rows); err != nil {
		if apiErr, ok := asAPIError(err); ok {
			if apiErr.IsUniqueViolation() {
				return apperrors.ErrConnectionExists
			}
			if apiErr.IsForeignKeyViolation() {
				return apperrors.ErrUserNotFound
			}
		}
		return fmt.Errorf("error creating connection: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("error creating connection: empty representation")
	}
	conn.ID = rows[0].ID
	conn.CreatedAt = deref(rows[0].CreatedAt)
	return nil
}

// GetByID retrieves a connection by ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	return r.one(ctx, query("select", "*", "id", eq(id)))
}

// FindBetween retrieves the row linking a and b in either direction
func (r *ConnectionRepository) FindBetween(ctx context.Context, a, b int64) (*models.Connection, error) {
	return r.one(ctx, query("select", "*", "or", pairFilter(a, b), "limit", "1"))
}

func (r *ConnectionRepository) one(ctx context.Context, q url.Values) (*models.Connection, error) {
	var rows []connectionRow
	if err := r.c.selectRows(ctx, tableConnections, q, &rows); err != nil {
		return nil, fmt.Errorf("error getting connection: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrConnectionNotFound
	}
	return rows[0].model(), nil
}

// ListForUser returns every connection row involving userID
func (r *ConnectionRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Connection, error) {
	var rows []connectionRow
	q := query(
		"select", "*",
		"or", fmt.Sprintf("(requester_id.eq.%d,receiver_id.eq.%d)", userID, userID),
		"order", "id.asc",
	)
	if err := r.c.selectRows(ctx, tableConnections, q, &rows); err != nil {
		return nil, fmt.Errorf("error listing connections: %w", err)
	}
	return lo.Map(rows, func(row connectionRow, _ int) *models.Connection { return row.model() }), nil
}

// UpdateStatus patches status only while the row is still in status from
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id int64, from, to models.ConnectionStatus) (*models.Connection, error) {
	var rows []connectionRow
	q := query("id", eq(id), "status", eq(from))
	if err := r.c.updateRows(ctx, tableConnections, q, map[string]string{"status": string(to)}, &rows); err != nil {
		return nil, fmt.Errorf("error updating connection status: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrConnectionNotFound
	}
	return rows[0].model(), nil
}

// OpportunityRepository reads and writes the opportunities table
type OpportunityRepository struct {
	c *Client
}

// Create inserts a new opportunity
func (r *OpportunityRepository) Create(ctx context.Context, opp *models.Opportunity) error {
	row := opportunityRow{
		Title: opp.Title, Club: opp.Club, Location: opp.Location, Category: opp.Category,
		Position: opp.Position, Description: opp.Description, Salary: opp.Salary, Type: opp.Type,
		CreatedAt: timePtr(opp.CreatedAt),
	}
	var rows []opportunityRow
	if err := r.c.insertRows(ctx, tableOpportunities, row, &rows); err != nil {
		return fmt.Errorf("error creating opportunity: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("error creating opportunity: empty representation")
	}
	opp.ID = rows[0].ID
	opp.CreatedAt = deref(rows[0].CreatedAt)
	return nil
}

// GetByID retrieves an opportunity by ID
func (r *OpportunityRepository) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	var rows []opportunityRow
	if err := r.c.selectRows(ctx, tableOpportunities, query("select", "*", "id", eq(id)), &rows); err != nil {
		return nil, fmt.Errorf("error getting opportunity: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrOpportunityNotFound
	}
	return rows[0].model(), nil
}

// List returns opportunities newest first
func (r *OpportunityRepository) List(ctx context.Context) ([]*models.Opportunity, error) {
	var rows []opportunityRow
	if err := r.c.selectRows(ctx, tableOpportunities, query("select", "*", "order", "created_at.desc,id.desc"), &rows); err != nil {
		return nil, fmt.Errorf("error listing opportunities: %w", err)
	}
	return lo.Map(rows, func(row opportunityRow, _ int) *models.Opportunity { return row.model() }), nil
}

// EventRepository reads and writes the events table
type EventRepository struct {
	c *Client
}

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	row := eventRow{
		Title: event.Title, Description: event.Description, Date: event.Date,
		Location: event.Location, Type: event.Type, CreatedAt: timePtr(event.CreatedAt),
	}
	var rows []eventRow
	if err := r.c.insertRows(ctx, tableEvents, row, &rows); err != nil {
		return fmt.Errorf("error creating event: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("error creating event: empty representation")
	}
	event.ID = rows[0].ID
	event.CreatedAt = deref(rows[0].CreatedAt)
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	var rows []eventRow
	if err := r.c.selectRows(ctx, tableEvents, query("select", "*", "id", eq(id)), &rows); err != nil {
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrEventNotFound
	}
	return rows[0].model(), nil
}

// List returns events by date ascending
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	var rows []eventRow
	if err := r.c.selectRows(ctx, tableEvents, query("select", "*", "order", "date.asc,id.asc"), &rows); err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return lo.Map(rows, func(row eventRow, _ int) *models.Event { return row.model() }), nil
}

// MessageRepository reads and writes the messages table
type MessageRepository struct {
	c *Client
}

// Create inserts a new unread message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	row := messageRow{SenderID: msg.SenderID, ReceiverID: msg.ReceiverID, Content: msg.Content, CreatedAt: timePtr(msg.CreatedAt)}
	var rows []messageRow
	if err := r.c.insertRows(ctx, tableMessages, row, &rows); err != nil {
		if apiErr, ok := asAPIError(err); ok && apiErr.IsForeignKeyViolation() {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating message: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("error creating message: empty representation")
	}
	msg.ID = rows[0].ID
	msg.Read = rows[0].Read
	msg.CreatedAt = deref(rows[0].CreatedAt)
	return nil
}

// GetByID retrieves a message by ID
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	var rows []messageRow
	if err := r.c.selectRows(ctx, tableMessages, query("select", "*", "id", eq(id)), &rows); err != nil {
		return nil, fmt.Errorf("error getting message: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrMessageNotFound
	}
	return rows[0].model(), nil
}

// ListForUser returns messages sent or received by userID, oldest first
func (r *MessageRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Message, error) {
	return r.list(ctx, fmt.Sprintf("(sender_id.eq.%d,receiver_id.eq.%d)", userID, userID))
}

// ListConversation returns messages exchanged between a and b, oldest first
func (r *MessageRepository) ListConversation(ctx context.Context, a, b int64) ([]*models.Message, error) {
	return r.list(ctx, fmt.Sprintf("(and(sender_id.eq.%d,receiver_id.eq.%d),and(sender_id.eq.%d,receiver_id.eq.%d))", a, b, b, a))
}

func (r *MessageRepository) list(ctx context.Context, or string) ([]*models.Message, error) {
	var rows []messageRow
	q := query("select", "*", "or", or, "order", "created_at.asc,id.asc")
	if err := r.c.selectRows(ctx, tableMessages, q, &rows); err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	return lo.Map(rows, func(row messageRow, _ int) *models.Message { return row.model() }), nil
}

// MarkRead flags the message as read when receiverID is its receiver
func (r *MessageRepository) MarkRead(ctx context.Context, id, receiverID int64) (*models.Message, error) {
	var rows []messageRow
	q := query("id", eq(id), "receiver_id", eq(receiverID))
	if err := r.c.updateRows(ctx, tableMessages, q, map[string]bool{"read": true}, &rows); err != nil {
		return nil, fmt.Errorf("error marking message read: %w", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrMessageNotFound
	}
	return rows[0].model(), nil
}
