package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/dberrors"
	"github.com/yigit/footlink/internal/pkg/logger"
)

const connectionColumns = "id, requester_id, receiver_id, status, created_at"

func scanConnection(row pgx.Row) (*models.Connection, error) {
	c := &models.Connection{}
	err := row.Scan(&c.ID, &c.RequesterID, &c.ReceiverID, &c.Status, &c.CreatedAt)
	return c, err
}

// ConnectionRepository handles connection database operations
type ConnectionRepository struct {
	s *Store
}

// Create inserts a pending request after checking the unordered pair inside a transaction.
// The connections_pair_key index backs the check when two requests race.
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	if conn.Status == "" {
		conn.Status = models.ConnectionPending
	}

	return r.s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM connections
				WHERE (requester_id = $1 AND receiver_id = $2) OR (requester_id = $2 AND receiver_id = $1)
			)`, conn.RequesterID, conn.ReceiverID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("error checking existing connection: %w", err)
		}
		if exists {
			return apperrors.ErrConnectionExists
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO connections (requester_id, receiver_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			conn.RequesterID, conn.ReceiverID, conn.Status).Scan(&conn.ID, &conn.CreatedAt)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, dberrors.ConnectionPairConstraint) {
				return apperrors.ErrConnectionExists
			}
			if dberrors.IsForeignKeyError(err) {
				return apperrors.ErrUserNotFound
			}
			logger.Error().Err(err).
				Int64("requesterID", conn.RequesterID).
				Int64("receiverID", conn.ReceiverID).
				Msg("Error creating connection")
			return fmt.Errorf("error creating connection: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a connection by ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*models.Connection, error) {
	conn, err := scanConnection(r.s.db.Pool.QueryRow(ctx,
		`SELECT `+connectionColumns+` FROM connections WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("error getting connection: %w", err)
	}
	return conn, nil
}

// FindBetween retrieves the row linking a and b in either direction
func (r *ConnectionRepository) FindBetween(ctx context.Context, a, b int64) (*models.Connection, error) {
	conn, err := scanConnection(r.s.db.Pool.QueryRow(ctx, `
		SELECT `+connectionColumns+` FROM connections
		WHERE (requester_id = $1 AND receiver_id = $2) OR (requester_id = $2 AND receiver_id = $1)
		LIMIT 1`, a, b))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("error finding connection: %w", err)
	}
	return conn, nil
}

// ListForUser returns every connection row involving userID
func (r *ConnectionRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Connection, error) {
	sql, args, err := r.s.sb.Select(connectionColumns).
		From("connections").
		Where(squirrel.Or{squirrel.Eq{"requester_id": userID}, squirrel.Eq{"receiver_id": userID}}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list connections query: %w", err)
	}

	rows, err := r.s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying connections: %w", err)
	}
	defer rows.Close()

	conns := []*models.Connection{}
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning connection row: %w", err)
		}
		conns = append(conns, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connection rows: %w", err)
	}
	return conns, nil
}

// UpdateStatus is a conditional update; a missing row and a row in another status look the same
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id int64, from, to models.ConnectionStatus) (*models.Connection, error) {
	conn, err := scanConnection(r.s.db.Pool.QueryRow(ctx, `
		UPDATE connections SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING `+connectionColumns, to, id, from))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConnectionNotFound
		}
		return nil, fmt.Errorf("error updating connection status: %w", err)
	}
	return conn, nil
}

// OpportunityRepository handles opportunity database operations
type OpportunityRepository struct {
	s *Store
}

const opportunityColumns = `id, title, club, location, category, COALESCE(position, ''), COALESCE(description, ''),
	COALESCE(salary, ''), COALESCE(type, ''), created_at`

func scanOpportunity(row pgx.Row) (*models.Opportunity, error) {
	o := &models.Opportunity{}
	err := row.Scan(&o.ID, &o.Title, &o.Club, &o.Location, &o.Category, &o.Position, &o.Description,
		&o.Salary, &o.Type, &o.CreatedAt)
	return o, err
}

// Create inserts a new opportunity
func (r *OpportunityRepository) Create(ctx context.Context, opp *models.Opportunity) error {
	sql, args, err := r.s.sb.Insert("opportunities").
		Columns("title", "club", "location", "category", "position", "description", "salary", "type").
		Values(opp.Title, opp.Club, opp.Location, opp.Category, opp.Position, opp.Description, opp.Salary, opp.Type).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create opportunity query: %w", err)
	}
	if err := r.s.db.Pool.QueryRow(ctx, sql, args...).Scan(&opp.ID, &opp.CreatedAt); err != nil {
		return fmt.Errorf("error creating opportunity: %w", err)
	}
	return nil
}

// GetByID retrieves an opportunity by ID
func (r *OpportunityRepository) GetByID(ctx context.Context, id int64) (*models.Opportunity, error) {
	opp, err := scanOpportunity(r.s.db.Pool.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("error getting opportunity: %w", err)
	}
	return opp, nil
}

// List returns opportunities newest first
func (r *OpportunityRepository) List(ctx context.Context) ([]*models.Opportunity, error) {
	rows, err := r.s.db.Pool.Query(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying opportunities: %w", err)
	}
	defer rows.Close()

	opps := []*models.Opportunity{}
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning opportunity row: %w", err)
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}

// EventRepository handles event database operations
type EventRepository struct {
	s *Store
}

const eventColumns = `id, title, COALESCE(description, ''), date, location, type, created_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Type, &e.CreatedAt)
	return e, err
}

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	sql, args, err := r.s.sb.Insert("events").
		Columns("title", "description", "date", "location", "type").
		Values(event.Title, event.Description, event.Date, event.Location, event.Type).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create event query: %w", err)
	}
	if err := r.s.db.Pool.QueryRow(ctx, sql, args...).Scan(&event.ID, &event.CreatedAt); err != nil {
		return fmt.Errorf("error creating event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event, err := scanEvent(r.s.db.Pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	return event, nil
}

// List returns events by date ascending
func (r *EventRepository) List(ctx context.Context) ([]*models.Event, error) {
	rows, err := r.s.db.Pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// MessageRepository handles direct message database operations
type MessageRepository struct {
	s *Store
}

const messageColumns = "id, sender_id, receiver_id, content, read, created_at"

func scanMessage(row pgx.Row) (*models.Message, error) {
	m := &models.Message{}
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Read, &m.CreatedAt)
	return m, err
}

// Create inserts a new unread message
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	msg.Read = false
	err := r.s.db.Pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		msg.SenderID, msg.ReceiverID, msg.Content).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// GetByID retrieves a message by ID
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	msg, err := scanMessage(r.s.db.Pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error getting message: %w", err)
	}
	return msg, nil
}

// ListForUser returns messages sent or received by userID, oldest first
func (r *MessageRepository) ListForUser(ctx context.Context, userID int64) ([]*models.Message, error) {
	return r.list(ctx, squirrel.Or{squirrel.Eq{"sender_id": userID}, squirrel.Eq{"receiver_id": userID}})
}

// ListConversation returns messages exchanged between a and b, oldest first
func (r *MessageRepository) ListConversation(ctx context.Context, a, b int64) ([]*models.Message, error) {
	return r.list(ctx, squirrel.Or{
		squirrel.Eq{"sender_id": a, "receiver_id": b},
		squirrel.Eq{"sender_id": b, "receiver_id": a},
	})
}

func (r *MessageRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.Message, error) {
	sql, args, err := r.s.sb.Select(messageColumns).
		From("messages").
		Where(where).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list messages query: %w", err)
	}

	rows, err := r.s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	msgs := []*models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// MarkRead flags the message as read when receiverID is its receiver
func (r *MessageRepository) MarkRead(ctx context.Context, id, receiverID int64) (*models.Message, error) {
	msg, err := scanMessage(r.s.db.Pool.QueryRow(ctx, `
		UPDATE messages SET read = TRUE
		WHERE id = $1 AND receiver_id = $2
		RETURNING `+messageColumns, id, receiverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error marking message read: %w", err)
	}
	return msg, nil
}
