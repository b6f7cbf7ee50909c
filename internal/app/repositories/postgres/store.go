// Package postgres implements the repositories on PostgreSQL through pgx and squirrel.
package postgres

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/db"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store holds the shared pool and statement builder
type Store struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewStore creates a Store on an open connection pool
func NewStore(pg *db.PostgresDB) *Store {
	return &Store{
		db: pg,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// NewRepositories wires every repository to pg
func NewRepositories(pg *db.PostgresDB) *repositories.Repositories {
	s := NewStore(pg)
	return &repositories.Repositories{
		UserRepository:        &UserRepository{s: s},
		PostRepository:        &PostRepository{s: s},
		LikeRepository:        &LikeRepository{s: s},
		CommentRepository:     &CommentRepository{s: s},
		ConnectionRepository:  &ConnectionRepository{s: s},
		OpportunityRepository: &OpportunityRepository{s: s},
		EventRepository:       &EventRepository{s: s},
		MessageRepository:     &MessageRepository{s: s},
		Close:                 pg.Close,
	}
}

// encodeJSON returns nil for empty values so the column stays NULL
func encodeJSON(v any) (any, error) {
	switch typed := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if len(typed) == 0 {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}

func decodeJSON(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// likePattern escapes LIKE wildcards in q and wraps it for a substring match
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
