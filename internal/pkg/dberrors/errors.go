package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names declared in migrations/001_init.sql.
const (
	UsernameUniqueConstraint = "users_username_key"
	LikeUniqueConstraint     = "likes_post_user_key"
	ConnectionPairConstraint = "connections_pair_key"
	ForeignKeyViolationCode  = "23503"
	UniqueViolationCode      = "23505"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolationCode && pgErr.ConstraintName == constraintName
}

// IsForeignKeyError reports a foreign key violation, e.g. a like on a post that does not exist.
func IsForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == ForeignKeyViolationCode
}
