package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique constraint violation. When
// constraintName is given, the violation must reference that constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	return isViolation(err, pgUniqueViolation, "duplicate key value", constraintName)
}

// IsForeignKeyViolation reports whether err is a foreign key violation. When
// constraintName is given, the violation must reference that constraint (or the
// referencing table, for drivers that only surface message text).
func IsForeignKeyViolation(err error, constraintName string) bool {
	return isViolation(err, pgForeignKeyViolation, "violates foreign key constraint", constraintName)
}

func isViolation(err error, code string, messageHint string, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != code {
			return false
		}
		return constraintName == "" || pgErr.ConstraintName == constraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) != code {
			return false
		}
		return constraintName == "" || pqErr.Constraint == constraintName
	}

	// Fallback for drivers without structured codes (sqlite in tests).
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, messageHint) ||
		(code == pgUniqueViolation && strings.Contains(msg, "UNIQUE constraint failed")) ||
		(code == pgForeignKeyViolation && strings.Contains(msg, "FOREIGN KEY constraint failed"))
}
