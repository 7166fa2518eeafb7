package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	err := errors.New(`ERROR: duplicate key value violates unique constraint "idx_cart_items_cart_product"`)

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected generic duplicate key detection")
	}
	if !IsUniqueViolation(err, "idx_cart_items_cart_product") {
		t.Fatal("expected constraint-name detection")
	}
	if IsUniqueViolation(err, "other_constraint") {
		t.Fatal("unexpected match for unrelated constraint")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should not match")
	}
}

func TestIsUniqueViolationStructured(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_cart_items_cart_product"}
	wrapped := fmt.Errorf("inserting: %w", pgErr)

	if !IsUniqueViolation(wrapped, "idx_cart_items_cart_product") {
		t.Fatal("expected pgconn constraint match")
	}
	if IsUniqueViolation(wrapped, "other_constraint") {
		t.Fatal("unexpected pgconn match for unrelated constraint")
	}
	if IsForeignKeyViolation(wrapped, "") {
		t.Fatal("unique violation must not read as a foreign key violation")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	pqErr := &pq.Error{Code: "23503", Constraint: "cart_items_product_id_fkey"}

	if !IsForeignKeyViolation(pqErr, "cart_items_product_id_fkey") {
		t.Fatal("expected pq constraint match")
	}
	if !IsForeignKeyViolation(pqErr, "") {
		t.Fatal("expected generic pq foreign key detection")
	}
	if IsUniqueViolation(pqErr, "") {
		t.Fatal("foreign key violation must not read as a unique violation")
	}

	sqliteErr := errors.New("FOREIGN KEY constraint failed")
	if !IsForeignKeyViolation(sqliteErr, "") {
		t.Fatal("expected sqlite message fallback")
	}
}
