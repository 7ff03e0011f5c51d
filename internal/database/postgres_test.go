package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	t.Run("no rows becomes not found", func(t *testing.T) {
		assert.ErrorIs(t, translate(pgx.ErrNoRows), ErrNotFound)
		assert.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)
	})

	t.Run("unique violation becomes duplicate", func(t *testing.T) {
		err := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}
		assert.ErrorIs(t, translate(err), ErrDuplicate)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		other := errors.New("connection reset")
		assert.Equal(t, other, translate(other))

		fk := &pgconn.PgError{Code: "23503"}
		assert.Equal(t, error(fk), translate(fk))
	})
}
