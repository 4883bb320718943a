package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

func TestMapWriteErr(t *testing.T) {
	username := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_username_key"}
	email := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}
	other := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_pkey"}
	check := &pgconn.PgError{Code: "23514", ConstraintName: "users_no_self_following"}
	plain := errors.New("conn reset")

	assert.ErrorIs(t, mapWriteErr(username), repository.ErrDuplicateUsername)
	assert.ErrorIs(t, mapWriteErr(fmt.Errorf("insert: %w", email)), repository.ErrDuplicateEmail)
	assert.Same(t, error(other), mapWriteErr(other))
	assert.Same(t, error(check), mapWriteErr(check))
	assert.Equal(t, plain, mapWriteErr(plain))
}
