package allocator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	eventID = "6f1c1b2e-7f0a-4f7e-9d55-0a3f2c1b9e11"
	userID  = "0b8e0c4d-2a61-4c4a-9a53-5a6d1f3e7c22"
)

func newMockAllocator(t *testing.T, attempts int) (*Allocator, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return New(gdb, nil, Options{MaxAttempts: attempts, Backoff: time.Millisecond}), mock
}

func eventRows(available, waiting, version int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "slug", "total_tickets", "available_tickets", "waiting_list_count", "status", "version"}).
		AddRow(eventID, "Concert", "concert", 2, available, waiting, string(DeriveStatus(available, waiting)), version)
}

func TestLockEventUsesRowLock(t *testing.T) {
	alloc, mock := newMockAllocator(t, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "events" WHERE id = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := alloc.BookTickets(context.Background(), eventID, userID, 1)

	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConflictIsRetriedThenSurfaced(t *testing.T) {
	alloc, mock := newMockAllocator(t, 3)
	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}

	for range 3 {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "events" .* FOR UPDATE`).WillReturnError(serialization)
		mock.ExpectRollback()
	}

	_, err := alloc.BookTickets(context.Background(), eventID, userID, 1)

	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorageFailureIsNotRetried(t *testing.T) {
	alloc, mock := newMockAllocator(t, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "events" .* FOR UPDATE`).WillReturnError(errors.New("connection refused"))
	mock.ExpectRollback()

	_, err := alloc.CancelTickets(context.Background(), eventID, userID, 1)

	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaleVersionRetriesCancel(t *testing.T) {
	alloc, mock := newMockAllocator(t, 2)

	expectCancel := func(updated int64) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "events" .* FOR UPDATE`).
			WillReturnRows(eventRows(0, 0, 4))
		mock.ExpectQuery(`SELECT .* FROM "ticket_orders" WHERE event_id = \$1 AND user_id = \$2 AND status = \$3`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("9a0e5f7c-1111-4c4a-9a53-5a6d1f3e7c33"))
		mock.ExpectExec(`UPDATE "ticket_orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "events" SET .*version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, updated))
	}

	expectCancel(0)
	mock.ExpectRollback()
	expectCancel(1)
	mock.ExpectCommit()

	res, err := alloc.CancelTickets(context.Background(), eventID, userID, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, res.AvailableTickets)
	assert.Equal(t, types.EVENT_AVAILABLE_TICKET, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsufficientBookingsRollsBack(t *testing.T) {
	alloc, mock := newMockAllocator(t, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "events" .* FOR UPDATE`).
		WillReturnRows(eventRows(1, 0, 2))
	mock.ExpectQuery(`SELECT .* FROM "ticket_orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := alloc.CancelTickets(context.Background(), eventID, userID, 1)

	assert.ErrorIs(t, err, ErrInsufficientBookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsConflict(t *testing.T) {
	assert.True(t, isConflict(errStaleVersion))
	assert.True(t, isConflict(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, isConflict(&pgconn.PgError{Code: "55P03"}))
	assert.False(t, isConflict(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isConflict(errors.New("boom")))

	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
