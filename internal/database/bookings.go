package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sharovik/internal/domain"
	"sharovik/internal/models"
	"sharovik/internal/pagination"
)

const bookingColumns = `b.id, b.item_id, i.name, b.booker_id, b.start_date, b.end_date, b.status, b.created_at, b.updated_at`

// All timestamps are normalized to UTC before they hit the database so that
// the stored DATETIME strings compare correctly against query arguments.

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (item_id, booker_id, start_date, end_date, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		booking.Start.UTC(),
		booking.End.UTC(),
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.id = ?`
	booking, err := db.scanBookingRow(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatusIfWaiting is the terminal-state guard: the UPDATE only
// matches a WAITING row, so of two concurrent decisions exactly one wins and
// the other observes ErrInvalidState.
func (db *DB) UpdateBookingStatusIfWaiting(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, models.StatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking %d is not waiting: %w", id, domain.ErrInvalidState)
	}
	return nil
}

func (db *DB) ListByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, page pagination.Page) ([]*models.Booking, error) {
	where, args := stateCondition("b", state, now)
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.booker_id = ?` + where + ` ` + page.SQL()
	queryArgs := append([]interface{}{bookerID}, args...)
	queryArgs = append(queryArgs, page.Args()...)
	return db.queryBookings(ctx, query, queryArgs...)
}

func (db *DB) ListByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, page pagination.Page) ([]*models.Booking, error) {
	where, args := stateCondition("b", state, now)
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ?` + where + ` ` + page.SQL()
	queryArgs := append([]interface{}{ownerID}, args...)
	queryArgs = append(queryArgs, page.Args()...)
	return db.queryBookings(ctx, query, queryArgs...)
}

// LastBookingForItem returns the booking with the greatest end still before
// now, or nil when the item has no past booking.
func (db *DB) LastBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.item_id = ? AND b.end_date < ?
              ORDER BY b.end_date DESC LIMIT 1`
	booking, err := db.scanBookingRow(db.QueryRowContext(ctx, query, itemID, now.UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last booking: %w", err)
	}
	return booking, nil
}

// NextBookingForItem returns the booking with the smallest start after now,
// or nil when nothing is scheduled.
func (db *DB) NextBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.item_id = ? AND b.start_date > ?
              ORDER BY b.start_date ASC LIMIT 1`
	booking, err := db.scanBookingRow(db.QueryRowContext(ctx, query, itemID, now.UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return booking, nil
}

func (db *DB) HasCompletedBooking(ctx context.Context, itemID, userID int64, before time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings
              WHERE item_id = ? AND booker_id = ? AND end_date < ? AND status IN (?, ?)`
	var count int
	err := db.QueryRowContext(ctx, query, itemID, userID, before.UTC(),
		models.StatusWaiting, models.StatusApproved).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check completed booking: %w", err)
	}
	return count > 0, nil
}

func stateCondition(alias string, state models.BookingState, now time.Time) (string, []interface{}) {
	ts := now.UTC()
	switch state {
	case models.StateCurrent:
		return fmt.Sprintf(" AND %s.start_date <= ? AND %s.end_date >= ?", alias, alias), []interface{}{ts, ts}
	case models.StatePast:
		return fmt.Sprintf(" AND %s.end_date < ?", alias), []interface{}{ts}
	case models.StateFuture:
		return fmt.Sprintf(" AND %s.start_date > ?", alias), []interface{}{ts}
	case models.StateWaiting:
		return fmt.Sprintf(" AND %s.status = ?", alias), []interface{}{models.StatusWaiting}
	case models.StateRejected:
		return fmt.Sprintf(" AND %s.status = ?", alias), []interface{}{models.StatusRejected}
	default: // StateAll
		return "", nil
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (db *DB) scanBookingRow(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.ItemID, &b.ItemName, &b.BookerID,
		&b.Start, &b.End, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := db.scanBookingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}
