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

const requestColumns = `id, requester_id, description, created_at`

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO requests (requester_id, description, created_at) VALUES (?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, request.RequesterID, request.Description, now)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	request.CreatedAt = now
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = ?`
	request, err := db.scanRequestRow(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("request %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return request, nil
}

func (db *DB) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE requester_id = ? ORDER BY created_at DESC, id DESC`
	return db.queryRequests(ctx, query, requesterID)
}

func (db *DB) ListRequestsExcept(ctx context.Context, requesterID int64, page pagination.Page) ([]*models.ItemRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE requester_id != ? ` + page.SQL()
	args := append([]interface{}{requesterID}, page.Args()...)
	return db.queryRequests(ctx, query, args...)
}

func (db *DB) scanRequestRow(row rowScanner) (*models.ItemRequest, error) {
	r := &models.ItemRequest{}
	err := row.Scan(&r.ID, &r.RequesterID, &r.Description, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*models.ItemRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ItemRequest
	for rows.Next() {
		r, err := db.scanRequestRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return requests, nil
}
