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

const itemColumns = `id, name, description, available, owner_id, request_id, created_at, updated_at`

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (name, description, available, owner_id, request_id, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		item.Name,
		item.Description,
		item.Available,
		item.OwnerID,
		item.RequestID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	item, err := db.scanItemRow(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, now, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("item %d: %w", item.ID, domain.ErrNotFound)
	}
	item.UpdatedAt = now
	return nil
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64, page pagination.Page) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ` + page.SQL()
	args := append([]interface{}{ownerID}, page.Args()...)
	return db.queryItems(ctx, query, args...)
}

func (db *DB) CountItemsByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE owner_id = ?`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items by owner: %w", err)
	}
	return count, nil
}

// SearchItems matches name or description case-insensitively. Only available
// items are returned; an empty query is handled by the service layer.
func (db *DB) SearchItems(ctx context.Context, text string, page pagination.Page) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE available = 1 AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?) ` + page.SQL()
	pattern := "%" + text + "%"
	args := append([]interface{}{pattern, pattern}, page.Args()...)
	return db.queryItems(ctx, query, args...)
}

func (db *DB) ListItemsByRequest(ctx context.Context, requestID int64) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id = ? ORDER BY id`
	items, err := db.queryItems(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	result := make([]models.Item, 0, len(items))
	for _, item := range items {
		result = append(result, *item)
	}
	return result, nil
}

func (db *DB) scanItemRow(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Available,
		&item.OwnerID, &item.RequestID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...interface{}) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := db.scanItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}
