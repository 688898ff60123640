package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/wastenot/apiserver/types"
)

// InventoryRepository handles persistence for inventory items.
type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// List returns the viewer's items ordered by soonest expiration. With all
// set, rows across every user are returned (admin view).
func (r *InventoryRepository) List(ctx context.Context, userID int, all bool) ([]types.InventoryItem, error) {
	const query = `
		SELECT id, user_id, name, category, quantity, unit, expiration_date, purchase_price, storage_location, created_at
		FROM inventory_items
		WHERE $2 OR user_id = $1
		ORDER BY expiration_date ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, all)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.InventoryItem, 0)
	for rows.Next() {
		var item types.InventoryItem
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.Name,
			&item.Category,
			&item.Quantity,
			&item.Unit,
			&item.ExpirationDate,
			&item.PurchasePrice,
			&item.StorageLocation,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *InventoryRepository) Create(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error) {
	item.CreatedAt = time.Now()

	const query = `
		INSERT INTO inventory_items (user_id, name, category, quantity, unit, expiration_date, purchase_price, storage_location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.UserID,
		item.Name,
		item.Category,
		item.Quantity,
		item.Unit,
		item.ExpirationDate,
		item.PurchasePrice,
		item.StorageLocation,
		item.CreatedAt,
	).Scan(&item.ID); err != nil {
		return types.InventoryItem{}, err
	}
	return item, nil
}

// Delete removes the item when it belongs to userID, or unconditionally
// for admins.
func (r *InventoryRepository) Delete(ctx context.Context, id, userID int, admin bool) error {
	const query = `DELETE FROM inventory_items WHERE id = $1 AND ($3 OR user_id = $2)`
	result, err := r.db.ExecContext(ctx, query, id, userID, admin)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
