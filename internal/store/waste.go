package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/wastenot/apiserver/types"
)

// WasteLogRepository handles persistence for waste logs.
type WasteLogRepository struct {
	db *sql.DB
}

func NewWasteLogRepository(db *sql.DB) *WasteLogRepository {
	return &WasteLogRepository{db: db}
}

// List returns the viewer's logs, most recent waste first. With all set,
// rows across every user are returned (admin view).
func (r *WasteLogRepository) List(ctx context.Context, userID int, all bool) ([]types.WasteLog, error) {
	const query = `
		SELECT id, user_id, item_name, category, quantity, unit, reason, waste_date, notes, created_at
		FROM waste_logs
		WHERE $2 OR user_id = $1
		ORDER BY waste_date DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, all)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]types.WasteLog, 0)
	for rows.Next() {
		var log types.WasteLog
		if err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.ItemName,
			&log.Category,
			&log.Quantity,
			&log.Unit,
			&log.Reason,
			&log.WasteDate,
			&log.Notes,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *WasteLogRepository) Create(ctx context.Context, log types.WasteLog) (types.WasteLog, error) {
	log.CreatedAt = time.Now()

	const query = `
		INSERT INTO waste_logs (user_id, item_name, category, quantity, unit, reason, waste_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		log.UserID,
		log.ItemName,
		log.Category,
		log.Quantity,
		log.Unit,
		log.Reason,
		log.WasteDate,
		log.Notes,
		log.CreatedAt,
	).Scan(&log.ID); err != nil {
		return types.WasteLog{}, err
	}
	return log, nil
}

func (r *WasteLogRepository) Delete(ctx context.Context, id, userID int, admin bool) error {
	const query = `DELETE FROM waste_logs WHERE id = $1 AND ($3 OR user_id = $2)`
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
