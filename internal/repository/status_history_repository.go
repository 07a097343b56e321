package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/improvement-board/internal/domain"
)

// StatusHistoryRepository reads the append-only status trail. Entries are
// written only alongside item changes in ItemRepository.
type StatusHistoryRepository interface {
	ListByItem(ctx context.Context, itemID string) ([]domain.StatusHistory, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func insertStatusHistory(ctx context.Context, q queryer, entry *domain.StatusHistory) error {
	const query = `
        INSERT INTO status_histories (item_id, from_status, to_status, changed_by, note)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, changed_at`
	if err := q.QueryRow(ctx, query,
		entry.ItemID,
		entry.FromStatus,
		entry.ToStatus,
		entry.ChangedBy,
		entry.Note,
	).Scan(&entry.ID, &entry.ChangedAt); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func (r *statusHistoryRepository) ListByItem(ctx context.Context, itemID string) ([]domain.StatusHistory, error) {
	const query = `
        SELECT h.id, h.item_id, h.from_status, h.to_status, h.changed_by, u.name, h.note, h.changed_at
        FROM status_histories h
        JOIN users u ON u.id = h.changed_by
        WHERE h.item_id=$1
        ORDER BY h.seq DESC`
	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.StatusHistory{}
	for rows.Next() {
		var h domain.StatusHistory
		if err := rows.Scan(
			&h.ID,
			&h.ItemID,
			&h.FromStatus,
			&h.ToStatus,
			&h.ChangedBy,
			&h.ChangerName,
			&h.Note,
			&h.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}
