package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/improvement-board/internal/domain"
)

// AttachmentRepository reads attachment metadata.
type AttachmentRepository interface {
	ListByItem(ctx context.Context, itemID string) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) ListByItem(ctx context.Context, itemID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, item_id, file_name, file_size, mime_type, uploaded_at
        FROM attachments WHERE item_id=$1 ORDER BY uploaded_at ASC`
	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Attachment{}
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.ItemID, &a.FileName, &a.FileSize, &a.MimeType, &a.UploadedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
