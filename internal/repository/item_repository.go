package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/improvement-board/internal/domain"
)

// ItemSort selects the ordering column for item listings.
type ItemSort string

const (
	SortCreatedAt ItemSort = "createdAt"
	SortUpdatedAt ItemSort = "updatedAt"
)

var sortColumns = map[ItemSort]string{
	SortCreatedAt: "i.created_at",
	SortUpdatedAt: "i.updated_at",
}

// ItemFilter captures list parameters. Soft-deleted items are always excluded.
type ItemFilter struct {
	DepartmentID  *string
	Status        *domain.ItemStatus
	UpdatedBefore *time.Time
	Sort          ItemSort
	Ascending     bool
	Limit         int
	Offset        int
}

// ItemRepository encapsulates improvement item persistence.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item, relatedDepartmentIDs []string, initial *domain.StatusHistory) error
	GetByID(ctx context.Context, id string) (*domain.ItemListing, error)
	List(ctx context.Context, filter ItemFilter) ([]domain.ItemListing, int, error)
	Update(ctx context.Context, item *domain.Item) error
	UpdateStatus(ctx context.Context, item *domain.Item, entry *domain.StatusHistory) error
	SoftDelete(ctx context.Context, id string) error
	ExistsByTitle(ctx context.Context, departmentID, title string) (bool, error)
	CountActive(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[domain.ItemStatus]int, error)
	ListStale(ctx context.Context, updatedBefore time.Time, limit int) ([]domain.ItemListing, error)
}

type itemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository instantiates repository.
func NewItemRepository(pool *pgxpool.Pool) ItemRepository {
	return &itemRepository{pool: pool}
}

const listingColumns = `
        i.id, i.title, i.description, i.department_id, i.created_by, i.assigned_to, i.status,
        i.git_url, i.web_url, i.is_deleted, i.created_at, i.updated_at,
        d.name, d.code, d.color, c.name, a.name,
        (SELECT COUNT(*) FROM attachments att WHERE att.item_id = i.id)`

const listingFrom = `
        FROM improvement_items i
        JOIN departments d ON d.id = i.department_id
        JOIN users c ON c.id = i.created_by
        LEFT JOIN users a ON a.id = i.assigned_to`

// Create inserts the item with its related departments and initial history
// entry. Zero CreatedAt/UpdatedAt default to the current time.
func (r *itemRepository) Create(ctx context.Context, item *domain.Item, relatedDepartmentIDs []string, initial *domain.StatusHistory) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insertItem = `
            INSERT INTO improvement_items (title, description, department_id, created_by, assigned_to, status, git_url, web_url, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8, COALESCE($9, NOW()), COALESCE($10, $9, NOW()))
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insertItem,
			item.Title,
			item.Description,
			item.DepartmentID,
			item.CreatedBy,
			item.AssignedTo,
			item.Status,
			item.GitURL,
			item.WebURL,
			optionalTime(item.CreatedAt),
			optionalTime(item.UpdatedAt),
		).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}

		for _, deptID := range relatedDepartmentIDs {
			const insertRelated = `
                INSERT INTO item_related_departments (item_id, department_id)
                VALUES ($1,$2) ON CONFLICT DO NOTHING`
			if _, err := tx.Exec(ctx, insertRelated, item.ID, deptID); err != nil {
				return fmt.Errorf("insert related department: %w", err)
			}
		}

		initial.ItemID = item.ID
		return insertStatusHistory(ctx, tx, initial)
	})
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.ItemListing, error) {
	query := `SELECT` + listingColumns + listingFrom + ` WHERE i.id=$1 AND i.is_deleted = FALSE`
	listing, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *itemRepository) List(ctx context.Context, filter ItemFilter) ([]domain.ItemListing, int, error) {
	clauses := []string{"i.is_deleted = FALSE"}
	args := []any{}

	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("i.department_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("i.status=$%d", len(args)))
	}
	if filter.UpdatedBefore != nil {
		args = append(args, *filter.UpdatedBefore)
		clauses = append(clauses, fmt.Sprintf("i.updated_at < $%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM improvement_items i WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = sortColumns[SortCreatedAt]
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY %s %s, i.id %s LIMIT %d OFFSET %d`,
		listingColumns, listingFrom, where, column, direction, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	const query = `
        UPDATE improvement_items SET title=$1, description=$2, assigned_to=$3, git_url=$4, web_url=$5, updated_at=NOW()
        WHERE id=$6 AND is_deleted = FALSE
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		item.Title,
		item.Description,
		item.AssignedTo,
		item.GitURL,
		item.WebURL,
		item.ID,
	).Scan(&item.UpdatedAt)
}

// UpdateStatus moves the item to entry.ToStatus and appends entry in one
// transaction. The previous status is read under a row lock and recorded as
// entry.FromStatus.
func (r *itemRepository) UpdateStatus(ctx context.Context, item *domain.Item, entry *domain.StatusHistory) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var current domain.ItemStatus
		if err := tx.QueryRow(ctx,
			`SELECT status FROM improvement_items WHERE id=$1 AND is_deleted = FALSE FOR UPDATE`,
			item.ID,
		).Scan(&current); err != nil {
			return err
		}

		if err := tx.QueryRow(ctx,
			`UPDATE improvement_items SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`,
			entry.ToStatus, item.ID,
		).Scan(&item.UpdatedAt); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		entry.ItemID = item.ID
		entry.FromStatus = &current
		if err := insertStatusHistory(ctx, tx, entry); err != nil {
			return err
		}
		item.Status = entry.ToStatus
		return nil
	})
}

func (r *itemRepository) SoftDelete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE improvement_items SET is_deleted = TRUE, updated_at=NOW() WHERE id=$1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ExistsByTitle matches soft-deleted rows too, so a deleted import is not
// recreated by re-running the same workbook.
func (r *itemRepository) ExistsByTitle(ctx context.Context, departmentID, title string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM improvement_items WHERE department_id=$1 AND title=$2)`,
		departmentID, title,
	).Scan(&exists)
	return exists, err
}

func (r *itemRepository) CountActive(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM improvement_items WHERE is_deleted = FALSE`).Scan(&total)
	return total, err
}

func (r *itemRepository) CountByStatus(ctx context.Context) (map[domain.ItemStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM improvement_items WHERE is_deleted = FALSE GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.ItemStatus]int)
	for rows.Next() {
		var (
			status domain.ItemStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}

func (r *itemRepository) ListStale(ctx context.Context, updatedBefore time.Time, limit int) ([]domain.ItemListing, error) {
	query := `SELECT` + listingColumns + listingFrom + `
        WHERE i.is_deleted = FALSE AND i.updated_at < $1 AND i.status <> $2
        ORDER BY i.updated_at ASC
        LIMIT $3`
	rows, err := r.pool.Query(ctx, query, updatedBefore, domain.StatusDone, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func scanListing(row pgx.Row) (*domain.ItemListing, error) {
	var l domain.ItemListing
	if err := row.Scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&l.DepartmentID,
		&l.CreatedBy,
		&l.AssignedTo,
		&l.Status,
		&l.GitURL,
		&l.WebURL,
		&l.IsDeleted,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.DepartmentName,
		&l.DepartmentCode,
		&l.DepartmentColor,
		&l.CreatorName,
		&l.AssigneeName,
		&l.AttachmentCount,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanListings(rows pgx.Rows) ([]domain.ItemListing, error) {
	result := []domain.ItemListing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *listing)
	}
	return result, rows.Err()
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
