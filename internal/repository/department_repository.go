package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/improvement-board/internal/domain"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	GetByCode(ctx context.Context, code string) (*domain.Department, error)
	ListActive(ctx context.Context) ([]domain.Department, error)
	ListByItem(ctx context.Context, itemID string) ([]domain.Department, error)
	CountExisting(ctx context.Context, ids []string) (int, error)
	FindByNameOrFragment(ctx context.Context, name, fragment string) (*domain.Department, error)
	First(ctx context.Context) (*domain.Department, error)
	CountItems(ctx context.Context) ([]domain.DepartmentCount, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

const departmentColumns = `id, name, code, color, is_active, created_at, updated_at`

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name, code, color, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Code,
		dept.Color,
		dept.IsActive,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	return scanDepartment(r.pool.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id=$1`, id))
}

func (r *departmentRepository) GetByCode(ctx context.Context, code string) (*domain.Department, error) {
	return scanDepartment(r.pool.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE code=$1`, code))
}

func (r *departmentRepository) ListActive(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+departmentColumns+` FROM departments WHERE is_active = TRUE ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *departmentRepository) ListByItem(ctx context.Context, itemID string) ([]domain.Department, error) {
	const query = `
        SELECT d.id, d.name, d.code, d.color, d.is_active, d.created_at, d.updated_at
        FROM item_related_departments rd
        JOIN departments d ON d.id = rd.department_id
        WHERE rd.item_id=$1
        ORDER BY d.code ASC`
	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *departmentRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM departments WHERE id::text = ANY($1)`, ids).Scan(&count)
	return count, err
}

// FindByNameOrFragment prefers an exact name match, then any department whose
// name contains fragment. Active departments win ties.
func (r *departmentRepository) FindByNameOrFragment(ctx context.Context, name, fragment string) (*domain.Department, error) {
	const query = `
        SELECT ` + departmentColumns + `
        FROM departments
        WHERE name = $1 OR ($2 <> '' AND strpos(name, $2) > 0)
        ORDER BY (name = $1) DESC, is_active DESC, code ASC
        LIMIT 1`
	return scanDepartment(r.pool.QueryRow(ctx, query, name, fragment))
}

func (r *departmentRepository) First(ctx context.Context) (*domain.Department, error) {
	const query = `SELECT ` + departmentColumns + ` FROM departments ORDER BY is_active DESC, code ASC LIMIT 1`
	return scanDepartment(r.pool.QueryRow(ctx, query))
}

func (r *departmentRepository) CountItems(ctx context.Context) ([]domain.DepartmentCount, error) {
	const query = `
        SELECT d.id, d.name, d.code, d.color, d.is_active, d.created_at, d.updated_at,
               COUNT(i.id) FILTER (WHERE i.is_deleted = FALSE)
        FROM departments d
        LEFT JOIN improvement_items i ON i.department_id = d.id
        WHERE d.is_active = TRUE
        GROUP BY d.id
        ORDER BY d.code ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.DepartmentCount{}
	for rows.Next() {
		var dc domain.DepartmentCount
		d := &dc.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.Color, &d.IsActive, &d.CreatedAt, &d.UpdatedAt, &dc.Count); err != nil {
			return nil, err
		}
		result = append(result, dc)
	}
	return result, rows.Err()
}

func scanDepartment(row pgx.Row) (*domain.Department, error) {
	var d domain.Department
	if err := row.Scan(&d.ID, &d.Name, &d.Code, &d.Color, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDepartments(rows pgx.Rows) ([]domain.Department, error) {
	result := []domain.Department{}
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}
