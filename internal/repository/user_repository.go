package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/improvement-board/internal/domain"
)

// UserRepository defines persistence access for employees.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetProfile(ctx context.Context, id string) (*domain.UserProfile, error)
	ListActive(ctx context.Context, departmentID *string) ([]domain.UserProfile, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, employee_id, name, email, password_hash, role, department_id, is_active, created_at, updated_at`

const profileQuery = `
        SELECT u.id, u.employee_id, u.name, u.email, u.password_hash, u.role, u.department_id, u.is_active, u.created_at, u.updated_at,
               d.id, d.name, d.code, d.color, d.is_active, d.created_at, d.updated_at
        FROM users u
        JOIN departments d ON d.id = u.department_id`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (employee_id, name, email, password_hash, role, department_id, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.EmployeeID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.DepartmentID,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *userRepository) GetProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	return scanProfile(r.pool.QueryRow(ctx, profileQuery+` WHERE u.id=$1`, id))
}

func (r *userRepository) ListActive(ctx context.Context, departmentID *string) ([]domain.UserProfile, error) {
	query := profileQuery + ` WHERE u.is_active = TRUE`
	args := []any{}
	if departmentID != nil {
		args = append(args, *departmentID)
		query += fmt.Sprintf(` AND u.department_id=$%d`, len(args))
	}
	query += ` ORDER BY u.name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.UserProfile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *profile)
	}
	return result, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.EmployeeID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.DepartmentID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanProfile(row pgx.Row) (*domain.UserProfile, error) {
	var p domain.UserProfile
	u, d := &p.User, &p.Department
	if err := row.Scan(
		&u.ID, &u.EmployeeID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.DepartmentID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&d.ID, &d.Name, &d.Code, &d.Color, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
