package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx so statements can be
// shared between plain and transactional paths.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withTx runs fn inside a transaction, committing on success.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Set groups the repositories the services are built from.
type Set struct {
	Items         ItemRepository
	StatusHistory StatusHistoryRepository
	Departments   DepartmentRepository
	Users         UserRepository
	Attachments   AttachmentRepository
	AIToolUsers   AIToolUserRepository
}

// NewPostgresSet builds every repository on the same pool.
func NewPostgresSet(pool *pgxpool.Pool) Set {
	return Set{
		Items:         NewItemRepository(pool),
		StatusHistory: NewStatusHistoryRepository(pool),
		Departments:   NewDepartmentRepository(pool),
		Users:         NewUserRepository(pool),
		Attachments:   NewAttachmentRepository(pool),
		AIToolUsers:   NewAIToolUserRepository(pool),
	}
}
