package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/improvement-board/internal/domain"
)

// AIToolUserRepository persists the AI tool roster.
type AIToolUserRepository interface {
	List(ctx context.Context) ([]domain.AIToolUser, error)
	ReplaceAll(ctx context.Context, users []domain.AIToolUser) error
}

type aiToolUserRepository struct {
	pool *pgxpool.Pool
}

// NewAIToolUserRepository constructs repository.
func NewAIToolUserRepository(pool *pgxpool.Pool) AIToolUserRepository {
	return &aiToolUserRepository{pool: pool}
}

func (r *aiToolUserRepository) List(ctx context.Context) ([]domain.AIToolUser, error) {
	const query = `
        SELECT id, division, team, name, email, skywork, gemini, chatgpt, cursor, claude
        FROM ai_tool_users ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AIToolUser{}
	for rows.Next() {
		var u domain.AIToolUser
		if err := rows.Scan(
			&u.ID, &u.Division, &u.Team, &u.Name, &u.Email,
			&u.Tools.Skywork, &u.Tools.Gemini, &u.Tools.ChatGPT, &u.Tools.Cursor, &u.Tools.Claude,
		); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// ReplaceAll swaps the whole roster atomically. Rows with ID 0 get a fresh id.
func (r *aiToolUserRepository) ReplaceAll(ctx context.Context, users []domain.AIToolUser) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM ai_tool_users`); err != nil {
			return fmt.Errorf("clear roster: %w", err)
		}
		for _, u := range users {
			const query = `
                INSERT INTO ai_tool_users (id, division, team, name, email, skywork, gemini, chatgpt, cursor, claude)
                VALUES (COALESCE(NULLIF($1, 0), nextval('ai_tool_users_id_seq')), $2,$3,$4,$5,$6,$7,$8,$9,$10)`
			if _, err := tx.Exec(ctx, query,
				u.ID, u.Division, u.Team, u.Name, u.Email,
				u.Tools.Skywork, u.Tools.Gemini, u.Tools.ChatGPT, u.Tools.Cursor, u.Tools.Claude,
			); err != nil {
				return fmt.Errorf("insert roster entry %q: %w", u.Email, err)
			}
		}
		_, err := tx.Exec(ctx,
			`SELECT setval('ai_tool_users_id_seq', GREATEST((SELECT COALESCE(MAX(id), 0) FROM ai_tool_users), 1))`)
		return err
	})
}
