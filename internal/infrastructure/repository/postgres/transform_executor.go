package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TransformExecutor materializes transform models, running the statements of
// one model inside a single transaction.
type TransformExecutor struct {
	db *sqlx.DB
}

func NewTransformExecutor(db *sqlx.DB) *TransformExecutor {
	return &TransformExecutor{db: db}
}

func (e *TransformExecutor) Exec(ctx context.Context, statements []string) error {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transform tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec statement %d: %w", i+1, classifyError(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transform tx: %w", err)
	}
	return nil
}
