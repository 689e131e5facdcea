package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/quantfoot/pipeline/internal/domain/refdata"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// classifyError marks Postgres integrity (class 23) and data (class 22)
// errors with the matching refdata sentinel while keeping the driver error.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code.Class() {
	case "23":
		return fmt.Errorf("%w: %s (%s): %w", refdata.ErrConstraintViolation, pqErr.Constraint, pqErr.Code, err)
	case "22":
		return fmt.Errorf("%w: %s: %w", refdata.ErrTypeCoercion, pqErr.Code.Name(), err)
	default:
		return err
	}
}

func nullStringValue(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
