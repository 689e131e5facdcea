package postgres

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/quantfoot/pipeline/internal/domain/rawdata"
	qb "github.com/quantfoot/pipeline/internal/platform/querybuilder"
)

const (
	defaultRawBatchSize = 500
	// maxBindParams is the postgres limit on parameters in one statement.
	maxBindParams = 65535
)

// RawDataRepository writes extracted records into raw.* tables.
type RawDataRepository struct {
	db        *sqlx.DB
	batchSize int
}

func NewRawDataRepository(db *sqlx.DB, batchSize int) *RawDataRepository {
	if batchSize <= 0 {
		batchSize = defaultRawBatchSize
	}
	return &RawDataRepository{db: db, batchSize: batchSize}
}

func (r *RawDataRepository) Load(ctx context.Context, resource rawdata.Resource, loadID string, records iter.Seq2[rawdata.Record, error]) (rawdata.LoadStats, error) {
	if err := resource.Validate(); err != nil {
		return rawdata.LoadStats{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return rawdata.LoadStats{}, fmt.Errorf("begin tx load %s: %w", resource.Name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stats := rawdata.LoadStats{Resource: resource.Name}
	if resource.Disposition == rawdata.DispositionReplace {
		query, args, err := qb.DeleteFrom(resource.Table()).ToSQL()
		if err != nil {
			return rawdata.LoadStats{}, fmt.Errorf("build truncate %s query: %w", resource.Name, err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return rawdata.LoadStats{}, fmt.Errorf("clear %s: %w", resource.Table(), classifyError(err))
		}
		deleted, _ := res.RowsAffected()
		stats.Deleted = int(deleted)
	}

	limit := batchLimit(r.batchSize, len(resource.Columns)+3)
	batch := make([]rawdata.Record, 0, limit)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.writeBatch(ctx, tx, resource, loadID, batch, &stats); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for rec, seqErr := range records {
		if seqErr != nil {
			return rawdata.LoadStats{}, seqErr
		}
		stats.Received++
		batch = append(batch, rec)
		if len(batch) >= limit {
			if err := flush(); err != nil {
				return rawdata.LoadStats{}, err
			}
		}
	}
	if err := flush(); err != nil {
		return rawdata.LoadStats{}, err
	}

	if err := tx.Commit(); err != nil {
		return rawdata.LoadStats{}, fmt.Errorf("commit load %s tx: %w", resource.Name, err)
	}
	return stats, nil
}

func (r *RawDataRepository) writeBatch(ctx context.Context, tx *sqlx.Tx, resource rawdata.Resource, loadID string, batch []rawdata.Record, stats *rawdata.LoadStats) error {
	rows := batch
	if resource.Disposition == rawdata.DispositionMerge {
		rows = dedupeByKey(batch, resource.PrimaryKey)
	}

	columns := append(append([]string(nil), resource.Columns...), "data", "payload_hash", "load_id")
	builder := qb.InsertInto(resource.Table()).Columns(columns...)
	for _, rec := range rows {
		values := make([]any, 0, len(columns))
		for _, col := range resource.Columns {
			values = append(values, rec.Values[col])
		}
		values = append(values, string(rec.Data), rec.PayloadHash, loadID)
		builder.Values(values...)
	}

	if resource.Disposition == rawdata.DispositionMerge {
		builder.OnConflict(mergeConflictClause(resource)).Returning("(xmax = 0) AS inserted")
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert %s query: %w", resource.Name, err)
	}

	if resource.Disposition != rawdata.DispositionMerge {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s batch: %w", resource.Table(), classifyError(err))
		}
		stats.Inserted += len(rows)
		return nil
	}

	var inserted []bool
	if err := tx.SelectContext(ctx, &inserted, query, args...); err != nil {
		return fmt.Errorf("upsert %s batch: %w", resource.Table(), classifyError(err))
	}
	for _, ok := range inserted {
		if ok {
			stats.Inserted++
		} else {
			stats.Updated++
		}
	}
	stats.Unchanged += len(rows) - len(inserted)
	return nil
}

// batchLimit caps rows per insert so one statement stays under the bind
// parameter limit for a table with the given column count.
func batchLimit(batchSize, columns int) int {
	if columns < 1 {
		return batchSize
	}
	return max(1, min(batchSize, maxBindParams/columns))
}

func mergeConflictClause(resource rawdata.Resource) string {
	pk := make(map[string]struct{}, len(resource.PrimaryKey))
	for _, col := range resource.PrimaryKey {
		pk[col] = struct{}{}
	}

	sets := make([]string, 0, len(resource.Columns)+4)
	for _, col := range resource.Columns {
		if _, ok := pk[col]; ok {
			continue
		}
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	sets = append(sets,
		"data = EXCLUDED.data",
		"payload_hash = EXCLUDED.payload_hash",
		"load_id = EXCLUDED.load_id",
		"loaded_at = NOW()",
	)

	return fmt.Sprintf("(%s) DO UPDATE SET %s WHERE %s.payload_hash IS DISTINCT FROM EXCLUDED.payload_hash",
		strings.Join(resource.PrimaryKey, ", "),
		strings.Join(sets, ", "),
		resource.Table(),
	)
}

// dedupeByKey keeps the last record per primary key; one INSERT ... ON
// CONFLICT statement cannot touch the same row twice.
func dedupeByKey(batch []rawdata.Record, primaryKey []string) []rawdata.Record {
	index := make(map[string]int, len(batch))
	out := make([]rawdata.Record, 0, len(batch))
	for _, rec := range batch {
		key := rec.Key(primaryKey)
		if i, ok := index[key]; ok {
			out[i] = rec
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out
}
