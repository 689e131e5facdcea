package memory

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/quantfoot/pipeline/internal/domain/rawdata"
)

// RawRepository keeps raw tables in memory with the same disposition
// semantics as the Postgres loader.
type RawRepository struct {
	mu     sync.RWMutex
	tables map[string][]StoredRecord
}

type StoredRecord struct {
	rawdata.Record
	LoadID string
}

func NewRawRepository() *RawRepository {
	return &RawRepository{tables: make(map[string][]StoredRecord)}
}

func (r *RawRepository) Load(ctx context.Context, resource rawdata.Resource, loadID string, records iter.Seq2[rawdata.Record, error]) (rawdata.LoadStats, error) {
	if err := resource.Validate(); err != nil {
		return rawdata.LoadStats{}, err
	}

	stats := rawdata.LoadStats{Resource: resource.Name}
	batch := make([]rawdata.Record, 0, 64)
	for rec, err := range records {
		if err != nil {
			return rawdata.LoadStats{}, err
		}
		if err := ctx.Err(); err != nil {
			return rawdata.LoadStats{}, err
		}
		batch = append(batch, rec)
	}
	stats.Received = len(batch)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch resource.Disposition {
	case rawdata.DispositionReplace:
		stats.Deleted = len(r.tables[resource.Name])
		rows := make([]StoredRecord, 0, len(batch))
		for _, rec := range batch {
			rows = append(rows, StoredRecord{Record: rec, LoadID: loadID})
		}
		stats.Inserted = len(rows)
		r.tables[resource.Name] = rows
	case rawdata.DispositionMerge:
		rows := r.tables[resource.Name]
		index := make(map[string]int, len(rows))
		for i, row := range rows {
			index[row.Key(resource.PrimaryKey)] = i
		}
		for _, rec := range batch {
			key := rec.Key(resource.PrimaryKey)
			i, ok := index[key]
			switch {
			case !ok:
				index[key] = len(rows)
				rows = append(rows, StoredRecord{Record: rec, LoadID: loadID})
				stats.Inserted++
			case rows[i].PayloadHash == rec.PayloadHash:
				stats.Unchanged++
			default:
				rows[i] = StoredRecord{Record: rec, LoadID: loadID}
				stats.Updated++
			}
		}
		r.tables[resource.Name] = rows
	default:
		return rawdata.LoadStats{}, fmt.Errorf("unsupported disposition %q", resource.Disposition)
	}

	return stats, nil
}

func (r *RawRepository) Rows(table string) []StoredRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]StoredRecord(nil), r.tables[table]...)
}
