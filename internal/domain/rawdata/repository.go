package rawdata

import (
	"context"
	"iter"
)

// Repository writes extracted records into raw tables.
type Repository interface {
	// Load consumes records and writes them with the resource disposition in
	// one transaction. An error from the sequence aborts the load.
	Load(ctx context.Context, resource Resource, loadID string, records iter.Seq2[Record, error]) (LoadStats, error)
}
