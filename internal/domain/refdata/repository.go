package refdata

import "context"

// Store runs a unit of work against the reference schema. Every change made
// through the Tx commits when fn returns nil and rolls back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	// StagedRecords reads the external records of the current batch.
	StagedRecords(ctx context.Context) ([]ExternalRecord, error)
	// LoadReference reads the lookup tables needed to resolve records.
	LoadReference(ctx context.Context, records []ExternalRecord) (ReferenceSnapshot, error)
	// UpsertInstrument updates the row keyed by id when it exists, otherwise
	// inserts a new row with a store-assigned id.
	UpsertInstrument(ctx context.Context, id *int64, fields InstrumentFields) (instrumentID int64, inserted bool, err error)
	// UpsertEquity updates or inserts the equity keyed by EquityID.
	UpsertEquity(ctx context.Context, equity Equity) (inserted bool, err error)
	// InsertInstrumentMapping inserts the mapping unless its natural key exists.
	InsertInstrumentMapping(ctx context.Context, mapping Mapping) (inserted bool, err error)
}
