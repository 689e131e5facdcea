package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/quantfoot/pipeline/internal/domain/refdata"
	qb "github.com/quantfoot/pipeline/internal/platform/querybuilder"
)

const stagedEquityTable = "staging.stg_qa_equity"

// RefDataStore runs the instrument merge against ref_data.* inside one
// database transaction.
type RefDataStore struct {
	db *sqlx.DB
}

func NewRefDataStore(db *sqlx.DB) *RefDataStore {
	return &RefDataStore{db: db}
}

func (s *RefDataStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx refdata.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin refdata tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &refDataTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit refdata tx: %w", classifyError(err))
	}
	return nil
}

type refDataTx struct {
	tx *sqlx.Tx
}

func (t *refDataTx) StagedRecords(ctx context.Context) ([]refdata.ExternalRecord, error) {
	query, args, err := qb.Select(stagedEquityColumns...).From(stagedEquityTable).
		OrderBy("source", "external_instrument_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select staged equities query: %w", err)
	}

	var rows []stagedEquityModel
	if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select staged equities: %w", classifyError(err))
	}

	out := make([]refdata.ExternalRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (t *refDataTx) LoadReference(ctx context.Context, records []refdata.ExternalRecord) (refdata.ReferenceSnapshot, error) {
	snap := refdata.ReferenceSnapshot{
		InstrumentMappings: map[refdata.MappingKey]int64{},
		CompanyMappings:    map[refdata.CompanyKey]int64{},
	}

	var err error
	if snap.DataSources, err = t.mnemonics(ctx, "ref_data.data_source", "data_source_id", "mnemonic"); err != nil {
		return refdata.ReferenceSnapshot{}, err
	}
	if snap.Countries, err = t.mnemonics(ctx, "ref_data.country", "country_id", "code"); err != nil {
		return refdata.ReferenceSnapshot{}, err
	}
	if snap.InstrumentTypes, err = t.mnemonics(ctx, "ref_data.instrument_type", "instrument_type_id", "mnemonic"); err != nil {
		return refdata.ReferenceSnapshot{}, err
	}
	if snap.EquityTypes, err = t.mnemonics(ctx, "ref_data.equity_type", "equity_type_id", "mnemonic"); err != nil {
		return refdata.ReferenceSnapshot{}, err
	}

	instrumentIDs := make([]string, 0, len(records))
	companyIDs := make([]string, 0, len(records))
	for _, rec := range records {
		instrumentIDs = append(instrumentIDs, rec.ExternalInstrumentID)
		if rec.ExternalCompanyID != nil {
			companyIDs = append(companyIDs, *rec.ExternalCompanyID)
		}
	}

	if len(instrumentIDs) > 0 {
		query, args, err := qb.Select("data_source_id", "external_instrument_id", "internal_instrument_id").
			From("ref_data.instrument_mapping").
			Where(qb.Expr("external_instrument_id = ANY(?)", pq.Array(instrumentIDs))).
			ToSQL()
		if err != nil {
			return refdata.ReferenceSnapshot{}, fmt.Errorf("build select instrument mappings query: %w", err)
		}
		var rows []instrumentMappingRow
		if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
			return refdata.ReferenceSnapshot{}, fmt.Errorf("select instrument mappings: %w", err)
		}
		for _, row := range rows {
			snap.InstrumentMappings[refdata.MappingKey{DataSourceID: row.DataSourceID, ExternalInstrumentID: row.ExternalInstrumentID}] = row.InternalInstrumentID
		}
	}

	if len(companyIDs) > 0 {
		query, args, err := qb.Select("data_source_id", "external_company_id", "internal_company_id").
			From("ref_data.company_mapping").
			Where(qb.Expr("external_company_id = ANY(?)", pq.Array(companyIDs))).
			ToSQL()
		if err != nil {
			return refdata.ReferenceSnapshot{}, fmt.Errorf("build select company mappings query: %w", err)
		}
		var rows []companyMappingRow
		if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
			return refdata.ReferenceSnapshot{}, fmt.Errorf("select company mappings: %w", err)
		}
		for _, row := range rows {
			if !row.InternalCompanyID.Valid {
				continue
			}
			snap.CompanyMappings[refdata.CompanyKey{DataSourceID: row.DataSourceID, ExternalCompanyID: row.ExternalCompanyID}] = row.InternalCompanyID.Int64
		}
	}

	return snap, nil
}

func (t *refDataTx) mnemonics(ctx context.Context, table, idColumn, keyColumn string) (map[string]int64, error) {
	query, args, err := qb.Select(idColumn+" AS id", keyColumn+" AS mnemonic").From(table).
		Where(qb.IsNotNull(keyColumn)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select %s query: %w", table, err)
	}

	var rows []mnemonicRow
	if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Mnemonic] = row.ID
	}
	return out, nil
}

func (t *refDataTx) UpsertInstrument(ctx context.Context, id *int64, fields refdata.InstrumentFields) (int64, bool, error) {
	if id != nil {
		query, args, err := buildInstrumentUpdate(*id, fields)
		if err != nil {
			return 0, false, fmt.Errorf("build update instrument query: %w", err)
		}

		var updated []int64
		if err := t.tx.SelectContext(ctx, &updated, query, args...); err != nil {
			return 0, false, fmt.Errorf("update instrument id=%d: %w", *id, classifyError(err))
		}
		if len(updated) == 1 {
			return updated[0], false, nil
		}
	}

	query, args, err := buildInstrumentInsert(fields)
	if err != nil {
		return 0, false, fmt.Errorf("build insert instrument query: %w", err)
	}

	var newID int64
	if err := t.tx.GetContext(ctx, &newID, query, args...); err != nil {
		return 0, false, fmt.Errorf("insert instrument: %w", classifyError(err))
	}
	return newID, true, nil
}

func (t *refDataTx) UpsertEquity(ctx context.Context, equity refdata.Equity) (bool, error) {
	query, args, err := buildEquityUpdate(equity)
	if err != nil {
		return false, fmt.Errorf("build update equity query: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update equity id=%d: %w", equity.EquityID, classifyError(err))
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, nil
	}

	query, args, err = buildEquityInsert(equity)
	if err != nil {
		return false, fmt.Errorf("build insert equity query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("insert equity id=%d: %w", equity.EquityID, classifyError(err))
	}
	return true, nil
}

func (t *refDataTx) InsertInstrumentMapping(ctx context.Context, mapping refdata.Mapping) (bool, error) {
	query, args, err := buildMappingInsert(mapping)
	if err != nil {
		return false, fmt.Errorf("build insert instrument mapping query: %w", err)
	}

	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert instrument mapping: %w", classifyError(err))
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// buildInstrumentUpdate returns the matched id through RETURNING; zero rows
// means the mapped instrument is gone and the caller inserts instead.
func buildInstrumentUpdate(id int64, fields refdata.InstrumentFields) (string, []any, error) {
	return qb.Update("ref_data.instrument").
		Set("name", fields.Name).
		Set("instrument_type_id", fields.InstrumentTypeID).
		Set("entity_id", fields.EntityID).
		Set("symbol", fields.Symbol).
		Set("description", fields.Description).
		Where(qb.Eq("instrument_id", id)).
		Returning("instrument_id").
		ToSQL()
}

func buildInstrumentInsert(fields refdata.InstrumentFields) (string, []any, error) {
	return qb.InsertInto("ref_data.instrument").
		Columns("name", "instrument_type_id", "entity_id", "symbol", "description").
		Values(fields.Name, fields.InstrumentTypeID, fields.EntityID, fields.Symbol, fields.Description).
		Returning("instrument_id").
		ToSQL()
}

func buildEquityUpdate(equity refdata.Equity) (string, []any, error) {
	cols, vals, err := qb.ModelColumns(newEquityInsertModel(equity))
	if err != nil {
		return "", nil, fmt.Errorf("equity columns: %w", err)
	}

	update := qb.Update("ref_data.equity")
	for i, col := range cols {
		if col == "equity_id" {
			continue
		}
		update.Set(col, vals[i])
	}
	return update.Where(qb.Eq("equity_id", equity.EquityID)).ToSQL()
}

// buildEquityInsert keys the new row by the instrument id; equity_id is
// never generated.
func buildEquityInsert(equity refdata.Equity) (string, []any, error) {
	cols, vals, err := qb.ModelColumns(newEquityInsertModel(equity))
	if err != nil {
		return "", nil, fmt.Errorf("equity columns: %w", err)
	}
	return qb.InsertInto("ref_data.equity").Columns(cols...).Values(vals...).ToSQL()
}

func buildMappingInsert(mapping refdata.Mapping) (string, []any, error) {
	return qb.InsertInto("ref_data.instrument_mapping").
		Columns("data_source_id", "external_instrument_id", "internal_instrument_id").
		Values(mapping.DataSourceID, mapping.ExternalInstrumentID, mapping.InternalInstrumentID).
		OnConflict("(data_source_id, external_instrument_id) DO NOTHING").
		ToSQL()
}
