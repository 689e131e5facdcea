package postgres

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoot/pipeline/db"
	"github.com/quantfoot/pipeline/internal/domain/refdata"
	qb "github.com/quantfoot/pipeline/internal/platform/querybuilder"
)

func strPtr(v string) *string { return &v }
func int64Ptr(v int64) *int64 { return &v }

// tableColumns reads the column names of a CREATE TABLE block from the
// embedded migrations.
func tableColumns(t *testing.T, file, table string) []string {
	t.Helper()

	raw, err := db.Migrations.ReadFile("migrations/" + file)
	require.NoError(t, err)

	body := string(raw)
	start := strings.Index(body, "CREATE TABLE IF NOT EXISTS "+table+" (")
	require.GreaterOrEqual(t, start, 0, "table %s not found in %s", table, file)
	body = body[start:]
	body = body[strings.Index(body, "(")+1 : strings.Index(body, ");")]

	var cols []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "PRIMARY KEY") || strings.HasPrefix(line, "CONSTRAINT") {
			continue
		}
		cols = append(cols, strings.Fields(line)[0])
	}
	return cols
}

func TestStagedEquityColumnsMatchStagingTable(t *testing.T) {
	want := tableColumns(t, "000005_create_stg_qa_equity.up.sql", "staging.stg_qa_equity")
	assert.Equal(t, want, stagedEquityColumns)

	tagged, _, err := qb.ModelColumns(stagedEquityModel{})
	require.NoError(t, err)
	assert.Equal(t, want, tagged)
}

func TestEquityColumnsMatchEquityTable(t *testing.T) {
	want := tableColumns(t, "000004_create_ref_data.up.sql", "ref_data.equity")
	require.Len(t, want, 17)

	cols, _, err := qb.ModelColumns(newEquityInsertModel(refdata.Equity{EquityID: 1}))
	require.NoError(t, err)
	assert.Equal(t, want, cols)
}

func TestBuildInstrumentQueries(t *testing.T) {
	fields := refdata.InstrumentFields{Name: strPtr("Acme plc"), InstrumentTypeID: int64Ptr(1), Symbol: strPtr("ACME")}

	query, args, err := buildInstrumentUpdate(42, fields)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE ref_data.instrument SET name = $1, instrument_type_id = $2, entity_id = $3, symbol = $4, description = $5 WHERE instrument_id = $6 RETURNING instrument_id", query)
	require.Len(t, args, 6)
	assert.Equal(t, fields.Name, args[0])
	assert.Equal(t, int64(42), args[5])

	query, args, err = buildInstrumentInsert(fields)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO ref_data.instrument (name, instrument_type_id, entity_id, symbol, description) VALUES ($1, $2, $3, $4, $5) RETURNING instrument_id", query)
	assert.Len(t, args, 5)
}

func TestBuildEquityQueries(t *testing.T) {
	equity := refdata.Equity{
		EquityID:    42,
		ISIN:        strPtr("GB0000000001"),
		CountryID:   int64Ptr(3),
		SplitFactor: decimal.NewNullDecimal(decimal.RequireFromString("0.5")),
	}

	query, args, err := buildEquityUpdate(equity)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE ref_data.equity SET security_id = $1, isin = $2, cusip = $3, sedol = $4, ric = $5, ticker = $6, "+
		"delisted_date = $7, equity_type_id = $8, issue_type = $9, issue_description = $10, div_unit = $11, "+
		"is_major_security = $12, is_primary_country = $13, country_id = $14, split_date = $15, split_factor = $16 "+
		"WHERE equity_id = $17", query)
	require.Len(t, args, 17)
	assert.Equal(t, equity.ISIN, args[1])
	assert.Equal(t, equity.CountryID, args[13])
	assert.Equal(t, int64(42), args[16])

	query, args, err = buildEquityInsert(equity)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(query, "INSERT INTO ref_data.equity (equity_id, security_id, isin, "), query)
	assert.NotContains(t, query, "ON CONFLICT")
	require.Len(t, args, 17)
	assert.Equal(t, int64(42), args[0])
}

func TestBuildMappingInsert(t *testing.T) {
	query, args, err := buildMappingInsert(refdata.Mapping{DataSourceID: 2, ExternalInstrumentID: "X1", InternalInstrumentID: 42})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO ref_data.instrument_mapping (data_source_id, external_instrument_id, internal_instrument_id) VALUES ($1, $2, $3) ON CONFLICT (data_source_id, external_instrument_id) DO NOTHING", query)
	assert.Equal(t, []any{int64(2), "X1", int64(42)}, args)
}

func newMockTx(t *testing.T) (*refDataTx, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mock.ExpectBegin()
	tx, err := sqlx.NewDb(conn, "postgres").Beginx()
	require.NoError(t, err)
	return &refDataTx{tx: tx}, mock
}

func TestRefDataTx_UpsertInstrumentInsertsWhenUpdateMatchesNothing(t *testing.T) {
	tx, mock := newMockTx(t)
	fields := refdata.InstrumentFields{Name: strPtr("Acme plc")}

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE ref_data.instrument SET")).
		WillReturnRows(sqlmock.NewRows([]string{"instrument_id"}))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ref_data.instrument (")).
		WillReturnRows(sqlmock.NewRows([]string{"instrument_id"}).AddRow(int64(77)))

	id, inserted, err := tx.UpsertInstrument(context.Background(), int64Ptr(42), fields)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(77), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefDataTx_UpsertInstrumentUpdatesMappedRow(t *testing.T) {
	tx, mock := newMockTx(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE ref_data.instrument SET")).
		WillReturnRows(sqlmock.NewRows([]string{"instrument_id"}).AddRow(int64(42)))

	id, inserted, err := tx.UpsertInstrument(context.Background(), int64Ptr(42), refdata.InstrumentFields{})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefDataTx_UpsertEquityFallsThroughToInsert(t *testing.T) {
	tx, mock := newMockTx(t)
	delisted := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ref_data.equity SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ref_data.equity (")).WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := tx.UpsertEquity(context.Background(), refdata.Equity{EquityID: 42, DelistedDate: &delisted})
	require.NoError(t, err)
	assert.True(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefDataTx_InsertInstrumentMappingExistingPairIsKept(t *testing.T) {
	tx, mock := newMockTx(t)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (data_source_id, external_instrument_id) DO NOTHING")).
		WithArgs(int64(2), "X1", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := tx.InsertInstrumentMapping(context.Background(), refdata.Mapping{DataSourceID: 2, ExternalInstrumentID: "X1", InternalInstrumentID: 42})
	require.NoError(t, err)
	assert.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}
