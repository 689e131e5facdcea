package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("fixture_id", "status").
		From("marts.fixtures").
		Where(Eq("season", 2025), Or(Eq("home_team_id", 2184), Eq("away_team_id", 2184)), IsNotNull("status")).
		OrderBy("fixture_date DESC").
		Limit(50).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT fixture_id, status FROM marts.fixtures WHERE season = $1 AND (home_team_id = $2 OR away_team_id = $3) AND status IS NOT NULL ORDER BY fixture_date DESC LIMIT 50", query)
	assert.Equal(t, []any{2025, 2184, 2184}, args)
}

func TestInsertBuilder_OnConflictReturning(t *testing.T) {
	query, args, err := InsertInto("ref_data.instrument_mapping").
		Columns("data_source_id", "external_instrument_id", "internal_instrument_id").
		Values(int64(1), "X1", int64(10)).
		OnConflict("(data_source_id, external_instrument_id) DO NOTHING").
		Returning("internal_instrument_id").
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO ref_data.instrument_mapping (data_source_id, external_instrument_id, internal_instrument_id) VALUES ($1, $2, $3) ON CONFLICT (data_source_id, external_instrument_id) DO NOTHING RETURNING internal_instrument_id", query)
	assert.Len(t, args, 3)
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("t").Columns("a", "b").Values(1).ToSQL()
	require.Error(t, err)
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("ref_data.instrument").
		Set("name", "Acme").
		SetExpr("updated_at", "NOW()").
		Where(Eq("instrument_id", int64(7))).
		Returning("instrument_id").
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE ref_data.instrument SET name = $1, updated_at = NOW() WHERE instrument_id = $2 RETURNING instrument_id", query)
	assert.Equal(t, []any{"Acme", int64(7)}, args)
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("raw.raw_players").Where(Expr("team_id = ANY(?)", "{1,2}")).ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM raw.raw_players WHERE team_id = ANY($1)", query)
	assert.Equal(t, []any{"{1,2}"}, args)
}

func TestInsertModels(t *testing.T) {
	type row struct {
		ID      int64  `db:"id"`
		Name    string `db:"name"`
		Ignored string `db:"-"`
	}

	builder, err := InsertModels("raw.raw_countries", []row{{ID: 1, Name: "Switzerland"}, {ID: 2, Name: "France"}})
	require.NoError(t, err)

	query, args, err := builder.ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO raw.raw_countries (id, name) VALUES ($1, $2), ($3, $4)", query)
	assert.Equal(t, []any{int64(1), "Switzerland", int64(2), "France"}, args)
}
