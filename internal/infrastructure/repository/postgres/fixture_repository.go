package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quantfoot/pipeline/internal/domain/fixture"
	qb "github.com/quantfoot/pipeline/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) List(ctx context.Context, limit int) ([]fixture.Fixture, error) {
	return r.selectFixtures(ctx, "list fixtures",
		qb.Select(fixtureColumns...).From(fixturesMart).
			OrderBy("fixture_date DESC", "fixture_datetime DESC", "fixture_id").
			Limit(limit),
	)
}

func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID int64) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select(fixtureColumns...).From(fixturesMart).
		Where(qb.Eq("fixture_id", fixtureID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build select fixture query: %w", err)
	}

	var row fixtureMartModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("select fixture id=%d: %w", fixtureID, err)
	}
	return row.toDomain(), true, nil
}

func (r *FixtureRepository) ListByDate(ctx context.Context, date time.Time) ([]fixture.Fixture, error) {
	return r.selectFixtures(ctx, "list fixtures by date",
		qb.Select(fixtureColumns...).From(fixturesMart).
			Where(qb.Eq("fixture_date", date.UTC().Format(time.DateOnly))).
			OrderBy("fixture_datetime", "fixture_id"),
	)
}

func (r *FixtureRepository) ListByTeam(ctx context.Context, teamID int64, limit int) ([]fixture.Fixture, error) {
	return r.selectFixtures(ctx, "list fixtures by team",
		qb.Select(fixtureColumns...).From(fixturesMart).
			Where(qb.Or(qb.Eq("home_team_id", teamID), qb.Eq("away_team_id", teamID))).
			OrderBy("fixture_date DESC", "fixture_datetime DESC", "fixture_id").
			Limit(limit),
	)
}

func (r *FixtureRepository) ListByStatus(ctx context.Context, statuses []string) ([]fixture.Fixture, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	return r.selectFixtures(ctx, "list fixtures by status",
		qb.Select(fixtureColumns...).From(fixturesMart).
			Where(qb.In("status", stringSliceToAny(statuses))).
			OrderBy("fixture_datetime", "fixture_id"),
	)
}

func (r *FixtureRepository) selectFixtures(ctx context.Context, op string, builder *qb.SelectBuilder) ([]fixture.Fixture, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []fixtureMartModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func stringSliceToAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
