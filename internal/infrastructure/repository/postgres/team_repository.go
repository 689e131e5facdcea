package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/quantfoot/pipeline/internal/domain/team"
	qb "github.com/quantfoot/pipeline/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context, limit int) ([]team.Team, error) {
	return r.selectTeams(ctx, "list teams",
		qb.Select(teamColumns...).From(teamsMart).OrderBy("team_name", "team_id").Limit(limit),
	)
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (team.Team, bool, error) {
	query, args, err := qb.Select(teamColumns...).From(teamsMart).
		Where(qb.Eq("team_id", teamID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamMartModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team id=%d: %w", teamID, err)
	}
	return row.toDomain(), true, nil
}

func (r *TeamRepository) ListByCountry(ctx context.Context, country string) ([]team.Team, error) {
	return r.selectTeams(ctx, "list teams by country",
		qb.Select(teamColumns...).From(teamsMart).
			Where(qb.Expr("LOWER(team_country) = LOWER(?)", strings.TrimSpace(country))).
			OrderBy("team_name", "team_id"),
	)
}

func (r *TeamRepository) SearchByName(ctx context.Context, name string) ([]team.Team, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(name)) + "%"
	return r.selectTeams(ctx, "search teams by name",
		qb.Select(teamColumns...).From(teamsMart).
			Where(qb.Expr("team_name ILIKE ?", pattern)).
			OrderBy("team_name", "team_id"),
	)
}

func (r *TeamRepository) selectTeams(ctx context.Context, op string, builder *qb.SelectBuilder) ([]team.Team, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []teamMartModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(v string) string {
	return likeEscaper.Replace(v)
}
