package extract

import (
	"context"
	"fmt"
	"strconv"

	af "github.com/quantfoot/pipeline/external/apifootball"
	"github.com/quantfoot/pipeline/internal/domain/rawdata"
)

var (
	CountriesResource = rawdata.Resource{
		Name:        "raw_countries",
		Disposition: rawdata.DispositionReplace,
		Columns:     []string{"country_code", "country_name"},
	}
	LeaguesResource = rawdata.Resource{
		Name:        "raw_leagues",
		Disposition: rawdata.DispositionReplace,
		Columns:     []string{"league_id", "league_name", "country_name", "season"},
	}
	TeamInfoResource = rawdata.Resource{
		Name:        "raw_team_info",
		Disposition: rawdata.DispositionReplace,
		Columns:     []string{"team_id", "team_name", "venue_id", "venue_name"},
	}
	TeamSeasonsResource = rawdata.Resource{
		Name:        "raw_team_seasons",
		Disposition: rawdata.DispositionReplace,
		Columns:     []string{"team_id", "season"},
	}
	VenuesResource = rawdata.Resource{
		Name:        "raw_venues",
		Disposition: rawdata.DispositionReplace,
		Columns:     []string{"venue_id", "venue_name", "team_id"},
	}
	FixturesResource = rawdata.Resource{
		Name:        "raw_fixtures",
		Disposition: rawdata.DispositionMerge,
		PrimaryKey:  []string{"fixture_id"},
		Columns:     []string{"fixture_id", "fixture_date", "team_id", "season", "status"},
	}
	PlayersResource = rawdata.Resource{
		Name:        "raw_players",
		Disposition: rawdata.DispositionReplace,
		Columns:     []string{"player_id", "player_name", "team_id", "position", "number"},
	}
)

func Countries(client Getter) Unit {
	return &unit{resource: CountriesResource, client: client, run: func(ctx context.Context, c Getter, emit emitFunc) error {
		items, err := c.Get(ctx, "countries", nil)
		if err != nil {
			return err
		}
		for _, raw := range items {
			item := af.AsObject(raw)
			if item == nil {
				continue
			}
			values := map[string]any{
				"country_code": af.NullableString(item, "code"),
				"country_name": af.NullableString(item, "name"),
			}
			if !emit(values, item) {
				return nil
			}
		}
		return nil
	}}
}

// Leagues emits one record per (league, season) pair, each carrying the full league document.
func Leagues(client Getter) Unit {
	return &unit{resource: LeaguesResource, client: client, run: func(ctx context.Context, c Getter, emit emitFunc) error {
		items, err := c.Get(ctx, "leagues", nil)
		if err != nil {
			return err
		}
		for _, raw := range items {
			item := af.AsObject(raw)
			if item == nil {
				continue
			}
			league := af.Object(item, "league")
			country := af.Object(item, "country")
			for _, season := range af.Objects(item, "seasons") {
				values := map[string]any{
					"league_id":    af.NullableInt64(league, "id"),
					"league_name":  af.NullableString(league, "name"),
					"country_name": af.NullableString(country, "name"),
					"season":       af.NullableInt64(season, "year"),
				}
				if !emit(values, item) {
					return nil
				}
			}
		}
		return nil
	}}
}

func TeamInfo(client Getter, teamIDs []int64) Unit {
	return &unit{resource: TeamInfoResource, client: client, run: func(ctx context.Context, c Getter, emit emitFunc) error {
		for _, teamID := range teamIDs {
			items, err := c.Get(ctx, "teams", map[string]string{"id": teamParam(teamID)})
			if err != nil {
				return fmt.Errorf("team=%d: %w", teamID, err)
			}
			for _, raw := range items {
				item := af.AsObject(raw)
				if item == nil {
					continue
				}
				team := af.Object(item, "team")
				venue := af.Object(item, "venue")
				values := map[string]any{
					"team_id":    af.NullableInt64(team, "id"),
					"team_name":  af.NullableString(team, "name"),
					"venue_id":   af.NullableInt64(venue, "id"),
					"venue_name": af.NullableString(venue, "name"),
				}
				if !emit(values, item) {
					return nil
				}
			}
		}
		return nil
	}}
}

// TeamSeasons emits one record per season year the provider lists for a team.
func TeamSeasons(client Getter, teamIDs []int64) Unit {
	return &unit{resource: TeamSeasonsResource, client: client, run: func(ctx context.Context, c Getter, emit emitFunc) error {
		for _, teamID := range teamIDs {
			items, err := c.Get(ctx, "teams/seasons", map[string]string{"team": teamParam(teamID)})
			if err != nil {
				return fmt.Errorf("team=%d: %w", teamID, err)
			}
			for _, raw := range items {
				season, ok := seasonYear(raw)
				if !ok {
					continue
				}
				doc := map[string]any{"team_id": teamID, "season": season}
				values := map[string]any{"team_id": teamID, "season": season}
				if !emit(values, doc) {
					return nil
				}
			}
		}
		return nil
	}}
}

// Venues emits the venue of every team that has one.
func Venues(client Getter, teamIDs []int64) Unit {
	return &unit{resource: VenuesResource, client: client, run: func(ctx context.Context, c Getter, emit emitFunc) error {
		for _, teamID := range teamIDs {
			items, err := c.Get(ctx, "teams", map[string]string{"id": teamParam(teamID)})
			if err != nil {
				return fmt.Errorf("team=%d: %w", teamID, err)
			}
			for _, raw := range items {
				item := af.AsObject(raw)
				venue := af.Object(item, "venue")
				if len(venue) == 0 {
					continue
				}
				values := map[string]any{
					"venue_id":   af.NullableInt64(venue, "id"),
					"venue_name": af.NullableString(venue, "name"),
					"team_id":    af.NullableInt64(af.Object(item, "team"), "id"),
				}
				if !emit(values, venue) {
					return nil
				}
			}
		}
		return nil
	}}
}

// Fixtures emits each fixture of the season once, attributed to the first
// configured team that played it.
func Fixtures(client Getter, teamIDs []int64, season int) Unit {
	return &unit{resource: FixturesResource, client: client, run: func(ctx context.Context, c Getter, emit emitFunc) error {
		seen := make(map[int64]struct{})
		for _, teamID := range teamIDs {
			items, err := c.Get(ctx, "fixtures", map[string]string{
				"team":   teamParam(teamID),
				"season": strconv.Itoa(season),
			})
			if err != nil {
				return fmt.Errorf("team=%d season=%d: %w", teamID, season, err)
			}
			for _, raw := range items {
				item := af.AsObject(raw)
				fixture := af.Object(item, "fixture")
				fixtureID, ok := af.Int64(fixture, "id")
				if !ok {
					continue
				}
				if _, dup := seen[fixtureID]; dup {
					continue
				}
				seen[fixtureID] = struct{}{}

				values := map[string]any{
					"fixture_id":   fixtureID,
					"fixture_date": af.NullableString(fixture, "date"),
					"team_id":      teamID,
					"season":       season,
					"status":       af.NullableString(af.Object(fixture, "status"), "short"),
				}
				if !emit(values, item) {
					return nil
				}
			}
		}
		return nil
	}}
}

// Players emits one record per squad member.
func Players(client Getter, teamIDs []int64) Unit {
	return &unit{resource: PlayersResource, client: client, run: func(ctx context.Context, c Getter, emit emitFunc) error {
		for _, teamID := range teamIDs {
			items, err := c.Get(ctx, "players/squads", map[string]string{"team": teamParam(teamID)})
			if err != nil {
				return fmt.Errorf("team=%d: %w", teamID, err)
			}
			for _, raw := range items {
				squad := af.AsObject(raw)
				squadTeamID, ok := af.Int64(af.Object(squad, "team"), "id")
				if !ok {
					squadTeamID = teamID
				}
				for _, player := range af.Objects(squad, "players") {
					values := map[string]any{
						"player_id":   af.NullableInt64(player, "id"),
						"player_name": af.NullableString(player, "name"),
						"team_id":     squadTeamID,
						"position":    af.NullableString(player, "position"),
						"number":      af.NullableInt64(player, "number"),
					}
					if !emit(values, player) {
						return nil
					}
				}
			}
		}
		return nil
	}}
}

func seasonYear(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
