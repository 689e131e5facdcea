// Package extract turns API-Football responses into flat raw records, one
// unit per source entity.
package extract

import (
	"context"
	"fmt"
	"iter"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/quantfoot/pipeline/external/apifootball"
	"github.com/quantfoot/pipeline/internal/domain/rawdata"
)

// Getter is the subset of the API client used by extraction units.
type Getter interface {
	Get(ctx context.Context, endpoint string, params map[string]string) ([]any, error)
}

// Unit extracts one raw resource. Units share no state and can run concurrently.
type Unit interface {
	Resource() rawdata.Resource
	Extract(ctx context.Context) iter.Seq2[rawdata.Record, error]
}

type Options struct {
	Season  int     `validate:"gte=1900,lte=2100"`
	TeamIDs []int64 `validate:"required,min=1,dive,gt=0"`
}

var validate = validator.New()

func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid extract options: %w", err)
	}
	return nil
}

// Units returns every extraction unit in a stable order.
func Units(client Getter, opts Options) ([]Unit, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return []Unit{
		Countries(client),
		Leagues(client),
		TeamInfo(client, opts.TeamIDs),
		TeamSeasons(client, opts.TeamIDs),
		Venues(client, opts.TeamIDs),
		Fixtures(client, opts.TeamIDs, opts.Season),
		Players(client, opts.TeamIDs),
	}, nil
}

// Select filters units by resource name; an empty list keeps all.
func Select(units []Unit, names []string) ([]Unit, error) {
	if len(names) == 0 {
		return units, nil
	}
	byName := make(map[string]Unit, len(units))
	for _, u := range units {
		byName[u.Resource().Name] = u
	}

	out := make([]Unit, 0, len(names))
	for _, name := range names {
		u, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown resource %q", name)
		}
		out = append(out, u)
	}
	return out, nil
}

type emitFunc func(values map[string]any, data any) bool

type unit struct {
	resource rawdata.Resource
	client   Getter
	run      func(ctx context.Context, c Getter, emit emitFunc) error
}

func (u *unit) Resource() rawdata.Resource {
	return u.resource
}

func (u *unit) Extract(ctx context.Context) iter.Seq2[rawdata.Record, error] {
	return func(yield func(rawdata.Record, error) bool) {
		stopped := false
		emit := func(values map[string]any, data any) bool {
			raw, err := apifootball.Encode(data)
			if err != nil {
				stopped = true
				yield(rawdata.Record{}, fmt.Errorf("%s: encode document: %w", u.resource.Name, err))
				return false
			}
			if !yield(rawdata.NewRecord(values, raw), nil) {
				stopped = true
				return false
			}
			return true
		}

		if err := u.run(ctx, u.client, emit); err != nil && !stopped {
			yield(rawdata.Record{}, fmt.Errorf("%s: %w", u.resource.Name, err))
		}
	}
}

func teamParam(teamID int64) string {
	return strconv.FormatInt(teamID, 10)
}
