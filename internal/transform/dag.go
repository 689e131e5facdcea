package transform

import (
	"fmt"
	"slices"
	"strings"
)

// Levels orders the named models into dependency levels: every model's
// selected dependencies sit in an earlier level. Dependencies outside the
// selection are treated as already built.
func (p *Project) Levels(names []string) ([][]*Model, error) {
	selected := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := p.models[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownModel, name)
		}
		selected[name] = struct{}{}
	}

	pending := make(map[string]int, len(selected))
	for name := range selected {
		count := 0
		for _, dep := range p.models[name].Deps {
			if _, ok := selected[dep]; ok {
				count++
			}
		}
		pending[name] = count
	}

	var levels [][]*Model
	for len(pending) > 0 {
		var ready []string
		for name, count := range pending {
			if count == 0 {
				ready = append(ready, name)
			}
		}
		if len(ready) == 0 {
			remaining := make([]string, 0, len(pending))
			for name := range pending {
				remaining = append(remaining, name)
			}
			slices.Sort(remaining)
			return nil, fmt.Errorf("%w between %s", ErrCycle, strings.Join(remaining, ", "))
		}
		slices.Sort(ready)

		level := make([]*Model, 0, len(ready))
		for _, name := range ready {
			delete(pending, name)
			level = append(level, p.models[name])
		}
		for name := range pending {
			for _, dep := range p.models[name].Deps {
				if slices.Contains(ready, dep) {
					pending[name]--
				}
			}
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// Describe lists the models in execution order with their dependencies.
func (p *Project) Describe(selectors []string) ([]ModelInfo, error) {
	names, err := p.Select(selectors)
	if err != nil {
		return nil, err
	}
	levels, err := p.Levels(names)
	if err != nil {
		return nil, err
	}

	var out []ModelInfo
	for depth, level := range levels {
		for _, m := range level {
			out = append(out, ModelInfo{
				Name:            m.Name,
				Relation:        m.Relation(),
				Materialization: m.Materialization,
				Level:           depth,
				Deps:            slices.Clone(m.Deps),
				Sources:         slices.Clone(m.Sources),
			})
		}
	}
	return out, nil
}

type ModelInfo struct {
	Name            string          `json:"name"`
	Relation        string          `json:"relation"`
	Materialization Materialization `json:"materialization"`
	Level           int             `json:"level"`
	Deps            []string        `json:"deps,omitempty"`
	Sources         []string        `json:"sources,omitempty"`
}
