package transform

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"text/template"

	"github.com/valyala/bytebufferpool"
)

//go:embed models
var embeddedModels embed.FS

// Project is the compiled set of models with their dependency graph.
type Project struct {
	models map[string]*Model
	order  []string
}

// DefaultProject compiles the models shipped with the binary.
func DefaultProject() (*Project, error) {
	sub, err := fs.Sub(embeddedModels, "models")
	if err != nil {
		return nil, fmt.Errorf("open embedded models: %w", err)
	}
	return LoadProject(sub)
}

// LoadProject reads <schema>/<model>.sql files from fsys, renders their
// templates and validates that the dependency graph is acyclic.
func LoadProject(fsys fs.FS) (*Project, error) {
	p := &Project{models: make(map[string]*Model)}

	err := fs.WalkDir(fsys, ".", func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(filePath) != ".sql" {
			return nil
		}
		dir, file := path.Split(filePath)
		schema := strings.Trim(dir, "/")
		name := strings.TrimSuffix(file, ".sql")
		if strings.Contains(schema, "/") || schema == "" {
			return fmt.Errorf("model %s must live directly under a schema directory", filePath)
		}
		if !identifierPattern.MatchString(schema) || !identifierPattern.MatchString(name) {
			return fmt.Errorf("model %s: schema and name must be lowercase identifiers", filePath)
		}
		if existing, ok := p.models[name]; ok {
			return fmt.Errorf("duplicate model %q in %s and %s", name, existing.Path, filePath)
		}

		materialization, ok := schemaMaterializations[schema]
		if !ok {
			materialization = MaterializeView
		}
		p.models[name] = &Model{
			Name:            name,
			Schema:          schema,
			Materialization: materialization,
			Path:            filePath,
		}
		p.order = append(p.order, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan models: %w", err)
	}
	if len(p.models) == 0 {
		return nil, fmt.Errorf("no models found")
	}
	slices.Sort(p.order)

	for _, name := range p.order {
		if err := p.compile(fsys, p.models[name]); err != nil {
			return nil, err
		}
	}
	if _, err := p.Levels(p.order); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Project) compile(fsys fs.FS, m *Model) error {
	body, err := fs.ReadFile(fsys, m.Path)
	if err != nil {
		return fmt.Errorf("read model %s: %w", m.Name, err)
	}

	var deps, sources []string
	funcs := template.FuncMap{
		"ref": func(name string) (string, error) {
			target, ok := p.models[name]
			if !ok {
				return "", fmt.Errorf("%w %q", ErrUnknownModel, name)
			}
			deps = append(deps, name)
			return target.Relation(), nil
		},
		"source": func(table string) (string, error) {
			if !identifierPattern.MatchString(table) {
				return "", fmt.Errorf("invalid source table %q", table)
			}
			sources = append(sources, table)
			return SourceSchema + "." + table, nil
		},
	}

	tmpl, err := template.New(m.Name).Funcs(funcs).Parse(string(body))
	if err != nil {
		return fmt.Errorf("parse model %s: %w", m.Name, err)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := tmpl.Execute(buf, nil); err != nil {
		return fmt.Errorf("render model %s: %w", m.Name, err)
	}

	m.SQL = strings.TrimSpace(buf.String())
	m.Deps = sortedUnique(deps)
	m.Sources = sortedUnique(sources)
	return nil
}

// Model returns a compiled model by name.
func (p *Project) Model(name string) (*Model, bool) {
	m, ok := p.models[name]
	return m, ok
}

// Models returns every model sorted by name.
func (p *Project) Models() []*Model {
	out := make([]*Model, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.models[name])
	}
	return out
}

// Select resolves selectors into model names. A selector is a model name or
// a schema name; a trailing "+" adds downstream models and a leading "+"
// adds upstream models. No selectors selects everything.
func (p *Project) Select(selectors []string) ([]string, error) {
	if len(selectors) == 0 {
		return slices.Clone(p.order), nil
	}

	selected := make(map[string]struct{})
	for _, raw := range selectors {
		sel := strings.TrimSpace(raw)
		upstream := strings.HasPrefix(sel, "+")
		downstream := strings.HasSuffix(sel, "+")
		sel = strings.Trim(sel, "+")

		var roots []string
		if _, ok := p.models[sel]; ok {
			roots = append(roots, sel)
		} else {
			for _, name := range p.order {
				if p.models[name].Schema == sel {
					roots = append(roots, name)
				}
			}
		}
		if len(roots) == 0 {
			return nil, fmt.Errorf("%w: selector %q matches nothing", ErrUnknownModel, raw)
		}

		for _, root := range roots {
			selected[root] = struct{}{}
			if upstream {
				p.walk(root, p.parents, selected)
			}
			if downstream {
				p.walk(root, p.children, selected)
			}
		}
	}

	out := make([]string, 0, len(selected))
	for name := range selected {
		out = append(out, name)
	}
	slices.Sort(out)
	return out, nil
}

func (p *Project) parents(name string) []string {
	return p.models[name].Deps
}

func (p *Project) children(name string) []string {
	var out []string
	for _, other := range p.order {
		if slices.Contains(p.models[other].Deps, name) {
			out = append(out, other)
		}
	}
	return out
}

func (p *Project) walk(name string, next func(string) []string, seen map[string]struct{}) {
	for _, n := range next(name) {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		p.walk(n, next, seen)
	}
}

func sortedUnique(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
