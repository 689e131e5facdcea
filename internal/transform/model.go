// Package transform compiles and runs the SQL models that turn raw tables
// into staging views and mart tables.
package transform

import (
	"errors"
	"fmt"
	"regexp"
)

type Materialization string

const (
	MaterializeView  Materialization = "view"
	MaterializeTable Materialization = "table"
)

// SourceSchema holds the raw tables referenced with {{ source }}.
const SourceSchema = "raw"

var (
	ErrUnknownModel = errors.New("unknown model")
	ErrCycle        = errors.New("model dependency cycle")

	identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// schemaMaterializations assigns the default materialization per model
// directory; anything else builds as a view.
var schemaMaterializations = map[string]Materialization{
	"staging": MaterializeView,
	"marts":   MaterializeTable,
}

// Model is one compiled SQL model. SQL holds the rendered select with every
// ref and source replaced by its relation name.
type Model struct {
	Name            string
	Schema          string
	Materialization Materialization
	Path            string
	SQL             string
	Deps            []string
	Sources         []string
}

func (m *Model) Relation() string {
	return m.Schema + "." + m.Name
}

// Statements returns the DDL that materializes the model. Tables are built
// under a temporary name and swapped in so readers never see a missing mart.
func (m *Model) Statements() []string {
	switch m.Materialization {
	case MaterializeTable:
		tmp := m.Name + "__tmp"
		return []string{
			fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", m.Schema, tmp),
			fmt.Sprintf("CREATE TABLE %s.%s AS\n%s", m.Schema, tmp, m.SQL),
			fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", m.Relation()),
			fmt.Sprintf("ALTER TABLE %s.%s RENAME TO %s", m.Schema, tmp, m.Name),
		}
	default:
		return []string{
			fmt.Sprintf("DROP VIEW IF EXISTS %s CASCADE", m.Relation()),
			fmt.Sprintf("CREATE VIEW %s AS\n%s", m.Relation(), m.SQL),
		}
	}
}
