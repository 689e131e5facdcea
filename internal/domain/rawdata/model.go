package rawdata

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Disposition controls how a load writes into its raw table.
type Disposition string

const (
	// DispositionReplace deletes the table contents and inserts the new batch.
	DispositionReplace Disposition = "replace"
	// DispositionMerge upserts on the primary key, skipping unchanged payloads.
	DispositionMerge Disposition = "merge"
)

// Resource describes one raw table fed by an extraction unit.
type Resource struct {
	Name        string
	Disposition Disposition
	PrimaryKey  []string
	Columns     []string
}

func (r Resource) Table() string {
	return "raw." + r.Name
}

func (r Resource) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("resource name is required")
	}
	if len(r.Columns) == 0 {
		return fmt.Errorf("resource %s has no columns", r.Name)
	}
	switch r.Disposition {
	case DispositionReplace:
	case DispositionMerge:
		if len(r.PrimaryKey) == 0 {
			return fmt.Errorf("merge resource %s requires a primary key", r.Name)
		}
	default:
		return fmt.Errorf("resource %s has unknown disposition %q", r.Name, r.Disposition)
	}
	return nil
}

// Record is one flattened entity: indexed scalar columns plus the original
// JSON document.
type Record struct {
	Values      map[string]any
	Data        []byte
	PayloadHash string
}

func NewRecord(values map[string]any, data []byte) Record {
	sum := sha256.Sum256(data)
	return Record{
		Values:      values,
		Data:        data,
		PayloadHash: hex.EncodeToString(sum[:]),
	}
}

// Key renders the primary key values of the record for deduplication.
func (r Record) Key(primaryKey []string) string {
	parts := make([]string, 0, len(primaryKey))
	for _, col := range primaryKey {
		parts = append(parts, fmt.Sprint(r.Values[col]))
	}
	return strings.Join(parts, "|")
}

// LoadStats summarizes one resource load.
type LoadStats struct {
	Resource  string `json:"resource"`
	Received  int    `json:"received"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Deleted   int    `json:"deleted"`
}
