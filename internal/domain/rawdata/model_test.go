package rawdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceValidate(t *testing.T) {
	tests := []struct {
		name    string
		res     Resource
		wantErr bool
	}{
		{name: "replace", res: Resource{Name: "raw_countries", Disposition: DispositionReplace, Columns: []string{"country_code"}}},
		{name: "merge with key", res: Resource{Name: "raw_fixtures", Disposition: DispositionMerge, PrimaryKey: []string{"fixture_id"}, Columns: []string{"fixture_id"}}},
		{name: "merge without key", res: Resource{Name: "raw_fixtures", Disposition: DispositionMerge, Columns: []string{"fixture_id"}}, wantErr: true},
		{name: "no columns", res: Resource{Name: "raw_x", Disposition: DispositionReplace}, wantErr: true},
		{name: "bad disposition", res: Resource{Name: "raw_x", Disposition: "append", Columns: []string{"a"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.res.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewRecord_HashIsStable(t *testing.T) {
	a := NewRecord(map[string]any{"fixture_id": int64(1)}, []byte(`{"id":1}`))
	b := NewRecord(map[string]any{"fixture_id": int64(1)}, []byte(`{"id":1}`))
	c := NewRecord(map[string]any{"fixture_id": int64(1)}, []byte(`{"id":2}`))

	assert.Equal(t, a.PayloadHash, b.PayloadHash)
	assert.NotEqual(t, a.PayloadHash, c.PayloadHash)
	assert.Len(t, a.PayloadHash, 64)
	assert.Equal(t, "1", a.Key([]string{"fixture_id"}))
}
