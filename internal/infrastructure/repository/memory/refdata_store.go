package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/quantfoot/pipeline/internal/domain/refdata"
)

// RefDataStore is an in-memory refdata.Store. Each unit of work runs on a
// copy of the state that replaces the committed state only when fn succeeds.
type RefDataStore struct {
	mu    sync.Mutex
	state refState
}

type refState struct {
	staged           []refdata.ExternalRecord
	dataSources      map[string]int64
	countries        map[string]int64
	instrumentTypes  map[string]int64
	equityTypes      map[string]int64
	companyMappings  map[refdata.CompanyKey]int64
	instruments      map[int64]refdata.Instrument
	equities         map[int64]refdata.Equity
	mappings         map[refdata.MappingKey]int64
	nextInstrumentID int64
}

func NewRefDataStore() *RefDataStore {
	return &RefDataStore{state: refState{
		dataSources:      map[string]int64{},
		countries:        map[string]int64{},
		instrumentTypes:  map[string]int64{refdata.DefaultInstrumentType: 1},
		equityTypes:      map[string]int64{},
		companyMappings:  map[refdata.CompanyKey]int64{},
		instruments:      map[int64]refdata.Instrument{},
		equities:         map[int64]refdata.Equity{},
		mappings:         map[refdata.MappingKey]int64{},
		nextInstrumentID: 1,
	}}
}

func (s *RefDataStore) AddDataSource(mnemonic string, id int64) {
	s.mu.Lock()
	s.state.dataSources[mnemonic] = id
	s.mu.Unlock()
}

func (s *RefDataStore) AddCountry(code string, id int64) {
	s.mu.Lock()
	s.state.countries[code] = id
	s.mu.Unlock()
}

func (s *RefDataStore) AddEquityType(mnemonic string, id int64) {
	s.mu.Lock()
	s.state.equityTypes[mnemonic] = id
	s.mu.Unlock()
}

func (s *RefDataStore) AddCompanyMapping(key refdata.CompanyKey, internalCompanyID int64) {
	s.mu.Lock()
	s.state.companyMappings[key] = internalCompanyID
	s.mu.Unlock()
}

// Stage replaces the staged batch read by the next merge.
func (s *RefDataStore) Stage(records ...refdata.ExternalRecord) {
	s.mu.Lock()
	s.state.staged = append([]refdata.ExternalRecord(nil), records...)
	s.mu.Unlock()
}

func (s *RefDataStore) Instruments() []refdata.Instrument {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]refdata.Instrument, 0, len(s.state.instruments))
	for _, v := range s.state.instruments {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstrumentID < out[j].InstrumentID })
	return out
}

func (s *RefDataStore) Equities() []refdata.Equity {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]refdata.Equity, 0, len(s.state.equities))
	for _, v := range s.state.equities {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EquityID < out[j].EquityID })
	return out
}

func (s *RefDataStore) Mappings() map[refdata.MappingKey]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.state.mappings)
}

func (s *RefDataStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx refdata.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &refTx{state: &work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit refdata tx: %w", err)
	}
	s.state = work
	return nil
}

func (st refState) clone() refState {
	return refState{
		staged:           append([]refdata.ExternalRecord(nil), st.staged...),
		dataSources:      maps.Clone(st.dataSources),
		countries:        maps.Clone(st.countries),
		instrumentTypes:  maps.Clone(st.instrumentTypes),
		equityTypes:      maps.Clone(st.equityTypes),
		companyMappings:  maps.Clone(st.companyMappings),
		instruments:      maps.Clone(st.instruments),
		equities:         maps.Clone(st.equities),
		mappings:         maps.Clone(st.mappings),
		nextInstrumentID: st.nextInstrumentID,
	}
}

type refTx struct {
	state *refState
}

func (t *refTx) StagedRecords(ctx context.Context) ([]refdata.ExternalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]refdata.ExternalRecord(nil), t.state.staged...), nil
}

func (t *refTx) LoadReference(ctx context.Context, _ []refdata.ExternalRecord) (refdata.ReferenceSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return refdata.ReferenceSnapshot{}, err
	}
	return refdata.ReferenceSnapshot{
		DataSources:        maps.Clone(t.state.dataSources),
		InstrumentMappings: maps.Clone(t.state.mappings),
		CompanyMappings:    maps.Clone(t.state.companyMappings),
		Countries:          maps.Clone(t.state.countries),
		InstrumentTypes:    maps.Clone(t.state.instrumentTypes),
		EquityTypes:        maps.Clone(t.state.equityTypes),
	}, nil
}

func (t *refTx) UpsertInstrument(ctx context.Context, id *int64, fields refdata.InstrumentFields) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if id != nil {
		if _, ok := t.state.instruments[*id]; ok {
			t.state.instruments[*id] = refdata.Instrument{InstrumentID: *id, InstrumentFields: fields}
			return *id, false, nil
		}
	}

	newID := t.state.nextInstrumentID
	t.state.nextInstrumentID++
	t.state.instruments[newID] = refdata.Instrument{InstrumentID: newID, InstrumentFields: fields}
	return newID, true, nil
}

func (t *refTx) UpsertEquity(ctx context.Context, equity refdata.Equity) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, ok := t.state.instruments[equity.EquityID]; !ok {
		return false, fmt.Errorf("equity %d references missing instrument: %w", equity.EquityID, refdata.ErrConstraintViolation)
	}

	_, existed := t.state.equities[equity.EquityID]
	t.state.equities[equity.EquityID] = equity
	return !existed, nil
}

func (t *refTx) InsertInstrumentMapping(ctx context.Context, mapping refdata.Mapping) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, ok := t.state.instruments[mapping.InternalInstrumentID]; !ok {
		return false, fmt.Errorf("mapping references missing instrument %d: %w", mapping.InternalInstrumentID, refdata.ErrConstraintViolation)
	}

	key := refdata.MappingKey{DataSourceID: mapping.DataSourceID, ExternalInstrumentID: mapping.ExternalInstrumentID}
	if _, ok := t.state.mappings[key]; ok {
		return false, nil
	}
	t.state.mappings[key] = mapping.InternalInstrumentID
	return true, nil
}
