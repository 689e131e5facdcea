package refdata

import (
	"fmt"
	"strconv"
	"strings"
)

// ResolveResult splits a batch into resolved records and records dropped
// because their source mnemonic is unknown.
type ResolveResult struct {
	Resolved []ResolvedRecord
	Dropped  []ExternalRecord
}

// Resolve projects external records onto internal identifiers with left-outer
// semantics. Only the data source lookup is mandatory. A non-integer security id
// or two records sharing a mapping key fail the whole batch.
func Resolve(records []ExternalRecord, ref ReferenceSnapshot, instrumentType string) (ResolveResult, error) {
	instrumentTypeID := lookup(ref.InstrumentTypes, instrumentType)

	out := ResolveResult{Resolved: make([]ResolvedRecord, 0, len(records))}
	seen := make(map[MappingKey]int, len(records))
	for idx, rec := range records {
		dataSourceID, ok := ref.DataSources[rec.Source]
		if !ok {
			out.Dropped = append(out.Dropped, rec)
			continue
		}

		securityID, err := coerceSecurityID(rec.ExternalSecurityID)
		if err != nil {
			return ResolveResult{}, fmt.Errorf("record %d source=%s external_instrument_id=%s: %w", idx, rec.Source, rec.ExternalInstrumentID, err)
		}

		resolved := ResolvedRecord{
			Record:           rec,
			DataSourceID:     dataSourceID,
			InstrumentTypeID: instrumentTypeID,
			SecurityID:       securityID,
			CountryID:        lookupPtr(ref.Countries, rec.RegionCode),
			EquityTypeID:     lookupPtr(ref.EquityTypes, rec.TypeCode),
		}
		if id, ok := ref.InstrumentMappings[resolved.Key()]; ok {
			resolved.InternalInstrumentID = &id
		}
		if rec.ExternalCompanyID != nil {
			if id, ok := ref.CompanyMappings[CompanyKey{DataSourceID: dataSourceID, ExternalCompanyID: *rec.ExternalCompanyID}]; ok {
				resolved.EntityID = &id
			}
		}

		if prev, dup := seen[resolved.Key()]; dup {
			return ResolveResult{}, fmt.Errorf("records %d and %d share source=%s external_instrument_id=%s: %w",
				prev, idx, rec.Source, rec.ExternalInstrumentID, ErrAmbiguousRecord)
		}
		seen[resolved.Key()] = idx
		out.Resolved = append(out.Resolved, resolved)
	}

	return out, nil
}

// DroppedSources returns the distinct unknown mnemonics in input order.
func (r ResolveResult) DroppedSources() []string {
	if len(r.Dropped) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(r.Dropped))
	out := make([]string, 0, len(r.Dropped))
	for _, rec := range r.Dropped {
		if _, ok := seen[rec.Source]; ok {
			continue
		}
		seen[rec.Source] = struct{}{}
		out = append(out, rec.Source)
	}
	return out
}

func coerceSecurityID(raw *string) (*int32, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(*raw), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("external_security_id %q is not a 32-bit integer: %w", *raw, ErrTypeCoercion)
	}
	id := int32(v)
	return &id, nil
}

func lookup(table map[string]int64, key string) *int64 {
	id, ok := table[key]
	if !ok {
		return nil
	}
	return &id
}

func lookupPtr(table map[string]int64, key *string) *int64 {
	if key == nil {
		return nil
	}
	return lookup(table, *key)
}
