package refdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultInstrumentType is the instrument_type mnemonic assigned to equity records.
const DefaultInstrumentType = "EQU"

// ExternalRecord is one staged row of the upstream equity feed.
type ExternalRecord struct {
	Source               string
	ExternalInstrumentID string
	ExternalCompanyID    *string
	ExternalSecurityID   *string

	SecName          *string
	QuoteName        *string
	ISIN             *string
	CUSIP            *string
	SEDOL            *string
	RIC              *string
	RICRoot          *string
	Ticker           *string
	DelistDate       *time.Time
	IssueTypeCode    *string
	IssueDescription *string
	TypeCode         *string
	DivUnit          *string
	IsMajorSecurity  *bool
	IsPrimaryCountry *bool
	RegionCode       *string
	SplitFactor      decimal.NullDecimal
	SplitDate        *time.Time
}

// MappingKey is the natural key of ref_data.instrument_mapping.
type MappingKey struct {
	DataSourceID         int64
	ExternalInstrumentID string
}

// CompanyKey is the natural key of ref_data.company_mapping.
type CompanyKey struct {
	DataSourceID      int64
	ExternalCompanyID string
}

// ReferenceSnapshot holds the lookup tables read inside the merge transaction.
type ReferenceSnapshot struct {
	DataSources        map[string]int64
	InstrumentMappings map[MappingKey]int64
	CompanyMappings    map[CompanyKey]int64
	Countries          map[string]int64
	InstrumentTypes    map[string]int64
	EquityTypes        map[string]int64
}

// ResolvedRecord is an external record with every foreign key looked up.
// Optional lookups that missed are nil.
type ResolvedRecord struct {
	Record ExternalRecord

	DataSourceID         int64
	InternalInstrumentID *int64
	EntityID             *int64
	CountryID            *int64
	InstrumentTypeID     *int64
	EquityTypeID         *int64
	SecurityID           *int32
}

func (r ResolvedRecord) Key() MappingKey {
	return MappingKey{DataSourceID: r.DataSourceID, ExternalInstrumentID: r.Record.ExternalInstrumentID}
}

// InstrumentFields is the mutable column set of ref_data.instrument.
type InstrumentFields struct {
	Name             *string
	InstrumentTypeID *int64
	EntityID         *int64
	Symbol           *string
	Description      *string
}

func (r ResolvedRecord) InstrumentFields() InstrumentFields {
	return InstrumentFields{
		Name:             r.Record.SecName,
		InstrumentTypeID: r.InstrumentTypeID,
		EntityID:         r.EntityID,
		Symbol:           r.Record.RICRoot,
		Description:      r.Record.QuoteName,
	}
}

type Instrument struct {
	InstrumentID int64
	InstrumentFields
}

// Equity extends an instrument one-to-one; EquityID is always the owning InstrumentID.
type Equity struct {
	EquityID         int64
	SecurityID       *int32
	ISIN             *string
	CUSIP            *string
	SEDOL            *string
	RIC              *string
	Ticker           *string
	DelistedDate     *time.Time
	EquityTypeID     *int64
	IssueType        *string
	IssueDescription *string
	DivUnit          *string
	IsMajorSecurity  *bool
	IsPrimaryCountry *bool
	CountryID        *int64
	SplitDate        *time.Time
	SplitFactor      decimal.NullDecimal
}

func (r ResolvedRecord) Equity(instrumentID int64) Equity {
	return Equity{
		EquityID:         instrumentID,
		SecurityID:       r.SecurityID,
		ISIN:             r.Record.ISIN,
		CUSIP:            r.Record.CUSIP,
		SEDOL:            r.Record.SEDOL,
		RIC:              r.Record.RIC,
		Ticker:           r.Record.Ticker,
		DelistedDate:     r.Record.DelistDate,
		EquityTypeID:     r.EquityTypeID,
		IssueType:        r.Record.IssueTypeCode,
		IssueDescription: r.Record.IssueDescription,
		DivUnit:          r.Record.DivUnit,
		IsMajorSecurity:  r.Record.IsMajorSecurity,
		IsPrimaryCountry: r.Record.IsPrimaryCountry,
		CountryID:        r.CountryID,
		SplitDate:        r.Record.SplitDate,
		SplitFactor:      r.Record.SplitFactor,
	}
}

type Mapping struct {
	DataSourceID         int64
	ExternalInstrumentID string
	InternalInstrumentID int64
}

// UpsertedInstrument is the outcome of the parent upsert for one resolved record.
// It keeps the record that produced it so the dependent upsert needs no re-join.
type UpsertedInstrument struct {
	InstrumentID int64
	Inserted     bool
	Source       *ResolvedRecord
}

func (u UpsertedInstrument) Mapping() Mapping {
	return Mapping{
		DataSourceID:         u.Source.DataSourceID,
		ExternalInstrumentID: u.Source.Record.ExternalInstrumentID,
		InternalInstrumentID: u.InstrumentID,
	}
}
