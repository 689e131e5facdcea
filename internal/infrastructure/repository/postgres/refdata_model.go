package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantfoot/pipeline/internal/domain/refdata"
)

type stagedEquityModel struct {
	Source               string              `db:"source"`
	ExternalInstrumentID string              `db:"external_instrument_id"`
	ExternalCompanyID    *string             `db:"external_company_id"`
	ExternalSecurityID   *string             `db:"external_security_id"`
	SecName              *string             `db:"ds_sec_name"`
	QuoteName            *string             `db:"ds_qt_name"`
	ISIN                 *string             `db:"isin"`
	CUSIP                *string             `db:"cusip"`
	SEDOL                *string             `db:"sedol"`
	RIC                  *string             `db:"ric"`
	RICRoot              *string             `db:"ric_root"`
	Ticker               *string             `db:"ticker"`
	DelistDate           *time.Time          `db:"sec_delist_date"`
	IssueTypeCode        *string             `db:"issue_type_code"`
	IssueDescription     *string             `db:"issue_description"`
	TypeCode             *string             `db:"type_code"`
	DivUnit              *string             `db:"div_unit"`
	IsMajorSecurity      *bool               `db:"is_major_sec"`
	IsPrimaryCountry     *bool               `db:"is_prim_qt"`
	RegionCode           *string             `db:"region"`
	SplitFactor          decimal.NullDecimal `db:"split_factor"`
	SplitDate            *time.Time          `db:"split_date"`
}

var stagedEquityColumns = []string{
	"source", "external_instrument_id", "external_company_id", "external_security_id",
	"ds_sec_name", "ds_qt_name", "isin", "cusip", "sedol", "ric", "ric_root", "ticker",
	"sec_delist_date", "issue_type_code", "issue_description", "type_code", "div_unit",
	"is_major_sec", "is_prim_qt", "region", "split_factor", "split_date",
}

func (m stagedEquityModel) toDomain() refdata.ExternalRecord {
	return refdata.ExternalRecord{
		Source:               m.Source,
		ExternalInstrumentID: m.ExternalInstrumentID,
		ExternalCompanyID:    m.ExternalCompanyID,
		ExternalSecurityID:   m.ExternalSecurityID,
		SecName:              m.SecName,
		QuoteName:            m.QuoteName,
		ISIN:                 m.ISIN,
		CUSIP:                m.CUSIP,
		SEDOL:                m.SEDOL,
		RIC:                  m.RIC,
		RICRoot:              m.RICRoot,
		Ticker:               m.Ticker,
		DelistDate:           m.DelistDate,
		IssueTypeCode:        m.IssueTypeCode,
		IssueDescription:     m.IssueDescription,
		TypeCode:             m.TypeCode,
		DivUnit:              m.DivUnit,
		IsMajorSecurity:      m.IsMajorSecurity,
		IsPrimaryCountry:     m.IsPrimaryCountry,
		RegionCode:           m.RegionCode,
		SplitFactor:          m.SplitFactor,
		SplitDate:            m.SplitDate,
	}
}

type mnemonicRow struct {
	ID       int64  `db:"id"`
	Mnemonic string `db:"mnemonic"`
}

type instrumentMappingRow struct {
	DataSourceID         int64  `db:"data_source_id"`
	ExternalInstrumentID string `db:"external_instrument_id"`
	InternalInstrumentID int64  `db:"internal_instrument_id"`
}

type companyMappingRow struct {
	DataSourceID      int64         `db:"data_source_id"`
	ExternalCompanyID string        `db:"external_company_id"`
	InternalCompanyID sql.NullInt64 `db:"internal_company_id"`
}

type equityInsertModel struct {
	EquityID         int64               `db:"equity_id"`
	SecurityID       *int32              `db:"security_id"`
	ISIN             *string             `db:"isin"`
	CUSIP            *string             `db:"cusip"`
	SEDOL            *string             `db:"sedol"`
	RIC              *string             `db:"ric"`
	Ticker           *string             `db:"ticker"`
	DelistedDate     *time.Time          `db:"delisted_date"`
	EquityTypeID     *int64              `db:"equity_type_id"`
	IssueType        *string             `db:"issue_type"`
	IssueDescription *string             `db:"issue_description"`
	DivUnit          *string             `db:"div_unit"`
	IsMajorSecurity  *bool               `db:"is_major_security"`
	IsPrimaryCountry *bool               `db:"is_primary_country"`
	CountryID        *int64              `db:"country_id"`
	SplitDate        *time.Time          `db:"split_date"`
	SplitFactor      decimal.NullDecimal `db:"split_factor"`
}

func newEquityInsertModel(e refdata.Equity) equityInsertModel {
	return equityInsertModel{
		EquityID:         e.EquityID,
		SecurityID:       e.SecurityID,
		ISIN:             e.ISIN,
		CUSIP:            e.CUSIP,
		SEDOL:            e.SEDOL,
		RIC:              e.RIC,
		Ticker:           e.Ticker,
		DelistedDate:     e.DelistedDate,
		EquityTypeID:     e.EquityTypeID,
		IssueType:        e.IssueType,
		IssueDescription: e.IssueDescription,
		DivUnit:          e.DivUnit,
		IsMajorSecurity:  e.IsMajorSecurity,
		IsPrimaryCountry: e.IsPrimaryCountry,
		CountryID:        e.CountryID,
		SplitDate:        e.SplitDate,
		SplitFactor:      e.SplitFactor,
	}
}
