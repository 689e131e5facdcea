package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfoot/pipeline/internal/domain/refdata"
)

func TestStagedEquityModel_ToDomain(t *testing.T) {
	delisted := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
	split := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	major, primary := true, false
	m := stagedEquityModel{
		Source:               "ACME",
		ExternalInstrumentID: "X1",
		ExternalCompanyID:    strPtr("C9"),
		ExternalSecurityID:   strPtr("1234"),
		SecName:              strPtr("Acme plc"),
		QuoteName:            strPtr("Acme Ord"),
		ISIN:                 strPtr("GB0000000001"),
		CUSIP:                strPtr("000000001"),
		SEDOL:                strPtr("0000001"),
		RIC:                  strPtr("ACME.L"),
		RICRoot:              strPtr("ACME"),
		Ticker:               strPtr("ACM"),
		DelistDate:           &delisted,
		IssueTypeCode:        strPtr("EQ"),
		IssueDescription:     strPtr("Ordinary shares"),
		TypeCode:             strPtr("ORD"),
		DivUnit:              strPtr("GBP"),
		IsMajorSecurity:      &major,
		IsPrimaryCountry:     &primary,
		RegionCode:           strPtr("GB"),
		SplitFactor:          decimal.NewNullDecimal(decimal.RequireFromString("2")),
		SplitDate:            &split,
	}

	assert.Equal(t, refdata.ExternalRecord{
		Source:               "ACME",
		ExternalInstrumentID: "X1",
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
		DelistDate:           &delisted,
		IssueTypeCode:        m.IssueTypeCode,
		IssueDescription:     m.IssueDescription,
		TypeCode:             m.TypeCode,
		DivUnit:              m.DivUnit,
		IsMajorSecurity:      &major,
		IsPrimaryCountry:     &primary,
		RegionCode:           m.RegionCode,
		SplitFactor:          m.SplitFactor,
		SplitDate:            &split,
	}, m.toDomain())
}

func TestNewEquityInsertModel_CarriesEveryAttribute(t *testing.T) {
	delisted := time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)
	secID := int32(1234)
	major := true
	equity := refdata.Equity{
		EquityID:        42,
		SecurityID:      &secID,
		ISIN:            strPtr("GB0000000001"),
		Ticker:          strPtr("ACM"),
		DelistedDate:    &delisted,
		EquityTypeID:    int64Ptr(5),
		IssueType:       strPtr("EQ"),
		IsMajorSecurity: &major,
		CountryID:       int64Ptr(3),
		SplitFactor:     decimal.NewNullDecimal(decimal.RequireFromString("0.5")),
	}

	m := newEquityInsertModel(equity)
	assert.Equal(t, int64(42), m.EquityID)
	assert.Equal(t, &secID, m.SecurityID)
	assert.Equal(t, equity.ISIN, m.ISIN)
	assert.Equal(t, equity.Ticker, m.Ticker)
	assert.Equal(t, &delisted, m.DelistedDate)
	assert.Equal(t, equity.EquityTypeID, m.EquityTypeID)
	assert.Equal(t, equity.IssueType, m.IssueType)
	assert.Equal(t, &major, m.IsMajorSecurity)
	assert.Equal(t, equity.CountryID, m.CountryID)
	require.True(t, m.SplitFactor.Valid)
	assert.True(t, m.SplitFactor.Decimal.Equal(decimal.RequireFromString("0.5")))
	assert.Nil(t, m.CUSIP)
	assert.Nil(t, m.SplitDate)
}
