package contracts

import (
	"time"

	"github.com/guregu/null/v6"
)

// Provider identifies an upstream data vendor
type Provider string

const (
	// ProviderYahoo 주식/금리 일봉 (SPY, QQQ, ^TNX)
	ProviderYahoo Provider = "yahoo"
	// ProviderFRED 연준 매크로 시계열 (WALCL, WTREGEN, RRPONTSYD, SOFR, EFFR)
	ProviderFRED Provider = "fred"
)

// Column names (SSOT)
// ⭐ SSOT: 출력 테이블 컬럼명은 여기서만 정의
const (
	ColSPY          = "SPY"
	ColQQQ          = "QQQ"
	ColTenYearYield = "10Y_Yield"
	ColTotalAssets  = "Total_Assets"
	ColTGA          = "TGA"
	ColRRP          = "RRP"
	ColSOFR         = "SOFR"
	ColEFFR         = "EFFR"
	ColNetLiquidity = "Net_Liquidity"
	ColRateSpread   = "Rate_Spread"
)

// DefaultColumnOrder is the output column order of the dashboard table
var DefaultColumnOrder = []string{
	ColSPY, ColQQQ, ColTenYearYield,
	ColTotalAssets, ColTGA, ColRRP, ColSOFR, ColEFFR,
	ColNetLiquidity, ColRateSpread,
}

// Observation is one dated value of a series.
// A missing provider value is null, never zero.
type Observation struct {
	Date  time.Time  `json:"date"`
	Value null.Float `json:"value"`
}

// RawSeries is one provider series at its native frequency
type RawSeries struct {
	Alias        string        `json:"alias"`
	Code         string        `json:"code"`
	Provider     Provider      `json:"provider"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations
func (s *RawSeries) Len() int {
	return len(s.Observations)
}

// FetchBundle is the Fetcher output handed to the Aligner
// 장 데이터(equity)와 매크로(macro)는 분리해서 전달
type FetchBundle struct {
	Start  time.Time   `json:"start"`
	Equity []RawSeries `json:"equity"`
	Macro  []RawSeries `json:"macro"`
}

// Day truncates t to its UTC calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"
