package catalog

import "github.com/wonny/macrodash/internal/contracts"

// Catalog lists the fetched series and the derived-column formula table
// ⭐ SSOT: 어떤 시계열을 가져오고 어떤 지표를 계산할지는 여기서만 결정
type Catalog struct {
	Series   []Series  `yaml:"series" json:"series" validate:"required,min=1,dive"`
	Formulas []Formula `yaml:"formulas" json:"formulas" validate:"dive"`
}

// Series is one provider series and the column alias it is published under
type Series struct {
	Code     string             `yaml:"code" json:"code" validate:"required"`
	Alias    string             `yaml:"alias" json:"alias" validate:"required"`
	Provider contracts.Provider `yaml:"provider" json:"provider" validate:"required,oneof=yahoo fred"`
	Units    string             `yaml:"units,omitempty" json:"units,omitempty"`
}

// Formula is a derived column: (Σ sign·column) / divisor
type Formula struct {
	Name    string  `yaml:"name" json:"name" validate:"required"`
	Units   string  `yaml:"units,omitempty" json:"units,omitempty"`
	Divisor float64 `yaml:"divisor" json:"divisor" default:"1" validate:"ne=0"`
	Terms   []Term  `yaml:"terms" json:"terms" validate:"required,min=1,dive"`
}

// Term is one signed input of a formula
type Term struct {
	Column string `yaml:"column" json:"column" validate:"required"`
	Sign   int    `yaml:"sign" json:"sign" default:"1" validate:"oneof=-1 1"`
}

// Default returns the compiled-in catalog
func Default() *Catalog {
	return &Catalog{
		Series: []Series{
			{Code: "SPY", Alias: contracts.ColSPY, Provider: contracts.ProviderYahoo, Units: "USD"},
			{Code: "QQQ", Alias: contracts.ColQQQ, Provider: contracts.ProviderYahoo, Units: "USD"},
			{Code: "^TNX", Alias: contracts.ColTenYearYield, Provider: contracts.ProviderYahoo, Units: "percent"},
			{Code: "WALCL", Alias: contracts.ColTotalAssets, Provider: contracts.ProviderFRED, Units: "millions USD"},
			{Code: "WTREGEN", Alias: contracts.ColTGA, Provider: contracts.ProviderFRED, Units: "millions USD"},
			// RRPONTSYD 는 billions 단위로 발표됨 (원본 공식 그대로 유지)
			{Code: "RRPONTSYD", Alias: contracts.ColRRP, Provider: contracts.ProviderFRED, Units: "billions USD"},
			{Code: "SOFR", Alias: contracts.ColSOFR, Provider: contracts.ProviderFRED, Units: "percent"},
			{Code: "EFFR", Alias: contracts.ColEFFR, Provider: contracts.ProviderFRED, Units: "percent"},
		},
		Formulas: []Formula{
			{
				Name:    contracts.ColNetLiquidity,
				Units:   "billions USD",
				Divisor: 1000,
				Terms: []Term{
					{Column: contracts.ColTotalAssets, Sign: 1},
					{Column: contracts.ColTGA, Sign: -1},
					{Column: contracts.ColRRP, Sign: -1},
				},
			},
			{
				Name:    contracts.ColRateSpread,
				Units:   "percentage points",
				Divisor: 1,
				Terms: []Term{
					{Column: contracts.ColSOFR, Sign: 1},
					{Column: contracts.ColEFFR, Sign: -1},
				},
			},
		},
	}
}

// ByProvider returns the series of one provider in catalog order
func (c *Catalog) ByProvider(p contracts.Provider) []Series {
	var out []Series
	for _, s := range c.Series {
		if s.Provider == p {
			out = append(out, s)
		}
	}
	return out
}

// EquitySeries returns the series that define the trading calendar
func (c *Catalog) EquitySeries() []Series {
	return c.ByProvider(contracts.ProviderYahoo)
}

// MacroSeries returns the lower-frequency series joined onto the calendar
func (c *Catalog) MacroSeries() []Series {
	return c.ByProvider(contracts.ProviderFRED)
}

// Columns returns the output column order: equity aliases, macro aliases, then formulas
func (c *Catalog) Columns() []string {
	cols := make([]string, 0, len(c.Series)+len(c.Formulas))
	for _, s := range c.EquitySeries() {
		cols = append(cols, s.Alias)
	}
	for _, s := range c.MacroSeries() {
		cols = append(cols, s.Alias)
	}
	for _, f := range c.Formulas {
		cols = append(cols, f.Name)
	}
	return cols
}

// Formula returns the formula producing column name
func (c *Catalog) Formula(name string) (Formula, bool) {
	for _, f := range c.Formulas {
		if f.Name == name {
			return f, true
		}
	}
	return Formula{}, false
}

// UnitsOf returns the units of a series alias or formula column
func (c *Catalog) UnitsOf(column string) string {
	for _, s := range c.Series {
		if s.Alias == column {
			return s.Units
		}
	}
	if f, ok := c.Formula(column); ok {
		return f.Units
	}
	return ""
}
