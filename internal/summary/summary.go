package summary

import (
	"fmt"

	"github.com/guregu/null/v6"

	"github.com/wonny/macrodash/internal/catalog"
	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/internal/derive"
)

// Headline is one column shown in the summary and how its change is expressed
type Headline struct {
	Column string
	Kind   contracts.DeltaKind
}

// DefaultHeadlines 지수는 등락률, 유동성/금리는 절대 변화량
var DefaultHeadlines = []Headline{
	{Column: contracts.ColSPY, Kind: contracts.DeltaPercent},
	{Column: contracts.ColQQQ, Kind: contracts.DeltaPercent},
	{Column: contracts.ColNetLiquidity, Kind: contracts.DeltaAbsolute},
	{Column: contracts.ColTenYearYield, Kind: contracts.DeltaAbsolute},
	{Column: contracts.ColRateSpread, Kind: contracts.DeltaAbsolute},
}

// Builder computes the headline summary of a derived table
type Builder struct {
	catalog   *catalog.Catalog
	headlines []Headline
	threshold float64
}

// New creates a Builder with the default headlines
func New(cat *catalog.Catalog, threshold float64) *Builder {
	return &Builder{
		catalog:   cat,
		headlines: DefaultHeadlines,
		threshold: threshold,
	}
}

// Build compares the latest row with the previous one.
// A one-row table compares the row with itself; an empty table is ErrEmptyResult.
func (b *Builder) Build(table *contracts.Table) (*contracts.Summary, error) {
	latest, ok := table.Latest()
	if !ok {
		return nil, fmt.Errorf("summary of empty table: %w", contracts.ErrEmptyResult)
	}
	previous, _ := table.Previous()

	s := &contracts.Summary{
		AsOf:         latest.Date,
		PreviousDate: previous.Date,
		Metrics:      make([]contracts.Metric, 0, len(b.headlines)),
		Threshold:    b.threshold,
	}

	for _, h := range b.headlines {
		if !table.HasColumn(h.Column) {
			continue
		}
		cur, prev := latest.Get(h.Column), previous.Get(h.Column)
		s.Metrics = append(s.Metrics, contracts.Metric{
			Column:   h.Column,
			Latest:   cur,
			Previous: prev,
			Delta:    Delta(cur, prev, h.Kind),
			Kind:     h.Kind,
			Units:    b.catalog.UnitsOf(h.Column),
		})
	}

	s.RateSpread = latest.Get(contracts.ColRateSpread)
	s.Funding = derive.Classify(s.RateSpread, b.threshold)

	return s, nil
}

// Delta returns the change from prev to cur; null when either side is null
// or a percent change has a zero base.
func Delta(cur, prev null.Float, kind contracts.DeltaKind) null.Float {
	if !cur.Valid || !prev.Valid {
		return null.Float{}
	}
	diff := cur.Float64 - prev.Float64
	if kind != contracts.DeltaPercent {
		return null.FloatFrom(diff)
	}
	if prev.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(diff / prev.Float64 * 100)
}
