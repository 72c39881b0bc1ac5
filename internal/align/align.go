// Package align joins provider series onto the equity trading calendar.
//
// 매크로 시계열은 주간/일간 등 발표 주기가 제각각이므로
// 거래일 기준으로 as-of 조인 후 forward-fill 한다.
package align

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"github.com/wonny/macrodash/internal/contracts"
)

// Align builds the daily table from a fetch bundle.
//
//  1. index = union of equity dates with a valid close (ascending, unique)
//  2. macro columns take the latest valid value on or before each trading date
//  3. equity columns are forward-filled across the index
//
// Only a leading prefix of any column can remain null.
func Align(bundle *contracts.FetchBundle) *contracts.Table {
	equity := make([][]contracts.Observation, len(bundle.Equity))
	for i, s := range bundle.Equity {
		equity[i] = Dedupe(s.Observations)
	}
	macro := make([][]contracts.Observation, len(bundle.Macro))
	for i, s := range bundle.Macro {
		macro[i] = Dedupe(s.Observations)
	}

	index := tradingDays(equity)

	table := &contracts.Table{
		Columns: make([]string, 0, len(bundle.Equity)+len(bundle.Macro)),
		Rows:    make([]contracts.Row, len(index)),
	}
	for i, d := range index {
		table.Rows[i] = contracts.Row{
			Date:   d,
			Values: make(map[string]null.Float, len(bundle.Equity)+len(bundle.Macro)),
		}
	}

	for i, s := range bundle.Equity {
		table.Columns = append(table.Columns, s.Alias)
		fillColumn(table.Rows, s.Alias, equity[i])
	}
	for i, s := range bundle.Macro {
		table.Columns = append(table.Columns, s.Alias)
		fillColumn(table.Rows, s.Alias, macro[i])
	}

	return table
}

// fillColumn samples the column onto the row dates and forward-fills the gaps,
// giving each row the latest valid observation dated on or before it.
// observations must be sorted and unique.
func fillColumn(rows []contracts.Row, column string, observations []contracts.Observation) {
	values := ForwardFill(sample(rows, observations))
	for i := range rows {
		rows[i].Values[column] = values[i]
	}
}

// sample assigns each row the last valid observation dated after the previous
// row and on or before this one; rows without one are null.
func sample(rows []contracts.Row, observations []contracts.Observation) []null.Float {
	out := make([]null.Float, len(rows))
	j := 0
	for i := range rows {
		d := rows[i].Date
		for j < len(observations) && !observations[j].Date.After(d) {
			if observations[j].Value.Valid {
				out[i] = observations[j].Value
			}
			j++
		}
	}
	return out
}

// tradingDays returns the ascending union of dates with a valid close in any equity series
func tradingDays(equity [][]contracts.Observation) []time.Time {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, obs := range equity {
		for _, o := range obs {
			if o.Value.Valid && !seen[o.Date] {
				seen[o.Date] = true
				days = append(days, o.Date)
			}
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Dedupe normalizes dates to the calendar day, sorts ascending and keeps the
// last observation for a repeated date.
func Dedupe(observations []contracts.Observation) []contracts.Observation {
	if len(observations) == 0 {
		return nil
	}

	out := make([]contracts.Observation, len(observations))
	for i, o := range observations {
		out[i] = contracts.Observation{Date: contracts.Day(o.Date), Value: o.Value}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	n := 0
	for i := range out {
		if n > 0 && out[n-1].Date.Equal(out[i].Date) {
			out[n-1] = out[i] // 같은 날짜는 마지막 값 유지
			continue
		}
		out[n] = out[i]
		n++
	}
	return out[:n]
}

// ForwardFill replaces each null with the last preceding valid value.
// Leading nulls stay null.
func ForwardFill(values []null.Float) []null.Float {
	out := make([]null.Float, len(values))
	var last null.Float
	for i, v := range values {
		if v.Valid {
			last = v
		}
		out[i] = last
	}
	return out
}
