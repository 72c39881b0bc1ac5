package yahoo

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"github.com/wonny/macrodash/internal/contracts"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *ChartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol       string `json:"symbol"`
		GMTOffset    int64  `json:"gmtoffset"`
		ExchangeName string `json:"exchangeName"`
		Timezone     string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []null.Float `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// flattenChart turns chart.result[] into closes keyed by meta.symbol
func flattenChart(resp chartResponse) map[string][]contracts.Observation {
	out := make(map[string][]contracts.Observation, len(resp.Chart.Result))
	for _, r := range resp.Chart.Result {
		out[r.Meta.Symbol] = append(out[r.Meta.Symbol], r.observations()...)
	}
	for symbol, obs := range out {
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
		out[symbol] = obs
	}
	return out
}

// observations pairs timestamps with closes.
// 거래소 현지 날짜 기준 (timestamp + gmtoffset)
func (r chartResult) observations() []contracts.Observation {
	var closes []null.Float
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	out := make([]contracts.Observation, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		var v null.Float
		if i < len(closes) {
			v = closes[i]
		}
		out = append(out, contracts.Observation{
			Date:  localDay(ts, r.Meta.GMTOffset),
			Value: v,
		})
	}
	return out
}

func localDay(ts, gmtOffset int64) time.Time {
	return contracts.Day(time.Unix(ts+gmtOffset, 0).UTC())
}
