package contracts

import (
	"time"

	"github.com/guregu/null/v6"
)

// Classification is the funding-stress label of a rate spread
type Classification string

const (
	ClassNormal   Classification = "normal"
	ClassStressed Classification = "stressed"
	// ClassUnknown spread 값이 null 인 경우
	ClassUnknown Classification = "unknown"
)

// DeltaKind says how a headline change is expressed
type DeltaKind string

const (
	DeltaPercent  DeltaKind = "percent"
	DeltaAbsolute DeltaKind = "absolute"
)

// Metric is one headline value with its change from the previous row
type Metric struct {
	Column   string     `json:"column"`
	Latest   null.Float `json:"latest"`
	Previous null.Float `json:"previous"`
	Delta    null.Float `json:"delta"`
	Kind     DeltaKind  `json:"kind"`
	Units    string     `json:"units,omitempty"`
}

// Summary is the headline view of the latest row
type Summary struct {
	AsOf         time.Time      `json:"as_of"`
	PreviousDate time.Time      `json:"previous_date"`
	Metrics      []Metric       `json:"metrics"`
	RateSpread   null.Float     `json:"rate_spread"`
	Funding      Classification `json:"funding"`
	Threshold    float64        `json:"threshold"`
}

// Metric returns the metric for column
func (s *Summary) Metric(column string) (Metric, bool) {
	for _, m := range s.Metrics {
		if m.Column == column {
			return m, true
		}
	}
	return Metric{}, false
}

// Dashboard is the cached unit: table + summary for one start date
// ⭐ SSOT: API/CLI 응답은 모두 이 구조체
type Dashboard struct {
	Start       time.Time `json:"start"`
	Table       Table     `json:"table"`
	Summary     Summary   `json:"summary"`
	CatalogHash string    `json:"catalog_hash"`
	GeneratedAt time.Time `json:"generated_at"`
}
