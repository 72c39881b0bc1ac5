package contracts

import (
	"context"
	"time"
)

// EquitySource fetches daily closes for equity/rate symbols
// ⭐ SSOT: 주식/금리 데이터 소스 인터페이스
type EquitySource interface {
	FetchCloses(ctx context.Context, symbols []string, start, end time.Time) (map[string][]Observation, error)
}

// MacroSource fetches one macro series from a start date
// ⭐ SSOT: 매크로 데이터 소스 인터페이스
type MacroSource interface {
	FetchSeries(ctx context.Context, code string, start time.Time) ([]Observation, error)
}

// DashboardBuilder produces the dashboard for a start date
type DashboardBuilder interface {
	Build(ctx context.Context, start time.Time) (*Dashboard, error)
}
