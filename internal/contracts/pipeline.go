package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그와 메트릭에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   Fetch → Align → Derive → Summary

// Stage represents a pipeline stage
type Stage string

const (
	// StageFetch 외부 데이터 수집
	// 책임: 두 provider 동시 호출, 타임아웃, 빈 결과 판정
	// 위치: internal/fetcher/
	StageFetch Stage = "FETCH"

	// StageAlign 거래일 정렬 및 forward-fill
	// 위치: internal/align/
	StageAlign Stage = "ALIGN"

	// StageDerive 파생 지표 계산 (Net Liquidity, Rate Spread)
	// 위치: internal/derive/
	StageDerive Stage = "DERIVE"

	// StageSummary 최신/직전 행 요약 및 분류
	// 위치: internal/summary/
	StageSummary Stage = "SUMMARY"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// AllStages returns stages in execution order
func AllStages() []Stage {
	return []Stage{StageFetch, StageAlign, StageDerive, StageSummary}
}
