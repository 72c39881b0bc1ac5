package derive

import (
	"github.com/guregu/null/v6"

	"github.com/wonny/macrodash/internal/catalog"
	"github.com/wonny/macrodash/internal/contracts"
)

// DefaultStressThreshold Rate_Spread 가 이 값(pp)을 넘으면 자금시장 스트레스
const DefaultStressThreshold = 0.05

// thresholdEpsilon absorbs float noise such as 5.38-5.33 = 0.05000000000000071
const thresholdEpsilon = 1e-9

// Engine evaluates the catalog formula table column-wise
// ⭐ SSOT: 파생 지표 계산은 이 엔진에서만
type Engine struct {
	formulas []catalog.Formula
}

// New creates an engine for the catalog formulas
func New(cat *catalog.Catalog) *Engine {
	return &Engine{formulas: cat.Formulas}
}

// Apply returns a copy of table with every derived column recomputed from the aligned values.
// The input table is not modified.
func (e *Engine) Apply(table *contracts.Table) *contracts.Table {
	out := &contracts.Table{
		Columns: append([]string(nil), table.Columns...),
		Rows:    make([]contracts.Row, len(table.Rows)),
	}
	for _, f := range e.formulas {
		if !out.HasColumn(f.Name) {
			out.Columns = append(out.Columns, f.Name)
		}
	}

	for i, row := range table.Rows {
		values := make(map[string]null.Float, len(row.Values)+len(e.formulas))
		for k, v := range row.Values {
			values[k] = v
		}
		next := contracts.Row{Date: row.Date, Values: values}

		// 수식은 정의 순서대로 계산 (앞선 파생 컬럼 참조 가능)
		for _, f := range e.formulas {
			values[f.Name] = Evaluate(f, next)
		}
		out.Rows[i] = next
	}

	return out
}

// Evaluate computes (Σ sign·input) / divisor for one row.
// Any null input gives null.
func Evaluate(f catalog.Formula, row contracts.Row) null.Float {
	if f.Divisor == 0 {
		return null.Float{}
	}
	sum := 0.0
	for _, t := range f.Terms {
		v := row.Get(t.Column)
		if !v.Valid {
			return null.Float{}
		}
		sum += float64(t.Sign) * v.Float64
	}
	return null.FloatFrom(sum / f.Divisor)
}

// Classify labels a rate spread: above threshold is stressed, otherwise normal.
// A spread equal to the threshold (within 1e-9) is normal.
func Classify(spread null.Float, threshold float64) contracts.Classification {
	if !spread.Valid {
		return contracts.ClassUnknown
	}
	if spread.Float64-threshold > thresholdEpsilon {
		return contracts.ClassStressed
	}
	return contracts.ClassNormal
}
