package campaign

import (
	"math"
	"sort"
)

// TailConfidence is the confidence level used for campaign tail-cost figures
const TailConfidence = 0.95

// TailCost describes the expensive end of a campaign's cost distribution
// ⭐ SSOT: 비용 꼬리 위험 (Historical 방식)
type TailCost struct {
	Confidence float64 `json:"confidence"`
	CostAtRisk float64 `json:"cost_at_risk"`       // confidence 백분위 총비용
	Shortfall  float64 `json:"expected_shortfall"` // CostAtRisk 이상 runs의 평균
}

// CalculateTailCost computes the historical cost-at-risk and expected shortfall.
// costs: run별 총비용 (클수록 나쁨)
func CalculateTailCost(costs []float64, confidence float64) TailCost {
	result := TailCost{Confidence: confidence}
	if len(costs) == 0 {
		return result
	}

	// 오름차순 정렬 (비싼 run이 뒤에)
	sorted := make([]float64, len(costs))
	copy(sorted, costs)
	sort.Float64s(sorted)

	idx := int(math.Ceil(confidence*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	result.CostAtRisk = sorted[idx]

	// tail 평균
	tail := sorted[idx:]
	sum := 0.0
	for _, c := range tail {
		sum += c
	}
	result.Shortfall = sum / float64(len(tail))

	return result
}
