package service

import (
	"github.com/shopspring/decimal"

	"github.com/rvanowen/portfolio-valuation-backend/internal/model"
)

// ComputePerformance derives return statistics from an ordered valuation
// series. With fewer than two points there is nothing to compare, and every
// field is zero.
//
// DailyReturns holds day-over-day percent changes, one per consecutive pair
// of points. TotalReturnPercent and any daily return whose base value is
// zero come out as zero; a return relative to nothing is undefined and zero
// is the least surprising answer.
func ComputePerformance(points []model.ValuationPoint) model.PerformanceSummary {
	summary := model.PerformanceSummary{
		DailyReturns: []decimal.Decimal{},
	}

	if len(points) < 2 {
		return summary
	}

	hundred := decimal.NewFromInt(100)
	first := points[0].Value
	last := points[len(points)-1].Value

	summary.TotalReturn = last.Sub(first)
	if !first.IsZero() {
		summary.TotalReturnPercent = summary.TotalReturn.Div(first).Mul(hundred)
	}

	summary.MinValue = points[0].Value
	summary.MaxValue = points[0].Value
	for _, p := range points[1:] {
		if p.Value.LessThan(summary.MinValue) {
			summary.MinValue = p.Value
		}
		if p.Value.GreaterThan(summary.MaxValue) {
			summary.MaxValue = p.Value
		}
	}

	summary.DailyReturns = make([]decimal.Decimal, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Value
		if prev.IsZero() {
			summary.DailyReturns = append(summary.DailyReturns, decimal.Zero)
			continue
		}
		change := points[i].Value.Sub(prev).Div(prev).Mul(hundred)
		summary.DailyReturns = append(summary.DailyReturns, change)
	}

	return summary
}
