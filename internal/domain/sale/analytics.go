package sale

import (
	"context"
	"time"
)

// PeriodSummary aggregates completed sales inside a window.
type PeriodSummary struct {
	Total   float64 `json:"total"`
	Profit  float64 `json:"profit"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// PeriodComparison holds absolute and percentage deltas between two
// windows of completed sales.
type PeriodComparison struct {
	Baseline             PeriodSummary `json:"baseline"`
	Current              PeriodSummary `json:"current"`
	RevenueChange        float64       `json:"revenue_change"`
	RevenueChangePercent float64       `json:"revenue_change_percent"`
	CountChange          int           `json:"count_change"`
	CountChangePercent   float64       `json:"count_change_percent"`
}

// Summarize aggregates completed sales with CreatedAt in [from, to).
// Pending and cancelled sales never contribute.
func Summarize(sales []Sale, from, to time.Time) PeriodSummary {
	var sum PeriodSummary
	for _, s := range sales {
		if s.Status != StatusCompleted {
			continue
		}
		if s.CreatedAt.Before(from) || !s.CreatedAt.Before(to) {
			continue
		}
		sum.Total += s.Total
		sum.Profit += s.Profit
		sum.Count++
	}
	if sum.Count > 0 {
		sum.Average = sum.Total / float64(sum.Count)
	}
	return sum
}

// GrowthPercentage reports current against baseline. A zero baseline with
// positive current is reported as exactly 100, not infinity; two zeros are
// 0.
func GrowthPercentage(baseline, current float64) float64 {
	if baseline == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - baseline) / baseline * 100
}

// Compare builds the delta between a baseline and a current window over
// the given sales.
func Compare(sales []Sale, baseFrom, baseTo, curFrom, curTo time.Time) PeriodComparison {
	baseline := Summarize(sales, baseFrom, baseTo)
	current := Summarize(sales, curFrom, curTo)

	return PeriodComparison{
		Baseline:             baseline,
		Current:              current,
		RevenueChange:        current.Total - baseline.Total,
		RevenueChangePercent: GrowthPercentage(baseline.Total, current.Total),
		CountChange:          current.Count - baseline.Count,
		CountChangePercent:   GrowthPercentage(float64(baseline.Count), float64(current.Count)),
	}
}

// RevenueForPeriod fetches completed sales and aggregates the window.
func (s *Service) RevenueForPeriod(ctx context.Context, from, to time.Time) (PeriodSummary, error) {
	sales, err := s.Completed(ctx)
	if err != nil {
		return PeriodSummary{}, err
	}
	return Summarize(sales, from, to), nil
}

// ComparePeriods fetches completed sales and compares two windows.
func (s *Service) ComparePeriods(ctx context.Context, baseFrom, baseTo, curFrom, curTo time.Time) (PeriodComparison, error) {
	sales, err := s.Completed(ctx)
	if err != nil {
		return PeriodComparison{}, err
	}
	return Compare(sales, baseFrom, baseTo, curFrom, curTo), nil
}
