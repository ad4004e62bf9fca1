package tradestats

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

// WeekdayLabels are the weekday chart labels, Monday first.
var WeekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// durationBounds are the inclusive upper bounds, in minutes, of the holding
// time histogram. Longer trades land in the last bucket.
var durationBounds = []int64{30, 60, 120, 240, 480, 960, 1440, 2880}

// DurationBucket is one bar of the holding time histogram.
type DurationBucket struct {
	Label        string `json:"label"`
	UpperMinutes int64  `json:"upperMinutes"`
	Count        int    `json:"count"`
}

// MaeMfePoint is one trade's maximum adverse and favorable excursion in pips.
type MaeMfePoint struct {
	Mae decimal.Decimal `json:"mae"`
	Mfe decimal.Decimal `json:"mfe"`
}

// Analytics holds the chart distributions of a trade log.
type Analytics struct {
	HourlyProfit    []decimal.Decimal `json:"hourlyProfit"`  // 24 entries, hour 0..23
	WeekdayProfit   []decimal.Decimal `json:"weekdayProfit"` // 7 entries, Monday first
	WeekdayLabels   []string          `json:"weekdayLabels"`
	DurationBuckets []DurationBucket  `json:"durationBuckets"`
	EquityPath      []decimal.Decimal `json:"equityPath"`
	DrawdownPath    []decimal.Decimal `json:"drawdownPath"` // percent, ≤ 0
	MaeMfe          []MaeMfePoint     `json:"maeMfe"`
}

// Analyze computes the profile chart data from a trade log.
func Analyze(trades []model.Trade) Analytics {
	a := Analytics{
		HourlyProfit:    zeros(24),
		WeekdayProfit:   zeros(7),
		WeekdayLabels:   WeekdayLabels,
		DurationBuckets: make([]DurationBucket, len(durationBounds)),
		EquityPath:      make([]decimal.Decimal, 0, len(trades)),
		DrawdownPath:    make([]decimal.Decimal, 0, len(trades)),
		MaeMfe:          []MaeMfePoint{},
	}
	for i, b := range durationBounds {
		a.DurationBuckets[i] = DurationBucket{Label: bucketLabel(b), UpperMinutes: b}
	}

	equity := decimal.Zero
	peak := decimal.Zero
	for _, t := range trades {
		if t.Hour != nil && *t.Hour >= 0 && *t.Hour < 24 {
			a.HourlyProfit[*t.Hour] = a.HourlyProfit[*t.Hour].Add(t.Profit)
		}
		if t.Weekday != nil && *t.Weekday >= 0 && *t.Weekday < 7 {
			// Weekday 0 is Sunday; the chart starts on Monday.
			i := (*t.Weekday + 6) % 7
			a.WeekdayProfit[i] = a.WeekdayProfit[i].Add(t.Profit)
		}

		a.DurationBuckets[durationBucket(t.Duration)].Count++

		equity = equity.Add(t.Profit)
		if equity.GreaterThan(peak) {
			peak = equity
		}
		dd := decimal.Zero
		if peak.IsPositive() {
			dd = equity.Sub(peak).Div(peak).Mul(hundred)
		}
		a.EquityPath = append(a.EquityPath, equity)
		a.DrawdownPath = append(a.DrawdownPath, dd)

		if t.MaePips != nil && t.MfePips != nil {
			a.MaeMfe = append(a.MaeMfe, MaeMfePoint{Mae: *t.MaePips, Mfe: *t.MfePips})
		}
	}
	return a
}

func bucketLabel(minutes int64) string {
	if minutes < 60 {
		return fmt.Sprintf("≤ %dm", minutes)
	}
	return fmt.Sprintf("≤ %dh", minutes/60)
}

func durationBucket(minutes decimal.Decimal) int {
	for i, b := range durationBounds {
		if minutes.LessThanOrEqual(decimal.NewFromInt(b)) {
			return i
		}
	}
	return len(durationBounds) - 1
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}
