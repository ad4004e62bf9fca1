// Package tradestats computes aggregate statistics from a raw trade log:
// win/loss partitions, profit factor, expectancy, extremes and the extended
// "advanced" report shown on an account profile.
//
// The functions are pure and never panic. Empty inputs and empty partitions
// produce zeros; the only unbounded quantity (profit factor with no losing
// trades) is reported through a flag and clamped to ProfitFactorCap.
package tradestats

import (
	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

var (
	// ProfitFactorCap stands in for an infinite profit factor (winning
	// trades and no losing trades) wherever the value is stored or shown.
	ProfitFactorCap = decimal.NewFromInt(999)

	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// TradeStats is the headline trade summary.
type TradeStats struct {
	Total            int             `json:"total"`
	ProfitabilityPct decimal.Decimal `json:"profitabilityPct"` // win rate × 100
	AvgWin           decimal.Decimal `json:"avgWin"`
	AvgLoss          decimal.Decimal `json:"avgLoss"` // ≤ 0
	ProfitFactor     decimal.Decimal `json:"profitFactor"`
	// ProfitFactorUnbounded is set when there are winning trades and no
	// losing trades; ProfitFactor then holds ProfitFactorCap.
	ProfitFactorUnbounded bool            `json:"profitFactorUnbounded"`
	Expectancy            decimal.Decimal `json:"expectancy"`
}

// WinRate returns the fraction of winning trades.
func (s TradeStats) WinRate() decimal.Decimal {
	return s.ProfitabilityPct.Div(hundred)
}

// partition splits trades into winners (profit > 0) and losers (profit < 0).
// Break-even trades belong to neither.
func partition(trades []model.Trade) (wins, losses []model.Trade) {
	for _, t := range trades {
		switch {
		case t.Profit.IsPositive():
			wins = append(wins, t)
		case t.Profit.IsNegative():
			losses = append(losses, t)
		}
	}
	return wins, losses
}

func sumProfit(trades []model.Trade) decimal.Decimal {
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.Profit)
	}
	return total
}

// ComputeTradeStats summarizes a trade log. An empty log yields the all-zero
// TradeStats.
func ComputeTradeStats(trades []model.Trade) TradeStats {
	total := len(trades)
	if total == 0 {
		return TradeStats{}
	}

	wins, losses := partition(trades)
	grossWin := sumProfit(wins)
	grossLoss := sumProfit(losses).Abs()

	avgWin := decimal.Zero
	if len(wins) > 0 {
		avgWin = grossWin.Div(decimal.NewFromInt(int64(len(wins))))
	}
	avgLoss := decimal.Zero
	if len(losses) > 0 {
		avgLoss = grossLoss.Div(decimal.NewFromInt(int64(len(losses)))).Neg()
	}

	profitFactor := decimal.Zero
	unbounded := false
	switch {
	case grossLoss.IsPositive():
		profitFactor = grossWin.Div(grossLoss)
	case grossWin.IsPositive():
		profitFactor = ProfitFactorCap
		unbounded = true
	}

	winRate := decimal.NewFromInt(int64(len(wins))).Div(decimal.NewFromInt(int64(total)))
	expectancy := winRate.Mul(avgWin).Add(one.Sub(winRate).Mul(avgLoss))

	return TradeStats{
		Total:                 total,
		ProfitabilityPct:      winRate.Mul(hundred),
		AvgWin:                avgWin,
		AvgLoss:               avgLoss,
		ProfitFactor:          profitFactor,
		ProfitFactorUnbounded: unbounded,
		Expectancy:            expectancy,
	}
}
