// Package performance derives per-account equity metrics from the sparse
// monthly profit series.
//
// Every function here is pure: it reads an Account value, returns a result
// value and never fails. Missing numbers are zero, and every ratio whose
// denominator is not positive is defined as exactly 0.
package performance

import (
	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

var one = decimal.NewFromInt(1)

// Metrics is the headline summary of one account.
type Metrics struct {
	TotalDeposit    decimal.Decimal `json:"totalDeposit"`
	TotalProfit     decimal.Decimal `json:"totalProfit"`
	ProfitThisMonth decimal.Decimal `json:"profitThisMonth"`
	GrowthPct       decimal.Decimal `json:"growthPct"` // fraction, 0.12 = 12%
}

// Series holds the per-month derived curves. All slices are parallel and
// have one entry per monthly entry.
type Series struct {
	Labels      []string          `json:"labels"`
	Profit      []decimal.Decimal `json:"profit"`
	Balance     []decimal.Decimal `json:"balance"`
	Equity      []decimal.Decimal `json:"equity"`
	GrowthPct   []decimal.Decimal `json:"growthPct"`
	DrawdownPct []decimal.Decimal `json:"drawdownPct"`
}

// ComputeMetrics returns the account's deposit, cumulative profit, the most
// recent month's profit and the overall growth.
func ComputeMetrics(acc model.Account) Metrics {
	total := decimal.Zero
	for _, m := range acc.Monthly {
		total = total.Add(m.Profit)
	}

	last := decimal.Zero
	if n := len(acc.Monthly); n > 0 {
		last = acc.Monthly[n-1].Profit
	}

	growth := decimal.Zero
	if acc.TotalDeposit.IsPositive() {
		growth = total.Div(acc.TotalDeposit)
	}

	return Metrics{
		TotalDeposit:    acc.TotalDeposit,
		TotalProfit:     total,
		ProfitThisMonth: last,
		GrowthPct:       growth,
	}
}

// BuildAllSeries walks the monthly entries once, in order, accumulating
// balance and equity from the deposit and tracking the running equity peak.
//
// Equity equals balance in this model: monthly results are realized, there
// is no open-position component.
func BuildAllSeries(acc model.Account) Series {
	n := len(acc.Monthly)
	s := Series{
		Labels:      make([]string, 0, n),
		Profit:      make([]decimal.Decimal, 0, n),
		Balance:     make([]decimal.Decimal, 0, n),
		Equity:      make([]decimal.Decimal, 0, n),
		GrowthPct:   make([]decimal.Decimal, 0, n),
		DrawdownPct: make([]decimal.Decimal, 0, n),
	}

	deposit := acc.TotalDeposit
	balance := deposit
	equity := deposit
	peak := deposit

	for _, m := range acc.Monthly {
		balance = balance.Add(m.Profit)
		equity = equity.Add(m.Profit)
		if equity.GreaterThan(peak) {
			peak = equity
		}

		growth := decimal.Zero
		if deposit.IsPositive() {
			growth = balance.Div(deposit).Sub(one)
		}

		// equity <= peak, so this is negative or zero.
		dd := decimal.Zero
		if peak.IsPositive() {
			dd = equity.Sub(peak).Div(peak)
		}

		s.Labels = append(s.Labels, m.Month)
		s.Profit = append(s.Profit, m.Profit)
		s.Balance = append(s.Balance, balance)
		s.Equity = append(s.Equity, equity)
		s.GrowthPct = append(s.GrowthPct, growth)
		s.DrawdownPct = append(s.DrawdownPct, dd)
	}

	return s
}

// MaxDrawdown returns the deepest drawdown of the series as a non-positive
// fraction, or 0 for an empty series.
func MaxDrawdown(s Series) decimal.Decimal {
	worst := decimal.Zero
	for _, dd := range s.DrawdownPct {
		if dd.LessThan(worst) {
			worst = dd
		}
	}
	return worst
}
