package tradestats

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

var (
	minutesPerDay  = decimal.NewFromInt(1440)
	minutesPerHour = decimal.NewFromInt(60)
	ten            = decimal.NewFromInt(10)

	// holdingReturnFactor scales profitability into the AHPR/GHPR figures.
	holdingReturnFactor = decimal.RequireFromString("0.05")

	// zScoreProbability is the neutral probability reported with the zero Z-score.
	zScoreProbability = decimal.NewFromInt(50)
)

// SideRecord counts winning trades among the trades of one side.
type SideRecord struct {
	Won   int `json:"won"`
	Total int `json:"total"`
}

// WinPct returns the side's win percentage rounded to a whole number, or 0
// when the side has no trades.
func (r SideRecord) WinPct() decimal.Decimal {
	if r.Total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.Won)).
		Div(decimal.NewFromInt(int64(r.Total))).
		Mul(hundred).
		Round(0)
}

// Extreme is the best or worst trade by some measure.
type Extreme struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// ZScore is reported as a fixed neutral value.
type ZScore struct {
	Value       decimal.Decimal `json:"value"`
	Probability decimal.Decimal `json:"probability"`
}

// Expectancy is the per-trade expectancy in pips and in currency.
type Expectancy struct {
	Pips     decimal.Decimal `json:"pips"`
	Currency decimal.Decimal `json:"currency"`
}

// AdvancedStats is the extended report of an account's trade log.
//
// StdDev, Sharpe, ZScore, Expectancy.Pips, AHPR and GHPR are display
// stand-ins with fixed formulas, not statistical estimates.
type AdvancedStats struct {
	Trades             int             `json:"trades"`
	Pips               decimal.Decimal `json:"pips"`
	AvgWinPips         decimal.Decimal `json:"avgWinPips"`
	AvgWinCurrency     decimal.Decimal `json:"avgWinCurrency"`
	AvgLossPips        decimal.Decimal `json:"avgLossPips"`
	AvgLossCurrency    decimal.Decimal `json:"avgLossCurrency"`
	Lots               decimal.Decimal `json:"lots"`
	Commissions        decimal.Decimal `json:"commissions"`
	LongsWon           SideRecord      `json:"longsWon"`
	ShortsWon          SideRecord      `json:"shortsWon"`
	BestTradeCurrency  Extreme         `json:"bestTradeCurrency"`
	WorstTradeCurrency Extreme         `json:"worstTradeCurrency"`
	BestTradePips      Extreme         `json:"bestTradePips"`
	WorstTradePips     Extreme         `json:"worstTradePips"`
	AvgTradeLength     string          `json:"avgTradeLength"`
	ProfitFactor       decimal.Decimal `json:"profitFactor"`
	StdDev             decimal.Decimal `json:"stdDev"`
	Sharpe             decimal.Decimal `json:"sharpe"`
	ZScore             ZScore          `json:"zScore"`
	Expectancy         Expectancy      `json:"expectancy"`
	AHPR               decimal.Decimal `json:"ahpr"`
	GHPR               decimal.Decimal `json:"ghpr"`
}

// DeriveAdvanced builds the extended report from a trade log. An empty log
// yields zeros, empty extremes and "0h".
func DeriveAdvanced(trades []model.Trade) AdvancedStats {
	stats := ComputeTradeStats(trades)
	wins, losses := partition(trades)

	pips := decimal.Zero
	lots := decimal.Zero
	var longs, shorts SideRecord
	for _, t := range trades {
		pips = pips.Add(t.Pips)
		lots = lots.Add(t.Lots)
		switch t.Side {
		case model.SideBuy:
			longs.Total++
			if t.Profit.IsPositive() {
				longs.Won++
			}
		case model.SideSell:
			shorts.Total++
			if t.Profit.IsPositive() {
				shorts.Won++
			}
		}
	}

	holding := stats.ProfitabilityPct.Div(hundred).Mul(holdingReturnFactor).Round(2)

	return AdvancedStats{
		Trades:             len(trades),
		Pips:               pips.Round(1),
		AvgWinPips:         meanPips(wins).Round(2),
		AvgWinCurrency:     stats.AvgWin,
		AvgLossPips:        meanPips(losses).Round(2),
		AvgLossCurrency:    stats.AvgLoss,
		Lots:               lots.Round(2),
		Commissions:        decimal.Zero,
		LongsWon:           longs,
		ShortsWon:          shorts,
		BestTradeCurrency:  extreme(trades, profitOf, decimal.Decimal.GreaterThan),
		WorstTradeCurrency: extreme(trades, profitOf, decimal.Decimal.LessThan),
		BestTradePips:      extreme(trades, pipsOf, decimal.Decimal.GreaterThan),
		WorstTradePips:     extreme(trades, pipsOf, decimal.Decimal.LessThan),
		AvgTradeLength:     avgTradeLength(trades),
		ProfitFactor:       stats.ProfitFactor.Round(2),
		StdDev:             stats.Expectancy.Abs().Mul(ten),
		Sharpe:             decimal.Zero,
		ZScore:             ZScore{Value: decimal.Zero, Probability: zScoreProbability},
		Expectancy: Expectancy{
			Pips:     stats.Expectancy.Div(ten).Round(1),
			Currency: stats.Expectancy,
		},
		AHPR: holding,
		GHPR: holding,
	}
}

func profitOf(t model.Trade) decimal.Decimal { return t.Profit }
func pipsOf(t model.Trade) decimal.Decimal   { return t.Pips }

// extreme folds the trades in order, replacing the current pick only on a
// strict improvement, so ties keep the first trade encountered.
func extreme(trades []model.Trade, key func(model.Trade) decimal.Decimal, better func(decimal.Decimal, decimal.Decimal) bool) Extreme {
	if len(trades) == 0 {
		return Extreme{Value: decimal.Zero}
	}
	best := Extreme{Date: trades[0].Date, Value: key(trades[0])}
	for _, t := range trades[1:] {
		if v := key(t); better(v, best.Value) {
			best = Extreme{Date: t.Date, Value: v}
		}
	}
	return best
}

func meanPips(trades []model.Trade) decimal.Decimal {
	if len(trades) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.Pips)
	}
	return total.Div(decimal.NewFromInt(int64(len(trades))))
}

// avgTradeLength formats the mean holding time: whole days from one day
// upwards, whole hours below that.
func avgTradeLength(trades []model.Trade) string {
	if len(trades) == 0 {
		return "0h"
	}
	total := decimal.Zero
	for _, t := range trades {
		total = total.Add(t.Duration)
	}
	mean := total.Div(decimal.NewFromInt(int64(len(trades))))
	if mean.GreaterThanOrEqual(minutesPerDay) {
		return fmt.Sprintf("%sd", mean.Div(minutesPerDay).Round(0).String())
	}
	return fmt.Sprintf("%sh", mean.Div(minutesPerHour).Round(0).String())
}
