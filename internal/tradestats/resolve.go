package tradestats

import (
	"github.com/fxdash/dashboard/internal/model"
)

// Resolve returns the advanced report for an account: derived from trades,
// then every field the admin entered in stats.advanced replaces the derived
// value. Fields the admin left empty keep their derived value.
//
// All read paths use Resolve so the profile view and the admin table agree.
func Resolve(acc model.Account, trades []model.Trade) AdvancedStats {
	adv := DeriveAdvanced(trades)
	o := acc.Advanced()
	if o == nil {
		return adv
	}

	if o.Trades != nil {
		adv.Trades = int(o.Trades.IntPart())
	}
	if o.Pips != nil {
		adv.Pips = *o.Pips
	}
	if o.ProfitFactor != nil {
		adv.ProfitFactor = *o.ProfitFactor
		if adv.ProfitFactor.GreaterThan(ProfitFactorCap) {
			adv.ProfitFactor = ProfitFactorCap
		}
	}
	if o.Lots != nil {
		adv.Lots = *o.Lots
	}
	if o.Commissions != nil {
		adv.Commissions = *o.Commissions
	}
	if o.AvgWinCurrency != nil {
		adv.AvgWinCurrency = *o.AvgWinCurrency
	}
	if o.AvgLossCurrency != nil {
		adv.AvgLossCurrency = *o.AvgLossCurrency
	}
	if o.Expectancy != nil {
		if o.Expectancy.Pips != nil {
			adv.Expectancy.Pips = *o.Expectancy.Pips
		}
		if o.Expectancy.Currency != nil {
			adv.Expectancy.Currency = *o.Expectancy.Currency
		}
	}
	if o.AHPR != nil {
		adv.AHPR = *o.AHPR
	}
	if o.GHPR != nil {
		adv.GHPR = *o.GHPR
	}
	return adv
}
