package model

import "github.com/shopspring/decimal"

// Clone returns a deep copy of the dataset. Readers compute on clones so a
// concurrent admin command can never change a snapshot mid-computation.
func (ds *Dataset) Clone() *Dataset {
	if ds == nil {
		return &Dataset{Accounts: []Account{}}
	}
	out := &Dataset{Accounts: make([]Account, len(ds.Accounts))}
	for i := range ds.Accounts {
		out.Accounts[i] = ds.Accounts[i].Clone()
	}
	return out
}

// Clone returns a deep copy of the account. The copy's monthly list is
// never nil so it encodes as [].
func (a Account) Clone() Account {
	c := a
	c.Monthly = append([]MonthEntry{}, a.Monthly...)
	if a.Trades != nil {
		c.Trades = make([]Trade, len(a.Trades))
		for i, t := range a.Trades {
			c.Trades[i] = t.Clone()
		}
	}
	if a.Stats != nil {
		s := AccountStats{}
		if a.Stats.Advanced != nil {
			adv := a.Stats.Advanced.Clone()
			s.Advanced = &adv
		}
		c.Stats = &s
	}
	return c
}

// Clone returns a deep copy of the trade.
func (t Trade) Clone() Trade {
	c := t
	c.MaePips = cloneDec(t.MaePips)
	c.MfePips = cloneDec(t.MfePips)
	c.Hour = cloneInt(t.Hour)
	c.Weekday = cloneInt(t.Weekday)
	return c
}

// Clone returns a deep copy of the override block.
func (o AdvancedOverride) Clone() AdvancedOverride {
	c := AdvancedOverride{
		Trades:          cloneDec(o.Trades),
		Pips:            cloneDec(o.Pips),
		ProfitFactor:    cloneDec(o.ProfitFactor),
		Lots:            cloneDec(o.Lots),
		Commissions:     cloneDec(o.Commissions),
		AvgWinCurrency:  cloneDec(o.AvgWinCurrency),
		AvgLossCurrency: cloneDec(o.AvgLossCurrency),
		AHPR:            cloneDec(o.AHPR),
		GHPR:            cloneDec(o.GHPR),
	}
	if o.Expectancy != nil {
		c.Expectancy = &ExpectancyOverride{
			Pips:     cloneDec(o.Expectancy.Pips),
			Currency: cloneDec(o.Expectancy.Currency),
		}
	}
	return c
}

func cloneDec(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
