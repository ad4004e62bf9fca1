// Package model defines the account dataset shared across the dashboard.
// All monetary and pip values use shopspring/decimal, never float64.
package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The dataset file is consumed by a browser dashboard that expects plain
	// JSON numbers, not quoted decimals.
	decimal.MarshalJSONWithoutQuotes = true
}

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Dataset is the whole persisted document: {"accounts": [...]}.
type Dataset struct {
	Accounts []Account `json:"accounts"`
}

// Account is one trading account with its deposit, monthly results and an
// optional raw trade log.
type Account struct {
	ID           string          `json:"id,omitempty"`
	PersonName   string          `json:"personName,omitempty"`
	Name         string          `json:"name,omitempty"`
	Avatar       string          `json:"avatar,omitempty"`
	TotalDeposit decimal.Decimal `json:"totalDeposit"`
	Monthly      []MonthEntry    `json:"monthly"`
	Trades       []Trade         `json:"trades,omitempty"`
	Stats        *AccountStats   `json:"stats,omitempty"`
}

// MonthEntry is the net P&L realized in one period. Insertion order is
// chronological order.
type MonthEntry struct {
	Month  string          `json:"month"`
	Profit decimal.Decimal `json:"profit"`
}

// Trade is a single closed trade. Profit is realized currency P&L; Pips is
// tracked independently and may disagree in sign.
type Trade struct {
	ID       string           `json:"id,omitempty"`
	Date     string           `json:"date"`
	Symbol   string           `json:"symbol"`
	Side     string           `json:"side"` // "buy" or "sell"
	Lots     decimal.Decimal  `json:"lots"`
	Pips     decimal.Decimal  `json:"pips"`
	Profit   decimal.Decimal  `json:"profit"`
	Duration decimal.Decimal  `json:"duration"` // minutes
	MaePips  *decimal.Decimal `json:"maePips,omitempty"`
	MfePips  *decimal.Decimal `json:"mfePips,omitempty"`
	Hour     *int             `json:"hour,omitempty"`    // 0-23
	Weekday  *int             `json:"weekday,omitempty"` // 0-6, 0 = Sunday
}

// UnmarshalJSON decodes a trade permissively: hour and weekday accept any
// JSON number (or numeric string), truncated toward zero. Values that are
// not numbers or fall outside 0-23 / 0-6 decode as absent instead of
// failing the whole document.
func (t *Trade) UnmarshalJSON(data []byte) error {
	type plain Trade
	aux := struct {
		*plain
		Hour    json.RawMessage `json:"hour"`
		Weekday json.RawMessage `json:"weekday"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Hour = lenientIndex(aux.Hour, 24)
	t.Weekday = lenientIndex(aux.Weekday, 7)
	return nil
}

// lenientIndex parses raw as a number in [0, n) or returns nil.
func lenientIndex(raw json.RawMessage, n int) *int {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	f = math.Trunc(f)
	if f < 0 || f >= float64(n) {
		return nil
	}
	v := int(f)
	return &v
}

// AccountStats holds admin-maintained statistics attached to an account.
type AccountStats struct {
	Advanced *AdvancedOverride `json:"advanced,omitempty"`
}

// AdvancedOverride carries admin-entered values that take precedence over
// the statistics derived from the trade log. Nil fields are not overridden.
type AdvancedOverride struct {
	Trades          *decimal.Decimal    `json:"trades,omitempty"`
	Pips            *decimal.Decimal    `json:"pips,omitempty"`
	ProfitFactor    *decimal.Decimal    `json:"profitFactor,omitempty"`
	Lots            *decimal.Decimal    `json:"lots,omitempty"`
	Commissions     *decimal.Decimal    `json:"commissions,omitempty"`
	AvgWinCurrency  *decimal.Decimal    `json:"avgWinCurrency,omitempty"`
	AvgLossCurrency *decimal.Decimal    `json:"avgLossCurrency,omitempty"`
	Expectancy      *ExpectancyOverride `json:"expectancy,omitempty"`
	AHPR            *decimal.Decimal    `json:"ahpr,omitempty"`
	GHPR            *decimal.Decimal    `json:"ghpr,omitempty"`
}

// ExpectancyOverride overrides one or both expectancy figures.
type ExpectancyOverride struct {
	Pips     *decimal.Decimal `json:"pips,omitempty"`
	Currency *decimal.Decimal `json:"currency,omitempty"`
}

// Advanced returns the account's override block, or nil.
func (a *Account) Advanced() *AdvancedOverride {
	if a.Stats == nil {
		return nil
	}
	return a.Stats.Advanced
}
