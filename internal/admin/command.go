// Package admin applies typed edit commands to the accounts dataset.
package admin

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

// Command operations.
const (
	OpAddAccount    = "add_account"
	OpUpdateAccount = "update_account"
	OpDeleteAccount = "delete_account"
	OpAddMonth      = "add_month"
	OpUpdateMonth   = "update_month"
	OpDeleteMonth   = "delete_month"
	OpAddTrade      = "add_trade"
	OpUpdateTrade   = "update_trade"
	OpDeleteTrade   = "delete_trade"
	OpSetAdvanced   = "set_advanced"
	OpClearAdvanced = "clear_advanced"
)

// Defaults for a freshly added account.
const (
	DefaultPersonName  = "Nuevo trader"
	DefaultAccountName = "Nueva cuenta"
)

// DefaultDeposit is the starting deposit of a freshly added account.
var DefaultDeposit = decimal.NewFromInt(10000)

var (
	ErrUnknownOp       = errors.New("unknown command")
	ErrAccountNotFound = errors.New("account not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidSide     = errors.New("side must be buy or sell")
	ErrNegativeDeposit = errors.New("total deposit cannot be negative")
)

// Command is one edit to the dataset. Account addresses the account by
// position; Index addresses a month or trade within it. Payload fields left
// nil are not touched.
type Command struct {
	Op      string `json:"op"`
	Account int    `json:"account"`
	Index   int    `json:"index"`

	PersonName   *string          `json:"personName,omitempty"`
	Name         *string          `json:"name,omitempty"`
	Avatar       *string          `json:"avatar,omitempty"`
	TotalDeposit *decimal.Decimal `json:"totalDeposit,omitempty"`

	Month  *string          `json:"month,omitempty"`
	Profit *decimal.Decimal `json:"profit,omitempty"`

	Trade    *TradePatch             `json:"trade,omitempty"`
	Advanced *model.AdvancedOverride `json:"advanced,omitempty"`
}

// TradePatch carries the trade fields a command sets.
type TradePatch struct {
	ID       *string          `json:"id,omitempty"`
	Date     *string          `json:"date,omitempty"`
	Symbol   *string          `json:"symbol,omitempty"`
	Side     *string          `json:"side,omitempty"`
	Lots     *decimal.Decimal `json:"lots,omitempty"`
	Pips     *decimal.Decimal `json:"pips,omitempty"`
	Profit   *decimal.Decimal `json:"profit,omitempty"`
	Duration *decimal.Decimal `json:"duration,omitempty"`
	MaePips  *decimal.Decimal `json:"maePips,omitempty"`
	MfePips  *decimal.Decimal `json:"mfePips,omitempty"`
	Hour     *int             `json:"hour,omitempty"`
	Weekday  *int             `json:"weekday,omitempty"`
}

// Change describes an applied command.
type Change struct {
	Op      string `json:"op"`
	Account int    `json:"account"`
	Summary string `json:"summary"`
}

// Apply executes cmd against ds. now stamps defaults such as the month of a
// new monthly entry. On error ds is left unchanged.
func Apply(ds *model.Dataset, cmd Command, now time.Time) (Change, error) {
	change := Change{Op: cmd.Op, Account: cmd.Account}

	if cmd.Op == OpAddAccount {
		acc := model.Account{
			ID:           uuid.NewString(),
			PersonName:   DefaultPersonName,
			Name:         DefaultAccountName,
			TotalDeposit: DefaultDeposit,
			Monthly:      []model.MonthEntry{},
		}
		if err := patchAccount(&acc, cmd); err != nil {
			return change, err
		}
		ds.Accounts = append(ds.Accounts, acc)
		change.Account = len(ds.Accounts) - 1
		change.Summary = fmt.Sprintf("account %d added (%s)", change.Account, acc.ID)
		return change, nil
	}

	if cmd.Account < 0 || cmd.Account >= len(ds.Accounts) {
		return change, fmt.Errorf("%w: %d", ErrAccountNotFound, cmd.Account)
	}

	if cmd.Op == OpDeleteAccount {
		ds.Accounts = slices.Delete(ds.Accounts, cmd.Account, cmd.Account+1)
		change.Summary = fmt.Sprintf("account %d deleted", cmd.Account)
		return change, nil
	}

	// Edit a copy and commit it only on success.
	acc := ds.Accounts[cmd.Account].Clone()
	summary, err := applyToAccount(&acc, cmd, now)
	if err != nil {
		return change, err
	}
	ds.Accounts[cmd.Account] = acc
	change.Summary = fmt.Sprintf("account %d: %s", cmd.Account, summary)
	return change, nil
}

func applyToAccount(acc *model.Account, cmd Command, now time.Time) (string, error) {
	switch cmd.Op {
	case OpUpdateAccount:
		if err := patchAccount(acc, cmd); err != nil {
			return "", err
		}
		return "details updated", nil

	case OpAddMonth:
		entry := model.MonthEntry{Month: model.MonthLabel(now), Profit: decimal.Zero}
		if err := patchMonth(&entry, cmd); err != nil {
			return "", err
		}
		acc.Monthly = append(acc.Monthly, entry)
		return fmt.Sprintf("month %s added", entry.Month), nil

	case OpUpdateMonth:
		if err := checkIndex(cmd.Index, len(acc.Monthly)); err != nil {
			return "", err
		}
		if err := patchMonth(&acc.Monthly[cmd.Index], cmd); err != nil {
			return "", err
		}
		return fmt.Sprintf("month %d updated", cmd.Index), nil

	case OpDeleteMonth:
		if err := checkIndex(cmd.Index, len(acc.Monthly)); err != nil {
			return "", err
		}
		acc.Monthly = slices.Delete(acc.Monthly, cmd.Index, cmd.Index+1)
		return fmt.Sprintf("month %d deleted", cmd.Index), nil

	case OpAddTrade:
		t := model.Trade{Side: model.SideBuy}
		if err := patchTrade(&t, cmd.Trade); err != nil {
			return "", err
		}
		if t.ID == "" {
			t.ID = fmt.Sprintf("E%03d", len(acc.Trades)+1)
		}
		acc.Trades = append(acc.Trades, t)
		return fmt.Sprintf("trade %s added", t.ID), nil

	case OpUpdateTrade:
		if err := checkIndex(cmd.Index, len(acc.Trades)); err != nil {
			return "", err
		}
		t := &acc.Trades[cmd.Index]
		if err := patchTrade(t, cmd.Trade); err != nil {
			return "", err
		}
		if t.ID == "" {
			t.ID = fmt.Sprintf("E%03d", cmd.Index+1)
		}
		return fmt.Sprintf("trade %d updated", cmd.Index), nil

	case OpDeleteTrade:
		if err := checkIndex(cmd.Index, len(acc.Trades)); err != nil {
			return "", err
		}
		acc.Trades = slices.Delete(acc.Trades, cmd.Index, cmd.Index+1)
		return fmt.Sprintf("trade %d deleted", cmd.Index), nil

	case OpSetAdvanced:
		if acc.Stats == nil {
			acc.Stats = &model.AccountStats{}
		}
		if acc.Stats.Advanced == nil {
			acc.Stats.Advanced = &model.AdvancedOverride{}
		}
		if cmd.Advanced != nil {
			mergeAdvanced(acc.Stats.Advanced, cmd.Advanced.Clone())
		}
		return "advanced statistics set", nil

	case OpClearAdvanced:
		if acc.Stats != nil {
			acc.Stats.Advanced = nil
		}
		return "advanced statistics cleared", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, cmd.Op)
}

func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, n)
	}
	return nil
}

func patchAccount(acc *model.Account, cmd Command) error {
	if cmd.TotalDeposit != nil && cmd.TotalDeposit.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeDeposit, cmd.TotalDeposit)
	}
	if cmd.PersonName != nil {
		acc.PersonName = *cmd.PersonName
	}
	if cmd.Name != nil {
		acc.Name = *cmd.Name
	}
	if cmd.Avatar != nil {
		acc.Avatar = *cmd.Avatar
	}
	if cmd.TotalDeposit != nil {
		acc.TotalDeposit = *cmd.TotalDeposit
	}
	return nil
}

func patchMonth(m *model.MonthEntry, cmd Command) error {
	if cmd.Month != nil {
		if _, err := model.ParseMonth(*cmd.Month); err != nil {
			return err
		}
		m.Month = *cmd.Month
	}
	if cmd.Profit != nil {
		m.Profit = *cmd.Profit
	}
	return nil
}

func patchTrade(t *model.Trade, p *TradePatch) error {
	if p == nil {
		return nil
	}
	if p.Side != nil && *p.Side != model.SideBuy && *p.Side != model.SideSell {
		return fmt.Errorf("%w: %q", ErrInvalidSide, *p.Side)
	}
	setString(&t.ID, p.ID)
	setString(&t.Date, p.Date)
	setString(&t.Symbol, p.Symbol)
	setString(&t.Side, p.Side)
	setDecimal(&t.Lots, p.Lots)
	setDecimal(&t.Pips, p.Pips)
	setDecimal(&t.Profit, p.Profit)
	setDecimal(&t.Duration, p.Duration)
	if p.MaePips != nil {
		v := *p.MaePips
		t.MaePips = &v
	}
	if p.MfePips != nil {
		v := *p.MfePips
		t.MfePips = &v
	}
	if p.Hour != nil {
		v := *p.Hour
		t.Hour = &v
	}
	if p.Weekday != nil {
		v := *p.Weekday
		t.Weekday = &v
	}
	return nil
}

func mergeAdvanced(dst *model.AdvancedOverride, src model.AdvancedOverride) {
	mergeDecimal(&dst.Trades, src.Trades)
	mergeDecimal(&dst.Pips, src.Pips)
	mergeDecimal(&dst.ProfitFactor, src.ProfitFactor)
	mergeDecimal(&dst.Lots, src.Lots)
	mergeDecimal(&dst.Commissions, src.Commissions)
	mergeDecimal(&dst.AvgWinCurrency, src.AvgWinCurrency)
	mergeDecimal(&dst.AvgLossCurrency, src.AvgLossCurrency)
	mergeDecimal(&dst.AHPR, src.AHPR)
	mergeDecimal(&dst.GHPR, src.GHPR)
	if src.Expectancy != nil {
		if dst.Expectancy == nil {
			dst.Expectancy = &model.ExpectancyOverride{}
		}
		mergeDecimal(&dst.Expectancy.Pips, src.Expectancy.Pips)
		mergeDecimal(&dst.Expectancy.Currency, src.Expectancy.Currency)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func mergeDecimal(dst **decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = v
	}
}
