package admin

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

var now = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func ptr[T any](v T) *T { return &v }

func dataset() *model.Dataset {
	return &model.Dataset{Accounts: []model.Account{{
		ID:           "a1",
		PersonName:   "Ana",
		Name:         "Main",
		TotalDeposit: d(1000),
		Monthly: []model.MonthEntry{
			{Month: "2025-01", Profit: d(100)},
			{Month: "2025-02", Profit: d(-30)},
		},
		Trades: []model.Trade{
			{ID: "T1", Date: "2025-01-05", Side: model.SideBuy, Profit: d(40)},
		},
	}}}
}

func TestApply_AddAccountDefaults(t *testing.T) {
	ds := dataset()
	ch, err := Apply(ds, Command{Op: OpAddAccount}, now)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if ch.Account != 1 || len(ds.Accounts) != 2 {
		t.Fatalf("expected new account at index 1, got %d (len %d)", ch.Account, len(ds.Accounts))
	}
	acc := ds.Accounts[1]
	if acc.PersonName != DefaultPersonName || acc.Name != DefaultAccountName {
		t.Errorf("unexpected names %q / %q", acc.PersonName, acc.Name)
	}
	if !acc.TotalDeposit.Equal(d(10000)) {
		t.Errorf("expected default deposit 10000, got %s", acc.TotalDeposit)
	}
	if acc.Monthly == nil || len(acc.Monthly) != 0 {
		t.Errorf("expected empty monthly, got %v", acc.Monthly)
	}
	if _, err := uuid.Parse(acc.ID); err != nil {
		t.Errorf("expected uuid id, got %q", acc.ID)
	}
}

func TestApply_UpdateAccount(t *testing.T) {
	ds := dataset()
	_, err := Apply(ds, Command{Op: OpUpdateAccount, Account: 0, Name: ptr("Renamed"), TotalDeposit: ptr(d(2500))}, now)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	acc := ds.Accounts[0]
	if acc.Name != "Renamed" || acc.PersonName != "Ana" || !acc.TotalDeposit.Equal(d(2500)) {
		t.Errorf("unexpected account %+v", acc)
	}
}

func TestApply_DeleteAccount(t *testing.T) {
	ds := dataset()
	if _, err := Apply(ds, Command{Op: OpDeleteAccount, Account: 0}, now); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(ds.Accounts) != 0 {
		t.Errorf("expected no accounts, got %d", len(ds.Accounts))
	}
}

func TestApply_AddMonthDefaults(t *testing.T) {
	ds := dataset()
	if _, err := Apply(ds, Command{Op: OpAddMonth}, now); err != nil {
		t.Fatalf("apply: %v", err)
	}
	last := ds.Accounts[0].Monthly[2]
	if last.Month != "2025-03" || !last.Profit.IsZero() {
		t.Errorf("expected {2025-03 0}, got %+v", last)
	}
}

func TestApply_UpdateAndDeleteMonth(t *testing.T) {
	ds := dataset()
	if _, err := Apply(ds, Command{Op: OpUpdateMonth, Index: 1, Profit: ptr(d(75.5))}, now); err != nil {
		t.Fatalf("update: %v", err)
	}
	if m := ds.Accounts[0].Monthly[1]; m.Month != "2025-02" || !m.Profit.Equal(d(75.5)) {
		t.Errorf("unexpected month %+v", m)
	}
	if _, err := Apply(ds, Command{Op: OpDeleteMonth, Index: 0}, now); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(ds.Accounts[0].Monthly) != 1 || ds.Accounts[0].Monthly[0].Month != "2025-02" {
		t.Errorf("unexpected monthly %+v", ds.Accounts[0].Monthly)
	}
}

func TestApply_Trades(t *testing.T) {
	ds := dataset()

	if _, err := Apply(ds, Command{Op: OpAddTrade, Trade: &TradePatch{Symbol: ptr("XAUUSD"), Profit: ptr(d(-12))}}, now); err != nil {
		t.Fatalf("add: %v", err)
	}
	added := ds.Accounts[0].Trades[1]
	if added.ID != "E002" || added.Side != model.SideBuy || added.Symbol != "XAUUSD" {
		t.Errorf("unexpected trade %+v", added)
	}

	if _, err := Apply(ds, Command{Op: OpUpdateTrade, Index: 1, Trade: &TradePatch{Side: ptr(model.SideSell), Hour: ptr(15)}}, now); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated := ds.Accounts[0].Trades[1]
	if updated.Side != model.SideSell || updated.Hour == nil || *updated.Hour != 15 || !updated.Profit.Equal(d(-12)) {
		t.Errorf("unexpected trade %+v", updated)
	}

	if _, err := Apply(ds, Command{Op: OpDeleteTrade, Index: 0}, now); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(ds.Accounts[0].Trades) != 1 || ds.Accounts[0].Trades[0].ID != "E002" {
		t.Errorf("unexpected trades %+v", ds.Accounts[0].Trades)
	}
}

func TestApply_SetAndClearAdvanced(t *testing.T) {
	ds := dataset()

	if _, err := Apply(ds, Command{Op: OpSetAdvanced, Advanced: &model.AdvancedOverride{ProfitFactor: ptr(d(1.8))}}, now); err != nil {
		t.Fatalf("set: %v", err)
	}
	cur := d(12)
	if _, err := Apply(ds, Command{Op: OpSetAdvanced, Advanced: &model.AdvancedOverride{
		Expectancy: &model.ExpectancyOverride{Currency: &cur},
	}}, now); err != nil {
		t.Fatalf("merge: %v", err)
	}

	adv := ds.Accounts[0].Advanced()
	if adv == nil || adv.ProfitFactor == nil || !adv.ProfitFactor.Equal(d(1.8)) {
		t.Fatalf("expected profit factor kept across merges, got %+v", adv)
	}
	if adv.Expectancy == nil || adv.Expectancy.Currency == nil || !adv.Expectancy.Currency.Equal(d(12)) {
		t.Errorf("expected merged expectancy, got %+v", adv.Expectancy)
	}

	cur = d(99)
	if !adv.Expectancy.Currency.Equal(d(12)) {
		t.Error("override shares memory with the command")
	}

	if _, err := Apply(ds, Command{Op: OpClearAdvanced}, now); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if ds.Accounts[0].Advanced() != nil {
		t.Error("expected override removed")
	}
}

func TestApply_ErrorsLeaveDatasetUnchanged(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want error
	}{
		{"unknown op", Command{Op: "rename_everything"}, ErrUnknownOp},
		{"account out of range", Command{Op: OpUpdateAccount, Account: 5}, ErrAccountNotFound},
		{"negative account", Command{Op: OpDeleteAccount, Account: -1}, ErrAccountNotFound},
		{"month index", Command{Op: OpUpdateMonth, Index: 2, Profit: ptr(d(1))}, ErrIndexOutOfRange},
		{"trade index", Command{Op: OpDeleteTrade, Index: 3}, ErrIndexOutOfRange},
		{"invalid side", Command{Op: OpAddTrade, Trade: &TradePatch{Side: ptr("long")}}, ErrInvalidSide},
		{"invalid month", Command{Op: OpAddMonth, Month: ptr("2025-13")}, model.ErrInvalidMonth},
		{"bad month update", Command{Op: OpUpdateMonth, Index: 0, Month: ptr("Jan"), Profit: ptr(d(5))}, model.ErrInvalidMonth},
		{"negative deposit", Command{Op: OpUpdateAccount, Name: ptr("x"), TotalDeposit: ptr(d(-1))}, ErrNegativeDeposit},
		{"negative deposit on add", Command{Op: OpAddAccount, TotalDeposit: ptr(d(-1))}, ErrNegativeDeposit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := dataset()
			before := ds.Clone()

			_, err := Apply(ds, tt.cmd, now)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !reflect.DeepEqual(ds, before) {
				t.Error("failed command modified the dataset")
			}
		})
	}
}
