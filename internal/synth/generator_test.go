package synth

import (
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

func months() []model.MonthEntry {
	return []model.MonthEntry{
		{Month: "2024-01", Profit: decimal.NewFromInt(500)},
		{Month: "2024-02", Profit: decimal.NewFromInt(-200)},
		{Month: "2024-03"},
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := NewGenerator(42).Generate(months())
	b := NewGenerator(42).Generate(months())
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should produce identical trades")
	}
}

func TestGenerate_Shape(t *testing.T) {
	trades := NewGenerator(7).Generate(months())

	perMonth := map[string]int{}
	for i, tr := range trades {
		if !strings.HasPrefix(tr.ID, "G") || len(tr.ID) != 4 {
			t.Errorf("trade %d: unexpected id %q", i, tr.ID)
		}
		perMonth[tr.Date[:7]]++

		if tr.Side != model.SideBuy && tr.Side != model.SideSell {
			t.Errorf("trade %d: invalid side %q", i, tr.Side)
		}
		if tr.Duration.LessThan(decimal.NewFromInt(30)) || tr.Duration.GreaterThanOrEqual(decimal.NewFromInt(2910)) {
			t.Errorf("trade %d: duration %s out of range", i, tr.Duration)
		}
		if tr.Hour == nil || *tr.Hour < 0 || *tr.Hour > 23 {
			t.Errorf("trade %d: bad hour", i)
		}
		if tr.Weekday == nil || *tr.Weekday < 0 || *tr.Weekday > 6 {
			t.Errorf("trade %d: bad weekday", i)
		}
		if tr.MaePips == nil || tr.MaePips.IsPositive() || tr.MfePips == nil || tr.MfePips.IsNegative() {
			t.Errorf("trade %d: bad excursions", i)
		}
		if _, err := model.ParseMonth(tr.Date[:7]); err != nil {
			t.Errorf("trade %d: bad date %q", i, tr.Date)
		}
	}
	if trades[0].ID != "G001" {
		t.Errorf("expected first id G001, got %s", trades[0].ID)
	}

	for _, m := range months() {
		n := perMonth[m.Month]
		if n < minTradesPerMonth || n > maxTradesPerMonth {
			t.Errorf("month %s: %d trades, expected 6..11", m.Month, n)
		}
	}
}

func TestGenerate_NoMonths(t *testing.T) {
	trades := NewGenerator(1).Generate(nil)
	if trades == nil || len(trades) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", trades)
	}
}
