// Package synth fabricates a plausible trade log for accounts that only carry
// monthly results, so the profile charts have something to draw.
package synth

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

// Symbols rotate through the generated trades in this order.
var Symbols = []string{"EURUSD", "GBPUSD", "XAUUSD", "US100", "BTCUSD", "USDJPY"}

const (
	minTradesPerMonth = 6
	maxTradesPerMonth = 11
)

// Generator produces deterministic synthetic trades from a seed.
// A Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns between 6 and 11 trades per monthly entry. A month's
// profit sign biases its trades: positive months scale profits by 1.1,
// negative months by 0.9, zero months pick a side at random.
func (g *Generator) Generate(monthly []model.MonthEntry) []model.Trade {
	trades := []model.Trade{}
	id := 1
	for idx, m := range monthly {
		n := minTradesPerMonth + g.rng.IntN(maxTradesPerMonth-minTradesPerMonth+1)
		for i := 0; i < n; i++ {
			trades = append(trades, g.trade(m, idx+i, id))
			id++
		}
	}
	return trades
}

func (g *Generator) trade(m model.MonthEntry, symbolIdx, id int) model.Trade {
	pips := g.rng.Float64()*60 - 20
	if g.rng.Float64() > 0.5 {
		pips = -pips
	}
	profit := pips * (50 + g.rng.Float64()*150) / 10

	bias := m.Profit.Sign()
	if bias == 0 {
		bias = g.coin()
	}
	if bias > 0 {
		profit *= 1.1
	} else {
		profit *= 0.9
	}

	side := model.SideSell
	if g.coin() > 0 {
		side = model.SideBuy
	}
	hour := g.rng.IntN(24)
	weekday := g.rng.IntN(7)
	mae := round(-5-g.rng.Float64()*60, 1)
	mfe := round(5+g.rng.Float64()*80, 1)

	return model.Trade{
		ID:       fmt.Sprintf("G%03d", id),
		Date:     fmt.Sprintf("%s-%02d", m.Month, 2+g.rng.IntN(26)),
		Symbol:   Symbols[symbolIdx%len(Symbols)],
		Side:     side,
		Lots:     round(0.2+g.rng.Float64()*1.5, 2),
		Pips:     round(pips, 1),
		Profit:   round(profit, 2),
		Duration: decimal.NewFromInt(int64(30 + g.rng.IntN(2880))),
		MaePips:  &mae,
		MfePips:  &mfe,
		Hour:     &hour,
		Weekday:  &weekday,
	}
}

func (g *Generator) coin() int {
	if g.rng.Float64() > 0.5 {
		return 1
	}
	return -1
}

func round(f float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(places)
}
