package performance

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

// fallbackNames is used for accounts that carry neither personName nor name.
var fallbackNames = []string{
	"A. Diallo", "M. Fernandes", "J. Laurent", "S. Kamara", "R. Martins",
	"I. Traoré", "K. Duarte", "P. Nascimento", "T. Morel", "L. Costa",
	"C. Mensah", "E. Dlamini", "N. Bernard", "F. Baptiste", "D. Okoro",
}

const avatarURLFormat = "https://api.dicebear.com/7.x/initials/png?seed=%s&backgroundType=gradientLinear&radius=50"

// AccountSummary is one row of the accounts overview.
type AccountSummary struct {
	Index       int               `json:"index"`
	ID          string            `json:"id,omitempty"`
	DisplayName string            `json:"displayName"`
	Avatar      string            `json:"avatar"`
	Metrics     Metrics           `json:"metrics"`
	GainPct     decimal.Decimal   `json:"gainPct"`
	DrawdownPct decimal.Decimal   `json:"drawdownPct"`
	MonthReturn decimal.Decimal   `json:"monthReturn"` // fraction of deposit, not percent
	Labels      []string          `json:"labels"`
	Equity      []decimal.Decimal `json:"equity"`
}

// DisplayName returns personName, then name, then a stable fallback picked
// by the account's position in the dataset.
func DisplayName(acc model.Account, index int) string {
	if acc.PersonName != "" {
		return acc.PersonName
	}
	if acc.Name != "" {
		return acc.Name
	}
	if index < 0 {
		index = -index
	}
	return fallbackNames[index%len(fallbackNames)]
}

// AvatarURL returns the account's avatar or a generated initials image.
func AvatarURL(acc model.Account, displayName string) string {
	if acc.Avatar != "" {
		return acc.Avatar
	}
	seed := strings.ReplaceAll(url.QueryEscape(displayName), "+", "%20")
	return fmt.Sprintf(avatarURLFormat, seed)
}

// Summarize builds the overview row for the account at index.
func Summarize(index int, acc model.Account) AccountSummary {
	m := ComputeMetrics(acc)
	s := BuildAllSeries(acc)

	denom := m.TotalDeposit
	if denom.IsZero() {
		denom = one
	}

	name := DisplayName(acc, index)
	return AccountSummary{
		Index:       index,
		ID:          acc.ID,
		DisplayName: name,
		Avatar:      AvatarURL(acc, name),
		Metrics:     m,
		GainPct:     m.GrowthPct,
		DrawdownPct: MaxDrawdown(s),
		MonthReturn: m.ProfitThisMonth.Div(denom),
		Labels:      s.Labels,
		Equity:      s.Equity,
	}
}
