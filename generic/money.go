package generic

import "github.com/shopspring/decimal"

// =============================================================================
// MONEY & RATIOS
// =============================================================================

// Cents is the rounding scale for monetary values.
const Cents int32 = 2

var (
	// One is the neutral pro-ration factor.
	One = decimal.NewFromInt(1)

	// OneCent is the largest accepted gap between a rounded total and the
	// sum of its independently rounded shares.
	OneCent = decimal.New(1, -Cents)
)

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(Cents)
}

// Ratio returns num/den, or One when den is zero.
func Ratio(num, den int) decimal.Decimal {
	if den == 0 {
		return One
	}
	return decimal.NewFromInt(int64(num)).Div(decimal.NewFromInt(int64(den)))
}

// Share returns the rounded percentage part of a total (pct in whole percent).
func Share(total decimal.Decimal, pct int64) decimal.Decimal {
	return RoundMoney(total.Mul(decimal.New(pct, -2)))
}
