package report

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/benefit-engine/generic"
)

// FormatBRL renders an amount as Brazilian currency: "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	s := generic.RoundMoney(d).StringFixed(generic.Cents)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
