// Package extenso converts monetary amounts into Brazilian Portuguese words.
//
// Text-to-speech engines read digits poorly ("R$ 1.250,50" comes out as noise),
// so every amount spoken by the dialog engine is rendered "por extenso":
//
//	extenso.Amount(decimal.NewFromFloat(1250.50))
//	// "mil duzentos e cinquenta reais e cinquenta centavos"
//
// The conversion is deterministic and locale-fixed. Amounts are split into a
// whole-real part and a two-digit centavo part using decimal arithmetic, so
// there is no floating-point drift at the cents boundary.
package extenso

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	units = []string{"", "um", "dois", "três", "quatro", "cinco", "seis", "sete", "oito", "nove"}
	teens = []string{"dez", "onze", "doze", "treze", "quatorze", "quinze", "dezesseis", "dezessete", "dezoito", "dezenove"}
	tens  = []string{"", "", "vinte", "trinta", "quarenta", "cinquenta", "sessenta", "setenta", "oitenta", "noventa"}
	// "cento" composes (cento e dez); a bare 100 is the special word "cem".
	hundreds = []string{"", "cento", "duzentos", "trezentos", "quatrocentos", "quinhentos", "seiscentos", "setecentos", "oitocentos", "novecentos"}
)

// Amount renders a non-negative monetary value as Brazilian Portuguese words,
// including the currency unit ("real"/"reais", "centavo"/"centavos").
//
// The fractional part is rounded (not truncated) to two digits, so
// 10.999 renders as "onze reais". Zero renders as "zero reais". A zero
// whole part with non-zero cents omits the real clause entirely
// ("um centavo", not "zero reais e um centavo").
//
// Negative values are clamped to zero; the negotiation domain has no
// negative debts.
func Amount(v decimal.Decimal) string {
	if v.IsNegative() {
		v = decimal.Zero
	}

	whole := v.Floor()
	cents := v.Sub(whole).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	reais := whole.IntPart()

	// Rounding the cents can carry into the whole part (e.g. 9.999 -> 10.00).
	if cents >= 100 {
		reais += cents / 100
		cents %= 100
	}

	var b strings.Builder
	if reais > 0 {
		b.WriteString(Cardinal(reais))
		if reais == 1 {
			b.WriteString(" real")
		} else {
			b.WriteString(" reais")
		}
	}
	if cents > 0 {
		if reais > 0 {
			b.WriteString(" e ")
		}
		b.WriteString(block(int(cents)))
		if cents == 1 {
			b.WriteString(" centavo")
		} else {
			b.WriteString(" centavos")
		}
	}

	if b.Len() == 0 {
		return "zero reais"
	}
	return b.String()
}

// Cardinal renders a non-negative integer as Portuguese words.
// Values are supported up to the millions range, which covers any debt the
// negotiation flows deal in.
func Cardinal(n int64) string {
	if n <= 0 {
		return "zero"
	}

	var parts []string

	if millions := n / 1_000_000; millions > 0 {
		if millions == 1 {
			parts = append(parts, "um milhão")
		} else {
			parts = append(parts, block(int(millions))+" milhões")
		}
		n %= 1_000_000
		if n > 0 && (n < 100 || n%100 == 0) && n < 1000 {
			parts = append(parts, "e "+block(int(n)))
			return strings.Join(parts, " ")
		}
	}

	thousands := n / 1000
	rest := n % 1000

	if thousands > 0 {
		if thousands == 1 {
			// "mil", never "um mil".
			parts = append(parts, "mil")
		} else {
			parts = append(parts, block(int(thousands))+" mil")
		}
	}

	if rest > 0 {
		if thousands > 0 && (rest < 100 || rest%100 == 0) {
			// "mil e cem", "dois mil e quarenta", but "mil duzentos e dez".
			parts = append(parts, "e "+block(int(rest)))
		} else {
			parts = append(parts, block(int(rest)))
		}
	}

	return strings.Join(parts, " ")
}

// block renders 1..999 as words, joining the non-empty pieces with "e".
func block(n int) string {
	if n == 0 {
		return ""
	}
	if n == 100 {
		return "cem"
	}

	c := n / 100
	d := (n % 100) / 10
	u := n % 10

	var pieces []string
	if c > 0 {
		pieces = append(pieces, hundreds[c])
	}
	if d == 1 {
		pieces = append(pieces, teens[u])
	} else {
		if d > 1 {
			pieces = append(pieces, tens[d])
		}
		if u > 0 {
			pieces = append(pieces, units[u])
		}
	}

	return strings.Join(pieces, " e ")
}
