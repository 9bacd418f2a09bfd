// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and real (BRL) representations.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmountCents converts a decimal string to signed cents.
//
// Both Brazilian ("1.234,56") and plain ("1234.56") notations are accepted:
// when comma and dot are both present the rightmost one is taken as the
// decimal separator and the other is dropped as a thousands separator.
// A leading "-" or a surrounding parenthesis pair marks a debit. Currency
// symbols ("R$") and whitespace are ignored. Half-up rounding is applied on
// the third decimal place.
//
// Examples:
//
//	ParseAmountCents("1.234,56")    -> 123456, nil
//	ParseAmountCents("-12,34")      -> -1234, nil
//	ParseAmountCents("R$ 1.234,00") -> 123400, nil
//	ParseAmountCents("(50,00)")     -> -5000, nil
func ParseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	// Decide which separator is decimal: the rightmost of "," and ".".
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return 0, ErrInvalidAmount
		}
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		// Multiple dots with no comma: thousands-separated integer.
		s = strings.ReplaceAll(s, ".", "")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	// Take first two fractional digits; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if negative {
		cents = -cents
	}
	return cents, nil
}

// FormatReais formats cents as a BRL currency string, e.g. "R$ 1.234,56".
func FormatReais(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	reais := cents / 100
	rem := cents % 100

	digits := strconv.FormatInt(reais, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := fmt.Sprintf("R$ %s,%02d", b.String(), rem)
	if neg {
		return "-" + out
	}
	return out
}

// FormatDecimal renders cents as a plain decimal string with a dot
// separator, e.g. "-1234.56". Used by the CSV exporter.
func FormatDecimal(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// Reais returns the BRL value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}
