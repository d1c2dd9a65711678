// Package core provides amount parsing and won formatting.
//
// Amounts are whole won stored as int64. User input is reduced to its ASCII
// digits before conversion so "1,500원" and "15 00" both read as 1500.
package core

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WonUnit is appended to every formatted amount.
const WonUnit = "원"

// ParseAmount keeps only the digits of s and converts them to an amount.
// Empty or unparsable input yields 0.
//
// Examples:
//
//	ParseAmount("1,500") -> 1500
//	ParseAmount("₩ 2,000원") -> 2000
//	ParseAmount("abc") -> 0
func ParseAmount(s string) int64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FormatGrouped renders n with Korean digit grouping ("1,234,567").
func FormatGrouped(n int64) string {
	return message.NewPrinter(language.Korean).Sprintf("%d", n)
}

// FormatWon renders n as grouped digits followed by the won unit.
// Negative values keep their leading minus: -1500 -> "-1,500원".
func FormatWon(n int64) string {
	return FormatGrouped(n) + WonUnit
}

// FormatAmountInput is the value shown in an amount input field: grouped
// digits, or empty for zero so the placeholder shows.
func FormatAmountInput(n int64) string {
	if n == 0 {
		return ""
	}
	return FormatGrouped(n)
}
