// Package xp formats experience points for display.
package xp

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format returns the long form with digit grouping, e.g. "1,240 XP".
func Format(n int) string {
	return printer.Sprintf("%d XP", n)
}

// Earned returns the toast line for an award, e.g. "+25 XP earned".
func Earned(n int) string {
	return "+" + Format(n) + " earned"
}

// Compact returns the badge form: the plain number below 1000, otherwise
// thousands with one decimal, e.g. "850", "1.0k", "1.3k".
func Compact(n int) string {
	if n < 1000 {
		return strconv.Itoa(n)
	}
	if r := n % 1000; r == 250 || r == 750 {
		// Exact binary halves round up, not to even.
		t := (n + 50) / 100
		return strconv.Itoa(t/10) + "." + strconv.Itoa(t%10) + "k"
	}
	return strconv.FormatFloat(float64(n)/1000, 'f', 1, 64) + "k"
}
