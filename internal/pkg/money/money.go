// Package money formats coin amounts for chat replies.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

// Format renders n with thousands separators, e.g. 1234567 -> "1,234,567".
func Format(n int64) string {
	return printer.Sprintf("%d", n)
}

// Coins renders n followed by the currency unit.
func Coins(n int64) string {
	return Format(n) + " 코인"
}
