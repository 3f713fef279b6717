package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyPrinter = message.NewPrinter(language.English)

// FormatCurrency renders an amount as "<n> coins" with thousands separators.
// External renderers rely on this exact contract.
func FormatCurrency(amount int) string {
	return currencyPrinter.Sprintf("%d coins", amount)
}
