package reports

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatAmount renders a converted amount for display. USD keeps two
// decimal places; riel amounts are whole numbers in practice.
func formatAmount(currency string, amount decimal.Decimal) string {
	value, _ := amount.Round(2).Float64()
	if currency == "KHR" {
		return printer.Sprintf("%.0f KHR", value)
	}
	return printer.Sprintf("$%.2f", value)
}
