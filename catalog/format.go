package catalog

import (
	"math"

	"github.com/stripe/stripe-go/v79"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is the currency every catalog price is quoted in.
const DefaultCurrency = stripe.CurrencyINR

var currencySymbols = map[stripe.Currency]string{
	stripe.CurrencyINR: "₹",
	stripe.CurrencyUSD: "$",
	stripe.CurrencyEUR: "€",
	stripe.CurrencyGBP: "£",
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders amount with digit grouping, e.g. ₹1,500 or ₹420.50.
func FormatPrice(currency stripe.Currency, amount float64) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = string(currency) + " "
	}

	if amount == math.Trunc(amount) {
		if math.Abs(amount) >= math.MaxInt64 {
			return symbol + printer.Sprintf("%.0f", amount)
		}
		return symbol + printer.Sprintf("%d", int64(amount))
	}
	return symbol + printer.Sprintf("%.2f", amount)
}
