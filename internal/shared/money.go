package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MoneyFormatter renders monetary amounts with a fixed currency symbol and
// two fractional digits, matching what the POS front-end prints on bills.
type MoneyFormatter struct {
	symbol  string
	printer *message.Printer
}

// NewMoneyFormatter builds a formatter for the configured symbol.
func NewMoneyFormatter(symbol string) *MoneyFormatter {
	if symbol == "" {
		symbol = "Rs."
	}
	return &MoneyFormatter{symbol: symbol, printer: message.NewPrinter(language.English)}
}

// Format renders an amount, e.g. "Rs. 1,240.50".
func (f *MoneyFormatter) Format(amount float64) string {
	return f.printer.Sprintf("%s %.2f", f.symbol, amount)
}

// Symbol returns the configured currency symbol.
func (f *MoneyFormatter) Symbol() string {
	return f.symbol
}
