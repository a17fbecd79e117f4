package analysis

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func formatCurrency(v Value) string {
	f, ok := v.Float()
	if !ok {
		return NotAvailable
	}
	if f < 0 {
		return printer.Sprintf("-$%.2f", -f)
	}
	return printer.Sprintf("$%.2f", f)
}

func formatCount(v Value) string {
	f, ok := v.Float()
	if !ok {
		return NotAvailable
	}
	return printer.Sprintf("%d", int64(f))
}

func formatMonths(v Value) string {
	f, ok := v.Float()
	if !ok {
		return NotAvailable
	}
	return printer.Sprintf("%.1f months", f)
}
