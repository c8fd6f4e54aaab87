package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatAmount 以幣別符號與千分位顯示金額，例如 NGN 198,000.00
func FormatAmount(amount decimal.Decimal, code string) (string, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("unknown currency %q: %w", code, err)
	}
	return printer.Sprint(currency.Symbol(unit.Amount(amount.Round(2).InexactFloat64()))), nil
}
