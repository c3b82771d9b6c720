package currency

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the ISO 4217 code orders are priced in.
type Currency string

const (
	CurrencyMXN Currency = "MXN"
	CurrencyUSD Currency = "USD"
)

// defaultDigits is used for codes outside the known set, such as the zero value.
const defaultDigits = 2

var ErrInvalidCurrency = errors.New("invalid currency")

var minorDigits = map[Currency]int32{
	CurrencyMXN: 2,
	CurrencyUSD: 2,
}

var symbols = map[Currency]string{
	CurrencyMXN: "MX$",
	CurrencyUSD: "US$",
}

func (c Currency) String() string {
	return string(c)
}

func (c Currency) Value() (driver.Value, error) {
	return c.String(), nil
}

// Digits is the number of minor-unit digits amounts carry.
func (c Currency) Digits() int32 {
	if d, ok := minorDigits[c]; ok {
		return d
	}

	return defaultDigits
}

// Round rounds amount half away from zero to the minor unit.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Digits())
}

// Amount renders amount with exactly the minor-unit digits, e.g. "90.50".
func (c Currency) Amount(amount decimal.Decimal) string {
	return amount.StringFixed(c.Digits())
}

// Format renders amount for people, e.g. "MX$90.50". Unknown codes are suffixed instead.
func (c Currency) Format(amount decimal.Decimal) string {
	if symbol, ok := symbols[c]; ok {
		return symbol + c.Amount(amount)
	}

	return strings.TrimSpace(c.Amount(amount) + " " + c.String())
}

// ParseCurrency accepts a known code in any case.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := minorDigits[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}

	return c, nil
}
