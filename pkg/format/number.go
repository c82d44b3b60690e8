// Package format formatea cantidades para mostrar, con la localización es-ES
// (separador de miles con punto, decimales con coma) que usa la operación.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.EuropeanSpanish)

// Number formatea un decimal con localización es-ES, máximo dos decimales y
// sin decimales de relleno (equivalente al toLocaleString del cliente).
func Number(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}

// Cantidad formatea una cantidad opcional; ausente se muestra como "N/A".
func Cantidad(valid bool, d decimal.Decimal) string {
	if !valid {
		return "N/A"
	}
	return Number(d)
}
