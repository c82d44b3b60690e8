package entity

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Cantidad es una cantidad numérica reportada por el servicio remoto.
// La hoja maestra puede devolver la columna como número, como cadena numérica
// o como cadena vacía cuando no tiene datos; las tres formas se aceptan y una
// celda no numérica se trata como ausente (mismo comportamiento que un
// parseFloat fallido en el cliente).
type Cantidad struct {
	decimal.NullDecimal
}

// NewCantidad construye una cantidad presente.
func NewCantidad(d decimal.Decimal) Cantidad {
	return Cantidad{decimal.NullDecimal{Decimal: d, Valid: true}}
}

// CantidadAusente construye una cantidad sin valor (columna vacía).
func CantidadAusente() Cantidad {
	return Cantidad{}
}

// UnmarshalJSON acepta número JSON, cadena numérica, cadena vacía y null.
func (c *Cantidad) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		c.Decimal, c.Valid = decimal.Decimal{}, false
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			c.Decimal, c.Valid = decimal.Decimal{}, false
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			c.Decimal, c.Valid = decimal.Decimal{}, false
			return nil
		}
		c.Decimal, c.Valid = d, true
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		c.Decimal, c.Valid = decimal.Decimal{}, false
		return nil
	}
	c.Decimal, c.Valid = d, true
	return nil
}

// MarshalJSON emite el número, o "" cuando la cantidad está ausente, para que
// el payload de sesión conserve la forma que el servicio remoto entregó.
func (c Cantidad) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte(`""`), nil
	}
	return []byte(c.Decimal.String()), nil
}
