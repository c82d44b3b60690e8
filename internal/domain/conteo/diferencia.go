// Package conteo implementa la comparación contado-vs-sistema (servicio de dominio).
package conteo

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
	"github.com/jhoicas/verificador-pallets/pkg/format"
)

// Etiquetas del resultado de la comparación.
const (
	TagOK           = "ok"
	TagDiscrepancia = "discrepancy"
)

// DifferenceView es el resultado de comparar la cantidad contada de una línea
// contra el inventario físico del sistema.
type DifferenceView struct {
	Tag  string           // TagOK, TagDiscrepancia o vacío si no hay nada que comparar
	Diff *decimal.Decimal // contado - sistema; nil si no hay comparación numérica
	Text string           // texto listo para mostrar junto al input de conteo
}

// Difference compara contado contra sistema. Función pura:
//   - ambos numéricos: diff = contado - sistema; TagOK si cero, si no TagDiscrepancia
//   - solo contado: TagDiscrepancia sin diferencia numérica (se muestra el contado)
//   - sin contado: vista vacía, sin etiqueta ni texto
func Difference(p entity.ProductLine) DifferenceView {
	if p.CantidadContada == nil {
		return DifferenceView{}
	}
	if p.InventarioFisico.Valid {
		d := p.CantidadContada.Sub(p.InventarioFisico.Decimal)
		view := DifferenceView{Diff: &d, Text: "Dif: " + format.Number(d)}
		if d.IsZero() {
			view.Tag = TagOK
		} else {
			view.Tag = TagDiscrepancia
		}
		return view
	}
	return DifferenceView{
		Tag:  TagDiscrepancia,
		Text: "(Contado: " + format.Number(*p.CantidadContada) + ")",
	}
}
