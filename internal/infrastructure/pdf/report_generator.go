// Package pdf implementa la generación del reporte de conteo de una sesión
// archivada, para imprimir o adjuntar al cierre del inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Reporte de Verificación  │  ID sesión + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: pallets / encontrados / no encontrados / conteos  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  POR PALLET:                                                │
//	│    ID + estado                                              │
//	│    TABLA: Código | Producto | Almacén | Sistema | Contado   │
//	│           | Diferencia                                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/verificador-pallets/internal/application/ports"
	"github.com/jhoicas/verificador-pallets/internal/domain/conteo"
	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
	"github.com/jhoicas/verificador-pallets/pkg/format"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 40, Blue: 40}
	colorOK      = &props.Color{Red: 30, Green: 120, Blue: 60}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa ports.SessionReportGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

var _ ports.SessionReportGenerator = (*MarotoReportGenerator)(nil)

// GenerateSessionPDF genera el PDF de la sesión archivada y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateSessionPDF(_ context.Context, entry *entity.HistoryEntry) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de Verificación de Pallets", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(entry))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(entry.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	for _, pallet := range entry.Pallets {
		m.AddRows(palletTitleRow(pallet))
		if len(pallet.Products) > 0 {
			m.AddRows(tableHeaderRow())
			for _, r := range productRows(pallet.Products) {
				m.AddRows(r)
			}
		}
		m.AddRows(row.New(2))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) e identificación de la sesión (der).
func headerRow(entry *entity.HistoryEntry) core.Row {
	fecha := time.UnixMilli(entry.Timestamp).Format("02/01/2006 15:04")

	return row.New(16).Add(
		col.New(7).Add(
			text.New("REPORTE DE VERIFICACIÓN DE PALLETS", props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("Conteo físico contra inventario de sistema", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Sesión: "+entry.SessionID, props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// summaryRow: agregados de la sesión en una línea.
func summaryRow(s entity.SessionSummary) core.Row {
	cell := func(label string, value int) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(fmt.Sprintf("%d", value), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 5, Color: colorPrimary,
			}),
		)
	}
	return row.New(14).Add(
		col.New(1),
		cell("Pallets", s.Total),
		cell("Encontrados", s.Found),
		cell("No encontrados", s.NotFound),
		cell("Con conteos", s.WithCounts),
		cell("Líneas contadas", s.CompletedItems),
		col.New(1),
	)
}

// palletTitleRow: ID del pallet con su estado.
func palletTitleRow(p entity.PalletRecord) core.Row {
	estadoColor := colorOK
	if !p.Found {
		estadoColor = colorAlert
	}
	return row.New(8).Add(
		col.New(8).Add(
			text.New("Pallet "+p.ID, props.Text{Style: fontstyle.Bold, Size: 10, Top: 2}),
		),
		col.New(4).Add(
			text.New(p.StatusSummary, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 3, Color: estadoColor,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de productos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a,
			Color: colorPrimary, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		h("Código", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Almacén", 1, align.Center),
		h("Sistema", 1, align.Right),
		h("Contado", 2, align.Right),
		h("Diferencia", 2, align.Right),
	)
}

// productRows: una fila por línea de producto, con la diferencia calculada.
func productRows(products []entity.ProductLine) []core.Row {
	result := make([]core.Row, 0, len(products))
	for _, p := range products {
		diff := conteo.Difference(p)
		diffText := "—"
		diffColor := colorGray
		switch diff.Tag {
		case conteo.TagOK:
			diffText = "OK"
			diffColor = colorOK
		case conteo.TagDiscrepancia:
			diffText = diff.Text
			diffColor = colorAlert
		}

		contado := "—"
		if p.CantidadContada != nil {
			contado = format.Number(*p.CantidadContada)
		}

		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(p.CodigoArticulo,
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1})),
			col.New(4).Add(text.New(p.NombreProducto,
				props.Text{Size: 7.5, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(p.Almacen,
				props.Text{Size: 7.5, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(format.Cantidad(p.InventarioFisico.Valid, p.InventarioFisico.Decimal),
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(contado,
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(diffText,
				props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1, Color: diffColor})),
		))
	}
	return result
}
