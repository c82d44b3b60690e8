package session

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/verificador-pallets/internal/application/ports"
	"github.com/jhoicas/verificador-pallets/internal/domain"
	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
	"github.com/jhoicas/verificador-pallets/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newTestStore() *Store {
	return NewStore(logger.Nop())
}

func foundLookup(id string, products ...entity.ProductLine) *ports.LookupResult {
	return &ports.LookupResult{ID: id, Found: true, Products: products, StatusSummary: entity.StatusMixto}
}

func productLine(code, name string) entity.ProductLine {
	return entity.ProductLine{CodigoArticulo: code, NombreProducto: name}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// UpsertFromLookup
// ──────────────────────────────────────────────────────────────────────────────

func TestUpsertFromLookup_PalletNuevoSeAgrega(t *testing.T) {
	s := newTestStore()

	rec := s.UpsertFromLookup(foundLookup("PAL-1", productLine("A-1", "Tornillo")), "PAL-1")

	assert.True(t, rec.Found)
	assert.Equal(t, entity.StatusMixto, rec.StatusSummary)
	assert.Equal(t, 1, s.Len())
}

func TestUpsertFromLookup_ConteosDelSistemaSeDescartan(t *testing.T) {
	s := newTestStore()
	p := productLine("A-1", "Tornillo")
	p.CantidadContada = dec("99") // el wire remoto nunca debe aportar conteos

	rec := s.UpsertFromLookup(foundLookup("PAL-1", p), "PAL-1")

	require.Len(t, rec.Products, 1)
	assert.Nil(t, rec.Products[0].CantidadContada)
}

// Re-escanear un pallet preserva las cantidades contadas por código de artículo
// y reemplaza el registro en su misma posición.
func TestUpsertFromLookup_ReescaneoPreservaConteos(t *testing.T) {
	s := newTestStore()
	s.UpsertFromLookup(foundLookup("PAL-1", productLine("A-1", "Tornillo"), productLine("A-2", "Tuerca")), "PAL-1")
	s.UpsertFromLookup(foundLookup("PAL-2", productLine("B-1", "Clavo")), "PAL-2")

	s.SetCountedQuantity("PAL-1", 0, "10")
	s.SetCountedQuantity("PAL-1", 1, "3,5")

	// El sistema ahora devuelve las líneas en otro orden y con una nueva.
	rec := s.UpsertFromLookup(foundLookup("PAL-1",
		productLine("A-2", "Tuerca"),
		productLine("A-3", "Arandela"),
		productLine("A-1", "Tornillo"),
	), "PAL-1")

	require.Len(t, rec.Products, 3)
	assert.Nil(t, rec.Products[0].CantidadContada, "A-2 se contó con coma decimal no parseable: queda ausente")
	assert.Nil(t, rec.Products[1].CantidadContada, "A-3 es nueva: sin conteo")
	require.NotNil(t, rec.Products[2].CantidadContada)
	assert.True(t, rec.Products[2].CantidadContada.Equal(decimal.RequireFromString("10")),
		"el conteo de A-1 debe sobrevivir al re-escaneo")

	// El registro quedó en su posición original, no al final.
	pallets := s.Pallets()
	require.Equal(t, 2, len(pallets))
	assert.Equal(t, "PAL-1", pallets[0].ID)
	assert.Equal(t, "PAL-2", pallets[1].ID)
}

func TestUpsertFromLookup_NoEncontrado(t *testing.T) {
	s := newTestStore()

	rec := s.UpsertFromLookup(&ports.LookupResult{ID: "PAL-X", Found: false}, "PAL-X")

	assert.False(t, rec.Found)
	assert.Equal(t, entity.StatusNoEncontrado, rec.StatusSummary)
	assert.Empty(t, rec.Products)
}

// Un escaneo posterior exitoso reemplaza al registro de error previo del mismo id.
func TestUpsertFromLookup_ExitoReemplazaErrorPrevio(t *testing.T) {
	s := newTestStore()
	s.UpsertErrorRecord("PAL-1", entity.StatusErrorConexion)

	rec := s.UpsertFromLookup(foundLookup("PAL-1", productLine("A-1", "Tornillo")), "PAL-1")

	assert.True(t, rec.Found)
	assert.Equal(t, 1, s.Len(), "el error previo se reemplaza, no se duplica")
	assert.Equal(t, entity.StatusMixto, s.Pallets()[0].StatusSummary)
}

func TestUpsertFromLookup_ErrorDelServidor(t *testing.T) {
	s := newTestStore()

	rec := s.UpsertFromLookup(&ports.LookupResult{ServerError: "pallet bloqueado"}, "PAL-1")

	assert.False(t, rec.Found)
	assert.Equal(t, entity.StatusErrorServidor, rec.StatusSummary)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpsertErrorRecord
// ──────────────────────────────────────────────────────────────────────────────

func TestUpsertErrorRecord_NoDuplicaMismoIDYEstado(t *testing.T) {
	s := newTestStore()
	s.UpsertErrorRecord("PAL-1", entity.StatusErrorConexion)
	s.UpsertErrorRecord("PAL-1", entity.StatusErrorConexion)

	assert.Equal(t, 1, s.Len())

	// Mismo id con otro estado sí es un registro nuevo.
	s.UpsertErrorRecord("PAL-1", entity.StatusErrorServidor)
	assert.Equal(t, 2, s.Len())
}

// ──────────────────────────────────────────────────────────────────────────────
// SetCountedQuantity
// ──────────────────────────────────────────────────────────────────────────────

func TestSetCountedQuantity(t *testing.T) {
	s := newTestStore()
	s.UpsertFromLookup(foundLookup("PAL-1", productLine("A-1", "Tornillo")), "PAL-1")

	s.SetCountedQuantity("PAL-1", 0, " 7.5 ")
	require.NotNil(t, s.Pallets()[0].Products[0].CantidadContada)
	assert.True(t, s.Pallets()[0].Products[0].CantidadContada.Equal(decimal.RequireFromString("7.5")))

	// Vacío limpia el campo (ausente, no cero).
	s.SetCountedQuantity("PAL-1", 0, "")
	assert.Nil(t, s.Pallets()[0].Products[0].CantidadContada)

	// No numérico también limpia.
	s.SetCountedQuantity("PAL-1", 0, "abc")
	assert.Nil(t, s.Pallets()[0].Products[0].CantidadContada)
}

func TestSetCountedQuantity_ProductoInexistenteNoHaceNada(t *testing.T) {
	s := newTestStore()
	s.UpsertFromLookup(foundLookup("PAL-1", productLine("A-1", "Tornillo")), "PAL-1")

	notified := 0
	s.Subscribe(func(entity.Session) { notified++ })

	s.SetCountedQuantity("PAL-404", 0, "5")
	s.SetCountedQuantity("PAL-1", 9, "5")

	assert.Equal(t, 0, notified, "un no-op no debe notificar ni re-persistir")
}

// ──────────────────────────────────────────────────────────────────────────────
// Altas/ediciones manuales y eliminación
// ──────────────────────────────────────────────────────────────────────────────

func TestAddManualRecord(t *testing.T) {
	s := newTestStore()

	rec := s.AddManualRecord(entity.PalletRecord{ID: "PAL-M", Found: true})

	assert.True(t, rec.IsManuallyAdded)
	assert.Equal(t, entity.StatusAgregadoManual, rec.StatusSummary)
	assert.NotNil(t, rec.Products)
}

func TestReplaceRecord(t *testing.T) {
	s := newTestStore()
	s.UpsertFromLookup(foundLookup("PAL-1", productLine("A-1", "Tornillo")), "PAL-1")

	err := s.ReplaceRecord("PAL-1", entity.PalletRecord{ID: "PAL-1", Found: true})
	require.NoError(t, err)
	assert.True(t, s.Pallets()[0].IsManuallyEdited)
	assert.Equal(t, entity.StatusEditado, s.Pallets()[0].StatusSummary)

	err = s.ReplaceRecord("PAL-404", entity.PalletRecord{ID: "PAL-404"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveRecord(t *testing.T) {
	s := newTestStore()
	s.UpsertFromLookup(foundLookup("PAL-1"), "PAL-1")
	s.UpsertFromLookup(foundLookup("PAL-2"), "PAL-2")

	require.NoError(t, s.RemoveRecord(0))
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "PAL-2", s.Pallets()[0].ID)

	assert.ErrorIs(t, s.RemoveRecord(5), domain.ErrIndiceInvalido)
	assert.ErrorIs(t, s.RemoveRecord(-1), domain.ErrIndiceInvalido)
}

// ──────────────────────────────────────────────────────────────────────────────
// Observadores y resumen
// ──────────────────────────────────────────────────────────────────────────────

func TestSubscribe_NotificaCopiaProfunda(t *testing.T) {
	s := newTestStore()
	var got entity.Session
	s.Subscribe(func(snap entity.Session) { got = snap })

	s.UpsertFromLookup(foundLookup("PAL-1", productLine("A-1", "Tornillo")), "PAL-1")
	require.Len(t, got, 1)

	// Mutar la copia no debe afectar el estado interno.
	got[0].ID = "HACKED"
	assert.Equal(t, "PAL-1", s.Pallets()[0].ID)
}

func TestSummary(t *testing.T) {
	s := newTestStore()
	s.UpsertFromLookup(foundLookup("PAL-1", productLine("A-1", "Tornillo"), productLine("A-2", "Tuerca")), "PAL-1")
	s.UpsertFromLookup(&ports.LookupResult{ID: "PAL-2", Found: false}, "PAL-2")
	s.UpsertErrorRecord("PAL-3", entity.StatusErrorConexion)
	s.SetCountedQuantity("PAL-1", 0, "10")

	sum := s.Summary()
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 1, sum.Found)
	assert.Equal(t, 2, sum.NotFound, "no encontrados y errores cuentan como no reconocidos")
	assert.Equal(t, 1, sum.WithCounts)
	assert.Equal(t, 1, sum.CompletedItems)
}
