package ports

import (
	"context"

	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
)

// LookupResult es la respuesta decodificada del servicio remoto para un
// pallet, como variante etiquetada: si ServerError no es vacío el cuerpo trajo
// un error de negocio y el resto de campos no es significativo.
type LookupResult struct {
	ServerError   string
	ID            string
	Found         bool
	Products      []entity.ProductLine
	StatusSummary string
}

// SubmitSummary es el resumen de la reconciliación autoritativa del servidor.
type SubmitSummary struct {
	PalletsProcesados    int `json:"palletsProcesados"`
	ItemsProcesados      int `json:"itemsProcesados"`
	ItemsOk              int `json:"itemsOk"`
	ItemsConDiscrepancia int `json:"itemsConDiscrepancia"`
}

// SubmitResult resultado de enviar la sesión completa.
type SubmitResult struct {
	Message string        `json:"message"`
	Summary SubmitSummary `json:"summary"`
}

// RemoteInventory es el puerto de salida hacia el servicio de inventario
// remoto. Las dos operaciones son seguras de reintentar; el cliente no
// reintenta por su cuenta: todo fallo se devuelve al orquestador.
type RemoteInventory interface {
	// LookupPallet consulta la composición conocida de un pallet.
	// Fallos de transporte se devuelven como error (ErrTimeout, ErrRed,
	// ErrRespuestaInvalida); un error reportado en el cuerpo llega como
	// LookupResult con ServerError.
	LookupPallet(ctx context.Context, id string) (*LookupResult, error)

	// SubmitSession envía la sesión completa para reconciliación. Falla
	// rápido con ErrSinConexion si se sabe desconectado.
	SubmitSession(ctx context.Context, pallets entity.Session) (*SubmitResult, error)
}
