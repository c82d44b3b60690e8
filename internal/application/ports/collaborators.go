package ports

import (
	"context"

	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
)

// Confirmer es la capacidad de pedir confirmación al operador antes de una
// acción destructiva, desacoplada de cualquier modal concreto.
type Confirmer interface {
	Confirm(title, message string) bool
}

// AutoConfirm confirma siempre. Lo usa la capa HTTP, donde el cliente ya
// confirmó con el operador antes de llamar al endpoint.
type AutoConfirm struct{}

// Confirm implementa Confirmer.
func (AutoConfirm) Confirm(string, string) bool { return true }

// ScanController es el colaborador de escaneo activo (el decodificador de
// códigos de barras). El driver lo detiene al finalizar la sesión.
type ScanController interface {
	Stop()
}

// SessionReportGenerator genera la representación PDF de una sesión archivada.
type SessionReportGenerator interface {
	GenerateSessionPDF(ctx context.Context, entry *entity.HistoryEntry) ([]byte, error)
}
