package dto

import (
	"github.com/jhoicas/verificador-pallets/internal/application/ports"
	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
)

// ScanRequest evento de código decodificado por el lector. La geometría del
// cuadro detectado es solo para la visualización del cliente y no viaja aquí.
type ScanRequest struct {
	Codigo  string `json:"codigo"`
	Formato string `json:"formato,omitempty"`
}

// VerifyRequest consulta manual de un pallet por ID tecleado.
type VerifyRequest struct {
	ID string `json:"id"`
}

// CountRequest valor crudo del input de cantidad contada. Vacío limpia el campo.
type CountRequest struct {
	Valor string `json:"valor"`
}

// ManualPalletRequest alta o edición manual de un pallet.
type ManualPalletRequest struct {
	ID            string               `json:"id"`
	StatusSummary string               `json:"statusSummary,omitempty"`
	Products      []entity.ProductLine `json:"products"`
}

// RecoveryActionRequest decisión del operador sobre una sesión recuperable.
type RecoveryActionRequest struct {
	Accion string `json:"accion"` // "recuperar" | "descartar"
}

// ScanResponse resultado de procesar un escaneo o verificación manual.
type ScanResponse struct {
	Ignored bool                 `json:"ignored,omitempty"` // escaneo suprimido por anti-rebote
	Message string               `json:"message,omitempty"`
	Pallet  *entity.PalletRecord `json:"pallet,omitempty"`
}

// SessionResponse sesión activa con su resumen derivado.
type SessionResponse struct {
	Pallets entity.Session        `json:"pallets"`
	Summary entity.SessionSummary `json:"summary"`
}

// SubmitResponse resultado de la reconciliación autoritativa.
type SubmitResponse struct {
	Message string              `json:"message"`
	Summary ports.SubmitSummary `json:"summary"`
}

// RecoveryResponse estado de recuperación al arrancar el cliente.
type RecoveryResponse struct {
	Recoverable bool `json:"recoverable"`
}
