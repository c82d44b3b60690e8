package report

import (
	"context"

	"github.com/jhoicas/verificador-pallets/internal/application/ports"
	appsession "github.com/jhoicas/verificador-pallets/internal/application/session"
	"github.com/jhoicas/verificador-pallets/internal/domain"
)

// PDFUseCase genera la representación PDF de una sesión archivada en el
// historial (reporte de conteo con discrepancias).
type PDFUseCase struct {
	gateway   *appsession.Gateway
	generator ports.SessionReportGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(gateway *appsession.Gateway, generator ports.SessionReportGenerator) *PDFUseCase {
	return &PDFUseCase{gateway: gateway, generator: generator}
}

// GenerateSessionPDF busca la sesión archivada por id y genera el PDF.
func (uc *PDFUseCase) GenerateSessionPDF(ctx context.Context, sessionID string) ([]byte, error) {
	for _, entry := range uc.gateway.GetHistory() {
		if entry.SessionID == sessionID {
			return uc.generator.GenerateSessionPDF(ctx, &entry)
		}
	}
	return nil, domain.ErrNotFound
}
