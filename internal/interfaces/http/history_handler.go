package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/verificador-pallets/internal/application/dto"
	"github.com/jhoicas/verificador-pallets/internal/application/report"
	appsession "github.com/jhoicas/verificador-pallets/internal/application/session"
	"github.com/jhoicas/verificador-pallets/internal/domain"
	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
)

// HistoryHandler expone el historial de sesiones archivadas.
type HistoryHandler struct {
	gateway *appsession.Gateway
	pdfUC   *report.PDFUseCase
}

// NewHistoryHandler construye el handler de historial.
func NewHistoryHandler(gateway *appsession.Gateway, pdfUC *report.PDFUseCase) *HistoryHandler {
	return &HistoryHandler{gateway: gateway, pdfUC: pdfUC}
}

// List godoc
// @Summary      Historial de sesiones (más nueva primero)
// @Tags         historial
// @Produce      json
// @Success      200  {array}  entity.HistoryEntry
// @Router       /api/historial [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	history := h.gateway.GetHistory()
	if history == nil {
		history = []entity.HistoryEntry{}
	}
	return c.JSON(history)
}

// GetByID godoc
// @Summary      Sesión archivada por id
// @Tags         historial
// @Produce      json
// @Param        id  path  string  true  "id de sesión"
// @Success      200  {object}  entity.HistoryEntry
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/historial/{id} [get]
func (h *HistoryHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	for _, e := range h.gateway.GetHistory() {
		if e.SessionID == id {
			return c.JSON(e)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sesión no encontrada en el historial"})
}

// GetPDF godoc
// @Summary      Reporte PDF de una sesión archivada
// @Tags         historial
// @Produce      application/pdf
// @Param        id  path  string  true  "id de sesión"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/historial/{id}/pdf [get]
func (h *HistoryHandler) GetPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.pdfUC.GenerateSessionPDF(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sesión no encontrada en el historial"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=verificacion-%s.pdf", id))
	return c.Send(data)
}

// Delete godoc
// @Summary      Eliminar una sesión archivada
// @Tags         historial
// @Produce      json
// @Param        id  path  string  true  "id de sesión"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/historial/{id} [delete]
func (h *HistoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.gateway.DeleteHistoryEntry(c.Params("id")); errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sesión no encontrada en el historial"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Clear godoc
// @Summary      Vaciar el historial completo
// @Tags         historial
// @Success      204
// @Router       /api/historial [delete]
func (h *HistoryHandler) Clear(c *fiber.Ctx) error {
	h.gateway.ClearHistory()
	return c.SendStatus(fiber.StatusNoContent)
}
