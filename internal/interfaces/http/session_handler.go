package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/verificador-pallets/internal/application/dto"
	appsession "github.com/jhoicas/verificador-pallets/internal/application/session"
	"github.com/jhoicas/verificador-pallets/internal/domain"
	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
)

// SessionHandler expone la sesión de verificación: escaneos, consulta manual,
// conteos, altas/ediciones manuales, cierre, descarte y recuperación.
type SessionHandler struct {
	driver *appsession.Driver
	store  *appsession.Store
}

// NewSessionHandler construye el handler de sesión.
func NewSessionHandler(driver *appsession.Driver, store *appsession.Store) *SessionHandler {
	return &SessionHandler{driver: driver, store: store}
}

// Scan godoc
// @Summary      Procesar un código escaneado
// @Tags         sesion
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "código decodificado"
// @Success      200   {object}  dto.ScanResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/escaneos [post]
func (h *SessionHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.driver.ScanOrLookup(c.UserContext(), in.Codigo, true)
	return h.lookupReply(c, rec, err)
}

// Verify godoc
// @Summary      Verificar un pallet tecleado a mano
// @Tags         sesion
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyRequest  true  "id del pallet"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/pallets/verificar [post]
func (h *SessionHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.driver.ScanOrLookup(c.UserContext(), in.ID, false)
	return h.lookupReply(c, rec, err)
}

// lookupReply traduce el resultado de ScanOrLookup a la respuesta HTTP. Un
// fallo remoto devuelve 502 con el registro de error ya integrado en la
// sesión, para que el cliente muestre ambos.
func (h *SessionHandler) lookupReply(c *fiber.Ctx, rec *entity.PalletRecord, err error) error {
	switch {
	case err == nil && rec == nil:
		// escaneo vacío: no hay nada que hacer
		return c.JSON(dto.ScanResponse{Ignored: true})
	case err == nil:
		return c.JSON(dto.ScanResponse{Pallet: rec})
	case errors.Is(err, domain.ErrEscaneoDuplicado):
		return c.JSON(dto.ScanResponse{Ignored: true, Message: "código repetido, suprimido por anti-rebote"})
	case errors.Is(err, domain.ErrIdentificadorVacio):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "identificador vacío"})
	case errors.Is(err, domain.ErrOcupado):
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "BUSY", Message: "hay una operación en curso"})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "REMOTE", Message: err.Error()})
	}
}

// GetSession godoc
// @Summary      Sesión activa con su resumen
// @Tags         sesion
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/sesion [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	return c.JSON(dto.SessionResponse{
		Pallets: h.store.Pallets(),
		Summary: h.store.Summary(),
	})
}

// SetCount godoc
// @Summary      Fijar la cantidad contada de un producto
// @Tags         sesion
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "id del pallet"
// @Param        indice  path  int     true  "índice del producto"
// @Param        body    body  dto.CountRequest  true  "valor crudo; vacío limpia"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/sesion/pallets/{id}/productos/{indice}/conteo [put]
func (h *SessionHandler) SetCount(c *fiber.Ctx) error {
	var in dto.CountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	indice, err := c.ParamsInt("indice")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "índice inválido"})
	}
	h.store.SetCountedQuantity(c.Params("id"), indice, in.Valor)
	return h.GetSession(c)
}

// AddManual godoc
// @Summary      Agregar un pallet manualmente
// @Tags         sesion
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ManualPalletRequest  true  "pallet"
// @Success      201  {object}  entity.PalletRecord
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sesion/pallets [post]
func (h *SessionHandler) AddManual(c *fiber.Ctx) error {
	var in dto.ManualPalletRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id es requerido"})
	}
	for _, r := range h.store.Pallets() {
		if r.ID == in.ID {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "ya existe un pallet con ese id en la sesión"})
		}
	}
	rec := h.store.AddManualRecord(entity.PalletRecord{
		ID:            in.ID,
		Found:         true,
		StatusSummary: in.StatusSummary,
		Products:      in.Products,
	})
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// EditManual godoc
// @Summary      Reemplazar un pallet (edición manual)
// @Tags         sesion
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id del pallet"
// @Param        body  body  dto.ManualPalletRequest  true  "pallet editado"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sesion/pallets/{id} [put]
func (h *SessionHandler) EditManual(c *fiber.Ctx) error {
	var in dto.ManualPalletRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	id := c.Params("id")
	recID := in.ID
	if recID == "" {
		recID = id
	}
	err := h.store.ReplaceRecord(id, entity.PalletRecord{
		ID:            recID,
		Found:         true,
		StatusSummary: in.StatusSummary,
		Products:      in.Products,
	})
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay un pallet con ese id en la sesión"})
	}
	return h.GetSession(c)
}

// RemovePallet godoc
// @Summary      Eliminar un pallet de la sesión por posición
// @Tags         sesion
// @Produce      json
// @Param        indice  path  int  true  "posición en la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sesion/pallets/{indice} [delete]
func (h *SessionHandler) RemovePallet(c *fiber.Ctx) error {
	indice, err := c.ParamsInt("indice")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "índice inválido"})
	}
	switch err := h.driver.RemoveRecord(indice); {
	case errors.Is(err, domain.ErrIndiceInvalido):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay un pallet en esa posición"})
	case errors.Is(err, domain.ErrNoConfirmado):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_CONFIRMED", Message: "acción no confirmada"})
	}
	return h.GetSession(c)
}

// Finish godoc
// @Summary      Finalizar la sesión y enviarla para reconciliación
// @Tags         sesion
// @Produce      json
// @Success      200  {object}  dto.SubmitResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/sesion/finalizar [post]
func (h *SessionHandler) Finish(c *fiber.Ctx) error {
	res, err := h.driver.FinishSession(c.UserContext())
	switch {
	case err == nil:
		return c.JSON(dto.SubmitResponse{Message: res.Message, Summary: res.Summary})
	case errors.Is(err, domain.ErrSesionVacia):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EMPTY_SESSION", Message: "no hay pallets en la sesión"})
	case errors.Is(err, domain.ErrOcupado):
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "BUSY", Message: "hay una operación en curso"})
	case errors.Is(err, domain.ErrSinConexion):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "OFFLINE", Message: "sin conexión; la sesión sigue guardada para reintentar"})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "REMOTE", Message: err.Error()})
	}
}

// Discard godoc
// @Summary      Descartar la sesión activa sin archivarla
// @Tags         sesion
// @Produce      json
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sesion [delete]
func (h *SessionHandler) Discard(c *fiber.Ctx) error {
	if err := h.driver.DiscardSession(); errors.Is(err, domain.ErrNoConfirmado) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NOT_CONFIRMED", Message: "acción no confirmada"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecoveryStatus godoc
// @Summary      ¿Hay una sesión reciente recuperable?
// @Tags         sesion
// @Produce      json
// @Success      200  {object}  dto.RecoveryResponse
// @Router       /api/sesion/recuperacion [get]
func (h *SessionHandler) RecoveryStatus(c *fiber.Ctx) error {
	return c.JSON(dto.RecoveryResponse{Recoverable: h.driver.HasRecoverableSession()})
}

// RecoveryAction godoc
// @Summary      Recuperar o descartar la sesión pendiente
// @Tags         sesion
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecoveryActionRequest  true  "accion: recuperar | descartar"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sesion/recuperacion [post]
func (h *SessionHandler) RecoveryAction(c *fiber.Ctx) error {
	var in dto.RecoveryActionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	switch in.Accion {
	case "recuperar":
		if !h.driver.RecoverSession() {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay sesión recuperable"})
		}
		return h.GetSession(c)
	case "descartar":
		h.driver.DiscardRecovered()
		return h.GetSession(c)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "accion debe ser recuperar o descartar"})
	}
}
