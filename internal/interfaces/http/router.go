package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/verificador-pallets/internal/application/auth"
	"github.com/jhoicas/verificador-pallets/internal/application/report"
	appsession "github.com/jhoicas/verificador-pallets/internal/application/session"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Driver    *appsession.Driver
	Store     *appsession.Store
	Gateway   *appsession.Gateway
	AuthUC    *auth.AuthUseCase
	PDFUC     *report.PDFUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	sessionHandler := NewSessionHandler(deps.Driver, deps.Store)

	// Escaneos y verificación manual (protegido)
	protected.Post("/escaneos", sessionHandler.Scan)
	protected.Post("/pallets/verificar", sessionHandler.Verify)

	// Sesión activa (protegido)
	sesion := protected.Group("/sesion")
	sesion.Get("/", sessionHandler.GetSession)
	sesion.Delete("/", sessionHandler.Discard)
	sesion.Post("/finalizar", sessionHandler.Finish)
	sesion.Get("/recuperacion", sessionHandler.RecoveryStatus)
	sesion.Post("/recuperacion", sessionHandler.RecoveryAction)
	sesion.Post("/pallets", sessionHandler.AddManual)
	sesion.Put("/pallets/:id", sessionHandler.EditManual)
	sesion.Delete("/pallets/:indice", sessionHandler.RemovePallet)
	sesion.Put("/pallets/:id/productos/:indice/conteo", sessionHandler.SetCount)

	// Historial de sesiones archivadas (protegido)
	historyHandler := NewHistoryHandler(deps.Gateway, deps.PDFUC)
	historial := protected.Group("/historial")
	historial.Get("/", historyHandler.List)
	historial.Delete("/", historyHandler.Clear)
	historial.Get("/:id", historyHandler.GetByID)
	historial.Delete("/:id", historyHandler.Delete)
	historial.Get("/:id/pdf", historyHandler.GetPDF)
}
