package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/verificador-pallets/internal/application/auth"
	"github.com/jhoicas/verificador-pallets/internal/application/dto"
	"github.com/jhoicas/verificador-pallets/internal/application/ports"
	"github.com/jhoicas/verificador-pallets/internal/application/report"
	appsession "github.com/jhoicas/verificador-pallets/internal/application/session"
	"github.com/jhoicas/verificador-pallets/internal/domain"
	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
	"github.com/jhoicas/verificador-pallets/internal/infrastructure/memoria"
	infrapdf "github.com/jhoicas/verificador-pallets/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/verificador-pallets/internal/interfaces/http"
	"github.com/jhoicas/verificador-pallets/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Doble del servicio remoto
// ──────────────────────────────────────────────────────────────────────────────

type scriptedRemote struct {
	lookups   map[string]*ports.LookupResult
	lookupErr error
	submitErr error
}

func (s *scriptedRemote) LookupPallet(_ context.Context, id string) (*ports.LookupResult, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if res, ok := s.lookups[id]; ok {
		return res, nil
	}
	return &ports.LookupResult{ID: id, Found: false}, nil
}

func (s *scriptedRemote) SubmitSession(_ context.Context, _ entity.Session) (*ports.SubmitResult, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &ports.SubmitResult{Message: "ok", Summary: ports.SubmitSummary{PalletsProcesados: 1}}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// App de test completa (sin anti-rebote: los tests teclean los ids)
// ──────────────────────────────────────────────────────────────────────────────

func buildSessionTestApp(t *testing.T, remote ports.RemoteInventory) *fiber.App {
	t.Helper()

	log := logger.Nop()
	store := appsession.NewStore(log)
	gateway := appsession.NewGateway(memoria.NewStorage(), log)
	driver := appsession.NewDriver(store, gateway, remote, ports.AutoConfirm{}, log)

	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)
	operators := map[string]string{testUsuario: string(hash)}
	authUC := auth.NewAuthUseCase(operators, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	})
	pdfUC := report.NewPDFUseCase(gateway, infrapdf.NewMarotoReportGenerator())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Driver:    driver,
		Store:     store,
		Gateway:   gateway,
		AuthUC:    authUC,
		PDFUC:     pdfUC,
		JWTSecret: testJWTSecret,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenFor(t, testUsuario))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func palletWithProducts(id string, codes ...string) *ports.LookupResult {
	products := make([]entity.ProductLine, 0, len(codes))
	for _, c := range codes {
		products = append(products, entity.ProductLine{CodigoArticulo: c, NombreProducto: "Producto " + c})
	}
	return &ports.LookupResult{ID: id, Found: true, Products: products}
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de verificación
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_VerificarYConsultarSesion(t *testing.T) {
	remote := &scriptedRemote{lookups: map[string]*ports.LookupResult{
		"PAL-1": palletWithProducts("PAL-1", "A-1", "A-2"),
	}}
	app := buildSessionTestApp(t, remote)

	resp := doJSON(t, app, http.MethodPost, "/api/pallets/verificar", dto.VerifyRequest{ID: " PAL-1 "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	scan := decode[dto.ScanResponse](t, resp)
	require.NotNil(t, scan.Pallet)
	assert.Equal(t, "PAL-1", scan.Pallet.ID, "el id se normaliza antes de consultar")

	resp = doJSON(t, app, http.MethodGet, "/api/sesion", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ses := decode[dto.SessionResponse](t, resp)
	require.Len(t, ses.Pallets, 1)
	assert.Equal(t, 1, ses.Summary.Found)
}

// Contar, re-verificar el mismo pallet y comprobar que el conteo sobrevive.
func TestAPI_ReescaneoPreservaConteo(t *testing.T) {
	remote := &scriptedRemote{lookups: map[string]*ports.LookupResult{
		"PAL-1": palletWithProducts("PAL-1", "A-1"),
	}}
	app := buildSessionTestApp(t, remote)

	doJSON(t, app, http.MethodPost, "/api/pallets/verificar", dto.VerifyRequest{ID: "PAL-1"}).Body.Close()

	resp := doJSON(t, app, http.MethodPut, "/api/sesion/pallets/PAL-1/productos/0/conteo", dto.CountRequest{Valor: "7"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	doJSON(t, app, http.MethodPost, "/api/pallets/verificar", dto.VerifyRequest{ID: "PAL-1"}).Body.Close()

	ses := decode[dto.SessionResponse](t, doJSON(t, app, http.MethodGet, "/api/sesion", nil))
	require.Len(t, ses.Pallets, 1)
	require.NotNil(t, ses.Pallets[0].Products[0].CantidadContada)
	assert.Equal(t, "7", ses.Pallets[0].Products[0].CantidadContada.String())
	assert.Equal(t, 1, ses.Summary.CompletedItems)
}

func TestAPI_FalloRemotoDevuelve502YDejaRegistro(t *testing.T) {
	remote := &scriptedRemote{lookupErr: domain.ErrTimeout}
	app := buildSessionTestApp(t, remote)

	resp := doJSON(t, app, http.MethodPost, "/api/pallets/verificar", dto.VerifyRequest{ID: "PAL-1"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()

	ses := decode[dto.SessionResponse](t, doJSON(t, app, http.MethodGet, "/api/sesion", nil))
	require.Len(t, ses.Pallets, 1)
	assert.Equal(t, entity.StatusErrorConexion, ses.Pallets[0].StatusSummary)
}

func TestAPI_AgregarManualDuplicadoDevuelve409(t *testing.T) {
	app := buildSessionTestApp(t, &scriptedRemote{})

	resp := doJSON(t, app, http.MethodPost, "/api/sesion/pallets", dto.ManualPalletRequest{ID: "PAL-M"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/sesion/pallets", dto.ManualPalletRequest{ID: "PAL-M"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_SinTokenDevuelve401(t *testing.T) {
	app := buildSessionTestApp(t, &scriptedRemote{})

	req := httptest.NewRequest(http.MethodGet, "/api/sesion", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Login(t *testing.T) {
	app := buildSessionTestApp(t, &scriptedRemote{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewBufferString(`{"usuario":"operador1","pin":"1234"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.LoginResponse](t, resp)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "operador1", out.Usuario)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewBufferString(`{"usuario":"operador1","pin":"0000"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre, historial y PDF
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_FinalizarArchivaYGeneraPDF(t *testing.T) {
	remote := &scriptedRemote{lookups: map[string]*ports.LookupResult{
		"PAL-1": palletWithProducts("PAL-1", "A-1"),
	}}
	app := buildSessionTestApp(t, remote)

	doJSON(t, app, http.MethodPost, "/api/pallets/verificar", dto.VerifyRequest{ID: "PAL-1"}).Body.Close()

	resp := doJSON(t, app, http.MethodPost, "/api/sesion/finalizar", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sub := decode[dto.SubmitResponse](t, resp)
	assert.Equal(t, "ok", sub.Message)

	// La sesión quedó vacía; un segundo finalizar es 400.
	resp = doJSON(t, app, http.MethodPost, "/api/sesion/finalizar", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	history := decode[[]entity.HistoryEntry](t, doJSON(t, app, http.MethodGet, "/api/historial", nil))
	require.Len(t, history, 1)

	resp = doJSON(t, app, http.MethodGet, "/api/historial/"+history[0].SessionID+"/pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/historial/no-existe/pdf", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_FinalizarConFalloRemotoConservaLaSesion(t *testing.T) {
	remote := &scriptedRemote{
		lookups:   map[string]*ports.LookupResult{"PAL-1": palletWithProducts("PAL-1", "A-1")},
		submitErr: domain.ErrSinConexion,
	}
	app := buildSessionTestApp(t, remote)

	doJSON(t, app, http.MethodPost, "/api/pallets/verificar", dto.VerifyRequest{ID: "PAL-1"}).Body.Close()

	resp := doJSON(t, app, http.MethodPost, "/api/sesion/finalizar", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()

	ses := decode[dto.SessionResponse](t, doJSON(t, app, http.MethodGet, "/api/sesion", nil))
	assert.Len(t, ses.Pallets, 1, "la sesión sigue disponible para reintentar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Recuperación
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Recuperacion(t *testing.T) {
	remote := &scriptedRemote{lookups: map[string]*ports.LookupResult{
		"PAL-1": palletWithProducts("PAL-1", "A-1"),
	}}
	app := buildSessionTestApp(t, remote)

	rec := decode[dto.RecoveryResponse](t, doJSON(t, app, http.MethodGet, "/api/sesion/recuperacion", nil))
	assert.False(t, rec.Recoverable)

	resp := doJSON(t, app, http.MethodPost, "/api/sesion/recuperacion", dto.RecoveryActionRequest{Accion: "recuperar"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/sesion/recuperacion", dto.RecoveryActionRequest{Accion: "otra"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
