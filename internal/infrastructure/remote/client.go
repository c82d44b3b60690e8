// Package remote implementa el cliente HTTP hacia el servicio de inventario
// remoto (un web app de hoja de cálculo): consulta de pallets por GET y envío
// de la sesión completa por POST.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jhoicas/verificador-pallets/internal/application/ports"
	"github.com/jhoicas/verificador-pallets/internal/domain"
	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
	"github.com/jhoicas/verificador-pallets/pkg/config"
)

const (
	defaultLookupTimeout = 20 * time.Second
	defaultSubmitTimeout = 30 * time.Second

	actionSubmit = "processSessionWithQuantities"

	maxResponseBytes = 1 << 20 // max 1 MB
)

// ── Errores del servidor ──────────────────────────────────────────────────────

// ServerReportedError es un error de negocio reportado en el cuerpo de la
// respuesta de envío (HTTP 200 con {"error": ...}).
type ServerReportedError struct {
	Message string
}

func (e *ServerReportedError) Error() string {
	return "servidor: " + e.Message
}

// ServerHTTPError es una respuesta HTTP no exitosa del servicio remoto.
type ServerHTTPError struct {
	Status int
	Body   string
}

func (e *ServerHTTPError) Error() string {
	return fmt.Sprintf("servidor: HTTP %d", e.Status)
}

// ── Cliente ───────────────────────────────────────────────────────────────────

// Client implementa ports.RemoteInventory contra el endpoint HTTP del script.
// No reintenta: cada fallo se clasifica y se devuelve al orquestador.
type Client struct {
	cfg           config.RemoteConfig
	httpClient    *http.Client
	lookupTimeout time.Duration
	submitTimeout time.Duration
	probeOnline   func() bool
}

// NewClient construye el cliente con los timeouts de la configuración
// (20 s consulta, 30 s envío si no se indican).
func NewClient(cfg config.RemoteConfig) *Client {
	lookup := defaultLookupTimeout
	if cfg.LookupTimeoutS > 0 {
		lookup = time.Duration(cfg.LookupTimeoutS) * time.Second
	}
	submit := defaultSubmitTimeout
	if cfg.SubmitTimeoutS > 0 {
		submit = time.Duration(cfg.SubmitTimeoutS) * time.Second
	}
	c := &Client{
		cfg:           cfg,
		httpClient:    &http.Client{},
		lookupTimeout: lookup,
		submitTimeout: submit,
	}
	c.probeOnline = c.dialProbe
	return c
}

// SetOnlineProbe reemplaza la comprobación de conectividad (para tests).
func (c *Client) SetOnlineProbe(probe func() bool) {
	c.probeOnline = probe
}

var _ ports.RemoteInventory = (*Client)(nil)

// ── Formas del wire ───────────────────────────────────────────────────────────

type lookupResponse struct {
	Error         string               `json:"error"`
	ID            string               `json:"id"`
	Found         bool                 `json:"found"`
	Products      []entity.ProductLine `json:"products"`
	StatusSummary string               `json:"statusSummary"`
}

type submitRequest struct {
	APIKey      string         `json:"apiKey"`
	Action      string         `json:"action"`
	SessionData entity.Session `json:"sessionData"`
}

type submitResponse struct {
	Error   string              `json:"error"`
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Summary ports.SubmitSummary `json:"summary"`
}

// ── LookupPallet ──────────────────────────────────────────────────────────────

// LookupPallet consulta GET ?idpallet=<id>&apiKey=<key> con el timeout de consulta.
func (c *Client) LookupPallet(ctx context.Context, id string) (*ports.LookupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("idpallet", id)
	q.Set("apiKey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("remote: crear request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrRespuestaInvalida, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRespuestaInvalida, err)
	}

	if body.Error != "" {
		return &ports.LookupResult{ServerError: body.Error}, nil
	}
	result := &ports.LookupResult{
		ID:            body.ID,
		Found:         body.Found,
		Products:      body.Products,
		StatusSummary: body.StatusSummary,
	}
	if result.ID == "" {
		result.ID = id
	}
	return result, nil
}

// ── SubmitSession ─────────────────────────────────────────────────────────────

// SubmitSession envía la sesión completa con el timeout de envío. Comprueba la
// conectividad antes de armar la petición para fallar rápido sin esperar el
// timeout completo.
func (c *Client) SubmitSession(ctx context.Context, pallets entity.Session) (*ports.SubmitResult, error) {
	if !c.probeOnline() {
		return nil, domain.ErrSinConexion
	}

	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	payload, err := json.Marshal(submitRequest{
		APIKey:      c.cfg.APIKey,
		Action:      actionSubmit,
		SessionData: pallets,
	})
	if err != nil {
		return nil, fmt.Errorf("remote: serializar sesión: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("remote: crear request: %w", err)
	}
	// text/plain evita el preflight CORS del script; el cuerpo sigue siendo JSON.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServerHTTPError{Status: resp.StatusCode, Body: string(rawBody)}
	}

	var body submitResponse
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRespuestaInvalida, err)
	}
	if body.Error != "" {
		return nil, &ServerReportedError{Message: body.Error}
	}
	if !body.Success {
		return nil, fmt.Errorf("%w: respuesta sin success ni error", domain.ErrRespuestaInvalida)
	}

	return &ports.SubmitResult{Message: body.Message, Summary: body.Summary}, nil
}

// ── Clasificación de fallos ───────────────────────────────────────────────────

// classifyTransportError separa timeouts (ErrTimeout) del resto de fallos de
// red (ErrRed), conservando la causa original en la cadena.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrRed, err)
}

// dialProbe comprueba conectividad abriendo un TCP corto contra el host del
// endpoint configurado. Sin URL configurada asumimos desconectado.
func (c *Client) dialProbe() bool {
	u, err := url.Parse(c.cfg.URL)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Host
	if u.Port() == "" {
		port := "443"
		if u.Scheme == "http" {
			port = "80"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	conn, err := net.DialTimeout("tcp", host, 3*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
