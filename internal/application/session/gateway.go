package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/verificador-pallets/internal/domain"
	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
	"github.com/jhoicas/verificador-pallets/internal/domain/repository"
	"github.com/jhoicas/verificador-pallets/pkg/logger"
)

// Claves del almacenamiento durable (valores string con JSON serializado).
const (
	keySesionActiva    = "verificador_sesion_activa"
	keySesionTimestamp = "verificador_sesion_timestamp"
	keyHistorial       = "verificador_historial"
)

const (
	// historialMax acota el historial: anillo de 50 entradas, más nueva primero.
	historialMax = 50
	// sesionVigencia limita qué tan vieja puede ser una sesión para ofrecer recuperarla.
	sesionVigencia = 24 * time.Hour
)

// Gateway resguarda la sesión activa y el historial de sesiones completadas en
// el almacenamiento durable. Es el único componente que lee/escribe ese
// almacenamiento. La persistencia es best-effort: los fallos se registran y
// nunca interrumpen el flujo en memoria.
type Gateway struct {
	storage repository.KVStorage
	log     *logger.Logger
	now     func() time.Time

	mu sync.Mutex
	// sessionID se acuña una sola vez al pasar de Empty a Active y se reutiliza
	// en cada guardado de esa sesión lógica (y en su entrada de historial).
	sessionID string
}

// NewGateway construye el gateway sobre el almacenamiento dado.
func NewGateway(storage repository.KVStorage, log *logger.Logger) *Gateway {
	return &Gateway{storage: storage, log: log, now: time.Now}
}

// Autosave es el observador que se suscribe al Store: una sesión vacía limpia
// el snapshot durable (ciclo Submitted/Abandoned), cualquier otra lo guarda.
func (g *Gateway) Autosave(pallets entity.Session) {
	if len(pallets) == 0 {
		g.ClearSession()
		return
	}
	g.SaveSession(pallets)
}

// SaveSession guarda el snapshot de la sesión activa. Nunca devuelve error:
// un fallo de escritura (cuota, corrupción) se registra y el flujo continúa.
func (g *Gateway) SaveSession(pallets entity.Session) {
	g.mu.Lock()
	if g.sessionID == "" {
		g.sessionID = uuid.New().String()
	}
	id := g.sessionID
	g.mu.Unlock()

	snap := entity.SessionSnapshot{
		Pallets:   pallets,
		Timestamp: g.now().UnixMilli(),
		SessionID: id,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		g.log.Error().Err(err).Msg("serializar snapshot de sesión")
		return
	}
	ctx := context.Background()
	if err := g.storage.Set(ctx, keySesionActiva, string(data)); err != nil {
		g.log.Warn().Err(err).Msg("guardar snapshot de sesión")
		return
	}
	if err := g.storage.Set(ctx, keySesionTimestamp, strconv.FormatInt(snap.Timestamp, 10)); err != nil {
		g.log.Warn().Err(err).Msg("guardar timestamp de sesión")
	}
}

// LoadSession lee el snapshot durable. Datos ausentes o malformados devuelven
// nil, nunca error. Si hay snapshot, el gateway adopta su sessionID para que
// los guardados posteriores de la sesión recuperada conserven el mismo id.
func (g *Gateway) LoadSession() *entity.SessionSnapshot {
	raw, ok, err := g.storage.Get(context.Background(), keySesionActiva)
	if err != nil {
		g.log.Warn().Err(err).Msg("leer snapshot de sesión")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var snap entity.SessionSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		g.log.Warn().Err(err).Msg("snapshot de sesión corrupto, se ignora")
		return nil
	}
	g.mu.Lock()
	g.sessionID = snap.SessionID
	g.mu.Unlock()
	return &snap
}

// ClearSession elimina el snapshot durable y cierra la sesión lógica.
func (g *Gateway) ClearSession() {
	ctx := context.Background()
	if err := g.storage.Delete(ctx, keySesionActiva); err != nil {
		g.log.Warn().Err(err).Msg("limpiar snapshot de sesión")
	}
	if err := g.storage.Delete(ctx, keySesionTimestamp); err != nil {
		g.log.Warn().Err(err).Msg("limpiar timestamp de sesión")
	}
	g.mu.Lock()
	g.sessionID = ""
	g.mu.Unlock()
}

// HasRecentSession indica si existe un snapshot no vacío con menos de 24
// horas; con eso se decide ofrecer la recuperación al arrancar.
func (g *Gateway) HasRecentSession() bool {
	raw, ok, err := g.storage.Get(context.Background(), keySesionActiva)
	if err != nil || !ok || raw == "" {
		return false
	}
	var snap entity.SessionSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return false
	}
	if len(snap.Pallets) == 0 {
		return false
	}
	ts := snap.Timestamp
	if tsRaw, ok, err := g.storage.Get(context.Background(), keySesionTimestamp); err == nil && ok {
		if parsed, err := strconv.ParseInt(tsRaw, 10, 64); err == nil {
			ts = parsed
		}
	}
	age := g.now().Sub(time.UnixMilli(ts))
	return age >= 0 && age < sesionVigencia
}

// AppendHistory archiva una sesión enviada con éxito: recalcula el resumen,
// la antepone al historial y recorta a las 50 entradas más recientes.
func (g *Gateway) AppendHistory(pallets entity.Session) entity.HistoryEntry {
	g.mu.Lock()
	id := g.sessionID
	g.mu.Unlock()
	if id == "" {
		id = uuid.New().String()
	}

	entry := entity.HistoryEntry{
		SessionID: id,
		Timestamp: g.now().UnixMilli(),
		Pallets:   pallets.Clone(),
		Summary:   pallets.Summary(),
	}

	history := append([]entity.HistoryEntry{entry}, g.GetHistory()...)
	if len(history) > historialMax {
		history = history[:historialMax]
	}
	g.writeHistory(history)
	return entry
}

// GetHistory devuelve el historial (más nueva primero). Datos malformados se
// tratan como historial vacío.
func (g *Gateway) GetHistory() []entity.HistoryEntry {
	raw, ok, err := g.storage.Get(context.Background(), keyHistorial)
	if err != nil {
		g.log.Warn().Err(err).Msg("leer historial")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var history []entity.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		g.log.Warn().Err(err).Msg("historial corrupto, se ignora")
		return nil
	}
	return history
}

// DeleteHistoryEntry elimina una sesión archivada por id.
func (g *Gateway) DeleteHistoryEntry(sessionID string) error {
	history := g.GetHistory()
	out := history[:0]
	found := false
	for _, e := range history {
		if e.SessionID == sessionID {
			found = true
			continue
		}
		out = append(out, e)
	}
	if !found {
		return domain.ErrNotFound
	}
	g.writeHistory(out)
	return nil
}

// ClearHistory elimina todo el historial.
func (g *Gateway) ClearHistory() {
	if err := g.storage.Delete(context.Background(), keyHistorial); err != nil {
		g.log.Warn().Err(err).Msg("limpiar historial")
	}
}

func (g *Gateway) writeHistory(history []entity.HistoryEntry) {
	data, err := json.Marshal(history)
	if err != nil {
		g.log.Error().Err(err).Msg("serializar historial")
		return
	}
	if err := g.storage.Set(context.Background(), keyHistorial, string(data)); err != nil {
		g.log.Warn().Err(err).Msg("guardar historial")
	}
}
