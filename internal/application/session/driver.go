package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/verificador-pallets/internal/application/ports"
	"github.com/jhoicas/verificador-pallets/internal/domain"
	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
	"github.com/jhoicas/verificador-pallets/internal/domain/identifier"
	"github.com/jhoicas/verificador-pallets/pkg/logger"
)

// debouncePorDefecto es la ventana en la que un mismo texto decodificado no
// vuelve a disparar una consulta: la etiqueta sigue frente a la cámara y el
// decodificador la reporta varias veces seguidas.
const debouncePorDefecto = 2500 * time.Millisecond

// Driver orquesta el flujo completo: identificador -> consulta remota ->
// sesión -> persistencia, y el cierre de sesión con archivado a historial.
// Es el único componente con el que hablan la presentación y el decodificador.
type Driver struct {
	store   *Store
	gateway *Gateway
	remote  ports.RemoteInventory
	confirm ports.Confirmer
	log     *logger.Logger

	// busy garantiza a lo sumo una consulta/envío en vuelo; una segunda
	// solicitud se rechaza con ErrOcupado en lugar de encolarse.
	busy     atomic.Bool
	debounce time.Duration
	now      func() time.Time

	mu        sync.Mutex
	lastScans map[string]time.Time // texto crudo decodificado -> última aceptación
	scanner   ports.ScanController
}

// NewDriver construye el orquestador y suscribe la persistencia a los cambios
// del store, de modo que toda mutación re-persista el snapshot.
func NewDriver(store *Store, gateway *Gateway, remote ports.RemoteInventory, confirm ports.Confirmer, log *logger.Logger) *Driver {
	d := &Driver{
		store:     store,
		gateway:   gateway,
		remote:    remote,
		confirm:   confirm,
		log:       log,
		debounce:  debouncePorDefecto,
		now:       time.Now,
		lastScans: make(map[string]time.Time),
	}
	store.Subscribe(gateway.Autosave)
	return d
}

// BindScanner asocia el colaborador de escaneo activo (si lo hay).
func (d *Driver) BindScanner(sc ports.ScanController) {
	d.mu.Lock()
	d.scanner = sc
	d.mu.Unlock()
}

// ScanOrLookup procesa un identificador escaneado (fromScan=true) o tecleado.
// Eventos de escaneo vacíos se ignoran; un código recién procesado queda
// suprimido por la ventana anti-rebote, haya tenido éxito o no su consulta.
// Fallos de transporte dejan un registro "Error Conexión" en la sesión y se
// devuelven junto con ese registro para que el operador vea ambos.
func (d *Driver) ScanOrLookup(ctx context.Context, rawID string, fromScan bool) (*entity.PalletRecord, error) {
	if fromScan {
		if strings.TrimSpace(rawID) == "" {
			return nil, nil
		}
		if !d.acceptScan(rawID) {
			return nil, domain.ErrEscaneoDuplicado
		}
	}

	id, err := identifier.Normalize(rawID)
	if err != nil {
		return nil, err
	}

	if !d.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrOcupado
	}
	defer d.busy.Store(false)

	d.log.Debug().Str("pallet", id).Bool("escaneo", fromScan).Msg("verificando pallet")

	res, err := d.remote.LookupPallet(ctx, id)
	if err != nil {
		rec := d.store.UpsertErrorRecord(id, entity.StatusErrorConexion)
		d.log.Warn().Err(err).Str("pallet", id).Msg("consulta remota fallida")
		return &rec, err
	}
	rec := d.store.UpsertFromLookup(res, id)
	return &rec, nil
}

// acceptScan aplica la ventana anti-rebote sobre el texto crudo decodificado.
func (d *Driver) acceptScan(raw string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if t, ok := d.lastScans[raw]; ok && now.Sub(t) < d.debounce {
		return false
	}
	// saneo de entradas vencidas para que el mapa no crezca sin límite
	for k, t := range d.lastScans {
		if now.Sub(t) >= d.debounce {
			delete(d.lastScans, k)
		}
	}
	d.lastScans[raw] = now
	return true
}

// FinishSession detiene el escaneo activo y envía la sesión completa para la
// reconciliación autoritativa. Con éxito: archiva a historial, vacía el store
// y el snapshot durable se limpia vía el observador. Con fallo: la sesión
// queda intacta y persistida para reintentar.
func (d *Driver) FinishSession(ctx context.Context) (*ports.SubmitResult, error) {
	if d.store.Len() == 0 {
		return nil, domain.ErrSesionVacia
	}

	d.mu.Lock()
	sc := d.scanner
	d.mu.Unlock()
	if sc != nil {
		sc.Stop()
	}

	if !d.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrOcupado
	}
	defer d.busy.Store(false)

	pallets := d.store.Pallets()
	d.log.Info().Int("pallets", len(pallets)).Msg("enviando sesión para reconciliación")

	res, err := d.remote.SubmitSession(ctx, pallets)
	if err != nil {
		d.log.Warn().Err(err).Msg("envío de sesión fallido, los datos siguen disponibles")
		return nil, err
	}

	entry := d.gateway.AppendHistory(pallets)
	d.store.Reset()
	d.log.Info().Str("sesion", entry.SessionID).Int("pallets", entry.Summary.Total).
		Msg("sesión procesada y archivada")
	return res, nil
}

// DiscardSession descarta la sesión activa sin archivarla. Requiere
// confirmación del operador.
func (d *Driver) DiscardSession() error {
	if !d.confirm.Confirm("Descartar sesión",
		"¿Seguro que desea descartar la sesión actual? Se perderán los conteos ingresados.") {
		return domain.ErrNoConfirmado
	}
	d.store.Reset()
	return nil
}

// RemoveRecord elimina un pallet de la sesión previa confirmación del operador.
func (d *Driver) RemoveRecord(index int) error {
	if !d.confirm.Confirm("Eliminar pallet", "¿Eliminar este pallet de la sesión?") {
		return domain.ErrNoConfirmado
	}
	return d.store.RemoveRecord(index)
}

// HasRecoverableSession indica si hay una sesión reciente para ofrecer recuperar.
func (d *Driver) HasRecoverableSession() bool {
	return d.gateway.HasRecentSession()
}

// RecoverSession rehidrata el store desde el snapshot durable y continúa la
// sesión en curso. Devuelve false si no había nada recuperable.
func (d *Driver) RecoverSession() bool {
	snap := d.gateway.LoadSession()
	if snap == nil || len(snap.Pallets) == 0 {
		return false
	}
	d.store.Rehydrate(snap.Pallets)
	d.log.Info().Str("sesion", snap.SessionID).Int("pallets", len(snap.Pallets)).
		Msg("sesión recuperada")
	return true
}

// DiscardRecovered descarta el snapshot durable y arranca con sesión vacía.
func (d *Driver) DiscardRecovered() {
	d.gateway.ClearSession()
}
