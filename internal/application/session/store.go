package session

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/verificador-pallets/internal/application/ports"
	"github.com/jhoicas/verificador-pallets/internal/domain"
	"github.com/jhoicas/verificador-pallets/internal/domain/entity"
	"github.com/jhoicas/verificador-pallets/pkg/logger"
)

// Store mantiene la secuencia ordenada de pallets de la sesión activa.
// Toda mutación pasa por sus métodos; nadie más toca los registros. Los
// suscriptores (persistencia, presentación) se notifican después de cada
// mutación con una copia profunda de la sesión, por lo que la escritura
// durable siempre queda secuenciada detrás de la mutación en memoria.
type Store struct {
	mu        sync.Mutex
	pallets   entity.Session
	listeners []func(entity.Session)
	log       *logger.Logger
}

// NewStore construye el store vacío.
func NewStore(log *logger.Logger) *Store {
	return &Store{log: log}
}

// Subscribe registra un observador de cambios de sesión.
func (s *Store) Subscribe(fn func(entity.Session)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify(snapshot entity.Session) {
	s.mu.Lock()
	listeners := make([]func(entity.Session), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(snapshot)
	}
}

// UpsertFromLookup clasifica el resultado remoto y lo integra en la sesión:
//
//  1. error reportado por el servidor -> registro "Error Servidor", sin
//     duplicar por (id, estado);
//  2. found=false -> registro "No Encontrado"; re-escaneos reemplazan el
//     existente en su posición (a lo sumo uno por id);
//  3. found=true -> candidato con conteos en cero ausente; si ya existe un
//     registro con el mismo id se copian las cantidades contadas por código
//     de artículo y se reemplaza en la misma posición, si no se agrega.
//
// Devuelve el registro que debe mostrarse.
func (s *Store) UpsertFromLookup(res *ports.LookupResult, id string) entity.PalletRecord {
	if res.ServerError != "" {
		return s.UpsertErrorRecord(id, entity.StatusErrorServidor)
	}

	recID := res.ID
	if strings.TrimSpace(recID) == "" {
		recID = id
	}

	var candidate entity.PalletRecord
	if !res.Found {
		candidate = entity.PalletRecord{
			ID:            recID,
			Found:         false,
			Products:      []entity.ProductLine{},
			StatusSummary: statusOr(res.StatusSummary, entity.StatusNoEncontrado),
		}
	} else {
		products := make([]entity.ProductLine, len(res.Products))
		for i, p := range res.Products {
			np := p.Clone()
			np.CantidadContada = nil // el sistema nunca trae conteos
			products[i] = np
		}
		candidate = entity.PalletRecord{
			ID:            recID,
			Found:         true,
			Products:      products,
			StatusSummary: statusOr(res.StatusSummary, entity.StatusMixto),
		}
	}

	s.mu.Lock()
	idx := s.indexByIDLocked(candidate.ID)
	if idx >= 0 {
		// Re-escaneo: preservar el trabajo del operador por código de artículo.
		existing := s.pallets[idx]
		for i := range candidate.Products {
			code := candidate.Products[i].CodigoArticulo
			if code == "" {
				continue
			}
			for _, ep := range existing.Products {
				if ep.CodigoArticulo == code && ep.CantidadContada != nil {
					v := *ep.CantidadContada
					candidate.Products[i].CantidadContada = &v
					break
				}
			}
		}
		s.pallets[idx] = candidate
	} else {
		s.pallets = append(s.pallets, candidate)
	}
	snap := s.pallets.Clone()
	s.mu.Unlock()

	s.notify(snap)
	return candidate.Clone()
}

// UpsertErrorRecord registra un intento fallido (Error Servidor / Error
// Conexión) para que el operador conserve el rastro del fallo en la lista.
// Entradas repetidas para el mismo (id, estado) se suprimen.
func (s *Store) UpsertErrorRecord(id, status string) entity.PalletRecord {
	s.mu.Lock()
	for _, r := range s.pallets {
		if r.ID == id && r.StatusSummary == status {
			existing := r.Clone()
			s.mu.Unlock()
			return existing
		}
	}
	rec := entity.PalletRecord{
		ID:            id,
		Found:         false,
		Products:      []entity.ProductLine{},
		StatusSummary: status,
	}
	s.pallets = append(s.pallets, rec)
	snap := s.pallets.Clone()
	s.mu.Unlock()

	s.notify(snap)
	return rec.Clone()
}

// SetCountedQuantity fija la cantidad contada de un producto a partir del
// valor crudo del input. Vacío o no numérico limpia el campo (vuelve a
// ausente). Si id/índice no resuelven a un producto existente es una
// violación de contrato del llamador: se registra y no se hace nada.
func (s *Store) SetCountedQuantity(id string, productIndex int, rawValue string) {
	s.mu.Lock()
	idx := s.indexByIDLocked(id)
	if idx < 0 || productIndex < 0 || productIndex >= len(s.pallets[idx].Products) {
		s.mu.Unlock()
		s.log.Warn().Str("pallet", id).Int("producto", productIndex).
			Msg("conteo sobre producto inexistente, se ignora")
		return
	}
	p := &s.pallets[idx].Products[productIndex]
	raw := strings.TrimSpace(rawValue)
	if raw == "" {
		p.CantidadContada = nil
	} else if d, err := decimal.NewFromString(raw); err == nil {
		p.CantidadContada = &d
	} else {
		p.CantidadContada = nil
	}
	snap := s.pallets.Clone()
	s.mu.Unlock()

	s.notify(snap)
}

// AddManualRecord agrega un registro armado por el operador, sin lógica de
// fusión: el llamador garantiza que el id no duplica uno existente.
func (s *Store) AddManualRecord(record entity.PalletRecord) entity.PalletRecord {
	record.IsManuallyAdded = true
	if record.StatusSummary == "" {
		record.StatusSummary = entity.StatusAgregadoManual
	}
	if record.Products == nil {
		record.Products = []entity.ProductLine{}
	}

	s.mu.Lock()
	s.pallets = append(s.pallets, record.Clone())
	snap := s.pallets.Clone()
	s.mu.Unlock()

	s.notify(snap)
	return record
}

// ReplaceRecord reemplaza el registro con el id dado (edición manual).
func (s *Store) ReplaceRecord(id string, record entity.PalletRecord) error {
	record.IsManuallyEdited = true
	if record.StatusSummary == "" {
		record.StatusSummary = entity.StatusEditado
	}

	s.mu.Lock()
	idx := s.indexByIDLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	s.pallets[idx] = record.Clone()
	snap := s.pallets.Clone()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// RemoveRecord elimina el registro en la posición dada.
func (s *Store) RemoveRecord(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.pallets) {
		s.mu.Unlock()
		return domain.ErrIndiceInvalido
	}
	s.pallets = append(s.pallets[:index], s.pallets[index+1:]...)
	snap := s.pallets.Clone()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// Reset vacía la sesión (tras envío exitoso o descarte explícito).
func (s *Store) Reset() {
	s.mu.Lock()
	s.pallets = nil
	s.mu.Unlock()

	s.notify(entity.Session{})
}

// Rehydrate restaura la sesión desde un snapshot recuperado.
func (s *Store) Rehydrate(pallets entity.Session) {
	s.mu.Lock()
	s.pallets = pallets.Clone()
	snap := s.pallets.Clone()
	s.mu.Unlock()

	s.notify(snap)
}

// Pallets devuelve una copia profunda de la sesión actual.
func (s *Store) Pallets() entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pallets.Clone()
}

// Len devuelve la cantidad de registros en la sesión.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pallets)
}

// Summary recalcula el agregado de la sesión actual.
func (s *Store) Summary() entity.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pallets.Summary()
}

func (s *Store) indexByIDLocked(id string) int {
	for i, r := range s.pallets {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func statusOr(status, fallback string) string {
	if status == "" {
		return fallback
	}
	return status
}
