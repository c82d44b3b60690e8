package entity

// Session es la secuencia ordenada de pallets de una pasada de verificación.
// El orden es significativo: es el orden en que el operador escaneó.
type Session []PalletRecord

// Clone copia profunda de la sesión.
func (s Session) Clone() Session {
	if s == nil {
		return nil
	}
	c := make(Session, len(s))
	for i, r := range s {
		c[i] = r.Clone()
	}
	return c
}

// SessionSummary agregado derivado de una sesión; se recalcula al escribir,
// nunca se edita a mano.
type SessionSummary struct {
	Total          int `json:"total"`
	Found          int `json:"found"`
	NotFound       int `json:"notFound"`
	WithCounts     int `json:"withCounts"`
	CompletedItems int `json:"completedItems"`
}

// Summary recalcula el agregado: NotFound incluye todo registro que el sistema
// no reconoció (no encontrados y errores); WithCounts cuenta pallets con al
// menos un producto contado; CompletedItems cuenta líneas de producto contadas.
func (s Session) Summary() SessionSummary {
	sum := SessionSummary{Total: len(s)}
	for _, r := range s {
		if r.Found {
			sum.Found++
		} else {
			sum.NotFound++
		}
		counted := r.CountedProducts()
		if counted > 0 {
			sum.WithCounts++
		}
		sum.CompletedItems += counted
	}
	return sum
}

// SessionSnapshot es la forma durable de la sesión activa.
type SessionSnapshot struct {
	Pallets   Session `json:"pallets"`
	Timestamp int64   `json:"timestamp"` // epoch millis de la última escritura
	SessionID string  `json:"sessionId"`
}

// HistoryEntry es una sesión archivada tras enviarse con éxito. No se muta
// después de creada, salvo borrado completo por id o limpieza total.
type HistoryEntry struct {
	SessionID string         `json:"sessionId"`
	Timestamp int64          `json:"timestamp"`
	Pallets   Session        `json:"pallets"`
	Summary   SessionSummary `json:"summary"`
}
