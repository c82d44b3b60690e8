// Package file implementa el almacenamiento clave-valor durable sobre un único
// archivo JSON local. Es el driver por defecto: el verificador corre en un
// equipo de bodega sin base de datos.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jhoicas/verificador-pallets/internal/domain/repository"
	"github.com/jhoicas/verificador-pallets/pkg/logger"
)

// Storage guarda todas las claves en un mapa serializado a un archivo JSON.
// Cada escritura reescribe el archivo completo vía archivo temporal + rename
// para que un corte a mitad de escritura no corrompa el snapshot anterior.
type Storage struct {
	path string
	log  *logger.Logger

	mu   sync.Mutex
	data map[string]string
}

var _ repository.KVStorage = (*Storage)(nil)

// NewStorage abre (o crea) el archivo en path. Un archivo corrupto no es
// fatal: se arranca con el estado vacío y se deja constancia en el log.
func NewStorage(path string, log *logger.Logger) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file: crear directorio: %w", err)
	}

	s := &Storage{path: path, log: log, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: leer %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("archivo de almacenamiento corrupto, se arranca vacío")
		s.data = make(map[string]string)
	}
	return s, nil
}

// Get devuelve el valor y ok=false si la clave no existe.
func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set escribe la clave y persiste el archivo.
func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flushLocked()
}

// Delete elimina la clave y persiste el archivo. Borrar una clave inexistente
// no es error.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flushLocked()
}

// flushLocked serializa el mapa y lo escribe de forma atómica.
func (s *Storage) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("file: serializar: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("file: escribir temporal: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("file: reemplazar %s: %w", s.path, err)
	}
	return nil
}
