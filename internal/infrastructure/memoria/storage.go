// Package memoria implementa el almacenamiento clave-valor en memoria.
// Pensado para tests y para correr el servidor sin persistencia.
package memoria

import (
	"context"
	"sync"

	"github.com/jhoicas/verificador-pallets/internal/domain/repository"
)

// Storage mapa en memoria protegido por mutex.
type Storage struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ repository.KVStorage = (*Storage)(nil)

// NewStorage crea el almacenamiento vacío.
func NewStorage() *Storage {
	return &Storage{data: make(map[string]string)}
}

func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
