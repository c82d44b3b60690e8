// Package postgres implementa el almacenamiento clave-valor durable sobre
// PostgreSQL, para despliegues donde el verificador corre en un contenedor
// sin disco persistente.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/verificador-pallets/internal/domain/repository"
)

// KVRepository implementa repository.KVStorage sobre una tabla de pares
// clave-valor. Los valores son los mismos JSON que el driver de archivo.
type KVRepository struct {
	pool *pgxpool.Pool
}

var _ repository.KVStorage = (*KVRepository)(nil)

// NewKVRepository construye el repositorio.
func NewKVRepository(pool *pgxpool.Pool) *KVRepository {
	return &KVRepository{pool: pool}
}

// EnsureSchema crea la tabla si no existe.
func (r *KVRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS almacen_kv (
			clave       TEXT PRIMARY KEY,
			valor       TEXT NOT NULL,
			actualizado TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("crear tabla almacen_kv: %w", err)
	}
	return nil
}

// Get devuelve el valor y ok=false si la clave no existe.
func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.pool.QueryRow(ctx,
		`SELECT valor FROM almacen_kv WHERE clave = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("leer clave %s: %w", key, err)
	}
	return value, true, nil
}

// Set inserta o reemplaza la clave.
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO almacen_kv (clave, valor, actualizado)
		VALUES ($1, $2, now())
		ON CONFLICT (clave) DO UPDATE
		SET valor = EXCLUDED.valor, actualizado = now()`, key, value)
	if err != nil {
		return fmt.Errorf("escribir clave %s: %w", key, err)
	}
	return nil
}

// Delete elimina la clave. Borrar una clave inexistente no es error.
func (r *KVRepository) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM almacen_kv WHERE clave = $1`, key)
	if err != nil {
		return fmt.Errorf("borrar clave %s: %w", key, err)
	}
	return nil
}
