package repository

import "context"

// KVStorage es el puerto de almacenamiento durable clave-valor (valores
// string). Es el análogo del almacenamiento local del cliente: claves planas
// con JSON serializado. Solo el gateway de persistencia lo lee y escribe.
type KVStorage interface {
	// Get devuelve el valor y ok=false si la clave no existe.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
