// Package identifier normaliza identificadores de pallet escaneados o tecleados.
package identifier

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jhoicas/verificador-pallets/internal/domain"
)

var safeKeyPattern = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Normalize recorta espacios alrededor del identificador crudo. Devuelve
// ErrIdentificadorVacio si no queda nada; en ese caso el llamador muestra el
// mensaje de validación y no hace nada más.
func Normalize(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", domain.ErrIdentificadorVacio
	}
	return id, nil
}

// ToSafeKey deriva un token seguro para identificadores de elementos de
// interfaz: todo carácter fuera de [A-Za-z0-9_-] se reemplaza por "-".
// Con entrada vacía devuelve un token sintético basado en el reloj.
func ToSafeKey(text string) string {
	if strings.TrimSpace(text) == "" {
		return fmt.Sprintf("item-%d", time.Now().UnixMilli())
	}
	return safeKeyPattern.ReplaceAllString(text, "-")
}
