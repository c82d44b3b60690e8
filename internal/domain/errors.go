package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrIdentificadorVacio = errors.New("ingrese un ID de pallet")
	ErrOcupado            = errors.New("procesando solicitud anterior, espere un momento")
	ErrEscaneoDuplicado   = errors.New("código recién escaneado, espere antes de re-escanear")
	ErrTimeout            = errors.New("la solicitud tardó demasiado, verifique su conexión")
	ErrRed                = errors.New("error de conexión o al procesar la solicitud")
	ErrSinConexion        = errors.New("no hay conexión a internet")
	ErrRespuestaInvalida  = errors.New("respuesta del servidor no válida")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrIndiceInvalido     = errors.New("índice fuera de rango")
	ErrSesionVacia        = errors.New("no hay pallets escaneados en esta sesión")
	ErrNoConfirmado       = errors.New("operación no confirmada por el operador")
	ErrUnauthorized       = errors.New("no autorizado")
)
