package dto

// LoginRequest credenciales de operador.
type LoginRequest struct {
	Usuario string `json:"usuario"`
	PIN     string `json:"pin"`
}

// LoginResponse token emitido tras login exitoso.
type LoginResponse struct {
	Token   string `json:"token"`
	Usuario string `json:"usuario"`
}
