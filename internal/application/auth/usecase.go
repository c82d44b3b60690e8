package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/verificador-pallets/internal/application/dto"
	"github.com/jhoicas/verificador-pallets/internal/domain"
	"github.com/jhoicas/verificador-pallets/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login de operadores contra las credenciales configuradas.
// Los operadores se definen por configuración (usuario -> hash bcrypt del
// PIN): el dispositivo de bodega no necesita tabla de usuarios.
type AuthUseCase struct {
	operators map[string]string
	jwtCfg    JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(operators map[string]string, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{operators: operators, jwtCfg: jwtCfg}
}

// Login verifica usuario/PIN con bcrypt y genera el JWT.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	hash, ok := uc.operators[in.Usuario]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.PIN)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, in.Usuario, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, Usuario: in.Usuario}, nil
}
