package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Gateway ───────────────────────────────────────────────────────
	ErrRateLimitExceeded  ErrCode = "RATE_LIMIT_EXCEEDED"
	ErrBadGateway         ErrCode = "BAD_GATEWAY"
	ErrServiceUnavailable ErrCode = "SERVICE_UNAVAILABLE"
	ErrGatewayTimeout     ErrCode = "GATEWAY_TIMEOUT"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Usuário/e-mail ou senha incorretos."
	case ErrTokenRequired:
		return "Token de autenticação obrigatório."
	case ErrTokenInvalid:
		return "Token de autenticação inválido ou expirado."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Falha na validação. Verifique os dados enviados."
	case ErrInvalidID:
		return "Formato de ID inválido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso não encontrado."
	case ErrConflict:
		return "Registro já existe ou está em uso."

	// ─── Gateway ───────────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Muitas requisições. Tente novamente mais tarde."
	case ErrBadGateway:
		return "Serviço de destino inacessível."
	case ErrServiceUnavailable:
		return "Serviço temporariamente indisponível."
	case ErrGatewayTimeout:
		return "O serviço de destino não respondeu a tempo."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Erro interno do servidor."
	default:
		return "Ocorreu um erro inesperado."
	}
}
