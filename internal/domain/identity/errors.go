package identity

import "errors"

var (
	ErrIdentityNotFound  = errors.New("identity not found")
	ErrCPFExists         = errors.New("cpf already registered")
	ErrIdentityInactive  = errors.New("identity is inactive")
	ErrNotAnEmployee     = errors.New("identity is not an employee")
	ErrInvalidCredential = errors.New("invalid cpf or password")
	ErrWrongPassword     = errors.New("current password is incorrect")
	ErrAdminRequired     = errors.New("admin privilege required")
	ErrInvalidToken      = errors.New("invalid token")
)
