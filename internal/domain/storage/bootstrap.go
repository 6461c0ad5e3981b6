package storage

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
)

// DefaultAdmin builds the administrator that Initialize creates on an empty store.
func DefaultAdmin() (identity.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("failed to hash default admin password: %w", err)
	}
	return identity.Identity{
		CPF:               DefaultAdminCPF,
		Name:              DefaultAdminName,
		PasswordHash:      string(hash),
		Role:              identity.RoleAdmin,
		Active:            true,
		MustResetPassword: false,
	}, nil
}
