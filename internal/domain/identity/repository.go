package identity

import "context"

// IdentityRepository lookups return (nil, nil) when nothing matches.
type IdentityRepository interface {
	GetIdentity(ctx context.Context, id int64) (*Identity, error)
	GetIdentityByCPF(ctx context.Context, cpf string) (*Identity, error)
	GetAdminIdentity(ctx context.Context) (*Identity, error)
	ListEmployees(ctx context.Context) ([]Identity, error)

	// CreateIdentity assigns the id. Returns ErrCPFExists on a duplicate CPF.
	CreateIdentity(ctx context.Context, i Identity) (Identity, error)

	// UpdateIdentity merges the patch. Returns ErrIdentityNotFound if id is absent.
	UpdateIdentity(ctx context.Context, id int64, patch Patch) (Identity, error)
}
