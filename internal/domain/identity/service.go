package identity

import "context"

// IdentityService covers sign-in and employee administration.
type IdentityService interface {
	// Login verifies the CPF/password pair and issues an access token
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// Me returns the authenticated identity
	Me(ctx context.Context, identityID int64) (IdentityResponse, error)

	ListEmployees(ctx context.Context) ([]IdentityResponse, error)

	// CreateEmployee registers an employee with the initial password "<cpf>ponto"
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (IdentityResponse, error)

	ToggleStatus(ctx context.Context, employeeID int64) (ToggleStatusResponse, error)

	// ResetPassword restores the initial password and forces a change on next login
	ResetPassword(ctx context.Context, employeeID int64) error

	ChangePassword(ctx context.Context, identityID int64, req ChangePasswordRequest) error
}
