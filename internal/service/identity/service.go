package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/jwt"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
)

type IdentityServiceImpl struct {
	identity.IdentityRepository
	jwt.Service
	hashCost int
}

func NewIdentityService(identityRepository identity.IdentityRepository, jwtService jwt.Service) identity.IdentityService {
	return &IdentityServiceImpl{
		IdentityRepository: identityRepository,
		Service:            jwtService,
		hashCost:           bcrypt.DefaultCost,
	}
}

func (s *IdentityServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func initialPassword(cpf string) string {
	return cpf + "ponto"
}

// Login implements identity.IdentityService.
func (s *IdentityServiceImpl) Login(ctx context.Context, req identity.LoginRequest) (identity.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return identity.TokenResponse{}, err
	}

	found, err := s.GetIdentityByCPF(ctx, req.CPF)
	if err != nil {
		return identity.TokenResponse{}, fmt.Errorf("failed to get identity by cpf: %w", err)
	}
	if found == nil {
		return identity.TokenResponse{}, identity.ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.Password)); err != nil {
		return identity.TokenResponse{}, identity.ErrInvalidCredential
	}
	if !found.Active {
		return identity.TokenResponse{}, identity.ErrIdentityInactive
	}

	token, expiresAt, err := s.GenerateAccessToken(found.ID, found.CPF, found.Role)
	if err != nil {
		return identity.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return identity.TokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt,
		Identity:             identity.NewIdentityResponse(*found),
	}, nil
}

// Me implements identity.IdentityService.
func (s *IdentityServiceImpl) Me(ctx context.Context, identityID int64) (identity.IdentityResponse, error) {
	found, err := s.GetIdentity(ctx, identityID)
	if err != nil {
		return identity.IdentityResponse{}, fmt.Errorf("failed to get identity: %w", err)
	}
	if found == nil {
		return identity.IdentityResponse{}, identity.ErrIdentityNotFound
	}
	return identity.NewIdentityResponse(*found), nil
}

// ListEmployees implements identity.IdentityService.
func (s *IdentityServiceImpl) ListEmployees(ctx context.Context) ([]identity.IdentityResponse, error) {
	employees, err := s.IdentityRepository.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	out := make([]identity.IdentityResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, identity.NewIdentityResponse(e))
	}
	return out, nil
}

// CreateEmployee implements identity.IdentityService.
func (s *IdentityServiceImpl) CreateEmployee(ctx context.Context, req identity.CreateEmployeeRequest) (identity.IdentityResponse, error) {
	if err := req.Validate(); err != nil {
		return identity.IdentityResponse{}, err
	}

	hash, err := s.hashPassword(initialPassword(req.CPF))
	if err != nil {
		return identity.IdentityResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	entity := identity.Identity{
		CPF:               req.CPF,
		Name:              req.Name,
		PasswordHash:      hash,
		Role:              identity.RoleEmployee,
		Active:            true,
		Email:             emptyToNil(req.Email),
		Phone:             emptyToNil(req.Phone),
		WeeklyHours:       req.WeeklyHours,
		ContractType:      emptyToNil(req.ContractType),
		MustResetPassword: true,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		d, _ := validator.IsValidDate(*req.BirthDate)
		entity.BirthDate = &d
	}
	if req.StartDate != nil && *req.StartDate != "" {
		d, _ := validator.IsValidDate(*req.StartDate)
		entity.StartDate = &d
	}

	created, err := s.CreateIdentity(ctx, entity)
	if err != nil {
		if errors.Is(err, identity.ErrCPFExists) {
			return identity.IdentityResponse{}, err
		}
		return identity.IdentityResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.Info("Created employee", "employee_id", created.ID)
	return identity.NewIdentityResponse(created), nil
}

func (s *IdentityServiceImpl) getEmployee(ctx context.Context, employeeID int64) (*identity.Identity, error) {
	found, err := s.GetIdentity(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if found == nil {
		return nil, identity.ErrIdentityNotFound
	}
	if found.Role != identity.RoleEmployee {
		return nil, identity.ErrNotAnEmployee
	}
	return found, nil
}

// ToggleStatus implements identity.IdentityService.
func (s *IdentityServiceImpl) ToggleStatus(ctx context.Context, employeeID int64) (identity.ToggleStatusResponse, error) {
	emp, err := s.getEmployee(ctx, employeeID)
	if err != nil {
		return identity.ToggleStatusResponse{}, err
	}

	active := !emp.Active
	updated, err := s.UpdateIdentity(ctx, employeeID, identity.Patch{Active: &active})
	if err != nil {
		return identity.ToggleStatusResponse{}, fmt.Errorf("failed to update employee status: %w", err)
	}

	slog.Info("Toggled employee status", "employee_id", employeeID, "active", updated.Active)
	return identity.ToggleStatusResponse{ID: updated.ID, Active: updated.Active}, nil
}

// ResetPassword implements identity.IdentityService.
func (s *IdentityServiceImpl) ResetPassword(ctx context.Context, employeeID int64) error {
	emp, err := s.getEmployee(ctx, employeeID)
	if err != nil {
		return err
	}

	hash, err := s.hashPassword(initialPassword(emp.CPF))
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	mustReset := true
	if _, err := s.UpdateIdentity(ctx, employeeID, identity.Patch{PasswordHash: &hash, MustResetPassword: &mustReset}); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	slog.Info("Reset employee password", "employee_id", employeeID)
	return nil
}

// ChangePassword implements identity.IdentityService.
func (s *IdentityServiceImpl) ChangePassword(ctx context.Context, identityID int64, req identity.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	found, err := s.GetIdentity(ctx, identityID)
	if err != nil {
		return fmt.Errorf("failed to get identity: %w", err)
	}
	if found == nil {
		return identity.ErrIdentityNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return identity.ErrWrongPassword
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	mustReset := false
	if _, err := s.UpdateIdentity(ctx, identityID, identity.Patch{PasswordHash: &hash, MustResetPassword: &mustReset}); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
