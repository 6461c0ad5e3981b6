package identity

import (
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
)

type LoginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CPF) {
		errs = append(errs, validator.ValidationError{
			Field:   "cpf",
			Message: "cpf is required",
		})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TokenResponse struct {
	AccessToken          string           `json:"access_token"`
	AccessTokenExpiresIn int64            `json:"access_token_expires_in"`
	Identity             IdentityResponse `json:"identity"`
}

type CreateEmployeeRequest struct {
	CPF          string  `json:"cpf"`
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	BirthDate    *string `json:"birth_date,omitempty"` // YYYY-MM-DD
	StartDate    *string `json:"start_date,omitempty"` // YYYY-MM-DD
	WeeklyHours  *int    `json:"weekly_hours,omitempty"`
	ContractType *string `json:"contract_type,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidCPF(r.CPF) {
		errs = append(errs, validator.ValidationError{
			Field:   "cpf",
			Message: "cpf must contain exactly 11 digits",
		})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if r.Email != nil && *r.Email != "" && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email format is invalid",
		})
	}

	if r.BirthDate != nil && *r.BirthDate != "" {
		if _, valid := validator.IsValidDate(*r.BirthDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "birth_date",
				Message: "birth_date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.StartDate != nil && *r.StartDate != "" {
		if _, valid := validator.IsValidDate(*r.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.WeeklyHours != nil && (*r.WeeklyHours <= 0 || *r.WeeklyHours > 168) {
		errs = append(errs, validator.ValidationError{
			Field:   "weekly_hours",
			Message: "weekly_hours must be between 1 and 168",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CurrentPassword) {
		errs = append(errs, validator.ValidationError{
			Field:   "current_password",
			Message: "current password is required",
		})
	}
	if len(r.NewPassword) < 6 {
		errs = append(errs, validator.ValidationError{
			Field:   "new_password",
			Message: "new password must be at least 6 characters",
		})
	}
	if r.NewPassword != r.ConfirmPassword {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "passwords do not match",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type IdentityResponse struct {
	ID                int64   `json:"id"`
	CPF               string  `json:"cpf"`
	Name              string  `json:"name"`
	Role              Role    `json:"role"`
	Active            bool    `json:"active"`
	Email             *string `json:"email,omitempty"`
	Phone             *string `json:"phone,omitempty"`
	BirthDate         *string `json:"birth_date,omitempty"`
	StartDate         *string `json:"start_date,omitempty"`
	WeeklyHours       *int    `json:"weekly_hours,omitempty"`
	ContractType      *string `json:"contract_type,omitempty"`
	MustResetPassword bool    `json:"must_reset_password"`
	CreatedAt         string  `json:"created_at"`
}

// NewIdentityResponse strips the credential hash.
func NewIdentityResponse(i Identity) IdentityResponse {
	return IdentityResponse{
		ID:                i.ID,
		CPF:               i.CPF,
		Name:              i.Name,
		Role:              i.Role,
		Active:            i.Active,
		Email:             i.Email,
		Phone:             i.Phone,
		BirthDate:         datePtrToString(i.BirthDate),
		StartDate:         datePtrToString(i.StartDate),
		WeeklyHours:       i.WeeklyHours,
		ContractType:      i.ContractType,
		MustResetPassword: i.MustResetPassword,
		CreatedAt:         i.CreatedAt.Format(time.RFC3339),
	}
}

func datePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

type ToggleStatusResponse struct {
	ID     int64 `json:"id"`
	Active bool  `json:"active"`
}
