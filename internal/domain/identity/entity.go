package identity

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Manages employees, schedules and edits records
	RoleEmployee Role = "employee" // Registers own punches
)

var RoleValues = []string{
	string(RoleAdmin),
	string(RoleEmployee),
}

// Identity is a person allowed to sign in. CPF is the login key and is unique
// across all identities.
type Identity struct {
	ID                int64
	CPF               string
	Name              string
	PasswordHash      string
	Role              Role
	Active            bool
	Email             *string
	Phone             *string
	BirthDate         *time.Time
	StartDate         *time.Time
	WeeklyHours       *int
	ContractType      *string
	MustResetPassword bool
	CreatedAt         time.Time
}

// IsAdmin checks if the identity has administrative access
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// View returns the denormalised projection attached to day records on read.
func (i *Identity) View() *View {
	return &View{
		ID:     i.ID,
		CPF:    i.CPF,
		Name:   i.Name,
		Role:   i.Role,
		Active: i.Active,
		Email:  i.Email,
	}
}

// View is the read-side identity projection. It is never persisted.
type View struct {
	ID     int64   `json:"id"`
	CPF    string  `json:"cpf"`
	Name   string  `json:"name"`
	Role   Role    `json:"role"`
	Active bool    `json:"active"`
	Email  *string `json:"email,omitempty"`
}

// Patch carries a partial identity update. Nil fields are left untouched.
type Patch struct {
	Name              *string
	PasswordHash      *string
	Role              *Role
	Active            *bool
	Email             *string
	Phone             *string
	BirthDate         *time.Time
	StartDate         *time.Time
	WeeklyHours       *int
	ContractType      *string
	MustResetPassword *bool
}

// Apply merges the patch into i.
func (p Patch) Apply(i *Identity) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.PasswordHash != nil {
		i.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		i.Role = *p.Role
	}
	if p.Active != nil {
		i.Active = *p.Active
	}
	if p.Email != nil {
		i.Email = p.Email
	}
	if p.Phone != nil {
		i.Phone = p.Phone
	}
	if p.BirthDate != nil {
		i.BirthDate = p.BirthDate
	}
	if p.StartDate != nil {
		i.StartDate = p.StartDate
	}
	if p.WeeklyHours != nil {
		i.WeeklyHours = p.WeeklyHours
	}
	if p.ContractType != nil {
		i.ContractType = p.ContractType
	}
	if p.MustResetPassword != nil {
		i.MustResetPassword = *p.MustResetPassword
	}
}
