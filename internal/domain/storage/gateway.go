package storage

import (
	"context"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
)

// Default administrator created by Initialize when none exists.
const (
	DefaultAdminCPF      = "00000000000"
	DefaultAdminName     = "Administrador"
	DefaultAdminPassword = "senha123"
)

// Gateway is the backend-agnostic persistence contract. Every backend must
// give read-after-write visibility on the same instance and assign
// monotonically increasing ids.
type Gateway interface {
	identity.IdentityRepository
	schedule.ScheduleRepository
	attendance.DayRecordRepository

	// WithinTransaction runs fn in one transaction where the backend has
	// them. Otherwise fn runs as plain sequential calls.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Initialize prepares schema or indexes and ensures an admin exists.
	// Safe to call on every start.
	Initialize(ctx context.Context) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
