package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/database"
	"github.com/igorgomez/ponto-seguro-1/migrations"
)

// Gateway is the relational storage backend.
type Gateway struct {
	identity.IdentityRepository
	schedule.ScheduleRepository
	attendance.DayRecordRepository

	db *database.DB
}

var _ storage.Gateway = (*Gateway)(nil)

func NewGateway(db *database.DB) *Gateway {
	return &Gateway{
		IdentityRepository:  NewIdentityRepository(db),
		ScheduleRepository:  NewWorkScheduleRepository(db),
		DayRecordRepository: NewDayRecordRepository(db),
		db:                  db,
	}
}

// WithinTransaction runs fn in a single database transaction. Nested calls
// join the outer transaction.
func (g *Gateway) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return inTransaction(ctx, g.db, fn)
}

// Migrate applies the embedded schema. Every script is idempotent.
func (g *Gateway) Migrate(ctx context.Context) error {
	scripts, err := migrations.Scripts()
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	for _, script := range scripts {
		if _, err := g.db.Exec(ctx, script); err != nil {
			return storage.Wrap("migrate", err)
		}
	}
	return nil
}

func (g *Gateway) Initialize(ctx context.Context) error {
	if err := g.Migrate(ctx); err != nil {
		return err
	}

	admin, err := g.GetAdminIdentity(ctx)
	if err != nil {
		return err
	}
	if admin != nil {
		return nil
	}

	def, err := storage.DefaultAdmin()
	if err != nil {
		return err
	}
	// Another process may have created it in between.
	if _, err := g.CreateIdentity(ctx, def); err != nil && !errors.Is(err, identity.ErrCPFExists) {
		return err
	}
	return nil
}

func (g *Gateway) Ping(ctx context.Context) error {
	return storage.Wrap("ping", g.db.Ping(ctx))
}

func (g *Gateway) Close(ctx context.Context) error {
	g.db.Close()
	return nil
}
