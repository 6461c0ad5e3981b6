package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/database"
)

type identityRepositoryImpl struct {
	db *database.DB
}

func NewIdentityRepository(db *database.DB) identity.IdentityRepository {
	return &identityRepositoryImpl{db: db}
}

const identityColumns = `
	id, cpf, name, password_hash, role, active, email, phone,
	birth_date, start_date, weekly_hours, contract_type, must_reset_password, created_at`

func scanIdentity(row rowScanner) (identity.Identity, error) {
	var (
		i    identity.Identity
		role string
	)
	err := row.Scan(
		&i.ID, &i.CPF, &i.Name, &i.PasswordHash, &role, &i.Active, &i.Email, &i.Phone,
		&i.BirthDate, &i.StartDate, &i.WeeklyHours, &i.ContractType, &i.MustResetPassword, &i.CreatedAt,
	)
	i.Role = identity.Role(role)
	return i, err
}

func (r *identityRepositoryImpl) getOne(ctx context.Context, op, where string, args ...any) (*identity.Identity, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + identityColumns + ` FROM identities WHERE ` + where + ` ORDER BY id LIMIT 1`
	i, err := scanIdentity(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, storage.Wrap(op, err)
	}
	return &i, nil
}

// GetIdentity implements identity.IdentityRepository.
func (r *identityRepositoryImpl) GetIdentity(ctx context.Context, id int64) (*identity.Identity, error) {
	return r.getOne(ctx, "get identity", "id = $1", id)
}

// GetIdentityByCPF implements identity.IdentityRepository.
func (r *identityRepositoryImpl) GetIdentityByCPF(ctx context.Context, cpf string) (*identity.Identity, error) {
	return r.getOne(ctx, "get identity by cpf", "cpf = $1", cpf)
}

// GetAdminIdentity implements identity.IdentityRepository.
func (r *identityRepositoryImpl) GetAdminIdentity(ctx context.Context) (*identity.Identity, error) {
	return r.getOne(ctx, "get admin identity", "role = $1", string(identity.RoleAdmin))
}

// ListEmployees implements identity.IdentityRepository.
func (r *identityRepositoryImpl) ListEmployees(ctx context.Context) ([]identity.Identity, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + identityColumns + ` FROM identities WHERE role = $1 ORDER BY id`
	rows, err := q.Query(ctx, query, string(identity.RoleEmployee))
	if err != nil {
		return nil, storage.Wrap("list employees", err)
	}
	defer rows.Close()

	employees := []identity.Identity{}
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, storage.Wrap("list employees", err)
		}
		employees = append(employees, i)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap("list employees", err)
	}
	return employees, nil
}

// viewsByID loads the identity views for a batch of ids in one query.
func (r *identityRepositoryImpl) viewsByID(ctx context.Context, ids []int64) (map[int64]*identity.View, error) {
	views := make(map[int64]*identity.View, len(ids))
	if len(ids) == 0 {
		return views, nil
	}

	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = ANY($1)`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, storage.Wrap("load identity views", err)
	}
	defer rows.Close()

	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, storage.Wrap("load identity views", err)
		}
		views[i.ID] = i.View()
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap("load identity views", err)
	}
	return views, nil
}

// CreateIdentity implements identity.IdentityRepository.
func (r *identityRepositoryImpl) CreateIdentity(ctx context.Context, i identity.Identity) (identity.Identity, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO identities (
			cpf, name, password_hash, role, active, email, phone,
			birth_date, start_date, weekly_hours, contract_type, must_reset_password
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		i.CPF,
		i.Name,
		i.PasswordHash,
		string(i.Role),
		i.Active,
		i.Email,
		i.Phone,
		i.BirthDate,
		i.StartDate,
		i.WeeklyHours,
		i.ContractType,
		i.MustResetPassword,
	).Scan(&i.ID, &i.CreatedAt)

	if err != nil {
		if pgErrorCode(err) == uniqueViolation {
			return identity.Identity{}, identity.ErrCPFExists
		}
		return identity.Identity{}, storage.Wrap("create identity", err)
	}

	return i, nil
}

// UpdateIdentity implements identity.IdentityRepository.
func (r *identityRepositoryImpl) UpdateIdentity(ctx context.Context, id int64, patch identity.Patch) (identity.Identity, error) {
	q := GetQuerier(ctx, r.db)

	updates := make(map[string]interface{})
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.PasswordHash != nil {
		updates["password_hash"] = *patch.PasswordHash
	}
	if patch.Role != nil {
		updates["role"] = string(*patch.Role)
	}
	if patch.Active != nil {
		updates["active"] = *patch.Active
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.BirthDate != nil {
		updates["birth_date"] = *patch.BirthDate
	}
	if patch.StartDate != nil {
		updates["start_date"] = *patch.StartDate
	}
	if patch.WeeklyHours != nil {
		updates["weekly_hours"] = *patch.WeeklyHours
	}
	if patch.ContractType != nil {
		updates["contract_type"] = *patch.ContractType
	}
	if patch.MustResetPassword != nil {
		updates["must_reset_password"] = *patch.MustResetPassword
	}

	if len(updates) == 0 {
		current, err := r.GetIdentity(ctx, id)
		if err != nil {
			return identity.Identity{}, err
		}
		if current == nil {
			return identity.Identity{}, identity.ErrIdentityNotFound
		}
		return *current, nil
	}

	setClauses := make([]string, 0, len(updates))
	args := make([]interface{}, 0, len(updates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	args = append(args, id)

	sql := fmt.Sprintf("UPDATE identities SET %s WHERE id = $%d RETURNING %s", strings.Join(setClauses, ", "), i, identityColumns)
	updated, err := scanIdentity(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return identity.Identity{}, identity.ErrIdentityNotFound
		}
		return identity.Identity{}, storage.Wrap("update identity", err)
	}
	return updated, nil
}
