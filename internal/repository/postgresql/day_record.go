package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/database"
)

type dayRecordRepositoryImpl struct {
	db         *database.DB
	identities *identityRepositoryImpl
}

func NewDayRecordRepository(db *database.DB) attendance.DayRecordRepository {
	return &dayRecordRepositoryImpl{db: db, identities: &identityRepositoryImpl{db: db}}
}

const dayRecordColumns = `
	id, employee_id, date, entry, break_start, break_end, exit, note,
	entry_location::text, break_location::text, return_location::text, exit_location::text,
	edit_reason, edited_by, version, created_at, updated_at`

func scanDayRecord(row rowScanner) (attendance.DayRecord, error) {
	var rec attendance.DayRecord
	var entryLoc, breakLoc, returnLoc, exitLoc *string
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.Entry, &rec.BreakStart, &rec.BreakEnd, &rec.Exit, &rec.Note,
		&entryLoc, &breakLoc, &returnLoc, &exitLoc,
		&rec.EditReason, &rec.EditedBy, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	rec.EntryLocation = jsonValue(entryLoc)
	rec.BreakLocation = jsonValue(breakLoc)
	rec.ReturnLocation = jsonValue(returnLoc)
	rec.ExitLocation = jsonValue(exitLoc)
	return rec, err
}

// attachEmployees sets the identity view on every record with one batched lookup.
func (d *dayRecordRepositoryImpl) attachEmployees(ctx context.Context, records []attendance.DayRecord) error {
	seen := make(map[int64]struct{}, len(records))
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.EmployeeID]; !ok {
			seen[rec.EmployeeID] = struct{}{}
			ids = append(ids, rec.EmployeeID)
		}
	}

	views, err := d.identities.viewsByID(ctx, ids)
	if err != nil {
		return err
	}
	for i := range records {
		records[i].Employee = views[records[i].EmployeeID]
	}
	return nil
}

func (d *dayRecordRepositoryImpl) getOne(ctx context.Context, op, where string, args ...any) (*attendance.DayRecord, error) {
	q := GetQuerier(ctx, d.db)

	query := `SELECT ` + dayRecordColumns + ` FROM day_records WHERE ` + where + ` LIMIT 1`
	rec, err := scanDayRecord(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, storage.Wrap(op, err)
	}

	records := []attendance.DayRecord{rec}
	if err := d.attachEmployees(ctx, records); err != nil {
		return nil, err
	}
	return &records[0], nil
}

func (d *dayRecordRepositoryImpl) list(ctx context.Context, op, where, orderBy string, args ...any) ([]attendance.DayRecord, error) {
	q := GetQuerier(ctx, d.db)

	query := `SELECT ` + dayRecordColumns + ` FROM day_records`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY ` + orderBy

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, storage.Wrap(op, err)
	}
	defer rows.Close()

	records := []attendance.DayRecord{}
	for rows.Next() {
		rec, err := scanDayRecord(rows)
		if err != nil {
			return nil, storage.Wrap(op, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap(op, err)
	}

	if err := d.attachEmployees(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetDayRecord implements attendance.DayRecordRepository.
func (d *dayRecordRepositoryImpl) GetDayRecord(ctx context.Context, id int64) (*attendance.DayRecord, error) {
	return d.getOne(ctx, "get day record", "id = $1", id)
}

// GetDayRecordByEmployeeAndDate implements attendance.DayRecordRepository.
func (d *dayRecordRepositoryImpl) GetDayRecordByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*attendance.DayRecord, error) {
	return d.getOne(ctx, "get day record by employee and date", "employee_id = $1 AND date = $2", employeeID, attendance.DateOf(date))
}

// GetDayRecordsForDate implements attendance.DayRecordRepository.
func (d *dayRecordRepositoryImpl) GetDayRecordsForDate(ctx context.Context, date time.Time) ([]attendance.DayRecord, error) {
	return d.list(ctx, "get day records for date", "date = $1", "id", attendance.DateOf(date))
}

// GetDayRecordsForEmployee implements attendance.DayRecordRepository.
func (d *dayRecordRepositoryImpl) GetDayRecordsForEmployee(ctx context.Context, employeeID int64) ([]attendance.DayRecord, error) {
	return d.list(ctx, "get day records for employee", "employee_id = $1", "date DESC, id DESC", employeeID)
}

// GetDayRecordsForEmployeeBetween implements attendance.DayRecordRepository.
func (d *dayRecordRepositoryImpl) GetDayRecordsForEmployeeBetween(ctx context.Context, employeeID int64, from, to time.Time) ([]attendance.DayRecord, error) {
	return d.list(ctx, "get day records for employee between",
		"employee_id = $1 AND date BETWEEN $2 AND $3", "date, id",
		employeeID, attendance.DateOf(from), attendance.DateOf(to))
}

// GetAllDayRecords implements attendance.DayRecordRepository.
func (d *dayRecordRepositoryImpl) GetAllDayRecords(ctx context.Context) ([]attendance.DayRecord, error) {
	return d.list(ctx, "get all day records", "", "date DESC, id DESC")
}

// GetRecentDayRecords implements attendance.DayRecordRepository.
func (d *dayRecordRepositoryImpl) GetRecentDayRecords(ctx context.Context, limit int) ([]attendance.DayRecord, error) {
	if limit <= 0 {
		return d.list(ctx, "get recent day records", "", "updated_at DESC, id DESC")
	}
	return d.list(ctx, "get recent day records", "", "updated_at DESC, id DESC LIMIT $1", limit)
}

// CreateDayRecord implements attendance.DayRecordRepository.
func (d *dayRecordRepositoryImpl) CreateDayRecord(ctx context.Context, employeeID int64, date time.Time) (attendance.DayRecord, error) {
	q := GetQuerier(ctx, d.db)

	query := `
		INSERT INTO day_records (employee_id, date)
		VALUES ($1, $2)
		RETURNING ` + dayRecordColumns

	rec, err := scanDayRecord(q.QueryRow(ctx, query, employeeID, attendance.DateOf(date)))
	if err != nil {
		switch pgErrorCode(err) {
		case uniqueViolation:
			return attendance.DayRecord{}, attendance.ErrDayRecordExists
		case foreignKeyViolation:
			return attendance.DayRecord{}, identity.ErrIdentityNotFound
		}
		return attendance.DayRecord{}, storage.Wrap("create day record", err)
	}

	records := []attendance.DayRecord{rec}
	if err := d.attachEmployees(ctx, records); err != nil {
		return attendance.DayRecord{}, err
	}
	return records[0], nil
}

// UpdateDayRecord implements attendance.DayRecordRepository.
func (d *dayRecordRepositoryImpl) UpdateDayRecord(ctx context.Context, id int64, patch attendance.Patch) (attendance.DayRecord, error) {
	q := GetQuerier(ctx, d.db)

	updates := make(map[string]interface{})
	if patch.Entry != nil {
		updates["entry"] = *patch.Entry
	}
	if patch.BreakStart != nil {
		updates["break_start"] = *patch.BreakStart
	}
	if patch.BreakEnd != nil {
		updates["break_end"] = *patch.BreakEnd
	}
	if patch.Exit != nil {
		updates["exit"] = *patch.Exit
	}
	if patch.Note != nil {
		updates["note"] = *patch.Note
	}
	if patch.EditReason != nil {
		updates["edit_reason"] = *patch.EditReason
	}
	if patch.EditedBy != nil {
		updates["edited_by"] = *patch.EditedBy
	}
	jsonUpdates := map[string]*string{}
	if patch.EntryLocation != nil {
		jsonUpdates["entry_location"] = jsonArg(patch.EntryLocation)
	}
	if patch.BreakLocation != nil {
		jsonUpdates["break_location"] = jsonArg(patch.BreakLocation)
	}
	if patch.ReturnLocation != nil {
		jsonUpdates["return_location"] = jsonArg(patch.ReturnLocation)
	}
	if patch.ExitLocation != nil {
		jsonUpdates["exit_location"] = jsonArg(patch.ExitLocation)
	}

	setClauses := []string{"version = version + 1", "updated_at = NOW()"}
	args := make([]interface{}, 0, len(updates)+len(jsonUpdates)+1)
	i := 1
	for col, val := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	for col, val := range jsonUpdates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d::text::jsonb", col, i))
		args = append(args, val)
		i++
	}
	args = append(args, id)

	sql := fmt.Sprintf("UPDATE day_records SET %s WHERE id = $%d RETURNING %s", strings.Join(setClauses, ", "), i, dayRecordColumns)
	rec, err := scanDayRecord(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.DayRecord{}, attendance.ErrDayRecordNotFound
		}
		if pgErrorCode(err) == foreignKeyViolation {
			return attendance.DayRecord{}, identity.ErrIdentityNotFound
		}
		return attendance.DayRecord{}, storage.Wrap("update day record", err)
	}

	records := []attendance.DayRecord{rec}
	if err := d.attachEmployees(ctx, records); err != nil {
		return attendance.DayRecord{}, err
	}
	return records[0], nil
}

// MutateDayRecord implements attendance.DayRecordRepository. The row is
// inserted if missing, then locked with SELECT ... FOR UPDATE for the rest of
// the transaction. A concurrent insert of the same key blocks on the unique
// index until the first transaction finishes.
func (d *dayRecordRepositoryImpl) MutateDayRecord(ctx context.Context, employeeID int64, date time.Time, fn attendance.MutateFunc) (attendance.DayRecord, error) {
	date = attendance.DateOf(date)

	var (
		out   attendance.DayRecord
		fnErr error
	)
	err := inTransaction(ctx, d.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, d.db)

		insert := `
			INSERT INTO day_records (employee_id, date)
			VALUES ($1, $2)
			ON CONFLICT (employee_id, date) DO NOTHING
		`
		if _, err := q.Exec(ctx, insert, employeeID, date); err != nil {
			if pgErrorCode(err) == foreignKeyViolation {
				return identity.ErrIdentityNotFound
			}
			return storage.Wrap("mutate day record", err)
		}

		lock := `SELECT ` + dayRecordColumns + ` FROM day_records WHERE employee_id = $1 AND date = $2 FOR UPDATE`
		rec, err := scanDayRecord(q.QueryRow(ctx, lock, employeeID, date))
		if err != nil {
			return storage.Wrap("mutate day record", err)
		}
		id := rec.ID
		if err := fn(&rec); err != nil {
			fnErr = err
			return err
		}

		update := `
			UPDATE day_records SET
				entry = $1, break_start = $2, break_end = $3, exit = $4, note = $5,
				entry_location = $6::text::jsonb, break_location = $7::text::jsonb,
				return_location = $8::text::jsonb, exit_location = $9::text::jsonb,
				edit_reason = $10, edited_by = $11,
				version = version + 1, updated_at = NOW()
			WHERE id = $12
			RETURNING ` + dayRecordColumns

		out, err = scanDayRecord(q.QueryRow(ctx, update,
			rec.Entry, rec.BreakStart, rec.BreakEnd, rec.Exit, rec.Note,
			jsonArg(rec.EntryLocation), jsonArg(rec.BreakLocation),
			jsonArg(rec.ReturnLocation), jsonArg(rec.ExitLocation),
			rec.EditReason, rec.EditedBy,
			id,
		))
		if err != nil {
			return storage.Wrap("mutate day record", err)
		}
		return nil
	})
	if fnErr != nil {
		return attendance.DayRecord{}, fnErr
	}
	if err != nil {
		return attendance.DayRecord{}, storage.Wrap("mutate day record", err, identity.ErrIdentityNotFound)
	}

	records := []attendance.DayRecord{out}
	if err := d.attachEmployees(ctx, records); err != nil {
		return attendance.DayRecord{}, err
	}
	return records[0], nil
}
