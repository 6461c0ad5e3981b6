// Package memory is the in-process storage backend used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
)

type dayKey struct {
	employeeID int64
	date       string
}

// Gateway keeps everything in maps behind a single mutex. MutateDayRecord
// holds the write lock for the whole read-modify-write.
type Gateway struct {
	mu sync.RWMutex

	identities map[int64]identity.Identity
	schedules  map[int64]schedule.WorkSchedule
	records    map[int64]attendance.DayRecord
	recordKeys map[dayKey]int64

	nextIdentityID int64
	nextScheduleID int64
	nextRecordID   int64

	now func() time.Time
}

var _ storage.Gateway = (*Gateway)(nil)

func NewGateway() *Gateway {
	return &Gateway{
		identities:     make(map[int64]identity.Identity),
		schedules:      make(map[int64]schedule.WorkSchedule),
		records:        make(map[int64]attendance.DayRecord),
		recordKeys:     make(map[dayKey]int64),
		nextIdentityID: 1,
		nextScheduleID: 1,
		nextRecordID:   1,
		now:            time.Now,
	}
}

func keyOf(employeeID int64, date time.Time) dayKey {
	return dayKey{employeeID: employeeID, date: attendance.DateOf(date).Format("2006-01-02")}
}

func (g *Gateway) Initialize(ctx context.Context) error {
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
	_, err = g.CreateIdentity(ctx, def)
	return err
}

func (g *Gateway) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (g *Gateway) Close(ctx context.Context) error {
	return nil
}

// WithinTransaction is not atomic: fn runs as plain sequential calls.
func (g *Gateway) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ========================================
// IDENTITY
// ========================================

func (g *Gateway) GetIdentity(ctx context.Context, id int64) (*identity.Identity, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	i, ok := g.identities[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (g *Gateway) GetIdentityByCPF(ctx context.Context, cpf string) (*identity.Identity, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, i := range g.identities {
		if i.CPF == cpf {
			found := i
			return &found, nil
		}
	}
	return nil, nil
}

func (g *Gateway) GetAdminIdentity(ctx context.Context) (*identity.Identity, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var admin *identity.Identity
	for _, i := range g.identities {
		if i.Role != identity.RoleAdmin {
			continue
		}
		if admin == nil || i.ID < admin.ID {
			found := i
			admin = &found
		}
	}
	return admin, nil
}

func (g *Gateway) ListEmployees(ctx context.Context) ([]identity.Identity, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	employees := []identity.Identity{}
	for _, i := range g.identities {
		if i.Role == identity.RoleEmployee {
			employees = append(employees, i)
		}
	}
	sort.Slice(employees, func(a, b int) bool { return employees[a].ID < employees[b].ID })
	return employees, nil
}

func (g *Gateway) CreateIdentity(ctx context.Context, i identity.Identity) (identity.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, existing := range g.identities {
		if existing.CPF == i.CPF {
			return identity.Identity{}, identity.ErrCPFExists
		}
	}

	i.ID = g.nextIdentityID
	g.nextIdentityID++
	i.CreatedAt = g.now()
	g.identities[i.ID] = i
	return i, nil
}

func (g *Gateway) UpdateIdentity(ctx context.Context, id int64, patch identity.Patch) (identity.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i, ok := g.identities[id]
	if !ok {
		return identity.Identity{}, identity.ErrIdentityNotFound
	}
	patch.Apply(&i)
	g.identities[id] = i
	return i, nil
}

// ========================================
// WORK SCHEDULE
// ========================================

func (g *Gateway) ListSchedules(ctx context.Context, employeeID int64) ([]schedule.WorkSchedule, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rows := []schedule.WorkSchedule{}
	for _, s := range g.schedules {
		if s.EmployeeID == employeeID {
			rows = append(rows, s)
		}
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Weekday != rows[b].Weekday {
			return rows[a].Weekday < rows[b].Weekday
		}
		return rows[a].ID < rows[b].ID
	})
	return rows, nil
}

func (g *Gateway) CreateSchedule(ctx context.Context, s schedule.WorkSchedule) (schedule.WorkSchedule, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.identities[s.EmployeeID]; !ok {
		return schedule.WorkSchedule{}, identity.ErrIdentityNotFound
	}

	s.ID = g.nextScheduleID
	g.nextScheduleID++
	s.CreatedAt = g.now()
	g.schedules[s.ID] = s
	return s, nil
}

func (g *Gateway) DeleteSchedulesForEmployee(ctx context.Context, employeeID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, s := range g.schedules {
		if s.EmployeeID == employeeID {
			delete(g.schedules, id)
		}
	}
	return nil
}

// ========================================
// DAY RECORD
// ========================================

func (g *Gateway) GetDayRecord(ctx context.Context, id int64) (*attendance.DayRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rec, ok := g.records[id]
	if !ok {
		return nil, nil
	}
	out := g.withEmployee(rec)
	return &out, nil
}

func (g *Gateway) GetDayRecordByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*attendance.DayRecord, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.recordKeys[keyOf(employeeID, date)]
	if !ok {
		return nil, nil
	}
	out := g.withEmployee(g.records[id])
	return &out, nil
}

func (g *Gateway) GetDayRecordsForDate(ctx context.Context, date time.Time) ([]attendance.DayRecord, error) {
	day := attendance.DateOf(date)
	return g.filterRecords(func(r attendance.DayRecord) bool {
		return r.Date.Equal(day)
	}, byIDAsc), nil
}

func (g *Gateway) GetDayRecordsForEmployee(ctx context.Context, employeeID int64) ([]attendance.DayRecord, error) {
	return g.filterRecords(func(r attendance.DayRecord) bool {
		return r.EmployeeID == employeeID
	}, byDateDesc), nil
}

func (g *Gateway) GetDayRecordsForEmployeeBetween(ctx context.Context, employeeID int64, from, to time.Time) ([]attendance.DayRecord, error) {
	from, to = attendance.DateOf(from), attendance.DateOf(to)
	return g.filterRecords(func(r attendance.DayRecord) bool {
		return r.EmployeeID == employeeID && !r.Date.Before(from) && !r.Date.After(to)
	}, byDateAsc), nil
}

func (g *Gateway) GetAllDayRecords(ctx context.Context) ([]attendance.DayRecord, error) {
	return g.filterRecords(func(attendance.DayRecord) bool { return true }, byDateDesc), nil
}

func (g *Gateway) GetRecentDayRecords(ctx context.Context, limit int) ([]attendance.DayRecord, error) {
	records := g.filterRecords(func(attendance.DayRecord) bool { return true }, byUpdatedDesc)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (g *Gateway) CreateDayRecord(ctx context.Context, employeeID int64, date time.Time) (attendance.DayRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, err := g.createLocked(employeeID, date)
	if err != nil {
		return attendance.DayRecord{}, err
	}
	return g.withEmployee(rec), nil
}

func (g *Gateway) UpdateDayRecord(ctx context.Context, id int64, patch attendance.Patch) (attendance.DayRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[id]
	if !ok {
		return attendance.DayRecord{}, attendance.ErrDayRecordNotFound
	}
	rec = cloneRecord(rec)
	patch.Apply(&rec)
	g.storeLocked(&rec)
	return g.withEmployee(rec), nil
}

func (g *Gateway) MutateDayRecord(ctx context.Context, employeeID int64, date time.Time, fn attendance.MutateFunc) (attendance.DayRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return attendance.DayRecord{}, storage.Wrap("mutate day record", err)
	}

	var rec attendance.DayRecord
	id, exists := g.recordKeys[keyOf(employeeID, date)]
	if exists {
		rec = cloneRecord(g.records[id])
	} else {
		if _, ok := g.identities[employeeID]; !ok {
			return attendance.DayRecord{}, identity.ErrIdentityNotFound
		}
		rec = attendance.DayRecord{EmployeeID: employeeID, Date: attendance.DateOf(date)}
	}

	if err := fn(&rec); err != nil {
		return attendance.DayRecord{}, err
	}

	if !exists {
		created, err := g.createLocked(employeeID, date)
		if err != nil {
			return attendance.DayRecord{}, err
		}
		rec.ID = created.ID
		rec.CreatedAt = created.CreatedAt
		rec.Version = created.Version
	}
	g.storeLocked(&rec)
	return g.withEmployee(rec), nil
}

func (g *Gateway) createLocked(employeeID int64, date time.Time) (attendance.DayRecord, error) {
	if _, ok := g.identities[employeeID]; !ok {
		return attendance.DayRecord{}, identity.ErrIdentityNotFound
	}
	key := keyOf(employeeID, date)
	if _, taken := g.recordKeys[key]; taken {
		return attendance.DayRecord{}, attendance.ErrDayRecordExists
	}

	now := g.now()
	rec := attendance.DayRecord{
		ID:         g.nextRecordID,
		EmployeeID: employeeID,
		Date:       attendance.DateOf(date),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	g.nextRecordID++
	g.records[rec.ID] = rec
	g.recordKeys[key] = rec.ID
	return rec, nil
}

func (g *Gateway) storeLocked(rec *attendance.DayRecord) {
	rec.Version++
	rec.UpdatedAt = g.now()
	rec.Employee = nil
	g.records[rec.ID] = *rec
}

func (g *Gateway) withEmployee(rec attendance.DayRecord) attendance.DayRecord {
	out := cloneRecord(rec)
	if i, ok := g.identities[rec.EmployeeID]; ok {
		out.Employee = i.View()
	}
	return out
}

type recordOrder func(a, b attendance.DayRecord) bool

func byIDAsc(a, b attendance.DayRecord) bool { return a.ID < b.ID }

func byDateDesc(a, b attendance.DayRecord) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID > b.ID
}

func byDateAsc(a, b attendance.DayRecord) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}

func byUpdatedDesc(a, b attendance.DayRecord) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}

func (g *Gateway) filterRecords(keep func(attendance.DayRecord) bool, less recordOrder) []attendance.DayRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := []attendance.DayRecord{}
	for _, r := range g.records {
		if keep(r) {
			out = append(out, g.withEmployee(r))
		}
	}
	sort.Slice(out, func(a, b int) bool { return less(out[a], out[b]) })
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneRecord(r attendance.DayRecord) attendance.DayRecord {
	r.Entry = cloneTime(r.Entry)
	r.BreakStart = cloneTime(r.BreakStart)
	r.BreakEnd = cloneTime(r.BreakEnd)
	r.Exit = cloneTime(r.Exit)
	return r
}
