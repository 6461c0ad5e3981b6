// Package gatewaytest holds the conformance suite every storage backend must pass.
package gatewaytest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
)

// Factory returns an empty, initialised gateway. It registers its own cleanup.
type Factory func(t *testing.T) storage.Gateway

// Run executes the suite, one fresh gateway per case.
func Run(t *testing.T, factory Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, gw storage.Gateway)
	}{
		{"InitializeIsIdempotent", testInitializeIsIdempotent},
		{"IdentityLifecycle", testIdentityLifecycle},
		{"DuplicateCPF", testDuplicateCPF},
		{"UpdateMissingIdentity", testUpdateMissingIdentity},
		{"ScheduleLifecycle", testScheduleLifecycle},
		{"ScheduleReplaceInTransaction", testScheduleReplaceInTransaction},
		{"DayRecordLifecycle", testDayRecordLifecycle},
		{"DuplicateDayRecord", testDuplicateDayRecord},
		{"DayRecordQueries", testDayRecordQueries},
		{"MutateCreatesAndUpdates", testMutateCreatesAndUpdates},
		{"MutateFailurePersistsNothing", testMutateFailurePersistsNothing},
		{"ConcurrentEntriesCreateOneRecord", testConcurrentEntriesCreateOneRecord},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.fn(t, factory(t))
		})
	}
}

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(d time.Time, hour, min int) *time.Time {
	t := time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, time.UTC)
	return &t
}

func newEmployee(t *testing.T, gw storage.Gateway, cpf, name string) identity.Identity {
	t.Helper()
	i, err := gw.CreateIdentity(context.Background(), identity.Identity{
		CPF:          cpf,
		Name:         name,
		PasswordHash: "hash",
		Role:         identity.RoleEmployee,
		Active:       true,
	})
	require.NoError(t, err)
	return i
}

func testInitializeIsIdempotent(t *testing.T, gw storage.Gateway) {
	ctx := context.Background()
	require.NoError(t, gw.Initialize(ctx))
	require.NoError(t, gw.Initialize(ctx))

	admin, err := gw.GetAdminIdentity(ctx)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, storage.DefaultAdminCPF, admin.CPF)
	assert.True(t, admin.Active)
	assert.False(t, admin.MustResetPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(storage.DefaultAdminPassword)))

	byCPF, err := gw.GetIdentityByCPF(ctx, storage.DefaultAdminCPF)
	require.NoError(t, err)
	require.NotNil(t, byCPF)
	assert.Equal(t, admin.ID, byCPF.ID)

	employees, err := gw.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
}

func testIdentityLifecycle(t *testing.T, gw storage.Gateway) {
	ctx := context.Background()

	missing, err := gw.GetIdentity(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)
	missing, err = gw.GetIdentityByCPF(ctx, "99999999999")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := newEmployee(t, gw, "11111111111", "Ana")
	second := newEmployee(t, gw, "22222222222", "Bruno")
	assert.Greater(t, second.ID, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	got, err := gw.GetIdentity(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, identity.RoleEmployee, got.Role)

	email := "ana@example.com"
	weekly := 44
	inactive := false
	updated, err := gw.UpdateIdentity(ctx, first.ID, identity.Patch{Email: &email, WeeklyHours: &weekly, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Name)
	require.NotNil(t, updated.Email)
	assert.Equal(t, email, *updated.Email)
	assert.False(t, updated.Active)

	got, err = gw.GetIdentityByCPF(ctx, "11111111111")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.WeeklyHours)
	assert.Equal(t, 44, *got.WeeklyHours)
	assert.False(t, got.Active)

	employees, err := gw.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, first.ID, employees[0].ID)
}

func testDuplicateCPF(t *testing.T, gw storage.Gateway) {
	newEmployee(t, gw, "33333333333", "Carla")
	_, err := gw.CreateIdentity(context.Background(), identity.Identity{
		CPF: "33333333333", Name: "Other", PasswordHash: "x", Role: identity.RoleEmployee, Active: true,
	})
	assert.ErrorIs(t, err, identity.ErrCPFExists)
}

func testUpdateMissingIdentity(t *testing.T, gw storage.Gateway) {
	name := "ghost"
	_, err := gw.UpdateIdentity(context.Background(), 999999, identity.Patch{Name: &name})
	assert.ErrorIs(t, err, identity.ErrIdentityNotFound)
}

func testScheduleLifecycle(t *testing.T, gw storage.Gateway) {
	ctx := context.Background()
	emp := newEmployee(t, gw, "44444444444", "Davi")

	rows, err := gw.ListSchedules(ctx, emp.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	bs, be := "12:00", "13:00"
	created, err := gw.CreateSchedule(ctx, schedule.WorkSchedule{
		EmployeeID: emp.ID, Weekday: 1, StartTime: "09:00", EndTime: "18:00", BreakStart: &bs, BreakEnd: &be,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	dup, err := gw.CreateSchedule(ctx, schedule.WorkSchedule{
		EmployeeID: emp.ID, Weekday: 1, StartTime: "08:00", EndTime: "17:00",
	})
	require.NoError(t, err, "duplicate weekday rows are tolerated")
	assert.Greater(t, dup.ID, created.ID)

	_, err = gw.CreateSchedule(ctx, schedule.WorkSchedule{
		EmployeeID: emp.ID, Weekday: 5, StartTime: "09:00", EndTime: "13:00",
	})
	require.NoError(t, err)

	rows, err = gw.ListSchedules(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Weekday)
	assert.Equal(t, "09:00", rows[0].StartTime)
	require.NotNil(t, rows[0].BreakStart)
	assert.Equal(t, "12:00", *rows[0].BreakStart)
	assert.Nil(t, rows[1].BreakStart)
	assert.Equal(t, "08:00", schedule.LatestByWeekday(rows)[1].StartTime)

	require.NoError(t, gw.DeleteSchedulesForEmployee(ctx, emp.ID))
	rows, err = gw.ListSchedules(ctx, emp.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func testScheduleReplaceInTransaction(t *testing.T, gw storage.Gateway) {
	ctx := context.Background()
	emp := newEmployee(t, gw, "55555555555", "Eva")
	_, err := gw.CreateSchedule(ctx, schedule.WorkSchedule{EmployeeID: emp.ID, Weekday: 2, StartTime: "09:00", EndTime: "18:00"})
	require.NoError(t, err)

	err = gw.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := gw.DeleteSchedulesForEmployee(ctx, emp.ID); err != nil {
			return err
		}
		_, err := gw.CreateSchedule(ctx, schedule.WorkSchedule{EmployeeID: emp.ID, Weekday: 3, StartTime: "07:00", EndTime: "16:00"})
		return err
	})
	require.NoError(t, err)

	rows, err := gw.ListSchedules(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Weekday)
}

func testDayRecordLifecycle(t *testing.T, gw storage.Gateway) {
	ctx := context.Background()
	emp := newEmployee(t, gw, "66666666666", "Fabio")

	missing, err := gw.GetDayRecord(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	rec, err := gw.CreateDayRecord(ctx, emp.ID, day)
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.True(t, rec.Date.Equal(day))
	assert.Nil(t, rec.Entry)

	loc := json.RawMessage(`{"lat":-23.55,"lng":-46.63}`)
	note := "late bus"
	updated, err := gw.UpdateDayRecord(ctx, rec.ID, attendance.Patch{Entry: at(day, 9, 0), EntryLocation: loc, Note: &note})
	require.NoError(t, err)
	require.NotNil(t, updated.Entry)
	assert.True(t, updated.Entry.Equal(*at(day, 9, 0)))
	assert.Greater(t, updated.Version, rec.Version)

	reason := "forgot to punch"
	editor := emp.ID
	_, err = gw.UpdateDayRecord(ctx, rec.ID, attendance.Patch{Exit: at(day, 18, 0), EditReason: &reason, EditedBy: &editor})
	require.NoError(t, err)

	got, err := gw.GetDayRecord(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Entry.Equal(*at(day, 9, 0)), "earlier fields survive a partial update")
	assert.True(t, got.Exit.Equal(*at(day, 18, 0)))
	assert.JSONEq(t, string(loc), string(got.EntryLocation))
	assert.Nil(t, got.ExitLocation)
	require.NotNil(t, got.Note)
	assert.Equal(t, note, *got.Note)
	require.NotNil(t, got.EditReason)
	assert.Equal(t, reason, *got.EditReason)
	require.NotNil(t, got.Employee)
	assert.Equal(t, "Fabio", got.Employee.Name)

	_, err = gw.UpdateDayRecord(ctx, 999999, attendance.Patch{Exit: at(day, 18, 0)})
	assert.ErrorIs(t, err, attendance.ErrDayRecordNotFound)
}

func testDuplicateDayRecord(t *testing.T, gw storage.Gateway) {
	ctx := context.Background()
	emp := newEmployee(t, gw, "77777777777", "Gabi")

	_, err := gw.CreateDayRecord(ctx, emp.ID, day)
	require.NoError(t, err)
	_, err = gw.CreateDayRecord(ctx, emp.ID, day.Add(10*time.Hour))
	assert.ErrorIs(t, err, attendance.ErrDayRecordExists)
}

func testDayRecordQueries(t *testing.T, gw storage.Gateway) {
	ctx := context.Background()
	ana := newEmployee(t, gw, "88888888888", "Ana")
	bia := newEmployee(t, gw, "99999999999", "Bia")

	var lastID int64
	for i := 0; i < 3; i++ {
		d := day.AddDate(0, 0, i)
		rec, err := gw.CreateDayRecord(ctx, ana.ID, d)
		require.NoError(t, err)
		lastID = rec.ID
	}
	biaRec, err := gw.CreateDayRecord(ctx, bia.ID, day)
	require.NoError(t, err)

	history, err := gw.GetDayRecordsForEmployee(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].Date.Equal(day.AddDate(0, 0, 2)), "most recent date first")
	assert.True(t, history[2].Date.Equal(day))
	for _, r := range history {
		require.NotNil(t, r.Employee)
		assert.Equal(t, "Ana", r.Employee.Name)
	}

	between, err := gw.GetDayRecordsForEmployeeBetween(ctx, ana.ID, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, between, 2)
	assert.True(t, between[0].Date.Equal(day.AddDate(0, 0, 1)))

	sameDay, err := gw.GetDayRecordsForDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, sameDay, 2)
	names := map[string]bool{}
	for _, r := range sameDay {
		require.NotNil(t, r.Employee)
		names[r.Employee.Name] = true
	}
	assert.Equal(t, map[string]bool{"Ana": true, "Bia": true}, names)

	byKey, err := gw.GetDayRecordByEmployeeAndDate(ctx, bia.ID, day)
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, biaRec.ID, byKey.ID)
	none, err := gw.GetDayRecordByEmployeeAndDate(ctx, bia.ID, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, none)

	all, err := gw.GetAllDayRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	// Touching the oldest record moves it to the top of the recent list.
	time.Sleep(10 * time.Millisecond)
	_, err = gw.UpdateDayRecord(ctx, biaRec.ID, attendance.Patch{Entry: at(day, 8, 0)})
	require.NoError(t, err)

	recent, err := gw.GetRecentDayRecords(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, biaRec.ID, recent[0].ID)
	assert.Equal(t, lastID, recent[1].ID)
}

func testMutateCreatesAndUpdates(t *testing.T, gw storage.Gateway) {
	ctx := context.Background()
	emp := newEmployee(t, gw, "12312312312", "Hugo")

	rec, err := gw.MutateDayRecord(ctx, emp.ID, day, func(r *attendance.DayRecord) error {
		return attendance.ApplyPunch(r, attendance.PunchEntry, *at(day, 9, 0), nil)
	})
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	require.NotNil(t, rec.Entry)

	again, err := gw.MutateDayRecord(ctx, emp.ID, day, func(r *attendance.DayRecord) error {
		assert.Equal(t, rec.ID, r.ID)
		return attendance.ApplyPunch(r, attendance.PunchBreak, *at(day, 12, 0), json.RawMessage(`{"k":1}`))
	})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Greater(t, again.Version, rec.Version)

	got, err := gw.GetDayRecordByEmployeeAndDate(ctx, emp.ID, day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Entry.Equal(*at(day, 9, 0)))
	assert.True(t, got.BreakStart.Equal(*at(day, 12, 0)))
	assert.JSONEq(t, `{"k":1}`, string(got.BreakLocation))
	assert.Equal(t, attendance.StateOnBreak, got.State())
}

func testMutateFailurePersistsNothing(t *testing.T, gw storage.Gateway) {
	ctx := context.Background()
	emp := newEmployee(t, gw, "32132132132", "Iris")

	_, err := gw.MutateDayRecord(ctx, emp.ID, day, func(r *attendance.DayRecord) error {
		return attendance.ApplyPunch(r, attendance.PunchBreak, *at(day, 12, 0), nil)
	})
	var seqErr *attendance.SequenceError
	require.True(t, errors.As(err, &seqErr), "got %v", err)

	got, err := gw.GetDayRecordByEmployeeAndDate(ctx, emp.ID, day)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = gw.MutateDayRecord(ctx, 999999, day, func(r *attendance.DayRecord) error { return nil })
	assert.ErrorIs(t, err, identity.ErrIdentityNotFound)
}

func testConcurrentEntriesCreateOneRecord(t *testing.T, gw storage.Gateway) {
	ctx := context.Background()
	emp := newEmployee(t, gw, "45645645645", "Joao")

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := gw.MutateDayRecord(ctx, emp.ID, day, func(r *attendance.DayRecord) error {
				return attendance.ApplyPunch(r, attendance.PunchEntry, *at(day, 9, i), nil)
			})
			if err != nil {
				errs <- fmt.Errorf("worker %d: %w", i, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	records, err := gw.GetDayRecordsForEmployee(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotNil(t, records[0].Entry)
}
