package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
	"github.com/igorgomez/ponto-seguro-1/internal/repository/memory"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(hour, min int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = time.Date(2024, 3, 4, hour, min, 0, 0, saoPaulo)
}

func setup(t *testing.T) (*AttendanceServiceImpl, *memory.Gateway, *testClock, identity.Identity) {
	t.Helper()
	ctx := context.Background()

	gw := memory.NewGateway()
	require.NoError(t, gw.Initialize(ctx))

	emp, err := gw.CreateIdentity(ctx, identity.Identity{
		CPF:          "12345678901",
		Name:         "Maria Souza",
		PasswordHash: "x",
		Role:         identity.RoleEmployee,
		Active:       true,
	})
	require.NoError(t, err)

	clock := &testClock{}
	clock.Set(9, 0)

	svc := NewAttendanceService(gw, gw, saoPaulo).(*AttendanceServiceImpl)
	svc.now = clock.Now
	return svc, gw, clock, emp
}

func punch(t *testing.T, svc *AttendanceServiceImpl, employeeID int64, p attendance.PunchType) (attendance.DayRecordResponse, error) {
	t.Helper()
	return svc.RegisterPunch(context.Background(), attendance.PunchRequest{EmployeeID: employeeID, Type: p})
}

func TestRegisterPunch_FullDay(t *testing.T) {
	svc, _, clock, emp := setup(t)

	resp, err := punch(t, svc, emp.ID, attendance.PunchEntry)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateWorking, resp.State)
	assert.Equal(t, "2024-03-04", resp.Date)
	require.NotNil(t, resp.Entry)
	assert.Equal(t, "2024-03-04T09:00:00-03:00", *resp.Entry)

	clock.Set(12, 0)
	resp, err = punch(t, svc, emp.ID, attendance.PunchBreak)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateOnBreak, resp.State)

	clock.Set(13, 0)
	resp, err = punch(t, svc, emp.ID, attendance.PunchReturn)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateReturned, resp.State)

	clock.Set(18, 0)
	resp, err = punch(t, svc, emp.ID, attendance.PunchExit)
	require.NoError(t, err)
	assert.Equal(t, attendance.StateCompleted, resp.State)
	require.NotNil(t, resp.Employee)
	assert.Equal(t, "Maria Souza", resp.Employee.Name)
}

func TestRegisterPunch_LateEveningBelongsToLocalDay(t *testing.T) {
	svc, _, clock, emp := setup(t)

	// 22:30 in São Paulo is already the next day in UTC.
	clock.Set(22, 30)
	resp, err := punch(t, svc, emp.ID, attendance.PunchEntry)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", resp.Date)
}

func TestRegisterPunch_SequenceErrors(t *testing.T) {
	svc, gw, _, emp := setup(t)

	_, err := punch(t, svc, emp.ID, attendance.PunchBreak)
	var seqErr *attendance.SequenceError
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, attendance.ReasonNoEntry, seqErr.Reason)

	records, err := gw.GetDayRecordsForEmployee(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Empty(t, records, "a rejected punch must not create a record")

	_, err = punch(t, svc, emp.ID, attendance.PunchEntry)
	require.NoError(t, err)
	_, err = punch(t, svc, emp.ID, attendance.PunchBreak)
	require.NoError(t, err)

	_, err = punch(t, svc, emp.ID, attendance.PunchExit)
	require.ErrorAs(t, err, &seqErr)
	assert.Equal(t, attendance.ReasonBreakNotClosed, seqErr.Reason)
}

func TestRegisterPunch_SecondEntryOverwrites(t *testing.T) {
	svc, gw, clock, emp := setup(t)

	_, err := punch(t, svc, emp.ID, attendance.PunchEntry)
	require.NoError(t, err)
	clock.Set(9, 15)
	resp, err := punch(t, svc, emp.ID, attendance.PunchEntry)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04T09:15:00-03:00", *resp.Entry)

	records, err := gw.GetDayRecordsForEmployee(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRegisterPunch_ConcurrentEntries(t *testing.T) {
	svc, gw, _, emp := setup(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RegisterPunch(context.Background(), attendance.PunchRequest{EmployeeID: emp.ID, Type: attendance.PunchEntry})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := gw.GetDayRecordsForEmployee(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRegisterPunch_RejectsUnknownAndInactive(t *testing.T) {
	svc, gw, _, emp := setup(t)
	ctx := context.Background()

	_, err := punch(t, svc, 999, attendance.PunchEntry)
	assert.ErrorIs(t, err, identity.ErrIdentityNotFound)

	inactive := false
	_, err = gw.UpdateIdentity(ctx, emp.ID, identity.Patch{Active: &inactive})
	require.NoError(t, err)
	_, err = punch(t, svc, emp.ID, attendance.PunchEntry)
	assert.ErrorIs(t, err, identity.ErrIdentityInactive)

	_, err = punch(t, svc, emp.ID, attendance.PunchType("lunch"))
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestEditDayRecord(t *testing.T) {
	svc, _, _, emp := setup(t)
	ctx := context.Background()

	created, err := punch(t, svc, emp.ID, attendance.PunchEntry)
	require.NoError(t, err)

	exit := "17:45"
	resp, err := svc.EditDayRecord(ctx, attendance.EditDayRecordRequest{
		ID:       created.ID,
		EditorID: 1,
		Exit:     &exit,
		Reason:   "  forgot to punch out ",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Exit)
	assert.Equal(t, "2024-03-04T17:45:00-03:00", *resp.Exit)
	require.NotNil(t, resp.EditReason)
	assert.Equal(t, "forgot to punch out", *resp.EditReason)
	require.NotNil(t, resp.EditedBy)
	assert.Equal(t, int64(1), *resp.EditedBy)
	assert.Equal(t, attendance.StateCompleted, resp.State)

	_, err = svc.EditDayRecord(ctx, attendance.EditDayRecordRequest{ID: created.ID, Exit: &exit})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.EditDayRecord(ctx, attendance.EditDayRecordRequest{ID: 999, Exit: &exit, Reason: "x"})
	assert.ErrorIs(t, err, attendance.ErrDayRecordNotFound)
}

func TestQueries(t *testing.T) {
	svc, _, clock, emp := setup(t)
	ctx := context.Background()

	today, err := svc.GetToday(ctx, emp.ID)
	require.NoError(t, err)
	assert.Nil(t, today)

	_, err = punch(t, svc, emp.ID, attendance.PunchEntry)
	require.NoError(t, err)
	clock.Set(12, 0)
	_, err = punch(t, svc, emp.ID, attendance.PunchBreak)
	require.NoError(t, err)

	today, err = svc.GetToday(ctx, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, attendance.StateOnBreak, today.State)

	history, err := svc.GetHistory(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	forDate, err := svc.GetAllForDate(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, forDate, 1)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	recent, err := svc.GetRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	one, err := svc.GetDayRecord(ctx, today.ID)
	require.NoError(t, err)
	assert.Equal(t, today.ID, one.ID)

	_, err = svc.GetDayRecord(ctx, 999)
	assert.ErrorIs(t, err, attendance.ErrDayRecordNotFound)

	activities, err := svc.RecentActivities(ctx, 5)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, attendance.PunchBreak, activities[0].Punch)
	assert.Equal(t, "Maria Souza", activities[0].EmployeeName)
	assert.Equal(t, "2024-03-04T12:00:00-03:00", activities[0].At)
}
