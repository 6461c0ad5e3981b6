package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
	"github.com/igorgomez/ponto-seguro-1/internal/repository/memory"
)

func strPtr(s string) *string { return &s }

func TestScheduleService_Replace(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewGateway()
	require.NoError(t, gw.Initialize(ctx))
	emp, err := gw.CreateIdentity(ctx, identity.Identity{CPF: "12345678901", Name: "Ana", Role: identity.RoleEmployee, Active: true})
	require.NoError(t, err)

	svc := NewScheduleService(gw)

	first, err := svc.Replace(ctx, schedule.ReplaceScheduleRequest{
		EmployeeID: emp.ID,
		Schedules: []schedule.ScheduleRow{
			{Weekday: 1, StartTime: "09:00", EndTime: "18:00", BreakStart: strPtr("12:00"), BreakEnd: strPtr("13:00")},
			{Weekday: 2, StartTime: "09:00", EndTime: "18:00"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := svc.Replace(ctx, schedule.ReplaceScheduleRequest{
		EmployeeID: emp.ID,
		Schedules:  []schedule.ScheduleRow{{Weekday: 5, StartTime: "08:00", EndTime: "12:00"}},
	})
	require.NoError(t, err)
	require.Len(t, second, 1)

	listed, err := svc.List(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 5, listed[0].Weekday)
	assert.Equal(t, "08:00", listed[0].StartTime)
	assert.Nil(t, listed[0].BreakStart)
}

func TestScheduleService_ReplaceRejects(t *testing.T) {
	ctx := context.Background()
	gw := memory.NewGateway()
	require.NoError(t, gw.Initialize(ctx))
	svc := NewScheduleService(gw)

	_, err := svc.Replace(ctx, schedule.ReplaceScheduleRequest{})
	assert.ErrorIs(t, err, schedule.ErrEmployeeIDRequired)

	_, err = svc.Replace(ctx, schedule.ReplaceScheduleRequest{
		EmployeeID: 999,
		Schedules:  []schedule.ScheduleRow{{Weekday: 1, StartTime: "09:00", EndTime: "18:00"}},
	})
	assert.ErrorIs(t, err, identity.ErrIdentityNotFound)

	_, err = svc.Replace(ctx, schedule.ReplaceScheduleRequest{
		EmployeeID: 1,
		Schedules:  []schedule.ScheduleRow{{Weekday: 8, StartTime: "18:00", EndTime: "09:00"}},
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.List(ctx, 0)
	assert.ErrorIs(t, err, schedule.ErrEmployeeIDRequired)
}
