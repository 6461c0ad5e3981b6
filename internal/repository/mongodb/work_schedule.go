package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
)

// ListSchedules implements schedule.ScheduleRepository.
func (g *Gateway) ListSchedules(ctx context.Context, employeeID int64) ([]schedule.WorkSchedule, error) {
	cursor, err := g.schedules.Find(ctx,
		bson.M{"employee_id": employeeID},
		options.Find().SetSort(bson.D{{Key: "weekday", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, storage.Wrap("list schedules", err)
	}

	var docs []scheduleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storage.Wrap("list schedules", err)
	}

	rows := make([]schedule.WorkSchedule, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, d.toEntity())
	}
	return rows, nil
}

// CreateSchedule implements schedule.ScheduleRepository.
func (g *Gateway) CreateSchedule(ctx context.Context, ws schedule.WorkSchedule) (schedule.WorkSchedule, error) {
	exists, err := g.identityExists(ctx, ws.EmployeeID)
	if err != nil {
		return schedule.WorkSchedule{}, err
	}
	if !exists {
		return schedule.WorkSchedule{}, identity.ErrIdentityNotFound
	}

	id, err := g.nextID(ctx, schedulesCollection)
	if err != nil {
		return schedule.WorkSchedule{}, err
	}
	ws.ID = id
	ws.CreatedAt = now()

	doc := scheduleDocument{
		ID:         ws.ID,
		EmployeeID: ws.EmployeeID,
		Weekday:    ws.Weekday,
		StartTime:  ws.StartTime,
		EndTime:    ws.EndTime,
		BreakStart: ws.BreakStart,
		BreakEnd:   ws.BreakEnd,
		CreatedAt:  ws.CreatedAt,
	}
	if _, err := g.schedules.InsertOne(ctx, doc); err != nil {
		return schedule.WorkSchedule{}, storage.Wrap("create schedule", err)
	}
	return ws, nil
}

// DeleteSchedulesForEmployee implements schedule.ScheduleRepository.
func (g *Gateway) DeleteSchedulesForEmployee(ctx context.Context, employeeID int64) error {
	if _, err := g.schedules.DeleteMany(ctx, bson.M{"employee_id": employeeID}); err != nil {
		return storage.Wrap("delete schedules", err)
	}
	return nil
}
