package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
)

const maxMutateAttempts = 50

var errTooMuchContention = errors.New("day record kept changing during compare-and-set")

func (g *Gateway) attachEmployees(ctx context.Context, records []attendance.DayRecord) error {
	seen := make(map[int64]struct{}, len(records))
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.EmployeeID]; !ok {
			seen[rec.EmployeeID] = struct{}{}
			ids = append(ids, rec.EmployeeID)
		}
	}

	views, err := g.viewsByID(ctx, ids)
	if err != nil {
		return err
	}
	for i := range records {
		records[i].Employee = views[records[i].EmployeeID]
	}
	return nil
}

func (g *Gateway) withEmployee(ctx context.Context, rec attendance.DayRecord) (attendance.DayRecord, error) {
	records := []attendance.DayRecord{rec}
	if err := g.attachEmployees(ctx, records); err != nil {
		return attendance.DayRecord{}, err
	}
	return records[0], nil
}

func (g *Gateway) findDayRecord(ctx context.Context, op string, filter bson.M) (*attendance.DayRecord, error) {
	var doc dayRecordDocument
	if err := g.dayRecords.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, storage.Wrap(op, err)
	}
	rec, err := g.withEmployee(ctx, doc.toEntity())
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (g *Gateway) listDayRecords(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]attendance.DayRecord, error) {
	cursor, err := g.dayRecords.Find(ctx, filter, opts)
	if err != nil {
		return nil, storage.Wrap(op, err)
	}
	var docs []dayRecordDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storage.Wrap(op, err)
	}

	records := make([]attendance.DayRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toEntity())
	}
	if err := g.attachEmployees(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

var (
	sortByDateDesc    = bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}
	sortByDateAsc     = bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}
	sortByUpdatedDesc = bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}
)

// GetDayRecord implements attendance.DayRecordRepository.
func (g *Gateway) GetDayRecord(ctx context.Context, id int64) (*attendance.DayRecord, error) {
	return g.findDayRecord(ctx, "get day record", bson.M{"_id": id})
}

// GetDayRecordByEmployeeAndDate implements attendance.DayRecordRepository.
func (g *Gateway) GetDayRecordByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*attendance.DayRecord, error) {
	return g.findDayRecord(ctx, "get day record by employee and date", bson.M{"employee_id": employeeID, "date": dateKey(date)})
}

// GetDayRecordsForDate implements attendance.DayRecordRepository.
func (g *Gateway) GetDayRecordsForDate(ctx context.Context, date time.Time) ([]attendance.DayRecord, error) {
	return g.listDayRecords(ctx, "get day records for date",
		bson.M{"date": dateKey(date)},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// GetDayRecordsForEmployee implements attendance.DayRecordRepository.
func (g *Gateway) GetDayRecordsForEmployee(ctx context.Context, employeeID int64) ([]attendance.DayRecord, error) {
	return g.listDayRecords(ctx, "get day records for employee",
		bson.M{"employee_id": employeeID},
		options.Find().SetSort(sortByDateDesc))
}

// GetDayRecordsForEmployeeBetween implements attendance.DayRecordRepository.
// YYYY-MM-DD strings order the same way as the dates they encode.
func (g *Gateway) GetDayRecordsForEmployeeBetween(ctx context.Context, employeeID int64, from, to time.Time) ([]attendance.DayRecord, error) {
	return g.listDayRecords(ctx, "get day records for employee between",
		bson.M{"employee_id": employeeID, "date": bson.M{"$gte": dateKey(from), "$lte": dateKey(to)}},
		options.Find().SetSort(sortByDateAsc))
}

// GetAllDayRecords implements attendance.DayRecordRepository.
func (g *Gateway) GetAllDayRecords(ctx context.Context) ([]attendance.DayRecord, error) {
	return g.listDayRecords(ctx, "get all day records", bson.M{}, options.Find().SetSort(sortByDateDesc))
}

// GetRecentDayRecords implements attendance.DayRecordRepository.
func (g *Gateway) GetRecentDayRecords(ctx context.Context, limit int) ([]attendance.DayRecord, error) {
	opts := options.Find().SetSort(sortByUpdatedDesc)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return g.listDayRecords(ctx, "get recent day records", bson.M{}, opts)
}

func (g *Gateway) insertDayRecord(ctx context.Context, rec attendance.DayRecord) (attendance.DayRecord, error) {
	id, err := g.nextID(ctx, dayRecordsCollection)
	if err != nil {
		return attendance.DayRecord{}, err
	}
	ts := now()
	rec.ID = id
	rec.Date = attendance.DateOf(rec.Date)
	rec.Version = 1
	rec.CreatedAt = ts
	rec.UpdatedAt = ts

	if _, err := g.dayRecords.InsertOne(ctx, newDayRecordDocument(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.DayRecord{}, attendance.ErrDayRecordExists
		}
		return attendance.DayRecord{}, storage.Wrap("insert day record", err)
	}
	return rec, nil
}

// CreateDayRecord implements attendance.DayRecordRepository.
func (g *Gateway) CreateDayRecord(ctx context.Context, employeeID int64, date time.Time) (attendance.DayRecord, error) {
	exists, err := g.identityExists(ctx, employeeID)
	if err != nil {
		return attendance.DayRecord{}, err
	}
	if !exists {
		return attendance.DayRecord{}, identity.ErrIdentityNotFound
	}

	rec, err := g.insertDayRecord(ctx, attendance.DayRecord{EmployeeID: employeeID, Date: date})
	if err != nil {
		return attendance.DayRecord{}, err
	}
	return g.withEmployee(ctx, rec)
}

// UpdateDayRecord implements attendance.DayRecordRepository.
func (g *Gateway) UpdateDayRecord(ctx context.Context, id int64, patch attendance.Patch) (attendance.DayRecord, error) {
	set := bson.M{"updated_at": now()}
	if patch.Entry != nil {
		set["entry"] = *patch.Entry
	}
	if patch.BreakStart != nil {
		set["break_start"] = *patch.BreakStart
	}
	if patch.BreakEnd != nil {
		set["break_end"] = *patch.BreakEnd
	}
	if patch.Exit != nil {
		set["exit"] = *patch.Exit
	}
	if patch.Note != nil {
		set["note"] = *patch.Note
	}
	if patch.EntryLocation != nil {
		set["entry_location"] = string(patch.EntryLocation)
	}
	if patch.BreakLocation != nil {
		set["break_location"] = string(patch.BreakLocation)
	}
	if patch.ReturnLocation != nil {
		set["return_location"] = string(patch.ReturnLocation)
	}
	if patch.ExitLocation != nil {
		set["exit_location"] = string(patch.ExitLocation)
	}
	if patch.EditReason != nil {
		set["edit_reason"] = *patch.EditReason
	}
	if patch.EditedBy != nil {
		set["edited_by"] = *patch.EditedBy
	}

	var doc dayRecordDocument
	err := g.dayRecords.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set, "$inc": bson.M{"version": int64(1)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.DayRecord{}, attendance.ErrDayRecordNotFound
		}
		return attendance.DayRecord{}, storage.Wrap("update day record", err)
	}
	return g.withEmployee(ctx, doc.toEntity())
}

// MutateDayRecord implements attendance.DayRecordRepository with an
// optimistic compare-and-set on the version field. A lost race re-reads the
// record and runs fn again, so fn must not have side effects.
func (g *Gateway) MutateDayRecord(ctx context.Context, employeeID int64, date time.Time, fn attendance.MutateFunc) (attendance.DayRecord, error) {
	key := bson.M{"employee_id": employeeID, "date": dateKey(date)}
	checkedEmployee := false

	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		if attempt > 0 {
			if err := backoff(ctx, attempt); err != nil {
				return attendance.DayRecord{}, storage.Wrap("mutate day record", err)
			}
		}

		var doc dayRecordDocument
		err := g.dayRecords.FindOne(ctx, key).Decode(&doc)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.DayRecord{}, storage.Wrap("mutate day record", err)
		}

		if errors.Is(err, mongo.ErrNoDocuments) {
			if !checkedEmployee {
				exists, err := g.identityExists(ctx, employeeID)
				if err != nil {
					return attendance.DayRecord{}, err
				}
				if !exists {
					return attendance.DayRecord{}, identity.ErrIdentityNotFound
				}
				checkedEmployee = true
			}

			rec := attendance.DayRecord{EmployeeID: employeeID, Date: attendance.DateOf(date)}
			if err := fn(&rec); err != nil {
				return attendance.DayRecord{}, err
			}
			created, err := g.insertDayRecord(ctx, rec)
			if errors.Is(err, attendance.ErrDayRecordExists) {
				continue
			}
			if err != nil {
				return attendance.DayRecord{}, err
			}
			return g.withEmployee(ctx, created)
		}

		rec := doc.toEntity()
		if err := fn(&rec); err != nil {
			return attendance.DayRecord{}, err
		}
		rec.ID = doc.ID
		rec.Version = doc.Version + 1
		rec.UpdatedAt = now()

		res, err := g.dayRecords.ReplaceOne(ctx,
			bson.M{"_id": doc.ID, "version": doc.Version},
			newDayRecordDocument(rec),
		)
		if err != nil {
			return attendance.DayRecord{}, storage.Wrap("mutate day record", err)
		}
		if res.MatchedCount == 0 {
			continue
		}
		return g.withEmployee(ctx, rec)
	}

	return attendance.DayRecord{}, &storage.PersistenceError{Op: "mutate day record", Err: errTooMuchContention}
}

func backoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(time.Duration(attempt) * 2 * time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
