package report

import (
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
)

type DayClass string

const (
	ClassAbsent      DayClass = "absent"
	ClassIncomplete  DayClass = "incomplete"
	ClassPunctual    DayClass = "punctual"
	ClassLate        DayClass = "late"
	ClassUnscheduled DayClass = "unscheduled"
)

type DayClassification struct {
	Date           time.Time
	Weekday        int
	Class          DayClass
	ScheduledStart *string
	Entry          *time.Time
	LateMinutes    int
	Hours          Hours
}

type Reconciliation struct {
	PunctualityRatio float64
	Punctual         int
	Late             int
	Absent           int
	Incomplete       int
	Unscheduled      int
	Days             []DayClassification
}

// Reconciler compares punches against the planned schedule.
type Reconciler struct {
	// Tolerance is how far past the scheduled start an entry still counts as punctual.
	Tolerance time.Duration
	// Location is where schedule wall-clock times are interpreted.
	Location *time.Location
}

// Reconcile classifies every day in [from, to]. Days after today are not
// reported as absent. Scheduled days without a record up to today are absent.
// Days with no schedule and no punches are skipped.
func (rc Reconciler) Reconcile(records []attendance.DayRecord, schedules []schedule.WorkSchedule, from, to, today time.Time) Reconciliation {
	loc := rc.Location
	if loc == nil {
		loc = time.UTC
	}

	byDate := make(map[string]*attendance.DayRecord, len(records))
	for i := range records {
		key := records[i].Date.Format("2006-01-02")
		if _, dup := byDate[key]; !dup {
			byDate[key] = &records[i]
		}
	}
	plan := schedule.LatestByWeekday(schedules)

	result := Reconciliation{Days: []DayClassification{}}
	from, to, today = attendance.DateOf(from), attendance.DateOf(to), attendance.DateOf(today)

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		weekday := schedule.Weekday(d)
		ws, scheduled := plan[weekday]
		rec := byDate[d.Format("2006-01-02")]

		day := DayClassification{Date: d, Weekday: weekday, Hours: ComputeHours(rec)}
		if scheduled {
			start := ws.StartTime
			day.ScheduledStart = &start
		}

		switch {
		case rec == nil || rec.Entry == nil:
			if !scheduled || d.After(today) {
				continue
			}
			day.Class = ClassAbsent
			result.Absent++
		case rec.Exit == nil:
			day.Entry = rec.Entry
			day.Class = ClassIncomplete
			result.Incomplete++
		case !scheduled:
			day.Entry = rec.Entry
			day.Class = ClassUnscheduled
			result.Unscheduled++
		default:
			day.Entry = rec.Entry
			startMinutes, _ := validator.ParseClock(ws.StartTime)
			planned := time.Date(d.Year(), d.Month(), d.Day(), startMinutes/60, startMinutes%60, 0, 0, loc)
			if rec.Entry.After(planned.Add(rc.Tolerance)) {
				day.Class = ClassLate
				day.LateMinutes = int(rec.Entry.Sub(planned) / time.Minute)
				result.Late++
			} else {
				day.Class = ClassPunctual
				result.Punctual++
			}
		}

		result.Days = append(result.Days, day)
	}

	if denom := result.Punctual + result.Late; denom > 0 {
		result.PunctualityRatio = float64(result.Punctual) / float64(denom)
	}
	return result
}

type BankDay struct {
	Date             time.Time
	WorkedMinutes    int
	ScheduledMinutes int
	DeltaMinutes     int
}

type Bank struct {
	BalanceMinutes int
	Days           []BankDay
}

// BankBalance sums worked minus scheduled minutes over completed days. A day
// with no schedule row counts entirely as extra time.
func BankBalance(records []attendance.DayRecord, schedules []schedule.WorkSchedule) Bank {
	plan := schedule.LatestByWeekday(schedules)
	bank := Bank{Days: []BankDay{}}

	for i := range records {
		hours := ComputeHours(&records[i])
		if hours.InProgress {
			continue
		}
		scheduled := 0
		if ws, ok := plan[schedule.Weekday(records[i].Date)]; ok {
			scheduled = ScheduledMinutes(ws)
		}
		delta := hours.Minutes - scheduled
		bank.BalanceMinutes += delta
		bank.Days = append(bank.Days, BankDay{
			Date:             records[i].Date,
			WorkedMinutes:    hours.Minutes,
			ScheduledMinutes: scheduled,
			DeltaMinutes:     delta,
		})
	}
	return bank
}
