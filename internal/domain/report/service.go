package report

import "context"

// ReportService derives hours, reconciliation and dashboard figures on read
type ReportService interface {
	// Hours computes the worked duration of a single day record
	Hours(ctx context.Context, recordID int64) (HoursResponse, error)

	// Reconcile classifies the employee's days in the period against the schedule
	Reconcile(ctx context.Context, req PeriodRequest) (ReconcileResponse, error)

	// BankBalance sums the overtime delta over completed days of the period
	BankBalance(ctx context.Context, req PeriodRequest) (BankBalanceResponse, error)

	// Dashboard counts today's attendance among active employees
	Dashboard(ctx context.Context) (DashboardResponse, error)
}
