package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	domain "github.com/workledger/backend/internal/domain/ledger"
	"github.com/workledger/backend/internal/infrastructure/cache"
	"github.com/workledger/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// ReportService is the aggregation engine over work records. Every query is
// scoped to a named period, and failures degrade to empty or zero results
// rather than propagating: a broken report must not take the caller down.
type ReportService struct {
	recordRepo    *persistence.Repository[domain.WorkRecord]
	assocRepo     *persistence.Repository[domain.EmployeeWorkRecord]
	clientCache   *cache.ClientCache
	employeeCache *cache.EmployeeCache
	logger        *zap.Logger
	now           func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	recordRepo *persistence.Repository[domain.WorkRecord],
	assocRepo *persistence.Repository[domain.EmployeeWorkRecord],
	clientCache *cache.ClientCache,
	employeeCache *cache.EmployeeCache,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		recordRepo:    recordRepo,
		assocRepo:     assocRepo,
		clientCache:   clientCache,
		employeeCache: employeeCache,
		logger:        logger.Named("report_service"),
		now:           time.Now,
	}
}

// UnprocessedCompletedCount counts the records in the period that are
// completed but whose payment has not been processed yet.
func (s *ReportService) UnprocessedCompletedCount(ctx context.Context, periodToken string) int64 {
	window := domain.ResolvePeriod(periodToken, s.now())

	count, err := s.recordRepo.Count(ctx,
		persistence.Where("work_date >= ? AND work_date <= ?", window.Start, window.End),
		persistence.Where("is_job_completed = ? AND is_payment_processed = ?", true, false),
	)
	if err != nil {
		s.logger.Error("unprocessed completed count failed",
			zap.String("period", periodToken), zap.Error(err))
		return 0
	}
	return count
}

// CompletedAccumulatedRevenue sums the total amount of every completed,
// not-yet-processed record in the period.
func (s *ReportService) CompletedAccumulatedRevenue(ctx context.Context, periodToken string) decimal.Decimal {
	window := domain.ResolvePeriod(periodToken, s.now())

	records, err := s.recordRepo.FindFiltered(ctx,
		persistence.Where("work_date >= ? AND work_date <= ?", window.Start, window.End),
		persistence.Where("is_job_completed = ? AND is_payment_processed = ?", true, false),
	)
	if err != nil {
		s.logger.Error("accumulated revenue query failed",
			zap.String("period", periodToken), zap.Error(err))
		return decimal.Zero
	}

	total := decimal.Zero
	for i := range records {
		total = total.Add(records[i].TotalAmount)
	}
	return total
}

// EmployeeEarnings aggregates each employee's share of the period's
// completed work; open records have not earned anything yet. Assignment is
// read from the delimited id list on the records; employees are hydrated in
// one batch through the cache. Rows are ordered by earnings descending, ties
// broken by job count descending, and ranked from zero.
func (s *ReportService) EmployeeEarnings(ctx context.Context, periodToken string) []EmployeeEarningsRow {
	window := domain.ResolvePeriod(periodToken, s.now())

	records, err := s.recordRepo.FindFiltered(ctx,
		persistence.Where("work_date >= ? AND work_date <= ?", window.Start, window.End),
		persistence.Where("is_job_completed = ?", true),
	)
	if err != nil {
		s.logger.Error("employee earnings query failed",
			zap.String("period", periodToken), zap.Error(err))
		return []EmployeeEarningsRow{}
	}

	type accumulator struct {
		earnings decimal.Decimal
		jobCount int
	}
	totals := make(map[int64]*accumulator)
	for i := range records {
		record := &records[i]
		for _, employeeID := range record.AssignedEmployeeIDs() {
			acc, ok := totals[employeeID]
			if !ok {
				acc = &accumulator{earnings: decimal.Zero}
				totals[employeeID] = acc
			}
			acc.earnings = acc.earnings.Add(record.AmountPerEmployee)
			acc.jobCount++
		}
	}
	if len(totals) == 0 {
		return []EmployeeEarningsRow{}
	}

	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	employees, err := s.employeeCache.GetMany(ctx, ids)
	if err != nil {
		s.logger.Error("employee earnings hydration failed",
			zap.String("period", periodToken), zap.Error(err))
		return []EmployeeEarningsRow{}
	}

	// Ids the cache could not resolve are dropped: a dangling id in a
	// delimited list must not produce a phantom row.
	rows := make([]EmployeeEarningsRow, 0, len(employees))
	for i := range employees {
		employee := &employees[i]
		acc := totals[employee.ID]
		if acc == nil {
			continue
		}
		rows = append(rows, EmployeeEarningsRow{
			EmployeeID: employee.ID,
			Name:       employee.Name,
			Phone:      employee.Phone,
			Earnings:   acc.earnings,
			JobCount:   acc.jobCount,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Earnings.Equal(rows[j].Earnings) {
			return rows[i].Earnings.GreaterThan(rows[j].Earnings)
		}
		return rows[i].JobCount > rows[j].JobCount
	})
	for i := range rows {
		rows[i].Rank = i
	}
	return rows
}

// EmployeeEarningsTotal sums one employee's share of the period's completed
// work, read from the delimited id list on each record.
func (s *ReportService) EmployeeEarningsTotal(ctx context.Context, employeeID int64, periodToken string) decimal.Decimal {
	window := domain.ResolvePeriod(periodToken, s.now())

	records, err := s.recordRepo.FindFiltered(ctx,
		persistence.Where("work_date >= ? AND work_date <= ?", window.Start, window.End),
		persistence.Where("is_job_completed = ?", true),
	)
	if err != nil {
		s.logger.Error("employee earnings total query failed",
			zap.Int64("employee_id", employeeID),
			zap.String("period", periodToken), zap.Error(err))
		return decimal.Zero
	}

	total := decimal.Zero
	for i := range records {
		if records[i].ContainsEmployee(employeeID) {
			total = total.Add(records[i].AmountPerEmployee)
		}
	}
	return total
}

// ClientEarnings aggregates the period's revenue per client. A record counts
// as paid when its association rows all carry the paid flag; a record with
// no association rows falls back to its own paid flag, since the two
// representations are not assumed to be in sync.
func (s *ReportService) ClientEarnings(ctx context.Context, periodToken string) []ClientEarningsRow {
	window := domain.ResolvePeriod(periodToken, s.now())

	records, err := s.recordRepo.FindFiltered(ctx,
		persistence.Where("work_date >= ? AND work_date <= ?", window.Start, window.End),
	)
	if err != nil {
		s.logger.Error("client earnings query failed",
			zap.String("period", periodToken), zap.Error(err))
		return []ClientEarningsRow{}
	}
	if len(records) == 0 {
		return []ClientEarningsRow{}
	}

	recordIDs := make([]int64, 0, len(records))
	for i := range records {
		recordIDs = append(recordIDs, records[i].ID)
	}
	assocs, err := s.assocRepo.FindFiltered(ctx,
		persistence.Where("work_record_id IN ?", recordIDs),
	)
	if err != nil {
		s.logger.Error("client earnings association query failed",
			zap.String("period", periodToken), zap.Error(err))
		return []ClientEarningsRow{}
	}

	type paidState struct {
		rows    int
		allPaid bool
	}
	states := make(map[int64]*paidState)
	for i := range assocs {
		assoc := &assocs[i]
		state, ok := states[assoc.WorkRecordID]
		if !ok {
			state = &paidState{allPaid: true}
			states[assoc.WorkRecordID] = state
		}
		state.rows++
		if !assoc.IsPaid {
			state.allPaid = false
		}
	}

	totals := make(map[int64]*ClientEarningsRow)
	for i := range records {
		record := &records[i]
		row, ok := totals[record.ClientID]
		if !ok {
			row = &ClientEarningsRow{
				ClientID:     record.ClientID,
				PaidAmount:   decimal.Zero,
				UnpaidAmount: decimal.Zero,
				TotalAmount:  decimal.Zero,
			}
			totals[record.ClientID] = row
		}

		paid := record.IsPaid
		if state := states[record.ID]; state != nil && state.rows > 0 {
			paid = state.allPaid
		}
		if paid {
			row.PaidAmount = row.PaidAmount.Add(record.TotalAmount)
		} else {
			row.UnpaidAmount = row.UnpaidAmount.Add(record.TotalAmount)
		}
		row.TotalAmount = row.TotalAmount.Add(record.TotalAmount)
		row.RecordCount++
	}

	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	clients, err := s.clientCache.GetMany(ctx, ids)
	if err != nil {
		s.logger.Error("client earnings hydration failed",
			zap.String("period", periodToken), zap.Error(err))
		return []ClientEarningsRow{}
	}

	rows := make([]ClientEarningsRow, 0, len(clients))
	for i := range clients {
		client := &clients[i]
		row := totals[client.ID]
		if row == nil {
			continue
		}
		row.Name = client.Name
		rows = append(rows, *row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalAmount.GreaterThan(rows[j].TotalAmount)
	})
	return rows
}

// CacheStats exposes the hit/miss/refresh counters of both entity caches
func (s *ReportService) CacheStats() (clients, employees cache.Stats) {
	return s.clientCache.Stats(), s.employeeCache.Stats()
}
