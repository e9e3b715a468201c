package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expenzo/expenzo-server/internal/application/port"
	"github.com/expenzo/expenzo-server/pkg/database"
)

// AnalyticsRepository implements port.AnalyticsRepository with SQL aggregates
// over the expenses table. Auto-approval counting relies on the explicit
// auto_approved column, never on comment text.
type AnalyticsRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *database.DB, logger *zap.Logger) port.AnalyticsRepository {
	return &AnalyticsRepository{db: db, logger: logger}
}

// KPIs computes the dashboard headline numbers for one company
func (r *AnalyticsRepository) KPIs(ctx context.Context, companyID uuid.UUID) (*port.KPIReport, error) {
	query := `
		SELECT
			COALESCE(SUM(CAST(amount_company_currency AS REAL)), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN status = 'approved'
				THEN strftime('%s', updated_at) - strftime('%s', created_at) END), 0),
			COALESCE(SUM(CASE WHEN auto_approved THEN 1 ELSE 0 END), 0)
		FROM expenses
		WHERE company_id = ?
	`

	var report port.KPIReport
	var autoApproved int
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, companyID.String()).Scan(
		&report.TotalSpend,
		&report.PendingApprovals,
		&report.AvgApprovalSeconds,
		&autoApproved,
	)
	if err != nil {
		r.logger.Error("Failed to compute KPIs", zap.Error(err))
		return nil, fmt.Errorf("failed to compute KPIs: %w", err)
	}

	if autoApproved > 0 {
		denominator := report.PendingApprovals + autoApproved
		if denominator < 1 {
			denominator = 1
		}
		report.AutoApprovedPercentage = int(float64(autoApproved)/float64(denominator)*100 + 0.5)
	}

	return &report, nil
}

// TimeSeries returns per-day spend in company currency
func (r *AnalyticsRepository) TimeSeries(ctx context.Context, companyID uuid.UUID) ([]port.TimeSeriesPoint, error) {
	query := `
		SELECT date(date), SUM(CAST(amount_company_currency AS REAL))
		FROM expenses
		WHERE company_id = ?
		GROUP BY date(date)
		ORDER BY date(date)
	`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID.String())
	if err != nil {
		r.logger.Error("Failed to compute time series", zap.Error(err))
		return nil, fmt.Errorf("failed to compute time series: %w", err)
	}
	defer rows.Close()

	var points []port.TimeSeriesPoint
	for rows.Next() {
		var p port.TimeSeriesPoint
		if err := rows.Scan(&p.Date, &p.Total); err != nil {
			return nil, fmt.Errorf("failed to scan time series point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Categories returns spend grouped by category, largest first
func (r *AnalyticsRepository) Categories(ctx context.Context, companyID uuid.UUID) ([]port.CategoryTotal, error) {
	query := `
		SELECT category, SUM(CAST(amount_company_currency AS REAL)) AS total
		FROM expenses
		WHERE company_id = ?
		GROUP BY category
		ORDER BY total DESC
	`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID.String())
	if err != nil {
		r.logger.Error("Failed to compute categories", zap.Error(err))
		return nil, fmt.Errorf("failed to compute categories: %w", err)
	}
	defer rows.Close()

	var totals []port.CategoryTotal
	for rows.Next() {
		var t port.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// Merchants returns spend grouped by extracted receipt merchant
func (r *AnalyticsRepository) Merchants(ctx context.Context, companyID uuid.UUID, limit int) ([]port.MerchantTotal, error) {
	query := `
		SELECT json_extract(extracted_fields, '$.merchant') AS merchant,
			SUM(CAST(amount_company_currency AS REAL)) AS total
		FROM expenses
		WHERE company_id = ?
			AND extracted_fields IS NOT NULL
			AND json_extract(extracted_fields, '$.merchant') IS NOT NULL
		GROUP BY merchant
		ORDER BY total DESC
		LIMIT ?
	`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, companyID.String(), limit)
	if err != nil {
		r.logger.Error("Failed to compute merchants", zap.Error(err))
		return nil, fmt.Errorf("failed to compute merchants: %w", err)
	}
	defer rows.Close()

	var totals []port.MerchantTotal
	for rows.Next() {
		var t port.MerchantTotal
		if err := rows.Scan(&t.Merchant, &t.Total); err != nil {
			return nil, fmt.Errorf("failed to scan merchant total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
