package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/garyjia/invoice-qc/internal/models"
	"github.com/garyjia/invoice-qc/pkg/database"
	"go.uber.org/zap"
)

// RunRepository persists validation runs and their per-invoice results.
type RunRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *database.DB, logger *zap.Logger) *RunRepository {
	return &RunRepository{db: db, logger: logger}
}

// SaveRun stores a complete report in one transaction and returns the run ID.
func (r *RunRepository) SaveRun(rep *models.Report) (int64, error) {
	var runID int64

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		errorCounts, err := json.Marshal(rep.Summary.ErrorCounts)
		if err != nil {
			return fmt.Errorf("failed to marshal error counts: %w", err)
		}

		res, err := tx.Exec(`
			INSERT INTO validation_runs (total_invoices, valid_invoices, invalid_invoices, error_counts)
			VALUES (?, ?, ?, ?)`,
			rep.Summary.TotalInvoices,
			rep.Summary.ValidInvoices,
			rep.Summary.InvalidInvoices,
			string(errorCounts),
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		runID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get run id: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO validation_results (run_id, position, invoice_id, is_valid, errors)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare result insert: %w", err)
		}
		defer stmt.Close()

		for i, result := range rep.Results {
			errs, err := json.Marshal(result.Errors)
			if err != nil {
				return fmt.Errorf("failed to marshal result errors: %w", err)
			}
			if _, err := stmt.Exec(runID, i, result.InvoiceID, result.IsValid, string(errs)); err != nil {
				return fmt.Errorf("failed to insert result %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("Validation run persisted",
		zap.Int64("run_id", runID),
		zap.Int("result_count", len(rep.Results)))
	return runID, nil
}

// GetRun loads one stored run with its results in original order.
func (r *RunRepository) GetRun(runID int64) (*models.Report, error) {
	var rep models.Report
	var errorCounts string

	row := r.db.QueryRow(`
		SELECT total_invoices, valid_invoices, invalid_invoices, error_counts
		FROM validation_runs WHERE id = ?`, runID)
	if err := row.Scan(
		&rep.Summary.TotalInvoices,
		&rep.Summary.ValidInvoices,
		&rep.Summary.InvalidInvoices,
		&errorCounts,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %d not found", runID)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	if err := json.Unmarshal([]byte(errorCounts), &rep.Summary.ErrorCounts); err != nil {
		return nil, fmt.Errorf("failed to parse error counts: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT invoice_id, is_valid, errors
		FROM validation_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result models.ValidationResult
		var errs string
		if err := rows.Scan(&result.InvoiceID, &result.IsValid, &errs); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(errs), &result.Errors); err != nil {
			return nil, fmt.Errorf("failed to parse result errors: %w", err)
		}
		rep.Results = append(rep.Results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &rep, nil
}
