package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/garyjia/invoice-qc/internal/models"
	"github.com/garyjia/invoice-qc/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).Run())
	return db
}

func TestRunRepository_SaveAndGetRun(t *testing.T) {
	repo := NewRunRepository(newTestDB(t), zap.NewNop())

	rep := &models.Report{
		Summary: models.Summary{
			TotalInvoices:   2,
			ValidInvoices:   1,
			InvalidInvoices: 1,
			ErrorCounts:     map[string]int{"missing_field: currency": 2},
		},
		Results: []models.ValidationResult{
			{InvoiceID: "INV-1", IsValid: true, Errors: []string{}},
			{InvoiceID: "b.pdf", IsValid: false, Errors: []string{"missing_field: currency", "missing_field: currency"}},
		},
	}

	runID, err := repo.SaveRun(rep)
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	loaded, err := repo.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, rep.Summary, loaded.Summary)
	require.Len(t, loaded.Results, 2)
	assert.Equal(t, "INV-1", loaded.Results[0].InvoiceID)
	assert.True(t, loaded.Results[0].IsValid)
	assert.Equal(t, rep.Results[1].Errors, loaded.Results[1].Errors)
}

func TestRunRepository_GetRunNotFound(t *testing.T) {
	repo := NewRunRepository(newTestDB(t), zap.NewNop())
	_, err := repo.GetRun(12345)
	assert.Error(t, err)
}

func TestRunRepository_MigrationsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, database.NewMigrator(db, zap.NewNop()).Run())
}
