package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/infrastructure/repository/inmemory"
	"github.com/tigerroll/surfin-record/pkg/batch/listener/persistence"
	"github.com/tigerroll/surfin-record/pkg/batch/test"
)

func TestReportPersistenceListener_SavesReport(t *testing.T) {
	repo := inmemory.NewInMemoryJobReportRepository()
	l := persistence.NewReportPersistenceListener(repo)

	report := test.NewTestReport("import", model.StatusAborted, 2, 0, 0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l.AfterJob(ctx, report)

	got, err := repo.FindJobReportByID(context.Background(), report.ExecutionID())
	require.NoError(t, err)
	assert.Same(t, report, got)
}
