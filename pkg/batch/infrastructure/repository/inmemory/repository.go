// Package inmemory provides an in-memory implementation of the JobReportRepository interface.
// It keeps reports in a map, which suits tests and runs where persistence is not required.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/core/domain/repository"
)

// InMemoryJobReportRepository is an in-memory implementation of the JobReportRepository interface.
type InMemoryJobReportRepository struct {
	reports map[string]*model.JobReport
	mu      sync.RWMutex // Mutex to protect concurrent access to the map.
}

// NewInMemoryJobReportRepository creates and initializes a new instance of InMemoryJobReportRepository.
func NewInMemoryJobReportRepository() *InMemoryJobReportRepository {
	return &InMemoryJobReportRepository{
		reports: make(map[string]*model.JobReport),
	}
}

// SaveJobReport stores the report under its execution ID.
// Reports are immutable, so the pointer is stored as is.
func (r *InMemoryJobReportRepository) SaveJobReport(ctx context.Context, report *model.JobReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports[report.ExecutionID()] = report
	return nil
}

// FindJobReportByID finds a report by its execution ID.
func (r *InMemoryJobReportRepository) FindJobReportByID(ctx context.Context, executionID string) (*model.JobReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[executionID]
	if !ok {
		return nil, repository.ErrJobReportNotFound
	}
	return report, nil
}

// FindJobReportsByJobName returns the reports of jobName, latest start time first.
func (r *InMemoryJobReportRepository) FindJobReportsByJobName(ctx context.Context, jobName string) ([]*model.JobReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reports []*model.JobReport
	for _, report := range r.reports {
		if report.JobName() == jobName {
			reports = append(reports, report)
		}
	}
	// Sort by StartTime in descending order (latest first)
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[j].Metrics().StartTime.Before(reports[i].Metrics().StartTime)
	})
	return reports, nil
}

// FindLatestJobReport returns the report of jobName with the latest start time.
func (r *InMemoryJobReportRepository) FindLatestJobReport(ctx context.Context, jobName string) (*model.JobReport, error) {
	reports, err := r.FindJobReportsByJobName(ctx, jobName)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, repository.ErrJobReportNotFound
	}
	return reports[0], nil
}

// Close releases resources used by the repository.
// As an in-memory repository, it holds no external resources, so this method always returns nil.
func (r *InMemoryJobReportRepository) Close() error {
	return nil
}

var _ repository.JobReportRepository = (*InMemoryJobReportRepository)(nil)
