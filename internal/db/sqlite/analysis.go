package sqlite

import (
	"context"
	"time"
)

// AnalysisStore records classification results into the page_analyses
// audit table. The table is write-only in this design: the classifier's
// in-process cache is the only read path for past assessments.
type AnalysisStore struct {
	store *Store
}

// NewAnalysisStore creates a new analysis store.
func NewAnalysisStore(store *Store) *AnalysisStore {
	return &AnalysisStore{store: store}
}

// Record appends a classification result to the audit log.
func (s *AnalysisStore) Record(ctx context.Context, url, projectDescription string, score float64, reasoning string) error {
	now := time.Now()

	const query = `
		INSERT INTO page_analyses
		(url, project_description, relevance_score, reasoning, created_at, created_at_epoch)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.store.ExecContext(ctx, query,
		url, projectDescription, score, nullString(reasoning),
		now.Format(time.RFC3339Nano), now.UnixMilli(),
	)
	return err
}

// Count returns the number of audit rows. Used by tests.
func (s *AnalysisStore) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM page_analyses`
	var count int
	err := s.store.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
