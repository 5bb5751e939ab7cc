package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ga-meta/internal/domain/jobrun"
	qb "github.com/riskibarqy/ga-meta/internal/platform/querybuilder"
)

const jobRunColumns = "id, job_name, status, summary, last_error, trace_id, started_at, finished_at, updated_at"

type JobRunRepository struct {
	db *sqlx.DB
}

func NewJobRunRepository(db *sqlx.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

func (r *JobRunRepository) Upsert(ctx context.Context, run jobrun.Run) error {
	query, args, err := qb.InsertModel("job_runs", toJobRunTableModel(run, time.Now().UTC()),
		onConflictUpdate([]string{"id"}, jobRunUpdateColumns...))
	if err != nil {
		return fmt.Errorf("build upsert job run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job run id=%s: %w", run.ID, err)
	}
	return nil
}

func (r *JobRunRepository) List(ctx context.Context, filter jobrun.Filter) ([]jobrun.Run, error) {
	conditions := make([]qb.Condition, 0, 1)
	if filter.JobName != "" {
		conditions = append(conditions, qb.Eq("job_name", filter.JobName))
	}

	query, args, err := qb.Select(jobRunColumns).From("job_runs").
		Where(conditions...).
		OrderBy("started_at DESC", "id DESC").
		Limit(filter.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list job runs query: %w", err)
	}

	var rows []jobRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select job runs: %w", err)
	}

	out := make([]jobrun.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
