package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/jobrun"
)

type jobRunTableModel struct {
	ID         string         `db:"id"`
	JobName    string         `db:"job_name"`
	Status     string         `db:"status"`
	Summary    string         `db:"summary"`
	LastError  sql.NullString `db:"last_error"`
	TraceID    sql.NullString `db:"trace_id"`
	StartedAt  time.Time      `db:"started_at"`
	FinishedAt *time.Time     `db:"finished_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

var jobRunUpdateColumns = []string{"status", "summary", "last_error", "trace_id", "finished_at"}

func toJobRunTableModel(run jobrun.Run, now time.Time) jobRunTableModel {
	summary := run.Summary
	if summary == nil {
		summary = map[string]any{}
	}
	return jobRunTableModel{
		ID:         run.ID,
		JobName:    run.JobName,
		Status:     string(run.Status),
		Summary:    encodeJSON(summary, "{}"),
		LastError:  sql.NullString{String: run.LastError, Valid: run.LastError != ""},
		TraceID:    sql.NullString{String: run.TraceID, Valid: run.TraceID != ""},
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		UpdatedAt:  now,
	}
}

func (m jobRunTableModel) toDomain() jobrun.Run {
	summary, err := decodeJSON[map[string]any](m.Summary)
	if err != nil || summary == nil {
		summary = map[string]any{}
	}
	return jobrun.Run{
		ID:         m.ID,
		JobName:    m.JobName,
		Status:     jobrun.Status(m.Status),
		Summary:    summary,
		LastError:  m.LastError.String,
		TraceID:    m.TraceID.String,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
}
