package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// AuditWorker writes audit jobs to the structured log.
type AuditWorker struct {
	river.WorkerDefaults[AuditJobArgs]
}

// Work processes a single audit job.
func (w *AuditWorker) Work(ctx context.Context, job *river.Job[AuditJobArgs]) error {
	attrs := []any{
		"kind", job.Args.EventKind,
		"caller", job.Args.Caller,
		"job_id", job.ID,
		"attempt", job.Attempt,
	}
	if job.Args.Subject != "" {
		attrs = append(attrs, "subject", job.Args.Subject)
	}
	if job.Args.Seq != "" {
		attrs = append(attrs, "seq", job.Args.Seq, "value", job.Args.Value)
	}

	slog.InfoContext(ctx, "audit", attrs...)
	return nil
}
