package river

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
)

// Options tunes the audit queue.
type Options struct {
	// Workers caps how many audit jobs run at once. Values below 1 mean 1.
	Workers int
	// Logger receives River's own logs. Nil uses slog.Default.
	Logger *slog.Logger
}

// Setup migrates River's tables on db and returns an unstarted client that
// runs AuditWorker. Call Start to process jobs and Stop to drain them.
func Setup(ctx context.Context, db *sql.DB, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	driver := riversqlite.New(db)

	migrator, err := rivermigrate.New(driver, &rivermigrate.Config{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("migrating river tables: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &AuditWorker{})

	client, err := river.NewClient(driver, &river.Config{
		Logger:  logger,
		Queues:  map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: max(opts.Workers, 1)}},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}
	return client, nil
}
