package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/randomnum/internal/domain"
)

var _ domain.AuditPublisher = (*Publisher)(nil)

// AuditJobArgs carries an audit event through River's job table as JSON.
// Identities are hex and numbers are decimal so the payload is readable.
type AuditJobArgs struct {
	EventKind string `json:"kind"`
	Caller    string `json:"caller"`
	Subject   string `json:"subject,omitempty"`
	Seq       string `json:"seq,omitempty"`
	Value     string `json:"value,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (AuditJobArgs) Kind() string { return "audit.recorded" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.AuditPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues an audit event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.AuditEvent) error {
	_, err := p.client.Insert(ctx, newAuditJobArgs(event), nil)
	if err != nil {
		return fmt.Errorf("enqueuing audit job: %w", err)
	}
	return nil
}

func newAuditJobArgs(event domain.AuditEvent) AuditJobArgs {
	args := AuditJobArgs{
		EventKind: string(event.Kind),
		Caller:    event.Caller.String(),
	}
	if event.Subject != "" {
		args.Subject = event.Subject.String()
	}
	if event.Kind == domain.AuditRandomGenerated {
		args.Seq = event.Seq.String()
		args.Value = event.Value.String()
	}
	return args
}
