package river_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"

	_ "modernc.org/sqlite"

	riveradapter "github.com/neomorfeo/randomnum/internal/adapter/river"
	"github.com/neomorfeo/randomnum/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/river_test.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("setting WAL: %v", err)
	}

	return db
}

// startClient sets up and starts a River client, subscribed to completions.
func startClient(t *testing.T) (*riveradapter.Client, <-chan *goriver.Event) {
	t.Helper()

	client, err := riveradapter.Setup(context.Background(), setupTestDB(t), riveradapter.Options{Workers: 1})
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}

	// Subscribe before starting so no completion is missed.
	subscribeChan, subscribeCancel := client.Subscribe(goriver.EventKindJobCompleted)
	t.Cleanup(subscribeCancel)

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})

	return client, subscribeChan
}

func waitForJob(t *testing.T, ch <-chan *goriver.Event) *goriver.Event {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
		return nil
	}
}

func TestPublisher_Publish_EnqueuesJob(t *testing.T) {
	client, done := startClient(t)
	pub := riveradapter.NewPublisher(client)

	err := pub.Publish(context.Background(), domain.AuditEvent{
		Kind:    domain.AuditOperatorAdded,
		Caller:  domain.Identity("\x0a"),
		Subject: domain.Identity("\x0b"),
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	event := waitForJob(t, done)
	if event.Job.Kind != "audit.recorded" {
		t.Errorf("job kind = %q, want %q", event.Job.Kind, "audit.recorded")
	}
}

func TestPublisher_Publish_PreservesEventData(t *testing.T) {
	client, done := startClient(t)
	pub := riveradapter.NewPublisher(client)

	err := pub.Publish(context.Background(), domain.AuditEvent{
		Kind:   domain.AuditRandomGenerated,
		Caller: domain.Identity("\x0b"),
		Seq:    domain.NewNumber(42),
		Value:  domain.NewNumber(123456789),
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	event := waitForJob(t, done)
	args := string(event.Job.EncodedArgs)
	for _, want := range []string{
		`"kind":"random.generated"`,
		`"caller":"0b"`,
		`"seq":"42"`,
		`"value":"123456789"`,
	} {
		if !strings.Contains(args, want) {
			t.Errorf("encoded args missing %s, got: %s", want, args)
		}
	}
	if strings.Contains(args, `"subject"`) {
		t.Errorf("encoded args should omit subject, got: %s", args)
	}
}
