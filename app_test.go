package bondkeeper

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"bondkeeper/db"
	"bondkeeper/domain"
)

func setupTestApp(t *testing.T) (*App, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := db.New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}

	app, err := New(
		WithRepo(db.NewCaseRepo(dbConn)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := app.EnsureTenant("Testing Bail Bonds"); err != nil {
		t.Fatalf("ensuring tenant: %v", err)
	}
	app.linkSecret = []byte("0123456789abcdef0123456789abcdef")

	teardown := func() {
		app.Close()
		os.Remove(tempFile.Name())
	}

	return app, teardown
}

func testAppPerson(t *testing.T, app *App, firstName, lastName string) *domain.Person {
	t.Helper()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("creating uuid: %v", err)
	}
	person := &domain.Person{
		ID:        id,
		TenantID:  app.Tenant.ID,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     "555-0100",
		DOB:       time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC),
	}
	if err := app.Repo.CreatePerson(person); err != nil {
		t.Fatalf("creating person: %v", err)
	}
	return person
}

// recordingNotifier captures delivered payloads and fails configured
// endpoints.
type recordingNotifier struct {
	sent map[string][][]byte
	fail map[string]error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		sent: make(map[string][][]byte),
		fail: make(map[string]error),
	}
}

func (n *recordingNotifier) Send(sub *domain.PushSubscription, payload []byte) error {
	if err, ok := n.fail[sub.Endpoint]; ok {
		return err
	}
	n.sent[sub.Endpoint] = append(n.sent[sub.Endpoint], payload)
	return nil
}

func TestEnsureTenant(t *testing.T) {
	t.Run("should reuse the existing tenant on later calls", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		first := app.Tenant.ID
		if err := app.EnsureTenant("Another Name"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if app.Tenant.ID != first {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", first, app.Tenant.ID)
		}
	})
}

func TestAppSearchPeople(t *testing.T) {
	t.Run("should scope results to the active tenant", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		testAppPerson(t, app, "Jordan", "Meyer")
		testAppPerson(t, app, "Alexis", "Ward")

		people, err := app.SearchPeople("Meyer")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(people) != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", len(people))
		}
		if people[0].LastName != "Meyer" {
			t.Fatalf("\nwanted:\nMeyer\ngot:\n%s", people[0].LastName)
		}
	})

	t.Run("should list everyone for an empty query", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		testAppPerson(t, app, "Jordan", "Meyer")
		testAppPerson(t, app, "Alexis", "Ward")

		people, err := app.SearchPeople("")
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(people) != 2 {
			t.Fatalf("\nwanted:\n2\ngot:\n%d", len(people))
		}
	})
}

func TestWriteAudit(t *testing.T) {
	t.Run("should persist the entry with context and person", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		person := testAppPerson(t, app, "Jordan", "Meyer")

		err := app.WriteAudit("INFO", "Bond written",
			AuditWithPerson(person.ID),
			AuditWithContext(map[string]any{"amount": "5000"}),
		)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		entries, err := app.Repo.GetAuditEntries(app.Tenant.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("\nwanted:\n1\ngot:\n%d", len(entries))
		}
		if entries[0].Message != "Bond written" || entries[0].Level != "INFO" {
			t.Fatalf("\nwanted:\nBond written INFO\ngot:\n%s %s", entries[0].Message, entries[0].Level)
		}
		if entries[0].PersonID == nil || *entries[0].PersonID != person.ID {
			t.Fatalf("\nwanted:\n%s\ngot:\n%v", person.ID, entries[0].PersonID)
		}
	})

	t.Run("should reject an unknown level and name the accepted ones", func(t *testing.T) {
		app, teardown := setupTestApp(t)
		defer teardown()

		err := app.WriteAudit("NOTICE", "nope")
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
		if !strings.Contains(err.Error(), "DEBUG, INFO, WARN, ERROR, FATAL") {
			t.Fatalf("\nwanted:\naccepted levels named\ngot:\n%v", err)
		}
	})
}
