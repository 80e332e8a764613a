//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jafetfresenbet/TrueTime/internal/domain/reminder"
	"github.com/jafetfresenbet/TrueTime/internal/domain/roster"
	pg "github.com/jafetfresenbet/TrueTime/internal/repository/postgres"
	"github.com/jafetfresenbet/TrueTime/internal/services/notifier"
)

func TestLedger_AtMostOnce_ConcurrentInserts(t *testing.T) {
	cfg := LoadCfg()
	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()
	pgdb := PGOpen(t, cfg.DBDSN)

	userID, _, subjectID := SeedSchool(t, db, true)
	dl := time.Now().UTC().Add(7 * 24 * time.Hour)
	assignmentID := SeedAssignment(t, db, subjectID, userID, &dl)

	ledger := pg.NewReminderRepo(pgdb)

	const writers = 16
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = ledger.Create(context.Background(), &reminder.Record{
				AssignmentID:  assignmentID,
				UserID:        userID,
				ThresholdDays: 7,
				SentAt:        time.Now().UTC(),
			})
		}()
	}
	wg.Wait()

	ok, dup := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, reminder.ErrDuplicate):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != writers-1 {
		t.Fatalf("want exactly 1 insert and %d duplicates, got %d/%d", writers-1, ok, dup)
	}
	if n := CountNotifications(t, db, assignmentID); n != 1 {
		t.Fatalf("want 1 ledger row, got %d", n)
	}
}

func TestReaper_DeletesExpiredAndCascades(t *testing.T) {
	cfg := LoadCfg()
	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()
	pgdb := PGOpen(t, cfg.DBDSN)

	userID, _, subjectID := SeedSchool(t, db, true)
	past := time.Now().UTC().Add(-time.Second)
	assignmentID := SeedAssignment(t, db, subjectID, userID, &past)
	MustExec(t, db, `INSERT INTO notifications (assignment_id, user_id, threshold_days, sent_at)
VALUES ($1, $2, 1, now())`, assignmentID, userID)

	repo := pg.NewAssignmentRepo(pgdb)
	reaped, err := repo.DeleteExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if reaped < 1 {
		t.Fatalf("want at least 1 reaped, got %d", reaped)
	}
	if n := CountNotifications(t, db, assignmentID); n != 0 {
		t.Fatalf("ledger rows must cascade, %d left", n)
	}
}

func TestRoster_FiltersDisabledUsers(t *testing.T) {
	cfg := LoadCfg()
	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()
	pgdb := PGOpen(t, cfg.DBDSN)

	adminID, classID, subjectID := SeedSchool(t, db, true)
	disabledID := SeedMember(t, db, classID, false)
	dl := time.Now().UTC().Add(3 * 24 * time.Hour)
	assignmentID := SeedAssignment(t, db, subjectID, adminID, &dl)

	repo := pg.NewRosterRepo(pgdb)
	recipients, err := repo.Recipients(context.Background(), assignmentID)
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if len(recipients) != 1 {
		t.Fatalf("want only the enabled member, got %d", len(recipients))
	}
	if recipients[0].UserID == disabledID {
		t.Fatalf("disabled user %d must not be a recipient", disabledID)
	}
}

// Full cycle against real postgres with a recording sender: one send
// and one ledger row on the first cycle, nothing new on the second.
func TestEngine_CycleIsIdempotentOnPostgres(t *testing.T) {
	cfg := LoadCfg()
	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()
	pgdb := PGOpen(t, cfg.DBDSN)

	userID, _, subjectID := SeedSchool(t, db, true)
	dl := time.Now().UTC().Add(14 * 24 * time.Hour).Add(30 * time.Minute)
	assignmentID := SeedAssignment(t, db, subjectID, userID, &dl)

	sender := &recordingSender{}
	eng := notifier.NewEngine(
		zap.NewNop(),
		pg.NewAssignmentRepo(pgdb),
		pg.NewRosterRepo(pgdb),
		pg.NewReminderRepo(pgdb),
		sender,
		nil,
		nil,
		notifier.EngineConfig{SendConcurrency: 2, SendAttempts: 1},
	)

	if _, err := eng.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle 1: %v", err)
	}
	if n := CountNotifications(t, db, assignmentID); n != 1 {
		t.Fatalf("want 1 ledger row after cycle 1, got %d", n)
	}
	first := sender.count()

	if _, err := eng.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle 2: %v", err)
	}
	if n := CountNotifications(t, db, assignmentID); n != 1 {
		t.Fatalf("want still 1 ledger row after cycle 2, got %d", n)
	}
	if sender.count() != first {
		t.Fatalf("second cycle must not send again")
	}
}

type recordingSender struct {
	mu sync.Mutex
	n  int
}

func (s *recordingSender) Send(context.Context, string, string, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

var _ reminder.EmailSender = (*recordingSender)(nil)
var _ roster.Repo = (*pg.RosterRepo)(nil)
