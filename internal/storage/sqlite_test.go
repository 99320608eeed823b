package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Prasanna-Nadrajan/mlreview/internal/ir"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.CreateSchema(); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func sampleRun(id string, started time.Time) ir.Run {
	return ir.Run{
		ID:        id,
		StartedAt: started,
		Source:    "train.py",
		IRVersion: ir.Version,
		Issues: []ir.Issue{
			{Line: 4, Message: "Model or transformer fitted on the full dataset.", Severity: ir.Critical, Category: "data_leakage"},
			{Line: 9, Message: "iterrows() is slow on large frames.", Severity: ir.Info, Category: "pandas_practice"},
		},
	}
}

func TestSaveLoadRun(t *testing.T) {
	db := openTestDB(t)
	run := sampleRun("run-1", time.Now().UTC())
	if err := db.SaveRun(&run); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.LoadRun("run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != run.ID || len(got.Issues) != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Issues[0].Message != run.Issues[0].Message {
		t.Errorf("issue payload mismatch: %+v", got.Issues[0])
	}

	// Upsert replaces the issue rows.
	run.Issues = run.Issues[:1]
	if err := db.SaveRun(&run); err != nil {
		t.Fatalf("resave: %v", err)
	}
	items, err := db.ListIssues("run-1", ir.Info)
	if err != nil {
		t.Fatalf("list issues: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected rewritten issue rows, got %d", len(items))
	}
}

func TestListRunsAndLatest(t *testing.T) {
	db := openTestDB(t)
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b"} {
		run := sampleRun(id, t0.Add(time.Duration(i)*time.Hour))
		if err := db.SaveRun(&run); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	rows, err := db.ListRuns(10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "run-b" {
		t.Fatalf("expected newest first, got %+v", rows)
	}
	if rows[0].Issues != 2 {
		t.Errorf("issue count = %d, want 2", rows[0].Issues)
	}

	latest, err := db.LoadLatestRun()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != "run-b" {
		t.Errorf("latest = %s, want run-b", latest.ID)
	}

	ok, err := db.HasRun("run-a")
	if err != nil || !ok {
		t.Errorf("HasRun(run-a) = %v, %v", ok, err)
	}
	ok, err = db.HasRun("missing")
	if err != nil || ok {
		t.Errorf("HasRun(missing) = %v, %v", ok, err)
	}
}

func TestListIssues_MinSeverity(t *testing.T) {
	db := openTestDB(t)
	run := sampleRun("run-1", time.Now().UTC())
	if err := db.SaveRun(&run); err != nil {
		t.Fatalf("save: %v", err)
	}

	items, err := db.ListIssues("run-1", ir.Warning)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Severity != ir.Critical {
		t.Fatalf("min-severity filter failed: %+v", items)
	}
}

func TestWaiverLifecycle(t *testing.T) {
	db := openTestDB(t)
	exp := time.Now().Add(24 * time.Hour)
	id, err := db.CreateWaiver("pandas_practice", "iterrows", 0, "legacy loader", "admin", exp)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ws, err := db.ListWaivers(true)
	if err != nil || len(ws) != 1 {
		t.Fatalf("active list = %v, %v", ws, err)
	}
	if ws[0].Category != "pandas_practice" || ws[0].PatternSub != "iterrows" {
		t.Errorf("waiver fields: %+v", ws[0])
	}

	if err := db.RevokeWaiver(id, "admin"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ws, err = db.ListWaivers(true)
	if err != nil {
		t.Fatalf("list after revoke: %v", err)
	}
	if len(ws) != 0 {
		t.Fatalf("revoked waiver still active: %+v", ws)
	}
	all, err := db.ListWaivers(false)
	if err != nil || len(all) != 1 || all[0].RevokedAt == nil {
		t.Fatalf("revoked waiver missing from full list: %+v, %v", all, err)
	}
}

func TestListWaivers_SubsecondExpiry(t *testing.T) {
	db := openTestDB(t)

	// An expiry truncated to a coarser fraction than now's serializes
	// to a shorter RFC3339Nano string, which sorts lexicographically
	// after now's despite being in the past.
	now := time.Now().UTC()
	exp := now.Truncate(100 * time.Millisecond)
	if !exp.Before(now) {
		exp = exp.Add(-100 * time.Millisecond)
	}
	if _, err := db.CreateWaiver("evaluation", "", 0, "short-lived", "admin", exp); err != nil {
		t.Fatalf("create: %v", err)
	}

	ws, err := db.ListWaivers(true)
	if err != nil {
		t.Fatalf("active list: %v", err)
	}
	if len(ws) != 0 {
		t.Fatalf("expired waiver reported active: %+v", ws)
	}
	all, err := db.ListWaivers(false)
	if err != nil || len(all) != 1 {
		t.Fatalf("expired waiver missing from full list: %+v, %v", all, err)
	}
}

func TestUsersAndSessions(t *testing.T) {
	db := openTestDB(t)
	uid, err := db.CreateUser("ada", "not-a-real-hash", "admin")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, hash, err := db.GetUserByUsername("ada")
	if err != nil || u.ID != uid || hash != "not-a-real-hash" {
		t.Fatalf("get user: %+v %q %v", u, hash, err)
	}

	// Empty role falls back to the read-only tier.
	if _, err := db.CreateUser("bob", "not-a-real-hash", ""); err != nil {
		t.Fatalf("create user without role: %v", err)
	}
	b, _, err := db.GetUserByUsername("bob")
	if err != nil || b.Role != "viewer" {
		t.Fatalf("default role = %q, %v; want viewer", b.Role, err)
	}

	if err := db.CreateSession(uid, "tok-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create session: %v", err)
	}
	su, err := db.GetSession("tok-1")
	if err != nil || su.Username != "ada" {
		t.Fatalf("get session: %+v %v", su, err)
	}

	// Expired sessions are invisible.
	if err := db.CreateSession(uid, "tok-2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("create expired session: %v", err)
	}
	if _, err := db.GetSession("tok-2"); err == nil {
		t.Fatal("expired session should not resolve")
	}

	if err := db.DeleteSession("tok-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := db.GetSession("tok-1"); err == nil {
		t.Fatal("deleted session should not resolve")
	}
}
