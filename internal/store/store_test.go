package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fxdash/dashboard/internal/model"
)

func sampleDataset() *model.Dataset {
	hour := 10
	return &model.Dataset{Accounts: []model.Account{{
		ID:           "acc-1",
		PersonName:   "Ana",
		Name:         "Cuenta 1",
		TotalDeposit: decimal.NewFromInt(1000),
		Monthly: []model.MonthEntry{
			{Month: "2025-01", Profit: decimal.NewFromInt(100)},
			{Month: "2025-02", Profit: decimal.RequireFromString("-30.25")},
		},
		Trades: []model.Trade{{ID: "T1", Date: "2025-01-03", Side: model.SideBuy, Profit: decimal.NewFromInt(12), Hour: &hour}},
	}}}
}

// --- MemoryStore ---

func TestMemoryStore_CopiesInAndOut(t *testing.T) {
	ctx := context.Background()
	src := sampleDataset()
	s := NewMemoryStore(src)

	src.Accounts[0].Name = "mutated after construction"

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Accounts[0].Name != "Cuenta 1" {
		t.Errorf("store shares memory with caller: %s", got.Accounts[0].Name)
	}

	got.Accounts[0].Name = "mutated after load"
	again, _ := s.Load(ctx)
	if again.Accounts[0].Name != "Cuenta 1" {
		t.Error("loaded dataset shares memory with store")
	}
}

func TestMemoryStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	empty, _ := s.Load(ctx)
	if empty.Accounts == nil || len(empty.Accounts) != 0 {
		t.Fatalf("expected empty dataset, got %+v", empty)
	}

	if err := s.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := s.Load(ctx)
	if len(got.Accounts) != 1 || s.Saves() != 1 {
		t.Errorf("expected 1 account after 1 save, got %d accounts / %d saves", len(got.Accounts), s.Saves())
	}
}

// --- FileStore ---

func TestFileStore_MissingFileLoadsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "accounts.json"))
	ds, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Accounts == nil || len(ds.Accounts) != 0 {
		t.Errorf("expected empty dataset, got %+v", ds)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "accounts.json")
	s := NewFileStore(path)

	if err := s.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	a := got.Accounts[0]
	if a.ID != "acc-1" || !a.TotalDeposit.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("unexpected account %+v", a)
	}
	if len(a.Monthly) != 2 || !a.Monthly[1].Profit.Equal(decimal.RequireFromString("-30.25")) {
		t.Errorf("unexpected monthly %+v", a.Monthly)
	}
	if len(a.Trades) != 1 || a.Trades[0].Hour == nil || *a.Trades[0].Hour != 10 {
		t.Errorf("unexpected trades %+v", a.Trades)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "\n  \"accounts\": [") {
		t.Errorf("expected two-space indented document, got:\n%s", raw)
	}
	if !strings.Contains(string(raw), `"totalDeposit": 1000`) {
		t.Errorf("expected plain number deposit, got:\n%s", raw)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the document in the data dir, found %d entries", len(entries))
	}
}

func TestFileStore_FractionalHourLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	doc := `{"accounts":[{"totalDeposit":1000,"trades":[{"profit":5,"hour":14.5,"weekday":9}]}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ds, err := NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("expected lenient load, got %v", err)
	}
	tr := ds.Accounts[0].Trades[0]
	if tr.Hour == nil || *tr.Hour != 14 {
		t.Errorf("expected hour truncated to 14, got %v", tr.Hour)
	}
	if tr.Weekday != nil {
		t.Errorf("out-of-range weekday should be absent, got %d", *tr.Weekday)
	}
	if !tr.Profit.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected profit 5, got %s", tr.Profit)
	}
}

func TestFileStore_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Load(context.Background())
	if !errors.Is(err, ErrCorruptDocument) {
		t.Errorf("expected ErrCorruptDocument, got %v", err)
	}
}

func TestFileStore_BackupOnSave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "accounts.json")
	clock := func() time.Time { return time.Date(2025, 1, 31, 14, 25, 1, 0, time.UTC) }
	s := NewFileStore(path, WithBackupOnSave(true), WithClock(clock))

	// First save: nothing to back up yet.
	if err := s.Save(ctx, &model.Dataset{Accounts: []model.Account{{Name: "old"}}}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("second save: %v", err)
	}

	backup := filepath.Join(dir, "accounts_backup_20250131_142501.json")
	raw, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	var prev model.Dataset
	if err := json.Unmarshal(raw, &prev); err != nil {
		t.Fatalf("backup is not a dataset: %v", err)
	}
	if len(prev.Accounts) != 1 || prev.Accounts[0].Name != "old" {
		t.Errorf("backup should hold the previous document, got %+v", prev)
	}

	cur, _ := s.Load(ctx)
	if cur.Accounts[0].Name != "Cuenta 1" {
		t.Errorf("document should hold the new dataset, got %+v", cur.Accounts[0])
	}
}

func TestFileStore_BackupWithoutDocument(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "accounts.json"))
	if _, err := s.Backup(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
