package services

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"hishab/internal/core"
	"hishab/internal/store"
)

func newTestLedger(t *testing.T) (*Ledger, *store.MemoryStore) {
	t.Helper()
	snaps := store.NewMemoryStore()
	return NewLedger(context.Background(), snaps), snaps
}

func TestLedgerAddAndListTransactions(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	salary, err := l.AddTransaction(ctx, core.Transaction{
		Type:     core.Income,
		Amount:   core.Money{Cents: 5000000},
		Category: "salary",
		Source:   "employer",
		Date:     day(2024, 6, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if salary.ID == "" || salary.CreatedAt.IsZero() {
		t.Error("expected assigned ID and creation timestamp")
	}
	if _, err := l.AddTransaction(ctx, core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: 120000},
		Category: "food",
		Date:     day(2024, 6, 5),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.AddTransaction(ctx, core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: 80000},
		Category: "transport",
		Date:     day(2024, 5, 20),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := l.ListTransactions(TransactionFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(all))
	}
	if all[0].Category != "food" || all[2].Category != "transport" {
		t.Errorf("expected newest-first ordering, got %s..%s", all[0].Category, all[2].Category)
	}

	june := l.ListTransactions(TransactionFilter{Year: 2024, Month: 6})
	if len(june) != 2 {
		t.Errorf("expected 2 june transactions, got %d", len(june))
	}
	expenses := l.ListTransactions(TransactionFilter{Type: core.Expense, Category: "food"})
	if len(expenses) != 1 || expenses[0].Category != "food" {
		t.Errorf("expected a single food expense, got %d entries", len(expenses))
	}
}

func TestLedgerAddTransactionRejectsInvalid(t *testing.T) {
	l, _ := newTestLedger(t)
	_, err := l.AddTransaction(context.Background(), core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: -5},
		Category: "food",
		Date:     day(2024, 6, 1),
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if got := l.ListTransactions(TransactionFilter{}); len(got) != 0 {
		t.Errorf("rejected transaction must not be recorded, got %d", len(got))
	}
}

func TestLedgerDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	txn, _ := l.AddTransaction(ctx, core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: 100},
		Category: "food",
		Date:     day(2024, 6, 1),
	})

	if err := l.DeleteTransaction(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown ID, got %v", err)
	}
	if got := l.ListTransactions(TransactionFilter{}); len(got) != 1 {
		t.Fatalf("failed delete must not mutate, got %d", len(got))
	}
	if err := l.DeleteTransaction(ctx, txn.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := l.ListTransactions(TransactionFilter{}); len(got) != 0 {
		t.Errorf("expected empty list after delete, got %d", len(got))
	}
}

func TestLedgerMarkPaidMonotonic(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	u, _ := l.AddUpcoming(ctx, core.UpcomingExpense{
		Title:   "Electricity",
		Amount:  core.Money{Cents: 250000},
		DueDate: day(2024, 6, 20),
	})

	if err := l.MarkPaid(ctx, u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.MarkPaid(ctx, u.ID); err != nil {
		t.Fatalf("second mark must be a no-op, got %v", err)
	}
	paid := true
	got := l.ListUpcoming(UpcomingFilter{Paid: &paid})
	if len(got) != 1 || !got[0].Paid {
		t.Fatalf("expected one paid expense, got %d", len(got))
	}
	if err := l.MarkPaid(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLedgerSummarizeUpcoming(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	a, _ := l.AddUpcoming(ctx, core.UpcomingExpense{
		Title: "A", Amount: core.Money{Cents: 300}, DueDate: day(2024, 6, 20),
	})
	l.AddUpcoming(ctx, core.UpcomingExpense{
		Title: "B", Amount: core.Money{Cents: 200}, DueDate: day(2024, 6, 25),
	})
	l.MarkPaid(ctx, a.ID)

	s := l.SummarizeUpcoming()
	if s.Total.Cents != 500 || s.Paid.Cents != 300 || s.Pending.Cents != 200 {
		t.Errorf("unexpected summary: total=%d paid=%d pending=%d",
			s.Total.Cents, s.Paid.Cents, s.Pending.Cents)
	}
}

func TestLedgerToggleActive(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	fx, _ := l.AddFixedExpense(ctx, core.FixedExpense{
		Title:     "Rent",
		Amount:    core.Money{Cents: 1500000},
		Category:  "rent",
		DueDay:    1,
		StartDate: day(2024, 1, 1),
		Active:    true,
	})

	active, err := l.ToggleActive(ctx, fx.ID)
	if err != nil || active {
		t.Fatalf("expected toggle to inactive, got active=%v err=%v", active, err)
	}
	active, err = l.ToggleActive(ctx, fx.ID)
	if err != nil || !active {
		t.Fatalf("expected toggle back to active, got active=%v err=%v", active, err)
	}
	if _, err := l.ToggleActive(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLedgerGenerateForMonth(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	fx, _ := l.AddFixedExpense(ctx, core.FixedExpense{
		Title:     "Rent",
		Amount:    core.Money{Cents: 1500000},
		Category:  "rent",
		DueDay:    31,
		StartDate: day(2024, 1, 1),
		Active:    true,
	})

	u, err := l.GenerateForMonth(ctx, fx.ID, 2024, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := u.DueDate.String(), "2024-02-29"; got != want {
		t.Errorf("expected clamped due date %s, got %s", want, got)
	}
	if _, err := l.GenerateForMonth(ctx, fx.ID, 2024, 2); !errors.Is(err, ErrAlreadyGenerated) {
		t.Fatalf("expected ErrAlreadyGenerated on repeat, got %v", err)
	}
	if got := l.ListUpcoming(UpcomingFilter{}); len(got) != 1 {
		t.Errorf("expected exactly one materialized instance, got %d", len(got))
	}
	// Deleting the source leaves the materialized instance intact.
	if err := l.DeleteFixedExpense(ctx, fx.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := l.ListUpcoming(UpcomingFilter{}); len(got) != 1 {
		t.Errorf("materialized instance must survive source deletion, got %d", len(got))
	}
}

func TestLedgerSettings(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	if got := l.Settings(); got.Currency != "BDT" || got.Language != core.LangBengali {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	currency := "USD"
	lang := core.LangEnglish
	updated, err := l.UpdateSettings(ctx, core.SettingsPatch{Currency: &currency, Language: &lang})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Currency != "USD" || updated.Language != core.LangEnglish {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.DateFormat != core.DateFormatDMY {
		t.Errorf("untouched field must keep its value, got %s", updated.DateFormat)
	}
	bad := core.Language("xx")
	if _, err := l.UpdateSettings(ctx, core.SettingsPatch{Language: &bad}); err == nil {
		t.Error("expected rejection of unknown language")
	}
}

func TestLedgerExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	l.AddTransaction(ctx, core.Transaction{
		Type: core.Income, Amount: core.Money{Cents: 5000000},
		Category: "salary", Source: "employer", Date: day(2024, 6, 1),
	})
	l.AddUpcoming(ctx, core.UpcomingExpense{
		Title: "Electricity", Amount: core.Money{Cents: 250000}, DueDate: day(2024, 6, 20),
	})
	l.AddFixedExpense(ctx, core.FixedExpense{
		Title: "Rent", Amount: core.Money{Cents: 1500000}, Category: "rent",
		DueDay: 1, StartDate: day(2024, 1, 1), Active: true,
	})

	exported := l.Export()
	raw, err := json.Marshal(exported)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	fresh, _ := newTestLedger(t)
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if err := fresh.Import(ctx, snap); err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	if !reflect.DeepEqual(fresh.ListTransactions(TransactionFilter{}), l.ListTransactions(TransactionFilter{})) {
		t.Error("transactions differ after round trip")
	}
	if !reflect.DeepEqual(fresh.ListUpcoming(UpcomingFilter{}), l.ListUpcoming(UpcomingFilter{})) {
		t.Error("upcoming expenses differ after round trip")
	}
	if !reflect.DeepEqual(fresh.ListFixedExpenses(nil), l.ListFixedExpenses(nil)) {
		t.Error("fixed expenses differ after round trip")
	}
	if fresh.Settings() != l.Settings() {
		t.Error("settings differ after round trip")
	}
}

func TestLedgerImportPartial(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	l.AddTransaction(ctx, core.Transaction{
		Type: core.Income, Amount: core.Money{Cents: 100},
		Category: "salary", Date: day(2024, 6, 1),
	})

	txns := []core.Transaction{{
		ID: "imported", Type: core.Expense, Amount: core.Money{Cents: 50},
		Category: "food", Date: day(2024, 6, 2),
	}}
	if err := l.Import(ctx, Snapshot{Transactions: &txns}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := l.ListTransactions(TransactionFilter{})
	if len(got) != 1 || got[0].ID != "imported" {
		t.Fatalf("expected wholesale replacement, got %+v", got)
	}
	// Absent keys stay untouched.
	if l.Settings() != core.DefaultSettings() {
		t.Error("settings must be untouched by a partial import")
	}
}

func TestLedgerImportRejectedLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	l.AddTransaction(ctx, core.Transaction{
		Type: core.Income, Amount: core.Money{Cents: 100},
		Category: "salary", Date: day(2024, 6, 1),
	})
	before := l.ListTransactions(TransactionFilter{})

	txns := []core.Transaction{{
		ID: "imported", Type: core.Expense, Amount: core.Money{Cents: 50},
		Category: "food", Date: day(2024, 6, 2),
	}}
	bad := core.Settings{Currency: "BDT", DateFormat: core.DateFormatDMY, Language: "fr"}
	if err := l.Import(ctx, Snapshot{Transactions: &txns, Settings: &bad}); err == nil {
		t.Fatal("expected error for invalid imported settings")
	}

	// A rejected import must not replace any collection.
	if !reflect.DeepEqual(l.ListTransactions(TransactionFilter{}), before) {
		t.Error("transactions were replaced despite the rejected import")
	}
	if l.Settings() != core.DefaultSettings() {
		t.Error("settings changed despite the rejected import")
	}
}

func TestLedgerClearDataKeepsSettings(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	currency := "EUR"
	l.UpdateSettings(ctx, core.SettingsPatch{Currency: &currency})
	l.AddTransaction(ctx, core.Transaction{
		Type: core.Income, Amount: core.Money{Cents: 100},
		Category: "salary", Date: day(2024, 6, 1),
	})

	l.ClearData(ctx)

	if got := l.ListTransactions(TransactionFilter{}); len(got) != 0 {
		t.Errorf("expected no transactions, got %d", len(got))
	}
	if l.Settings().Currency != "EUR" {
		t.Error("settings must survive a data clear")
	}
}

func TestLedgerPersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	snaps := store.NewMemoryStore()
	l := NewLedger(ctx, snaps)
	l.AddTransaction(ctx, core.Transaction{
		Type: core.Expense, Amount: core.Money{Cents: 700},
		Category: "food", Date: day(2024, 6, 3),
	})

	reloaded := NewLedger(ctx, snaps)
	got := reloaded.ListTransactions(TransactionFilter{})
	if len(got) != 1 || got[0].Amount.Cents != 700 {
		t.Fatalf("expected the transaction to survive reload, got %+v", got)
	}
}

type failingStore struct{}

func (failingStore) Load(ctx context.Context, key string) ([]byte, error) {
	return nil, store.ErrNoSnapshot
}
func (failingStore) Save(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}
func (failingStore) Close() error { return nil }

func TestLedgerDegradesOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, failingStore{})

	txn, err := l.AddTransaction(ctx, core.Transaction{
		Type: core.Expense, Amount: core.Money{Cents: 100},
		Category: "food", Date: day(2024, 6, 1),
	})
	if err != nil {
		t.Fatalf("mutation must succeed in memory, got %v", err)
	}
	if !l.Degraded() {
		t.Error("expected degraded flag after save failure")
	}
	got := l.ListTransactions(TransactionFilter{})
	if len(got) != 1 || got[0].ID != txn.ID {
		t.Errorf("in-memory state must keep working, got %d entries", len(got))
	}
}

type captPublisher struct {
	published []Reminder
	err       error
}

func (p *captPublisher) PublishReminder(ctx context.Context, r Reminder) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, r)
	return nil
}

func TestReminderProcessorProcess(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	fx, _ := l.AddFixedExpense(ctx, core.FixedExpense{
		Title: "Rent", Amount: core.Money{Cents: 1500000}, Category: "rent",
		DueDay: 28, StartDate: day(2024, 1, 1), Active: true,
	})
	l.AddFixedExpense(ctx, core.FixedExpense{
		Title: "Suspended", Amount: core.Money{Cents: 100}, Category: "other",
		DueDay: 5, StartDate: day(2024, 1, 1), Active: false,
	})

	pub := &captPublisher{}
	p := NewReminderProcessor(l, pub, DefaultReminderHorizonDays)
	p.now = func() time.Time { return time.Date(2024, 6, 25, 9, 0, 0, 0, time.UTC) }

	if err := p.Process(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instances := l.ListUpcoming(UpcomingFilter{Year: 2024, Month: 6})
	if len(instances) != 1 || instances[0].FixedSourceID != fx.ID {
		t.Fatalf("expected one materialized instance, got %d", len(instances))
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected one published reminder, got %d", len(pub.published))
	}
	if pub.published[0].Urgency.Bucket != BucketDueSoon {
		t.Errorf("expected due-soon reminder, got %s", pub.published[0].Urgency.Bucket)
	}

	// Second pass: materialization is idempotent, feed still publishes.
	if err := p.Process(ctx); err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	if got := l.ListUpcoming(UpcomingFilter{Year: 2024, Month: 6}); len(got) != 1 {
		t.Errorf("second pass must not duplicate instances, got %d", len(got))
	}
}

func TestReminderProcessorNilPublisher(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	l.AddUpcoming(ctx, core.UpcomingExpense{
		Title: "Bill", Amount: core.Money{Cents: 100}, DueDate: day(2024, 6, 26),
	})

	p := NewReminderProcessor(l, nil, 0)
	p.now = func() time.Time { return time.Date(2024, 6, 25, 9, 0, 0, 0, time.UTC) }
	if err := p.Process(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
