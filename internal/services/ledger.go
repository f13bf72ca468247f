package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hishab/internal/aggregate"
	"hishab/internal/core"
	"hishab/internal/store"
)

type (
	// Ledger owns the in-memory collections for one session and mirrors
	// every mutation into the snapshot store. It replaces the original's
	// shared global state: all access goes through an injected handle, and
	// persistence is funneled through the store contract.
	//
	// The store is written through synchronously on each mutation. When a
	// write fails the session degrades to in-memory-only operation: the
	// mutation still takes effect, the failure is logged, and Degraded()
	// reports the condition so the presentation layer can surface it.
	Ledger struct {
		mu    sync.Mutex
		snaps store.Snapshots

		transactions []core.Transaction
		upcoming     []core.UpcomingExpense
		fixed        []core.FixedExpense
		settings     core.Settings

		degraded bool
	}

	// TransactionFilter narrows ListTransactions. Zero values mean "any".
	TransactionFilter struct {
		Type     core.TransactionType
		Category string
		Year     int
		Month    int // requires Year
	}

	// UpcomingFilter narrows ListUpcoming. Paid is a tri-state: nil means
	// both paid and pending.
	UpcomingFilter struct {
		Paid  *bool
		Year  int
		Month int
	}

	// UpcomingSummary is the paid/pending breakdown of all upcoming
	// expenses.
	UpcomingSummary struct {
		Total   core.Money `json:"total"`
		Pending core.Money `json:"pending"`
		Paid    core.Money `json:"paid"`
	}

	// Snapshot is the export/import document: a full human-inspectable
	// backup of all four persisted collections. On import, every top-level
	// key present replaces the corresponding collection wholesale; absent
	// keys leave the collection untouched.
	Snapshot struct {
		Transactions     *[]core.Transaction     `json:"transactions,omitempty"`
		UpcomingExpenses *[]core.UpcomingExpense `json:"upcomingExpenses,omitempty"`
		FixedExpenses    *[]core.FixedExpense    `json:"fixedExpenses,omitempty"`
		Settings         *core.Settings          `json:"settings,omitempty"`
		ExportedAt       time.Time               `json:"exportedAt"`
	}
)

// NewLedger loads all collections from the snapshot store, falling back to
// empty defaults for missing or corrupt entries.
func NewLedger(ctx context.Context, snaps store.Snapshots) *Ledger {
	l := &Ledger{
		snaps:    snaps,
		settings: core.DefaultSettings(),
	}
	store.LoadJSON(ctx, snaps, store.KeyTransactions, &l.transactions)
	store.LoadJSON(ctx, snaps, store.KeyUpcoming, &l.upcoming)
	store.LoadJSON(ctx, snaps, store.KeyFixed, &l.fixed)
	store.LoadJSON(ctx, snaps, store.KeySettings, &l.settings)

	slog.InfoContext(ctx, "Ledger loaded",
		"transactions", len(l.transactions),
		"upcoming", len(l.upcoming),
		"fixed", len(l.fixed))
	return l
}

// Degraded reports whether a snapshot write has failed this session,
// meaning changes are held in memory only.
func (l *Ledger) Degraded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.degraded
}

// persist mirrors one collection into the store. Failures degrade the
// session instead of failing the mutation: there is no other durability
// mechanism, so in-memory state keeps working and the condition is surfaced.
func (l *Ledger) persist(ctx context.Context, key string, value any) {
	if err := store.SaveJSON(ctx, l.snaps, key, value); err != nil {
		l.degraded = true
		slog.WarnContext(ctx, "Snapshot write failed, continuing in memory only",
			"key", key, "error", err)
	}
}

// AddTransaction validates and records a transaction, assigning its ID and
// creation timestamp.
func (l *Ledger) AddTransaction(ctx context.Context, txn core.Transaction) (core.Transaction, error) {
	if err := txn.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	if txn.Type != core.Income {
		txn.Source = ""
	}
	txn.ID = uuid.NewString()
	txn.CreatedAt = time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.transactions = append(l.transactions, txn)
	l.persist(ctx, store.KeyTransactions, l.transactions)

	slog.InfoContext(ctx, "Transaction added",
		"id", txn.ID,
		"type", string(txn.Type),
		"category", txn.Category,
		"amount_cents", txn.Amount.Cents)
	return txn, nil
}

// DeleteTransaction removes a transaction by ID. Unknown IDs report
// core.ErrNotFound without mutating anything; confirmation is a presentation
// concern and never happens here.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, txn := range l.transactions {
		if txn.ID == id {
			l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
			l.persist(ctx, store.KeyTransactions, l.transactions)
			slog.InfoContext(ctx, "Transaction deleted", "id", id)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
}

// ListTransactions returns matching transactions, newest economic date
// first.
func (l *Ledger) ListTransactions(f TransactionFilter) []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []core.Transaction
	for _, txn := range l.transactions {
		if f.Type != "" && txn.Type != f.Type {
			continue
		}
		if f.Category != "" && txn.Category != f.Category {
			continue
		}
		if f.Year != 0 {
			if f.Month != 0 {
				if !txn.Date.InMonth(f.Year, f.Month) {
					continue
				}
			} else if txn.Date.Year() != f.Year {
				continue
			}
		}
		out = append(out, txn)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// AddUpcoming validates and records a manually created upcoming expense.
func (l *Ledger) AddUpcoming(ctx context.Context, u core.UpcomingExpense) (core.UpcomingExpense, error) {
	if err := u.Validate(); err != nil {
		return core.UpcomingExpense{}, fmt.Errorf("validate upcoming expense: %w", err)
	}
	u.ID = uuid.NewString()
	u.Paid = false
	u.FixedSourceID = ""
	u.CreatedAt = time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.upcoming = append(l.upcoming, u)
	l.persist(ctx, store.KeyUpcoming, l.upcoming)

	slog.InfoContext(ctx, "Upcoming expense added",
		"id", u.ID, "title", u.Title, "due", u.DueDate.String())
	return u, nil
}

// MarkPaid flips an upcoming expense to paid. The transition is monotonic:
// there is no unpay, and marking an already paid expense is a no-op.
func (l *Ledger) MarkPaid(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.upcoming {
		if l.upcoming[i].ID != id {
			continue
		}
		if !l.upcoming[i].Paid {
			l.upcoming[i].Paid = true
			l.persist(ctx, store.KeyUpcoming, l.upcoming)
			slog.InfoContext(ctx, "Upcoming expense marked paid", "id", id)
		}
		return nil
	}
	return fmt.Errorf("upcoming expense %s: %w", id, core.ErrNotFound)
}

// DeleteUpcoming removes an upcoming expense by ID.
func (l *Ledger) DeleteUpcoming(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, u := range l.upcoming {
		if u.ID == id {
			l.upcoming = append(l.upcoming[:i], l.upcoming[i+1:]...)
			l.persist(ctx, store.KeyUpcoming, l.upcoming)
			slog.InfoContext(ctx, "Upcoming expense deleted", "id", id)
			return nil
		}
	}
	return fmt.Errorf("upcoming expense %s: %w", id, core.ErrNotFound)
}

// ListUpcoming returns matching upcoming expenses, soonest due first.
func (l *Ledger) ListUpcoming(f UpcomingFilter) []core.UpcomingExpense {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []core.UpcomingExpense
	for _, u := range l.upcoming {
		if f.Paid != nil && u.Paid != *f.Paid {
			continue
		}
		if f.Year != 0 && f.Month != 0 && !u.DueDate.InMonth(f.Year, f.Month) {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate.Time)
	})
	return out
}

// SummarizeUpcoming totals all upcoming expenses split by paid status.
func (l *Ledger) SummarizeUpcoming() UpcomingSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	var s UpcomingSummary
	for _, u := range l.upcoming {
		s.Total = s.Total.Add(u.Amount)
		if u.Paid {
			s.Paid = s.Paid.Add(u.Amount)
		} else {
			s.Pending = s.Pending.Add(u.Amount)
		}
	}
	return s
}

// AddFixedExpense validates and records a recurring monthly obligation.
func (l *Ledger) AddFixedExpense(ctx context.Context, fx core.FixedExpense) (core.FixedExpense, error) {
	if err := fx.Validate(); err != nil {
		return core.FixedExpense{}, fmt.Errorf("validate fixed expense: %w", err)
	}
	fx.ID = uuid.NewString()
	fx.CreatedAt = time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.fixed = append(l.fixed, fx)
	l.persist(ctx, store.KeyFixed, l.fixed)

	slog.InfoContext(ctx, "Fixed expense added",
		"id", fx.ID, "title", fx.Title, "due_day", fx.DueDay, "active", fx.Active)
	return fx, nil
}

// ToggleActive flips a fixed expense between active and suspended and
// returns the new state. Suspension stops materialization without deleting
// history.
func (l *Ledger) ToggleActive(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.fixed {
		if l.fixed[i].ID == id {
			l.fixed[i].Active = !l.fixed[i].Active
			l.persist(ctx, store.KeyFixed, l.fixed)
			slog.InfoContext(ctx, "Fixed expense toggled",
				"id", id, "active", l.fixed[i].Active)
			return l.fixed[i].Active, nil
		}
	}
	return false, fmt.Errorf("fixed expense %s: %w", id, core.ErrNotFound)
}

// DeleteFixedExpense removes a fixed expense by ID. Already materialized
// instances keep their back reference; they are independent records.
func (l *Ledger) DeleteFixedExpense(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, fx := range l.fixed {
		if fx.ID == id {
			l.fixed = append(l.fixed[:i], l.fixed[i+1:]...)
			l.persist(ctx, store.KeyFixed, l.fixed)
			slog.InfoContext(ctx, "Fixed expense deleted", "id", id)
			return nil
		}
	}
	return fmt.Errorf("fixed expense %s: %w", id, core.ErrNotFound)
}

// ListFixedExpenses returns fixed expenses, active entries first, then by
// title. Pass nil for activeOnly to list everything.
func (l *Ledger) ListFixedExpenses(activeOnly *bool) []core.FixedExpense {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []core.FixedExpense
	for _, fx := range l.fixed {
		if activeOnly != nil && fx.Active != *activeOnly {
			continue
		}
		out = append(out, fx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// GenerateForMonth materializes the identified fixed expense for the given
// month and records the result. See GenerateForMonth in materializer.go for
// the clamping and idempotence rules.
func (l *Ledger) GenerateForMonth(ctx context.Context, id string, year, month int) (core.UpcomingExpense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var fx *core.FixedExpense
	for i := range l.fixed {
		if l.fixed[i].ID == id {
			fx = &l.fixed[i]
			break
		}
	}
	if fx == nil {
		return core.UpcomingExpense{}, fmt.Errorf("fixed expense %s: %w", id, core.ErrNotFound)
	}

	u, err := GenerateForMonth(*fx, year, month, l.upcoming)
	if err != nil {
		return core.UpcomingExpense{}, err
	}
	l.upcoming = append(l.upcoming, u)
	l.persist(ctx, store.KeyUpcoming, l.upcoming)

	slog.InfoContext(ctx, "Upcoming expense materialized",
		"id", u.ID,
		"fixed_source_id", id,
		"due", u.DueDate.String())
	return u, nil
}

// Settings returns the current preferences.
func (l *Ledger) Settings() core.Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settings
}

// UpdateSettings applies a partial settings update and persists the result.
func (l *Ledger) UpdateSettings(ctx context.Context, p core.SettingsPatch) (core.Settings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.settings.Apply(p)
	if err := next.Validate(); err != nil {
		return core.Settings{}, fmt.Errorf("validate settings: %w", err)
	}
	l.settings = next
	l.persist(ctx, store.KeySettings, l.settings)
	slog.InfoContext(ctx, "Settings updated",
		"currency", next.Currency, "language", string(next.Language))
	return next, nil
}

// Export produces a full backup snapshot of all four collections.
func (l *Ledger) Export() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	txns := append([]core.Transaction(nil), l.transactions...)
	upcoming := append([]core.UpcomingExpense(nil), l.upcoming...)
	fixed := append([]core.FixedExpense(nil), l.fixed...)
	settings := l.settings
	return Snapshot{
		Transactions:     &txns,
		UpcomingExpenses: &upcoming,
		FixedExpenses:    &fixed,
		Settings:         &settings,
		ExportedAt:       time.Now().UTC(),
	}
}

// Import replaces collections wholesale with the snapshot's contents. Each
// key present overwrites; records are not individually validated — the
// export shape is trusted as-is. The caller confirms before invoking; this
// operation itself is unconditional.
func (l *Ledger) Import(ctx context.Context, snap Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Reject before replacing anything: a failed import must leave every
	// collection as it was.
	if snap.Settings != nil {
		if err := snap.Settings.Validate(); err != nil {
			return fmt.Errorf("validate imported settings: %w", err)
		}
	}

	if snap.Transactions != nil {
		l.transactions = append([]core.Transaction(nil), (*snap.Transactions)...)
		l.persist(ctx, store.KeyTransactions, l.transactions)
	}
	if snap.UpcomingExpenses != nil {
		l.upcoming = append([]core.UpcomingExpense(nil), (*snap.UpcomingExpenses)...)
		l.persist(ctx, store.KeyUpcoming, l.upcoming)
	}
	if snap.FixedExpenses != nil {
		l.fixed = append([]core.FixedExpense(nil), (*snap.FixedExpenses)...)
		l.persist(ctx, store.KeyFixed, l.fixed)
	}
	if snap.Settings != nil {
		l.settings = *snap.Settings
		l.persist(ctx, store.KeySettings, l.settings)
	}

	slog.InfoContext(ctx, "Snapshot imported",
		"transactions", len(l.transactions),
		"upcoming", len(l.upcoming),
		"fixed", len(l.fixed))
	return nil
}

// ClearData wipes the three record collections, keeping settings.
func (l *Ledger) ClearData(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transactions = nil
	l.upcoming = nil
	l.fixed = nil
	l.persist(ctx, store.KeyTransactions, l.transactions)
	l.persist(ctx, store.KeyUpcoming, l.upcoming)
	l.persist(ctx, store.KeyFixed, l.fixed)
	slog.InfoContext(ctx, "All record collections cleared")
}

// MonthlyTotals reports the income/expense/saving summary for a month.
func (l *Ledger) MonthlyTotals(year, month int) aggregate.MonthTotals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return aggregate.MonthlyTotals(l.transactions, year, month)
}

// CategoryBreakdown groups one month's transactions of a type by category.
func (l *Ledger) CategoryBreakdown(year, month int, typ core.TransactionType) map[string]core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return aggregate.CategoryBreakdown(l.transactions, year, month, typ)
}

// YearSeries reports the year-over-year income/expense series.
func (l *Ledger) YearSeries() []aggregate.YearTotals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return aggregate.YearSeries(l.transactions)
}

// MonthlySeries reports per-month income/expense sums for a year.
func (l *Ledger) MonthlySeries(year int) aggregate.MonthSeries {
	l.mu.Lock()
	defer l.mu.Unlock()
	return aggregate.MonthlySeries(l.transactions, year)
}

// MonthOverMonth compares the reference month's net with the previous one.
func (l *Ledger) MonthOverMonth(ref core.Date) aggregate.MonthComparison {
	l.mu.Lock()
	defer l.mu.Unlock()
	return aggregate.MonthOverMonthChange(l.transactions, ref)
}

// HealthScore reports the discrete financial health score for a month.
func (l *Ledger) HealthScore(year, month int) int {
	totals := l.MonthlyTotals(year, month)
	return aggregate.HealthScore(totals.Income, totals.Expense)
}

// FixedExpensesTotal sums fixed expense amounts.
func (l *Ledger) FixedExpensesTotal(onlyActive bool) core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return aggregate.FixedExpensesTotal(l.fixed, onlyActive)
}

// Reminders returns the reminder feed as of today.
func (l *Ledger) Reminders(today core.Date, horizonDays int) []Reminder {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ReminderFeed(l.upcoming, today, horizonDays)
}
