package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hishab/internal/core"
	applog "hishab/internal/log"
)

// ReminderPublisher delivers reminder notifications to an external channel.
// Implementations must be safe for concurrent use.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, r Reminder) error
}

// ReminderProcessor runs the periodic maintenance pass: it materializes the
// current month's instances of every active fixed expense, then publishes
// the reminder feed. A nil publisher skips publishing, which keeps the pass
// useful when no broker is configured.
type ReminderProcessor struct {
	ledger      *Ledger
	publisher   ReminderPublisher
	horizonDays int
	now         func() time.Time
}

// NewReminderProcessor builds a processor around the ledger. horizonDays
// bounds the feed; values below 1 fall back to the default horizon.
func NewReminderProcessor(ledger *Ledger, publisher ReminderPublisher, horizonDays int) *ReminderProcessor {
	if horizonDays < 1 {
		horizonDays = DefaultReminderHorizonDays
	}
	return &ReminderProcessor{
		ledger:      ledger,
		publisher:   publisher,
		horizonDays: horizonDays,
		now:         time.Now,
	}
}

// Process materializes due fixed expenses for the current month and
// publishes the resulting reminder feed. Per-item failures are logged and
// skipped so one bad record cannot stall the rest of the pass.
func (p *ReminderProcessor) Process(ctx context.Context) error {
	now := p.now()
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	year, month := today.Year(), today.Month()

	generated := 0
	for _, fx := range p.ledger.ListFixedExpenses(nil) {
		if !fx.Active || !InWindow(fx, year, month) {
			continue
		}
		_, err := p.ledger.GenerateForMonth(ctx, fx.ID, year, month)
		switch {
		case err == nil:
			generated++
		case errors.Is(err, ErrAlreadyGenerated):
			// Normal on every pass after the first of the month.
		default:
			fields := applog.NewFields().
				WithOperation(applog.OpMaterialize).
				WithRecord(fx.ID, fx.Title, fx.Amount.Cents).
				WithError(err)
			slog.ErrorContext(ctx, "Failed to materialize fixed expense", fields.ToSlice()...)
		}
	}

	feed := p.ledger.Reminders(today, p.horizonDays)
	slog.InfoContext(ctx, "Reminder pass complete",
		"generated", generated, "reminders", len(feed))

	if p.publisher == nil {
		return nil
	}
	var firstErr error
	for _, r := range feed {
		if err := p.publisher.PublishReminder(ctx, r); err != nil {
			slog.ErrorContext(ctx, "Failed to publish reminder",
				"expense_id", r.Expense.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
