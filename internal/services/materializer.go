// Package services holds the business logic on top of the core domain: the
// recurrence materializer, the reminder engine, and the ledger that ties the
// collections to the snapshot store.
package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"hishab/internal/core"
)

var (
	// ErrNotActive reports a materialization attempt against a suspended
	// fixed expense. The caller decides whether that is worth surfacing.
	ErrNotActive = errors.New("fixed expense not active")

	// ErrAlreadyGenerated reports that an instance for the requested month
	// already exists. At most one instance per (fixed expense, month) may
	// ever exist.
	ErrAlreadyGenerated = errors.New("already generated for this month")
)

// GeneratedTag marks upcoming expenses created by the materializer, appended
// to the carried-over notes.
const GeneratedTag = "[auto]"

// GenerateForMonth expands a fixed expense into a concrete upcoming expense
// for the given calendar month. The due day is clamped to the last day of
// the target month (a dueDay of 31 lands on Feb 28/29, never overflows into
// March). The scan over existing instances makes the operation idempotent:
// repeated calls for the same month return ErrAlreadyGenerated instead of
// inserting a duplicate.
func GenerateForMonth(fx core.FixedExpense, year, month int, existing []core.UpcomingExpense) (core.UpcomingExpense, error) {
	if !fx.Active {
		return core.UpcomingExpense{}, ErrNotActive
	}

	for _, u := range existing {
		if u.FixedSourceID == fx.ID && u.DueDate.InMonth(year, month) {
			return core.UpcomingExpense{}, ErrAlreadyGenerated
		}
	}

	day := fx.DueDay
	if last := core.DaysInMonth(year, month); day > last {
		day = last
	}

	return core.UpcomingExpense{
		ID:            uuid.NewString(),
		Title:         fx.Title,
		Amount:        fx.Amount,
		Category:      fx.Category,
		DueDate:       core.NewDate(year, month, day),
		Notes:         strings.TrimSpace(fx.Notes + " " + GeneratedTag),
		Paid:          false,
		FixedSourceID: fx.ID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// InWindow reports whether the given month falls inside the fixed expense's
// start/end range. A zero end date means open-ended. Used by the automatic
// driver; explicit user-triggered generation is not window-checked, matching
// the manual "generate for this month" action.
func InWindow(fx core.FixedExpense, year, month int) bool {
	monthEnd := core.NewDate(year, month, core.DaysInMonth(year, month))
	if fx.StartDate.After(monthEnd.Time) {
		return false
	}
	if fx.EndDate.IsZero() {
		return true
	}
	monthStart := core.NewDate(year, month, 1)
	return !fx.EndDate.Before(monthStart.Time)
}
