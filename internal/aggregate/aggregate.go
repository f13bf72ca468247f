// Package aggregate computes period-scoped financial summaries. Every
// function is pure: it takes an explicit snapshot of records plus a reference
// date and returns derived figures, with no hidden state.
package aggregate

import (
	"sort"

	"hishab/internal/core"
)

// MonthTotals is the income/expense/saving summary for one calendar month.
// Balance is income minus expense; savings are tracked separately and never
// netted into the balance.
type MonthTotals struct {
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
	Saving  core.Money `json:"saving"`
	Balance core.Money `json:"balance"`
}

// YearTotals is one entry of the year-over-year series.
type YearTotals struct {
	Year    int        `json:"year"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// MonthSeries holds per-month income and expense sums for one year,
// index 0 = January, zero-filled for months with no activity.
type MonthSeries struct {
	Income  [12]core.Money `json:"income"`
	Expense [12]core.Money `json:"expense"`
}

// MonthComparison compares the reference month's net against the immediately
// preceding calendar month.
type MonthComparison struct {
	CurrentNet    core.Money `json:"currentNet"`
	PreviousNet   core.Money `json:"previousNet"`
	PercentChange float64    `json:"percentChange"`
}

// MonthlyTotals sums transactions whose date falls in the given calendar
// month, grouped by type.
func MonthlyTotals(txns []core.Transaction, year, month int) MonthTotals {
	var t MonthTotals
	for _, txn := range txns {
		if !txn.Date.InMonth(year, month) {
			continue
		}
		switch txn.Type {
		case core.Income:
			t.Income = t.Income.Add(txn.Amount)
		case core.Expense:
			t.Expense = t.Expense.Add(txn.Amount)
		case core.Saving:
			t.Saving = t.Saving.Add(txn.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// CategoryBreakdown groups same-month transactions of the given type by
// category key. Categories with no activity are absent from the result.
func CategoryBreakdown(txns []core.Transaction, year, month int, typ core.TransactionType) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, txn := range txns {
		if txn.Type != typ || !txn.Date.InMonth(year, month) {
			continue
		}
		out[txn.Category] = out[txn.Category].Add(txn.Amount)
	}
	return out
}

// YearSeries returns one entry per distinct year present in the data,
// ascending. Years with no transactions are not synthesized.
func YearSeries(txns []core.Transaction) []YearTotals {
	byYear := make(map[int]*YearTotals)
	for _, txn := range txns {
		y := txn.Date.Year()
		entry, ok := byYear[y]
		if !ok {
			entry = &YearTotals{Year: y}
			byYear[y] = entry
		}
		switch txn.Type {
		case core.Income:
			entry.Income = entry.Income.Add(txn.Amount)
		case core.Expense:
			entry.Expense = entry.Expense.Add(txn.Amount)
		}
	}

	series := make([]YearTotals, 0, len(byYear))
	for _, entry := range byYear {
		series = append(series, *entry)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Year < series[j].Year })
	return series
}

// MonthlySeries sums income and expense per month for the given year.
func MonthlySeries(txns []core.Transaction, year int) MonthSeries {
	var s MonthSeries
	for _, txn := range txns {
		if txn.Date.Year() != year {
			continue
		}
		i := txn.Date.Month() - 1
		switch txn.Type {
		case core.Income:
			s.Income[i] = s.Income[i].Add(txn.Amount)
		case core.Expense:
			s.Expense[i] = s.Expense[i].Add(txn.Amount)
		}
	}
	return s
}

// MonthOverMonthChange compares the reference date's month against the
// preceding calendar month, handling the December to January rollover.
// PercentChange is 0 by convention when the previous month's net is 0.
func MonthOverMonthChange(txns []core.Transaction, ref core.Date) MonthComparison {
	curYear, curMonth := ref.Year(), ref.Month()
	prevYear, prevMonth := curYear, curMonth-1
	if prevMonth == 0 {
		prevMonth = 12
		prevYear--
	}

	cur := MonthlyTotals(txns, curYear, curMonth)
	prev := MonthlyTotals(txns, prevYear, prevMonth)

	cmp := MonthComparison{
		CurrentNet:  cur.Balance,
		PreviousNet: prev.Balance,
	}
	if prev.Balance.Cents != 0 {
		cmp.PercentChange = float64(cur.Balance.Cents-prev.Balance.Cents) / float64(prev.Balance.Cents) * 100
	}
	return cmp
}

// HealthScore classifies the expense-to-income ratio into a discrete
// 0-100 score. Thresholds are inclusive: a ratio of exactly 0.5 still
// scores 100. Zero income always scores 0.
func HealthScore(income, expense core.Money) int {
	if income.Cents <= 0 {
		return 0
	}
	// Compare via cross-multiplication to stay in integer cents.
	switch {
	case expense.Cents*10 <= income.Cents*5:
		return 100
	case expense.Cents*10 <= income.Cents*7:
		return 75
	case expense.Cents*10 <= income.Cents*9:
		return 50
	default:
		return 25
	}
}

// FixedExpensesTotal sums fixed expense amounts, optionally restricted to
// active entries.
func FixedExpensesTotal(fixed []core.FixedExpense, onlyActive bool) core.Money {
	var total core.Money
	for _, f := range fixed {
		if onlyActive && !f.Active {
			continue
		}
		total = total.Add(f.Amount)
	}
	return total
}
