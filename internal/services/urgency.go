package services

import (
	"fmt"
	"sort"

	"hishab/internal/core"
)

const (
	BucketPaid     UrgencyBucket = "paid"
	BucketOverdue  UrgencyBucket = "overdue"
	BucketToday    UrgencyBucket = "today"
	BucketTomorrow UrgencyBucket = "tomorrow"
	BucketDueSoon  UrgencyBucket = "due_soon"
	BucketUpcoming UrgencyBucket = "upcoming"

	// DefaultReminderHorizonDays bounds the reminder feed to the next week.
	DefaultReminderHorizonDays = 7

	dueSoonThresholdDays = 3
)

type (
	UrgencyBucket string

	// Urgency is the proximity classification of an upcoming expense.
	// Days carries the distance for Overdue (days past), DueSoon and
	// Upcoming (days left); it is 0 for Paid, Today and Tomorrow.
	Urgency struct {
		Bucket UrgencyBucket `json:"bucket"`
		Days   int           `json:"days,omitempty"`
	}

	// Reminder is one entry of the reminder feed.
	Reminder struct {
		Expense core.UpcomingExpense `json:"expense"`
		Urgency Urgency              `json:"urgency"`
	}
)

func (u Urgency) String() string {
	switch u.Bucket {
	case BucketOverdue:
		return fmt.Sprintf("%d days overdue", u.Days)
	case BucketDueSoon, BucketUpcoming:
		return fmt.Sprintf("%d days left", u.Days)
	default:
		return string(u.Bucket)
	}
}

// ClassifyUrgency buckets an upcoming expense by due-date proximity.
// A paid expense is always Paid regardless of date.
func ClassifyUrgency(due, today core.Date, paid bool) Urgency {
	if paid {
		return Urgency{Bucket: BucketPaid}
	}

	daysLeft := today.DaysUntil(due)
	switch {
	case daysLeft < 0:
		return Urgency{Bucket: BucketOverdue, Days: -daysLeft}
	case daysLeft == 0:
		return Urgency{Bucket: BucketToday}
	case daysLeft == 1:
		return Urgency{Bucket: BucketTomorrow}
	case daysLeft <= dueSoonThresholdDays:
		return Urgency{Bucket: BucketDueSoon, Days: daysLeft}
	default:
		return Urgency{Bucket: BucketUpcoming, Days: daysLeft}
	}
}

// ReminderFeed filters to unpaid expenses due within horizonDays and sorts
// them ascending by due date. Overdue entries are always included: the
// horizon caps how far ahead the feed looks, not how far behind.
func ReminderFeed(upcoming []core.UpcomingExpense, today core.Date, horizonDays int) []Reminder {
	var feed []Reminder
	for _, u := range upcoming {
		if u.Paid {
			continue
		}
		if today.DaysUntil(u.DueDate) > horizonDays {
			continue
		}
		feed = append(feed, Reminder{
			Expense: u,
			Urgency: ClassifyUrgency(u.DueDate, today, false),
		})
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Expense.DueDate.Before(feed[j].Expense.DueDate.Time)
	})
	return feed
}
