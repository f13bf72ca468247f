package amqp

import (
	"testing"

	"hishab/internal/core"
	"hishab/internal/services"
)

func TestNewReminderMessage(t *testing.T) {
	r := services.Reminder{
		Expense: core.UpcomingExpense{
			ID:      "exp-1",
			Title:   "Electricity",
			Amount:  core.Money{Cents: 250000},
			DueDate: core.NewDate(2024, 6, 12),
		},
		Urgency: services.Urgency{Bucket: services.BucketDueSoon, Days: 2},
	}

	msg := NewReminderMessage(r)

	if msg.ExpenseID != "exp-1" {
		t.Errorf("ExpenseID = %v, want exp-1", msg.ExpenseID)
	}
	if msg.AmountCents != 250000 {
		t.Errorf("AmountCents = %v, want 250000", msg.AmountCents)
	}
	if msg.DueDate != "2024-06-12" {
		t.Errorf("DueDate = %v, want 2024-06-12", msg.DueDate)
	}
	if msg.Bucket != "due_soon" {
		t.Errorf("Bucket = %v, want due_soon", msg.Bucket)
	}
	if msg.Days != 2 {
		t.Errorf("Days = %v, want 2", msg.Days)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp must be set")
	}
}

func TestReminderMessageJSON(t *testing.T) {
	msg := &ReminderMessage{
		ExpenseID:   "exp-1",
		Title:       "Rent",
		AmountCents: 1500000,
		DueDate:     "2024-06-01",
		Bucket:      "overdue",
		Days:        9,
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	decoded, err := ReminderMessageFromJSON(data)
	if err != nil {
		t.Fatalf("ReminderMessageFromJSON() error = %v", err)
	}
	if *decoded != *msg {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, msg)
	}

	if _, err := ReminderMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestReminderMessageNotification(t *testing.T) {
	cases := []struct {
		name string
		msg  ReminderMessage
		want string
	}{
		{
			"overdue",
			ReminderMessage{Title: "Rent", AmountCents: 1500000, DueDate: "2024-06-01", Bucket: "overdue", Days: 9},
			"Rent (15000.00) was due 2024-06-01, 9 day(s) ago",
		},
		{
			"today",
			ReminderMessage{Title: "Internet", AmountCents: 80000, Bucket: "today"},
			"Internet (800.00) is due today",
		},
		{
			"tomorrow",
			ReminderMessage{Title: "Internet", AmountCents: 80000, Bucket: "tomorrow"},
			"Internet (800.00) is due tomorrow",
		},
		{
			"due soon",
			ReminderMessage{Title: "Electricity", AmountCents: 250000, DueDate: "2024-06-12", Bucket: "due_soon", Days: 2},
			"Electricity (2500.00) is due 2024-06-12, in 2 day(s)",
		},
	}
	for _, tc := range cases {
		if got := tc.msg.Notification(); got != tc.want {
			t.Errorf("%s: Notification() = %q, want %q", tc.name, got, tc.want)
		}
	}
}
