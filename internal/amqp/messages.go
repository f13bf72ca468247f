package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"hishab/internal/core"
	"hishab/internal/services"
)

// ReminderMessage is the wire form of one expense reminder. It carries
// enough to render a notification without a callback to the ledger.
type ReminderMessage struct {
	ExpenseID   string    `json:"expenseId"`
	Title       string    `json:"title"`
	AmountCents int64     `json:"amountCents"`
	DueDate     string    `json:"dueDate"`
	Bucket      string    `json:"bucket"`
	Days        int       `json:"days"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewReminderMessage builds the wire form of a reminder
func NewReminderMessage(r services.Reminder) *ReminderMessage {
	return &ReminderMessage{
		ExpenseID:   r.Expense.ID,
		Title:       r.Expense.Title,
		AmountCents: r.Expense.Amount.Cents,
		DueDate:     r.Expense.DueDate.String(),
		Bucket:      string(r.Urgency.Bucket),
		Days:        r.Urgency.Days,
		Timestamp:   time.Now(),
	}
}

// Notification renders the one-line human form used by the notifier worker.
func (m *ReminderMessage) Notification() string {
	switch services.UrgencyBucket(m.Bucket) {
	case services.BucketOverdue:
		return fmt.Sprintf("%s (%s) was due %s, %d day(s) ago", m.Title, core.FormatCents(m.AmountCents), m.DueDate, m.Days)
	case services.BucketToday:
		return fmt.Sprintf("%s (%s) is due today", m.Title, core.FormatCents(m.AmountCents))
	case services.BucketTomorrow:
		return fmt.Sprintf("%s (%s) is due tomorrow", m.Title, core.FormatCents(m.AmountCents))
	default:
		return fmt.Sprintf("%s (%s) is due %s, in %d day(s)", m.Title, core.FormatCents(m.AmountCents), m.DueDate, m.Days)
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderMessageFromJSON creates a message from JSON bytes
func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
