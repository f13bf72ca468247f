package http

import (
	"net/http"
	"strconv"
	"strings"

	"hishab/internal/core"
	"hishab/internal/services"
)

type createUpcomingRequest struct {
	Title      string     `json:"title"`
	Amount     core.Money `json:"amount"`
	AmountText string     `json:"amountText"`
	Category   string     `json:"category"`
	DueDate    string     `json:"dueDate"`
	Notes      string     `json:"notes"`
}

type upcomingListResponse struct {
	Items   []core.UpcomingExpense   `json:"items"`
	Summary services.UpcomingSummary `json:"summary"`
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listUpcoming(w, r)
	case http.MethodPost:
		s.createUpcoming(w, r)
	case http.MethodDelete:
		s.deleteUpcoming(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listUpcoming(w http.ResponseWriter, r *http.Request) {
	var filter services.UpcomingFilter

	q := r.URL.Query()
	switch strings.TrimSpace(q.Get("status")) {
	case "":
	case "paid":
		paid := true
		filter.Paid = &paid
	case "pending":
		paid := false
		filter.Paid = &paid
	default:
		writeError(w, http.StatusBadRequest, "invalid status: expected paid or pending")
		return
	}
	if q.Get("year") != "" || q.Get("month") != "" {
		year, month, err := parseYearMonth(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Year = year
		filter.Month = month
	}

	items := s.ledger.ListUpcoming(filter)
	if items == nil {
		items = []core.UpcomingExpense{}
	}
	writeJSON(w, http.StatusOK, upcomingListResponse{
		Items:   items,
		Summary: s.ledger.SummarizeUpcoming(),
	})
}

func (s *Server) createUpcoming(w http.ResponseWriter, r *http.Request) {
	var req createUpcomingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	due, err := core.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid due date: expected YYYY-MM-DD")
		return
	}

	amount, err := resolveAmount(req.Amount, req.AmountText)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	u, err := s.ledger.AddUpcoming(r.Context(), core.UpcomingExpense{
		Title:    sanitizeInput(req.Title, 200),
		Amount:   amount,
		Category: strings.TrimSpace(req.Category),
		DueDate:  due,
		Notes:    sanitizeInput(req.Notes, 500),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.dashboardCache.Clear()
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) deleteUpcoming(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteUpcoming(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.dashboardCache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.MarkPaid(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.dashboardCache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"paid": id})
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	today := todayDate()
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil || d.IsZero() {
			writeError(w, http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
			return
		}
		today = d
	}
	horizon := s.horizonDays
	if v := strings.TrimSpace(r.URL.Query().Get("horizon")); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h < 1 || h > 90 {
			writeError(w, http.StatusBadRequest, "invalid horizon: expected 1-90")
			return
		}
		horizon = h
	}

	feed := s.ledger.Reminders(today, horizon)
	if feed == nil {
		feed = []services.Reminder{}
	}
	writeJSON(w, http.StatusOK, feed)
}
