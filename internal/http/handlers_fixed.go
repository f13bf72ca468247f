package http

import (
	"net/http"
	"strings"

	"hishab/internal/core"
)

type createFixedRequest struct {
	Title      string     `json:"title"`
	Amount     core.Money `json:"amount"`
	AmountText string     `json:"amountText"`
	Category   string     `json:"category"`
	DueDay     int        `json:"dueDay"`
	StartDate  string     `json:"startDate"`
	EndDate    string     `json:"endDate"`
	Notes      string     `json:"notes"`
}

type fixedListResponse struct {
	Items       []core.FixedExpense `json:"items"`
	ActiveTotal core.Money          `json:"activeTotal"`
}

func (s *Server) handleFixed(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listFixed(w, r)
	case http.MethodPost:
		s.createFixed(w, r)
	case http.MethodDelete:
		s.deleteFixed(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listFixed(w http.ResponseWriter, r *http.Request) {
	var activeOnly *bool
	switch strings.TrimSpace(r.URL.Query().Get("status")) {
	case "":
	case "active":
		v := true
		activeOnly = &v
	case "inactive":
		v := false
		activeOnly = &v
	default:
		writeError(w, http.StatusBadRequest, "invalid status: expected active or inactive")
		return
	}

	items := s.ledger.ListFixedExpenses(activeOnly)
	if items == nil {
		items = []core.FixedExpense{}
	}
	writeJSON(w, http.StatusOK, fixedListResponse{
		Items:       items,
		ActiveTotal: s.ledger.FixedExpensesTotal(true),
	})
}

func (s *Server) createFixed(w http.ResponseWriter, r *http.Request) {
	var req createFixedRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date: expected YYYY-MM-DD")
		return
	}
	end, err := core.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date: expected YYYY-MM-DD or empty")
		return
	}

	amount, err := resolveAmount(req.Amount, req.AmountText)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	fx, err := s.ledger.AddFixedExpense(r.Context(), core.FixedExpense{
		Title:     sanitizeInput(req.Title, 200),
		Amount:    amount,
		Category:  strings.TrimSpace(req.Category),
		DueDay:    req.DueDay,
		StartDate: start,
		EndDate:   end,
		Notes:     sanitizeInput(req.Notes, 500),
		Active:    true,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.dashboardCache.Clear()
	writeJSON(w, http.StatusCreated, fx)
}

func (s *Server) deleteFixed(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteFixedExpense(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.dashboardCache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleToggleFixed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	active, err := s.ledger.ToggleActive(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.dashboardCache.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": active})
}

func (s *Server) handleGenerateFixed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.ledger.GenerateForMonth(r.Context(), id, year, month)
	if err != nil {
		switch {
		case isConflict(err):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeDomainError(w, err)
		}
		return
	}
	s.dashboardCache.Clear()
	writeJSON(w, http.StatusCreated, u)
}
