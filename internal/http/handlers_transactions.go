package http

import (
	"net/http"
	"strings"

	"hishab/internal/core"
	"hishab/internal/services"
)

type createTransactionRequest struct {
	Type        string     `json:"type"`
	Amount      core.Money `json:"amount"`
	AmountText  string     `json:"amountText"`
	Category    string     `json:"category"`
	Source      string     `json:"source"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	case http.MethodDelete:
		s.deleteTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	var filter services.TransactionFilter

	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		filter.Type = core.TransactionType(v)
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		filter.Category = v
	}
	if q.Get("year") != "" || q.Get("month") != "" {
		year, month, err := parseYearMonth(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Year = year
		// Year-only filtering is allowed; only apply month when asked for.
		if q.Get("month") != "" {
			filter.Month = month
		}
	}

	txns := s.ledger.ListTransactions(filter)
	if txns == nil {
		txns = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
		return
	}

	amount, err := resolveAmount(req.Amount, req.AmountText)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	txn, err := s.ledger.AddTransaction(r.Context(), core.Transaction{
		Type:        core.TransactionType(strings.TrimSpace(req.Type)),
		Amount:      amount,
		Category:    strings.TrimSpace(req.Category),
		Source:      sanitizeInput(req.Source, 200),
		Date:        date,
		Description: sanitizeInput(req.Description, 200),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.dashboardCache.Clear()
	writeJSON(w, http.StatusCreated, txn)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.dashboardCache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
