package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hishab/internal/aggregate"
	"hishab/internal/core"
)

type dashboardResponse struct {
	Year            int                       `json:"year"`
	Month           int                       `json:"month"`
	Totals          aggregate.MonthTotals     `json:"totals"`
	HealthScore     int                       `json:"healthScore"`
	ExpensesByCat   map[string]core.Money     `json:"expensesByCategory"`
	Comparison      aggregate.MonthComparison `json:"comparison"`
	FixedTotal      core.Money                `json:"fixedTotal"`
	PendingUpcoming core.Money                `json:"pendingUpcoming"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := fmt.Sprintf("%d-%02d", year, month)
	if cached, ok := s.dashboardCache.Get(cacheKey); ok {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	resp := dashboardResponse{
		Year:            year,
		Month:           month,
		Totals:          s.ledger.MonthlyTotals(year, month),
		HealthScore:     s.ledger.HealthScore(year, month),
		ExpensesByCat:   s.ledger.CategoryBreakdown(year, month, core.Expense),
		Comparison:      s.ledger.MonthOverMonth(core.NewDate(year, month, 1)),
		FixedTotal:      s.ledger.FixedExpensesTotal(true),
		PendingUpcoming: s.ledger.SummarizeUpcoming().Pending,
	}

	s.dashboardCache.Set(cacheKey, resp)
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleYearReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	series := s.ledger.YearSeries()
	if series == nil {
		series = []aggregate.YearTotals{}
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	writeJSON(w, http.StatusOK, s.ledger.MonthlySeries(year))
}

type categoriesResponse struct {
	Type       core.TransactionType `json:"type"`
	Categories []categoryEntry      `json:"categories"`
}

type categoryEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	typ := core.TransactionType(strings.TrimSpace(r.URL.Query().Get("type")))
	if typ == "" {
		typ = core.Expense
	}
	keys := core.CategoriesFor(typ)
	if len(keys) == 0 {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}

	lang := s.ledger.Settings().Language
	if v := strings.TrimSpace(r.URL.Query().Get("lang")); v != "" {
		lang = core.Language(v)
	}

	entries := make([]categoryEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, categoryEntry{
			Key:   key,
			Label: core.CategoryLabel(lang, key),
		})
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Type: typ, Categories: entries})
}
