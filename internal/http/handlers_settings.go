package http

import (
	"net/http"

	"hishab/internal/core"
	"hishab/internal/services"
)

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.ledger.Settings())
	case http.MethodPatch, http.MethodPut:
		var patch core.SettingsPatch
		if !decodeBody(w, r, &patch) {
			return
		}
		updated, err := s.ledger.UpdateSettings(r.Context(), patch)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		w.Header().Set("Allow", "GET, PATCH, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="hishab-backup.json"`)
	writeJSON(w, http.StatusOK, s.ledger.Export())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var snap services.Snapshot
	if !decodeBody(w, r, &snap) {
		return
	}
	if err := s.ledger.Import(r.Context(), snap); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dashboardCache.Clear()
	writeJSON(w, http.StatusOK, map[string]int{
		"transactions": len(s.ledger.ListTransactions(services.TransactionFilter{})),
		"upcoming":     len(s.ledger.ListUpcoming(services.UpcomingFilter{})),
		"fixed":        len(s.ledger.ListFixedExpenses(nil)),
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	// The client asks for confirmation; the API contract requires an
	// explicit acknowledgement so a stray POST cannot wipe data.
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "confirm=true is required")
		return
	}
	s.ledger.ClearData(r.Context())
	s.dashboardCache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
