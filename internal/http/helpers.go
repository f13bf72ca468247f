package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hishab/internal/core"
	"hishab/internal/services"
)

// isConflict reports errors that are state conflicts rather than bad input.
func isConflict(err error) bool {
	return errors.Is(err, services.ErrAlreadyGenerated) || errors.Is(err, services.ErrNotActive)
}

// maxBodyBytes bounds request bodies; import payloads are the largest
// legitimate request and stay well under this.
const maxBodyBytes = 4 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps validation and lookup failures to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidDueDay),
		errors.Is(err, core.ErrEmptyTitle):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func todayDate() core.Date {
	now := time.Now()
	return core.NewDate(now.Year(), int(now.Month()), now.Day())
}

// parseYearMonth reads year/month query parameters, defaulting to the
// current calendar month.
func parseYearMonth(r *http.Request) (int, int, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			return 0, 0, errors.New("invalid year")
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, errors.New("invalid month")
		}
		month = m
	}
	return year, month, nil
}

// resolveAmount prefers the integer cents field; when it is zero and a
// decimal string was supplied, parse that instead.
func resolveAmount(cents core.Money, text string) (core.Money, error) {
	text = strings.TrimSpace(text)
	if cents.Cents != 0 || text == "" {
		return cents, nil
	}
	v, err := core.ParseDecimalToCents(text)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: v}, nil
}

// requireID reads the id query parameter.
func requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return "", false
	}
	return id, true
}

// sanitizeInput trims and strips control characters from free-text fields.
// Truncation counts runes, not bytes, so multi-byte text is never cut
// mid-character.
func sanitizeInput(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if n == maxLen {
			break
		}
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}
