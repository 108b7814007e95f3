package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	applog "moviechart/internal/log"
	"moviechart/internal/middleware/trace"
	"moviechart/internal/movies"
	"moviechart/internal/services"
)

const maxReasonLength = 200

// lineChartResponse is ChartData plus run metadata.
type lineChartResponse struct {
	Series     []movies.ChartSeries `json:"series"`
	Dates      []time.Time          `json:"dates"`
	YMax       *json.Number         `json:"yMax"`
	Empty      bool                 `json:"empty"`
	Source     string               `json:"source"`
	Stats      movies.Stats         `json:"stats"`
	PreparedAt time.Time            `json:"preparedAt"`
}

func newLineChartResponse(source string, r services.Result) lineChartResponse {
	resp := lineChartResponse{
		Series:     r.Data.Series,
		Dates:      r.Data.Dates,
		Empty:      r.Data.Empty(),
		Source:     source,
		Stats:      r.Stats,
		PreparedAt: r.PreparedAt,
	}
	if resp.Dates == nil {
		resp.Dates = []time.Time{}
	}
	if r.Data.YMax.Valid {
		n := json.Number(r.Data.YMax.Decimal.String())
		resp.YMax = &n
	}
	return resp
}

func (s *Server) handleLineChart(w http.ResponseWriter, r *http.Request) {
	result, err := s.charts.LineChart(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Line chart failed",
			applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, newLineChartResponse(s.charts.SourceName(), result))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	reason := strings.TrimSpace(r.URL.Query().Get("reason"))
	if reason == "" {
		reason = "http"
	}
	if len(reason) > maxReasonLength {
		writeError(w, r, http.StatusBadRequest, "reason is too long")
		return
	}

	result, err := s.charts.Refresh(r.Context(), reason)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Refresh failed",
			applog.FieldError, err,
			"reason", reason)
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, newLineChartResponse(s.charts.SourceName(), result))
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		// clients seen by the refresh limiter within the last two windows
		"refreshClients": s.rateLimiter.ActiveClients(),
	})
}

// handleReady runs every registered readiness check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status = "not_ready"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, r, code, map[string]any{
		"status": status,
		"checks": checks,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to write response",
			applog.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{
		"error":      msg,
		"request_id": trace.GetRequestID(r.Context()),
	})
}
