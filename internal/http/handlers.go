package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gagyebu/internal/budget"
	"gagyebu/internal/core"
	"gagyebu/internal/log"
	"gagyebu/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady pings the store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"store": "ok"}
	if err := s.store.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		checks["store"] = "failed: " + err.Error()
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rl := s.rateLimiter.GetMetrics()

	metric := func(name, help, kind string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", s.tracer.TotalRequests())
	metric("snapshots_saved_total", "Snapshots saved through the UI", "counter", s.saves.Load())
	metric("sessions_active", "Browser sessions in memory", "gauge", int64(s.sessions.size()))
	metric("rate_limit_rejected_total", "Requests rejected by the rate limiter", "counter", rl.Rejected)
	metric("rate_limit_clients", "Clients tracked by the rate limiter", "gauge", rl.ClientCount)
	metric("suspicious_requests_total", "Requests flagged as probes", "counter", s.detector.SuspiciousCount())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r.Context())
	if !c.session.Authenticated() {
		_, invalid, _ := c.form.Snapshot()
		s.writePage(w, r, "gate.html", gateData{Invalid: invalid})
		return
	}
	s.writePage(w, r, "dashboard.html", newDashboardData(c.budget.View()))
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r.Context())
	if c.session.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("잘못된 요청입니다.").Write(w)
		return
	}

	c.form.SetCandidate(sanitizeInput(r.PostForm.Get("pin")))
	if s.gate.Verify(r.Context(), c.session, c.form) {
		log.FromContext(r.Context()).InfoContext(r.Context(), "Session unlocked", log.FieldSessionID, c.session.ID())
		c.budget.FetchCurrent(r.Context())
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, NewHTMXResponse())
}

func (s *Server) handleMonth(offset int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientFrom(r.Context()).budget.Navigate(r.Context(), offset)
		s.respond(w, r, NewHTMXResponse())
	}
}

// handleEntries applies whichever amount fields were posted.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r.Context())
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("잘못된 요청입니다.").Write(w)
		return
	}

	if v, ok := p.Lookup("base"); ok {
		c.budget.SetBaseAmount(v)
	}
	for _, id := range core.Slots {
		if v, ok := p.Lookup(id); ok {
			c.budget.SetEntryAmount(id, v)
		}
	}
	s.respond(w, r, NewHTMXResponse())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	clientFrom(r.Context()).budget.ToggleOperator(r.PathValue("id"))
	s.respond(w, r, NewHTMXResponse())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r.Context())
	resp := NewHTMXResponse()

	err := c.budget.Save(r.Context())
	switch {
	case err == nil:
		s.saves.Add(1)
		resp.TriggerSnapshotSaved(c.budget.View().MonthKey)
	case errors.Is(err, budget.ErrSaveInProgress):
		resp.Status(http.StatusConflict)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Save failed", log.FieldError, err)
		resp.TriggerErrorNotification(c.budget.View().ErrorMessage)
	}
	s.respond(w, r, resp)
}

func (s *Server) handleHistoryOpen(w http.ResponseWriter, r *http.Request) {
	clientFrom(r.Context()).budget.OpenHistory(r.Context())
	s.respond(w, r, NewHTMXResponse())
}

func (s *Server) handleHistoryClose(w http.ResponseWriter, r *http.Request) {
	clientFrom(r.Context()).budget.CloseHistory()
	s.respond(w, r, NewHTMXResponse())
}

// handleSummary is the text the copy and share buttons use.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyText(clientFrom(r.Context()).budget.Summary()).Write(w)
}

// handleMemo returns the stored memo of one snapshot, preferring the
// loaded history list.
func (s *Server) handleMemo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		TextError(http.StatusBadRequest, "invalid id").Write(w)
		return
	}

	snap, ok := clientFrom(r.Context()).budget.HistoryEntry(id)
	if !ok {
		snap, err = s.store.GetSnapshot(r.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			TextError(http.StatusNotFound, "not found").Write(w)
			return
		case err != nil:
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Memo lookup failed", log.FieldSnapshotID, id, log.FieldError, err)
			TextError(http.StatusInternalServerError, "lookup failed").Write(w)
			return
		}
	}
	NewHTMXResponse().BodyText(snap.Memo).Write(w)
}

// respond renders the dashboard fragment for htmx and redirects plain
// form posts back to the page.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder) {
	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	body, err := s.render("dashboard", newDashboardData(clientFrom(r.Context()).budget.View()))
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Render failed", log.FieldError, err)
		InternalServerError("화면을 그리지 못했습니다.").Write(w)
		return
	}
	resp.BodyHTML(string(body)).Write(w)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, name string, data any) {
	body, err := s.render(name, data)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Render failed", "template", name, log.FieldError, err)
		InternalServerError("화면을 그리지 못했습니다.").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(string(body)).Write(w)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
