// Package fakebackend is an in-process stand-in for the generation backend.
// It serves the same routes and bodies the real service does so client code
// can be exercised end to end without a model.
package fakebackend

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/germanamz/localwriter/pkg/apiclient"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Backend records calls and answers them according to its current settings.
// The zero value is not usable; call New.
type Backend struct {
	mu sync.Mutex

	result     *apiclient.GenerationResult
	failStatus int
	failBody   any
	delay      time.Duration
	healthy    bool
	modelInfo  map[string]any
	logs       []string

	generateCalls int
	healthCalls   int
	lastRequest   apiclient.GenerationRequest

	now func() time.Time
}

// New returns a healthy backend that echoes prompts back as output.
func New() *Backend {
	return &Backend{
		healthy: true,
		modelInfo: map[string]any{
			"model_name": "meta-llama/Meta-Llama-3-8B-Instruct",
			"status":     "loaded",
			"device":     "cpu",
		},
		now: time.Now,
	}
}

// SetResult fixes the body returned by POST /generate.
func (b *Backend) SetResult(r apiclient.GenerationResult) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.result = &r
}

// FailGenerate makes POST /generate answer with status and the JSON body.
// A nil body sends no body at all. Status 0 restores success.
func (b *Backend) FailGenerate(status int, body any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failStatus = status
	b.failBody = body
}

// SetDelay holds every /generate and /health response for d, or until the
// client goes away.
func (b *Backend) SetDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.delay = d
}

// SetHealthy toggles GET /health between 200 and 500.
func (b *Backend) SetHealthy(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.healthy = ok
}

// SetLogs replaces the lines served by GET /logs.
func (b *Backend) SetLogs(lines []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.logs = append([]string(nil), lines...)
}

// GenerateCalls reports how many generation requests were received.
func (b *Backend) GenerateCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.generateCalls
}

// HealthCalls reports how many health probes were received.
func (b *Backend) HealthCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.healthCalls
}

// LastRequest returns the body of the most recent generation request.
func (b *Backend) LastRequest() apiclient.GenerationRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.lastRequest
}

// Handler returns the HTTP routes of the backend.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", b.handleRoot)
	r.Get("/health", b.handleHealth)
	r.Post("/generate", b.handleGenerate)
	r.Get("/logs", b.handleLogs)

	return r
}

func (b *Backend) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, apiclient.Info{
		Message: "Local AI Writer API",
		Version: "1.0.0",
		Endpoints: map[string]string{
			"generate": "/generate",
			"health":   "/health",
			"docs":     "/docs",
		},
	})
}

func (b *Backend) handleHealth(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.healthCalls++
	healthy := b.healthy
	delay := b.delay
	info := b.modelInfo
	b.mu.Unlock()

	if !wait(r, delay) {
		return
	}

	if !healthy {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "Service unhealthy: model not loaded"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"model_info": info,
		"timestamp":  b.now().Format("2006-01-02T15:04:05.000000"),
	})
}

func (b *Backend) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req apiclient.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"msg": err.Error(), "type": "value_error"}},
		})
		return
	}

	b.mu.Lock()
	b.generateCalls++
	b.lastRequest = req
	delay := b.delay
	failStatus, failBody := b.failStatus, b.failBody
	result := b.result
	b.mu.Unlock()

	if !wait(r, delay) {
		return
	}

	if failStatus != 0 {
		if failBody == nil {
			w.WriteHeader(failStatus)
			return
		}
		writeJSON(w, failStatus, failBody)
		return
	}

	if result != nil {
		writeJSON(w, http.StatusOK, result)
		return
	}

	writeJSON(w, http.StatusOK, apiclient.GenerationResult{
		Output:      "Generated: " + req.Prompt,
		TimeTaken:   0.42,
		Temperature: req.Temperature,
		Timestamp:   b.now().Format("2006-01-02T15:04:05.000000"),
		Prompt:      req.Prompt,
	})
}

func (b *Backend) handleLogs(w http.ResponseWriter, r *http.Request) {
	lines := 50
	if v := r.URL.Query().Get("lines"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "lines must be an integer"})
			return
		}
		lines = n
	}

	b.mu.Lock()
	all := append([]string(nil), b.logs...)
	b.mu.Unlock()

	if len(all) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"logs": []string{}, "message": "No logs found"})
		return
	}

	recent := all
	if len(all) > lines {
		recent = all[len(all)-lines:]
	}

	writeJSON(w, http.StatusOK, apiclient.LogsResponse{
		Logs:         recent,
		TotalEntries: len(all),
		Showing:      len(recent),
	})
}

// wait blocks for d or until the request context ends. It reports whether
// the handler should still answer.
func wait(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
