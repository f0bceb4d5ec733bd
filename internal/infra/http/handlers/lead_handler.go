package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/smarttech/leadflow/internal/entity"
)

type LeadHandler struct {
	leadRepo    entity.LeadRepositoryInterface
	rateLimiter *RateLimiter
}

func NewLeadHandler(leadRepo entity.LeadRepositoryInterface) *LeadHandler {
	return &LeadHandler{
		leadRepo:    leadRepo,
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 req/min per IP on the public endpoint
	}
}

type ListLeadsResponse struct {
	Leads []*entity.Lead `json:"leads"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := entity.ListLeadsFilter{
		Page:         queryInt(r, "page", 1),
		Limit:        queryInt(r, "limit", 10),
		Status:       r.URL.Query().Get("status"),
		RelevanceTag: r.URL.Query().Get("relevanceTag"),
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	leads, total, err := h.leadRepo.List(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list leads"})
		return
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}

	writeJSON(w, http.StatusOK, ListLeadsResponse{
		Leads: leads,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadId")
	if _, err := uuid.Parse(leadID); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid leadId format"})
		return
	}

	lead, err := h.leadRepo.FindByID(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "lead not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to load lead"})
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

type CalendlyClickedRequest struct {
	Clicked bool `json:"clicked"`
}

// HandleCalendlyClicked is hit by the public chat widget, hence the limiter.
func (h *LeadHandler) HandleCalendlyClicked(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "too many requests"})
		return
	}

	leadID := chi.URLParam(r, "leadId")
	if _, err := uuid.Parse(leadID); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid leadId format"})
		return
	}

	var req CalendlyClickedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
		return
	}

	if err := h.leadRepo.SetCalendlyClicked(r.Context(), leadID, req.Clicked); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "lead not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to update lead"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	for {
		time.Sleep(5 * time.Minute)

		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > 10*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
