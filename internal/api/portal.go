package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/models"
	"github.com/xaenox/hr-hub/internal/requests"
	"github.com/xaenox/hr-hub/internal/storage"
)

type NavItem struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

var navigation = []NavItem{
	{Path: "/", Label: "Dashboard"},
	{Path: "/services", Label: "HR Services"},
	{Path: "/policies", Label: "Policy Center"},
	{Path: "/chat", Label: "AI Assistant"},
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Navigation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, navigation)
}

// DashboardView adds viewer-formatted strings to the dashboard figures
type DashboardView struct {
	*models.Dashboard
	Locale         string `json:"locale"`
	LastSalary     string `json:"last_salary,omitempty"`
	LastSalaryDate string `json:"last_salary_date,omitempty"`
	PendingCount   int    `json:"pending_count"`
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := storage.LoadDashboard(r.Context(), h.store, h.employeeID)
	if err != nil {
		h.logger.Error("Failed to load dashboard", zap.Error(err), zap.String("employee_id", h.employeeID))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load dashboard", r))
		return
	}

	f := h.viewer(r)
	view := DashboardView{
		Dashboard:    dash,
		Locale:       f.Tag().String(),
		PendingCount: len(dash.PendingRequests),
	}
	if p := dash.LastSalaryPayment; p != nil {
		view.LastSalary = f.Riyal(p.Amount)
		view.LastSalaryDate = f.Date(p.Date)
	}
	writeJSON(w, http.StatusOK, view)
}

type Service struct {
	Kind   models.ServiceKind   `json:"kind"`
	Title  string               `json:"title"`
	Fields []requests.FieldSpec `json:"fields"`
}

func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	services := make([]Service, 0, len(models.ServiceKinds))
	for _, kind := range models.ServiceKinds {
		services = append(services, Service{
			Kind:   kind,
			Title:  kind.Title(),
			Fields: requests.Fields(kind),
		})
	}
	writeJSON(w, http.StatusOK, services)
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListRequests(r.Context(), h.employeeID, queryLimit(r, 0))
	if err != nil {
		h.logger.Error("Failed to list requests", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list requests", r))
		return
	}
	if list == nil {
		list = []models.HRRequest{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ListPolicies supports ?category= and a case-insensitive ?q= over title
// and tags.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.store.ListPolicies(r.Context())
	if err != nil {
		h.logger.Error("Failed to list policies", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list policies", r))
		return
	}

	category := r.URL.Query().Get("category")
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	out := make([]models.Policy, 0, len(policies))
	for _, p := range policies {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if q != "" && !policyMatches(p, q) {
			continue
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

func policyMatches(p models.Policy, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	policy, err := h.store.GetPolicy(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Policy not found", r))
		return
	}
	if err != nil {
		h.logger.Error("Failed to get policy", zap.Error(err), zap.String("policy_id", id))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to get policy", r))
		return
	}
	writeJSON(w, http.StatusOK, policy)
}

func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.feed.Recent(queryLimit(r, 10)))
}
