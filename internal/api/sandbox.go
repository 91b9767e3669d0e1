package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lucidra/sandbox-server/internal/catalog"
	"github.com/lucidra/sandbox-server/internal/domain"
	"github.com/lucidra/sandbox-server/internal/identity"
	"github.com/lucidra/sandbox-server/internal/sandbox"
)

// SandboxHandler handles mission and progression endpoints.
type SandboxHandler struct {
	facade *sandbox.Facade
}

// NewSandboxHandler creates a new sandbox handler.
func NewSandboxHandler(facade *sandbox.Facade) *SandboxHandler {
	return &SandboxHandler{facade: facade}
}

// RegisterRoutes registers sandbox routes.
func (h *SandboxHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sandbox", func(r chi.Router) {
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/progress", h.GetProgress)
		r.Get("/advisors", h.GetAdvisors)
		r.Get("/badges", h.GetBadges)
		r.Get("/templates", h.GetTemplates)
		r.Get("/templates/{templateID}", h.GetTemplate)

		r.Post("/missions", h.CreateMission)
		r.Get("/missions", h.GetMissions)
		r.Get("/missions/{missionID}", h.GetMission)
		r.Post("/missions/{missionID}/subtasks", h.AddSubtask)
		r.Put("/missions/{missionID}/subtasks/{subtaskID}/advisor", h.AssignAdvisor)
		r.Put("/missions/{missionID}/subtasks/{subtaskID}/status", h.SetSubtaskStatus)
		r.Post("/missions/{missionID}/subtasks/{subtaskID}/iterations", h.SubmitIteration)
	})
}

// GetDashboard returns progress, missions, and the static catalogs in
// one response.
func (h *SandboxHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	Data(w, http.StatusOK, h.facade.GetDashboard(r.Context(), sessionID))
}

// GetProgress returns the caller's progress record.
func (h *SandboxHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	Data(w, http.StatusOK, h.facade.GetUserProgress(r.Context(), sessionID))
}

// GetAdvisors returns the advisor catalog.
func (h *SandboxHandler) GetAdvisors(w http.ResponseWriter, r *http.Request) {
	Data(w, http.StatusOK, catalog.Advisors())
}

// GetBadges returns the badge catalog.
func (h *SandboxHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	Data(w, http.StatusOK, catalog.Badges())
}

// GetTemplates returns the template catalog, optionally filtered by
// category or difficulty.
func (h *SandboxHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		Data(w, http.StatusOK, catalog.TemplatesByCategory(category))
		return
	}
	if difficulty := r.URL.Query().Get("difficulty"); difficulty != "" {
		Data(w, http.StatusOK, catalog.TemplatesByDifficulty(domain.Difficulty(difficulty)))
		return
	}
	Data(w, http.StatusOK, catalog.Templates())
}

// GetTemplate returns one template by id.
func (h *SandboxHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl := catalog.Template(chi.URLParam(r, "templateID"))
	if tpl == nil {
		Error(w, http.StatusNotFound, "Template not found")
		return
	}
	Data(w, http.StatusOK, tpl)
}

type createMissionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Challenge   string `json:"challenge"`
	Category    string `json:"category"`
	TemplateID  string `json:"templateId"`
}

// CreateMission creates a mission, either from scratch or from a
// template when templateId is given.
func (h *SandboxHandler) CreateMission(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())

	var req createMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.TemplateID != "" {
		m, err := h.facade.CreateMissionFromTemplate(r.Context(), sessionID, req.TemplateID)
		if err != nil {
			DomainError(w, err)
			return
		}
		Data(w, http.StatusOK, m)
		return
	}

	if req.Title == "" || req.Description == "" || req.Challenge == "" {
		Error(w, http.StatusBadRequest, "Title, description, and challenge are required")
		return
	}

	m := h.facade.CreateMission(r.Context(), sessionID, req.Title, req.Description, req.Challenge, req.Category)
	Data(w, http.StatusOK, m)
}

// GetMissions returns the caller's missions in creation order.
func (h *SandboxHandler) GetMissions(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	Data(w, http.StatusOK, h.facade.GetUserMissions(sessionID))
}

// GetMission returns one mission by id.
func (h *SandboxHandler) GetMission(w http.ResponseWriter, r *http.Request) {
	m, err := h.facade.GetMission(chi.URLParam(r, "missionID"))
	if err != nil {
		DomainError(w, err)
		return
	}
	Data(w, http.StatusOK, m)
}

type addSubtaskRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	AssignedAdvisor string   `json:"assignedAdvisor"`
	PromptTemplate  string   `json:"promptTemplate"`
	Constraints     []string `json:"constraints"`
	ExpectedFormat  string   `json:"expectedFormat"`
}

// AddSubtask appends a subtask to a mission.
func (h *SandboxHandler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	missionID := chi.URLParam(r, "missionID")

	var req addSubtaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Description == "" {
		Error(w, http.StatusBadRequest, "Title and description are required")
		return
	}

	st, err := h.facade.AddSubtask(r.Context(), sessionID, missionID, domain.SubtaskSeed{
		Title:           req.Title,
		Description:     req.Description,
		AssignedAdvisor: req.AssignedAdvisor,
		PromptTemplate:  req.PromptTemplate,
		Constraints:     req.Constraints,
		ExpectedFormat:  req.ExpectedFormat,
	})
	if err != nil {
		DomainError(w, err)
		return
	}
	Data(w, http.StatusOK, st)
}

type assignAdvisorRequest struct {
	AdvisorID string `json:"advisorId"`
}

// AssignAdvisor sets the advisor reference on a subtask.
func (h *SandboxHandler) AssignAdvisor(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	missionID := chi.URLParam(r, "missionID")
	subtaskID := chi.URLParam(r, "subtaskID")

	var req assignAdvisorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AdvisorID == "" {
		Error(w, http.StatusBadRequest, "Advisor ID is required")
		return
	}

	if err := h.facade.AssignAdvisor(r.Context(), sessionID, missionID, subtaskID, req.AdvisorID); err != nil {
		DomainError(w, err)
		return
	}
	Data(w, http.StatusOK, map[string]string{"message": "Advisor assigned successfully"})
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetSubtaskStatus applies an explicit subtask status transition.
func (h *SandboxHandler) SetSubtaskStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	missionID := chi.URLParam(r, "missionID")
	subtaskID := chi.URLParam(r, "subtaskID")

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := domain.SubtaskStatus(req.Status)
	if !status.Valid() {
		Error(w, http.StatusBadRequest, "Unknown subtask status")
		return
	}

	m, err := h.facade.SetSubtaskStatus(r.Context(), sessionID, missionID, subtaskID, status)
	if err != nil {
		DomainError(w, err)
		return
	}
	Data(w, http.StatusOK, m)
}

type submitIterationRequest struct {
	PromptUsed      string `json:"promptUsed"`
	AdvisorResponse string `json:"advisorResponse"`
	UserAnnotation  string `json:"userAnnotation"`
}

// SubmitIteration records a prompt/response round against a subtask,
// charging the session's quota and updating progression.
func (h *SandboxHandler) SubmitIteration(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	missionID := chi.URLParam(r, "missionID")
	subtaskID := chi.URLParam(r, "subtaskID")

	var req submitIterationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PromptUsed == "" || req.AdvisorResponse == "" {
		Error(w, http.StatusBadRequest, "Prompt and advisor response are required")
		return
	}

	result, err := h.facade.SubmitIteration(r.Context(), sessionID, missionID, subtaskID,
		req.PromptUsed, req.AdvisorResponse, req.UserAnnotation)
	if err != nil {
		DomainError(w, err)
		return
	}
	Data(w, http.StatusOK, result)
}
