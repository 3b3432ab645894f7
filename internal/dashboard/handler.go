package dashboard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"erpdash/internal/auth"
	"erpdash/internal/projects"
	"erpdash/internal/statsapi"
	"erpdash/views/components"
	"erpdash/views/models"
	"erpdash/views/pages"
)

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// --- Page handler ---

// HomePage handles GET /
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	view := models.DashboardView{}
	if s, ok := auth.SessionFromContext(r.Context()); ok {
		view.UserEmail = s.Email
	}

	snap, err := h.svc.Load(r.Context())
	if err != nil {
		h.log.Error("dashboard load failed", "error", err)
		view.LoadError = "Could not load dashboard data"
		pages.Dashboard(view).Render(r.Context(), w)
		return
	}

	view.StatsDown = snap.StatsUnavailable
	if snap.Stats != nil {
		view.Stats = models.StatsView{
			TotalQuotes:     snap.Stats.TotalQuotes,
			OpenWorkOrders:  snap.Stats.OpenWorkOrders,
			LowStockItems:   snap.Stats.LowStockItems,
			TodaysShipments: snap.Stats.TodaysShipments,
		}
	}
	view.RecentOrders = itemsToViews(snap.RecentOrders)
	view.LowStock = itemsToViews(snap.LowStock)
	view.Projects = projectsToViews(snap.Projects)

	pages.Dashboard(view).Render(r.Context(), w)
}

// --- HTMX fragment handlers ---

// NewProjectModal handles GET /fragments/projects/new
func (h *Handler) NewProjectModal(w http.ResponseWriter, r *http.Request) {
	components.CreateProjectModal("", "").Render(r.Context(), w)
}

// EditProjectModal handles GET /fragments/projects/{id}/edit
func (h *Handler) EditProjectModal(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Projects().GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fragmentError(w, r, err)
		return
	}
	view := projectToView(*p)
	components.EditProjectModal(view, view.Name, "").Render(r.Context(), w)
}

// DeleteProjectModal handles GET /fragments/projects/{id}/delete
func (h *Handler) DeleteProjectModal(w http.ResponseWriter, r *http.Request) {
	components.DeleteProjectModal(r.PathValue("id")).Render(r.Context(), w)
}

// ProjectDetail handles GET /fragments/projects/{id}
func (h *Handler) ProjectDetail(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Projects().GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fragmentError(w, r, err)
		return
	}
	detail := models.ProjectDetailView{
		ProjectView: projectToView(*p),
		NotesHTML:   h.svc.Projects().RenderNotes(p.Notes),
	}
	components.ProjectDetailModal(detail).Render(r.Context(), w)
}

// CloseModal handles GET /fragments/close
func (h *Handler) CloseModal(w http.ResponseWriter, r *http.Request) {
	components.CloseModal().Render(r.Context(), w)
}

// CreateProject handles POST /fragments/projects. On validation failure the
// modal re-renders open with the error; on success it closes and the project
// panel is swapped out of band with the re-fetched list.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")

	res, err := h.svc.CreateProject(r.Context(), name)
	if errors.Is(err, projects.ErrEmptyName) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		components.CreateProjectModal(name, "Project name is required").Render(r.Context(), w)
		return
	}
	if err != nil {
		h.log.Error("failed to create project", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		components.CreateProjectModal(name, "Could not create the project").Render(r.Context(), w)
		return
	}

	h.mutationResponse(w, r, res)
}

// UpdateProject handles PUT /fragments/projects/{id}
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	name := r.FormValue("name")
	view := models.ProjectView{ID: id}

	res, err := h.svc.RenameProject(r.Context(), id, name)
	if errors.Is(err, projects.ErrEmptyName) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		components.EditProjectModal(view, name, "Project name is required").Render(r.Context(), w)
		return
	}
	if errors.Is(err, projects.ErrProjectNotFound) {
		w.WriteHeader(http.StatusNotFound)
		components.EditProjectModal(view, name, "This project no longer exists").Render(r.Context(), w)
		return
	}
	if err != nil {
		h.log.Error("failed to update project", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		components.EditProjectModal(view, name, "Could not save the project").Render(r.Context(), w)
		return
	}

	h.mutationResponse(w, r, res)
}

// DeleteProject handles DELETE /fragments/projects/{id}
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.DeleteProject(r.Context(), r.PathValue("id"))
	if err != nil {
		h.log.Error("failed to delete project", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		components.DeleteProjectModal(r.PathValue("id")).Render(r.Context(), w)
		return
	}

	h.mutationResponse(w, r, res)
}

// ProjectsFragment handles GET /fragments/projects
func (h *Handler) ProjectsFragment(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Projects().ListRecent(r.Context(), h.parseInt(r.URL.Query().Get("limit"), projects.DefaultRecentLimit))
	if err != nil {
		h.log.Error("failed to list projects", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	components.ProjectPanel(projectsToViews(list)).Render(r.Context(), w)
}

func (h *Handler) mutationResponse(w http.ResponseWriter, r *http.Request, res *MutationResult) {
	w.Header().Set("HX-Trigger", "project-saved")
	components.CloseModal().Render(r.Context(), w)
	components.ProjectPanelOOB(projectsToViews(res.Projects)).Render(r.Context(), w)
}

func (h *Handler) fragmentError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, projects.ErrProjectNotFound) {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	h.log.Error("fragment request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// --- REST API handlers ---

// APIDashboard handles GET /api/dashboard
func (h *Handler) APIDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Load(r.Context())
	if err != nil {
		h.log.Error("dashboard load failed", "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, struct {
		Stats            *statsapi.Stats       `json:"stats,omitempty"`
		RecentOrders     []statsapi.RecentItem `json:"recentOrders"`
		LowStock         []statsapi.RecentItem `json:"lowStock"`
		Projects         []projects.Project    `json:"projects"`
		StatsUnavailable bool                  `json:"statsUnavailable"`
	}{snap.Stats, snap.RecentOrders, snap.LowStock, snap.Projects, snap.StatsUnavailable}, http.StatusOK)
}

// APIListProjects handles GET /api/projects
func (h *Handler) APIListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Projects().ListRecent(r.Context(), h.parseInt(r.URL.Query().Get("limit"), projects.DefaultRecentLimit))
	if err != nil {
		h.log.Error("failed to list projects", "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.jsonResponse(w, list, http.StatusOK)
}

// APICreateProject handles POST /api/projects
func (h *Handler) APICreateProject(w http.ResponseWriter, r *http.Request) {
	var input projects.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Projects().Create(r.Context(), input)
	if errors.Is(err, projects.ErrEmptyName) {
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		h.log.Error("failed to create project", "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, p, http.StatusCreated)
}

// APIUpdateProject handles PUT /api/projects/{id}
func (h *Handler) APIUpdateProject(w http.ResponseWriter, r *http.Request) {
	var input projects.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	err := h.svc.Projects().Update(r.Context(), r.PathValue("id"), input)
	if errors.Is(err, projects.ErrEmptyName) {
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if errors.Is(err, projects.ErrProjectNotFound) {
		h.jsonError(w, "project not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("failed to update project", "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// APIDeleteProject handles DELETE /api/projects/{id}
func (h *Handler) APIDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Projects().Delete(r.Context(), r.PathValue("id")); err != nil {
		h.log.Error("failed to delete project", "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helper methods ---

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *Handler) parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// --- View model converters ---

func projectToView(p projects.Project) models.ProjectView {
	name := p.Name
	if name == "" {
		name = p.ID
	}
	return models.ProjectView{ID: p.ID, Name: name, CreatedAt: p.CreatedAt}
}

func projectsToViews(list []projects.Project) []models.ProjectView {
	views := make([]models.ProjectView, len(list))
	for i, p := range list {
		views[i] = projectToView(p)
	}
	return views
}

func itemsToViews(items []statsapi.RecentItem) []models.ItemView {
	views := make([]models.ItemView, len(items))
	for i, it := range items {
		name := it.Name
		if name == "" {
			name = it.ID
		}
		views[i] = models.ItemView{ID: it.ID, Name: name, Status: it.Status}
	}
	return views
}
