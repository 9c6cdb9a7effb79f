package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/tasktrack/internal/auth"
	"github.com/BradenHooton/tasktrack/internal/models"
	"github.com/BradenHooton/tasktrack/internal/services"
	pkghttp "github.com/BradenHooton/tasktrack/pkg/http"
)

const taskNotFoundMessage = "Task not found or you do not have permission to access it"

// TaskServiceInterface defines the interface for task business logic
type TaskServiceInterface interface {
	List(ctx context.Context, userID string) ([]*models.Task, error)
	Create(ctx context.Context, userID string, input services.CreateTaskInput) (*models.Task, error)
	SetCompleted(ctx context.Context, id int64, userID string, completed bool) (*models.Task, error)
	Update(ctx context.Context, id int64, userID string, input services.UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, id int64, userID string) error
}

// TaskHandler handles task-related HTTP requests. Every route requires AuthMiddleware.
type TaskHandler struct {
	service TaskServiceInterface
}

func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      string  `json:"status" validate:"omitempty,oneof=not_started in_progress completed"`
}

// UpdateTaskRequest represents the request body for updating a task. Omitted fields are unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status      *string `json:"status" validate:"omitempty,oneof=not_started in_progress completed"`
}

// CompleteTaskRequest represents the request body for toggling completion
type CompleteTaskRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

func (h *TaskHandler) RegisterRoutes(router chi.Router) {
	router.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/complete", h.Complete)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns the caller's tasks, newest first
// @Summary List tasks
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Task
// @Router /api/tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	pkghttp.WriteJSON(w, http.StatusOK, tasks)
}

// Create adds a task owned by the caller
// @Summary Create task
// @Security BearerAuth
// @Accept json
// @Param request body CreateTaskRequest true "Create task request"
// @Produce json
// @Success 201 {object} models.Task
// @Failure 400 {object} pkghttp.ErrorResponse
// @Router /api/tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	task, err := h.service.Create(r.Context(), userID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		writeTaskError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, task)
}

// Update changes the supplied fields of a task
// @Summary Update task
// @Security BearerAuth
// @Accept json
// @Param id path int true "Task ID"
// @Param request body UpdateTaskRequest true "Update task request"
// @Produce json
// @Success 200 {object} models.Task
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	task, err := h.service.Update(r.Context(), id, userID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		writeTaskError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, task)
}

// Complete sets the completed flag
// @Summary Toggle completion
// @Security BearerAuth
// @Accept json
// @Param id path int true "Task ID"
// @Param request body CompleteTaskRequest true "Completion"
// @Produce json
// @Success 200 {object} models.Task
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /api/tasks/{id}/complete [patch]
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req CompleteTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeRequestError(w, err)
		return
	}

	task, err := h.service.SetCompleted(r.Context(), id, userID, *req.Completed)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, task)
}

// Delete removes a task
// @Summary Delete task
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 204
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		writeTaskError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := auth.GetUserFromContext(r)
	if claims == nil || claims.UserID() == "" {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return "", false
	}
	return claims.UserID(), true
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		pkghttp.WriteBadRequest(w, "Invalid task ID")
		return 0, false
	}
	return id, true
}

func writeTaskError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		pkghttp.WriteValidationError(w, vErr.Message, vErr.Field)
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, taskNotFoundMessage)
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid task data")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
