package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasktracker/internal/api/shared"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
	"github.com/phrazzld/tasktracker/internal/service"
)

// TaskHandler serves the task endpoints.
type TaskHandler struct {
	tasks    service.TaskService
	logger   *slog.Logger
	timeFunc func() time.Time
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		panic("task service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:    tasks,
		logger:   logger.With(slog.String("component", "task_handler")),
		timeFunc: time.Now,
	}
}

func (h *TaskHandler) now() time.Time {
	return h.timeFunc().UTC()
}

// CreateTask handles POST /tasks/.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	task, err := h.tasks.Create(r.Context(), user, service.TaskInput{
		Title:          req.Title,
		Description:    req.Description,
		ExpirationDate: req.ExpirationDate.Ptr(),
		Responsibles:   req.Responsibles,
		Auditors:       req.Auditors,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task created via API", slog.Int64("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task, h.now()))
}

// ListTasks handles GET /tasks/ with optional title, start_date, end_date,
// creator_id and expired filters.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	filter, err := parseTaskFilter(r, now)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.Filter(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks, now))
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	_, id, ok := handleUserAndPathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task, h.now()))
}

// UpdateTask handles PATCH /tasks/{id}. Only fields present in the body are
// applied; explicit nulls clear optional fields.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, id, ok := handleUserAndPathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var patch domain.TaskPatch
	if err := shared.DecodeJSON(r, &patch); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	task, err := h.tasks.Update(r.Context(), user, id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task, h.now()))
}

// DeleteTask handles DELETE /tasks/{id} and returns the deleted task.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, id, ok := handleUserAndPathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	task, err := h.tasks.Delete(r.Context(), user, id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task, h.now()))
}
