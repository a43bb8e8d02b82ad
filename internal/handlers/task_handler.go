package handlers

import (
	"net/http"

	"chorequest/internal/service"
)

// TaskHandler handles the task lifecycle endpoints.
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTask handles POST /api/kids/{id}/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		PointValue  int    `json:"pointValue"`
		Recurrence  string `json:"recurrence"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.CreateTask(ActorFromContext(r), service.CreateTaskInput{
		KidID:       kidID,
		Title:       req.Title,
		Description: req.Description,
		PointValue:  req.PointValue,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newTaskView(task))
}

// ListTasks handles GET /api/kids/{id}/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	tasks, err := h.taskService.GetKidTasks(ActorFromContext(r), kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newTaskViews(tasks))
}

// GetTask handles GET /api/tasks/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	task, err := h.taskService.GetTask(ActorFromContext(r), taskID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newTaskView(task))
}

// ReviewTask handles POST /api/tasks/{id}/review
func (h *TaskHandler) ReviewTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	var req struct {
		Approve    bool   `json:"approve"`
		PointValue *int   `json:"pointValue"`
		Comment    string `json:"comment"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.ReviewTaskRequest(ActorFromContext(r), taskID, req.Approve, req.PointValue, req.Comment)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newTaskView(task))
}

// CompleteTask handles POST /api/tasks/{id}/complete
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	var req struct {
		ProofImageURL  string `json:"proofImageUrl"`
		CompletionNote string `json:"completionNote"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.taskService.CompleteTask(ActorFromContext(r), taskID, req.ProofImageURL, req.CompletionNote)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, completionView{
		Task:         newTaskView(result.Task),
		PointsEarned: result.PointsEarned,
		NewBalance:   result.NewBalance,
		Gems:         result.Gems.Gems,
		Stars:        result.Gems.Stars,
		Streak:       newStreakView(result.Streak),
	})
}

// RequestFeedback handles POST /api/tasks/{id}/feedback-request
func (h *TaskHandler) RequestFeedback(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.RequestFeedback(ActorFromContext(r), taskID, req.Note)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newTaskView(task))
}

// AddComment handles POST /api/tasks/{id}/comment
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.AddGuardianComment(ActorFromContext(r), taskID, req.Comment)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newTaskView(task))
}

// SetPointValue handles PUT /api/tasks/{id}/points
func (h *TaskHandler) SetPointValue(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	var req struct {
		PointValue int `json:"pointValue"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.SetPointValue(ActorFromContext(r), taskID, req.PointValue)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newTaskView(task))
}

// DeleteTask handles DELETE /api/tasks/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid task id", nil)
		return
	}
	if err := h.taskService.DeleteTask(ActorFromContext(r), taskID); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
