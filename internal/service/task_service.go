package service

import (
	"fmt"
	"strings"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// TaskService drives the task lifecycle: creation (by guardians directly,
// or by kids as requests), the request review gate, completion with its
// point payout, and the feedback exchange between kid and guardian.
type TaskService struct {
	db       *database.DB
	taskRepo *repository.TaskRepository
	streaks  *StreakService
	ledger   *LedgerService
	perms    *PermissionService
}

func NewTaskService(db *database.DB, taskRepo *repository.TaskRepository, streaks *StreakService, ledger *LedgerService, perms *PermissionService) *TaskService {
	return &TaskService{db: db, taskRepo: taskRepo, streaks: streaks, ledger: ledger, perms: perms}
}

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	KidID       int64
	Title       string
	Description string
	PointValue  int
	Recurrence  string
}

// CompletionResult is everything a client needs to show after a completion:
// the task, what it paid, and the balance and streak it produced.
type CompletionResult struct {
	Task         *models.Task
	PointsEarned int
	NewBalance   int
	Gems         models.GemBalance
	Streak       *models.Streak
}

// CreateTask creates a task for a kid. A guardian with manage permission
// creates it pre-approved; a kid session creates it as a pending request
// for its own list, to be reviewed by a guardian before it earns anything.
func (s *TaskService) CreateTask(actor Actor, input CreateTaskInput) (*models.Task, error) {
	if err := validation.ValidateName(input.Title); err != nil {
		return nil, validation.ValidationError{Field: "title", Message: "title must be at least 2 characters"}
	}
	if err := validation.ValidatePointValue(input.PointValue); err != nil {
		return nil, err
	}

	task := &models.Task{
		KidID:       input.KidID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		PointValue:  input.PointValue,
		Recurrence:  input.Recurrence,
	}

	if actor.IsKid() {
		if actor.KidID != input.KidID {
			return nil, ErrForbidden
		}
		task.IsKidRequest = true
		task.RequestStatus = models.RequestPending
	} else {
		if err := s.perms.AuthorizeKid(actor, input.KidID, models.PermissionManage); err != nil {
			return nil, err
		}
		task.RequestStatus = models.RequestApproved
		userID := actor.UserID
		task.CreatedBy = &userID
	}

	return s.taskRepo.CreateTask(task)
}

// GetTask returns a single task visible to the actor.
func (s *TaskService) GetTask(actor Actor, taskID int64) (*models.Task, error) {
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if err := s.perms.AuthorizeKid(actor, task.KidID, models.PermissionView); err != nil {
		return nil, err
	}
	return task, nil
}

// GetKidTasks lists a kid's tasks, newest first.
func (s *TaskService) GetKidTasks(actor Actor, kidID int64) ([]models.Task, error) {
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionView); err != nil {
		return nil, err
	}
	return s.taskRepo.GetKidTasks(kidID)
}

// CountCompletedTasks returns how many tasks the kid has ever completed.
func (s *TaskService) CountCompletedTasks(actor Actor, kidID int64) (int, error) {
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionView); err != nil {
		return 0, err
	}
	return s.taskRepo.CountCompleted(kidID)
}

// ReviewTaskRequest approves or rejects a kid-requested task. Approval may
// adjust the point value the kid asked for. Only pending requests can be
// reviewed; the guarded update means two concurrent reviews cannot both win.
func (s *TaskService) ReviewTaskRequest(actor Actor, taskID int64, approve bool, adjustedPoints *int, comment string) (*models.Task, error) {
	if actor.IsKid() {
		return nil, ErrForbidden
	}
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if err := s.perms.AuthorizeKid(actor, task.KidID, models.PermissionManage); err != nil {
		return nil, err
	}
	if task.State() != models.StateRequested {
		return nil, ErrInvalidTransition
	}

	pointValue := task.PointValue
	if adjustedPoints != nil {
		if err := validation.ValidatePointValue(*adjustedPoints); err != nil {
			return nil, err
		}
		pointValue = *adjustedPoints
	}

	status := models.RequestApproved
	if !approve {
		status = models.RequestRejected
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tasks := s.taskRepo.WithTx(tx)
	reviewed, err := tasks.SetRequestStatus(taskID, status, pointValue)
	if err != nil {
		return nil, err
	}
	if !reviewed {
		return nil, ErrInvalidTransition
	}
	if comment != "" {
		if err := tasks.SetParentComment(taskID, comment); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	return s.taskRepo.GetTaskByID(taskID)
}

// CompleteTask marks a task done and pays out its points. The completion
// flag, the ledger credit and the streak advance commit in one transaction;
// the guarded completion update ensures the payout happens at most once.
// Completing from the active state requires proof; completing after a
// guardian asked for another try does not, since the proof is already there.
func (s *TaskService) CompleteTask(actor Actor, taskID int64, proofImageURL, completionNote string) (*CompletionResult, error) {
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if !actor.IsKid() || actor.KidID != task.KidID {
		if err := s.perms.AuthorizeKid(actor, task.KidID, models.PermissionManage); err != nil {
			return nil, err
		}
	}

	switch task.State() {
	case models.StateCompleted:
		return nil, ErrAlreadyCompleted
	case models.StateRequested, models.StateRejected:
		return nil, ErrInvalidTransition
	case models.StateActive:
		if strings.TrimSpace(proofImageURL) == "" {
			return nil, validation.ValidationError{Field: "proofImageUrl", Message: "proof is required to complete a task"}
		}
	case models.StateAwaitingFeedback:
		// Redoing after feedback keeps the original proof unless replaced.
		if proofImageURL == "" {
			proofImageURL = task.ProofImageURL
		}
	}

	completedAt := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	completed, err := s.taskRepo.WithTx(tx).MarkCompleted(taskID, completedAt, proofImageURL, completionNote)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, ErrAlreadyCompleted
	}

	entry, err := s.ledger.applyDelta(tx, task.KidID, task.PointValue, fmt.Sprintf("completed task: %s", task.Title))
	if err != nil {
		return nil, err
	}
	streak, err := s.streaks.recordActivity(tx, task.KidID, completedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	task, err = s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	return &CompletionResult{
		Task:         task,
		PointsEarned: entry.Delta(),
		NewBalance:   entry.NewPoints,
		Gems:         models.SplitGems(entry.NewPoints, s.ledger.GemRatio()),
		Streak:       streak,
	}, nil
}

// RequestFeedback flags a task for guardian attention. On an active task it
// asks for help before completing; on a completed task it asks for a redo
// review, which is only allowed while no guardian has commented yet.
func (s *TaskService) RequestFeedback(actor Actor, taskID int64, note string) (*models.Task, error) {
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if !actor.IsKid() || actor.KidID != task.KidID {
		if err := s.perms.AuthorizeKid(actor, task.KidID, models.PermissionManage); err != nil {
			return nil, err
		}
	}

	switch task.State() {
	case models.StateActive:
	case models.StateCompleted:
		if task.ParentComment != "" {
			return nil, ErrInvalidTransition
		}
	default:
		return nil, ErrInvalidTransition
	}

	if err := s.taskRepo.SetFeedbackRequested(taskID, true, note); err != nil {
		return nil, err
	}
	return s.taskRepo.GetTaskByID(taskID)
}

// AddGuardianComment records a guardian's comment on a task. Commenting
// answers an outstanding feedback request, so the flag is cleared.
func (s *TaskService) AddGuardianComment(actor Actor, taskID int64, comment string) (*models.Task, error) {
	if actor.IsKid() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(comment) == "" {
		return nil, validation.ValidationError{Field: "comment", Message: "comment is required"}
	}
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if err := s.perms.AuthorizeKid(actor, task.KidID, models.PermissionComment); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tasks := s.taskRepo.WithTx(tx)
	if err := tasks.SetParentComment(taskID, comment); err != nil {
		return nil, err
	}
	if task.FeedbackRequested && task.IsCompleted {
		if err := tasks.SetFeedbackRequested(taskID, false, task.CompletionNote); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	return s.taskRepo.GetTaskByID(taskID)
}

// SetPointValue changes what a task will pay. Completed tasks are immutable;
// the points already paid stay in the ledger as they were.
func (s *TaskService) SetPointValue(actor Actor, taskID int64, pointValue int) (*models.Task, error) {
	if actor.IsKid() {
		return nil, ErrForbidden
	}
	if err := validation.ValidatePointValue(pointValue); err != nil {
		return nil, err
	}
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if err := s.perms.AuthorizeKid(actor, task.KidID, models.PermissionManage); err != nil {
		return nil, err
	}
	if task.IsCompleted {
		return nil, ErrInvalidTransition
	}

	if err := s.taskRepo.SetPointValue(taskID, pointValue); err != nil {
		return nil, err
	}
	return s.taskRepo.GetTaskByID(taskID)
}

// DeleteTask removes a task. Deletion does not touch the ledger, so points
// earned from an already-completed task survive the task itself.
func (s *TaskService) DeleteTask(actor Actor, taskID int64) error {
	if actor.IsKid() {
		return ErrForbidden
	}
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNotFound
	}
	if err := s.perms.AuthorizeKid(actor, task.KidID, models.PermissionManage); err != nil {
		return err
	}
	return s.taskRepo.DeleteTask(taskID)
}
