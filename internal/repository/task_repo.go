package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db database.DBTX
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db database.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *TaskRepository) WithTx(tx database.DBTX) *TaskRepository {
	return &TaskRepository{db: tx}
}

const taskColumns = `id, kid_id, title, description, point_value, is_kid_request, request_status,
		feedback_requested, is_completed, completed_at, proof_image_url, completion_note,
		parent_comment, recurrence, created_by, created_at, updated_at`

// CreateTask inserts a new task
func (r *TaskRepository) CreateTask(task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (kid_id, title, description, point_value, is_kid_request, request_status, recurrence, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	taskID, err := r.db.ExecReturningID(query,
		task.KidID,
		task.Title,
		task.Description,
		task.PointValue,
		task.IsKidRequest,
		string(task.RequestStatus),
		task.Recurrence,
		task.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created := *task
	created.ID = taskID
	created.CreatedAt = time.Now()
	created.UpdatedAt = time.Now()
	return &created, nil
}

// GetTaskByID retrieves a task by ID
func (r *TaskRepository) GetTaskByID(taskID int64) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ?"
	return r.scanTask(r.db.QueryRow(query, taskID))
}

// GetKidTasks retrieves all tasks for a kid, newest first
func (r *TaskRepository) GetKidTasks(kidID int64) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE kid_id = ? ORDER BY created_at DESC"
	rows, err := r.db.Query(query, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := r.scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, nil
}

// SetRequestStatus records a review decision on a pending task request.
// The update is guarded on the current pending status so racing reviews
// cannot both apply.
func (r *TaskRepository) SetRequestStatus(taskID int64, status models.RequestStatus, pointValue int) (bool, error) {
	query := `
		UPDATE tasks SET request_status = ?, point_value = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND request_status = ?
	`
	result, err := r.db.Exec(query, string(status), pointValue, taskID, string(models.RequestPending))
	if err != nil {
		return false, fmt.Errorf("failed to set request status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check review update: %w", err)
	}
	return affected == 1, nil
}

// MarkCompleted flips a task to completed with a compare-and-set on the
// current incomplete state. Returns false when the task was already
// completed by a racing request.
func (r *TaskRepository) MarkCompleted(taskID int64, completedAt time.Time, proofImageURL, completionNote string) (bool, error) {
	query := `
		UPDATE tasks
		SET is_completed = ?, completed_at = ?, proof_image_url = ?, completion_note = ?,
		    feedback_requested = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_completed = ?
	`
	result, err := r.db.Exec(query, true, completedAt, proofImageURL, completionNote, false, taskID, false)
	if err != nil {
		return false, fmt.Errorf("failed to mark task completed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check completion update: %w", err)
	}
	return affected == 1, nil
}

// SetFeedbackRequested sets or clears the feedback flag
func (r *TaskRepository) SetFeedbackRequested(taskID int64, requested bool, note string) error {
	query := "UPDATE tasks SET feedback_requested = ?, completion_note = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, requested, note, taskID); err != nil {
		return fmt.Errorf("failed to set feedback flag: %w", err)
	}
	return nil
}

// SetParentComment stores a guardian's comment on a task
func (r *TaskRepository) SetParentComment(taskID int64, comment string) error {
	query := "UPDATE tasks SET parent_comment = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, comment, taskID); err != nil {
		return fmt.Errorf("failed to set parent comment: %w", err)
	}
	return nil
}

// SetPointValue changes a task's point value before completion
func (r *TaskRepository) SetPointValue(taskID int64, pointValue int) error {
	query := "UPDATE tasks SET point_value = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_completed = ?"
	if _, err := r.db.Exec(query, pointValue, taskID, false); err != nil {
		return fmt.Errorf("failed to set point value: %w", err)
	}
	return nil
}

// DeleteTask deletes a task
func (r *TaskRepository) DeleteTask(taskID int64) error {
	query := "DELETE FROM tasks WHERE id = ?"
	if _, err := r.db.Exec(query, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// CountCompleted counts a kid's completed tasks
func (r *TaskRepository) CountCompleted(kidID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM tasks WHERE kid_id = ? AND is_completed = ?"
	if err := r.db.QueryRow(query, kidID, true).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *TaskRepository) scanTask(row *sql.Row) (*models.Task, error) {
	task, err := r.scanTaskRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) scanTaskRow(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.KidID,
		&task.Title,
		&task.Description,
		&task.PointValue,
		&task.IsKidRequest,
		&task.RequestStatus,
		&task.FeedbackRequested,
		&task.IsCompleted,
		&task.CompletedAt,
		&task.ProofImageURL,
		&task.CompletionNote,
		&task.ParentComment,
		&task.Recurrence,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return task, nil
}
