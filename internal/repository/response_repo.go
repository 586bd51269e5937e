package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/belovebe/taskmatch/internal/db"
)

// ResponseRepository provides data access for task responses.
type ResponseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(database *gorm.DB) *ResponseRepository {
	return &ResponseRepository{db: database}
}

// Create inserts a response. A concurrent duplicate for the same
// (task, executor) pair fails on the unique index and surfaces as
// gorm.ErrDuplicatedKey; callers map that to a duplicate-response error.
func (r *ResponseRepository) Create(ctx context.Context, response *db.Response) error {
	if err := r.db.WithContext(ctx).Create(response).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Preload("Task").
		Preload("Executor").
		First(response, response.ID).Error
}

// GetByID loads one response with its task.
func (r *ResponseRepository) GetByID(ctx context.Context, responseID uint64) (*db.Response, error) {
	var response db.Response
	err := r.db.WithContext(ctx).Preload("Task").First(&response, responseID).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByTask returns all responses to a task, newest first, with
// executor profiles for the author's review screen.
func (r *ResponseRepository) ListByTask(ctx context.Context, taskID uint64) ([]db.Response, error) {
	var responses []db.Response
	err := r.db.WithContext(ctx).
		Preload("Executor").
		Preload("Executor.Profile").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&responses).Error
	return responses, err
}

// ListByExecutor returns the user's own responses with the tasks they
// target.
func (r *ResponseRepository) ListByExecutor(ctx context.Context, executorID uint64) ([]db.Response, error) {
	var responses []db.Response
	err := r.db.WithContext(ctx).
		Preload("Task").
		Preload("Task.Category").
		Preload("Task.Author").
		Where("executor_id = ?", executorID).
		Order("created_at DESC").
		Find(&responses).Error
	return responses, err
}

// AcceptCascade performs the accept transition as one transaction:
// the target response becomes ACCEPTED, its task moves to IN_PROGRESS,
// and every sibling still PENDING is force-rejected. Returns the number
// of rows touched by the first update; zero means the response was no
// longer PENDING and nothing was applied.
func (r *ResponseRepository) AcceptCascade(ctx context.Context, responseID, taskID uint64) (int64, error) {
	var accepted int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.Response{}).
			Where("id = ? AND status = ?", responseID, db.ResponsePending).
			Update("status", db.ResponseAccepted)
		if res.Error != nil {
			return res.Error
		}
		accepted = res.RowsAffected
		if accepted == 0 {
			// Already decided; leave task and siblings alone.
			return nil
		}

		if err := tx.Model(&db.Task{}).
			Where("id = ?", taskID).
			Update("status", db.TaskInProgress).Error; err != nil {
			return err
		}

		return tx.Model(&db.Response{}).
			Where("task_id = ? AND id <> ? AND status = ?", taskID, responseID, db.ResponsePending).
			Update("status", db.ResponseRejected).Error
	})

	return accepted, err
}

// Reject moves a still-PENDING response to REJECTED. Returns rows
// affected; zero means the response had already been decided.
func (r *ResponseRepository) Reject(ctx context.Context, responseID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&db.Response{}).
		Where("id = ? AND status = ?", responseID, db.ResponsePending).
		Update("status", db.ResponseRejected)
	return res.RowsAffected, res.Error
}
