package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/belovebe/taskmatch/internal/db"
)

// FeedFilter narrows the public task feed. Zero values mean
// "no filtering on that dimension"; Worldwide bypasses the location
// dimensions entirely.
type FeedFilter struct {
	CategoryIDs []uint64
	Countries   []string
	Cities      []string
	Worldwide   bool
	Page        int
	Limit       int
}

// TaskRepository provides data access for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(database *gorm.DB) *TaskRepository {
	return &TaskRepository{db: database}
}

// ListPublished returns one feed page of PUBLISHED tasks, newest first,
// plus the unpaginated total for the same filter.
func (r *TaskRepository) ListPublished(ctx context.Context, f FeedFilter) ([]db.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&db.Task{}).Where("status = ?", db.TaskPublished)

	if len(f.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", f.CategoryIDs)
	}
	if !f.Worldwide {
		if len(f.Countries) > 0 {
			query = query.Where("country IN ?", f.Countries)
		}
		if len(f.Cities) > 0 {
			query = query.Where("city IN ?", f.Cities)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []db.Task
	err := query.
		Preload("Category").
		Preload("Author").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListByAuthor returns all tasks authored by a user, newest first.
func (r *TaskRepository) ListByAuthor(ctx context.Context, authorID uint64) ([]db.Task, error) {
	var tasks []db.Task
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// GetByID loads one task with category and author.
func (r *TaskRepository) GetByID(ctx context.Context, taskID uint64) (*db.Task, error) {
	var task db.Task
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		First(&task, taskID).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *db.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Author").
		First(task, task.ID).Error
}

// Update applies a column patch and returns the fresh row.
func (r *TaskRepository) Update(ctx context.Context, taskID uint64, updates map[string]any) (*db.Task, error) {
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&db.Task{}).
			Where("id = ?", taskID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, taskID)
}

func (r *TaskRepository) Delete(ctx context.Context, taskID uint64) error {
	return r.db.WithContext(ctx).Delete(&db.Task{}, taskID).Error
}

// IncrementViews bumps the view counter atomically in the database.
// Every detail read counts, no per-viewer dedup.
func (r *TaskRepository) IncrementViews(ctx context.Context, taskID uint64) error {
	return r.db.WithContext(ctx).Model(&db.Task{}).
		Where("id = ?", taskID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

// AdvanceViewedResponses moves the high-water mark forward, never back.
func (r *TaskRepository) AdvanceViewedResponses(ctx context.Context, taskID uint64, seen int) error {
	return r.db.WithContext(ctx).Model(&db.Task{}).
		Where("id = ? AND viewed_responses_count < ?", taskID, seen).
		UpdateColumn("viewed_responses_count", seen).Error
}

// CountResponsesByTask returns response totals for a batch of tasks in
// one grouped query.
func (r *TaskRepository) CountResponsesByTask(ctx context.Context, taskIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(taskIDs))
	if len(taskIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TaskID uint64
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&db.Response{}).
		Select("task_id, COUNT(*) AS total").
		Where("task_id IN ?", taskIDs).
		Group("task_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.TaskID] = row.Total
	}
	return counts, nil
}

// TaskIDsWithResponseFrom reports which of the given tasks the user has
// already responded to.
func (r *TaskRepository) TaskIDsWithResponseFrom(ctx context.Context, executorID uint64, taskIDs []uint64) (map[uint64]bool, error) {
	result := make(map[uint64]bool, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	var ids []uint64
	err := r.db.WithContext(ctx).Model(&db.Response{}).
		Where("executor_id = ? AND task_id IN ?", executorID, taskIDs).
		Pluck("task_id", &ids).Error
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// TaskIDsWithNewResponses lists the author's tasks whose live response
// count exceeds the viewed high-water mark.
func (r *TaskRepository) TaskIDsWithNewResponses(ctx context.Context, authorID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.id FROM tasks t
		WHERE t.author_id = ?
		  AND (SELECT COUNT(*) FROM responses r WHERE r.task_id = t.id) > t.viewed_responses_count`,
		authorID,
	).Scan(&ids).Error
	return ids, err
}
