// Package tasks implements the task lifecycle: the public feed, author
// CRUD, status transitions, and the author's response review screen.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/geo"
	"github.com/belovebe/taskmatch/internal/repository"
)

type Service struct {
	appCtx     *app.AppContext
	tasks      *repository.TaskRepository
	responses  *repository.ResponseRepository
	chats      *repository.ChatRepository
	categories *repository.CategoryRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		tasks:      repository.NewTaskRepository(appCtx.DB),
		responses:  repository.NewResponseRepository(appCtx.DB),
		chats:      repository.NewChatRepository(appCtx.DB),
		categories: repository.NewCategoryRepository(appCtx.DB),
	}
}

// TaskWithMeta is a task enriched with per-viewer feed metadata.
type TaskWithMeta struct {
	db.Task
	ResponsesCount  int64 `json:"responsesCount"`
	HasUserResponse bool  `json:"hasUserResponse"`
}

// Pagination echoes the page window plus the unpaginated total.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// FeedPage is one page of the public task feed.
type FeedPage struct {
	Tasks      []TaskWithMeta `json:"tasks"`
	Pagination Pagination     `json:"pagination"`
}

// ResponseWithMeta is a response enriched with chat badge info for the
// author's review screen.
type ResponseWithMeta struct {
	db.Response
	UnreadMessagesCount int64 `json:"unreadMessagesCount"`
	HasMessages         bool  `json:"hasMessages"`
}

// CreateInput is the validated body of a task create. Address fields
// without explicit coordinates trigger forward geocoding.
type CreateInput struct {
	Title       string
	Description string
	CategoryID  uint64
	Budget      *float64
	StartDate   *time.Time
	EndDate     *time.Time
	Country     *string
	City        *string
	Street      *string
	House       *string
	Latitude    *float64
	Longitude   *float64
}

// UpdateInput is a partial task patch; nil means "leave unchanged".
// Title, description and category are always required on update.
type UpdateInput struct {
	Title       string
	Description string
	CategoryID  uint64
	Budget      *float64
	StartDate   *time.Time
	EndDate     *time.Time
	Country     *string
	City        *string
	Street      *string
	House       *string
	Latitude    *float64
	Longitude   *float64
}

// Feed returns one page of PUBLISHED tasks matching the caller's
// filters, flagging the ones the caller already responded to.
func (s *Service) Feed(ctx context.Context, viewerID uint64, filter repository.FeedFilter) (*FeedPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	tasks, total, err := s.tasks.ListPublished(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list published tasks: %w", err)
	}

	taskIDs := make([]uint64, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID
	}

	responded, err := s.tasks.TaskIDsWithResponseFrom(ctx, viewerID, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve viewer responses: %w", err)
	}
	counts, err := s.tasks.CountResponsesByTask(ctx, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}

	page := &FeedPage{
		Tasks: make([]TaskWithMeta, len(tasks)),
		Pagination: Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: (total + int64(filter.Limit) - 1) / int64(filter.Limit),
		},
	}
	for i, t := range tasks {
		page.Tasks[i] = TaskWithMeta{
			Task:            t,
			ResponsesCount:  counts[t.ID],
			HasUserResponse: responded[t.ID],
		}
	}
	return page, nil
}

// MyTasks returns the caller's own tasks with response counts.
func (s *Service) MyTasks(ctx context.Context, authorID uint64) ([]TaskWithMeta, error) {
	tasks, err := s.tasks.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list author tasks: %w", err)
	}

	taskIDs := make([]uint64, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID
	}
	counts, err := s.tasks.CountResponsesByTask(ctx, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}

	out := make([]TaskWithMeta, len(tasks))
	for i, t := range tasks {
		out[i] = TaskWithMeta{Task: t, ResponsesCount: counts[t.ID]}
	}
	return out, nil
}

// Get returns one task and, as a side effect of the read, increments
// its view counter. Not idempotent by design: every detail fetch
// counts.
func (s *Service) Get(ctx context.Context, taskID, viewerID uint64) (*TaskWithMeta, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	if err := s.tasks.IncrementViews(ctx, taskID); err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}
	task.ViewsCount++

	responded, err := s.tasks.TaskIDsWithResponseFrom(ctx, viewerID, []uint64{taskID})
	if err != nil {
		return nil, fmt.Errorf("resolve viewer response: %w", err)
	}
	counts, err := s.tasks.CountResponsesByTask(ctx, []uint64{taskID})
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}

	return &TaskWithMeta{
		Task:            *task,
		ResponsesCount:  counts[taskID],
		HasUserResponse: responded[taskID],
	}, nil
}

// Create publishes a new task for the author. When address fields are
// present without coordinates the address is geocoded; geocoding
// failures degrade to "no coordinates" and never block creation.
func (s *Service) Create(ctx context.Context, authorID uint64, in CreateInput) (*db.Task, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || in.CategoryID == 0 {
		return nil, fmt.Errorf("%w: title, description and categoryId are required", domain.ErrInvalidInput)
	}

	ok, err := s.categories.Exists(ctx, in.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}

	lat, lng := in.Latitude, in.Longitude
	if p := s.maybeGeocode(ctx, in.Country, in.City, in.Street, in.House); p != nil {
		lat, lng = &p.Latitude, &p.Longitude
	}

	task := &db.Task{
		AuthorID:    authorID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Country:     in.Country,
		City:        in.City,
		Street:      in.Street,
		House:       in.House,
		Latitude:    lat,
		Longitude:   lng,
		Status:      db.TaskPublished,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.appCtx.Logger.Info("task created", "task_id", task.ID, "author_id", authorID)
	return task, nil
}

// Update patches a task. Author-only.
func (s *Service) Update(ctx context.Context, taskID, callerID uint64, in UpdateInput) (*db.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	if task.AuthorID != callerID {
		return nil, domain.ErrAccessDenied
	}

	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || in.CategoryID == 0 {
		return nil, fmt.Errorf("%w: title, description and categoryId are required", domain.ErrInvalidInput)
	}

	updates := map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"category_id": in.CategoryID,
	}
	if in.Budget != nil {
		updates["budget"] = *in.Budget
	}
	if in.StartDate != nil {
		updates["start_date"] = *in.StartDate
	}
	if in.EndDate != nil {
		updates["end_date"] = *in.EndDate
	}
	if in.Country != nil {
		updates["country"] = *in.Country
	}
	if in.City != nil {
		updates["city"] = *in.City
	}
	if in.Street != nil {
		updates["street"] = *in.Street
	}
	if in.House != nil {
		updates["house"] = *in.House
	}

	lat, lng := in.Latitude, in.Longitude
	if lat == nil && lng == nil {
		country := pick(in.Country, task.Country)
		city := pick(in.City, task.City)
		street := pick(in.Street, task.Street)
		house := pick(in.House, task.House)
		if p := s.maybeGeocode(ctx, country, city, street, house); p != nil {
			lat, lng = &p.Latitude, &p.Longitude
		}
	}
	if lat != nil {
		updates["latitude"] = *lat
	}
	if lng != nil {
		updates["longitude"] = *lng
	}

	updated, err := s.tasks.Update(ctx, taskID, updates)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

// SetStatus applies a lifecycle transition. Author-only. Valid moves:
// forward along DRAFT -> PUBLISHED -> IN_PROGRESS -> COMPLETED, or to
// CANCELLED from any non-terminal state. Anything else conflicts.
func (s *Service) SetStatus(ctx context.Context, taskID, callerID uint64, next db.TaskStatus) (*db.Task, error) {
	if !db.ValidTaskStatus(next) {
		return nil, fmt.Errorf("%w: invalid status value", domain.ErrInvalidInput)
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	if task.AuthorID != callerID {
		return nil, domain.ErrAccessDenied
	}
	if !transitionAllowed(task.Status, next) {
		return nil, fmt.Errorf("%w: cannot move task from %s to %s", domain.ErrConflict, task.Status, next)
	}

	updated, err := s.tasks.Update(ctx, taskID, map[string]any{"status": next})
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return updated, nil
}

// Delete removes a task. Author-only. When the deletion policy is
// restricted, tasks that entered work or finished refuse deletion.
func (s *Service) Delete(ctx context.Context, taskID, callerID uint64) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return domain.ErrTaskNotFound
	}
	if task.AuthorID != callerID {
		return domain.ErrAccessDenied
	}

	if !s.appCtx.Config.Tasks.DeleteAnyStatus {
		if task.Status == db.TaskInProgress || task.Status == db.TaskCompleted {
			return fmt.Errorf("%w: task in status %s cannot be deleted", domain.ErrConflict, task.Status)
		}
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.appCtx.Logger.Info("task deleted", "task_id", taskID, "author_id", callerID)
	return nil
}

// ListResponses returns all responses to the author's task with chat
// badge info, and advances the viewed-responses high-water mark so the
// "has new responses" badge clears.
func (s *Service) ListResponses(ctx context.Context, taskID, callerID uint64) ([]ResponseWithMeta, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	if task.AuthorID != callerID {
		return nil, domain.ErrAccessDenied
	}

	responses, err := s.responses.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list task responses: %w", err)
	}

	stats, err := s.chats.StatsForTaskConversations(ctx, taskID, callerID)
	if err != nil {
		return nil, fmt.Errorf("load conversation stats: %w", err)
	}

	if err := s.tasks.AdvanceViewedResponses(ctx, taskID, len(responses)); err != nil {
		return nil, fmt.Errorf("advance viewed responses: %w", err)
	}

	out := make([]ResponseWithMeta, len(responses))
	for i, r := range responses {
		st := stats[r.ExecutorID]
		out[i] = ResponseWithMeta{
			Response:            r,
			UnreadMessagesCount: st.Unread,
			HasMessages:         st.Messages > 0,
		}
	}
	return out, nil
}

// maybeGeocode resolves an address to coordinates when enough address
// fields are present. Failures are logged and treated as "no match".
func (s *Service) maybeGeocode(ctx context.Context, country, city, street, house *string) *geo.Point {
	hasStreetPart := deref(street) != "" || deref(house) != ""
	hasAreaPart := deref(country) != "" || deref(city) != ""
	if !hasStreetPart || !hasAreaPart {
		return nil
	}

	point, err := s.appCtx.Geocoder.Forward(ctx, geo.Address{
		Country: deref(country),
		City:    deref(city),
		Street:  deref(street),
		House:   deref(house),
	})
	if err != nil {
		s.appCtx.Logger.Warn("geocoding failed", "err", err)
		return nil
	}
	return point
}

func transitionAllowed(from, to db.TaskStatus) bool {
	if from == to {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == db.TaskCancelled {
		return true
	}
	switch from {
	case db.TaskDraft:
		return to == db.TaskPublished
	case db.TaskPublished:
		return to == db.TaskInProgress
	case db.TaskInProgress:
		return to == db.TaskCompleted
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func pick(patch, current *string) *string {
	if patch != nil {
		return patch
	}
	return current
}
