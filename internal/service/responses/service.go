// Package responses implements the proposal flow: executors respond to
// published tasks, authors accept or reject.
package responses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/repository"
)

type Service struct {
	appCtx    *app.AppContext
	responses *repository.ResponseRepository
	tasks     *repository.TaskRepository
	chats     *repository.ChatRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		responses: repository.NewResponseRepository(appCtx.DB),
		tasks:     repository.NewTaskRepository(appCtx.DB),
		chats:     repository.NewChatRepository(appCtx.DB),
	}
}

// CreateInput is the validated body of a response submission.
type CreateInput struct {
	TaskID      uint64
	ProposedSum *float64
	CoverLetter string
}

// MyResponse is one of the caller's responses with chat badge info for
// the executor's list screen.
type MyResponse struct {
	db.Response
	UnreadMessagesCount int64 `json:"unreadMessagesCount"`
	HasMessages         bool  `json:"hasMessages"`
}

// Create submits a response to a task. One response per executor per
// task; authors cannot respond to their own tasks.
func (s *Service) Create(ctx context.Context, executorID uint64, in CreateInput) (*db.Response, error) {
	if in.TaskID == 0 || strings.TrimSpace(in.CoverLetter) == "" {
		return nil, fmt.Errorf("%w: taskId and coverLetter are required", domain.ErrInvalidInput)
	}

	task, err := s.tasks.GetByID(ctx, in.TaskID)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	if task.AuthorID == executorID {
		return nil, domain.ErrSelfResponse
	}

	response := &db.Response{
		TaskID:      in.TaskID,
		ExecutorID:  executorID,
		ProposedSum: in.ProposedSum,
		CoverLetter: in.CoverLetter,
		Status:      db.ResponsePending,
	}
	if err := s.responses.Create(ctx, response); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateResponse
		}
		return nil, fmt.Errorf("create response: %w", err)
	}

	s.appCtx.Logger.Info("response created",
		"response_id", response.ID, "task_id", in.TaskID, "executor_id", executorID)
	return response, nil
}

// My returns the caller's responses with per-task unread chat stats.
func (s *Service) My(ctx context.Context, executorID uint64) ([]MyResponse, error) {
	list, err := s.responses.ListByExecutor(ctx, executorID)
	if err != nil {
		return nil, fmt.Errorf("list executor responses: %w", err)
	}

	taskIDs := make([]uint64, len(list))
	for i, r := range list {
		taskIDs[i] = r.TaskID
	}
	stats, err := s.chats.StatsForExecutorConversations(ctx, executorID, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("load conversation stats: %w", err)
	}

	out := make([]MyResponse, len(list))
	for i, r := range list {
		st := stats[r.TaskID]
		out[i] = MyResponse{
			Response:            r,
			UnreadMessagesCount: st.Unread,
			HasMessages:         st.Messages > 0,
		}
	}
	return out, nil
}

// SetStatus lets the task author decide a pending response. Accepting
// cascades: the task moves to IN_PROGRESS and every other pending
// response on it is force-rejected, all in one transaction. Deciding an
// already-decided response conflicts.
func (s *Service) SetStatus(ctx context.Context, responseID, callerID uint64, status db.ResponseStatus) (*db.Response, error) {
	if status != db.ResponseAccepted && status != db.ResponseRejected {
		return nil, fmt.Errorf("%w: status must be ACCEPTED or REJECTED", domain.ErrInvalidInput)
	}

	response, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		return nil, domain.ErrResponseNotFound
	}
	if response.Task.AuthorID != callerID {
		return nil, domain.ErrAccessDenied
	}

	var affected int64
	if status == db.ResponseAccepted {
		affected, err = s.responses.AcceptCascade(ctx, responseID, response.TaskID)
	} else {
		affected, err = s.responses.Reject(ctx, responseID)
	}
	if err != nil {
		return nil, fmt.Errorf("update response status: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: response already decided", domain.ErrConflict)
	}

	s.appCtx.Logger.Info("response decided",
		"response_id", responseID, "task_id", response.TaskID, "status", status)

	return s.responses.GetByID(ctx, responseID)
}
