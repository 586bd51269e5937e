// Package chat implements per-(task, executor) conversations: thread
// open, message send with Telegram push, read receipts, and the unread
// aggregation the client polls for badges.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/repository"
)

type Service struct {
	appCtx    *app.AppContext
	chats     *repository.ChatRepository
	tasks     *repository.TaskRepository
	responses *repository.ResponseRepository
	users     *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		chats:     repository.NewChatRepository(appCtx.DB),
		tasks:     repository.NewTaskRepository(appCtx.DB),
		responses: repository.NewResponseRepository(appCtx.DB),
		users:     repository.NewUserRepository(appCtx.DB),
	}
}

// UnreadSummary is the notification poll payload: the caller's unread
// counts on both sides of the marketplace plus the tasks with responses
// they have not reviewed yet.
type UnreadSummary struct {
	MyUnreadByTask     []repository.TaskUnread `json:"myUnreadMessageCount"`
	UnreadMessageCount int64                   `json:"unreadMessageCount"`
	UnreadResponses    []uint64                `json:"unreadResponses"`
}

// Open finds or creates the thread behind a response and returns it
// with the full message history. The (task, executor) pair comes from
// the response itself; only the task author and the responding executor
// may open it.
func (s *Service) Open(ctx context.Context, callerID, responseID uint64) (*db.Conversation, error) {
	response, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		return nil, domain.ErrResponseNotFound
	}

	if callerID != response.Task.AuthorID && callerID != response.ExecutorID {
		return nil, domain.ErrAccessDenied
	}

	conv, err := s.chats.UpsertConversation(ctx, response.TaskID, response.Task.AuthorID, response.ExecutorID)
	if err != nil {
		return nil, fmt.Errorf("upsert conversation: %w", err)
	}
	return conv, nil
}

// Get returns a conversation's ordered message log. Participants only.
func (s *Service) Get(ctx context.Context, callerID, conversationID uint64) ([]db.Message, error) {
	conv, err := s.conversationFor(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.chats.ListMessages(ctx, conv.ID)
}

// Send appends a message to the thread and pushes a Telegram
// notification to the other participant. The push is fire-and-forget:
// delivery failure never fails the send.
func (s *Service) Send(ctx context.Context, callerID, conversationID uint64, content string) (*db.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is required", domain.ErrInvalidInput)
	}

	conv, err := s.conversationFor(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}

	message := &db.Message{
		ConversationID: conv.ID,
		SenderID:       callerID,
		Content:        content,
	}
	if err := s.chats.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	recipientID := conv.AuthorID
	if callerID == conv.AuthorID {
		recipientID = conv.ExecutorID
	}
	if err := s.appCtx.RedisCache.InvalidateUnreadTotal(ctx, recipientID); err != nil {
		s.appCtx.Logger.Warn("unread cache invalidation failed", "user_id", recipientID, "err", err)
	}

	go s.notifyRecipient(recipientID, message)

	return message, nil
}

// MarkRead stamps every unread message from the other participant.
// Idempotent.
func (s *Service) MarkRead(ctx context.Context, callerID, conversationID uint64) (int64, error) {
	conv, err := s.conversationFor(ctx, callerID, conversationID)
	if err != nil {
		return 0, err
	}

	marked, err := s.chats.MarkRead(ctx, conv.ID, callerID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	if marked > 0 {
		if err := s.appCtx.RedisCache.InvalidateUnreadTotal(ctx, callerID); err != nil {
			s.appCtx.Logger.Warn("unread cache invalidation failed", "user_id", callerID, "err", err)
		}
	}
	return marked, nil
}

// Unread builds the notification poll payload: per-task unread counts
// where the caller is the author, the cached executor-side total, and
// the ids of the caller's tasks with unreviewed responses.
func (s *Service) Unread(ctx context.Context, callerID uint64) (*UnreadSummary, error) {
	byTask, err := s.chats.AuthorUnreadByTask(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("author unread: %w", err)
	}
	if byTask == nil {
		byTask = []repository.TaskUnread{}
	}

	total, found, err := s.appCtx.RedisCache.GetUnreadTotal(ctx, callerID)
	if err != nil {
		s.appCtx.Logger.Warn("unread cache read failed", "user_id", callerID, "err", err)
		found = false
	}
	if !found {
		total, err = s.chats.ExecutorUnreadTotal(ctx, callerID)
		if err != nil {
			return nil, fmt.Errorf("executor unread: %w", err)
		}
		if err := s.appCtx.RedisCache.UpdateUnreadTotal(ctx, callerID, total); err != nil {
			s.appCtx.Logger.Warn("unread cache write failed", "user_id", callerID, "err", err)
		}
	}

	newResponses, err := s.tasks.TaskIDsWithNewResponses(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("tasks with new responses: %w", err)
	}
	if newResponses == nil {
		newResponses = []uint64{}
	}

	return &UnreadSummary{
		MyUnreadByTask:     byTask,
		UnreadMessageCount: total,
		UnreadResponses:    newResponses,
	}, nil
}

func (s *Service) conversationFor(ctx context.Context, callerID, conversationID uint64) (*db.Conversation, error) {
	conv, err := s.chats.GetByID(ctx, conversationID)
	if err != nil {
		return nil, domain.ErrConversationNotFound
	}
	if callerID != conv.AuthorID && callerID != conv.ExecutorID {
		return nil, domain.ErrAccessDenied
	}
	return conv, nil
}

// notifyRecipient pushes a "new message" bot notification. Runs in its
// own goroutine with a detached context.
func (s *Service) notifyRecipient(recipientID uint64, message *db.Message) {
	ctx := context.Background()

	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		s.appCtx.Logger.Warn("notify: recipient lookup failed", "user_id", recipientID, "err", err)
		return
	}

	sender := "Someone"
	if message.Sender.FirstName != nil && *message.Sender.FirstName != "" {
		sender = *message.Sender.FirstName
	} else if message.Sender.Username != nil && *message.Sender.Username != "" {
		sender = *message.Sender.Username
	}

	text := fmt.Sprintf("New message from %s: %s", sender, message.Content)
	if err := s.appCtx.Notifier.Send(ctx, recipient.TgID, text); err != nil {
		s.appCtx.Logger.Warn("notify: telegram send failed", "tg_id", recipient.TgID, "err", err)
	}
}
