package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/belovebe/taskmatch/internal/db"
)

// MessageStats summarizes one conversation for badge rendering.
type MessageStats struct {
	Unread   int64
	Messages int64
}

// TaskUnread is the per-task unread count for a task author.
type TaskUnread struct {
	TaskID uint64 `json:"taskId"`
	Count  int64  `json:"count"`
}

// ChatRepository provides data access for conversations and messages.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(database *gorm.DB) *ChatRepository {
	return &ChatRepository{db: database}
}

// UpsertConversation finds or creates the thread for a (task, executor)
// pair and returns it with the full ordered message history.
//
// The unique index on (task_id, executor_id) plus ON CONFLICT DO
// NOTHING makes concurrent first opens collapse onto a single row.
func (r *ChatRepository) UpsertConversation(ctx context.Context, taskID, authorID, executorID uint64) (*db.Conversation, error) {
	conv := db.Conversation{
		TaskID:     taskID,
		AuthorID:   authorID,
		ExecutorID: executorID,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}, {Name: "executor_id"}},
		DoNothing: true,
	}).Create(&conv).Error; err != nil {
		return nil, err
	}

	var full db.Conversation
	err := r.db.WithContext(ctx).
		Preload("Task").
		Preload("Author").
		Preload("Executor").
		Preload("Messages", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("messages.created_at ASC")
		}).
		Preload("Messages.Sender").
		Where("task_id = ? AND executor_id = ?", taskID, executorID).
		First(&full).Error
	if err != nil {
		return nil, err
	}
	return &full, nil
}

// GetByID loads a conversation without its message log.
func (r *ChatRepository) GetByID(ctx context.Context, conversationID uint64) (*db.Conversation, error) {
	var conv db.Conversation
	if err := r.db.WithContext(ctx).First(&conv, conversationID).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListMessages returns the ordered log, oldest first.
func (r *ChatRepository) ListMessages(ctx context.Context, conversationID uint64) ([]db.Message, error) {
	var messages []db.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// CreateMessage appends a message and reloads it with the sender.
func (r *ChatRepository) CreateMessage(ctx context.Context, message *db.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("Sender").First(message, message.ID).Error
}

// MarkRead stamps every unread message from the other participant.
// Idempotent: a second call matches zero rows.
func (r *ChatRepository) MarkRead(ctx context.Context, conversationID, readerID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&db.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", time.Now().UTC())
	return res.RowsAffected, res.Error
}

// StatsForTaskConversations returns, per executor, the reader's unread
// count and total message count across a task's conversations. Used by
// the author's response list.
func (r *ChatRepository) StatsForTaskConversations(ctx context.Context, taskID, readerID uint64) (map[uint64]MessageStats, error) {
	var rows []struct {
		ExecutorID uint64
		Unread     int64
		Messages   int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.executor_id,
		       SUM(CASE WHEN m.sender_id <> ? AND m.read_at IS NULL THEN 1 ELSE 0 END) AS unread,
		       COUNT(m.id) AS messages
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.task_id = ?
		GROUP BY c.executor_id`,
		readerID, taskID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[uint64]MessageStats, len(rows))
	for _, row := range rows {
		stats[row.ExecutorID] = MessageStats{Unread: row.Unread, Messages: row.Messages}
	}
	return stats, nil
}

// StatsForExecutorConversations returns, per task, the executor's
// unread count and total message count. Used by the "my responses"
// list.
func (r *ChatRepository) StatsForExecutorConversations(ctx context.Context, executorID uint64, taskIDs []uint64) (map[uint64]MessageStats, error) {
	stats := make(map[uint64]MessageStats, len(taskIDs))
	if len(taskIDs) == 0 {
		return stats, nil
	}

	var rows []struct {
		TaskID   uint64
		Unread   int64
		Messages int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.task_id,
		       SUM(CASE WHEN m.sender_id <> ? AND m.read_at IS NULL THEN 1 ELSE 0 END) AS unread,
		       COUNT(m.id) AS messages
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.executor_id = ? AND c.task_id IN ?
		GROUP BY c.task_id`,
		executorID, executorID, taskIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats[row.TaskID] = MessageStats{Unread: row.Unread, Messages: row.Messages}
	}
	return stats, nil
}

// AuthorUnreadByTask groups the author-side unread counts by task for
// the notification poll.
func (r *ChatRepository) AuthorUnreadByTask(ctx context.Context, authorID uint64) ([]TaskUnread, error) {
	var rows []TaskUnread
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.task_id, COUNT(m.id) AS count
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.author_id = ? AND m.sender_id <> ? AND m.read_at IS NULL
		GROUP BY c.task_id`,
		authorID, authorID,
	).Scan(&rows).Error
	return rows, err
}

// ExecutorUnreadTotal counts unread messages across all conversations
// where the user is the executor.
func (r *ChatRepository) ExecutorUnreadTotal(ctx context.Context, executorID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.Message{}).
		Joins("JOIN conversations c ON c.id = messages.conversation_id").
		Where("c.executor_id = ? AND messages.sender_id <> ? AND messages.read_at IS NULL", executorID, executorID).
		Count(&count).Error
	return count, err
}
