package chat_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/cache"
	"github.com/belovebe/taskmatch/internal/config"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/geo"
	"github.com/belovebe/taskmatch/internal/notify"
	"github.com/belovebe/taskmatch/internal/service/chat"
)

type stubGeocoder struct{}

func (stubGeocoder) Forward(context.Context, geo.Address) (*geo.Point, error) { return nil, nil }

// seedChat wipes the DB and inserts:
//
//   - user1 authors task1, user2 holds a PENDING response on it
//   - user3 is an outsider with no relation to the task
func seedChat(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	require.NoError(t, gdb.Exec("DELETE FROM messages").Error)
	require.NoError(t, gdb.Exec("DELETE FROM conversations").Error)
	require.NoError(t, gdb.Exec("DELETE FROM responses").Error)
	require.NoError(t, gdb.Exec("DELETE FROM tasks").Error)
	require.NoError(t, gdb.Exec("DELETE FROM users").Error)

	names := []string{"author", "executor", "outsider"}
	users := make([]db.User, len(names))
	for i, name := range names {
		n := name
		users[i] = db.User{ID: uint64(i + 1), TgID: int64(2000 + i), Username: &n, FirstName: &n}
	}
	require.NoError(t, gdb.Create(&users).Error)

	task := db.Task{
		ID:          1,
		AuthorID:    1,
		CategoryID:  1,
		Title:       "Walk the dog",
		Description: "Daily walks needed",
		Status:      db.TaskPublished,
	}
	require.NoError(t, gdb.Create(&task).Error)

	response := db.Response{ID: 10, TaskID: 1, ExecutorID: 2, CoverLetter: "I love dogs", Status: db.ResponsePending}
	require.NoError(t, gdb.Create(&response).Error)
}

func setupService(t *testing.T) (*chat.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	seedChat(t, gdb)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	appCtx := app.New(cfg, gdb, cache.NewRedisCache(cfg),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		notify.NopNotifier{}, stubGeocoder{})
	return chat.NewService(appCtx), gdb
}

// TestOpenConversation opens the thread by response id and checks the
// (task, executor) pair is derived from the response itself.
func TestOpenConversation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	conv, err := svc.Open(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), conv.TaskID)
	assert.Equal(t, uint64(1), conv.AuthorID)
	assert.Equal(t, uint64(2), conv.ExecutorID)

	// A second open from the other side lands on the same thread.
	again, err := svc.Open(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)
}

func TestOpenConversation_ResponseNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Open(ctx, 1, 999)
	assert.ErrorIs(t, err, domain.ErrResponseNotFound)
}

func TestOpenConversation_AccessDenied(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// user3 is neither the task author nor the responding executor.
	_, err := svc.Open(ctx, 3, 10)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	conv, err := svc.Open(ctx, 2, 10)
	require.NoError(t, err)

	msg, err := svc.Send(ctx, 2, conv.ID, "  hello there  ")
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Content)
	assert.Equal(t, uint64(2), msg.SenderID)
	assert.Nil(t, msg.ReadAt)

	log, err := svc.Get(ctx, 1, conv.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
}

func TestSendMessage_EmptyContent(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	conv, err := svc.Open(ctx, 2, 10)
	require.NoError(t, err)

	_, err = svc.Send(ctx, 2, conv.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMarkRead_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	conv, err := svc.Open(ctx, 2, 10)
	require.NoError(t, err)

	_, err = svc.Send(ctx, 2, conv.ID, "first")
	require.NoError(t, err)
	_, err = svc.Send(ctx, 2, conv.ID, "second")
	require.NoError(t, err)

	marked, err := svc.MarkRead(ctx, 1, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	// Second pass matches nothing.
	marked, err = svc.MarkRead(ctx, 1, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)

	// Own messages never count as unread for the sender.
	marked, err = svc.MarkRead(ctx, 2, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)
}

// TestUnreadSummary walks the full badge flow: the author sees per-task
// unread counts, the executor sees a total, and the unread-responses
// list clears once the author reviews the response list.
func TestUnreadSummary(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	conv, err := svc.Open(ctx, 2, 10)
	require.NoError(t, err)

	_, err = svc.Send(ctx, 2, conv.ID, "from executor")
	require.NoError(t, err)
	_, err = svc.Send(ctx, 1, conv.ID, "from author")
	require.NoError(t, err)

	authorView, err := svc.Unread(ctx, 1)
	require.NoError(t, err)
	require.Len(t, authorView.MyUnreadByTask, 1)
	assert.Equal(t, uint64(1), authorView.MyUnreadByTask[0].TaskID)
	assert.Equal(t, int64(1), authorView.MyUnreadByTask[0].Count)
	// task1 has one response the author never reviewed
	assert.Equal(t, []uint64{1}, authorView.UnreadResponses)

	executorView, err := svc.Unread(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, executorView.MyUnreadByTask)
	assert.Equal(t, int64(1), executorView.UnreadMessageCount)

	// Reading the thread clears the executor total on the next poll.
	_, err = svc.MarkRead(ctx, 2, conv.ID)
	require.NoError(t, err)

	executorView, err = svc.Unread(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), executorView.UnreadMessageCount)
}

// TestUnreadTotal_Cached verifies the executor total comes from the
// cache on the second poll and is invalidated by a new message.
func TestUnreadTotal_Cached(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	conv, err := svc.Open(ctx, 2, 10)
	require.NoError(t, err)

	_, err = svc.Send(ctx, 1, conv.ID, "one")
	require.NoError(t, err)

	view, err := svc.Unread(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.UnreadMessageCount)

	// Bypass the service so the cache goes stale on purpose.
	require.NoError(t, gdb.Create(&db.Message{ConversationID: conv.ID, SenderID: 1, Content: "two"}).Error)

	view, err = svc.Unread(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.UnreadMessageCount, "stale cached total expected")

	// A send through the service invalidates and the next poll recomputes.
	_, err = svc.Send(ctx, 1, conv.ID, "three")
	require.NoError(t, err)

	view, err = svc.Unread(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), view.UnreadMessageCount)
}
