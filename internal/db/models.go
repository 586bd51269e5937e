package db

import (
	"time"

	"gorm.io/datatypes"
)

// TaskStatus is the task lifecycle state.
// DRAFT -> PUBLISHED -> IN_PROGRESS -> COMPLETED, with CANCELLED
// reachable from any non-terminal state.
type TaskStatus string

const (
	TaskDraft      TaskStatus = "DRAFT"
	TaskPublished  TaskStatus = "PUBLISHED"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskCancelled  TaskStatus = "CANCELLED"
)

// ValidTaskStatus reports whether s is a known lifecycle state.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskDraft, TaskPublished, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// Terminal reports whether the state admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// ResponseStatus is the proposal state for one (task, executor) pair.
type ResponseStatus string

const (
	ResponsePending  ResponseStatus = "PENDING"
	ResponseAccepted ResponseStatus = "ACCEPTED"
	ResponseRejected ResponseStatus = "REJECTED"
)

// PhotoStatus is the moderation state of a profile photo.
type PhotoStatus string

const (
	PhotoPending  PhotoStatus = "PENDING"
	PhotoApproved PhotoStatus = "APPROVED"
	PhotoRejected PhotoStatus = "REJECTED"
)

// DecisionType records how a user swiped on another in the discover feed.
type DecisionType string

const (
	DecisionLike DecisionType = "LIKE"
	DecisionPass DecisionType = "PASS"
)

// User is a Telegram identity. Created on first successful
// authentication; display fields refresh on later logins.
type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TgID      int64     `gorm:"uniqueIndex;not null" json:"tgId"`
	FirstName *string   `gorm:"size:128" json:"firstName"`
	LastName  *string   `gorm:"size:128" json:"lastName"`
	Username  *string   `gorm:"size:64" json:"username"`
	IsBot     bool      `gorm:"default:false" json:"isBot"`
	Language  *string   `gorm:"size:8" json:"language"`
	Email     *string   `gorm:"size:128" json:"email,omitempty"`
	Phone     *string   `gorm:"size:32" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// Profile is the discovery-facing extension of a User. Exactly one per
// user, keyed by the user id, created empty alongside the user.
type Profile struct {
	UserID            uint64                      `gorm:"primaryKey" json:"id"`
	DisplayName       *string                     `gorm:"size:128" json:"displayName"`
	Birthdate         *time.Time                  `json:"birthdate"`
	Gender            *string                     `gorm:"size:16" json:"gender"`
	GenderPreferences datatypes.JSONSlice[string] `json:"genderPreferences"`
	Bio               *string                     `gorm:"size:2048" json:"bio"`
	Country           *string                     `gorm:"size:64;index" json:"country"`
	City              *string                     `gorm:"size:128" json:"city"`
	Lat               *float64                    `json:"lat"`
	Lng               *float64                    `json:"lng"`
	PreferredCountry  *string                     `gorm:"size:64" json:"preferredCountry"`
	PreferredCity     *string                     `gorm:"size:128" json:"preferredCity"`
	Rating            float64                     `gorm:"default:0" json:"rating"`
	CompletedTasks    int                         `gorm:"default:0" json:"completedTasks"`
	CurrentTasks      int                         `gorm:"default:0" json:"currentTasks"`
	CreatedAt         time.Time                   `gorm:"autoCreateTime" json:"-"`
	UpdatedAt         time.Time                   `gorm:"autoUpdateTime" json:"-"`

	Photos []Photo `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
}

// Photo is a moderated profile picture. Only APPROVED photos surface in
// the discover feed.
type Photo struct {
	ID              uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProfileID       uint64      `gorm:"index;not null" json:"-"`
	URL             string      `gorm:"size:512;not null" json:"url"`
	ModeratedStatus PhotoStatus `gorm:"size:16;default:'PENDING';index" json:"moderatedStatus"`
	Position        int         `gorm:"default:0" json:"position"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"-"`
}

// Category is immutable reference data seeded once.
type Category struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"uniqueIndex;size:64;not null" json:"name"`
}

// Task is a posted service request.
type Task struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID    uint64     `gorm:"index;not null" json:"authorId"`
	CategoryID  uint64     `gorm:"index;not null" json:"categoryId"`
	Title       string     `gorm:"size:256;not null" json:"title"`
	Description string     `gorm:"size:4096;not null" json:"description"`
	Budget      *float64   `json:"budget"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Country     *string    `gorm:"size:64;index" json:"country"`
	City        *string    `gorm:"size:128;index" json:"city"`
	Street      *string    `gorm:"size:256" json:"street"`
	House       *string    `gorm:"size:32" json:"house"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	Status      TaskStatus `gorm:"size:16;not null;index" json:"status"`
	ViewsCount  int        `gorm:"default:0" json:"viewsCount"`
	// ViewedResponsesCount is a high-water mark: the response total the
	// author last saw on the full response list. "Has new responses"
	// means the live count exceeds it.
	ViewedResponsesCount int       `gorm:"default:0" json:"viewedResponsesCount"`
	CreatedAt            time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"-"`

	Author    User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Category  Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Responses []Response `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

// Response is an executor's proposal against a Task.
//
// Unique index (task_id, executor_id) makes the at-most-one-response
// invariant hold under concurrent duplicate submissions: the second
// insert fails on the constraint instead of creating a sibling row.
type Response struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID      uint64         `gorm:"not null;uniqueIndex:idx_response_task_executor,priority:1" json:"taskId"`
	ExecutorID  uint64         `gorm:"not null;uniqueIndex:idx_response_task_executor,priority:2;index" json:"executorId"`
	ProposedSum *float64       `json:"proposedSum"`
	CoverLetter string         `gorm:"size:4096;not null" json:"coverLetter"`
	Status      ResponseStatus `gorm:"size:16;not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"-"`

	Task     Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Executor User `gorm:"foreignKey:ExecutorID" json:"executor,omitempty"`
}

// Conversation is the single message thread for one (task, executor)
// pairing. Re-responding reuses the same thread; the unique index makes
// concurrent open-conversation calls collapse onto one row.
type Conversation struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID     uint64    `gorm:"not null;uniqueIndex:idx_conversation_task_executor,priority:1" json:"taskId"`
	ExecutorID uint64    `gorm:"not null;uniqueIndex:idx_conversation_task_executor,priority:2;index" json:"executorId"`
	AuthorID   uint64    `gorm:"not null;index" json:"authorId"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Task     Task      `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	Author   User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Executor User      `gorm:"foreignKey:ExecutorID" json:"executor,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// Message belongs to a conversation. ReadAt stays null until the other
// participant marks the thread read.
type Message struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64     `gorm:"index;not null" json:"conversationId"`
	SenderID       uint64     `gorm:"not null" json:"senderId"`
	Content        string     `gorm:"size:4096;not null" json:"content"`
	ReadAt         *time.Time `gorm:"index" json:"readAt"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

// Block is a directed edge used only for discover exclusion.
type Block struct {
	BlockerID uint64    `gorm:"primaryKey" json:"blockerId"`
	BlockedID uint64    `gorm:"primaryKey" json:"blockedId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// Like is a directed swipe edge (like or pass) from one user to
// another. Composite PK gives the overwrite guarantee: one row per
// pair, a repeat swipe updates in place.
type Like struct {
	FromUserID uint64       `gorm:"primaryKey" json:"fromUserId"`
	ToUserID   uint64       `gorm:"primaryKey;index" json:"toUserId"`
	Type       DecisionType `gorm:"size:8;not null" json:"type"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

// UserFilters holds a user's saved feed preferences, one row per user.
type UserFilters struct {
	UserID             uint64                      `gorm:"primaryKey" json:"-"`
	SelectedCategories datatypes.JSONSlice[uint64] `json:"selectedCategories"`
	SelectedCountries  datatypes.JSONSlice[string] `json:"selectedCountries"`
	SelectedCities     datatypes.JSONSlice[string] `json:"selectedCities"`
	WorldwideMode      bool                        `gorm:"default:false" json:"worldwideMode"`
	UpdatedAt          time.Time                   `gorm:"autoUpdateTime" json:"-"`
}
