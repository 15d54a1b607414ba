package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/examprep/internal/course"
)

// ErrCourseNotFound is returned when a course id has no stored course.
var ErrCourseNotFound = errors.New("course not found")

// CourseRepo provides the question banks of imported courses.
type CourseRepo interface {
	// Create assigns an id and creation time to bank and stores it.
	Create(ctx context.Context, bank course.Bank) (*course.Course, error)

	// Get returns the course, or ErrCourseNotFound.
	Get(ctx context.Context, id string) (*course.Course, error)

	// List returns all courses, oldest first.
	List(ctx context.Context) ([]*course.Course, error)

	// Delete removes the course together with its progress and exam history.
	Delete(ctx context.Context, id string) error

	// Questions returns the course's bank, or an empty bank when the course
	// does not exist.
	Questions(ctx context.Context, id string) ([]course.Question, error)
}

// ChatMessage is one entry of a course's chat history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Progress is the per-course practice record.
type Progress struct {
	LearnedQuestions   course.IDSet  `json:"learnedQuestions"`
	IncorrectQuestions course.IDSet  `json:"incorrectQuestions"`
	ChatHistory        []ChatMessage `json:"chatHistory,omitempty"`
}

// ProgressRepo persists practice progress. A missing or unreadable record
// loads as the zero Progress.
type ProgressRepo interface {
	Load(ctx context.Context, courseID string) (Progress, error)
	Save(ctx context.Context, courseID string, p Progress) error
	Delete(ctx context.Context, courseID string) error
}

// ExamHistory records which questions a course's mock exams have shown and
// which were last answered wrong.
type ExamHistory struct {
	SeenIDs  course.IDSet
	WrongIDs course.IDSet
}

// ExamHistoryRepo persists exam history. Seen and wrong ids live under
// separate keys.
type ExamHistoryRepo interface {
	Load(ctx context.Context, courseID string) (ExamHistory, error)
	Save(ctx context.Context, courseID string, h ExamHistory) error

	// Reset clears both seen and wrong ids.
	Reset(ctx context.Context, courseID string) error

	// ResetWrong clears only the wrong ids.
	ResetWrong(ctx context.Context, courseID string) error
}

// Exam defaults.
const (
	DefaultExamDuration  = 120 * time.Minute
	DefaultExamQuestions = 65
)

// ExamSettings are the global mock-exam options.
type ExamSettings struct {
	DurationSeconds int `json:"testDuration"`
	TotalQuestions  int `json:"totalQuestions"`
}

// Duration returns the exam length as a time.Duration.
func (s ExamSettings) Duration() time.Duration {
	return time.Duration(s.DurationSeconds) * time.Second
}

// ChatConfig holds the chat collaborator's settings. API keys are read from
// the environment and never stored.
type ChatConfig struct {
	Model        string `json:"model,omitempty"` // empty: provider default
	MaxTokens    int    `json:"maxTokens,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	SystemRole   string `json:"systemRole,omitempty"`
}

// SettingsRepo persists global settings. Missing fields fall back to
// defaults on load.
type SettingsRepo interface {
	ExamSettings(ctx context.Context) (ExamSettings, error)
	SaveExamSettings(ctx context.Context, s ExamSettings) error
	ChatConfig(ctx context.Context) (ChatConfig, error)
	SaveChatConfig(ctx context.Context, c ChatConfig) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Purpose  string    // exact purpose, e.g. "chat" or "explain"
	CourseID string    // requests made about this course
	Limit    int       // max results (0 = unlimited)
	After    int64     // sequence > After
	Before   int64     // sequence < Before
	From     time.Time // timestamp >= From
	To       time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
// CourseID and QuestionID name what the tutor was asked about; either may
// be empty.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	CourseID     string
	QuestionID   string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one request purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to the LLM request log.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event by id, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose sums calls and tokens per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel sums calls and tokens per model, for cost estimates.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
