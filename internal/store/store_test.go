package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/course"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestKVRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "a", "2"))
	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v, "Set must overwrite")

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"), "deleting a missing key is not an error")
	_, ok, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVKeysByPrefix(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"quiz_state_b", "quiz_state_a", "quizXstate_c", "testing_options"} {
		require.NoError(t, s.Set(ctx, k, "{}"))
	}

	keys, err := s.Keys(ctx, "quiz_state_")
	require.NoError(t, err)
	assert.Equal(t, []string{"quiz_state_a", "quiz_state_b"}, keys, "underscore must match literally")

	all, err := s.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDefaultDBPathEnvOverride(t *testing.T) {
	dir := t.TempDir()
	want := dir + "/nested/custom.db"
	t.Setenv("EXAMPREP_DB", want)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.DirExists(t, dir+"/nested")
}

func TestDefaultDBPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EXAMPREP_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, dir+"/examprep/examprep.db", got)
}

func TestEventRepoAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	purposes := []string{"chat", "explain", "chat"}
	courses := []string{"aws", "aws", "gcp"}
	for i, p := range purposes {
		errMsg := ""
		if i == 1 {
			errMsg = "boom"
		}
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "openai",
			Model:        "gpt-4o",
			Purpose:      p,
			CourseID:     courses[i],
			QuestionID:   fmt.Sprintf("q%d", i),
			InputTokens:  10 * (i + 1),
			OutputTokens: 5,
			LatencyMs:    120,
			Success:      i != 1,
			ErrorMessage: errMsg,
			RequestBody:  fmt.Sprintf(`{"n":%d}`, i),
		})
		require.NoError(t, err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Greater(t, events[0].Sequence, events[1].Sequence, "newest first")
	assert.Equal(t, "chat", events[0].Purpose)
	assert.False(t, events[1].Success)
	assert.Equal(t, "boom", events[1].ErrorMessage)
	assert.Equal(t, "aws", events[1].CourseID)
	assert.Equal(t, "q1", events[1].QuestionID)

	chats, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "chat", Limit: 1})
	require.NoError(t, err)
	require.Len(t, chats, 1, "the limit applies after filtering")
	assert.Equal(t, "gcp", chats[0].CourseID)

	aws, err := repo.QueryLLMEvents(ctx, QueryOpts{CourseID: "aws", Purpose: "chat"})
	require.NoError(t, err)
	require.Len(t, aws, 1)
	assert.Equal(t, "q0", aws[0].QuestionID)

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: events[1].Sequence})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, events[0].ID, after[0].ID)

	future, err := repo.QueryLLMEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)

	got, err := repo.GetLLMEvent(ctx, events[2].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `{"n":0}`, got.RequestBody)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	usage, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	assert.Equal(t, []PurposeUsage{
		{Purpose: "chat", Calls: 2, InputTokens: 40, OutputTokens: 10, AvgLatencyMs: 120},
		{Purpose: "explain", Calls: 1, InputTokens: 20, OutputTokens: 5, AvgLatencyMs: 120},
	}, usage)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ModelUsage{
		{Model: "gpt-4o", Calls: 2, InputTokens: 40, OutputTokens: 10},
	}, byModel, "failed calls are not billed")
}

func TestOpenAddsEventColumnsToOlderLogs(t *testing.T) {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	old, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { old.Close() })

	// Rebuild the table the way databases from before course tagging have it.
	for _, stmt := range []string{
		`DROP TABLE llm_request_events`,
		`CREATE TABLE llm_request_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sequence INTEGER NOT NULL UNIQUE,
			timestamp INTEGER NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			success INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
		`INSERT INTO llm_request_events (sequence, timestamp, provider, model, purpose)
			VALUES (1000, 0, 'openai', 'gpt-4o', 'chat')`,
	} {
		_, err := old.DB().Exec(stmt)
		require.NoError(t, err)
	}

	s, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	require.NoError(t, s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o", Purpose: "explain", CourseID: "aws", QuestionID: "q7",
	}))
	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "", events[0].CourseID, "older rows read back untagged")
	assert.Equal(t, "q7", events[1].QuestionID)
}

func TestSequenceCounterMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		n, err := s.seq.Next(ctx)
		require.NoError(t, err)
		if i > 0 {
			assert.Equal(t, prev+1, n)
		}
		prev = n
	}
}

func sampleBank() course.Bank {
	return course.Bank{
		Name: "AWS basics",
		Questions: []course.Question{
			{ID: "q1", Text: "Pick A", Options: map[string]string{"A": "a", "B": "b"}, Answer: "A"},
			{Text: "Pick B and C", Options: map[string]string{"A": "a", "B": "b", "C": "c"}, Answer: "B, C"},
		},
	}
}
