package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/chat"
	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/screens/screentest"
)

func reply(text string) llm.MockResponse {
	return llm.MockResponse{Content: json.RawMessage(text)}
}

// loadHistory runs the history loader from Init and feeds its result back.
func loadHistory(t *testing.T, s *TutorScreen) tea.Cmd {
	t.Helper()
	msg := screentest.Run(s.Init())
	if batch, ok := msg.(tea.BatchMsg); ok {
		require.NotEmpty(t, batch)
		msg = batch[0]()
	}
	_, ok := msg.(historyLoadedMsg)
	require.True(t, ok, "expected historyLoadedMsg, got %T", msg)
	_, cmd := s.Update(msg)
	return cmd
}

func TestTutorAsksAboutQuestion(t *testing.T) {
	env := screentest.New(t, llm.NewMockProvider(reply("Port 443.")))
	q := screentest.Question("q1", "Which port is <i>HTTPS</i>?", "B")
	c := env.CreateCourse(t, "Networking", q)

	s := New(env.Deps, c, &q)
	cmd := loadHistory(t, s)
	require.NotNil(t, cmd, "question is sent once history is loaded")
	assert.True(t, s.pending)
	require.Len(t, s.messages, 1)
	assert.Equal(t, chat.QuestionPrompt(q), s.messages[0].Content)

	s.Update(cmd())
	assert.False(t, s.pending)
	require.Len(t, s.messages, 2)
	assert.Equal(t, "Port 443.", s.messages[1].Content)

	rec, err := env.Deps.Progress.Load(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, s.messages, rec.ChatHistory)
	assert.Contains(t, s.View(100, 30), "Port 443.")
}

func TestTutorSendsTypedMessage(t *testing.T) {
	env := screentest.New(t, llm.NewMockProvider(reply("Sure.")))
	c := env.CreateCourse(t, "Networking", screentest.Question("q1", "Which port is HTTPS?", "B"))

	s := New(env.Deps, c, nil)
	assert.Nil(t, loadHistory(t, s))

	_, cmd := s.Update(screentest.SpecialKey(tea.KeyEnter))
	assert.Nil(t, cmd, "empty input is not sent")

	s.input.Model.SetValue("  explain TLS  ")
	_, cmd = s.Update(screentest.SpecialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Empty(t, s.input.Value(), "input cleared after sending")

	_, again := s.Update(screentest.SpecialKey(tea.KeyEnter))
	assert.Nil(t, again)

	s.Update(cmd())
	require.Len(t, s.messages, 2)
	assert.Equal(t, "explain TLS", s.messages[0].Content)
	assert.Equal(t, "Sure.", s.messages[1].Content)
}

func TestTutorShowsProviderError(t *testing.T) {
	env := screentest.New(t, llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ProviderError{Provider: "openai", Kind: llm.ErrUnavailable, Err: errors.New("503")},
	}))
	c := env.CreateCourse(t, "Networking", screentest.Question("q1", "Which port is HTTPS?", "B"))

	s := New(env.Deps, c, nil)
	loadHistory(t, s)
	s.input.Model.SetValue("hello")
	_, cmd := s.Update(screentest.SpecialKey(tea.KeyEnter))
	s.Update(cmd())

	require.Len(t, s.messages, 2)
	assert.True(t, strings.HasPrefix(s.messages[1].Content, "Error: "))
}

func TestTutorClear(t *testing.T) {
	env := screentest.New(t, llm.NewMockProvider(reply("Hi.")))
	c := env.CreateCourse(t, "Networking", screentest.Question("q1", "Which port is HTTPS?", "B"))
	ctx := context.Background()

	s := New(env.Deps, c, nil)
	loadHistory(t, s)
	s.input.Model.SetValue("hello")
	_, cmd := s.Update(screentest.SpecialKey(tea.KeyEnter))
	s.Update(cmd())
	require.Len(t, s.messages, 2)

	_, cmd = s.Update(screentest.CtrlKey('l'))
	require.NotNil(t, cmd)
	s.Update(cmd())
	assert.Empty(t, s.messages)

	rec, err := env.Deps.Progress.Load(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, rec.ChatHistory)
}

func TestTutorUnconfigured(t *testing.T) {
	env := screentest.New(t, nil)
	s := New(env.Deps, &course.Course{ID: "c1", Name: "Networking"}, nil)

	assert.Nil(t, s.Init())
	assert.Contains(t, s.View(100, 30), "no LLM provider configured")
	_, cmd := s.Update(screentest.SpecialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
}
