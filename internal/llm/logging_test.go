package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/brightpath/internal/store"
)

func openEventRepo(t *testing.T) store.EventRepo {
	t.Helper()
	s, err := store.Open("file:llm_" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

func TestLogging_RecordsSuccessAndFailure(t *testing.T) {
	repo := openEventRepo(t)
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"title":"Fractions"}`), Usage: Usage{InputTokens: 12, OutputTokens: 7}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithLogging(mock, NameMock, repo, nil)
	ctx := WithPurpose(context.Background(), "course-plan")

	_, err := p.Generate(ctx, Request{System: "plan", Messages: []Message{{Role: RoleUser, Content: "fractions"}}})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	failed, succeeded := events[0], events[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "boom", failed.ErrorMessage)

	assert.True(t, succeeded.Success)
	assert.Equal(t, NameMock, succeeded.Provider)
	assert.Equal(t, "course-plan", succeeded.Purpose)
	assert.Equal(t, 12, succeeded.InputTokens)
	assert.Equal(t, 7, succeeded.OutputTokens)
	assert.Contains(t, succeeded.RequestBody, "[system]\nplan")
	assert.Contains(t, succeeded.RequestBody, "[user]\nfractions")
	assert.JSONEq(t, `{"title":"Fractions"}`, succeeded.ResponseBody)

	usage, err := repo.LLMUsageByPurpose(context.Background())
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].Calls)
	assert.Equal(t, 1, usage[0].Failures)
}

type failingLog struct{}

func (failingLog) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	return errors.New("disk full")
}

func TestLogging_LogFailureDoesNotFailRequest(t *testing.T) {
	p := WithLogging(NewMockProvider(okReply()), NameMock, failingLog{}, nil)
	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
}

func TestPurpose(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, PurposeUnspecified, PurposeFrom(ctx))
	assert.Equal(t, "course-plan", PurposeFrom(WithPurpose(ctx, "course-plan")))
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"objective":"x"}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: lessonSchema()})
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
	require.Len(t, mock.Calls, 1)
}
