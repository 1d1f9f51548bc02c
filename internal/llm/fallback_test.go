package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_UsesFirstHealthyProvider(t *testing.T) {
	primary := NewMockProvider(downReply()).Named("primary")
	secondary := NewMockProvider(MockResponse{Content: json.RawMessage(`{"from":"secondary"}`)}).Named("secondary")
	third := NewMockProvider(okReply()).Named("third")

	f := WithFallback([]Provider{primary, secondary, third}, 0, nil)
	resp, err := f.Generate(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, "secondary", resp.Model)
	assert.Equal(t, 1, primary.CallCount())
	assert.Equal(t, 1, secondary.CallCount())
	assert.Equal(t, 0, third.CallCount())
	assert.Equal(t, "primary", f.ModelID())
}

func TestFallback_AllFail(t *testing.T) {
	a := NewMockProvider(downReply()).Named("a")
	b := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}}).Named("b")

	_, err := WithFallback([]Provider{a, b}, 0, nil).Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl, "joined errors keep each provider's failure")
}

func TestFallback_SingleProviderErrorUnchanged(t *testing.T) {
	want := &ErrMaxTokensExceeded{}
	_, err := WithFallback([]Provider{NewMockProvider(MockResponse{Err: want})}, 0, nil).
		Generate(context.Background(), Request{})
	assert.Same(t, want, err)
}

func TestFallback_Empty(t *testing.T) {
	f := WithFallback(nil, 0, nil)
	_, err := f.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
	assert.Empty(t, f.ModelID())
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, &ErrProviderUnavailable{Err: ctx.Err()}
}

func (slowProvider) ModelID() string { return "slow" }

func TestFallback_TimeoutMovesOn(t *testing.T) {
	next := NewMockProvider(okReply())
	resp, err := WithFallback([]Provider{slowProvider{}, next}, 10*time.Millisecond, nil).
		Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, NameMock, resp.Model)
}

func TestFallback_CallerCancellationStops(t *testing.T) {
	next := NewMockProvider(okReply())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithFallback([]Provider{slowProvider{}, next}, 0, nil).Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, next.CallCount())
}
