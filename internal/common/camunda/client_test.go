package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"booking-dialogue/internal/common/config"
	"booking-dialogue/internal/common/errors"
	"booking-dialogue/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		RequestTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"rpc error: code = NotFound desc = process 'rental-booking' not found", false},
		{"rpc error: code = InvalidArgument", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(stderrors.New(tt.msg)))
		})
	}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	c := newTestClient(3)
	calls := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, stderrors.New("connection reset by peer")
		}
		return "ok", nil
	}, "publish")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_MapsErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  errors.ErrorCode
		wantCalls int
	}{
		{"transient exhausted", stderrors.New("unavailable"), errors.ErrCodeEngineUnavailable, 3},
		{"rejected immediately", stderrors.New("process not found"), errors.ErrCodeEngineRejected, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(2)
			calls := 0
			_, err := c.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
				calls++
				return nil, tt.err
			}, "create-instance")

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantCalls, calls)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	c := newTestClient(5)
	c.config.RetryConfig.BaseDelay = time.Hour
	c.config.RetryConfig.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, stderrors.New("timeout")
	}, "publish")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStartWorker_Disabled(t *testing.T) {
	w := StartWorker(nil, "quote-rental-price", config.WorkerConfig{Enabled: false}, nil, nil, logger.NewNoOpLogger())
	assert.Nil(t, w)
	w.Stop()
}

type nopJobClient struct{}

func (nopJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 { return nil }
func (nopJobClient) NewFailJobCommand() commands.FailJobCommandStep1         { return nil }
func (nopJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1   { return nil }

type recordingObserver struct {
	processed []string
	durations int
}

func (o *recordingObserver) RecordJobProcessed(_ context.Context, status string) {
	o.processed = append(o.processed, status)
}

func (o *recordingObserver) RecordJobDuration(_ context.Context, _ time.Duration, _ string) {
	o.durations++
}

func TestInstrument_ReportsOutcome(t *testing.T) {
	tests := []struct {
		name    string
		handler HandlerFunc
		want    string
	}{
		{
			name:    "completed",
			handler: func(c worker.JobClient, _ entities.Job) { c.NewCompleteJobCommand() },
			want:    JobStatusCompleted,
		},
		{
			name:    "failed",
			handler: func(c worker.JobClient, _ entities.Job) { c.NewFailJobCommand() },
			want:    JobStatusFailed,
		},
		{
			name:    "bpmn error",
			handler: func(c worker.JobClient, _ entities.Job) { c.NewThrowErrorCommand() },
			want:    JobStatusError,
		},
		{
			name:    "no command",
			handler: func(worker.JobClient, entities.Job) {},
			want:    JobStatusAbandoned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			Instrument("quote-rental-price", tt.handler, obs)(nopJobClient{}, entities.Job{})
			assert.Equal(t, []string{tt.want}, obs.processed)
			assert.Equal(t, 1, obs.durations)
		})
	}
}

func TestInstrument_NilObserver(t *testing.T) {
	called := false
	Instrument("quote-rental-price", func(worker.JobClient, entities.Job) { called = true }, nil)(nopJobClient{}, entities.Job{})
	assert.True(t, called)
}
